package langmeta

import "testing"

func TestCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Russian", "ru"},
		{"russian", "ru"},
		{" German ", "de"},
		{"ru", "ru"},
		{"pt_BR", "pt-BR"},
		{"pt-br", "pt-BR"},
		{"ru-RU", "ru"},
		{"ChineseSimplified", "zh"},
		{"Klingon", ""},
		{"", ""},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			if got := Code(tc.in); got != tc.want {
				t.Fatalf("Code(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestName(t *testing.T) {
	t.Parallel()

	if got := Name("ru"); got != "Russian" {
		t.Fatalf("Name(ru) = %q, want Russian", got)
	}
	if got := Name("Russian"); got != "Russian" {
		t.Fatalf("Name(Russian) = %q, want Russian", got)
	}
	if got := Name("Klingon"); got != "Klingon" {
		t.Fatalf("Name(Klingon) = %q, want passthrough", got)
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	m := Resolve("Ukrainian")
	if m.Native != "Українська" {
		t.Fatalf("Resolve(Ukrainian).Native = %q", m.Native)
	}

	unknown := Resolve("Klingon")
	if unknown.Name != "Klingon" || unknown.Native != "" {
		t.Fatalf("Resolve(Klingon) = %#v", unknown)
	}
}
