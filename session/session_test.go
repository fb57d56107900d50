package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/modlingo/modlingo/extract"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func modFixture(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	root := filepath.Join(tmp, "Foo")
	writeFile(t, root, "About/About.xml", `<ModMetaData><name>Foo</name></ModMetaData>`)
	writeFile(t, root, "Defs/things.xml",
		`<Defs><ThingDef><defName>Chair</defName><label>chair</label></ThingDef></Defs>`)
	writeFile(t, root, "Languages/English/Keyed/Gameplay.xml",
		`<LanguageData><Greeting>Hello</Greeting></LanguageData>`)
	return root
}

func TestLoadFreshSession(t *testing.T) {
	t.Parallel()

	root := modFixture(t)
	s, err := Load(root, "Russian", extract.DefaultTags())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(s.Entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(s.Entries))
	}
	total, translated := s.Stats()
	if total != 2 || translated != 0 {
		t.Fatalf("stats = %d/%d, want 2/0", translated, total)
	}
	if s.Merged != 0 {
		t.Fatalf("fresh session merged %d values", s.Merged)
	}
	if len(s.Failed()) != 0 {
		t.Fatalf("unexpected failures: %v", s.Failed())
	}
}

func TestLoadOverlaysPriorTranslation(t *testing.T) {
	t.Parallel()

	root := modFixture(t)

	// A previously produced translation tree alongside the mod root.
	trans := root + " (Russian)"
	writeFile(t, trans, "Defs/things.xml",
		`<Defs><ThingDef><defName>Chair</defName><label>стул</label></ThingDef></Defs>`)
	writeFile(t, trans, "Languages/Russian/Keyed/Russian.xml",
		`<LanguageData><Greeting>Привет</Greeting></LanguageData>`)

	s, err := Load(root, "Russian", extract.DefaultTags())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Merged != 2 {
		t.Fatalf("merged = %d, want 2", s.Merged)
	}

	label := s.Lookup[extract.PathKey("Defs/things.xml", "ThingDef[defName=Chair]/label")]
	if label == nil || label.SubmittedTranslation != "стул" {
		t.Fatalf("label not overlaid: %+v", label)
	}
	greeting := s.Lookup[extract.PathKey("Languages/English/Keyed/Gameplay.xml", "Greeting")]
	if greeting == nil || greeting.SubmittedTranslation != "Привет" {
		t.Fatalf("keyed leaf not overlaid: %+v", greeting)
	}

	_, translated := s.Stats()
	if translated != 2 {
		t.Fatalf("translated = %d, want 2", translated)
	}
}

func TestLoadMissingCounterpartFilesAreSilent(t *testing.T) {
	t.Parallel()

	root := modFixture(t)
	// Translated folder exists but has only one of the two documents.
	writeFile(t, root+" (Russian)", "Defs/things.xml",
		`<Defs><ThingDef><defName>Chair</defName><label>стул</label></ThingDef></Defs>`)

	s, err := Load(root, "Russian", extract.DefaultTags())
	if err != nil {
		t.Fatal(err)
	}
	if s.Merged != 1 {
		t.Fatalf("merged = %d, want 1", s.Merged)
	}
}

func TestLoadIsolatesParseFailures(t *testing.T) {
	t.Parallel()

	root := modFixture(t)
	writeFile(t, root, "Defs/broken.xml", `<Defs><oops`)

	s, err := Load(root, "Russian", extract.DefaultTags())
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Failed()) != 1 {
		t.Fatalf("failed = %d, want 1", len(s.Failed()))
	}
	// The rest of the folder still extracted.
	if total, _ := s.Stats(); total != 2 {
		t.Fatalf("total = %d, want 2", total)
	}
}

func TestSessionLeavesDocumentOrder(t *testing.T) {
	t.Parallel()

	root := modFixture(t)
	s, err := Load(root, "Russian", extract.DefaultTags())
	if err != nil {
		t.Fatal(err)
	}
	leaves := s.Leaves()
	if len(leaves) != 2 {
		t.Fatalf("leaves = %d", len(leaves))
	}
	// Scan order is path order: Defs/things.xml before Languages/...
	if leaves[0].OriginalText != "chair" || leaves[1].OriginalText != "Hello" {
		t.Fatalf("leaf order: %q, %q", leaves[0].OriginalText, leaves[1].OriginalText)
	}
}
