// Package langmeta provides a shared language metadata registry
// (English display names, native names, ISO codes) used by the
// translation providers and CLI UI.
package langmeta

import "strings"

// Meta describes language display metadata.
type Meta struct {
	// Name is the English display name used in folder conventions
	// (e.g. "Russian" in "Languages/Russian").
	Name string
	// Native is the language's own name, for display.
	Native string
}

// Registry contains canonical language metadata keyed by ISO 639-1 code.
// Locale variants are resolved in Resolve() via normalization and base fallback.
var Registry = map[string]Meta{
	"ar":    {Name: "Arabic", Native: "العربية"},
	"bg":    {Name: "Bulgarian", Native: "Български"},
	"cs":    {Name: "Czech", Native: "Čeština"},
	"da":    {Name: "Danish", Native: "Dansk"},
	"de":    {Name: "German", Native: "Deutsch"},
	"el":    {Name: "Greek", Native: "Ελληνικά"},
	"en":    {Name: "English", Native: "English"},
	"es":    {Name: "Spanish", Native: "Español"},
	"et":    {Name: "Estonian", Native: "Eesti"},
	"fi":    {Name: "Finnish", Native: "Suomi"},
	"fr":    {Name: "French", Native: "Français"},
	"hu":    {Name: "Hungarian", Native: "Magyar"},
	"it":    {Name: "Italian", Native: "Italiano"},
	"ja":    {Name: "Japanese", Native: "日本語"},
	"ko":    {Name: "Korean", Native: "한국어"},
	"lt":    {Name: "Lithuanian", Native: "Lietuvių"},
	"nl":    {Name: "Dutch", Native: "Nederlands"},
	"no":    {Name: "Norwegian", Native: "Norsk"},
	"pl":    {Name: "Polish", Native: "Polski"},
	"pt":    {Name: "Portuguese", Native: "Português"},
	"pt-BR": {Name: "PortugueseBrazilian", Native: "Português (Brasil)"},
	"ro":    {Name: "Romanian", Native: "Română"},
	"ru":    {Name: "Russian", Native: "Русский"},
	"sk":    {Name: "Slovak", Native: "Slovenčina"},
	"sl":    {Name: "Slovenian", Native: "Slovenščina"},
	"sv":    {Name: "Swedish", Native: "Svenska"},
	"th":    {Name: "Thai", Native: "ไทย"},
	"tr":    {Name: "Turkish", Native: "Türkçe"},
	"uk":    {Name: "Ukrainian", Native: "Українська"},
	"vi":    {Name: "Vietnamese", Native: "Tiếng Việt"},
	"zh":    {Name: "ChineseSimplified", Native: "简体中文"},
	"zh-TW": {Name: "ChineseTraditional", Native: "繁體中文"},
}

// byName maps lowercased English display names back to ISO codes.
var byName = func() map[string]string {
	m := make(map[string]string, len(Registry))
	for code, meta := range Registry {
		m[strings.ToLower(meta.Name)] = code
	}
	return m
}()

func canonicalize(lang string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if normalized == "" {
		return ""
	}
	parts := strings.Split(normalized, "-")
	parts[0] = strings.ToLower(parts[0])
	if len(parts) >= 2 {
		parts[1] = strings.ToUpper(parts[1])
	}
	return strings.Join(parts, "-")
}

// Code resolves a target-language identifier to an ISO code. The identifier
// may be an English display name as used in folder conventions ("Russian"),
// an ISO code ("ru"), or a locale variant ("pt_BR"). Returns "" if the
// language is unknown.
func Code(lang string) string {
	if code, ok := byName[strings.ToLower(strings.TrimSpace(lang))]; ok {
		return code
	}
	normalized := canonicalize(lang)
	if _, ok := Registry[normalized]; ok {
		return normalized
	}
	if parts := strings.SplitN(normalized, "-", 2); len(parts) == 2 {
		if _, ok := Registry[parts[0]]; ok {
			return parts[0]
		}
	}
	return ""
}

// Name resolves a target-language identifier to its English display name,
// falling back to the identifier itself for unknown languages.
func Name(lang string) string {
	if code := Code(lang); code != "" {
		return Registry[code].Name
	}
	return strings.TrimSpace(lang)
}

// Resolve returns best-effort language metadata for a name or code,
// supporting variants like pt_BR, pt-BR, and locale fallbacks.
func Resolve(lang string) Meta {
	if code := Code(lang); code != "" {
		return Registry[code]
	}
	return Meta{Name: lang}
}
