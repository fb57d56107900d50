// Package config implements auto-detection of mod folder layout and the
// optional .modlingo.yaml settings file.
package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ---------------------------------------------------------------------------
// Mod folder detection
// ---------------------------------------------------------------------------

// Mod holds auto-detected mod folder configuration.
type Mod struct {
	// Root is the absolute mod folder path.
	Root string
	// Name is the mod name from About/About.xml, falling back to the
	// folder name.
	Name string
	// HasAbout reports whether About/About.xml exists.
	HasAbout bool
	// HasDefs reports whether a Defs/ directory exists.
	HasDefs bool
	// HasKeyed reports whether Languages/English contains locale files.
	HasKeyed bool
	// Languages lists locale folder names found under Languages/, sorted.
	Languages []string
}

// IsMod reports whether the folder has at least one translatable surface.
func (m *Mod) IsMod() bool {
	return m.HasAbout || m.HasDefs || m.HasKeyed
}

// Detect inspects a folder and reports its mod layout. Detection never
// fails: a folder with nothing recognizable simply yields a Mod for which
// IsMod is false.
func Detect(rootDir string) *Mod {
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		absRoot = rootDir
	}

	m := &Mod{
		Root: absRoot,
		Name: filepath.Base(absRoot),
	}

	if _, err := os.Stat(filepath.Join(absRoot, "About", "About.xml")); err == nil {
		m.HasAbout = true
		if name := aboutName(filepath.Join(absRoot, "About", "About.xml")); name != "" {
			m.Name = name
		}
	}
	if info, err := os.Stat(filepath.Join(absRoot, "Defs")); err == nil && info.IsDir() {
		m.HasDefs = true
	}

	langRoot := filepath.Join(absRoot, "Languages")
	if entries, err := os.ReadDir(langRoot); err == nil {
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			m.Languages = append(m.Languages, entry.Name())
			if strings.EqualFold(entry.Name(), "English") {
				m.HasKeyed = hasXMLFiles(filepath.Join(langRoot, entry.Name()))
			}
		}
	}
	sort.Strings(m.Languages)

	return m
}

// aboutName pulls the <name> element's text out of About.xml with a plain
// string scan. A full XML parse happens later during extraction; detection
// only needs a display name and must not fail on malformed metadata.
func aboutName(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	s := string(data)
	start := strings.Index(s, "<name>")
	if start < 0 {
		return ""
	}
	start += len("<name>")
	end := strings.Index(s[start:], "</name>")
	if end < 0 {
		return ""
	}
	return strings.TrimSpace(s[start : start+end])
}

func hasXMLFiles(dir string) bool {
	found := false
	filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".xml") {
			found = true
			return filepath.SkipAll
		}
		return nil
	})
	return found
}
