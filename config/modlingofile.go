// Package config — .modlingo.yaml settings file support.
//
// When a .modlingo.yaml file exists in the mod root, its values become the
// defaults for the translate and export commands. Command-line flags still
// override it; the file only replaces the built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// ModlingoFile is the top-level .modlingo.yaml structure.
type ModlingoFile struct {
	// TargetLang is the default target language (name or ISO code).
	TargetLang string `yaml:"target_lang,omitempty"`
	// Provider is the default translation provider ID.
	Provider string `yaml:"provider,omitempty"`
	// ExtraTags lists additional translatable element names, merged into
	// the built-in set. Matching stays case-sensitive.
	ExtraTags []string `yaml:"extra_tags,omitempty"`
	// Proxy is an HTTP/HTTPS proxy URL for provider calls.
	Proxy string `yaml:"proxy,omitempty"`
}

// ModlingoFileName is the default settings file name.
const ModlingoFileName = ".modlingo.yaml"

// LoadModlingoFile loads .modlingo.yaml from the given directory.
// Returns nil if no .modlingo.yaml exists.
func LoadModlingoFile(rootDir string) (*ModlingoFile, error) {
	path := filepath.Join(rootDir, ModlingoFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var mf ModlingoFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &mf, nil
}
