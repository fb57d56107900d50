// Package lockfile implements modlingo.lock — a lock file that tracks
// MD5 checksums of source strings per document. This enables incremental
// translation: only new or changed strings are sent to a provider on the
// next run.
//
// The lock file is stored in the mod root as modlingo.lock.
package lockfile

import (
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// LockFileName is the default lock file name.
const LockFileName = "modlingo.lock"

// Version is the lock file format version.
const Version = 1

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// LockFile represents the modlingo.lock file structure.
type LockFile struct {
	Version   int                          `yaml:"version"`
	Checksums map[string]map[string]string `yaml:"checksums"` // doc path -> path key -> md5

	mu   sync.Mutex `yaml:"-"`
	path string     `yaml:"-"`
}

// ---------------------------------------------------------------------------
// Loading and saving
// ---------------------------------------------------------------------------

// Load reads a lock file from the given directory.
// Returns an empty lock file if the file doesn't exist.
func Load(dir string) (*LockFile, error) {
	path := filepath.Join(dir, LockFileName)
	lf := &LockFile{
		Version:   Version,
		Checksums: make(map[string]map[string]string),
		path:      path,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return lf, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, lf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	lf.path = path

	if lf.Checksums == nil {
		lf.Checksums = make(map[string]map[string]string)
	}

	return lf, nil
}

// Save writes the lock file to disk.
func (lf *LockFile) Save() error {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	if lf.path == "" {
		return fmt.Errorf("lock file path not set")
	}

	data, err := yaml.Marshal(lf)
	if err != nil {
		return fmt.Errorf("marshaling lock file: %w", err)
	}

	if err := os.WriteFile(lf.path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", lf.path, err)
	}

	return nil
}

// Path returns the lock file path.
func (lf *LockFile) Path() string {
	return lf.path
}

// ---------------------------------------------------------------------------
// Checksum operations
// ---------------------------------------------------------------------------

// Hash computes the MD5 hex digest of a string.
func Hash(s string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(s)))
}

// Has reports whether a checksum is recorded for the given key.
func (lf *LockFile) Has(doc, key string) bool {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	_, ok := lf.Checksums[doc][key]
	return ok
}

// IsChanged checks if a source string has changed since last translation.
// Returns true if the string is new or its content has changed.
func (lf *LockFile) IsChanged(doc, key, sourceText string) bool {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	keys, ok := lf.Checksums[doc]
	if !ok {
		return true
	}
	oldHash, ok := keys[key]
	if !ok {
		return true
	}
	return oldHash != Hash(sourceText)
}

// Update records the checksum of a source string after successful translation.
func (lf *LockFile) Update(doc, key, sourceText string) {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	if lf.Checksums[doc] == nil {
		lf.Checksums[doc] = make(map[string]string)
	}
	lf.Checksums[doc][key] = Hash(sourceText)
}

// Clean removes entries for path keys that are no longer present in the
// current extraction. This prevents stale entries from accumulating when
// elements are renamed or deleted upstream.
func (lf *LockFile) Clean(doc string, currentKeys []string) {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	existing := lf.Checksums[doc]
	if existing == nil {
		return
	}

	valid := make(map[string]bool, len(currentKeys))
	for _, k := range currentKeys {
		valid[k] = true
	}

	for k := range existing {
		if !valid[k] {
			delete(existing, k)
		}
	}
}

// RemoveDoc removes all checksums for a document.
func (lf *LockFile) RemoveDoc(doc string) {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	delete(lf.Checksums, doc)
}

// ---------------------------------------------------------------------------
// Stats
// ---------------------------------------------------------------------------

// Stats returns the number of documents and total keys in the lock file.
func (lf *LockFile) Stats() (docs, keys int) {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	docs = len(lf.Checksums)
	for _, m := range lf.Checksums {
		keys += len(m)
	}
	return
}

// Docs returns the sorted list of document paths.
func (lf *LockFile) Docs() []string {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	docs := make([]string, 0, len(lf.Checksums))
	for d := range lf.Checksums {
		docs = append(docs, d)
	}
	sort.Strings(docs)
	return docs
}

// Summary returns a human-readable summary string.
func (lf *LockFile) Summary() string {
	docs, keys := lf.Stats()
	if docs == 0 {
		return "empty"
	}

	var parts []string
	for _, d := range lf.Docs() {
		n := len(lf.Checksums[d])
		parts = append(parts, fmt.Sprintf("%s: %d keys", d, n))
	}
	return fmt.Sprintf("%d documents, %d keys (%s)", docs, keys, strings.Join(parts, ", "))
}
