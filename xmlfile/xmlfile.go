// Package xmlfile implements loading and saving of localization-format XML
// documents for a moddable game package.
//
// A Document wraps one parsed XML file together with its position inside
// the scanned mod folder. Parsing is permissive about surrounding bytes:
// everything outside element text (attributes, comments, processing
// instructions, ordering, nesting) is carried through etree untouched, so
// a document written back differs from its source only in the element text
// the caller changed.
package xmlfile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/beevik/etree"
)

// Document is one parsed XML file owned by a load session.
type Document struct {
	// Path is the source file path as opened.
	Path string
	// RelPath is the path relative to the scanned folder root, using
	// forward slashes. Used for mirroring into a translated tree.
	RelPath string
	// Doc is the parsed document. Nil when Err is set.
	Doc *etree.Document
	// Err records a per-file parse failure. A failed document stays in
	// the scan result so the caller can report it; it contributes no
	// translatable nodes.
	Err error
}

// Root returns the document's root element, or nil for failed documents.
func (d *Document) Root() *etree.Element {
	if d.Doc == nil {
		return nil
	}
	return d.Doc.Root()
}

// Save writes the document to path, creating parent directories.
func (d *Document) Save(path string) error {
	if d.Doc == nil {
		return fmt.Errorf("saving %s: document was not parsed", d.Path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if err := d.Doc.WriteToFile(path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load parses a single XML file.
func Load(path string) (*etree.Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("parsing %s: no root element", path)
	}
	return doc, nil
}

// LoadDocument parses one file inside root into a Document. Parse failures
// are recorded on the Document, not returned.
func LoadDocument(root, path string) *Document {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	d := &Document{
		Path:    path,
		RelPath: filepath.ToSlash(rel),
	}
	d.Doc, d.Err = Load(path)
	return d
}

// ScanFolder walks root recursively and parses every .xml file, in
// deterministic path order. One malformed document records an error and
// does not abort the remaining files. The returned error covers only the
// walk itself (e.g. root missing).
func ScanFolder(root string) ([]*Document, error) {
	var paths []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".xml") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	sort.Strings(paths)

	docs := make([]*Document, 0, len(paths))
	for _, p := range paths {
		docs = append(docs, LoadDocument(root, p))
	}
	return docs, nil
}

// BaseName returns the document's file name without the .xml extension,
// used to name per-file grouping nodes.
func (d *Document) BaseName() string {
	base := filepath.Base(d.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
