// Package session owns one loaded mod-folder session: documents, node
// trees, and the PathKey lookup. A session is created on folder load and
// discarded wholesale on the next load — nothing inside it outlives the
// folder scan that built it.
package session

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/modlingo/modlingo/extract"
	"github.com/modlingo/modlingo/merge"
	"github.com/modlingo/modlingo/xmlfile"
)

// Entry pairs a document with its extracted top-level nodes.
type Entry struct {
	Doc *xmlfile.Document
	// Nodes are the document's top-level grouping nodes, in document
	// order. Empty for failed documents and documents without
	// translatable text.
	Nodes []*extract.Node
}

// Session is one loaded folder of documents.
type Session struct {
	// Root is the mod root folder.
	Root string
	// TargetLang is the target language's English display name
	// ("Russian"), as used in the folder convention.
	TargetLang string
	// Entries holds every scanned document, including failed ones,
	// in deterministic path order.
	Entries []*Entry
	// Lookup addresses every leaf in the session by PathKey.
	Lookup extract.Lookup
	// Merged counts leaves populated from a previously produced
	// translation folder, when one existed.
	Merged int
}

// Load scans root, extracts translatable nodes from every parseable
// document, and — when the sibling translated folder "<root> (<lang>)"
// exists — overlays prior translations onto the fresh tree. Loading and
// merging complete before the session is returned; per-file parse failures
// are recorded on their documents and do not abort the scan.
func Load(root, targetLang string, tags extract.TagSet) (*Session, error) {
	docs, err := xmlfile.ScanFolder(root)
	if err != nil {
		return nil, err
	}

	s := &Session{
		Root:       root,
		TargetLang: targetLang,
		Lookup:     extract.Lookup{},
	}
	for _, doc := range docs {
		s.Entries = append(s.Entries, &Entry{
			Doc:   doc,
			Nodes: extract.Extract(doc, tags, s.Lookup),
		})
	}

	s.Merged = s.overlayPrior()
	return s, nil
}

// overlayPrior merges a previously produced translation tree, if present.
// A missing counterpart folder or file is not an error — just no prior
// work to load. A counterpart that fails to parse is likewise skipped.
func (s *Session) overlayPrior() int {
	transRoot := merge.TranslatedRoot(s.Root, s.TargetLang)
	if info, err := os.Stat(transRoot); err != nil || !info.IsDir() {
		return 0
	}

	merged := 0
	for _, e := range s.Entries {
		if e.Doc.Err != nil || len(e.Nodes) == 0 {
			continue
		}
		rel := merge.TranslatedRelPath(e.Doc.RelPath, s.TargetLang)
		candidate := filepath.Join(transRoot, filepath.FromSlash(rel))
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		n, err := merge.OverlayFile(candidate, e.Doc.RelPath, s.Lookup)
		if err != nil {
			continue
		}
		merged += n
	}
	return merged
}

// Leaves returns every leaf in the session in document order.
func (s *Session) Leaves() []*extract.Node {
	var out []*extract.Node
	for _, e := range s.Entries {
		out = append(out, extract.Leaves(e.Nodes)...)
	}
	return out
}

// Failed returns the documents that could not be parsed.
func (s *Session) Failed() []*xmlfile.Document {
	var out []*xmlfile.Document
	for _, e := range s.Entries {
		if e.Doc.Err != nil {
			out = append(out, e.Doc)
		}
	}
	return out
}

// Stats returns (total, translated) leaf counts for the whole session.
func (s *Session) Stats() (total, translated int) {
	for _, leaf := range s.Leaves() {
		total++
		if leaf.EffectiveTranslation() != "" {
			translated++
		}
	}
	return
}

// Describe returns a one-line summary for logs.
func (s *Session) Describe() string {
	total, translated := s.Stats()
	return fmt.Sprintf("%d documents, %d strings (%d translated)", len(s.Entries), total, translated)
}
