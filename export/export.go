// Package export re-emits a loaded session as a parallel translated
// document tree.
//
// Given a mod root folder F and target language L, the translated
// counterpart is written to "F (L)" alongside it, honoring the directory
// convention: any path containing Languages/English is mirrored to
// Languages/L, a Keyed locale folder's content file is renamed to L.xml,
// the package metadata name in About/About.xml gains an " (L)" suffix, and
// leftover English-named directories inside the translated root are removed
// after mirroring.
//
// Export failures are per-file: one unwritable destination is recorded and
// the remaining files are still written. The operation as a whole degrades
// ("saved with N errors") rather than failing outright.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/modlingo/modlingo/extract"
	"github.com/modlingo/modlingo/merge"
	"github.com/modlingo/modlingo/session"
	"github.com/modlingo/modlingo/xmlfile"
)

const aboutRelPath = "About/About.xml"

// FileError records one destination that could not be written.
type FileError struct {
	Path string
	Err  error
}

// Report is the outcome of one export run.
type Report struct {
	// Root is the translated tree's root folder.
	Root string
	// Written lists destination paths successfully saved.
	Written []string
	// Errors lists destinations that failed, in scan order.
	Errors []FileError
	// Skipped counts source documents that never parsed and therefore
	// could not be exported (already surfaced at load time).
	Skipped int
}

// Degraded reports whether any file failed to write.
func (r *Report) Degraded() bool { return len(r.Errors) > 0 }

// Summary returns a one-line outcome description.
func (r *Report) Summary() string {
	if r.Degraded() {
		return fmt.Sprintf("saved %d files with %d errors", len(r.Written), len(r.Errors))
	}
	return fmt.Sprintf("saved %d files", len(r.Written))
}

// Folder applies every node tree to its document and writes the mirrored
// translated tree. Apply runs immediately before serialization, on the
// values the user last confirmed — there is no coupling to transient edit
// state beyond the nodes themselves.
func Folder(s *session.Session) *Report {
	destRoot := merge.TranslatedRoot(s.Root, s.TargetLang)
	report := &Report{Root: destRoot}

	for _, e := range s.Entries {
		if e.Doc.Err != nil {
			report.Skipped++
			continue
		}

		extract.Apply(e.Nodes)
		if e.Doc.RelPath == aboutRelPath {
			suffixPackageName(e.Doc, s.TargetLang)
		}

		rel := merge.TranslatedRelPath(e.Doc.RelPath, s.TargetLang)
		dest := filepath.Join(destRoot, filepath.FromSlash(rel))
		if err := e.Doc.Save(dest); err != nil {
			report.Errors = append(report.Errors, FileError{Path: dest, Err: err})
			continue
		}
		report.Written = append(report.Written, dest)
	}

	pruneEnglishDirs(destRoot)
	return report
}

// suffixPackageName appends " (<TargetLanguage>)" to the package metadata
// name element, unless the suffix is already present.
func suffixPackageName(doc *xmlfile.Document, targetLang string) {
	root := doc.Root()
	if root == nil {
		return
	}
	name := root.SelectElement("name")
	if name == nil {
		return
	}
	suffix := " (" + targetLang + ")"
	current := strings.TrimSpace(name.Text())
	if current == "" || strings.HasSuffix(current, suffix) {
		return
	}
	name.SetText(current + suffix)
}

// pruneEnglishDirs removes leftover English-named directories inside the
// translated root. Mirroring never writes into them, so anything found is
// residue from an earlier export or a manual copy.
func pruneEnglishDirs(destRoot string) {
	var doomed []string
	filepath.Walk(destRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() && strings.EqualFold(info.Name(), "English") && path != destRoot {
			doomed = append(doomed, path)
			return filepath.SkipDir
		}
		return nil
	})
	for _, dir := range doomed {
		os.RemoveAll(dir)
	}
}
