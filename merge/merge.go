// Package merge reconciles a freshly parsed source tree with a previously
// produced translation folder (round-trip state).
//
// The merger never reuses the original node tree's object identity: the
// candidate translated document is an independent parse, so leaves are
// matched purely by re-deriving PathKeys from the candidate's own shape.
// Keys present on only one side are silently ignored — a partial or empty
// merge is not an error, just no prior work to load.
package merge

import (
	"path"
	"strings"

	"github.com/beevik/etree"

	"github.com/modlingo/modlingo/extract"
	"github.com/modlingo/modlingo/xmlfile"
)

// Overlay walks the root element of a candidate translated document,
// re-derives PathKeys with the extractor's addressing rule, and copies each
// hit's trimmed value into the matching leaf's Translation and
// SubmittedTranslation. docPath is the ORIGINAL document's relative path —
// the candidate lives at a remapped path but must address the original's
// lookup entries. Returns the number of leaves populated.
func Overlay(root *etree.Element, docPath string, lookup extract.Lookup) int {
	if root == nil {
		return 0
	}
	if extract.IsFlatRoot(root.Tag) {
		return overlayFlat(root, docPath, lookup)
	}
	return overlayDefs(root, docPath, lookup)
}

// OverlayFile parses the candidate file at path and overlays it. A file
// that fails to parse contributes nothing; the error is returned for
// logging only.
func OverlayFile(path, docPath string, lookup extract.Lookup) (int, error) {
	doc, err := xmlfile.Load(path)
	if err != nil {
		return 0, err
	}
	return Overlay(doc.Root(), docPath, lookup), nil
}

func overlayFlat(root *etree.Element, docPath string, lookup extract.Lookup) int {
	merged := 0
	for _, child := range root.ChildElements() {
		key := extract.PathKey(docPath, extract.KeyedPath(child.Tag))
		merged += fill(lookup, key, child.Text())
	}
	return merged
}

func overlayDefs(root *etree.Element, docPath string, lookup extract.Lookup) int {
	merged := 0
	for _, def := range root.ChildElements() {
		id := extract.DefIdentifier(def)
		merged += overlayWalk(def, def.Tag, id, nil, docPath, lookup)
	}
	return merged
}

func overlayWalk(parent *etree.Element, defTag, defName string, chain []string, docPath string, lookup extract.Lookup) int {
	merged := 0
	for _, child := range parent.ChildElements() {
		childChain := append(chain[:len(chain):len(chain)], child.Tag)
		key := extract.PathKey(docPath, extract.DefPath(defTag, defName, childChain))
		merged += fill(lookup, key, child.Text())
		merged += overlayWalk(child, defTag, defName, childChain, docPath, lookup)
	}
	return merged
}

// fill sets a leaf's values from a candidate text. Misses and empty
// candidate values are skipped: an empty submitted translation is
// indistinguishable from "untranslated" at export time.
func fill(lookup extract.Lookup, key, text string) int {
	node, ok := lookup[key]
	if !ok || !node.IsLeaf() {
		return 0
	}
	value := strings.TrimSpace(text)
	if value == "" {
		return 0
	}
	node.Translation = value
	node.SubmittedTranslation = value
	return 1
}

// ---------------------------------------------------------------------------
// Locale path remapping
// ---------------------------------------------------------------------------

const (
	languagesDir = "Languages"
	sourceLocale = "English"
	keyedDir     = "Keyed"
)

// TranslatedRoot returns the translated counterpart of a mod root folder:
// "<root> (<TargetLanguage>)" alongside it.
func TranslatedRoot(root, targetLang string) string {
	return strings.TrimRight(root, "/") + " (" + targetLang + ")"
}

// TranslatedRelPath maps an original document's slash-separated relative
// path to the translated counterpart's relative path:
//
//   - the locale segment "Languages/English" becomes
//     "Languages/<TargetLanguage>" (matched case-insensitively);
//   - if the resulting directory's last segment is "Keyed" (matched
//     case-insensitively), the file name becomes "<TargetLanguage>.xml"
//     (Keyed content files are named after their locale).
//
// Paths without a locale segment are returned unchanged in structure.
func TranslatedRelPath(rel, targetLang string) string {
	segs := strings.Split(path.Clean(rel), "/")
	for i := 0; i+1 < len(segs); i++ {
		if strings.EqualFold(segs[i], languagesDir) && strings.EqualFold(segs[i+1], sourceLocale) {
			segs[i+1] = targetLang
		}
	}
	if len(segs) >= 2 && strings.EqualFold(segs[len(segs)-2], keyedDir) {
		segs[len(segs)-1] = targetLang + ".xml"
	}
	return strings.Join(segs, "/")
}
