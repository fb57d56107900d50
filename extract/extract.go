package extract

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/modlingo/modlingo/xmlfile"
)

// FlatRootTag marks a flat dictionary document (matched case-insensitively).
const FlatRootTag = "LanguageData"

// defNameTag is the child element naming a definition.
const defNameTag = "defName"

// TagSet is the allow-list of translatable tag names (case-sensitive).
type TagSet map[string]bool

// DefaultTags returns the built-in translatable tag allow-list.
func DefaultTags() TagSet {
	return TagSet{
		"label":              true,
		"description":        true,
		"labelShortAdj":      true,
		"jobString":          true,
		"reportString":       true,
		"instruction":        true,
		"helpText":           true,
		"inspectString":      true,
		"rejectInputMessage": true,
		"menuText":           true,
		"confirmMessage":     true,
		"text":               true,
		"title":              true,
	}
}

// With returns a copy of the set extended with extra tag names.
// Used for per-project additions from .modlingo.yaml.
func (t TagSet) With(extra ...string) TagSet {
	out := make(TagSet, len(t)+len(extra))
	for tag := range t {
		out[tag] = true
	}
	for _, tag := range extra {
		if tag = strings.TrimSpace(tag); tag != "" {
			out[tag] = true
		}
	}
	return out
}

// IsFlatRoot reports whether a root tag marks a flat dictionary document.
func IsFlatRoot(tag string) bool {
	return strings.EqualFold(tag, FlatRootTag)
}

// ---------------------------------------------------------------------------
// PathKey builder
// ---------------------------------------------------------------------------

// PathKey composes the session-wide key for a structural path within a
// document. Identical across independent parses of structurally identical
// documents; distinct for structurally distinct positions.
func PathKey(docPath, structural string) string {
	return docPath + "::" + structural
}

// KeyedPath is the structural path of a key/value element: the bare tag.
// Flat dictionary documents have no nesting and no repeated tag names.
func KeyedPath(tag string) string {
	return tag
}

// DefPath is the structural path of a leaf inside a definition:
// rootChildTag[defName=<id>]/<path-from-definition-root>.
func DefPath(defTag, defName string, chain []string) string {
	return defTag + "[defName=" + defName + "]/" + strings.Join(chain, "/")
}

// DefIdentifier resolves the grouping identifier of a definition element:
// the value of its child literally named defName, falling back to the
// definition's own tag when absent. Two anonymous definitions of the same
// tag in one file therefore collide (accepted limitation of the format).
func DefIdentifier(def *etree.Element) string {
	if c := def.SelectElement(defNameTag); c != nil {
		if id := strings.TrimSpace(c.Text()); id != "" {
			return id
		}
	}
	return def.Tag
}

// ---------------------------------------------------------------------------
// Extractor
// ---------------------------------------------------------------------------

// Extract walks one parsed document and returns its ordered top-level nodes
// (one group per file for flat documents, one group per definition with at
// least one leaf otherwise), inserting every leaf into lookup. Node order
// equals document order — it determines the user's navigation sequence.
//
// Failed documents yield nothing.
func Extract(doc *xmlfile.Document, tags TagSet, lookup Lookup) []*Node {
	root := doc.Root()
	if root == nil {
		return nil
	}
	if IsFlatRoot(root.Tag) {
		return extractFlat(doc, root, lookup)
	}
	return extractDefs(doc, root, tags, lookup)
}

// extractFlat emits one grouping node named after the file, with one leaf
// per child element whose trimmed text is non-empty. Empty elements produce
// no leaf and stay invisible to translation, but remain in the document.
func extractFlat(doc *xmlfile.Document, root *etree.Element, lookup Lookup) []*Node {
	fileName := doc.BaseName()
	group := &Node{
		ElementName:  fileName,
		OriginalText: fileName,
		DefName:      fileName,
	}
	for _, child := range root.ChildElements() {
		text := strings.TrimSpace(child.Text())
		if text == "" {
			continue
		}
		leaf := &Node{
			ElementName:  child.Tag,
			OriginalText: text,
			DefName:      fileName,
			elem:         child,
		}
		if lookup.add(PathKey(doc.RelPath, KeyedPath(child.Tag)), leaf) {
			group.Children = append(group.Children, leaf)
		}
	}
	if len(group.Children) == 0 {
		return nil
	}
	return []*Node{group}
}

// extractDefs emits one grouping node per top-level definition that yields
// at least one leaf. Every descendant whose tag is in the allow-list and
// whose trimmed text is non-empty becomes a leaf; recursion continues into
// all children regardless of classification.
func extractDefs(doc *xmlfile.Document, root *etree.Element, tags TagSet, lookup Lookup) []*Node {
	var out []*Node
	for _, def := range root.ChildElements() {
		id := DefIdentifier(def)
		group := &Node{
			ElementName:  def.Tag,
			OriginalText: id,
			DefName:      id,
		}
		walkDef(doc, def, def.Tag, id, nil, tags, lookup, group)
		if len(group.Children) > 0 {
			out = append(out, group)
		}
	}
	return out
}

func walkDef(doc *xmlfile.Document, parent *etree.Element, defTag, defName string, chain []string, tags TagSet, lookup Lookup, group *Node) {
	for _, child := range parent.ChildElements() {
		childChain := append(chain[:len(chain):len(chain)], child.Tag)
		if tags[child.Tag] {
			if text := strings.TrimSpace(child.Text()); text != "" {
				leaf := &Node{
					ElementName:  child.Tag,
					OriginalText: text,
					DefName:      defName,
					elem:         child,
				}
				key := PathKey(doc.RelPath, DefPath(defTag, defName, childChain))
				if lookup.add(key, leaf) {
					group.Children = append(group.Children, leaf)
				}
			}
		}
		// An element can be both translatable and a container.
		walkDef(doc, child, defTag, defName, childChain, tags, lookup, group)
	}
}
