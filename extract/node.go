// Package extract builds addressable trees of translatable text nodes from
// localization-format XML documents.
//
// Two document shapes are recognized:
//
//   - flat dictionary documents, whose root tag is "LanguageData"
//     (case-insensitive): every direct child is one key→text pair;
//   - definition documents: every top-level child of the root is a named
//     object definition whose nested fields may carry translatable text.
//
// Each translatable string becomes a leaf Node bound to its XML element and
// addressed by a PathKey that is stable across independent parses of
// structurally identical documents. The PathKey is the sole mechanism for
// matching a leaf against its counterpart in a separately parsed translated
// document.
package extract

import "github.com/beevik/etree"

// Node is the addressable unit of translation work.
//
// A Node is either a leaf (bound to exactly one XML element, no children,
// holding one translatable string) or a group (no binding, non-empty
// children, purely organizational — one per definition or per file).
type Node struct {
	// ElementName is the XML tag, or the file name for per-file groups.
	ElementName string
	// OriginalText is the trimmed source value for leaves, or the
	// grouping identifier (defName / file name) for groups.
	OriginalText string
	// DefName is the enclosing definition's identifier, or the file name
	// for flat dictionary documents.
	DefName string
	// Translation is the free-form, user-editable draft value.
	Translation string
	// SubmittedTranslation is the last value the user confirmed. Once
	// non-empty it is authoritative for export; Translation is transient
	// edit-buffer state.
	SubmittedTranslation string
	// Children is the ordered child sequence. Empty for leaves.
	Children []*Node

	// elem is the non-owning binding to the XML element a leaf writes
	// back into. Nil for groups. The owning Document holds the
	// authoritative structure; this is a lookup reference, not ownership.
	elem *etree.Element
}

// IsLeaf reports whether the node is bound to an XML element.
func (n *Node) IsLeaf() bool { return n.elem != nil }

// EffectiveTranslation returns the value export must use: the submitted
// translation, falling back to the draft. Empty means "leave untranslated".
func (n *Node) EffectiveTranslation() string {
	if n.SubmittedTranslation != "" {
		return n.SubmittedTranslation
	}
	return n.Translation
}

// Apply walks a node tree and writes each leaf's effective translation back
// into the XML element it is bound to, in place. Leaves with no non-empty
// effective value are left untouched, so the original text survives
// untranslated. Groups only recurse.
func Apply(nodes []*Node) {
	for _, n := range nodes {
		if n.IsLeaf() {
			if v := n.EffectiveTranslation(); v != "" {
				n.elem.SetText(v)
			}
			continue
		}
		Apply(n.Children)
	}
}

// Leaves returns all leaf nodes of a tree in document order.
func Leaves(nodes []*Node) []*Node {
	var out []*Node
	for _, n := range nodes {
		if n.IsLeaf() {
			out = append(out, n)
			continue
		}
		out = append(out, Leaves(n.Children)...)
	}
	return out
}

// Lookup maps PathKey → leaf node, scoped to one load session. Keys embed
// the document path, so one session-wide map stays collision-free across
// documents. First writer wins on key collision: duplicate structural
// paths are ignored after the first.
type Lookup map[string]*Node

// add registers a leaf under key. Reports false when the key was already
// taken (the leaf is dropped, matching the source system's behavior on
// duplicate defNames).
func (l Lookup) add(key string, n *Node) bool {
	if _, exists := l[key]; exists {
		return false
	}
	l[key] = n
	return true
}
