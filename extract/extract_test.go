package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/modlingo/modlingo/xmlfile"
)

func loadDoc(t *testing.T, rel, content string) *xmlfile.Document {
	t.Helper()
	tmp := t.TempDir()
	path := filepath.Join(tmp, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	d := xmlfile.LoadDocument(tmp, path)
	if d.Err != nil {
		t.Fatalf("load %s: %v", rel, d.Err)
	}
	return d
}

func TestExtractFlatDictionary(t *testing.T) {
	t.Parallel()

	doc := loadDoc(t, "Languages/English/Keyed/Gameplay.xml",
		`<LanguageData>
			<Greeting>Hello</Greeting>
			<Empty>   </Empty>
			<Farewell>Goodbye</Farewell>
		</LanguageData>`)

	lookup := Lookup{}
	nodes := Extract(doc, DefaultTags(), lookup)

	if len(nodes) != 1 {
		t.Fatalf("got %d top-level nodes, want 1", len(nodes))
	}
	group := nodes[0]
	if group.IsLeaf() {
		t.Fatal("group node must not be a leaf")
	}
	if group.ElementName != "Gameplay" || group.DefName != "Gameplay" {
		t.Fatalf("group named %q/%q, want file name", group.ElementName, group.DefName)
	}
	if len(group.Children) != 2 {
		t.Fatalf("got %d leaves, want 2 (empty element skipped)", len(group.Children))
	}

	leaf := group.Children[0]
	if !leaf.IsLeaf() || leaf.ElementName != "Greeting" || leaf.OriginalText != "Hello" {
		t.Fatalf("first leaf = %+v", leaf)
	}

	key := PathKey(doc.RelPath, "Greeting")
	if lookup[key] != leaf {
		t.Fatalf("lookup miss for %q", key)
	}
}

func TestExtractFlatRootCaseInsensitive(t *testing.T) {
	t.Parallel()

	doc := loadDoc(t, "Keyed/Alerts.xml", `<languagedata><Warning>Danger</Warning></languagedata>`)
	nodes := Extract(doc, DefaultTags(), Lookup{})
	if len(nodes) != 1 || len(nodes[0].Children) != 1 {
		t.Fatalf("flat marker should match case-insensitively: %+v", nodes)
	}
}

func TestExtractDefinitionDocument(t *testing.T) {
	t.Parallel()

	doc := loadDoc(t, "Defs/things.xml",
		`<Defs>
			<ThingDef>
				<defName>Chair</defName>
				<label>chair</label>
			</ThingDef>
		</Defs>`)

	lookup := Lookup{}
	nodes := Extract(doc, DefaultTags(), lookup)

	if len(nodes) != 1 {
		t.Fatalf("got %d groups, want 1", len(nodes))
	}
	group := nodes[0]
	if group.ElementName != "ThingDef" || group.OriginalText != "Chair" || group.DefName != "Chair" {
		t.Fatalf("group = %+v", group)
	}
	if len(group.Children) != 1 {
		t.Fatalf("got %d leaves, want 1 (defName itself is not translatable)", len(group.Children))
	}
	leaf := group.Children[0]
	if leaf.ElementName != "label" || leaf.OriginalText != "chair" || leaf.DefName != "Chair" {
		t.Fatalf("leaf = %+v", leaf)
	}

	key := PathKey(doc.RelPath, "ThingDef[defName=Chair]/label")
	if lookup[key] != leaf {
		t.Fatalf("lookup keys: %v", keysOf(lookup))
	}
}

func TestExtractNestedFields(t *testing.T) {
	t.Parallel()

	doc := loadDoc(t, "Defs/jobs.xml",
		`<Defs>
			<JobDef>
				<defName>Haul</defName>
				<driverClass>JobDriver_Haul</driverClass>
				<verbs>
					<li>
						<label>haul things</label>
					</li>
				</verbs>
				<reportString>hauling.</reportString>
			</JobDef>
		</Defs>`)

	lookup := Lookup{}
	nodes := Extract(doc, DefaultTags(), lookup)

	leaves := Leaves(nodes)
	if len(leaves) != 2 {
		t.Fatalf("got %d leaves, want 2: %v", len(leaves), keysOf(lookup))
	}
	// Document order preserved: nested label before reportString.
	if leaves[0].OriginalText != "haul things" || leaves[1].OriginalText != "hauling." {
		t.Fatalf("leaf order: %q, %q", leaves[0].OriginalText, leaves[1].OriginalText)
	}
	wantKey := PathKey(doc.RelPath, "JobDef[defName=Haul]/verbs/li/label")
	if _, ok := lookup[wantKey]; !ok {
		t.Fatalf("missing nested key %q in %v", wantKey, keysOf(lookup))
	}
}

func TestExtractDefinitionWithoutLeavesOmitted(t *testing.T) {
	t.Parallel()

	doc := loadDoc(t, "Defs/mixed.xml",
		`<Defs>
			<SoundDef>
				<defName>Click</defName>
				<volume>1.0</volume>
			</SoundDef>
			<ThingDef>
				<defName>Table</defName>
				<label>table</label>
			</ThingDef>
		</Defs>`)

	nodes := Extract(doc, DefaultTags(), Lookup{})
	if len(nodes) != 1 || nodes[0].DefName != "Table" {
		t.Fatalf("leafless definition should be omitted entirely: %+v", nodes)
	}
}

func TestExtractAnonymousDefinitionFallsBackToTag(t *testing.T) {
	t.Parallel()

	doc := loadDoc(t, "Defs/anon.xml",
		`<Defs>
			<RuleDef>
				<label>rule one</label>
			</RuleDef>
		</Defs>`)

	lookup := Lookup{}
	Extract(doc, DefaultTags(), lookup)

	wantKey := PathKey(doc.RelPath, "RuleDef[defName=RuleDef]/label")
	if _, ok := lookup[wantKey]; !ok {
		t.Fatalf("anonymous defName fallback missing: %v", keysOf(lookup))
	}
}

func TestExtractDuplicateDefNameFirstWins(t *testing.T) {
	t.Parallel()

	doc := loadDoc(t, "Defs/dup.xml",
		`<Defs>
			<ThingDef>
				<defName>Chair</defName>
				<label>first chair</label>
			</ThingDef>
			<ThingDef>
				<defName>Chair</defName>
				<label>second chair</label>
			</ThingDef>
		</Defs>`)

	lookup := Lookup{}
	nodes := Extract(doc, DefaultTags(), lookup)

	key := PathKey(doc.RelPath, "ThingDef[defName=Chair]/label")
	if lookup[key] == nil || lookup[key].OriginalText != "first chair" {
		t.Fatalf("first writer must win: %+v", lookup[key])
	}
	// The second definition's duplicate leaves are dropped.
	if len(Leaves(nodes)) != 1 {
		t.Fatalf("got %d leaves, want 1", len(Leaves(nodes)))
	}
}

func TestExtractAllowListIsCaseSensitive(t *testing.T) {
	t.Parallel()

	doc := loadDoc(t, "Defs/case.xml",
		`<Defs>
			<ThingDef>
				<defName>Bed</defName>
				<Label>not this one</Label>
				<label>bed</label>
			</ThingDef>
		</Defs>`)

	nodes := Extract(doc, DefaultTags(), Lookup{})
	leaves := Leaves(nodes)
	if len(leaves) != 1 || leaves[0].OriginalText != "bed" {
		t.Fatalf("allow-list must be case-sensitive: %+v", leaves)
	}
}

func TestPathKeyDeterminismAcrossParses(t *testing.T) {
	t.Parallel()

	content := `<Defs>
		<ThingDef>
			<defName>Chair</defName>
			<label>chair</label>
			<description>A comfy chair.</description>
		</ThingDef>
	</Defs>`

	keys := func() []string {
		doc := loadDoc(t, "Defs/things.xml", content)
		lookup := Lookup{}
		Extract(doc, DefaultTags(), lookup)
		return keysOf(lookup)
	}

	first, second := keys(), keys()
	if len(first) != len(second) {
		t.Fatalf("key counts differ: %v vs %v", first, second)
	}
	seen := make(map[string]bool, len(first))
	for _, k := range first {
		seen[k] = true
	}
	for _, k := range second {
		if !seen[k] {
			t.Fatalf("key %q missing from first parse: %v", k, first)
		}
	}
}

func TestTagSetWith(t *testing.T) {
	t.Parallel()

	base := DefaultTags()
	extended := base.With("flavorText", "  ", "")
	if !extended["flavorText"] {
		t.Fatal("extra tag not added")
	}
	if base["flavorText"] {
		t.Fatal("With must not mutate the receiver")
	}
	if !extended["label"] {
		t.Fatal("built-in tags must survive extension")
	}
}

func TestApplyAndRoundTrip(t *testing.T) {
	t.Parallel()

	doc := loadDoc(t, "Defs/things.xml",
		`<Defs>
			<ThingDef>
				<defName>Chair</defName>
				<label>chair</label>
				<description>A comfy chair.</description>
			</ThingDef>
		</Defs>`)

	lookup := Lookup{}
	nodes := Extract(doc, DefaultTags(), lookup)

	labelKey := PathKey(doc.RelPath, "ThingDef[defName=Chair]/label")
	lookup[labelKey].SubmittedTranslation = "стул"
	// description has only a draft — the draft is the fallback.
	descKey := PathKey(doc.RelPath, "ThingDef[defName=Chair]/description")
	lookup[descKey].Translation = "Удобный стул."

	Apply(nodes)

	// Re-extract from the same (mutated) document: applied values are now
	// the original text.
	relookup := Lookup{}
	Extract(doc, DefaultTags(), relookup)
	if got := relookup[labelKey].OriginalText; got != "стул" {
		t.Fatalf("label after apply = %q", got)
	}
	if got := relookup[descKey].OriginalText; got != "Удобный стул." {
		t.Fatalf("description after apply = %q", got)
	}

	// defName was never touched.
	if relookup[PathKey(doc.RelPath, "ThingDef[defName=Chair]/label")] == nil {
		t.Fatal("PathKeys must be unchanged after apply")
	}
}

func TestApplyLeavesUntranslatedAlone(t *testing.T) {
	t.Parallel()

	doc := loadDoc(t, "Keyed/K.xml", `<LanguageData><Greeting>Hello</Greeting></LanguageData>`)
	lookup := Lookup{}
	nodes := Extract(doc, DefaultTags(), lookup)

	Apply(nodes)

	relookup := Lookup{}
	Extract(doc, DefaultTags(), relookup)
	if got := relookup[PathKey(doc.RelPath, "Greeting")].OriginalText; got != "Hello" {
		t.Fatalf("untranslated leaf mutated: %q", got)
	}
}

func TestEffectiveTranslationPrecedence(t *testing.T) {
	t.Parallel()

	n := &Node{Translation: "draft"}
	if got := n.EffectiveTranslation(); got != "draft" {
		t.Fatalf("draft fallback = %q", got)
	}
	n.SubmittedTranslation = "final"
	if got := n.EffectiveTranslation(); got != "final" {
		t.Fatalf("submitted must win: %q", got)
	}
}

func keysOf(l Lookup) []string {
	out := make([]string, 0, len(l))
	for k := range l {
		out = append(out, k)
	}
	return out
}
