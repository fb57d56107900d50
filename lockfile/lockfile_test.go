package lockfile

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHashDeterministic(t *testing.T) {
	h1 := Hash("chair")
	h2 := Hash("chair")
	if h1 != h2 {
		t.Errorf("Hash not deterministic: %s != %s", h1, h2)
	}
	h3 := Hash("table")
	if h1 == h3 {
		t.Errorf("Hash collision: %s == %s", h1, h3)
	}
}

func TestLoadNonExistent(t *testing.T) {
	lf, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load returned error for non-existent file: %v", err)
	}
	if lf.Version != Version {
		t.Errorf("Version = %d, want %d", lf.Version, Version)
	}
	if len(lf.Checksums) != 0 {
		t.Errorf("Checksums not empty: %v", lf.Checksums)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()

	lf, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	lf.Update("Defs/things.xml", "ThingDef[defName=Chair]/label", "chair")
	lf.Update("Defs/things.xml", "ThingDef[defName=Chair]/description", "A chair.")
	lf.Update("Languages/English/Keyed/Bar.xml", "Greeting", "Hello")

	if err := lf.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	path := filepath.Join(dir, LockFileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatalf("Lock file not created at %s", path)
	}

	lf2, err := Load(dir)
	if err != nil {
		t.Fatalf("Load after save: %v", err)
	}

	docs, keys := lf2.Stats()
	if docs != 2 {
		t.Errorf("docs = %d, want 2", docs)
	}
	if keys != 3 {
		t.Errorf("keys = %d, want 3", keys)
	}
}

func TestIsChanged(t *testing.T) {
	lf := &LockFile{
		Version:   Version,
		Checksums: make(map[string]map[string]string),
	}

	if !lf.IsChanged("Defs/things.xml", "ThingDef[defName=Chair]/label", "chair") {
		t.Error("new entry should be changed")
	}

	lf.Update("Defs/things.xml", "ThingDef[defName=Chair]/label", "chair")
	if lf.IsChanged("Defs/things.xml", "ThingDef[defName=Chair]/label", "chair") {
		t.Error("unchanged entry reported as changed")
	}
	if !lf.IsChanged("Defs/things.xml", "ThingDef[defName=Chair]/label", "armchair") {
		t.Error("edited source not reported as changed")
	}
	if !lf.IsChanged("Defs/other.xml", "ThingDef[defName=Chair]/label", "chair") {
		t.Error("same key in a different document should be independent")
	}
}

func TestHas(t *testing.T) {
	lf := &LockFile{
		Version:   Version,
		Checksums: make(map[string]map[string]string),
	}
	if lf.Has("Defs/things.xml", "ThingDef[defName=Chair]/label") {
		t.Error("Has = true for empty lock")
	}
	lf.Update("Defs/things.xml", "ThingDef[defName=Chair]/label", "chair")
	if !lf.Has("Defs/things.xml", "ThingDef[defName=Chair]/label") {
		t.Error("Has = false after Update")
	}
}

func TestClean(t *testing.T) {
	lf := &LockFile{
		Version:   Version,
		Checksums: make(map[string]map[string]string),
	}
	lf.Update("Defs/things.xml", "ThingDef[defName=Chair]/label", "chair")
	lf.Update("Defs/things.xml", "ThingDef[defName=Table]/label", "table")

	lf.Clean("Defs/things.xml", []string{"ThingDef[defName=Chair]/label"})

	if _, ok := lf.Checksums["Defs/things.xml"]["ThingDef[defName=Table]/label"]; ok {
		t.Error("stale key survived Clean")
	}
	if _, ok := lf.Checksums["Defs/things.xml"]["ThingDef[defName=Chair]/label"]; !ok {
		t.Error("live key removed by Clean")
	}
}

func TestRemoveDoc(t *testing.T) {
	lf := &LockFile{
		Version:   Version,
		Checksums: make(map[string]map[string]string),
	}
	lf.Update("Defs/things.xml", "k", "v")
	lf.RemoveDoc("Defs/things.xml")
	if docs, _ := lf.Stats(); docs != 0 {
		t.Errorf("docs = %d after RemoveDoc", docs)
	}
}

func TestSummary(t *testing.T) {
	lf := &LockFile{
		Version:   Version,
		Checksums: make(map[string]map[string]string),
	}
	if lf.Summary() != "empty" {
		t.Errorf("Summary = %q", lf.Summary())
	}
	lf.Update("Defs/things.xml", "k1", "v1")
	lf.Update("Defs/things.xml", "k2", "v2")
	got := lf.Summary()
	want := "1 documents, 2 keys (Defs/things.xml: 2 keys)"
	if got != want {
		t.Errorf("Summary = %q, want %q", got, want)
	}
}
