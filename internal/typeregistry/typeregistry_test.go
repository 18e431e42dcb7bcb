package typeregistry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/orphdat/orphdat/internal/model"
)

// TestPackageLoadsWithoutPanicking exercises init() by virtue of being in
// package typeregistry: if the sidecar-cycle check were still wrong (or
// wrong again), this test binary itself would never start.
func TestPackageLoadsWithoutPanicking(t *testing.T) {
	if _, ok := Info("jpg"); !ok {
		t.Fatalf("expected table to contain jpg after init")
	}
}

func TestSidecaredPrimariesRankBeforeTheirSidecars(t *testing.T) {
	for _, ext := range []string{"jpg", "heic", "mp4", "crw", "cr2", "cr3", "nef", "raf"} {
		entry, ok := Info(ext)
		if !ok {
			t.Fatalf("missing table entry for %s", ext)
		}
		if entry.ExtOrder != -1 {
			t.Errorf("expected %s.ExtOrder == -1, got %d", ext, entry.ExtOrder)
		}
	}
}

func TestJPGIsBothAPrimaryAndASidecar(t *testing.T) {
	jpg, ok := Info("jpg")
	if !ok {
		t.Fatalf("missing table entry for jpg")
	}
	if len(jpg.Sidecars) == 0 {
		t.Errorf("expected jpg to itself carry sidecars (aae), got none")
	}

	crw, ok := Info("crw")
	if !ok {
		t.Fatalf("missing table entry for crw")
	}
	found := false
	for _, sidecarExt := range crw.Sidecars {
		if sidecarExt == "jpg" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected crw's sidecars to list jpg, got %v", crw.Sidecars)
	}
}

func TestFindSidecarCycleDetectsAnActualCycle(t *testing.T) {
	saved := table
	defer func() { table = saved }()

	// A -> B -> A is a genuine cycle and must be caught...
	table = map[string]model.TypeEntry{
		"a": {Sidecars: []string{"b"}},
		"b": {Sidecars: []string{"a"}},
	}
	if cyclePath := findSidecarCycle("a"); cyclePath == "" {
		t.Errorf("expected a cycle to be detected for a -> b -> a")
	}

	// ...while a shared sidecar extension between two unrelated primaries
	// (the real jpg/crw situation) must not be flagged as one.
	table = map[string]model.TypeEntry{
		"crw": {Sidecars: []string{"jpg"}},
		"nef": {Sidecars: []string{"jpg"}},
		"jpg": {Sidecars: []string{"aae"}},
		"aae": {},
	}
	if cyclePath := findSidecarCycle("crw"); cyclePath != "" {
		t.Errorf("expected no cycle for crw -> jpg -> aae, got %q", cyclePath)
	}
	if cyclePath := findSidecarCycle("nef"); cyclePath != "" {
		t.Errorf("expected no cycle for nef -> jpg -> aae, got %q", cyclePath)
	}
}

func TestMimeReturnsEmptyForUnknownExtension(t *testing.T) {
	if mime := Mime("archive.zip"); mime != "" {
		t.Errorf("expected empty MIME for unknown extension, got %q", mime)
	}
	if mime := Mime("photo.JPG"); mime != "image/jpeg" {
		t.Errorf("expected image/jpeg for photo.JPG, got %q", mime)
	}
}

func TestIsMediaRecognizesBackupSuffixedNames(t *testing.T) {
	if !IsMedia("IMG_0001.jpg") {
		t.Errorf("expected IMG_0001.jpg to be recognized as media")
	}
	if !IsMedia("IMG_0001.jpg.bak") {
		t.Errorf("expected a .bak-suffixed media file to still be recognized")
	}
	if IsMedia("notes.txt") {
		t.Errorf("expected notes.txt not to be recognized as media")
	}
}

func TestSidecarPathsFindsExistingSidecarsOnly(t *testing.T) {
	dir := t.TempDir()
	primary := filepath.Join(dir, "IMG_0001.crw")
	jpgSidecar := filepath.Join(dir, "IMG_0001.jpg")
	if err := os.WriteFile(primary, []byte("raw"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(jpgSidecar, []byte("preview"), 0o644); err != nil {
		t.Fatal(err)
	}

	paths := SidecarPaths(primary)
	if len(paths) != 1 || paths[0] != jpgSidecar {
		t.Errorf("expected only the existing jpg sidecar, got %v", paths)
	}
}
