package walker

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func mustMkdir(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir %q failed: %v", path, err)
	}
}

func mustWriteFile(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write %q failed: %v", path, err)
	}
}

func TestWalkSkipsDotAndAppleDouble(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "a.jpg"))
	mustWriteFile(t, filepath.Join(root, "._a.jpg"))
	mustMkdir(t, filepath.Join(root, "sub"))
	mustWriteFile(t, filepath.Join(root, "sub", "b.jpg"))

	var visited []string
	err := Walk([]string{root}, func(string, string) bool { return true }, func(fullPath, rootPath string) error {
		visited = append(visited, fullPath)
		return nil
	})
	if err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	for _, path := range visited {
		if filepath.Base(path) == "._a.jpg" {
			t.Errorf("AppleDouble sidecar should never be visited: %s", path)
		}
	}

	want := map[string]bool{
		filepath.Join(root, "a.jpg"):         true,
		filepath.Join(root, "sub", "b.jpg"):  true,
		filepath.Join(root, "sub"):           true,
		root:                                 true,
	}
	if len(visited) != len(want) {
		t.Fatalf("expected %d visits, got %d: %v", len(want), len(visited), visited)
	}
	for _, path := range visited {
		if !want[path] {
			t.Errorf("unexpected visit: %s", path)
		}
	}
}

func TestWalkVisitsChildrenBeforeParent(t *testing.T) {
	root := t.TempDir()
	mustMkdir(t, filepath.Join(root, "sub"))
	mustWriteFile(t, filepath.Join(root, "sub", "b.jpg"))

	var order []string
	err := Walk([]string{root}, func(string, string) bool { return true }, func(fullPath, rootPath string) error {
		order = append(order, fullPath)
		return nil
	})
	if err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	childIndex := indexOf(order, filepath.Join(root, "sub", "b.jpg"))
	subDirIndex := indexOf(order, filepath.Join(root, "sub"))
	rootIndex := indexOf(order, root)
	if childIndex == -1 || subDirIndex == -1 || rootIndex == -1 {
		t.Fatalf("expected all three paths to be visited: %v", order)
	}
	if !(childIndex < subDirIndex && subDirIndex < rootIndex) {
		t.Errorf("expected bottom-up order (child, subdir, root), got %v", order)
	}
}

func TestIsWantedPruningSkipsSubtree(t *testing.T) {
	root := t.TempDir()
	mustMkdir(t, filepath.Join(root, ".orphtrash"))
	mustWriteFile(t, filepath.Join(root, ".orphtrash", "gone.jpg"))
	mustWriteFile(t, filepath.Join(root, "kept.jpg"))

	var visited []string
	err := Walk([]string{root}, SkipTrash(nil), func(fullPath, rootPath string) error {
		visited = append(visited, fullPath)
		return nil
	})
	if err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	for _, path := range visited {
		if filepath.Base(filepath.Dir(path)) == ".orphtrash" {
			t.Errorf("trash subtree should have been pruned: %s", path)
		}
	}
	sort.Strings(visited)
	foundKept := false
	for _, path := range visited {
		if path == filepath.Join(root, "kept.jpg") {
			foundKept = true
		}
	}
	if !foundKept {
		t.Errorf("expected kept.jpg to be visited, got %v", visited)
	}
}

func indexOf(haystack []string, needle string) int {
	for i, v := range haystack {
		if v == needle {
			return i
		}
	}
	return -1
}
