package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/orphdat/orphdat/internal/model"
)

func record(filename, digest string, version int) *model.HashRecord {
	return &model.HashRecord{
		Filename: filename,
		Size:     100,
		Mtime:    1700000000,
		Md5:      digest,
		FullMd5:  digest,
		Version:  version,
	}
}

const digestA = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
const digestB = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
const digestC = "cccccccccccccccccccccccccccccccc"

func TestPutThenReadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	mediaPath := filepath.Join(dir, "IMG_0001.JPG")

	s := New(nil)
	rec := record("IMG_0001.JPG", digestA, 6)
	if err := s.Put(mediaPath, rec); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	set, err := s.Read(PathFor(mediaPath))
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	got, ok := set[KeyFor(mediaPath)]
	if !ok {
		t.Fatalf("expected key %q in store", KeyFor(mediaPath))
	}
	if !got.Equal(rec) {
		t.Errorf("round-tripped record differs: got %+v, want %+v", got, rec)
	}
}

func TestPutIsNoopWhenRecordUnchanged(t *testing.T) {
	dir := t.TempDir()
	mediaPath := filepath.Join(dir, "a.jpg")
	storePath := PathFor(mediaPath)

	s := New(nil)
	rec := record("a.jpg", digestA, 6)
	if err := s.Put(mediaPath, rec); err != nil {
		t.Fatalf("first put failed: %v", err)
	}
	before, err := os.ReadFile(storePath)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	if err := s.Put(mediaPath, rec.Clone()); err != nil {
		t.Fatalf("second put failed: %v", err)
	}
	after, err := os.ReadFile(storePath)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(before) != string(after) {
		t.Errorf("put with an unchanged record should leave the store file's content untouched")
	}
}

// TestEmptyStoreIsDeletedOnRemove exercises scenario 4: start with a single
// record, remove it, and confirm the store file is gone and read_or_create
// returns a fresh empty set.
func TestEmptyStoreIsDeletedOnRemove(t *testing.T) {
	dir := t.TempDir()
	mediaPath := filepath.Join(dir, "only.jpg")
	storePath := PathFor(mediaPath)

	s := New(nil)
	if err := s.Put(mediaPath, record("only.jpg", digestA, 6)); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	old, err := s.Remove(mediaPath)
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if old == nil {
		t.Fatalf("expected remove to return the old record")
	}
	if _, err := os.Stat(storePath); !os.IsNotExist(err) {
		t.Errorf("expected store file to be deleted, stat error: %v", err)
	}

	set, err := s.ReadOrCreate(storePath)
	if err != nil {
		t.Fatalf("read_or_create failed: %v", err)
	}
	if len(set) != 0 {
		t.Errorf("expected empty set after recreate, got %d entries", len(set))
	}
}

func TestLegacyStoreUpgradesToJSON(t *testing.T) {
	dir := t.TempDir()
	storePath := filepath.Join(dir, StoreFileName)
	legacy := "IMG_0001.JPG: " + digestA + "\nIMG_0002.JPG: " + digestB + "\n"
	if err := os.WriteFile(storePath, []byte(legacy), 0o644); err != nil {
		t.Fatalf("unable to seed legacy store: %v", err)
	}

	s := New(nil)
	set, err := s.Read(storePath)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(set) != 2 {
		t.Fatalf("expected 2 records, got %d", len(set))
	}
	for _, rec := range set {
		if rec.Version != 0 {
			t.Errorf("legacy record should have version 0, got %d", rec.Version)
		}
		if rec.Md5 != rec.FullMd5 {
			t.Errorf("legacy record should have md5 == full_md5")
		}
	}

	if err := s.Write(storePath, set); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	data, err := os.ReadFile(storePath)
	if err != nil {
		t.Fatalf("unable to read back store: %v", err)
	}
	if data[0] != '{' {
		t.Errorf("expected JSON after write, got %q", data[:1])
	}
}

func TestMoveMergeOfSiblingStores(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()

	s := New(nil)

	// Source has {a, b}; destination has {b (identical), c}.
	if err := s.Put(filepath.Join(srcDir, "a.jpg"), record("a.jpg", digestA, 6)); err != nil {
		t.Fatalf("put a failed: %v", err)
	}
	sharedB := record("b.jpg", digestB, 6)
	if err := s.Put(filepath.Join(srcDir, "b.jpg"), sharedB); err != nil {
		t.Fatalf("put src b failed: %v", err)
	}
	if err := s.Put(filepath.Join(dstDir, "b.jpg"), sharedB.Clone()); err != nil {
		t.Fatalf("put dst b failed: %v", err)
	}
	if err := s.Put(filepath.Join(dstDir, "c.jpg"), record("c.jpg", digestC, 6)); err != nil {
		t.Fatalf("put c failed: %v", err)
	}

	srcStorePath := filepath.Join(srcDir, StoreFileName)
	dstStorePath := filepath.Join(dstDir, StoreFileName)
	if err := s.Append(dstStorePath, []string{srcStorePath}); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	merged, err := s.Read(dstStorePath)
	if err != nil {
		t.Fatalf("read merged store failed: %v", err)
	}
	if len(merged) != 3 {
		t.Fatalf("expected 3 merged keys, got %d: %+v", len(merged), merged)
	}
	for _, key := range []string{"a.jpg", "b.jpg", "c.jpg"} {
		if _, ok := merged[key]; !ok {
			t.Errorf("expected merged store to contain key %q", key)
		}
	}
}

func TestAppendFailsOnKeyCollision(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()
	s := New(nil)

	if err := s.Put(filepath.Join(srcDir, "b.jpg"), record("b.jpg", digestA, 6)); err != nil {
		t.Fatalf("put src b failed: %v", err)
	}
	if err := s.Put(filepath.Join(dstDir, "b.jpg"), record("b.jpg", digestB, 6)); err != nil {
		t.Fatalf("put dst b failed: %v", err)
	}

	srcStorePath := filepath.Join(srcDir, StoreFileName)
	dstStorePath := filepath.Join(dstDir, StoreFileName)

	before, err := os.ReadFile(dstStorePath)
	if err != nil {
		t.Fatalf("unable to read dst store: %v", err)
	}

	err = s.Append(dstStorePath, []string{srcStorePath})
	if err == nil {
		t.Fatalf("expected KeyCollisionError, got nil")
	}
	if _, ok := err.(*KeyCollisionError); !ok {
		t.Errorf("expected *KeyCollisionError, got %T: %v", err, err)
	}

	after, err := os.ReadFile(dstStorePath)
	if err != nil {
		t.Fatalf("unable to re-read dst store: %v", err)
	}
	if string(before) != string(after) {
		t.Errorf("target store should be untouched after a failed append")
	}
}

func TestMoveUpdatesFilenameAndKeys(t *testing.T) {
	oldDir := t.TempDir()
	newDir := t.TempDir()
	oldPath := filepath.Join(oldDir, "IMG_0001.JPG")
	newPath := filepath.Join(newDir, "renamed.jpg")

	s := New(nil)
	if err := s.Put(oldPath, record("IMG_0001.JPG", digestA, 6)); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	if err := s.Move(oldPath, newPath); err != nil {
		t.Fatalf("move failed: %v", err)
	}

	oldSet, err := s.ReadOrCreate(PathFor(oldPath))
	if err != nil {
		t.Fatalf("read old store failed: %v", err)
	}
	if _, ok := oldSet[KeyFor(oldPath)]; ok {
		t.Errorf("expected old key to be absent after move")
	}

	newSet, err := s.Read(PathFor(newPath))
	if err != nil {
		t.Fatalf("read new store failed: %v", err)
	}
	newRecord, ok := newSet[KeyFor(newPath)]
	if !ok {
		t.Fatalf("expected new key to be present after move")
	}
	if newRecord.Filename != "renamed.jpg" {
		t.Errorf("expected filename to be updated to the new basename, got %q", newRecord.Filename)
	}
	if newRecord.Md5 != digestA {
		t.Errorf("expected md5 to survive the move unchanged")
	}
}
