package store

import (
	"path/filepath"
	"strings"
)

// StoreFileName is the per-directory database file name (spec §4.5, §6).
const StoreFileName = ".orphdat"

// TrashDirName is the per-directory trash subdirectory name (spec §4.7, §6).
const TrashDirName = ".orphtrash"

// PathFor returns the store path that indexes mediaPath: the ".orphdat"
// file in mediaPath's parent directory.
func PathFor(mediaPath string) string {
	return filepath.Join(filepath.Dir(mediaPath), StoreFileName)
}

// PathForDir returns the store path for directory dir directly, for callers
// (such as find_hashes) that already have the directory rather than a
// media path within it.
func PathForDir(dir string) string {
	return filepath.Join(dir, StoreFileName)
}

// KeyFor returns the HashSet key for mediaPath: its lowercased basename
// (spec §4.5).
func KeyFor(mediaPath string) string {
	return strings.ToLower(filepath.Base(mediaPath))
}

// MediaPathFor reconstructs the sibling media path for a record filename
// found in the store at storePath (spec §4.6 find_hashes).
func MediaPathFor(storePath, filename string) string {
	return filepath.Join(filepath.Dir(storePath), filename)
}
