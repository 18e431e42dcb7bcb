package walker

import (
	"os"
	"path/filepath"

	"github.com/orphdat/orphdat/internal/store"
	"github.com/orphdat/orphdat/internal/typeregistry"
)

// SkipTrash returns an IsWanted that prunes ".orphtrash" subtrees, deferring
// everything else to next. Pass a nil next to accept everything but trash.
func SkipTrash(next IsWanted) IsWanted {
	return func(fullPath, rootPath string) bool {
		if filepath.Base(fullPath) == store.TrashDirName {
			return false
		}
		if next == nil {
			return true
		}
		return next(fullPath, rootPath)
	}
}

// MediaFiles returns an IsWanted suitable for HashEngine-driven walks: every
// directory is accepted (subject to next, e.g. trash-skipping), and files
// are accepted only if TypeRegistry recognizes them as media (spec §4.1
// is_media).
func MediaFiles(next IsWanted) IsWanted {
	return func(fullPath, rootPath string) bool {
		if next != nil && !next(fullPath, rootPath) {
			return false
		}
		if typeregistry.IsMedia(filepath.Base(fullPath)) {
			return true
		}
		// Directories aren't media files themselves, but must still be
		// accepted so traversal can descend into them; IsMedia(dirname)
		// will be false for ordinary directory names, so this branch
		// distinguishes "not media" from "not a directory" by stat'ing.
		return isDirectory(fullPath)
	}
}

func isDirectory(path string) bool {
	info, err := os.Lstat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
