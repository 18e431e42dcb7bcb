package store

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// temporaryNamePrefix marks intermediate files created during an atomic
// write so they're recognizable (and ignorable by FileWalker) if a crash
// leaves one behind.
const temporaryNamePrefix = ".orphdat-tmp-"

// writeFileAtomic writes data to path by staging it in a sibling temporary
// file and renaming it into place, so a concurrent reader (or a crash
// mid-write) never observes a truncated store file.
//
// Adapted from the teacher's pkg/filesystem/atomic.go WriteFileAtomic; this
// version drops the directory-handle-relative Rename (pkg/filesystem's
// Rename takes open directory handles to defend against concurrent renames
// of ancestor directories, a concern that doesn't apply to orphdat's
// single-process, no-daemon model) in favor of a plain os.Rename.
func writeFileAtomic(path string, data []byte) error {
	temporary, err := os.CreateTemp(filepath.Dir(path), temporaryNamePrefix)
	if err != nil {
		return errors.Wrap(err, "unable to create temporary file")
	}
	temporaryPath := temporary.Name()

	if _, err := temporary.Write(data); err != nil {
		temporary.Close()
		os.Remove(temporaryPath)
		return errors.Wrap(err, "unable to write temporary file")
	}
	if err := temporary.Close(); err != nil {
		os.Remove(temporaryPath)
		return errors.Wrap(err, "unable to close temporary file")
	}
	if err := os.Chmod(temporaryPath, 0o644); err != nil {
		os.Remove(temporaryPath)
		return errors.Wrap(err, "unable to set temporary file permissions")
	}
	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return errors.Wrap(err, "unable to rename temporary file into place")
	}
	return nil
}
