// Package walker implements FileWalker (spec §4.3): glob-expanding,
// depth-first, bottom-up directory traversal with a two-phase
// is_wanted/visit filter.
//
// Grounded on the teacher's recursive scan in
// pkg/synchronization/core/scan.go (which walks a directory tree bottom-up,
// consulting an ignorer before descending into each child) and the
// bmatcuk/doublestar glob matcher the teacher's ignore engine
// (pkg/synchronization/core/ignore/mutagen) already depends on.
package walker

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
)

// IsWanted decides whether full_path should be descended into (directories)
// or visited (files). rootPath is the canonical absolute path of the
// glob-expanded root that full_path was reached from (spec §4.3).
type IsWanted func(fullPath, rootPath string) bool

// Visit is invoked for every file that IsWanted accepted, and for every
// directory that IsWanted accepted after all of its children have been
// visited (spec §4.3's "bottom-up": children before parents).
type Visit func(fullPath, rootPath string) error

// skippedPrefix matches AppleDouble sidecar files, which are never
// considered regardless of is_wanted (spec §4.3).
const skippedPrefix = "._"

// Walk expands each of roots as a shell-like glob against the current
// working directory, then traverses every match depth-first and bottom-up,
// invoking isWanted and visit per spec §4.3.
func Walk(roots []string, isWanted IsWanted, visit Visit) error {
	for _, rootPattern := range roots {
		matches, err := expandRoot(rootPattern)
		if err != nil {
			return errors.Wrapf(err, "unable to expand root %q", rootPattern)
		}
		for _, match := range matches {
			rootPath, err := filepath.Abs(match)
			if err != nil {
				return errors.Wrapf(err, "unable to canonicalize root %q", match)
			}
			if err := walkOne(rootPath, rootPath, isWanted, visit); err != nil {
				return err
			}
		}
	}
	return nil
}

// expandRoot performs the glob expansion described in spec §4.3. Patterns
// with no glob metacharacters that don't match anything on disk are passed
// through unchanged (mirroring shell behavior for a literal path), so a
// caller can name a root that doesn't exist yet and receive a clear
// file-not-found error from the subsequent stat instead of a silent no-op.
func expandRoot(rootPattern string) ([]string, error) {
	if !doublestar.ValidatePattern(rootPattern) {
		return []string{rootPattern}, nil
	}
	matches, err := doublestar.FilepathGlob(rootPattern)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return []string{rootPattern}, nil
	}
	sort.Strings(matches)
	return matches, nil
}

// walkOne traverses fullPath (file or directory), which was reached from
// rootPath.
func walkOne(fullPath, rootPath string, isWanted IsWanted, visit Visit) error {
	info, err := os.Lstat(fullPath)
	if err != nil {
		return errors.Wrapf(err, "unable to stat %q", fullPath)
	}

	if !info.IsDir() {
		if !isWanted(fullPath, rootPath) {
			return nil
		}
		return visit(fullPath, rootPath)
	}

	if !isWanted(fullPath, rootPath) {
		return nil
	}

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return errors.Wrapf(err, "unable to list directory %q", fullPath)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		if name == "." || name == ".." || strings.HasPrefix(name, skippedPrefix) {
			continue
		}
		childPath := filepath.Join(fullPath, name)
		if err := walkOne(childPath, rootPath, isWanted, visit); err != nil {
			return err
		}
	}

	return visit(fullPath, rootPath)
}
