// Package mover implements FileMover (spec §4.7): move / trash /
// trash-with-root operations that keep HashRecordStore coherent with the
// file system as files are relocated, performing move-merge when a
// destination directory already exists.
//
// Grounded on the teacher's pkg/filesystem/directory_posix.go Rename (a
// rename helper that layers extra bookkeeping - staleness checks, parent
// directory creation - on top of a raw os.Rename) and the general
// "update the side database only after the file-system operation that it
// describes has actually succeeded" ordering used throughout
// pkg/synchronization/core (state is never marked consistent until the
// corresponding I/O has committed).
package mover

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/orphdat/orphdat/internal/store"
	"github.com/orphdat/orphdat/internal/typeregistry"
)

// MissingAncestorError indicates that TrashWithRoot's root argument is not
// an ancestor of the path being trashed (spec §7 MissingAncestor).
type MissingAncestorError struct {
	Root string
	Path string
}

func (e *MissingAncestorError) Error() string {
	return "root " + e.Root + " is not an ancestor of " + e.Path
}

// Mover is a FileMover. The zero value is not usable; construct with New.
type Mover struct {
	store *store.Store
}

// New creates a Mover backed by the given Store, so that its moves and the
// HashRecordStore bookkeeping they trigger share one in-memory cache slot.
func New(s *store.Store) *Mover {
	return &Mover{store: s}
}

// Move relocates src to dst (spec §4.7 move), keeping the HashRecordStore
// coherent throughout. It dispatches to moveFile or moveDirectory depending
// on what src is.
func (m *Mover) Move(src, dst string) error {
	if src == dst {
		return nil
	}

	info, err := os.Lstat(src)
	if err != nil {
		return errors.Wrapf(err, "unable to stat move source %s", src)
	}
	if info.IsDir() {
		return m.moveDirectory(src, dst)
	}
	return m.moveFile(src, dst)
}

// moveFile implements spec §4.7's file case of move.
func (m *Mover) moveFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return errors.Wrapf(err, "unable to create destination directory for %s", dst)
	}

	_, dstErr := os.Lstat(dst)
	dstExists := dstErr == nil

	if dstExists {
		if !(isOrphdat(src) && isOrphdat(dst)) {
			return errors.Errorf("move destination already exists: %s", dst)
		}
		// Two store files: merge src's records into dst via
		// HashRecordStore.Append, then unlink src, since os.Rename would
		// otherwise silently clobber dst.
		return m.mergeStoreFiles(src, dst)
	}

	if err := os.Rename(src, dst); err != nil {
		return errors.Wrapf(err, "unable to rename %s to %s", src, dst)
	}
	if isOrphdat(src) {
		// A store file relocating to a fresh destination is pure
		// file-system bookkeeping; it has no entry of its own in any
		// HashRecordStore to update.
		return nil
	}
	return m.store.Move(src, dst)
}

// mergeStoreFiles implements the ".orphdat already exists at dst" branch of
// spec §4.7 move: append src's records into dst, then remove src.
func (m *Mover) mergeStoreFiles(src, dst string) error {
	if err := m.store.Append(dst, []string{src}); err != nil {
		return err
	}
	if err := os.Remove(src); err != nil {
		return errors.Wrapf(err, "unable to remove merged store %s", src)
	}
	return nil
}

func isOrphdat(path string) bool {
	return filepath.Base(path) == store.StoreFileName
}

// moveDirectory implements spec §4.7's directory case of move: a plain
// rename if dst doesn't exist yet, otherwise a recursive move-merge of
// every entry followed by removing src if it ends up empty.
func (m *Mover) moveDirectory(src, dst string) error {
	if _, err := os.Lstat(dst); err != nil {
		if !os.IsNotExist(err) {
			return errors.Wrapf(err, "unable to stat move destination %s", dst)
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return errors.Wrapf(err, "unable to create destination parent for %s", dst)
		}
		if err := os.Rename(src, dst); err != nil {
			return errors.Wrapf(err, "unable to rename directory %s to %s", src, dst)
		}
		return nil
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return errors.Wrapf(err, "unable to list directory %s", src)
	}
	for _, entry := range entries {
		srcEntry := filepath.Join(src, entry.Name())
		dstEntry := filepath.Join(dst, entry.Name())

		if entry.Name() == store.StoreFileName {
			if _, err := os.Lstat(srcEntry); err != nil {
				if os.IsNotExist(err) {
					// Emptied as its last media file left during this
					// loop; nothing left to merge.
					continue
				}
				return errors.Wrapf(err, "unable to stat %s", srcEntry)
			}
		}

		if err := m.Move(srcEntry, dstEntry); err != nil {
			return err
		}
	}

	remaining, err := os.ReadDir(src)
	if err != nil {
		return errors.Wrapf(err, "unable to list directory %s", src)
	}
	if len(remaining) == 0 {
		if err := os.Remove(src); err != nil {
			return errors.Wrapf(err, "unable to remove emptied directory %s", src)
		}
	}
	return nil
}

// Trash moves path into its parent's ".orphtrash" subdirectory, or simply
// removes it if it's already an empty directory (spec §4.7 trash).
func (m *Mover) Trash(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		return errors.Wrapf(err, "unable to stat %s", path)
	}
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return errors.Wrapf(err, "unable to list directory %s", path)
		}
		if len(entries) == 0 {
			return os.Remove(path)
		}
	}

	trashDir := filepath.Join(filepath.Dir(path), store.TrashDirName)
	if err := os.MkdirAll(trashDir, 0o755); err != nil {
		return errors.Wrapf(err, "unable to create trash directory %s", trashDir)
	}
	return m.Move(path, filepath.Join(trashDir, filepath.Base(path)))
}

// TrashWithRoot moves path into root's ".orphtrash" subdirectory, preserving
// the path components between root and path (minus any existing
// ".orphtrash" components, which are collapsed away so repeated trashing
// doesn't nest trash directories) (spec §4.7 trash_with_root, scenario 6).
func (m *Mover) TrashWithRoot(path, root string) error {
	cleanRoot := filepath.Clean(root)
	cleanPath := filepath.Clean(path)

	rel, err := filepath.Rel(cleanRoot, cleanPath)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return &MissingAncestorError{Root: root, Path: path}
	}

	components := strings.Split(rel, string(filepath.Separator))
	kept := components[:0:0]
	for _, component := range components {
		if strings.EqualFold(component, store.TrashDirName) {
			continue
		}
		kept = append(kept, component)
	}
	if len(kept) == 0 {
		return &MissingAncestorError{Root: root, Path: path}
	}

	target := filepath.Join(append([]string{cleanRoot, store.TrashDirName}, kept...)...)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return errors.Wrapf(err, "unable to create trash directory for %s", target)
	}
	return m.Move(path, target)
}

// TrashAndSidecars trashes path and every sidecar file TypeRegistry reports
// as existing alongside it (spec §4.7 trash_and_sidecars).
func (m *Mover) TrashAndSidecars(path string) error {
	if err := m.Trash(path); err != nil {
		return err
	}
	for _, sidecar := range typeregistry.SidecarPaths(path) {
		if err := m.Trash(sidecar); err != nil {
			return err
		}
	}
	return nil
}
