package engine

import (
	"os"
	"sort"

	"github.com/orphdat/orphdat/internal/model"
	"github.com/orphdat/orphdat/internal/store"
	"github.com/orphdat/orphdat/internal/walker"
)

// FindVisit is invoked once per stored record that isFileWanted accepted
// (spec §4.6 find_hashes).
type FindVisit func(mediaPath string, record *model.HashRecord) error

// IsFileWanted filters individual stored records by their reconstructed
// sibling media path.
type IsFileWanted func(mediaPath string, record *model.HashRecord) bool

// FindHashes walks roots, opening every ".orphdat" file encountered and, for
// each stored record, reconstructing the sibling media path and invoking
// visit if isFileWanted accepts it. Within a single store, records are
// visited in case-sensitive filename order (spec §4.6 find_hashes).
//
// isDirWanted filters which directories are descended into; it receives the
// same (full_path, root_path) pair FileWalker itself uses, letting callers
// reuse walker.SkipTrash or a custom pruning predicate.
func (e *Engine) FindHashes(roots []string, isDirWanted walker.IsWanted, isFileWanted IsFileWanted, visit FindVisit) error {
	return walker.Walk(roots, isDirWanted, func(fullPath, rootPath string) error {
		info, err := os.Lstat(fullPath)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}

		storePath := store.PathForDir(fullPath)
		if _, err := os.Stat(storePath); err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}

		set, err := e.store.Read(storePath)
		if err != nil {
			return err
		}

		records := make([]*model.HashRecord, 0, len(set))
		for _, record := range set {
			records = append(records, record)
		}
		sort.Slice(records, func(i, j int) bool {
			return records[i].Filename < records[j].Filename
		})

		for _, record := range records {
			mediaPath := store.MediaPathFor(storePath, record.Filename)
			if isFileWanted != nil && !isFileWanted(mediaPath, record) {
				continue
			}
			if err := visit(mediaPath, record); err != nil {
				return err
			}
		}
		return nil
	})
}
