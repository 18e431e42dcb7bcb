// Package store implements HashRecordStore (spec §4.5): a per-directory JSON
// database of HashRecords, with a legacy plain-text fallback format, a
// single-slot in-memory cache, and move/append operations that keep the
// on-disk database coherent with file-system moves performed by
// internal/mover.
//
// Grounded on the teacher's pkg/synchronization/core/cache.go (a persisted,
// versioned, map-keyed side database consulted and rewritten alongside scan
// operations) and pkg/filesystem/atomic.go (the rename-into-place write
// idiom, adapted in atomic.go).
package store

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/orphdat/orphdat/internal/logging"
	"github.com/orphdat/orphdat/internal/model"
)

// Store is a HashRecordStore. The zero value is not usable; construct with
// New. A Store owns exactly one in-memory cache slot (spec §5, §9: "a
// single owned mutable slot within the HashEngine instance, not a
// process-global"); HashEngine embeds one Store per instance.
type Store struct {
	logger *logging.Logger

	// cachedPath and cachedSet form the single-slot cache: whichever store
	// was most recently read or written. cachedSet is always a value this
	// Store owns outright; callers receive deep copies (spec §5).
	cachedPath string
	cachedSet  model.HashSet
}

// New creates an empty Store.
func New(logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.RootLogger.Sublogger("store")
	}
	return &Store{logger: logger}
}

// readFile reads and parses storePath, returning (nil, nil, false) if the
// file does not exist.
func (s *Store) readFile(storePath string) (model.HashSet, error, bool) {
	data, err := os.ReadFile(storePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, false
		}
		return nil, errors.Wrapf(err, "unable to read store %s", storePath), true
	}
	set, err := parseStore(storePath, data)
	if err != nil {
		return nil, err, true
	}
	return set, nil, true
}

// cache updates the single-slot cache with a deep copy of set, keyed by
// storePath.
func (s *Store) cache(storePath string, set model.HashSet) {
	s.cachedPath = storePath
	s.cachedSet = set.Clone()
}

// cached returns a deep copy of the cached set for storePath, if the cache
// slot currently holds that path.
func (s *Store) cached(storePath string) (model.HashSet, bool) {
	if s.cachedPath == storePath && s.cachedSet != nil {
		return s.cachedSet.Clone(), true
	}
	return nil, false
}

// PeekCache returns a deep copy of whatever the single-slot in-memory cache
// currently holds for storePath, without touching disk. HashEngine.Resolve
// uses this for its "in-memory cache" fast path (spec §4.6 step 3), which is
// deliberately distinct from ReadOrCreate's disk round-trip (step 4).
func (s *Store) PeekCache(storePath string) (model.HashSet, bool) {
	return s.cached(storePath)
}

// Read opens and parses an existing store, failing if it does not exist
// (spec §4.5 read). It updates the in-memory cache with a deep copy.
func (s *Store) Read(storePath string) (model.HashSet, error) {
	set, err, existed := s.readFile(storePath)
	if err != nil {
		return nil, err
	}
	if !existed {
		return nil, errors.Errorf("store does not exist: %s", storePath)
	}
	s.cache(storePath, set)
	return set.Clone(), nil
}

// ReadOrCreate parses an existing store, or returns a fresh empty set if
// none exists on disk yet (spec §4.5 read_or_create).
func (s *Store) ReadOrCreate(storePath string) (model.HashSet, error) {
	set, err, existed := s.readFile(storePath)
	if err != nil {
		return nil, err
	}
	if !existed {
		set = model.HashSet{}
	}
	s.cache(storePath, set)
	return set.Clone(), nil
}

// Write replaces storePath with set, pretty-printed and key-sorted (spec
// §4.5 write), by writing a sibling temporary file and renaming it into
// place. Writing an empty set succeeds but emits a
// warning, since callers should generally Remove/unlink instead.
func (s *Store) Write(storePath string, set model.HashSet) error {
	if len(set) == 0 {
		s.logger.Warn("writing empty store %s; callers should remove it instead", storePath)
	}
	data, err := marshalStore(set)
	if err != nil {
		return errors.Wrapf(err, "unable to encode store %s", storePath)
	}
	if err := writeFileAtomic(storePath, data); err != nil {
		return errors.Wrapf(err, "unable to write store %s", storePath)
	}
	s.cache(storePath, set)
	return nil
}

// Put reads or creates the store for mediaPath's directory, and writes
// record into it under mediaPath's key, unless an equal record is already
// present (spec §4.5 put).
func (s *Store) Put(mediaPath string, record *model.HashRecord) error {
	storePath := PathFor(mediaPath)
	key := KeyFor(mediaPath)

	set, err := s.ReadOrCreate(storePath)
	if err != nil {
		return err
	}
	if existing, ok := set[key]; ok && existing.Equal(record) {
		return nil
	}
	set[key] = record.Clone()
	return s.Write(storePath, set)
}

// Remove deletes mediaPath's key from its store, returning the record that
// was removed (nil if it was absent). If removing the key empties the
// store, the store file is unlinked (spec §4.5 remove).
func (s *Store) Remove(mediaPath string) (*model.HashRecord, error) {
	storePath := PathFor(mediaPath)
	key := KeyFor(mediaPath)

	set, err, existed := s.readFile(storePath)
	if err != nil {
		return nil, err
	}
	if !existed {
		return nil, nil
	}
	old, ok := set[key]
	if !ok {
		s.cache(storePath, set)
		return nil, nil
	}
	delete(set, key)

	if len(set) == 0 {
		if err := os.Remove(storePath); err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "unable to remove empty store %s", storePath)
		}
		s.cache(storePath, set)
		return old, nil
	}
	if err := s.Write(storePath, set); err != nil {
		return nil, err
	}
	return old, nil
}

// Move relocates a media file's record from its old path's store to its new
// path's store, preserving all fields except Filename, which is replaced by
// the new basename (spec §4.5 move). If newMediaPath is empty, Move behaves
// as Remove on oldMediaPath.
func (s *Store) Move(oldMediaPath, newMediaPath string) error {
	if newMediaPath == "" {
		_, err := s.Remove(oldMediaPath)
		return err
	}

	oldStorePath := PathFor(oldMediaPath)
	oldKey := KeyFor(oldMediaPath)
	oldSet, err, existed := s.readFile(oldStorePath)
	if err != nil {
		return err
	}
	if !existed {
		return nil
	}
	oldRecord, ok := oldSet[oldKey]
	if !ok {
		s.cache(oldStorePath, oldSet)
		return nil
	}

	newStorePath := PathFor(newMediaPath)
	newKey := KeyFor(newMediaPath)
	newBase := model.Base{
		Filename: filepath.Base(newMediaPath),
		Size:     oldRecord.Size,
		Mtime:    oldRecord.Mtime,
	}
	newRecord := oldRecord.WithBase(newBase)

	newSet, err, newExisted := s.readFile(newStorePath)
	if err != nil {
		return err
	}
	if !newExisted {
		newSet = model.HashSet{}
	}
	if existing, ok := newSet[newKey]; !ok || !existing.Equal(newRecord) {
		newSet[newKey] = newRecord
		if err := s.Write(newStorePath, newSet); err != nil {
			return err
		}
	} else {
		s.cache(newStorePath, newSet)
	}

	delete(oldSet, oldKey)
	if len(oldSet) == 0 {
		if err := os.Remove(oldStorePath); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, "unable to remove empty store %s", oldStorePath)
		}
		s.cache(oldStorePath, oldSet)
		return nil
	}
	return s.Write(oldStorePath, oldSet)
}

// Append merges each source store into targetStorePath: keys absent from
// the target are inserted; keys present with an equal record are skipped;
// any key present with a divergent record fails the whole append with a
// KeyCollisionError and leaves every involved file untouched (spec §4.5
// append, §7 KeyCollision).
func (s *Store) Append(targetStorePath string, sourceStorePaths []string) error {
	target, err, existed := s.readFile(targetStorePath)
	if err != nil {
		return err
	}
	if !existed {
		target = model.HashSet{}
	}

	merged := target.Clone()
	for _, sourcePath := range sourceStorePaths {
		source, err, sourceExisted := s.readFile(sourcePath)
		if err != nil {
			return err
		}
		if !sourceExisted {
			continue
		}
		for key, record := range source {
			if existing, ok := merged[key]; ok {
				if existing.Equal(record) {
					continue
				}
				return &KeyCollisionError{Key: key, Target: targetStorePath, Source: sourcePath}
			}
			merged[key] = record.Clone()
		}
	}

	if merged.Equal(target) {
		s.cache(targetStorePath, target)
		return nil
	}
	return s.Write(targetStorePath, merged)
}
