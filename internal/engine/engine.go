// Package engine implements HashEngine (spec §4.6): the orchestrator that,
// given a media path, returns its current HashRecord, consulting caches,
// validating against stat metadata, recomputing on a miss or version
// upgrade, and writing back through HashRecordStore.
//
// Grounded on the teacher's pkg/synchronization/core/scan.go, which plays
// the same orchestrator role for its own domain: given a path, it consults
// a cached digest keyed by stat metadata, recomputes only on a cache miss,
// and persists the refreshed cache entry - the same
// stat-short-circuit-then-rehash shape as resolve() here.
package engine

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/orphdat/orphdat/internal/conflict"
	"github.com/orphdat/orphdat/internal/hasher"
	"github.com/orphdat/orphdat/internal/logging"
	"github.com/orphdat/orphdat/internal/model"
	"github.com/orphdat/orphdat/internal/store"
	"github.com/orphdat/orphdat/internal/typeregistry"
)

// VersionInvariantViolationError is raised when a record's full_md5 still
// matches but its md5 doesn't, while its version is already up-to-date for
// its MIME type - an assertion failure, since the extractor is assumed
// deterministic over byte-identical inputs (spec §7).
type VersionInvariantViolationError struct {
	Path   string
	Record *model.HashRecord
}

func (e *VersionInvariantViolationError) Error() string {
	return "version invariant violated for " + e.Path + ": full_md5 matches but md5 differs at current version"
}

// Engine is a HashEngine. The zero value is not usable; construct with New.
type Engine struct {
	store    *store.Store
	resolver conflict.Resolver
	logger   *logging.Logger
}

// New creates an Engine backed by its own HashRecordStore cache slot (spec
// §9: the cache is owned per-instance, not process-global) and the given
// ConflictResolver.
func New(resolver conflict.Resolver, logger *logging.Logger) *Engine {
	if logger == nil {
		logger = logging.RootLogger.Sublogger("engine")
	}
	if resolver == nil {
		resolver = conflict.AlwaysAbort
	}
	return &Engine{
		store:    store.New(logger.Sublogger("store")),
		resolver: resolver,
		logger:   logger,
	}
}

// makeBase stats path and returns its current (filename, size, mtime)
// triple (spec §4.4.2 make_base).
func makeBase(path string) (model.Base, error) {
	info, err := os.Stat(path)
	if err != nil {
		return model.Base{}, errors.Wrapf(err, "unable to stat %s", path)
	}
	return model.Base{
		Filename: filepath.Base(path),
		Size:     info.Size(),
		Mtime:    info.ModTime().Unix(),
	}, nil
}

// canUseCached implements spec §4.6's can_use_cached: whether candidate can
// stand in for a fresh computation without re-hashing.
func canUseCached(mediaPath string, addOnly bool, candidate *model.HashRecord, base model.Base) bool {
	if candidate == nil {
		return false
	}
	if addOnly {
		return true
	}
	if candidate.Size != base.Size || candidate.Mtime != base.Mtime {
		return false
	}
	if !sameFold(candidate.Filename, base.Filename) {
		return false
	}
	mime := typeregistry.Mime(mediaPath)
	return hasher.IsVersionCurrent(mime, candidate.Version)
}

func sameFold(a, b string) bool {
	return len(a) == len(b) && equalFold(a, b)
}

func equalFold(a, b string) bool {
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// Resolve returns the current HashRecord for mediaPath (spec §4.6 resolve).
//
// addOnly honors whatever record is found without re-stating the file: it's
// meant for bulk import passes that trust an already-known-good store.
// forceRecalc skips every cache layer and always re-hashes.
// suppliedRecord, if non-nil, is tried before any cache (e.g. a caller that
// already has a record in hand from a prior find_hashes pass).
//
// A nil return with a nil error means the conflict resolver chose Skip for
// this file and nothing was written. A mediaPath that cannot be stat'ed
// (for example, one that does not exist) is an error.
func (e *Engine) Resolve(mediaPath string, addOnly, forceRecalc bool, suppliedRecord *model.HashRecord) (*model.HashRecord, error) {
	storePath := store.PathFor(mediaPath)
	key := store.KeyFor(mediaPath)

	base, err := makeBase(mediaPath)
	if err != nil {
		return nil, err
	}

	if !forceRecalc && suppliedRecord != nil && canUseCached(mediaPath, addOnly, suppliedRecord, base) {
		return suppliedRecord.WithBase(base), nil
	}

	if !forceRecalc {
		if cachedSet, ok := e.store.PeekCache(storePath); ok {
			if candidate, ok := cachedSet[key]; ok && canUseCached(mediaPath, addOnly, candidate, base) {
				return candidate.WithBase(base), nil
			}
		}
	}

	set, err := e.store.ReadOrCreate(storePath)
	if err != nil {
		return nil, err
	}
	existing := set[key]

	if !forceRecalc && canUseCached(mediaPath, addOnly, existing, base) {
		return existing.WithBase(base), nil
	}

	result, err := hasher.Hash(mediaPath, hasher.AlgorithmVersion, e.logger)
	if err != nil {
		return nil, err
	}
	return e.finishResolve(mediaPath, base, existing, result)
}

// finishResolve reconciles a freshly computed hasher.Result against
// existing and persists the outcome, the shared tail of both Resolve (which
// computes result inline) and WarmHashes (which computes result
// concurrently ahead of time so this tail is the only part touching the
// single-slot store cache).
func (e *Engine) finishResolve(mediaPath string, base model.Base, existing *model.HashRecord, result hasher.Result) (*model.HashRecord, error) {
	fresh := &model.HashRecord{
		Filename: base.Filename,
		Size:     base.Size,
		Mtime:    base.Mtime,
		Md5:      result.Md5,
		FullMd5:  result.FullMd5,
		Version:  result.Version,
	}

	reconciled, err := e.reconcile(mediaPath, existing, fresh)
	if err != nil {
		return nil, err
	}
	if reconciled == nil {
		// Skip: leave the store untouched and report nothing resolved.
		return nil, nil
	}

	if err := e.store.Put(mediaPath, reconciled); err != nil {
		return nil, err
	}
	return reconciled, nil
}

// reconcile implements spec §4.6 step 5: given the pre-existing record (nil
// if none) and a freshly computed one, decide what gets persisted.
func (e *Engine) reconcile(mediaPath string, existing, fresh *model.HashRecord) (*model.HashRecord, error) {
	if existing == nil {
		return fresh, nil
	}

	if existing.Md5 == fresh.Md5 {
		e.logger.Debugf("verified %s: content hash unchanged", mediaPath)
		return fresh, nil
	}

	mime := typeregistry.Mime(mediaPath)
	if existing.FullMd5 == fresh.FullMd5 {
		if hasher.IsVersionCurrent(mime, existing.Version) {
			return nil, &VersionInvariantViolationError{Path: mediaPath, Record: existing}
		}
		e.logger.Debugf("upgrading %s from version %d to %d", mediaPath, existing.Version, fresh.Version)
		return fresh, nil
	}

	correlationID := conflict.NewCorrelationID()
	resolution := e.resolver.OnContentMismatch(existing, fresh)
	e.logger.Debugf("content conflict %s on %s resolved as %s", correlationID, mediaPath, resolution)

	switch resolution {
	case conflict.Keep:
		return existing, nil
	case conflict.Overwrite:
		return fresh, nil
	case conflict.Skip:
		return nil, nil
	case conflict.Abort:
		return nil, errors.Errorf("content conflict %s on %s: aborting per conflict resolver", correlationID, mediaPath)
	default:
		return nil, errors.Errorf("content conflict %s on %s: conflict resolver returned an unrecognized resolution", correlationID, mediaPath)
	}
}
