package engine

import (
	"runtime"
	"sync"

	"github.com/orphdat/orphdat/internal/hasher"
	"github.com/orphdat/orphdat/internal/model"
	"github.com/orphdat/orphdat/internal/store"
)

// hashOutcome pairs a path with the result of concurrently hashing it.
type hashOutcome struct {
	base   model.Base
	result hasher.Result
	err    error
}

// WarmHashes computes fresh hashes for every path in paths using a bounded
// pool of worker goroutines (GOMAXPROCS of them), then resolves each one
// through the store afterward. It's meant for bulk-import passes (such as
// find --warm) over large batches of never-before-seen media, where
// the dominant cost is reading and hashing file bytes rather than the
// HashRecordStore bookkeeping.
//
// The worker pool is a fixed-size array of goroutines fed over a channel,
// the same shape as the teacher's pkg/parallelism.SIMDWorkerArray, sized
// down from "one channel pair per worker" to a single shared job channel
// since hashing jobs carry no per-worker state. Workers only read file
// bytes and compute digests; the HashRecordStore's single-slot cache
// (spec §5, §9) is untouched during the concurrent phase and is only ever
// read or written on the sequential pass that follows, one path at a time
// in the order given.
//
// A per-path error does not abort the batch: the corresponding result entry
// is nil and the error is recorded, but every other path still resolves.
func (e *Engine) WarmHashes(paths []string) ([]*model.HashRecord, []error) {
	workers := runtime.GOMAXPROCS(0)
	if workers < 1 {
		workers = 1
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	outcomes := make([]hashOutcome, len(paths))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				path := paths[i]
				base, err := makeBase(path)
				if err != nil {
					outcomes[i] = hashOutcome{err: err}
					continue
				}
				result, err := hasher.Hash(path, hasher.AlgorithmVersion, e.logger)
				outcomes[i] = hashOutcome{base: base, result: result, err: err}
			}
		}()
	}
	for i := range paths {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	records := make([]*model.HashRecord, len(paths))
	errs := make([]error, len(paths))
	for i, path := range paths {
		outcome := outcomes[i]
		if outcome.err != nil {
			errs[i] = outcome.err
			continue
		}

		storePath := store.PathFor(path)
		set, err := e.store.ReadOrCreate(storePath)
		if err != nil {
			errs[i] = err
			continue
		}
		existing := set[store.KeyFor(path)]

		record, err := e.finishResolve(path, outcome.base, existing, outcome.result)
		if err != nil {
			errs[i] = err
			continue
		}
		records[i] = record
	}
	return records, errs
}
