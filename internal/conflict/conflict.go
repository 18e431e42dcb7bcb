// Package conflict implements the ConflictResolver collaborator interface
// (spec §6): the decision of what to do when HashEngine finds a media
// file's content hash has changed in a way it cannot silently reconcile.
//
// Kept as an injected interface rather than an inline prompt, per spec §9
// "Interactive resolver": the source inlines prompts; the core must stay
// testable without a terminal. Grounded on the teacher's pattern of
// accepting small capability interfaces at package boundaries (e.g.
// cmdutil's StatusLinePrinter being handed to callers rather than the
// callers reaching for a package-global).
package conflict

import (
	"github.com/google/uuid"

	"github.com/orphdat/orphdat/internal/model"
)

// NewCorrelationID returns a fresh identifier for a single ContentConflict
// event, letting a resolver's decision be correlated with the log line and
// Reporter event it produced, the way the teacher tags session and request
// identifiers with github.com/google/uuid throughout pkg/synchronization.
func NewCorrelationID() string {
	return uuid.NewString()
}

// Resolution is HashEngine's next action after a ContentConflict (spec §6,
// §7).
type Resolution int

const (
	// Keep discards the newly computed hash and retains the old record.
	Keep Resolution = iota
	// Overwrite replaces the old record with the newly computed one.
	Overwrite
	// Skip leaves the file unresolved for this pass without writing
	// anything; the caller moves on to the next file.
	Skip
	// Abort terminates the entire operation in progress.
	Abort
)

func (r Resolution) String() string {
	switch r {
	case Keep:
		return "keep"
	case Overwrite:
		return "overwrite"
	case Skip:
		return "skip"
	case Abort:
		return "abort"
	default:
		return "unknown"
	}
}

// Resolver decides how to handle a content-hash mismatch between a stored
// record and a freshly computed one (spec §6 ConflictResolver).
type Resolver interface {
	OnContentMismatch(old, new *model.HashRecord) Resolution
}

// ResolverFunc adapts a plain function to the Resolver interface.
type ResolverFunc func(old, new *model.HashRecord) Resolution

// OnContentMismatch calls f.
func (f ResolverFunc) OnContentMismatch(old, new *model.HashRecord) Resolution {
	return f(old, new)
}

// AlwaysOverwrite is a Resolver that always accepts the freshly computed
// record, suitable for non-interactive "trust the new hash" runs.
var AlwaysOverwrite Resolver = ResolverFunc(func(*model.HashRecord, *model.HashRecord) Resolution {
	return Overwrite
})

// AlwaysKeep is a Resolver that always retains the previously stored
// record, suitable for a conservative "never touch history" run.
var AlwaysKeep Resolver = ResolverFunc(func(*model.HashRecord, *model.HashRecord) Resolution {
	return Keep
})

// AlwaysAbort is a Resolver that halts on the first conflict, suitable for
// unattended batch jobs that should fail loudly rather than guess.
var AlwaysAbort Resolver = ResolverFunc(func(*model.HashRecord, *model.HashRecord) Resolution {
	return Abort
})
