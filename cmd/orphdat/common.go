package main

import (
	"github.com/pkg/errors"

	"github.com/orphdat/orphdat/internal/cmdutil"
	"github.com/orphdat/orphdat/internal/conflict"
	"github.com/orphdat/orphdat/internal/config"
	"github.com/orphdat/orphdat/internal/engine"
	"github.com/orphdat/orphdat/internal/logging"
	"github.com/orphdat/orphdat/internal/mover"
	"github.com/orphdat/orphdat/internal/reporter"
	"github.com/orphdat/orphdat/internal/store"
)

// resolverForPolicy maps a config.Config.ConflictPolicy value to a
// conflict.Resolver, the way the root configuration loader resolves
// string-named policies into concrete behavior elsewhere in the teacher's
// configuration packages.
func resolverForPolicy(policy string) (conflict.Resolver, error) {
	switch policy {
	case "", "abort":
		return conflict.AlwaysAbort, nil
	case "keep":
		return conflict.AlwaysKeep, nil
	case "overwrite":
		return conflict.AlwaysOverwrite, nil
	default:
		return nil, errors.Errorf("unknown conflict policy %q", policy)
	}
}

// errCancelled is returned by find's visit and walk callbacks once
// env.cancelled reports a pending termination signal (spec §5). find treats
// it as a clean exit rather than an error, so Ctrl-C does not look like a
// failure.
var errCancelled = errors.New("cancelled")

// environment bundles the collaborators every subcommand needs, built once
// from config.Load so every subcommand uses the same verbosity and conflict
// handling.
type environment struct {
	cfg       config.Config
	engine    *engine.Engine
	mover     *mover.Mover
	reporter  reporter.Reporter
	logger    *logging.Logger
	cancelled func() bool
	stop      func()
}

func newEnvironment() (*environment, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, errors.Wrap(err, "unable to load configuration")
	}

	resolver, err := resolverForPolicy(cfg.ConflictPolicy)
	if err != nil {
		return nil, err
	}

	logger := logging.RootLogger.Sublogger("orphdat")
	logging.DebugEnabled = cfg.Verbose

	e := engine.New(resolver, logger)
	m := mover.New(store.New(logger.Sublogger("store")))

	// Shell completion runs this same binary to enumerate candidates; it
	// must never emit decorated Reporter output onto what the shell expects
	// to be a plain candidate list.
	var r reporter.Reporter
	if cmdutil.PerformingShellCompletion {
		r = reporter.Discard
	} else {
		r = reporter.NewTerminal(cfg.Verbose)
	}

	cancelled, stop := cmdutil.InstallCancellation()

	return &environment{
		cfg:       cfg,
		engine:    e,
		mover:     m,
		reporter:  r,
		logger:    logger,
		cancelled: cancelled,
		stop:      stop,
	}, nil
}
