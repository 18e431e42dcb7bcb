package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/orphdat/orphdat/internal/cmdutil"
	"github.com/orphdat/orphdat/internal/model"
	"github.com/orphdat/orphdat/internal/reporter"
	"github.com/orphdat/orphdat/internal/walker"
)

func findMain(command *cobra.Command, arguments []string) error {
	env, err := newEnvironment()
	if err != nil {
		return err
	}
	defer env.stop()

	roots := arguments
	if len(roots) == 0 {
		roots = env.cfg.Roots
	}

	if findConfiguration.warm {
		return warmAndFind(env, roots)
	}

	isDirWanted := walker.SkipTrash(nil)
	visit := func(mediaPath string, record *model.HashRecord) error {
		if env.cancelled() {
			return errCancelled
		}
		env.reporter.Emit(reporter.Read, mediaPath+" "+record.Md5+" ("+reporter.FormatSize(record.Size)+")")
		return nil
	}

	if err := env.engine.FindHashes(roots, isDirWanted, nil, visit); err != nil && err != errCancelled {
		return errors.Wrap(err, "unable to find hashes")
	}
	return nil
}

// warmAndFind collects every media file beneath roots and resolves them all
// through Engine.WarmHashes, a bounded-concurrency bulk pass suited to a
// first run over a library with no existing .orphdat records, before
// reporting each result.
func warmAndFind(env *environment, roots []string) error {
	var paths []string
	isWanted := walker.MediaFiles(walker.SkipTrash(nil))
	err := walker.Walk(roots, isWanted, func(fullPath, rootPath string) error {
		if env.cancelled() {
			return errCancelled
		}
		info, err := os.Lstat(fullPath)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			paths = append(paths, fullPath)
			env.reporter.Progress(fmt.Sprintf("scanning: %d media files found", len(paths)))
		}
		return nil
	})
	env.reporter.DoneProgress()
	if err != nil {
		if err == errCancelled {
			return nil
		}
		return errors.Wrap(err, "unable to walk roots")
	}

	records, errs := env.engine.WarmHashes(paths)
	for i, path := range paths {
		if env.cancelled() {
			break
		}
		env.reporter.Progress(fmt.Sprintf("reporting: %d/%d", i+1, len(paths)))
		if errs[i] != nil {
			env.reporter.Emit(reporter.Trace, path+": "+errs[i].Error())
			continue
		}
		record := records[i]
		if record == nil {
			env.reporter.Emit(reporter.Trace, "skipped "+path)
			continue
		}
		env.reporter.Emit(reporter.Update, path+" "+record.Md5+" ("+reporter.FormatSize(record.Size)+")")
	}
	env.reporter.DoneProgress()
	return nil
}

var findCommand = &cobra.Command{
	Use:   "find [path]...",
	Short: "List every stored hash record beneath the given roots",
	Run:   cmdutil.Mainify(findMain),
}

var findConfiguration struct {
	// warm walks for media files directly and resolves every one of them
	// through a bounded-concurrency bulk pass, instead of only listing
	// records already present in .orphdat files.
	warm bool
}

func init() {
	flags := findCommand.Flags()
	flags.BoolVar(&findConfiguration.warm, "warm", false, "Hash every media file found, not just existing records")
}
