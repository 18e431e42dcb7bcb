package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/orphdat/orphdat/internal/cmdutil"
	"github.com/orphdat/orphdat/internal/reporter"
)

func hashMain(command *cobra.Command, arguments []string) error {
	if len(arguments) == 0 {
		return errors.New("at least one media path must be specified")
	}

	env, err := newEnvironment()
	if err != nil {
		return err
	}
	defer env.stop()

	for _, path := range arguments {
		if env.cancelled() {
			env.reporter.Emit(reporter.Trace, "cancelled before "+path)
			return nil
		}

		record, err := env.engine.Resolve(path, hashConfiguration.addOnly, hashConfiguration.force, nil)
		if err != nil {
			return errors.Wrapf(err, "unable to resolve hash for %s", path)
		}
		if record == nil {
			env.reporter.Emit(reporter.Trace, "skipped "+path)
			continue
		}
		env.reporter.Emit(reporter.Update, path+" "+record.Md5)
	}
	return nil
}

var hashCommand = &cobra.Command{
	Use:   "hash <path>...",
	Short: "Compute or look up the content hash for one or more media files",
	Args:  cobra.MinimumNArgs(1),
	Run:   cmdutil.Mainify(hashMain),
}

var hashConfiguration struct {
	// addOnly trusts an existing record without re-stating the file.
	addOnly bool
	// force skips every cache layer and always re-hashes.
	force bool
}

func init() {
	flags := hashCommand.Flags()
	flags.BoolVar(&hashConfiguration.addOnly, "add-only", false, "Trust an existing record without re-stating the file")
	flags.BoolVar(&hashConfiguration.force, "force", false, "Skip caches and always recompute")
}
