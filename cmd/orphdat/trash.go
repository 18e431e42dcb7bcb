package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/orphdat/orphdat/internal/cmdutil"
	"github.com/orphdat/orphdat/internal/reporter"
)

func trashMain(command *cobra.Command, arguments []string) error {
	if len(arguments) == 0 {
		return errors.New("at least one path must be specified")
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

		var trashErr error
		if trashConfiguration.root != "" {
			trashErr = env.mover.TrashWithRoot(path, trashConfiguration.root)
		} else if trashConfiguration.sidecars {
			trashErr = env.mover.TrashAndSidecars(path)
		} else {
			trashErr = env.mover.Trash(path)
		}
		if trashErr != nil {
			return errors.Wrapf(trashErr, "unable to trash %s", path)
		}
		env.reporter.Emit(reporter.Delete, path)
	}
	return nil
}

var trashCommand = &cobra.Command{
	Use:   "trash <path>...",
	Short: "Move media files or directories into a sibling .orphtrash directory",
	Args:  cobra.MinimumNArgs(1),
	Run:   cmdutil.Mainify(trashMain),
}

var trashConfiguration struct {
	// root, if set, trashes relative to this ancestor instead of path's
	// immediate parent, collapsing any intermediate .orphtrash components.
	root string
	// sidecars also trashes every sidecar TypeRegistry reports for path.
	sidecars bool
}

func init() {
	flags := trashCommand.Flags()
	flags.StringVar(&trashConfiguration.root, "root", "", "Trash relative to this ancestor directory")
	flags.BoolVar(&trashConfiguration.sidecars, "sidecars", false, "Also trash recognized sidecar files")
}
