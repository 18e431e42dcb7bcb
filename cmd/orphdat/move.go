package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/orphdat/orphdat/internal/cmdutil"
	"github.com/orphdat/orphdat/internal/reporter"
)

func moveMain(command *cobra.Command, arguments []string) error {
	if len(arguments) != 2 {
		return errors.New("move requires exactly a source and destination path")
	}

	env, err := newEnvironment()
	if err != nil {
		return err
	}
	defer env.stop()

	src, dst := arguments[0], arguments[1]
	if err := env.mover.Move(src, dst); err != nil {
		return errors.Wrapf(err, "unable to move %s to %s", src, dst)
	}
	env.reporter.Emit(reporter.Update, src+" -> "+dst)
	return nil
}

var moveCommand = &cobra.Command{
	Use:   "move <source> <destination>",
	Short: "Move a media file or directory, keeping its hash records coherent",
	Args:  cobra.ExactArgs(2),
	Run:   cmdutil.Mainify(moveMain),
}
