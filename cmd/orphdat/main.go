package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/orphdat/orphdat/internal/cmdutil"
	"github.com/orphdat/orphdat/internal/version"
)

func rootMain(command *cobra.Command, arguments []string) {
	if rootConfiguration.version {
		rootCommand.Println(version.String)
		return
	}
	command.Help()
}

var rootCommand = &cobra.Command{
	Use:           "orphdat",
	Short:         "orphdat maintains content-addressed hash records alongside a media library",
	Args:          cmdutil.DisallowArguments,
	Run:           rootMain,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var rootConfiguration struct {
	version bool
}

func init() {
	flags := rootCommand.Flags()
	flags.BoolVarP(&rootConfiguration.version, "version", "V", false, "Show version information")

	cobra.EnableCommandSorting = false

	rootCommand.AddCommand(
		hashCommand,
		findCommand,
		moveCommand,
		trashCommand,
	)
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		cmdutil.Error(err)
		os.Exit(1)
	}
}
