package cmdutil

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Warning prints a warning message to standard error.
func Warning(message string) {
	fmt.Fprintln(color.Error, color.YellowString("Warning:"), message)
}

// Error prints an error message to standard error.
func Error(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
}

// Fatal prints an error message to standard error and terminates the process
// with the fatal-assertion exit code (spec §6: exit code 1).
func Fatal(err error) {
	Error(err)
	os.Exit(1)
}

// FatalIO prints an error message to standard error and terminates the
// process with the unrecoverable I/O exit code (spec §6: exit code 2).
func FatalIO(err error) {
	Error(err)
	os.Exit(2)
}
