// Package reporter implements the Reporter collaborator interface (spec
// §6): a sink for Create/Read/Update/Delete/Trace events, rendered as
// colorized terminal output when standard error is a TTY and as plain text
// otherwise.
//
// Grounded on the teacher's internal/cmdutil (StatusLinePrinter, Warning,
// Error) for the color/terminal conventions, and on
// pkg/configuration/size.go's dustin/go-humanize usage for human-readable
// byte counts in messages about file sizes.
package reporter

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/orphdat/orphdat/internal/cmdutil"
)

// Kind identifies the category of event being reported (spec §6).
type Kind int

const (
	// Create indicates a new HashRecord or store file was created.
	Create Kind = iota
	// Read indicates a record was read back without modification.
	Read
	// Update indicates an existing HashRecord was recomputed or rewritten.
	Update
	// Delete indicates a HashRecord or store file was removed.
	Delete
	// Trace indicates a low-level diagnostic message, shown only when the
	// reporter is in verbose mode.
	Trace
)

func (k Kind) String() string {
	switch k {
	case Create:
		return "create"
	case Read:
		return "read"
	case Update:
		return "update"
	case Delete:
		return "delete"
	case Trace:
		return "trace"
	default:
		return "unknown"
	}
}

// Reporter is a Reporter sink (spec §6 Reporter.emit), with two extra
// methods for the self-overwriting progress line a bulk pass (e.g.
// find --warm) prints between individual Emit events.
type Reporter interface {
	Emit(kind Kind, message string)
	// Progress overwrites a single status line with message, without
	// advancing to a new line. Repeated calls update the same line in
	// place, matching the teacher's StatusLinePrinter convention for
	// transient per-item progress during a long-running pass.
	Progress(message string)
	// DoneProgress clears any outstanding status line. Callers invoke it
	// once a bulk pass finishes, or just before an Emit call that should
	// start a fresh line rather than overwrite the progress line.
	DoneProgress()
}

// Terminal is a Reporter that writes colorized, kind-prefixed lines to
// standard error, with Trace events suppressed unless Verbose is set.
type Terminal struct {
	// Verbose enables Trace-level output.
	Verbose bool
	// colorEnabled is resolved once at construction from whether standard
	// error is attached to a terminal.
	colorEnabled bool
	// statusLine renders Progress/DoneProgress, grounded on the teacher's
	// cmdutil.StatusLinePrinter.
	statusLine cmdutil.StatusLinePrinter
}

// NewTerminal creates a Terminal reporter. Coloring is auto-detected via
// go-isatty against standard error, matching the teacher's StatusLinePrinter
// convention of writing through color.Error.
func NewTerminal(verbose bool) *Terminal {
	t := &Terminal{
		Verbose:      verbose,
		colorEnabled: isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()),
	}
	t.statusLine.UseStandardError = true
	return t
}

// Emit implements Reporter.
func (t *Terminal) Emit(kind Kind, message string) {
	if kind == Trace && !t.Verbose {
		return
	}
	// A pending progress line is mid-line output; break onto a fresh line
	// first so Emit's own line isn't overwritten by the next Progress call.
	t.statusLine.BreakIfNonEmpty()
	label := t.label(kind)
	fmt.Fprintf(color.Error, "%s %s\n", label, message)
}

// Progress implements Reporter.
func (t *Terminal) Progress(message string) {
	t.statusLine.Print(message)
}

// DoneProgress implements Reporter.
func (t *Terminal) DoneProgress() {
	t.statusLine.Clear()
}

func (t *Terminal) label(kind Kind) string {
	if !t.colorEnabled {
		return "[" + kind.String() + "]"
	}
	switch kind {
	case Create:
		return color.GreenString("[create]")
	case Update:
		return color.CyanString("[update]")
	case Delete:
		return color.RedString("[delete]")
	case Read:
		return color.New(color.Faint).Sprint("[read]")
	case Trace:
		return color.New(color.Faint).Sprint("[trace]")
	default:
		return "[" + kind.String() + "]"
	}
}

// FormatSize renders a byte count the way reported messages present file
// sizes (e.g. "4.2 MB"), via dustin/go-humanize.
func FormatSize(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	return humanize.Bytes(uint64(bytes))
}

// Discard is a Reporter that drops every event; useful in tests and for
// callers that only want cmdutil-level warnings.
var Discard Reporter = discard{}

type discard struct{}

func (discard) Emit(Kind, string) {}
func (discard) Progress(string)   {}
func (discard) DoneProgress()     {}

// Warning forwards to cmdutil.Warning so callers have one place to route
// both Reporter events and cmdutil-style process warnings.
func Warning(message string) {
	cmdutil.Warning(message)
}
