// Package logging provides orphdat's internal diagnostic logger: a
// nil-safe, prefixed logger built on the standard log package with
// color-coded warning/error output.
//
// Adapted from the teacher's pkg/logging/logger.go. The debug-enabled gate
// is kept; there is no level-based verbosity switch. The single-error Warn
// method is generalized to a printf-style one so *Logger satisfies
// internal/hasher.Warner and the printf-style Warn call sites throughout
// the core.
package logging

import (
	"fmt"
	"io"
	"log"

	"github.com/fatih/color"
)

// DebugEnabled controls whether Debug/Debugf produce output. It
// corresponds to the teacher's mutagen.DebugEnabled global, reproduced here
// without that package's wider build-metadata baggage.
var DebugEnabled = false

// Logger is the main logger type. It has the novel property that it still
// functions if nil, but it doesn't log anything.
type Logger struct {
	prefix string
}

// RootLogger is the root logger from which all other loggers derive.
var RootLogger = &Logger{}

// Sublogger creates a new sublogger with the specified name.
func (l *Logger) Sublogger(name string) *Logger {
	if l == nil {
		return nil
	}
	prefix := name
	if l.prefix != "" {
		prefix = l.prefix + "." + name
	}
	return &Logger{prefix: prefix}
}

func (l *Logger) output(calldepth int, line string) {
	if l.prefix != "" {
		line = fmt.Sprintf("[%s] %s", l.prefix, line)
	}
	log.Output(calldepth, line)
}

// Print logs information with semantics equivalent to fmt.Print.
func (l *Logger) Print(v ...interface{}) {
	if l != nil {
		l.output(3, fmt.Sprint(v...))
	}
}

// Printf logs information with semantics equivalent to fmt.Printf.
func (l *Logger) Printf(format string, v ...interface{}) {
	if l != nil {
		l.output(3, fmt.Sprintf(format, v...))
	}
}

// Println logs information with semantics equivalent to fmt.Println.
func (l *Logger) Println(v ...interface{}) {
	if l != nil {
		l.output(3, fmt.Sprintln(v...))
	}
}

// Writer returns an io.Writer that writes lines using Println.
func (l *Logger) Writer() io.Writer {
	if l == nil {
		return io.Discard
	}
	return &lineWriter{callback: l.Println}
}

// Debug logs information with semantics equivalent to fmt.Print, but only if
// DebugEnabled is true.
func (l *Logger) Debug(v ...interface{}) {
	if l != nil && DebugEnabled {
		l.output(3, fmt.Sprint(v...))
	}
}

// Debugf logs information with semantics equivalent to fmt.Printf, but only
// if DebugEnabled is true.
func (l *Logger) Debugf(format string, v ...interface{}) {
	if l != nil && DebugEnabled {
		l.output(3, fmt.Sprintf(format, v...))
	}
}

// Warn logs a formatted warning message with a yellow "Warning:" prefix.
// It satisfies internal/hasher.Warner.
func (l *Logger) Warn(format string, args ...interface{}) {
	if l != nil {
		l.output(3, color.YellowString("Warning: "+format, args...))
	}
}

// Error logs error information with a red "Error:" prefix.
func (l *Logger) Error(err error) {
	if l != nil {
		l.output(3, color.RedString("Error: %v", err))
	}
}

// lineWriter is an io.Writer that splits its input stream into lines and
// forwards each complete line to callback.
type lineWriter struct {
	callback func(...interface{})
	buffer   []byte
}

func (w *lineWriter) Write(buffer []byte) (int, error) {
	w.buffer = append(w.buffer, buffer...)
	var processed int
	remaining := w.buffer
	for {
		index := indexByte(remaining, '\n')
		if index == -1 {
			break
		}
		w.callback(string(trimCarriageReturn(remaining[:index])))
		processed += index + 1
		remaining = remaining[index+1:]
	}
	if processed > 0 {
		leftover := len(w.buffer) - processed
		if leftover > 0 {
			copy(w.buffer[:leftover], w.buffer[processed:])
		}
		w.buffer = w.buffer[:leftover]
	}
	return len(buffer), nil
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}

func trimCarriageReturn(buffer []byte) []byte {
	if len(buffer) > 0 && buffer[len(buffer)-1] == '\r' {
		return buffer[:len(buffer)-1]
	}
	return buffer
}
