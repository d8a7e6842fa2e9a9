// Package ui prints user-facing notifications and prompts for the
// non-interactive command line.
//
// Output styling:
//   - Info:    → cyan arrow
//   - Success: ✔ green checkmark
//   - Fail:    ✘ red X
//   - Warn:    ○ yellow circle
//
// Everything is written to ui.Out so tests can capture it.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

var (
	Bold   = color.New(color.Bold).SprintFunc()
	Dim    = color.New(color.Faint).SprintFunc()
	Green  = color.New(color.FgGreen).SprintFunc()
	Cyan   = color.New(color.FgCyan).SprintFunc()
	Yellow = color.New(color.FgYellow).SprintFunc()
	Red    = color.New(color.FgRed).SprintFunc()

	// Out receives notifications; stdout is reserved for derived names
	Out io.Writer = os.Stderr
)

// Info prints an informational message with a cyan arrow.
func Info(format string, args ...interface{}) {
	fmt.Fprintf(Out, "  %s %s\n", Cyan("→"), fmt.Sprintf(format, args...))
}

// Success prints a success message with a green checkmark.
func Success(format string, args ...interface{}) {
	fmt.Fprintf(Out, "  %s %s\n", Green("✔"), fmt.Sprintf(format, args...))
}

// Fail prints an error message with a red X.
func Fail(format string, args ...interface{}) {
	fmt.Fprintf(Out, "  %s %s\n", Red("✘"), fmt.Sprintf(format, args...))
}

// Warn prints a warning message with a yellow circle.
func Warn(format string, args ...interface{}) {
	fmt.Fprintf(Out, "  %s %s\n", Yellow("○"), fmt.Sprintf(format, args...))
}

// DimMsg prints a dimmed message.
func DimMsg(format string, args ...interface{}) {
	fmt.Fprintf(Out, "  %s\n", Dim(fmt.Sprintf(format, args...)))
}
