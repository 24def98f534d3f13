// Package diagnostics renders the byte-indexed errors every frontend/ir
// stage returns as colorized line:column messages, the way a real
// compiler's driver does, using github.com/fatih/color for the terminal
// status lines.
package diagnostics

import (
	"os"

	"github.com/fatih/color"

	"pvc/internal/frontend"
)

var (
	errorLabel = color.New(color.FgRed, color.Bold)
	errorText  = color.New(color.FgRed)
	locationC  = color.New(color.FgYellow)
)

// Indexed is satisfied by every stage error this toolchain raises
// (TokenizeError, ParseError, LowerError): each carries the byte offset
// diagnostics needs to resolve a line:column.
type Indexed interface {
	error
	Index() int
}

// PrintStageError renders err against src on stderr as
// "<file>:<line>:<col>: error: <message>".
func PrintStageError(file, src string, err Indexed) {
	line, col, ok := frontend.LineCol(src, err.Index())
	if !ok {
		line, col = 0, 0
	}
	locationC.Fprintf(os.Stderr, "%s:%d:%d: ", file, line, col)
	errorLabel.Fprint(os.Stderr, "error: ")
	errorText.Fprintln(os.Stderr, err.Error())
}

// PrintFatal renders an unindexed, non-recoverable error (such as an I/O
// failure or a codegen error) without a source location.
func PrintFatal(err error) {
	errorLabel.Fprint(os.Stderr, "error: ")
	errorText.Fprintln(os.Stderr, err.Error())
}

// PrintInfo renders a cyan status line for an in-progress step.
func PrintInfo(format string, args ...interface{}) {
	color.New(color.FgCyan).Printf("[info] "+format+"\n", args...)
}

// PrintSuccess renders a completed-step status line.
func PrintSuccess(format string, args ...interface{}) {
	color.New(color.FgGreen).Printf("[ok] "+format+"\n", args...)
}
