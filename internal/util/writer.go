// Package util collects the small pieces of plumbing the codegen backend
// and CLI driver share: a buffered assembly writer, a generic stack, and a
// deterministic label allocator. This toolchain's partial evaluator and
// codegen are both single-threaded by design, so Writer is a plain
// buffer rather than a channel-fed collector.
package util

import (
	"fmt"
	"strings"
)

// Writer accumulates generated assembly text.
type Writer struct {
	sb strings.Builder
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Write appends a formatted line to the buffer.
func (w *Writer) Write(format string, args ...interface{}) {
	w.sb.WriteString(fmt.Sprintf(format, args...))
}

// WriteString appends s verbatim.
func (w *Writer) WriteString(s string) {
	w.sb.WriteString(s)
}

// Label writes a `name:` label line.
func (w *Writer) Label(name string) {
	w.sb.WriteString(name)
	w.sb.WriteString(":\n")
}

// Ins1 writes a one-operand instruction line.
func (w *Writer) Ins1(op, rs1 string) {
	w.sb.WriteString(fmt.Sprintf("\t%s\t%s\n", op, rs1))
}

// Ins2 writes a two-operand instruction line (destination, source).
func (w *Writer) Ins2(op, rd, rs1 string) {
	w.sb.WriteString(fmt.Sprintf("\t%s\t%s, %s\n", op, rd, rs1))
}

// Ins0 writes a bare mnemonic with no operands, e.g. "ret".
func (w *Writer) Ins0(op string) {
	w.sb.WriteString(fmt.Sprintf("\t%s\n", op))
}

// String returns the accumulated assembly text.
func (w *Writer) String() string {
	return w.sb.String()
}
