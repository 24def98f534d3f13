package ir

import (
	"fmt"

	"pvc/internal/types"
)

// LowerErrorKind enumerates the ways lowering an AST to IR can fail.
type LowerErrorKind int

const (
	SymbolUndefined LowerErrorKind = iota
	SymbolNotCallable
	SymbolNotIndexable
	ExpressionNotCallable
	TypeMismatch
	ExtraArgument
	NotStorable
	MissingElseBlock
)

// LowerError is returned by Lower; it carries the byte index of the AST
// node that failed to lower.
type LowerError struct {
	Idx      int
	Kind     LowerErrorKind
	Name     string
	Got, Exp types.Type
}

// Index returns the byte offset of the AST node that failed to lower,
// satisfying internal/diagnostics.Indexed.
func (e *LowerError) Index() int { return e.Idx }

func (e *LowerError) Error() string {
	switch e.Kind {
	case SymbolUndefined:
		return fmt.Sprintf("undefined symbol %q at byte %d", e.Name, e.Idx)
	case SymbolNotCallable:
		return fmt.Sprintf("%q is not callable at byte %d", e.Name, e.Idx)
	case SymbolNotIndexable:
		return fmt.Sprintf("%q cannot be indexed at byte %d", e.Name, e.Idx)
	case ExpressionNotCallable:
		return fmt.Sprintf("value of type %s is not callable at byte %d", e.Got, e.Idx)
	case TypeMismatch:
		return fmt.Sprintf("type mismatch at byte %d: expected %s, got %s", e.Idx, e.Exp, e.Got)
	case ExtraArgument:
		return fmt.Sprintf("too many arguments at byte %d", e.Idx)
	case NotStorable:
		return fmt.Sprintf("%q does not name a value at byte %d", e.Name, e.Idx)
	case MissingElseBlock:
		return fmt.Sprintf("if used as a value requires an else block, at byte %d", e.Idx)
	default:
		return fmt.Sprintf("lowering error at byte %d", e.Idx)
	}
}
