package frontend

import "fmt"

// TokenizeErrorKind enumerates the ways scanning can fail.
type TokenizeErrorKind int

const (
	UnclosedParens TokenizeErrorKind = iota
	UnclosedQuotes
	ExpectedToken
	ExpectedNumber
)

// TokenizeError is returned by Tokenize; it always carries the byte index
// the failure was found at so the driver can render a line:column.
type TokenizeError struct {
	Idx  int
	Kind TokenizeErrorKind
	Ch   rune
	Text string
}

// Index returns the byte offset the failure was found at, satisfying
// internal/diagnostics.Indexed.
func (e *TokenizeError) Index() int { return e.Idx }

func (e *TokenizeError) Error() string {
	switch e.Kind {
	case UnclosedParens:
		return fmt.Sprintf("unclosed parenthesis at byte %d", e.Idx)
	case UnclosedQuotes:
		return fmt.Sprintf("unclosed string literal at byte %d", e.Idx)
	case ExpectedToken:
		return fmt.Sprintf("unexpected character %q at byte %d", e.Ch, e.Idx)
	case ExpectedNumber:
		return fmt.Sprintf("invalid number literal %q at byte %d", e.Text, e.Idx)
	default:
		return fmt.Sprintf("tokenize error at byte %d", e.Idx)
	}
}

// ParseErrorKind enumerates the ways expression/module parsing can fail.
type ParseErrorKind int

const (
	ExpectedName ParseErrorKind = iota
	ExpectedExpression
	ExpectedTopLevel
	ExpectedAssign
	MalformedLet
	DuplicateName
	TypeUndefined
	ExpectedParams
	ExpectedElse
)

// ParseError is returned by every parser entry point; it carries the byte
// index of the offending token.
type ParseError struct {
	Idx   int
	Kind  ParseErrorKind
	Extra string
}

// Index returns the byte offset of the offending token, satisfying
// internal/diagnostics.Indexed.
func (e *ParseError) Index() int { return e.Idx }

func (e *ParseError) Error() string {
	switch e.Kind {
	case ExpectedName:
		return fmt.Sprintf("expected a name at byte %d", e.Idx)
	case ExpectedExpression:
		return fmt.Sprintf("expected an expression at byte %d", e.Idx)
	case ExpectedTopLevel:
		return fmt.Sprintf("expected a top-level fn declaration at byte %d", e.Idx)
	case ExpectedAssign:
		return fmt.Sprintf("expected '=' at byte %d", e.Idx)
	case MalformedLet:
		return fmt.Sprintf("malformed let binding at byte %d", e.Idx)
	case DuplicateName:
		return fmt.Sprintf("duplicate function name %q at byte %d", e.Extra, e.Idx)
	case TypeUndefined:
		return fmt.Sprintf("unknown type %q at byte %d", e.Extra, e.Idx)
	case ExpectedParams:
		return fmt.Sprintf("expected function parameter list at byte %d", e.Idx)
	case ExpectedElse:
		return fmt.Sprintf("expected 'else' block at byte %d", e.Idx)
	default:
		return fmt.Sprintf("parse error at byte %d", e.Idx)
	}
}

// LineCol maps a byte offset in src to a 1-indexed (line, column) pair via
// a linear scan. It reports ok=false if idx runs past the end of src.
func LineCol(src string, idx int) (line, col int, ok bool) {
	line, col = 1, 1
	for i, r := range src {
		if i == idx {
			return line, col, true
		}
		if r == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col, false
}
