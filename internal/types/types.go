// Package types defines the closed type system shared by the frontend, the
// IR and the x86-64 backend.
package types

import "strings"

// Kind identifies one of the closed set of types this toolchain knows
// about. There is no user-extensible type declaration; every Type value is
// built from these eight kinds.
type Kind uint

const (
	USize   Kind = iota // USize identifies a machine-word unsigned integer.
	U8                  // U8 identifies a single byte.
	Bool                // Bool identifies a single-byte boolean.
	Tuple               // Tuple identifies a (possibly empty) fixed-arity product; the empty tuple is this system's void.
	Slice               // Slice identifies a pointer+length pair over Elem.
	Array               // Array identifies Len contiguous values of Elem.
	Pointer             // Pointer identifies either a pointer to a Value(Elem) or to a Function(Func).
	IO                  // IO identifies the capability token threaded through effectful builtins.
)

var kindNames = [...]string{
	"usize",
	"u8",
	"Bool",
	"Tuple",
	"Slice",
	"Array",
	"Pointer",
	"IO",
}

func (k Kind) String() string {
	if int(k) >= len(kindNames) {
		return "Unknown"
	}
	return kindNames[k]
}

// Type is a node in the closed type grammar:
//
//	usize | u8 | Bool | Tuple(Fields...) | Slice(Elem) | Array(Elem, Len) |
//	Pointer(Value(Elem)) | Pointer(Function(Func)) | IO
type Type struct {
	Kind   Kind
	Elem   *Type      // Slice, Array, Pointer-to-Value
	Len    int         // Array
	Fields []Type      // Tuple
	Func   *Signature  // Pointer-to-Function
}

// Signature is a function's argument and return types.
type Signature struct {
	Args    []Type
	Returns Type
}

// USize, U8, Bool and IO are the atomic, payload-free types.
var (
	USizeType = Type{Kind: USize}
	U8Type    = Type{Kind: U8}
	BoolType  = Type{Kind: Bool}
	IOType    = Type{Kind: IO}
	VoidType  = Type{Kind: Tuple, Fields: []Type{}}
)

// NewSlice builds Slice(elem).
func NewSlice(elem Type) Type {
	e := elem
	return Type{Kind: Slice, Elem: &e}
}

// NewArray builds Array(elem, n).
func NewArray(elem Type, n int) Type {
	e := elem
	return Type{Kind: Array, Elem: &e, Len: n}
}

// NewTuple builds Tuple(fields...).
func NewTuple(fields ...Type) Type {
	return Type{Kind: Tuple, Fields: fields}
}

// NewPointerToValue builds Pointer(Value(elem)).
func NewPointerToValue(elem Type) Type {
	e := elem
	return Type{Kind: Pointer, Elem: &e}
}

// NewPointerToFunction builds Pointer(Function(sig)).
func NewPointerToFunction(sig Signature) Type {
	return Type{Kind: Pointer, Func: &sig}
}

// IsFunctionPointer reports whether t is Pointer(Function(...)) rather than
// Pointer(Value(...)).
func (t Type) IsFunctionPointer() bool {
	return t.Kind == Pointer && t.Func != nil
}

// Equal reports whether a and b are structurally identical. There is no
// nominal typing in this system: two Types are equal iff their grammar
// trees match.
func Equal(a, b Type) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case USize, U8, Bool, IO:
		return true
	case Slice, Array:
		if a.Kind == Array && a.Len != b.Len {
			return false
		}
		return equalElem(a.Elem, b.Elem)
	case Pointer:
		if (a.Func == nil) != (b.Func == nil) {
			return false
		}
		if a.Func != nil {
			return EqualSignature(*a.Func, *b.Func)
		}
		return equalElem(a.Elem, b.Elem)
	case Tuple:
		if len(a.Fields) != len(b.Fields) {
			return false
		}
		for i := range a.Fields {
			if !Equal(a.Fields[i], b.Fields[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func equalElem(a, b *Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	return Equal(*a, *b)
}

// EqualSignature reports whether two signatures have identical argument and
// return types.
func EqualSignature(a, b Signature) bool {
	if !Equal(a.Returns, b.Returns) {
		return false
	}
	if len(a.Args) != len(b.Args) {
		return false
	}
	for i := range a.Args {
		if !Equal(a.Args[i], b.Args[i]) {
			return false
		}
	}
	return true
}

// String renders a Type the way the surface language and the IR dump spell
// it, e.g. "Slice(u8)", "Pointer(Function(usize) usize)".
func (t Type) String() string {
	switch t.Kind {
	case USize, U8, Bool, IO:
		return t.Kind.String()
	case Slice:
		return "Slice(" + t.Elem.String() + ")"
	case Array:
		return "Array(" + t.Elem.String() + ", " + itoa(t.Len) + ")"
	case Pointer:
		if t.Func != nil {
			return "Pointer(Function" + t.Func.String() + ")"
		}
		return "Pointer(Value(" + t.Elem.String() + "))"
	case Tuple:
		parts := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			parts[i] = f.String()
		}
		return "Tuple(" + strings.Join(parts, ", ") + ")"
	default:
		return "?"
	}
}

// String renders a Signature as "(args...) returns".
func (s Signature) String() string {
	parts := make([]string, len(s.Args))
	for i, a := range s.Args {
		parts[i] = a.String()
	}
	return "(" + strings.Join(parts, ", ") + ") " + s.Returns.String()
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// ByteSize returns the x86-64 System V storage size of t, matching the
// original compiler's size_x86_64: usize, Bool, u8 and Pointer occupy one
// eightbyte each once stack-aligned (the byte count returned here is the
// value's natural size; the codegen layer rounds stack slots up to eight),
// Slice occupies two eightbytes (pointer + length), Array is Elem repeated
// Len times, and Tuple is the sum of its fields (the empty tuple, this
// system's void, is zero-sized).
func (t Type) ByteSize() int {
	switch t.Kind {
	case USize, Pointer:
		return 8
	case U8, Bool:
		return 1
	case IO:
		return 0
	case Slice:
		return 16
	case Array:
		return t.Elem.ByteSize() * t.Len
	case Tuple:
		sz := 0
		for _, f := range t.Fields {
			sz += f.ByteSize()
		}
		return sz
	default:
		return 0
	}
}

// Eightbytes returns how many 8-byte registers/stack-slots t occupies: 2 for
// Slice, 0 for a zero-sized type, 1 for everything else.
// internal/codegen/x86 classifies arguments with its own eightbytesOf,
// which gives 0 for every Tuple.
func (t Type) Eightbytes() int {
	if t.Kind == Slice {
		return 2
	}
	if t.ByteSize() == 0 {
		return 0
	}
	return 1
}
