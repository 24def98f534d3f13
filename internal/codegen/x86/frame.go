// Package x86 lowers a fully lowered (not necessarily partially-evaluated)
// ir.Function into x86-64 GAS assembly text, walking a Function's blocks
// and emitting instruction lines straight through a buffered util.Writer
// rather than modelling a separate instruction-unit IR.
package x86

import (
	"sort"

	"pvc/internal/ir"
	"pvc/internal/types"
)

// intArgRegisters is the System V integer-class argument register order
// this backend classifies parameters and call arguments against.
var intArgRegisters = [6]string{"rdi", "rsi", "rdx", "rcx", "r8", "r9"}

// frame describes a function's stack layout: the byte offset of every
// variable's slot (the lower bound of its region; see addrLow/addrHigh)
// and the function's total, 16-byte-aligned frame size.
type frame struct {
	offsets map[ir.VarID]int
	size    int
}

// align8 rounds n up to the next multiple of 8.
func align8(n int) int {
	if n%8 != 0 {
		n += 8 - n%8
	}
	return n
}

// align16 rounds n up to the next multiple of 16.
func align16(n int) int {
	if n%16 != 0 {
		n += 16 - n%16
	}
	return n
}

// buildFrame lays out one stack slot per variable id, in ascending id
// order, padding every slot to 8 bytes and the whole frame to 16.
func buildFrame(f *ir.Function) *frame {
	ids := make([]int, 0, len(f.VarTypes))
	for id := range f.VarTypes {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)

	fr := &frame{offsets: make(map[ir.VarID]int, len(ids))}
	cur := 0
	for _, id := range ids {
		fr.offsets[ir.VarID(id)] = cur
		cur += align8(f.VarTypes[ir.VarID(id)].ByteSize())
	}
	fr.size = align16(cur)
	return fr
}

// addrLow returns the stack operand for a variable's first eightbyte: its
// whole slot for a scalar, or the pointer half for a Slice. A Slice
// classifies as pointer then length, so the pointer half lives closer to
// the variable's base offset.
func (fr *frame) addrLow(id ir.VarID) string {
	return stackOperand(fr.offsets[id] + 8)
}

// addrHigh returns the stack operand for a Slice variable's second
// eightbyte, its length.
func (fr *frame) addrHigh(id ir.VarID) string {
	return stackOperand(fr.offsets[id] + 16)
}

func stackOperand(off int) string {
	return "qword ptr [rbp-" + itoa(off) + "]"
}

// incomingStackOperand addresses a stack-passed incoming argument at
// positive offset off from rbp (off=16 is the first slot past the saved
// return address and frame pointer).
func incomingStackOperand(off int) string {
	return "qword ptr [rbp+" + itoa(off) + "]"
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// eightbytesOf reports how many 8-byte slots t's argument classification
// consumes: 0 for any Tuple and for IO, 2 for Slice, 1 otherwise.
func eightbytesOf(t types.Type) int {
	switch t.Kind {
	case types.Tuple, types.IO:
		return 0
	case types.Slice:
		return 2
	default:
		return 1
	}
}
