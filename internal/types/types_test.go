package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEqualAtoms(t *testing.T) {
	assert.True(t, Equal(USizeType, USizeType))
	assert.True(t, Equal(U8Type, U8Type))
	assert.True(t, Equal(BoolType, BoolType))
	assert.True(t, Equal(IOType, IOType))
	assert.False(t, Equal(U8Type, BoolType))
}

func TestEqualSliceAndArray(t *testing.T) {
	assert.True(t, Equal(NewSlice(U8Type), NewSlice(U8Type)))
	assert.False(t, Equal(NewSlice(U8Type), NewSlice(USizeType)))

	assert.True(t, Equal(NewArray(U8Type, 4), NewArray(U8Type, 4)))
	assert.False(t, Equal(NewArray(U8Type, 4), NewArray(U8Type, 5)), "array length is part of its identity")
}

func TestEqualTuple(t *testing.T) {
	assert.True(t, Equal(VoidType, NewTuple()))
	assert.True(t, Equal(NewTuple(U8Type, BoolType), NewTuple(U8Type, BoolType)))
	assert.False(t, Equal(NewTuple(U8Type), NewTuple(U8Type, U8Type)))
	assert.False(t, Equal(VoidType, NewTuple(U8Type)))
}

func TestEqualPointer(t *testing.T) {
	assert.True(t, Equal(NewPointerToValue(U8Type), NewPointerToValue(U8Type)))
	assert.False(t, Equal(NewPointerToValue(U8Type), NewPointerToValue(BoolType)))

	sig := Signature{Args: []Type{U8Type}, Returns: BoolType}
	other := Signature{Args: []Type{U8Type}, Returns: BoolType}
	assert.True(t, Equal(NewPointerToFunction(sig), NewPointerToFunction(other)))

	assert.False(t, Equal(NewPointerToValue(U8Type), NewPointerToFunction(sig)),
		"Pointer(Value) and Pointer(Function) are distinct despite sharing Kind Pointer")
}

func TestIsFunctionPointer(t *testing.T) {
	assert.True(t, NewPointerToFunction(Signature{}).IsFunctionPointer())
	assert.False(t, NewPointerToValue(U8Type).IsFunctionPointer())
}

func TestString(t *testing.T) {
	assert.Equal(t, "usize", USizeType.String())
	assert.Equal(t, "Slice(u8)", NewSlice(U8Type).String())
	assert.Equal(t, "Array(u8, 3)", NewArray(U8Type, 3).String())
	assert.Equal(t, "Tuple()", VoidType.String())
	assert.Equal(t, "Tuple(u8, Bool)", NewTuple(U8Type, BoolType).String())
	assert.Equal(t, "Pointer(Value(u8))", NewPointerToValue(U8Type).String())
}

func TestByteSizeAndEightbytes(t *testing.T) {
	cases := []struct {
		t          Type
		size       int
		eightbytes int
	}{
		{USizeType, 8, 1},
		{U8Type, 1, 1},
		{BoolType, 1, 1},
		{IOType, 0, 0},
		{VoidType, 0, 0},
		{NewSlice(U8Type), 16, 2},
		{NewArray(U8Type, 4), 4, 1},
		{NewPointerToValue(U8Type), 8, 1},
		{NewTuple(U8Type, U8Type), 2, 1},
	}
	for _, c := range cases {
		assert.Equal(t, c.size, c.t.ByteSize(), "ByteSize(%s)", c.t)
		assert.Equal(t, c.eightbytes, c.t.Eightbytes(), "Eightbytes(%s)", c.t)
	}
}

func TestEqualSignature(t *testing.T) {
	a := Signature{Args: []Type{U8Type, NewSlice(U8Type)}, Returns: BoolType}
	b := Signature{Args: []Type{U8Type, NewSlice(U8Type)}, Returns: BoolType}
	c := Signature{Args: []Type{U8Type}, Returns: BoolType}
	assert.True(t, EqualSignature(a, b))
	assert.False(t, EqualSignature(a, c))
}
