package x86

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pvc/internal/ir"
	"pvc/internal/types"
)

// buildPrintModule constructs the IR for E1's "fn main(io: IO): ()
// { print(io, "hi") }" directly against the ir package builder API,
// mirroring how frontend+ir.Lower would produce it, so this package's
// tests don't need to depend on internal/frontend.
func buildPrintModule(t *testing.T) *ir.Module {
	t.Helper()
	m := ir.NewModule()
	idx := m.CreateString([]byte("hi"))

	sig := types.Signature{Args: []types.Type{types.IOType}, Returns: types.VoidType}
	f := m.CreateFunction("main", sig, true)

	ioVar := ir.VarID(0)
	f.DeclareVar(ioVar, types.IOType)

	block, _ := f.CreateBlock(nil)
	msgVar := ir.VarID(1)
	f.DeclareVar(msgVar, types.NewSlice(types.U8Type))
	block.AppendOp(ir.LoadGlobal{Src: idx}, &msgVar)

	block.AppendOp(ir.Call{Function: []string{"print"}, Args: []ir.VarID{ioVar, msgVar}}, nil)
	block.Terminal = ir.Return{}
	return m
}

func TestGenerateStraightLineFunction(t *testing.T) {
	m := buildPrintModule(t)
	asm, err := Generate(m)
	require.NoError(t, err)

	assert.Contains(t, asm, ".intel_syntax noprefix")
	assert.Contains(t, asm, "_c.0:")
	assert.Contains(t, asm, ".globl main")
	assert.Contains(t, asm, "main:")
	assert.Contains(t, asm, "main/0block:")
	assert.Contains(t, asm, "main/epilogue:")
	assert.Contains(t, asm, "call\tprint")
	assert.Contains(t, asm, "leave")
	assert.Contains(t, asm, "ret")
}

// TestFrameAlignment is P7: every function's frame size is 16-byte
// aligned regardless of how its variables sum.
func TestFrameAlignment(t *testing.T) {
	f := &ir.Function{VarTypes: map[ir.VarID]types.Type{
		0: types.U8Type,           // 1 byte -> 8-byte slot
		1: types.NewSlice(types.U8Type), // 16 bytes
		2: types.USizeType,        // 8 bytes
	}}
	fr := buildFrame(f)
	assert.Equal(t, 0, fr.size%16, "frame size %d not 16-byte aligned", fr.size)
	assert.GreaterOrEqual(t, fr.size, 32)
}

// TestSliceReturnRegisters is P7's other half: a Slice-returning function
// stores its pointer in rax and its length in rdx.
func TestSliceReturnRegisters(t *testing.T) {
	m := ir.NewModule()
	sig := types.Signature{Args: nil, Returns: types.NewSlice(types.U8Type)}
	f := m.CreateFunction("make_slice", sig, true)

	v := ir.VarID(0)
	f.DeclareVar(v, types.NewSlice(types.U8Type))
	idx := m.CreateString([]byte("ok"))

	block, _ := f.CreateBlock(nil)
	block.AppendOp(ir.LoadGlobal{Src: idx}, &v)
	block.Terminal = ir.Return{Var: &v}

	asm, err := Generate(m)
	require.NoError(t, err)

	epilogueIdx := strings.Index(asm, "make_slice/epilogue:")
	require.Greater(t, epilogueIdx, 0)
	before := asm[:epilogueIdx]
	assert.Contains(t, before, "mov\trax, qword ptr [rbp-")
	assert.Contains(t, before, "mov\trdx, qword ptr [rbp-")
}

func TestCallUnknownFunctionIsRecoverable(t *testing.T) {
	m := ir.NewModule()
	sig := types.Signature{Returns: types.VoidType}
	f := m.CreateFunction("main", sig, true)

	block, _ := f.CreateBlock(nil)
	block.AppendOp(ir.Call{Function: []string{"does_not_exist"}}, nil)
	block.Terminal = ir.Return{}

	_, err := Generate(m)
	require.Error(t, err)
	var cgErr *Error
	require.ErrorAs(t, err, &cgErr)
	assert.Equal(t, UnsupportedArgumentShape, cgErr.Kind)
}

// TestPhiPanicsAsUnsupported covers that Phi codegen is unimplemented.
func TestPhiPanicsAsUnsupported(t *testing.T) {
	m := ir.NewModule()
	sig := types.Signature{Returns: types.U8Type}
	f := m.CreateFunction("main", sig, true)

	v := ir.VarID(0)
	f.DeclareVar(v, types.U8Type)
	block, _ := f.CreateBlock(nil)
	block.AppendOp(ir.Phi{BlockToVar: map[ir.BlockID]ir.VarID{0: v}}, &v)
	block.Terminal = ir.Return{Var: &v}

	assert.Panics(t, func() {
		_, _ = Generate(m)
	})
}
