package serialize

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pvc/internal/eval"
	"pvc/internal/frontend"
	"pvc/internal/ir"
	"pvc/internal/types"
)

func lowerMain(t *testing.T, src string) *ir.Module {
	t.Helper()
	toks, err := frontend.Tokenize(src, 0)
	require.NoError(t, err)
	ast, err := frontend.ParseModule(toks)
	require.NoError(t, err)
	m, err := ir.Lower(ast)
	require.NoError(t, err)
	return m
}

// TestTypeRoundTrip covers every types.Kind a module can carry, including
// the two Pointer shapes (to a value, to a function signature).
func TestTypeRoundTrip(t *testing.T) {
	cases := []types.Type{
		{Kind: types.USize},
		{Kind: types.U8},
		{Kind: types.Bool},
		{Kind: types.IO},
		types.NewSlice(types.U8Type),
		types.NewArray(types.U8Type, 4),
		types.NewTuple(types.U8Type, types.BoolType),
		types.NewTuple(),
		types.NewPointerToValue(types.U8Type),
		types.NewPointerToFunction(types.Signature{
			Args:    []types.Type{types.IOType},
			Returns: types.VoidType,
		}),
	}
	for _, tc := range cases {
		var buf bytes.Buffer
		w := NewWriter(&buf)
		writeType(w, tc)
		require.NoError(t, w.Err())

		r := NewReader(&buf)
		got := readType(r)
		require.NoError(t, r.Err())
		assert.True(t, types.Equal(tc, got), "round trip changed %s into %s", tc, got)
	}
}

// TestModuleRoundTrip is P6: a module lowered from source survives a
// WriteModule/ReadModule cycle with every function, constant and variable
// type intact.
func TestModuleRoundTrip(t *testing.T) {
	m := lowerMain(t, `fn helper(io: IO): () { print(io, "hi") }
		fn main(io: IO): () {
			let x = if 1 { "t" } else { "e" };
			print(io, x)
		}`)

	var buf bytes.Buffer
	w := NewWriter(&buf)
	WriteModule(w, m)
	require.NoError(t, w.Err())

	r := NewReader(&buf)
	got := ReadModule(r)
	require.NoError(t, r.Err())

	assert.Equal(t, m.Constants, got.Constants)
	require.Len(t, got.Functions, len(m.Functions))
	for name, fn := range m.Functions {
		gotFn, ok := got.Functions[name]
		require.True(t, ok, "missing function %s", name)
		assert.Equal(t, fn.Exported, gotFn.Exported)
		assert.True(t, types.EqualSignature(fn.Signature, gotFn.Signature))
		assert.Len(t, gotFn.Blocks, len(fn.Blocks))
		require.Len(t, gotFn.VarTypes, len(fn.VarTypes))
		for id, typ := range fn.VarTypes {
			gotTyp, ok := gotFn.VarTypes[id]
			require.True(t, ok)
			assert.True(t, types.Equal(typ, gotTyp))
		}
	}
}

// TestRunResultRoundTrip is P6 over eval.RunResult: Concrete, Partial and
// ConditionalPartial (with its nested Then/Els branches) all decode back to
// an equivalent value.
func TestRunResultRoundTrip(t *testing.T) {
	m := lowerMain(t, `fn main(io: IO): () { print(io, "hi") }`)
	fn := m.Functions["main"]
	args := make([]*[]byte, len(fn.Signature.Args))

	partial := eval.Run(m, fn, args).(eval.Partial)

	concrete := eval.Concrete{Value: []byte("done")}
	conditional := eval.ConditionalPartial{
		Condition: partial,
		Then:      concrete,
		Els:       eval.ThenElseJumpResult{Took: false},
	}

	for _, res := range []eval.RunResult{concrete, partial, conditional, eval.ThenElseJumpResult{Took: true}} {
		var buf bytes.Buffer
		w := NewWriter(&buf)
		WriteResult(w, res)
		require.NoError(t, w.Err())

		r := NewReader(&buf)
		got := ReadResult(r)
		require.NoError(t, r.Err())
		assertResultEqual(t, res, got)
	}
}

func assertResultEqual(t *testing.T, want, got eval.RunResult) {
	t.Helper()
	switch w := want.(type) {
	case eval.Concrete:
		g, ok := got.(eval.Concrete)
		require.True(t, ok)
		assert.Equal(t, w.Value, g.Value)
	case eval.Partial:
		g, ok := got.(eval.Partial)
		require.True(t, ok)
		assert.Len(t, g.Blocks, len(w.Blocks))
		assert.Len(t, g.Vars, len(w.Vars))
	case eval.ConditionalPartial:
		g, ok := got.(eval.ConditionalPartial)
		require.True(t, ok)
		assertResultEqual(t, w.Then, g.Then)
		assertResultEqual(t, w.Els, g.Els)
	case eval.ThenElseJumpResult:
		g, ok := got.(eval.ThenElseJumpResult)
		require.True(t, ok)
		assert.Equal(t, w.Took, g.Took)
	default:
		t.Fatalf("unhandled result type %T", want)
	}
}

// TestArtifactRoundTrip is P6 end to end: WriteArtifact/ReadArtifact
// preserve the build id, magic check, and the module/result payload.
func TestArtifactRoundTrip(t *testing.T) {
	m := lowerMain(t, `fn main(io: IO): () { print(io, "hi") }`)
	fn := m.Functions["main"]
	args := make([]*[]byte, len(fn.Signature.Args))
	result := eval.Run(m, fn, args)

	id := uuid.New()
	var buf bytes.Buffer
	require.NoError(t, WriteArtifact(&buf, id, m, result))

	gotID, gotModule, gotResult, err := ReadArtifact(&buf)
	require.NoError(t, err)
	assert.Equal(t, id, gotID)
	assert.Len(t, gotModule.Functions, len(m.Functions))
	assertResultEqual(t, result, gotResult)
}

// TestArtifactRejectsBadMagic checks ReadArtifact refuses non-pvc input
// instead of attempting to decode it as a Module.
func TestArtifactRejectsBadMagic(t *testing.T) {
	buf := bytes.NewBufferString("not a pvc artifact at all")
	_, _, _, err := ReadArtifact(buf)
	require.Error(t, err)
}

// TestBytesRejectsImplausibleLength guards the maxBlobLen sanity check a
// corrupted or truncated length prefix would otherwise turn into an
// out-of-memory allocation.
func TestBytesRejectsImplausibleLength(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.U32(1 << 31)
	r := NewReader(&buf)
	got := r.Bytes()
	assert.Nil(t, got)
	require.Error(t, r.Err())
}
