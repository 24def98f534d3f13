package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pvc/internal/frontend"
	"pvc/internal/types"
)

func lowerSource(t *testing.T, src string) *Module {
	t.Helper()
	toks, err := frontend.Tokenize(src, 0)
	require.NoError(t, err)
	ast, err := frontend.ParseModule(toks)
	require.NoError(t, err)
	m, err := Lower(ast)
	require.NoError(t, err)
	return m
}

// TestLowerConstantPrint is E1: a print of a string literal lowers to one
// LoadGlobal feeding a Call to print.
func TestLowerConstantPrint(t *testing.T) {
	m := lowerSource(t, `fn main(io: IO): () { print(io, "hi") }`)
	main, ok := m.Functions["main"]
	require.True(t, ok)
	require.Len(t, m.Constants, 1)
	assert.Equal(t, []byte("hi"), m.Constants[0])

	entry := main.Blocks[0]
	var sawLoad, sawCall bool
	for _, stmt := range entry.Statements {
		switch op := stmt.Op.(type) {
		case LoadGlobal:
			sawLoad = true
			assert.Equal(t, 0, op.Src)
		case Call:
			sawCall = true
			assert.Equal(t, []string{"print"}, op.Function)
			require.Len(t, op.Args, 2)
		}
	}
	assert.True(t, sawLoad)
	assert.True(t, sawCall)
	_, isReturn := entry.Terminal.(Return)
	assert.True(t, isReturn)
}

// TestLowerLetThenPrint is E2: `let` binds a fresh variable the later
// reference copies with LoadLocal.
func TestLowerLetThenPrint(t *testing.T) {
	m := lowerSource(t, `fn main(io: IO): () { let m = "x"; print(io, m) }`)
	main := m.Functions["main"]
	entry := main.Blocks[0]

	var sawLocal bool
	for _, stmt := range entry.Statements {
		if _, ok := stmt.Op.(LoadLocal); ok {
			sawLocal = true
		}
	}
	assert.True(t, sawLocal, "referencing a let-bound name emits LoadLocal")
}

// TestLowerIfElsePhi is E6: branches that both produce a value join through
// a Phi with exactly one entry per predecessor (invariant I2).
func TestLowerIfElsePhi(t *testing.T) {
	m := lowerSource(t, `fn main(io: IO): () {
		let x = if 1 { "t" } else { "e" };
		print(io, x)
	}`)
	main := m.Functions["main"]

	var phi *Phi
	var phiBlock *Block
	for _, b := range main.Blocks {
		for _, stmt := range b.Statements {
			if p, ok := stmt.Op.(Phi); ok {
				phi = &p
				phiBlock = b
			}
		}
	}
	require.NotNil(t, phi, "if/else used as a value must lower to a join Phi")
	assert.Len(t, phi.BlockToVar, 2, "I2: one entry per direct predecessor")
	_ = phiBlock
}

// TestLowerIfAsValueWithoutElseIsAnError checks the MissingElseBlock rule.
func TestLowerIfAsValueWithoutElseIsAnError(t *testing.T) {
	toks, err := frontend.Tokenize(`fn main(io: IO): () {
		let x = if 1 { "t" };
		print(io, x)
	}`, 0)
	require.NoError(t, err)
	ast, err := frontend.ParseModule(toks)
	require.NoError(t, err)
	_, err = Lower(ast)
	require.Error(t, err)
	var le *LowerError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, MissingElseBlock, le.Kind)
}

// TestLowerCallArgumentTypeMismatch exercises the Call bullet's
// argument-type check.
func TestLowerCallArgumentTypeMismatch(t *testing.T) {
	toks, err := frontend.Tokenize(`fn takes_io(n: IO): () { }
		fn main(io: IO): () { takes_io(1) }`, 0)
	require.NoError(t, err)
	// "1" parses as a NumberLiteral (u8); takes_io declares an IO param,
	// so the call should fail to typecheck.
	ast, err := frontend.ParseModule(toks)
	require.NoError(t, err)
	_, err = Lower(ast)
	require.Error(t, err)
	var le *LowerError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, TypeMismatch, le.Kind)
}

func TestLowerCallExtraArgumentIsAnError(t *testing.T) {
	toks, err := frontend.Tokenize(`fn f(io: IO): () { }
		fn main(io: IO): () { f(io, io) }`, 0)
	require.NoError(t, err)
	ast, err := frontend.ParseModule(toks)
	require.NoError(t, err)
	_, err = Lower(ast)
	require.Error(t, err)
	var le *LowerError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ExtraArgument, le.Kind)
}

func TestLowerUndefinedSymbolIsAnError(t *testing.T) {
	toks, err := frontend.Tokenize(`fn main(io: IO): () { nope(io) }`, 0)
	require.NoError(t, err)
	ast, err := frontend.ParseModule(toks)
	require.NoError(t, err)
	_, err = Lower(ast)
	require.Error(t, err)
	var le *LowerError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, SymbolUndefined, le.Kind)
}

// TestLowerSeedsBuiltinDeclarations guards against the lowerer forgetting
// to register print/read_file/call_native ahead of the module's own
// functions: calling a built-in with no matching top-level fn declared
// must not raise SymbolUndefined.
func TestLowerSeedsBuiltinDeclarations(t *testing.T) {
	m := lowerSource(t, `fn main(io: IO): () { print(io, "hi") }`)
	assert.NotNil(t, m.Functions["main"])

	m = lowerSource(t, `fn main(io: IO): StringSlice { return read_file(io, "path") }`)
	assert.NotNil(t, m.Functions["main"])
}

// TestVariableTypesTotal is invariant I5: every variable id that appears as
// a store or input has a recorded type.
func TestVariableTypesTotal(t *testing.T) {
	m := lowerSource(t, `fn main(io: IO): () {
		let x = if 1 { "t" } else { "e" };
		print(io, x)
	}`)
	main := m.Functions["main"]
	for _, b := range main.Blocks {
		for _, stmt := range b.Statements {
			for _, v := range usedVars(stmt.Op) {
				_, ok := main.VarTypes[v]
				assert.True(t, ok, "variable %d used with no recorded type", v)
			}
			if stmt.Store != nil {
				_, ok := main.VarTypes[*stmt.Store]
				assert.True(t, ok, "stored variable %d has no recorded type", *stmt.Store)
			}
		}
	}
}

func usedVars(op Operation) []VarID {
	switch o := op.(type) {
	case LoadLocal:
		return []VarID{o.Src}
	case Call:
		return o.Args
	case CallPointer:
		return append([]VarID{o.Pointer}, o.Args...)
	case Phi:
		out := make([]VarID, 0, len(o.BlockToVar))
		for _, v := range o.BlockToVar {
			out = append(out, v)
		}
		return out
	default:
		return nil
	}
}

// TestSignatureOfDefaultsVoid checks a bodyless return type defaults to
// Tuple([]).
func TestSignatureOfDefaultsVoid(t *testing.T) {
	m := lowerSource(t, `fn main(io: IO) { }`)
	assert.True(t, types.Equal(types.VoidType, m.Functions["main"].Signature.Returns))
}
