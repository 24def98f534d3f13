package frontend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *Expr {
	t.Helper()
	toks, err := Tokenize(src, 0)
	require.NoError(t, err)
	e, err := ParseExpression(toks)
	require.NoError(t, err)
	return e
}

func TestParseLet(t *testing.T) {
	e := parse(t, `let m = "x"`)
	let, ok := e.Node.(Let)
	require.True(t, ok)
	assert.Equal(t, "m", let.Name)
	str, ok := let.Value.Node.(StringLiteral)
	require.True(t, ok)
	assert.Equal(t, "x", str.Value)
}

func TestParseCall(t *testing.T) {
	e := parse(t, `print(io, "hi")`)
	call, ok := e.Node.(Call)
	require.True(t, ok)
	callee, ok := call.Callee.Node.(Var)
	require.True(t, ok)
	assert.Equal(t, "print", callee.Name)
	require.Len(t, call.Args, 2)
	arg0, ok := call.Args[0].Node.(Var)
	require.True(t, ok)
	assert.Equal(t, "io", arg0.Name)
}

func TestParseIndexFromDot(t *testing.T) {
	e := parse(t, `mod.fn`)
	idx, ok := e.Node.(Index)
	require.True(t, ok)
	left, ok := idx.Left.Node.(Var)
	require.True(t, ok)
	assert.Equal(t, "mod", left.Name)
	right, ok := idx.Right.Node.(StringLiteral)
	require.True(t, ok)
	assert.Equal(t, "fn", right.Value)
}

func TestParseAssignOutsideLetIsAnError(t *testing.T) {
	toks, err := Tokenize("x = 1", 0)
	require.NoError(t, err)
	_, err = ParseExpression(toks)
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, MalformedLet, pe.Kind)
}

func TestParseIfElse(t *testing.T) {
	e := parse(t, `if 1 { "t" } else { "e" }`)
	ifNode, ok := e.Node.(If)
	require.True(t, ok)
	require.NotNil(t, ifNode.Els)

	block, ok := ifNode.Then.Node.(Block)
	require.True(t, ok)
	require.Len(t, block.Statements, 1)
	assert.True(t, block.Returns)
}

func TestParseIfWithoutElse(t *testing.T) {
	e := parse(t, `if 1 { print(io, "t") }`)
	ifNode, ok := e.Node.(If)
	require.True(t, ok)
	assert.Nil(t, ifNode.Els)
}

func TestParseIfElseIfChain(t *testing.T) {
	e := parse(t, `if 1 { "a" } else if 0 { "b" } else { "c" }`)
	ifNode, ok := e.Node.(If)
	require.True(t, ok)
	require.NotNil(t, ifNode.Els)
	elsIf, ok := ifNode.Els.Node.(If)
	require.True(t, ok)
	require.NotNil(t, elsIf.Els)
}

func TestParseBlockTrailingSemicolonDiscardsValue(t *testing.T) {
	e := parse(t, `{ let x = "a"; print(io, x); }`)
	block, ok := e.Node.(Block)
	require.True(t, ok)
	assert.False(t, block.Returns)
	require.Len(t, block.Statements, 2)
}

func TestParseModuleFunction(t *testing.T) {
	toks, err := Tokenize(`fn main(io: IO): () { print(io, "hi") }`, 0)
	require.NoError(t, err)
	ast, err := ParseModule(toks)
	require.NoError(t, err)
	require.Len(t, ast.Fns, 1)
	fn := ast.Fns[0]
	assert.Equal(t, "main", fn.Name)
	require.Len(t, fn.Params, 1)
	assert.Equal(t, "io", fn.Params[0].Name)
}

func TestParseModuleDefaultReturnIsVoid(t *testing.T) {
	toks, err := Tokenize(`fn f(io: IO) { print(io, "x") }`, 0)
	require.NoError(t, err)
	ast, err := ParseModule(toks)
	require.NoError(t, err)
	require.Len(t, ast.Fns, 1)
	assert.Equal(t, 0, len(ast.Fns[0].Returns.Fields), "default return type is the empty tuple")
}

func TestParseModuleRejectsNonFnTopLevel(t *testing.T) {
	toks, err := Tokenize(`let x = "y"`, 0)
	require.NoError(t, err)
	_, err = ParseModule(toks)
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ExpectedTopLevel, pe.Kind)
}
