package ir

import (
	"strings"

	"pvc/internal/frontend"
	"pvc/internal/types"
)

// Lower translates a parsed ModuleAST into IR. Declarations are
// registered in two passes so that a function may call another declared
// later in the source.
func Lower(ast *frontend.ModuleAST) (*Module, error) {
	top := make(map[string]Declaration, len(ast.Fns)+len(Builtins))
	for name, sig := range Builtins {
		top[name] = FunctionDecl(sig)
	}
	for _, fn := range ast.Fns {
		if _, ok := top[fn.Name]; ok {
			return nil, &LowerError{Idx: fn.Idx, Kind: SymbolUndefined, Name: fn.Name}
		}
		top[fn.Name] = FunctionDecl(signatureOf(fn))
	}

	module := NewModule()
	for _, fn := range ast.Fns {
		f := module.CreateFunction(fn.Name, signatureOf(fn), true)
		if err := lowerFunction(module, f, fn, top); err != nil {
			return nil, err
		}
	}
	return module, nil
}

func signatureOf(fn frontend.FnDecl) types.Signature {
	sig := types.Signature{Returns: fn.Returns}
	for _, p := range fn.Params {
		sig.Args = append(sig.Args, p.Type)
	}
	return sig
}

// scope is a stack of name-to-variable bindings, one map per enclosing
// surface-language block.
type scope struct {
	frames []map[string]VarID
}

func newScope() *scope {
	return &scope{frames: []map[string]VarID{make(map[string]VarID)}}
}

func (s *scope) push() {
	s.frames = append(s.frames, make(map[string]VarID))
}

func (s *scope) pop() {
	s.frames = s.frames[:len(s.frames)-1]
}

func (s *scope) declare(name string, v VarID) {
	s.frames[len(s.frames)-1][name] = v
}

func (s *scope) lookup(name string) (VarID, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if v, ok := s.frames[i][name]; ok {
			return v, true
		}
	}
	return 0, false
}

// lowerCtx carries the per-function state the lowering walk threads
// through: the module (for constant interning and function lookup), the
// function under construction, its name scope, and the top-level
// declaration table dotted calls resolve against.
type lowerCtx struct {
	module *Module
	fn     *Function
	scope  *scope
	top    map[string]Declaration
}

func lowerFunction(module *Module, f *Function, fn frontend.FnDecl, top map[string]Declaration) error {
	entry, entryID := f.CreateBlock(Evaluate{})
	ctx := &lowerCtx{module: module, fn: f, scope: newScope(), top: top}

	for i, p := range fn.Params {
		v := VarID(i)
		f.DeclareVar(v, p.Type)
		ctx.scope.declare(p.Name, v)
	}

	finalBlock, _, finalVar, err := ctx.lowerExpr(entry, entryID, fn.Body)
	if err != nil {
		return err
	}

	if types.Equal(fn.Returns, types.VoidType) {
		finalBlock.Terminal = Return{Var: finalVar}
		return nil
	}
	if finalVar == nil {
		return &LowerError{Idx: fn.Idx, Kind: TypeMismatch, Exp: fn.Returns, Got: types.VoidType}
	}
	if got := f.VarTypes[*finalVar]; !types.Equal(got, fn.Returns) {
		return &LowerError{Idx: fn.Idx, Kind: TypeMismatch, Exp: fn.Returns, Got: got}
	}
	finalBlock.Terminal = Return{Var: finalVar}
	return nil
}

// lowerExpr lowers a single surface expression, appending statements (and,
// where control flow is involved, whole new blocks) starting at block/
// blockID. It returns the block lowering left off in (which may differ
// from the input when the expression branches) along with the variable
// holding the expression's value, or nil if the expression's value is
// void/discarded.
func (ctx *lowerCtx) lowerExpr(block *Block, blockID BlockID, expr *frontend.Expr) (*Block, BlockID, *VarID, error) {
	switch node := expr.Node.(type) {
	case frontend.StringLiteral:
		idx := ctx.module.CreateString([]byte(node.Value))
		v := ctx.newVar(types.NewSlice(types.U8Type))
		block.AppendOp(LoadGlobal{Src: idx}, &v)
		return block, blockID, &v, nil

	case frontend.NumberLiteral:
		idx := ctx.module.CreateString([]byte{node.Value})
		v := ctx.newVar(types.U8Type)
		block.AppendOp(LoadGlobal{Src: idx}, &v)
		return block, blockID, &v, nil

	case frontend.Var:
		src, ok := ctx.scope.lookup(node.Name)
		if !ok {
			return nil, 0, nil, &LowerError{Idx: expr.Idx, Kind: SymbolUndefined, Name: node.Name}
		}
		v := ctx.newVar(ctx.fn.VarTypes[src])
		block.AppendOp(LoadLocal{Src: src}, &v)
		return block, blockID, &v, nil

	case frontend.Let:
		b, id, v, err := ctx.lowerExpr(block, blockID, node.Value)
		if err != nil {
			return nil, 0, nil, err
		}
		if v == nil {
			return nil, 0, nil, &LowerError{Idx: expr.Idx, Kind: NotStorable, Name: node.Name}
		}
		ctx.scope.declare(node.Name, *v)
		return b, id, nil, nil

	case frontend.Return:
		var v *VarID
		b := block
		if node.Value != nil {
			var err error
			b, _, v, err = ctx.lowerExpr(block, blockID, node.Value)
			if err != nil {
				return nil, 0, nil, err
			}
		}
		b.Terminal = Return{Var: v}
		dead, deadID := ctx.fn.CreateBlock(Evaluate{})
		return dead, deadID, nil, nil

	case frontend.Block:
		return ctx.lowerBlock(block, blockID, node)

	case frontend.Call:
		return ctx.lowerCall(block, blockID, expr.Idx, node)

	case frontend.Index:
		return nil, 0, nil, &LowerError{Idx: expr.Idx, Kind: ExpressionNotCallable, Got: types.VoidType}

	case frontend.If:
		return ctx.lowerIf(block, blockID, expr.Idx, node)

	default:
		panic("ir: unhandled expression node")
	}
}

func (ctx *lowerCtx) newVar(t types.Type) VarID {
	v := ctx.fn.NextVar()
	ctx.fn.DeclareVar(v, t)
	return v
}

func (ctx *lowerCtx) lowerBlock(block *Block, blockID BlockID, node frontend.Block) (*Block, BlockID, *VarID, error) {
	ctx.scope.push()
	defer ctx.scope.pop()

	cur, curID := block, blockID
	var last *VarID
	for _, stmt := range node.Statements {
		b, id, v, err := ctx.lowerExpr(cur, curID, stmt)
		if err != nil {
			return nil, 0, nil, err
		}
		cur, curID, last = b, id, v
	}
	if node.Returns {
		return cur, curID, last, nil
	}
	return cur, curID, nil, nil
}

// calleePath flattens a Var or dotted Index chain (left.right.right...)
// into its component names, the way mangle_name's input is built in the
// original lowerer. It returns false for any callee shape that isn't a
// plain dotted name path.
func calleePath(expr *frontend.Expr) ([]string, bool) {
	switch node := expr.Node.(type) {
	case frontend.Var:
		return []string{node.Name}, true
	case frontend.Index:
		left, ok := calleePath(node.Left)
		if !ok {
			return nil, false
		}
		lit, ok := node.Right.Node.(frontend.StringLiteral)
		if !ok {
			return nil, false
		}
		return append(left, lit.Value), true
	default:
		return nil, false
	}
}

func (ctx *lowerCtx) lowerCall(block *Block, blockID BlockID, idx int, node frontend.Call) (*Block, BlockID, *VarID, error) {
	path, ok := calleePath(node.Callee)
	if !ok {
		return nil, 0, nil, &LowerError{Idx: idx, Kind: ExpressionNotCallable}
	}

	if len(path) == 1 {
		if v, found := ctx.scope.lookup(path[0]); found {
			t := ctx.fn.VarTypes[v]
			if !t.IsFunctionPointer() {
				return nil, 0, nil, &LowerError{Idx: idx, Kind: SymbolNotCallable, Name: path[0]}
			}
			return ctx.lowerCallArgs(block, blockID, idx, *t.Func, node.Args, func(args []VarID, store *VarID) Operation {
				return CallPointer{Pointer: v, Args: args}
			})
		}
	}

	decl, err := getDeclaration(path, ctx.top, idx)
	if err != nil {
		return nil, 0, nil, err
	}
	fd, ok := decl.(FunctionDecl)
	if !ok {
		return nil, 0, nil, &LowerError{Idx: idx, Kind: SymbolNotCallable, Name: strings.Join(path, ".")}
	}
	return ctx.lowerCallArgs(block, blockID, idx, types.Signature(fd), node.Args, func(args []VarID, store *VarID) Operation {
		return Call{Function: path, Args: args}
	})
}

func (ctx *lowerCtx) lowerCallArgs(block *Block, blockID BlockID, idx int, sig types.Signature, exprs []*frontend.Expr, build func([]VarID, *VarID) Operation) (*Block, BlockID, *VarID, error) {
	if len(exprs) != len(sig.Args) {
		return nil, 0, nil, &LowerError{Idx: idx, Kind: ExtraArgument}
	}

	cur, curID := block, blockID
	args := make([]VarID, len(exprs))
	for i, e := range exprs {
		b, id, v, err := ctx.lowerExpr(cur, curID, e)
		if err != nil {
			return nil, 0, nil, err
		}
		if v == nil {
			return nil, 0, nil, &LowerError{Idx: e.Idx, Kind: TypeMismatch, Exp: sig.Args[i], Got: types.VoidType}
		}
		if got := ctx.fn.VarTypes[*v]; !types.Equal(got, sig.Args[i]) {
			return nil, 0, nil, &LowerError{Idx: e.Idx, Kind: TypeMismatch, Exp: sig.Args[i], Got: got}
		}
		cur, curID, args[i] = b, id, *v
	}

	var store *VarID
	if !types.Equal(sig.Returns, types.VoidType) {
		v := ctx.newVar(sig.Returns)
		store = &v
	}
	cur.AppendOp(build(args, store), store)
	return cur, curID, store, nil
}

// lowerIf lowers an if/else into a CondJump over two fresh blocks joined by
// a synthetic block terminated (for now) with Evaluate, the placeholder the
// caller overwrites once it knows what follows. A Phi is only emitted when
// both branches yield a value of the same type; an if used for its value
// with no else block is a MissingElseBlock error.
func (ctx *lowerCtx) lowerIf(block *Block, blockID BlockID, idx int, node frontend.If) (*Block, BlockID, *VarID, error) {
	condBlock, _, condVar, err := ctx.lowerExpr(block, blockID, node.Cond)
	if err != nil {
		return nil, 0, nil, err
	}
	// The truthy rule applies uniformly whether the predicate was typed
	// Bool or u8, so either is an acceptable condition.
	if condVar == nil {
		return nil, 0, nil, &LowerError{Idx: node.Cond.Idx, Kind: TypeMismatch, Exp: types.BoolType, Got: types.VoidType}
	}
	if got := ctx.fn.VarTypes[*condVar]; !types.Equal(got, types.BoolType) && !types.Equal(got, types.U8Type) {
		return nil, 0, nil, &LowerError{Idx: node.Cond.Idx, Kind: TypeMismatch, Exp: types.BoolType, Got: got}
	}

	thenEntry, thenEntryID := ctx.fn.CreateBlock(Evaluate{})
	elsEntry, elsEntryID := ctx.fn.CreateBlock(Evaluate{})
	condBlock.Terminal = CondJump{Cond: *condVar, Then: thenEntryID, Els: elsEntryID}

	thenFinal, thenFinalID, thenVar, err := ctx.lowerExpr(thenEntry, thenEntryID, node.Then)
	if err != nil {
		return nil, 0, nil, err
	}

	var elsFinal *Block
	var elsFinalID BlockID
	var elsVar *VarID
	if node.Els != nil {
		elsFinal, elsFinalID, elsVar, err = ctx.lowerExpr(elsEntry, elsEntryID, node.Els)
		if err != nil {
			return nil, 0, nil, err
		}
	} else {
		elsFinal, elsFinalID = elsEntry, elsEntryID
	}

	if thenVar != nil && node.Els == nil {
		return nil, 0, nil, &LowerError{Idx: idx, Kind: MissingElseBlock}
	}

	join, joinID := ctx.fn.CreateBlock(Evaluate{})
	thenFinal.Terminal = Jump{Target: joinID}
	elsFinal.Terminal = Jump{Target: joinID}

	var result *VarID
	if thenVar != nil && elsVar != nil {
		if got := ctx.fn.VarTypes[*elsVar]; !types.Equal(got, ctx.fn.VarTypes[*thenVar]) {
			return nil, 0, nil, &LowerError{Idx: idx, Kind: TypeMismatch, Exp: ctx.fn.VarTypes[*thenVar], Got: got}
		}
		v := ctx.newVar(ctx.fn.VarTypes[*thenVar])
		join.AppendOp(Phi{BlockToVar: map[BlockID]VarID{thenFinalID: *thenVar, elsFinalID: *elsVar}}, &v)
		result = &v
	}

	return join, joinID, result, nil
}
