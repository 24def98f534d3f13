package eval

import "pvc/internal/ir"

// Run evaluates function against args (one entry per parameter, in order,
// nil meaning "not yet known"), seeding the variable environment
// positionally, then delegates to evaluate starting at block 0.
//
// It hands evaluate a deep clone of function's blocks rather than the
// Function's own, so that residualizing in place (evaluate mutates its
// blocks argument as it resolves statements) never reaches back into the
// Module's stored Function. Without this, calling a function more than
// once — recursively, or from two call sites with different known/unknown
// splits — would see an already-residualized block list on its second
// invocation. The original evaluator gets this for free because its
// Function derives Clone and vm.rs::run clones it before evaluating
// (`_examples/original_source/src/vm.rs:61`).
func Run(module *ir.Module, function *ir.Function, args []*[]byte) RunResult {
	vars := make(Vars, len(args))
	for idx, arg := range args {
		vars[ir.VarID(idx)] = arg
	}
	return evaluate(module, cloneBlocks(function.Blocks), vars, 0)
}

// Resume continues evaluating a residual program — the Blocks/Vars pair
// captured in a Partial or ConditionalPartial's Condition field — from
// block 0, after the caller has injected any newly-available inputs
// (e.g. the IO token) into vars. cmd/pvc supplies the loop that
// repeatedly calls it until a Concrete result falls out.
func Resume(module *ir.Module, blocks []*ir.Block, vars Vars) RunResult {
	return evaluate(module, blocks, vars, 0)
}

// evaluate performs the symbolic-execution loop over blocks starting at
// startBlock, mutating vars and blocks in place as it resolves statements,
// and returns once it reaches a terminal it cannot fully resolve or a
// concrete result.
func evaluate(module *ir.Module, blocks []*ir.Block, vars Vars, startBlock ir.BlockID) RunResult {
	block := startBlock
	var lastBlock ir.BlockID

	for {
		out := make([]ir.Statement, 0, len(blocks[block].Statements))

		for _, stmt := range blocks[block].Statements {
			switch op := stmt.Op.(type) {
			case ir.LoadGlobal:
				if stmt.Store != nil {
					vars[*stmt.Store] = known(module.Constants[op.Src])
				}

			case ir.LoadLocal:
				if stmt.Store != nil {
					if data, ok := vars[op.Src]; ok && data != nil {
						vars[*stmt.Store] = known(*data)
					} else {
						out = append(out, stmt)
						vars[*stmt.Store] = nil
					}
				}

			case ir.Phi:
				if stmt.Store != nil {
					srcVar, ok := op.BlockToVar[lastBlock]
					if !ok {
						panic("eval: phi not expecting predecessor block")
					}
					data, ok := vars[srcVar]
					if !ok {
						panic("eval: phi read from undefined variable")
					}
					vars[*stmt.Store] = data
				}

			case ir.Call:
				evalCall(module, op, stmt, vars, &out)

			case ir.CallPointer:
				// The target is only known at runtime; this operation never
				// resolves statically and always survives into the residual.
				out = append(out, stmt)
				if stmt.Store != nil {
					vars[*stmt.Store] = nil
				}

			default:
				panic("eval: unhandled operation")
			}
		}

		blocks[block].Statements = out
		lastBlock = block

		switch term := blocks[block].Terminal.(type) {
		case ir.Evaluate:
			if r, done := finish(blocks, vars, term.Var); done {
				return r
			}
		case ir.Return:
			if r, done := finish(blocks, vars, term.Var); done {
				return r
			}

		case ir.Jump:
			block = term.Target

		case ir.CondJump:
			data, ok := vars[term.Cond]
			if !ok {
				panic("eval: conditional jump on undefined variable")
			}
			if data != nil {
				if Truthy(*data) {
					blocks[block].Terminal = ir.Jump{Target: term.Then}
					block = term.Then
				} else {
					blocks[block].Terminal = ir.Jump{Target: term.Els}
					block = term.Els
				}
				continue
			}

			thenVars := cloneVars(vars)
			thenResult := evaluate(module, cloneBlocks(blocks), thenVars, term.Then)

			elsVars := cloneVars(vars)
			elsResult := evaluate(module, cloneBlocks(blocks), elsVars, term.Els)

			blocks[block].Terminal = ir.ThenElseJump{Var: term.Cond}

			return ConditionalPartial{
				Condition: Partial{Blocks: blocks, Vars: cloneVars(vars)},
				Then:      thenResult,
				Els:       elsResult,
			}

		case ir.ThenElseJump:
			data, ok := vars[term.Var]
			if !ok || data == nil {
				panic("eval: then-else-jump condition still unknown after second pass")
			}
			return ThenElseJumpResult{Took: Truthy(*data)}

		default:
			panic("eval: unknown terminal")
		}
	}
}

// finish implements the shared Return/Evaluate resolution logic: if the
// named variable (or void) is known and every live variable is known, the
// run is Concrete; if the variable itself or any other variable is still
// unresolved, the whole block list plus environment residualizes as
// Partial; a return variable absent from vars is an invariant violation.
//
// Critically, a void return (v == nil) is not automatically Concrete: a
// function that only ever calls an I/O builtin on an as-yet-unknown IO
// token (E1) returns no value at all, yet its residual print call still
// has to run once the token is supplied, so the "every live variable is
// known" check applies uniformly whether or not there is a return value.
func finish(blocks []*ir.Block, vars Vars, v *ir.VarID) (RunResult, bool) {
	if v != nil {
		data, ok := vars[*v]
		if !ok {
			panic("eval: returning undefined variable")
		}
		if data == nil {
			return Partial{Blocks: blocks, Vars: cloneVars(vars)}, true
		}
	}
	for _, d := range vars {
		if d == nil {
			return Partial{Blocks: blocks, Vars: cloneVars(vars)}, true
		}
	}
	if v == nil {
		return Concrete{}, true
	}
	return Concrete{Value: *vars[*v]}, true
}

// evalCall dispatches a Call operation: built-ins are handled in place
// (print/read_file/call_native, see builtins.go), and user functions are
// recursively Run; a call whose callee cannot be driven Concrete
// residualizes as a PartialCall rather than panicking, closing the gap the
// original evaluator leaves as a todo!().
func evalCall(module *ir.Module, op ir.Call, stmt ir.Statement, vars Vars, out *[]ir.Statement) {
	if len(op.Function) == 0 {
		panic("eval: call with no function name")
	}

	if b, ok := builtins[op.Function[0]]; ok {
		b(op.Args, stmt.Store, vars, out, stmt)
		return
	}

	callee, ok := module.Functions[op.Function[0]]
	if !ok {
		panic("eval: call to unknown function " + op.Function[0])
	}

	args := make([]*[]byte, len(op.Args))
	for i, a := range op.Args {
		data, ok := vars[a]
		if !ok {
			panic("eval: call argument undefined")
		}
		args[i] = data
	}

	switch res := Run(module, callee, args).(type) {
	case Concrete:
		if stmt.Store != nil {
			vars[*stmt.Store] = known(res.Value)
		}
	case Partial:
		*out = append(*out, ir.Statement{
			Op: ir.PartialCall{
				Blocks:    res.Blocks,
				Variables: flattenKnown(res.Vars),
				Unknown:   flattenUnknown(res.Vars),
			},
			Store: stmt.Store,
		})
		if stmt.Store != nil {
			vars[*stmt.Store] = nil
		}
	default:
		// ConditionalPartial / ThenElseJumpResult from a nested call mean
		// the callee itself branched on an unresolved condition; there is
		// no single residual block list to splice in here, so the original
		// Call statement stays in the residual unchanged, leaving the
		// callee's two branches to be resolved on their own when the call
		// is evaluated again.
		*out = append(*out, stmt)
		if stmt.Store != nil {
			vars[*stmt.Store] = nil
		}
	}
}

// cloneBlocks deep-copies blocks: a fresh *ir.Block per entry with its own
// Statements slice, so that residualizing one clone (or one CondJump fork)
// can never mutate another clone or the Module's own stored Function —
// matching the original evaluator's Function::clone before each run/branch
// (`_examples/original_source/src/ir.rs:35`, `vm.rs:61`). Terminal values
// are plain structs reassigned wholesale rather than mutated in place, so
// sharing them between clones is safe.
func cloneBlocks(blocks []*ir.Block) []*ir.Block {
	out := make([]*ir.Block, len(blocks))
	for i, b := range blocks {
		stmts := make([]ir.Statement, len(b.Statements))
		copy(stmts, b.Statements)
		out[i] = &ir.Block{Statements: stmts, Terminal: b.Terminal}
	}
	return out
}

func flattenKnown(v Vars) map[ir.VarID][]byte {
	out := make(map[ir.VarID][]byte)
	for k, val := range v {
		if val != nil {
			out[k] = *val
		}
	}
	return out
}

func flattenUnknown(v Vars) map[ir.VarID]bool {
	out := make(map[ir.VarID]bool)
	for k, val := range v {
		if val == nil {
			out[k] = true
		}
	}
	return out
}
