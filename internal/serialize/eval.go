package serialize

import (
	"fmt"
	"sort"

	"pvc/internal/eval"
	"pvc/internal/ir"
)

// writeVars encodes an eval.Vars environment as a count followed by
// (VarID, presence, bytes?) triples, preserving the known/unresolved
// distinction a nil entry carries.
func writeVars(w *Writer, vars eval.Vars) {
	w.U32(uint32(len(vars)))
	ids := make([]int, 0, len(vars))
	for id := range vars {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)
	for _, id := range ids {
		w.I32(int32(id))
		data := vars[ir.VarID(id)]
		if data == nil {
			w.Bool(false)
			continue
		}
		w.Bool(true)
		w.Bytes(*data)
	}
}

func readVars(r *Reader) eval.Vars {
	n := r.U32()
	vars := make(eval.Vars, n)
	for i := uint32(0); i < n; i++ {
		id := ir.VarID(r.I32())
		if !r.Bool() {
			vars[id] = nil
			continue
		}
		data := r.Bytes()
		vars[id] = &data
	}
	return vars
}

const (
	resConcrete uint8 = iota
	resPartial
	resConditionalPartial
	resThenElseJump
)

// WriteResult encodes a RunResult tree, recursing through
// ConditionalPartial's Then/Els branches.
func WriteResult(w *Writer, res eval.RunResult) {
	switch r := res.(type) {
	case eval.Concrete:
		w.U8(resConcrete)
		w.Bytes(r.Value)
	case eval.Partial:
		w.U8(resPartial)
		writeBlocks(w, r.Blocks)
		writeVars(w, r.Vars)
	case eval.ConditionalPartial:
		w.U8(resConditionalPartial)
		writeBlocks(w, r.Condition.Blocks)
		writeVars(w, r.Condition.Vars)
		WriteResult(w, r.Then)
		WriteResult(w, r.Els)
	case eval.ThenElseJumpResult:
		w.U8(resThenElseJump)
		w.Bool(r.Took)
	default:
		panic("serialize: unknown run result")
	}
}

func ReadResult(r *Reader) eval.RunResult {
	switch r.U8() {
	case resConcrete:
		return eval.Concrete{Value: r.Bytes()}
	case resPartial:
		blocks := readBlocks(r)
		vars := readVars(r)
		return eval.Partial{Blocks: blocks, Vars: vars}
	case resConditionalPartial:
		blocks := readBlocks(r)
		vars := readVars(r)
		then := ReadResult(r)
		els := ReadResult(r)
		return eval.ConditionalPartial{
			Condition: eval.Partial{Blocks: blocks, Vars: vars},
			Then:      then,
			Els:       els,
		}
	case resThenElseJump:
		return eval.ThenElseJumpResult{Took: r.Bool()}
	default:
		r.fail(fmt.Errorf("serialize: unknown run result tag"))
		return nil
	}
}
