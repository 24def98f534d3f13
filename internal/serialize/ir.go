package serialize

import (
	"fmt"
	"sort"

	"pvc/internal/ir"
	"pvc/internal/types"
)

// WriteModule encodes m: its constant pool followed by its functions in
// name-sorted order, so the encoding is deterministic regardless of Go's
// randomized map iteration.
func WriteModule(w *Writer, m *ir.Module) {
	w.U32(uint32(len(m.Constants)))
	for _, c := range m.Constants {
		w.Bytes(c)
	}

	names := make([]string, 0, len(m.Functions))
	for name := range m.Functions {
		names = append(names, name)
	}
	sort.Strings(names)

	w.U32(uint32(len(names)))
	for _, name := range names {
		w.Str(name)
		writeFunction(w, m.Functions[name])
	}
}

func ReadModule(r *Reader) *ir.Module {
	m := ir.NewModule()
	n := r.U32()
	m.Constants = make([][]byte, n)
	for i := range m.Constants {
		m.Constants[i] = r.Bytes()
	}

	fnCount := r.U32()
	for i := uint32(0); i < fnCount; i++ {
		name := r.Str()
		m.Functions[name] = readFunction(r)
	}
	return m
}

func writeFunction(w *Writer, f *ir.Function) {
	w.Bool(f.Exported)
	writeSignature(w, f.Signature)

	w.U32(uint32(len(f.VarTypes)))
	ids := make([]int, 0, len(f.VarTypes))
	for id := range f.VarTypes {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)
	for _, id := range ids {
		w.I32(int32(id))
		writeType(w, f.VarTypes[ir.VarID(id)])
	}

	w.U32(uint32(len(f.Blocks)))
	for _, b := range f.Blocks {
		writeBlock(w, b)
	}
}

func readFunction(r *Reader) *ir.Function {
	f := &ir.Function{VarTypes: make(map[ir.VarID]types.Type)}
	f.Exported = r.Bool()
	f.Signature = readSignature(r)

	varCount := r.U32()
	for i := uint32(0); i < varCount; i++ {
		id := ir.VarID(r.I32())
		f.VarTypes[id] = readType(r)
	}

	blockCount := r.U32()
	f.Blocks = make([]*ir.Block, blockCount)
	for i := range f.Blocks {
		f.Blocks[i] = readBlock(r)
	}
	return f
}

func writeBlocks(w *Writer, blocks []*ir.Block) {
	w.U32(uint32(len(blocks)))
	for _, b := range blocks {
		writeBlock(w, b)
	}
}

func readBlocks(r *Reader) []*ir.Block {
	n := r.U32()
	out := make([]*ir.Block, n)
	for i := range out {
		out[i] = readBlock(r)
	}
	return out
}

func writeBlock(w *Writer, b *ir.Block) {
	w.U32(uint32(len(b.Statements)))
	for _, s := range b.Statements {
		writeStatement(w, s)
	}
	writeTerminal(w, b.Terminal)
}

func readBlock(r *Reader) *ir.Block {
	b := &ir.Block{}
	n := r.U32()
	b.Statements = make([]ir.Statement, n)
	for i := range b.Statements {
		b.Statements[i] = readStatement(r)
	}
	b.Terminal = readTerminal(r)
	return b
}

func writeVarIDPtr(w *Writer, v *ir.VarID) {
	if v == nil {
		w.Bool(false)
		return
	}
	w.Bool(true)
	w.I32(int32(*v))
}

func readVarIDPtr(r *Reader) *ir.VarID {
	if !r.Bool() {
		return nil
	}
	v := ir.VarID(r.I32())
	return &v
}

func writeVarIDs(w *Writer, vs []ir.VarID) {
	w.U32(uint32(len(vs)))
	for _, v := range vs {
		w.I32(int32(v))
	}
}

func readVarIDs(r *Reader) []ir.VarID {
	n := r.U32()
	out := make([]ir.VarID, n)
	for i := range out {
		out[i] = ir.VarID(r.I32())
	}
	return out
}

const (
	opCall uint8 = iota
	opCallPointer
	opLoadGlobal
	opLoadLocal
	opPhi
	opPartialCall
)

func writeStatement(w *Writer, s ir.Statement) {
	writeVarIDPtr(w, s.Store)
	writeOperation(w, s.Op)
}

func readStatement(r *Reader) ir.Statement {
	store := readVarIDPtr(r)
	op := readOperation(r)
	return ir.Statement{Op: op, Store: store}
}

func writeOperation(w *Writer, op ir.Operation) {
	switch o := op.(type) {
	case ir.Call:
		w.U8(opCall)
		w.U32(uint32(len(o.Function)))
		for _, n := range o.Function {
			w.Str(n)
		}
		writeVarIDs(w, o.Args)
	case ir.CallPointer:
		w.U8(opCallPointer)
		w.I32(int32(o.Pointer))
		writeVarIDs(w, o.Args)
	case ir.LoadGlobal:
		w.U8(opLoadGlobal)
		w.I32(int32(o.Src))
	case ir.LoadLocal:
		w.U8(opLoadLocal)
		w.I32(int32(o.Src))
	case ir.Phi:
		w.U8(opPhi)
		w.U32(uint32(len(o.BlockToVar)))
		blocks := make([]int, 0, len(o.BlockToVar))
		for b := range o.BlockToVar {
			blocks = append(blocks, int(b))
		}
		sort.Ints(blocks)
		for _, b := range blocks {
			w.I32(int32(b))
			w.I32(int32(o.BlockToVar[ir.BlockID(b)]))
		}
	case ir.PartialCall:
		w.U8(opPartialCall)
		writeBlocks(w, o.Blocks)
		w.U32(uint32(len(o.Variables)))
		vids := make([]int, 0, len(o.Variables))
		for v := range o.Variables {
			vids = append(vids, int(v))
		}
		sort.Ints(vids)
		for _, v := range vids {
			w.I32(int32(v))
			w.Bytes(o.Variables[ir.VarID(v)])
		}
		w.U32(uint32(len(o.Unknown)))
		uids := make([]int, 0, len(o.Unknown))
		for v := range o.Unknown {
			uids = append(uids, int(v))
		}
		sort.Ints(uids)
		for _, v := range uids {
			w.I32(int32(v))
		}
	default:
		panic("serialize: unknown operation")
	}
}

func readOperation(r *Reader) ir.Operation {
	switch r.U8() {
	case opCall:
		n := r.U32()
		fn := make([]string, n)
		for i := range fn {
			fn[i] = r.Str()
		}
		return ir.Call{Function: fn, Args: readVarIDs(r)}
	case opCallPointer:
		p := ir.VarID(r.I32())
		return ir.CallPointer{Pointer: p, Args: readVarIDs(r)}
	case opLoadGlobal:
		return ir.LoadGlobal{Src: int(r.I32())}
	case opLoadLocal:
		return ir.LoadLocal{Src: ir.VarID(r.I32())}
	case opPhi:
		n := r.U32()
		m := make(map[ir.BlockID]ir.VarID, n)
		for i := uint32(0); i < n; i++ {
			b := ir.BlockID(r.I32())
			v := ir.VarID(r.I32())
			m[b] = v
		}
		return ir.Phi{BlockToVar: m}
	case opPartialCall:
		blocks := readBlocks(r)
		varCount := r.U32()
		vars := make(map[ir.VarID][]byte, varCount)
		for i := uint32(0); i < varCount; i++ {
			id := ir.VarID(r.I32())
			vars[id] = r.Bytes()
		}
		unkCount := r.U32()
		unknown := make(map[ir.VarID]bool, unkCount)
		for i := uint32(0); i < unkCount; i++ {
			unknown[ir.VarID(r.I32())] = true
		}
		return ir.PartialCall{Blocks: blocks, Variables: vars, Unknown: unknown}
	default:
		r.fail(fmt.Errorf("serialize: unknown operation tag"))
		return nil
	}
}

const (
	termReturn uint8 = iota
	termEvaluate
	termJump
	termCondJump
	termThenElseJump
)

func writeTerminal(w *Writer, t ir.Terminal) {
	switch term := t.(type) {
	case ir.Return:
		w.U8(termReturn)
		writeVarIDPtr(w, term.Var)
	case ir.Evaluate:
		w.U8(termEvaluate)
		writeVarIDPtr(w, term.Var)
	case ir.Jump:
		w.U8(termJump)
		w.I32(int32(term.Target))
	case ir.CondJump:
		w.U8(termCondJump)
		w.I32(int32(term.Cond))
		w.I32(int32(term.Then))
		w.I32(int32(term.Els))
	case ir.ThenElseJump:
		w.U8(termThenElseJump)
		w.I32(int32(term.Var))
	default:
		panic("serialize: unknown terminal")
	}
}

func readTerminal(r *Reader) ir.Terminal {
	switch r.U8() {
	case termReturn:
		return ir.Return{Var: readVarIDPtr(r)}
	case termEvaluate:
		return ir.Evaluate{Var: readVarIDPtr(r)}
	case termJump:
		return ir.Jump{Target: ir.BlockID(r.I32())}
	case termCondJump:
		cond := ir.VarID(r.I32())
		then := ir.BlockID(r.I32())
		els := ir.BlockID(r.I32())
		return ir.CondJump{Cond: cond, Then: then, Els: els}
	case termThenElseJump:
		return ir.ThenElseJump{Var: ir.VarID(r.I32())}
	default:
		r.fail(fmt.Errorf("serialize: unknown terminal tag"))
		return nil
	}
}
