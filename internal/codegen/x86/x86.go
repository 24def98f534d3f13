package x86

import (
	"sort"
	"strings"

	"pvc/internal/ir"
	"pvc/internal/types"
	"pvc/internal/util"
)

// builtinSignatures gives codegen each built-in's (print, read_file,
// call_native) Signature so call arguments and return values classify
// the same way a user function's would, even though built-ins never
// appear in module.Functions. It's the same table internal/ir seeds the
// lowerer's declaration environment with.
var builtinSignatures = ir.Builtins

// Generate lowers every function in module to x86-64 System V GAS text:
// a .data section holding the constant pool, followed by a .text section
// with one label per function.
func Generate(module *ir.Module) (string, error) {
	w := util.NewWriter()
	w.WriteString(".intel_syntax noprefix\n")
	genData(w, module)
	w.WriteString("\n.text\n")

	names := make([]string, 0, len(module.Functions))
	for name := range module.Functions {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if module.Functions[name].Exported {
			w.Write(".globl %s\n", name)
		}
	}
	for _, name := range names {
		if err := genFunction(w, module, name, module.Functions[name]); err != nil {
			return "", err
		}
	}
	return w.String(), nil
}

func genData(w *util.Writer, module *ir.Module) {
	w.WriteString(".data\n")
	for i, c := range module.Constants {
		w.Write("_c.%d:\n", i)
		if len(c) == 0 {
			continue
		}
		parts := make([]string, len(c))
		for j, b := range c {
			parts[j] = "0x" + hexByte(b)
		}
		w.Write("\t.byte\t%s\n", strings.Join(parts, ", "))
	}
}

const hexDigits = "0123456789abcdef"

func hexByte(b byte) string {
	return string([]byte{hexDigits[b>>4], hexDigits[b&0xf]})
}

// genFunction emits one function's prologue, body blocks and epilogue.
// Prologue/epilogue layout and the "<function>/<n>block",
// "<function>/epilogue" label scheme follow that convention throughout.
func genFunction(w *util.Writer, module *ir.Module, name string, f *ir.Function) error {
	fr := buildFrame(f)

	w.WriteString("\n")
	w.Label(name)
	w.Ins1("push", "rbp")
	w.Ins2("mov", "rbp", "rsp")
	w.Ins2("sub", "rsp", itoa(fr.size))
	loadIncomingArgs(w, f, fr)
	w.Ins1("jmp", name+"/0block")

	for idx, block := range f.Blocks {
		w.Label(name + "/" + itoa(idx) + "block")
		for _, stmt := range block.Statements {
			if err := genStatement(w, f, fr, module, name, stmt); err != nil {
				return err
			}
		}
		genTerminal(w, f, fr, name, block.Terminal)
	}

	w.Label(name + "/epilogue")
	w.Ins2("add", "rsp", itoa(fr.size))
	w.Ins0("leave")
	w.Ins0("ret")
	return nil
}

// loadIncomingArgs materializes this function's own parameters from the
// incoming registers/stack into their frame slots at function entry,
// the mirror image of loadArgsForCall's outgoing marshaling.
func loadIncomingArgs(w *util.Writer, f *ir.Function, fr *frame) {
	regIdx := 0
	stackOff := 16
	for i, argType := range f.Signature.Args {
		id := ir.VarID(i)
		switch eightbytesOf(argType) {
		case 0:
			continue
		case 2:
			if regIdx+2 <= len(intArgRegisters) {
				w.Ins2("mov", fr.addrLow(id), intArgRegisters[regIdx])
				w.Ins2("mov", fr.addrHigh(id), intArgRegisters[regIdx+1])
				regIdx += 2
			} else {
				w.Ins2("mov", "rax", incomingStackOperand(stackOff))
				w.Ins2("mov", fr.addrLow(id), "rax")
				w.Ins2("mov", "rax", incomingStackOperand(stackOff+8))
				w.Ins2("mov", fr.addrHigh(id), "rax")
				stackOff += 16
			}
		default:
			if regIdx < len(intArgRegisters) {
				w.Ins2("mov", fr.addrLow(id), intArgRegisters[regIdx])
				regIdx++
			} else {
				w.Ins2("mov", "rax", incomingStackOperand(stackOff))
				w.Ins2("mov", fr.addrLow(id), "rax")
				stackOff += 8
			}
		}
	}
}

func genStatement(w *util.Writer, f *ir.Function, fr *frame, module *ir.Module, name string, stmt ir.Statement) error {
	switch op := stmt.Op.(type) {
	case ir.LoadGlobal:
		genLoadGlobal(w, f, fr, module, op, stmt.Store)
	case ir.LoadLocal:
		genLoadLocal(w, f, fr, op, stmt.Store)
	case ir.Call:
		return genCall(w, f, fr, module, name, op, stmt.Store)
	case ir.CallPointer:
		panic("x86: indirect calls through a function pointer are not supported")
	case ir.Phi:
		panic("x86: control-flow merges (phi nodes) are not supported")
	case ir.PartialCall:
		panic("x86: PartialCall has no direct codegen; resume the residual through internal/eval before emitting assembly")
	default:
		panic("x86: unhandled operation")
	}
	return nil
}

func genLoadGlobal(w *util.Writer, f *ir.Function, fr *frame, module *ir.Module, op ir.LoadGlobal, store *ir.VarID) {
	if store == nil {
		return
	}
	t := f.VarTypes[*store]
	if t.Kind == types.Slice {
		w.Write("\tlea\trax, [rip + _c.%d]\n", op.Src)
		w.Ins2("mov", fr.addrLow(*store), "rax")
		w.Ins2("mov", "rax", itoa(len(module.Constants[op.Src])))
		w.Ins2("mov", fr.addrHigh(*store), "rax")
		return
	}
	w.Write("\tmovzx\trax, byte ptr [rip + _c.%d]\n", op.Src)
	w.Ins2("mov", fr.addrLow(*store), "rax")
}

func genLoadLocal(w *util.Writer, f *ir.Function, fr *frame, op ir.LoadLocal, store *ir.VarID) {
	if store == nil {
		return
	}
	t := f.VarTypes[*store]
	switch t.Kind {
	case types.Tuple, types.IO:
		return
	case types.Slice:
		w.Ins2("mov", "rax", fr.addrLow(op.Src))
		w.Ins2("mov", fr.addrLow(*store), "rax")
		w.Ins2("mov", "rax", fr.addrHigh(op.Src))
		w.Ins2("mov", fr.addrHigh(*store), "rax")
	default:
		w.Ins2("mov", "rax", fr.addrLow(op.Src))
		w.Ins2("mov", fr.addrLow(*store), "rax")
	}
}

// genCall marshals args into the System V integer registers (spilling to
// the stack past the sixth), emits the `call`, then stores the return
// value out of rax (and rdx for a Slice).
func genCall(w *util.Writer, f *ir.Function, fr *frame, module *ir.Module, callerName string, op ir.Call, store *ir.VarID) error {
	if len(op.Function) == 0 {
		return &Error{Kind: UnsupportedArgumentShape, Func: callerName, Name: "(empty)"}
	}
	calleeName := strings.Join(op.Function, ".")

	sig, ok := builtinSignatures[op.Function[0]]
	if !ok {
		callee, found := module.Functions[op.Function[0]]
		if !found {
			return &Error{Kind: UnsupportedArgumentShape, Func: callerName, Name: calleeName}
		}
		sig = callee.Signature
	}
	if len(op.Args) != len(sig.Args) {
		return &Error{Kind: UnsupportedArgumentShape, Func: callerName, Name: calleeName}
	}

	loadArgsForCall(w, f, fr, op.Args, sig.Args)
	w.Ins1("call", calleeName)

	if store == nil {
		return nil
	}
	switch sig.Returns.Kind {
	case types.Tuple, types.IO:
		return nil
	case types.Slice:
		w.Ins2("mov", fr.addrLow(*store), "rax")
		w.Ins2("mov", fr.addrHigh(*store), "rdx")
	case types.USize, types.U8, types.Bool, types.Pointer:
		w.Ins2("mov", fr.addrLow(*store), "rax")
	default:
		return &Error{Kind: UnsupportedReturnShape, Func: callerName}
	}
	return nil
}

// loadArgsForCall marshals each outgoing argument from its frame slot
// into the next integer-class register, spilling to the stack (via push,
// in reverse order so the first stack-passed argument ends up closest to
// the return address) once the six-register budget is spent.
func loadArgsForCall(w *util.Writer, f *ir.Function, fr *frame, args []ir.VarID, argTypes []types.Type) {
	regIdx := 0
	var spill []ir.VarID
	var spillIsSlice []bool

	for i, id := range args {
		switch eightbytesOf(argTypes[i]) {
		case 0:
			continue
		case 2:
			if regIdx+2 <= len(intArgRegisters) {
				w.Ins2("mov", intArgRegisters[regIdx], fr.addrLow(id))
				w.Ins2("mov", intArgRegisters[regIdx+1], fr.addrHigh(id))
				regIdx += 2
			} else {
				spill = append(spill, id)
				spillIsSlice = append(spillIsSlice, true)
			}
		default:
			if regIdx < len(intArgRegisters) {
				w.Ins2("mov", intArgRegisters[regIdx], fr.addrLow(id))
				regIdx++
			} else {
				spill = append(spill, id)
				spillIsSlice = append(spillIsSlice, false)
			}
		}
	}

	for i := len(spill) - 1; i >= 0; i-- {
		id := spill[i]
		if spillIsSlice[i] {
			w.Ins1("push", fr.addrHigh(id))
			w.Ins1("push", fr.addrLow(id))
		} else {
			w.Ins1("push", fr.addrLow(id))
		}
	}
}

// genTerminal emits control transfer for a block's terminator. Return and
// Evaluate are handled identically, since both mean "produce this value,
// then leave the block"; codegen treats both as a direct jump to the
// epilogue.
func genTerminal(w *util.Writer, f *ir.Function, fr *frame, name string, term ir.Terminal) {
	switch t := term.(type) {
	case ir.Return:
		genExit(w, f, fr, name, t.Var)
	case ir.Evaluate:
		genExit(w, f, fr, name, t.Var)
	case ir.Jump:
		w.Ins1("jmp", name+"/"+itoa(int(t.Target))+"block")
	case ir.CondJump:
		panic("x86: conditional branching is not supported")
	case ir.ThenElseJump:
		panic("x86: conditional branching is not supported")
	default:
		panic("x86: unhandled terminal")
	}
}

func genExit(w *util.Writer, f *ir.Function, fr *frame, name string, v *ir.VarID) {
	if v != nil {
		t := f.VarTypes[*v]
		switch t.Kind {
		case types.Tuple, types.IO:
		case types.Slice:
			w.Ins2("mov", "rax", fr.addrLow(*v))
			w.Ins2("mov", "rdx", fr.addrHigh(*v))
		default:
			w.Ins2("mov", "rax", fr.addrLow(*v))
		}
	}
	w.Ins1("jmp", name+"/epilogue")
}
