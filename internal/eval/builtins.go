package eval

import (
	"fmt"
	"os"

	"pvc/internal/ir"
)

// builtin is a function with effects or behavior the evaluator cannot
// express purely in terms of ir.PartialCall residualization: it inspects
// its arguments directly and either performs its effect now (all arguments
// concrete) or leaves a plain Call statement in the residual program
// (anything still unknown).
type builtin func(args []ir.VarID, store *ir.VarID, vars Vars, out *[]ir.Statement, stmt ir.Statement)

// builtins is the dispatch table consulted by evalCall before a Call's
// first name component is looked up in the module's function table.
var builtins = map[string]builtin{
	"print":       builtinPrint,
	"read_file":   builtinReadFile,
	"call_native": builtinCallNative,
}

// ioGated reports whether the IO-typed first argument (args[0]) is present
// and the second argument is concrete. Following the original evaluator,
// the IO token only has to be present — its content, always empty, is
// never inspected — so print and read_file become concrete as soon as the
// enclosing function has been resumed with its IO parameter supplied at
// all, independent of whatever other inputs remain unknown.
func ioGated(args []ir.VarID, vars Vars) (payload []byte, ok bool) {
	io, present := vars[args[0]]
	if !present {
		panic("eval: builtin argument undefined")
	}
	if io == nil {
		return nil, false
	}
	data, present := vars[args[1]]
	if !present {
		panic("eval: builtin argument undefined")
	}
	if data == nil {
		return nil, false
	}
	return *data, true
}

func residualize(args []ir.VarID, store *ir.VarID, vars Vars, out *[]ir.Statement, stmt ir.Statement) {
	*out = append(*out, stmt)
	if store != nil {
		vars[*store] = nil
	}
}

// builtinPrint writes its string-slice argument to standard output once the
// IO token is present and the message is fully known. It is unresolved
// (and the call is left in the residual program) otherwise.
func builtinPrint(args []ir.VarID, store *ir.VarID, vars Vars, out *[]ir.Statement, stmt ir.Statement) {
	message, ok := ioGated(args, vars)
	if !ok {
		residualize(args, store, vars, out, stmt)
		return
	}
	fmt.Println(string(message))
	if store != nil {
		vars[*store] = known(nil)
	}
}

// builtinReadFile reads its path argument as a string-slice value once the
// IO token is present and the path is fully known. A missing or unreadable
// file residualizes rather than aborting the compile, since a partial
// evaluation pass must never fail for reasons the final program's runtime
// environment would itself recover from.
func builtinReadFile(args []ir.VarID, store *ir.VarID, vars Vars, out *[]ir.Statement, stmt ir.Statement) {
	path, ok := ioGated(args, vars)
	if !ok {
		residualize(args, store, vars, out, stmt)
		return
	}
	data, err := os.ReadFile(string(path))
	if err != nil {
		residualize(args, store, vars, out, stmt)
		return
	}
	if store != nil {
		vars[*store] = known(data)
	}
}

// builtinCallNative invokes an externally linked function by name at
// codegen time, not at partial-evaluation time: the callee lives outside
// this module's IR entirely, so the evaluator can never drive it to a
// Concrete value and always leaves the call in the residual program for
// the backend to emit as a direct `call` instruction.
func builtinCallNative(args []ir.VarID, store *ir.VarID, vars Vars, out *[]ir.Statement, stmt ir.Statement) {
	residualize(args, store, vars, out, stmt)
}
