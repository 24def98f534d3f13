package ir

import "pvc/internal/types"

// Builtins gives the lowerer the signatures of the fixed name table the
// partial evaluator and the x86-64 backend special-case by name (see
// internal/eval's dispatch table and internal/codegen/x86's
// builtinSignatures): print and read_file thread the IO capability token,
// call_native hands a symbol name and argument blob to the linker's runtime
// rather than ever being driven concrete by the evaluator.
//
// Lower seeds the top-level declaration environment with this table before
// registering the module's own functions, so a surface program can call
// print(io, "hi") without declaring it; a module-level fn print(...) is
// rejected with a LowerError, exactly the way redeclaring any other
// top-level name is.
var Builtins = map[string]types.Signature{
	"print": {
		Args:    []types.Type{types.IOType, types.NewSlice(types.U8Type)},
		Returns: types.VoidType,
	},
	"read_file": {
		Args:    []types.Type{types.IOType, types.NewSlice(types.U8Type)},
		Returns: types.NewSlice(types.U8Type),
	},
	"call_native": {
		Args:    []types.Type{types.NewSlice(types.U8Type), types.NewSlice(types.U8Type)},
		Returns: types.VoidType,
	},
}
