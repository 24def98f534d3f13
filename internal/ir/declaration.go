package ir

import "pvc/internal/types"

// Declaration is a name binding visible to the lowerer: either a nested
// namespace, a function signature, or a local variable id. This is how
// `module.function` dotted calls resolve through nested scopes even
// though this toolchain's surface language only ever declares a flat set
// of functions.
type Declaration interface {
	isDeclaration()
}

// ModuleDecl is a nested namespace of further declarations.
type ModuleDecl map[string]Declaration

// FunctionDecl is a callable's signature.
type FunctionDecl types.Signature

// VariableDecl is a local variable's id.
type VariableDecl VarID

func (ModuleDecl) isDeclaration()   {}
func (FunctionDecl) isDeclaration() {}
func (VariableDecl) isDeclaration() {}

// getDeclaration resolves a dotted name path through nested ModuleDecl
// scopes.
func getDeclaration(names []string, declarations map[string]Declaration, idx int) (Declaration, error) {
	if len(names) == 0 {
		panic("ir: getDeclaration called with no name")
	}
	decl, ok := declarations[names[0]]
	if !ok {
		return nil, &LowerError{Idx: idx, Kind: SymbolUndefined, Name: names[0]}
	}
	if len(names) == 1 {
		return decl, nil
	}
	sub, ok := decl.(ModuleDecl)
	if !ok {
		return nil, &LowerError{Idx: idx, Kind: SymbolNotIndexable, Name: names[0]}
	}
	return getDeclaration(names[1:], sub, idx)
}
