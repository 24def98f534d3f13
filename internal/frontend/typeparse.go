package frontend

import "pvc/internal/types"

// parseType consumes one type name token at tokens[*i] and returns the
// Type it denotes. The surface language exposes exactly two named types,
// plus `()` for the empty tuple; every other Type
// (usize, u8, Bool, non-empty Tuple, Pointer, Array) only ever arises
// internally, from literals and the lowerer, never from a type annotation.
func parseType(tokens []Token, i *int) (types.Type, error) {
	if *i >= len(tokens) {
		return types.Type{}, &ParseError{Kind: TypeUndefined}
	}
	tok := tokens[*i]
	*i++
	if tok.Kind == KindParens && len(tok.Group) == 0 {
		return types.VoidType, nil
	}
	if tok.Kind != KindName {
		return types.Type{}, &ParseError{Idx: tok.Idx, Kind: TypeUndefined, Extra: tok.String()}
	}
	switch tok.Name {
	case "StringSlice":
		return types.NewSlice(types.U8Type), nil
	case "IO":
		return types.IOType, nil
	default:
		return types.Type{}, &ParseError{Idx: tok.Idx, Kind: TypeUndefined, Extra: tok.Name}
	}
}
