package frontend

import "pvc/internal/types"

// Param is one function parameter's surface declaration: a name and its
// declared Type.
type Param struct {
	Name string
	Type types.Type
}

// FnDecl is a parsed top-level function declaration.
type FnDecl struct {
	Idx     int
	Name    string
	Params  []Param
	Returns types.Type
	Body    *Expr
}

// ModuleAST is the parsed surface form of a whole source file: the ordered
// list of its function declarations. internal/ir's lowerer consumes this to
// build the Module IR.
type ModuleAST struct {
	Fns []FnDecl
}

// ParseModule parses a token stream of top-level `fn` declarations into a
// parse-then-lower pipeline: this function only builds the AST, leaving
// name resolution and IR construction to internal/ir.Lower.
func ParseModule(tokens []Token) (*ModuleAST, error) {
	module := &ModuleAST{}
	i := 0

	for i < len(tokens) {
		tok := tokens[i]
		if tok.Kind != KindKeyword || tok.Keyword != KwFn {
			return nil, &ParseError{Idx: tok.Idx, Kind: ExpectedTopLevel}
		}
		i++

		if i >= len(tokens) || tokens[i].Kind != KindName {
			return nil, &ParseError{Idx: tok.Idx, Kind: ExpectedName}
		}
		name := tokens[i].Name
		i++

		if i >= len(tokens) || tokens[i].Kind != KindOperator || tokens[i].Op != OpCall {
			return nil, &ParseError{Idx: tok.Idx, Kind: ExpectedParams}
		}
		params, err := parseParams(tokens[i])
		if err != nil {
			return nil, err
		}
		i++

		returns := types.VoidType
		if i < len(tokens) && tokens[i].Kind == KindColon {
			i++
			returns, err = parseType(tokens, &i)
			if err != nil {
				return nil, err
			}
		}

		body, err := expectBlockOrExpr(tokens, &i)
		if err != nil {
			return nil, err
		}

		module.Fns = append(module.Fns, FnDecl{
			Idx:     tok.Idx,
			Name:    name,
			Params:  params,
			Returns: returns,
			Body:    body,
		})
	}

	return module, nil
}

// parseParams parses a `(name: Type, ...)` parameter list out of a Call
// operator token's grouped argument runs.
func parseParams(call Token) ([]Param, error) {
	params := make([]Param, 0, len(call.CallArgs))
	for _, run := range call.CallArgs {
		if len(run) < 3 || run[0].Kind != KindName || run[1].Kind != KindColon {
			idx := call.Idx
			if len(run) > 0 {
				idx = run[0].Idx
			}
			return nil, &ParseError{Idx: idx, Kind: ExpectedName}
		}
		i := 2
		typ, err := parseType(run, &i)
		if err != nil {
			return nil, err
		}
		params = append(params, Param{Name: run[0].Name, Type: typ})
	}
	return params, nil
}

// expectBlockOrExpr parses the function body: either a `{ ... }` block, or
// a bare expression terminated by a semicolon.
func expectBlockOrExpr(tokens []Token, i *int) (*Expr, error) {
	if *i < len(tokens) && tokens[*i].Kind == KindBlock {
		tok := tokens[*i]
		*i++
		return parseBlock(tok.Idx, tok.Group)
	}

	start := *i
	for *i < len(tokens) && tokens[*i].Kind != KindSemicolon {
		*i++
	}
	run := tokens[start:*i]
	if *i < len(tokens) {
		*i++ // consume the semicolon
	}
	return ParseExpression(run)
}
