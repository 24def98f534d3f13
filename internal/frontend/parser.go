package frontend

// ParseExpression parses a single expression out of a flat token run. It
// special-cases `let`, then otherwise splits the run on its
// highest-precedence operator (Assign > Call > Dot), recursing on both
// sides via precedence-climbing-by-linear-scan. `if` is this toolchain's
// one addition to that grammar (see ast.go's If).
func ParseExpression(tokens []Token) (*Expr, error) {
	if len(tokens) >= 1 && tokens[0].Kind == KindKeyword && tokens[0].Keyword == KwIf {
		return parseIf(tokens)
	}

	if len(tokens) >= 3 && tokens[0].Kind == KindKeyword && tokens[0].Keyword == KwLet {
		if tokens[1].Kind != KindName {
			return nil, &ParseError{Idx: tokens[0].Idx, Kind: ExpectedName}
		}
		if tokens[2].Kind != KindOperator || tokens[2].Op != OpAssign {
			return nil, &ParseError{Idx: tokens[0].Idx, Kind: ExpectedAssign}
		}
		value, err := ParseExpression(tokens[3:])
		if err != nil {
			return nil, err
		}
		return &Expr{Idx: tokens[0].Idx, Node: Let{Name: tokens[1].Name, Value: value}}, nil
	}

	hp := -1
	hpPrec := -1
	for i, tok := range tokens {
		if tok.Kind != KindOperator {
			continue
		}
		if tok.Op.Precedence() > hpPrec {
			hpPrec = tok.Op.Precedence()
			hp = i
		}
	}

	if hp >= 0 {
		switch tokens[hp].Op {
		case OpAssign:
			return nil, &ParseError{Idx: tokens[hp].Idx, Kind: MalformedLet, Extra: "assignment outside of let is not supported"}
		case OpDot:
			left, err := ParseExpression(tokens[:hp])
			if err != nil {
				return nil, err
			}
			if hp+1 >= len(tokens) || tokens[hp+1].Kind != KindName {
				idx := tokens[hp].Idx
				if hp+1 < len(tokens) {
					idx = tokens[hp+1].Idx
				}
				return nil, &ParseError{Idx: idx, Kind: ExpectedName}
			}
			name := tokens[hp+1]
			return &Expr{
				Idx: left.Idx,
				Node: Index{
					Left:  left,
					Right: &Expr{Idx: name.Idx, Node: StringLiteral{Value: name.Name}},
				},
			}, nil
		case OpCall:
			left, err := ParseExpression(tokens[:hp])
			if err != nil {
				return nil, err
			}
			args := make([]*Expr, 0, len(tokens[hp].CallArgs))
			for _, run := range tokens[hp].CallArgs {
				if len(run) == 0 {
					continue
				}
				arg, err := ParseExpression(run)
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
			}
			return &Expr{Idx: left.Idx, Node: Call{Callee: left, Args: args}}, nil
		}
	}

	switch {
	case len(tokens) == 1 && tokens[0].Kind == KindString:
		return &Expr{Idx: tokens[0].Idx, Node: StringLiteral{Value: tokens[0].Str}}, nil
	case len(tokens) == 1 && tokens[0].Kind == KindNumber:
		return &Expr{Idx: tokens[0].Idx, Node: NumberLiteral{Value: tokens[0].Num}}, nil
	case len(tokens) == 1 && tokens[0].Kind == KindName:
		return &Expr{Idx: tokens[0].Idx, Node: Var{Name: tokens[0].Name}}, nil
	case len(tokens) == 1 && tokens[0].Kind == KindParens:
		return ParseExpression(tokens[0].Group)
	case len(tokens) == 1 && tokens[0].Kind == KindBlock:
		return parseBlock(tokens[0].Idx, tokens[0].Group)
	case len(tokens) >= 1 && tokens[0].Kind == KindKeyword && tokens[0].Keyword == KwReturn:
		if len(tokens) == 1 {
			return &Expr{Idx: tokens[0].Idx, Node: Return{}}, nil
		}
		value, err := ParseExpression(tokens[1:])
		if err != nil {
			return nil, err
		}
		return &Expr{Idx: tokens[0].Idx, Node: Return{Value: value}}, nil
	case len(tokens) == 0:
		return nil, &ParseError{Idx: 0, Kind: ExpectedExpression}
	default:
		return nil, &ParseError{Idx: tokens[0].Idx, Kind: ExpectedExpression}
	}
}

// parseBlock splits a brace group's contents on top-level semicolons and
// parses each resulting run as a statement.
func parseBlock(idx int, tokens []Token) (*Expr, error) {
	var stmts []*Expr
	var current []Token
	trailingSemicolon := false

	flush := func() error {
		if len(current) == 0 {
			return nil
		}
		e, err := ParseExpression(current)
		if err != nil {
			return err
		}
		stmts = append(stmts, e)
		current = nil
		return nil
	}

	for _, tok := range tokens {
		if tok.Kind == KindSemicolon {
			if err := flush(); err != nil {
				return nil, err
			}
			trailingSemicolon = true
			continue
		}
		current = append(current, tok)
		trailingSemicolon = false
	}
	if err := flush(); err != nil {
		return nil, err
	}

	return &Expr{Idx: idx, Node: Block{Statements: stmts, Returns: !trailingSemicolon}}, nil
}

// parseIf parses `if <cond> <block>` and its optional `else <block-or-if>`
// tail. Unlike let/return/call, if is not driven by an Operator token, so
// it is recognized up front by its leading keyword rather than by
// precedence.
func parseIf(tokens []Token) (*Expr, error) {
	idx := tokens[0].Idx
	rest := tokens[1:]

	blockPos := -1
	for i, tok := range rest {
		if tok.Kind == KindBlock {
			blockPos = i
			break
		}
	}
	if blockPos < 0 {
		return nil, &ParseError{Idx: idx, Kind: ExpectedExpression}
	}

	cond, err := ParseExpression(rest[:blockPos])
	if err != nil {
		return nil, err
	}
	then, err := parseBlock(rest[blockPos].Idx, rest[blockPos].Group)
	if err != nil {
		return nil, err
	}

	tail := rest[blockPos+1:]
	if len(tail) == 0 {
		return &Expr{Idx: idx, Node: If{Cond: cond, Then: then}}, nil
	}
	if tail[0].Kind != KindKeyword || tail[0].Keyword != KwElse {
		return nil, &ParseError{Idx: tail[0].Idx, Kind: ExpectedElse}
	}
	if len(tail) < 2 {
		return nil, &ParseError{Idx: tail[0].Idx, Kind: ExpectedElse}
	}
	var els *Expr
	switch tail[1].Kind {
	case KindBlock:
		els, err = parseBlock(tail[1].Idx, tail[1].Group)
	case KindKeyword:
		if tail[1].Keyword != KwIf {
			return nil, &ParseError{Idx: tail[1].Idx, Kind: ExpectedElse}
		}
		els, err = parseIf(tail[1:])
	default:
		return nil, &ParseError{Idx: tail[1].Idx, Kind: ExpectedElse}
	}
	if err != nil {
		return nil, err
	}
	return &Expr{Idx: idx, Node: If{Cond: cond, Then: then, Els: els}}, nil
}
