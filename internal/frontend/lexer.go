package frontend

import (
	"strconv"
	"unicode"
)

// Tokenize scans input into a flat token stream using a single
// character-class dispatch loop with hand-written
// readName/readNumber/readString/readParens helpers.
// offset is added to every reported Idx so that nested Tokenize calls (for
// parenthesized/braced groups) still report byte positions relative to the
// whole source file.
func Tokenize(input string, offset int) ([]Token, error) {
	runes := []rune(input)
	var out []Token
	i := 0
	shouldCall := false

	for i < len(runes) {
		c := runes[i]
		switch {
		case unicode.IsLetter(c) || c == '_':
			tok := readName(runes, &i, offset)
			out = append(out, tok)
			shouldCall = true
		case c == '.':
			out = append(out, Token{Idx: offset + i, Kind: KindOperator, Op: OpDot})
			i++
			shouldCall = false
		case c == '=':
			out = append(out, Token{Idx: offset + i, Kind: KindOperator, Op: OpAssign})
			i++
			shouldCall = false
		case c == ';':
			out = append(out, Token{Idx: offset + i, Kind: KindSemicolon})
			i++
			shouldCall = false
		case c == ':':
			out = append(out, Token{Idx: offset + i, Kind: KindColon})
			i++
			shouldCall = false
		case c == ',':
			out = append(out, Token{Idx: offset + i, Kind: KindComma})
			i++
			shouldCall = false
		case c == '(':
			if shouldCall {
				startIdx := offset + i
				group, err := readParens(runes, &i, offset, '(', ')')
				if err != nil {
					return nil, err
				}
				out = append(out, Token{Idx: startIdx, Kind: KindOperator, Op: OpCall, CallArgs: splitCallArgs(group)})
			} else {
				tok, err := readParensToken(runes, &i, offset, '(', ')', KindParens)
				if err != nil {
					return nil, err
				}
				out = append(out, tok)
			}
			shouldCall = true
		case c == '{':
			tok, err := readParensToken(runes, &i, offset, '{', '}', KindBlock)
			if err != nil {
				return nil, err
			}
			out = append(out, tok)
			shouldCall = true
		case c == '"':
			tok, err := readString(runes, &i, offset)
			if err != nil {
				return nil, err
			}
			out = append(out, tok)
			shouldCall = true
		case unicode.IsDigit(c):
			tok, err := readNumber(runes, &i, offset)
			if err != nil {
				return nil, err
			}
			out = append(out, tok)
			shouldCall = true
		case unicode.IsSpace(c):
			i++
		default:
			return nil, &TokenizeError{Idx: offset + i, Kind: ExpectedToken, Ch: c}
		}
	}

	return out, nil
}

// splitCallArgs turns the flat comma-separated token stream inside a call's
// parentheses into one token run per argument, dropping a single trailing
// empty run the way a trailing comma (or no arguments at all) would leave
// behind.
func splitCallArgs(group []Token) [][]Token {
	var args [][]Token
	var current []Token
	for _, tok := range group {
		if tok.Kind == KindComma {
			args = append(args, current)
			current = nil
			continue
		}
		current = append(current, tok)
	}
	args = append(args, current)
	if len(args) > 0 && len(args[len(args)-1]) == 0 {
		args = args[:len(args)-1]
	}
	return args
}

func readName(runes []rune, i *int, offset int) Token {
	start := *i
	for *i < len(runes) && (unicode.IsLetter(runes[*i]) || unicode.IsDigit(runes[*i]) || runes[*i] == '_') {
		*i++
	}
	name := string(runes[start:*i])
	if kw, ok := keywordText[name]; ok {
		return Token{Idx: offset + start, Kind: KindKeyword, Keyword: kw}
	}
	return Token{Idx: offset + start, Kind: KindName, Name: name}
}

func readNumber(runes []rune, i *int, offset int) (Token, error) {
	start := *i
	var digits []rune
	for *i < len(runes) && (unicode.IsDigit(runes[*i]) || runes[*i] == '_') {
		digits = append(digits, runes[*i])
		*i++
	}
	n, err := strconv.ParseUint(string(digits), 10, 8)
	if err != nil {
		return Token{}, &TokenizeError{Idx: offset + start, Kind: ExpectedNumber, Text: string(digits)}
	}
	return Token{Idx: offset + start, Kind: KindNumber, Num: byte(n)}, nil
}

func readString(runes []rune, i *int, offset int) (Token, error) {
	start := *i
	*i++
	var contents []rune
	for {
		if *i >= len(runes) {
			return Token{}, &TokenizeError{Idx: offset + start, Kind: UnclosedQuotes}
		}
		if runes[*i] == '"' {
			*i++
			return Token{Idx: offset + start, Kind: KindString, Str: string(contents)}, nil
		}
		contents = append(contents, runes[*i])
		*i++
	}
}

// readParens scans a balanced open/close group, recursively tokenizing its
// interior, and returns that interior token stream (used for call argument
// lists, where the caller still needs to split on commas).
func readParens(runes []rune, i *int, offset int, open, close rune) ([]Token, error) {
	start := *i
	var contents []rune
	depth := 0
	for {
		if *i >= len(runes) {
			return nil, &TokenizeError{Idx: offset + start, Kind: UnclosedParens}
		}
		c := runes[*i]
		switch {
		case c == open:
			depth++
			if depth != 1 {
				contents = append(contents, open)
			}
		case c == close:
			depth--
			if depth == 0 {
				*i++
				return Tokenize(string(contents), offset+start+1)
			}
			contents = append(contents, close)
		default:
			contents = append(contents, c)
		}
		*i++
	}
}

// readParensToken wraps readParens' result in a Parens/Block token.
func readParensToken(runes []rune, i *int, offset int, open, close rune, kind Kind) (Token, error) {
	start := *i
	group, err := readParens(runes, i, offset, open, close)
	if err != nil {
		return Token{}, err
	}
	return Token{Idx: offset + start, Kind: kind, Group: group}, nil
}
