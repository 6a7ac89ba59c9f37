package expr

import (
	"fmt"
	"strconv"
	"strings"
)

// Expression is a compiled filter.
type Expression struct {
	// Raw is the condition as supplied by the caller.
	Raw string
	// Normalized is the canonical text produced by Normalize. Token and
	// error offsets refer to this string.
	Normalized string
	// Root is the parsed tree.
	Root Node
	// Dropped lists characters the tokenizer skipped.
	Dropped []Dropped
}

// Compile normalizes, tokenizes and parses raw.
//
// When strict is set, any character the tokenizer would skip is reported
// as a ParseError instead of being ignored.
func Compile(raw string, strict bool) (*Expression, error) {
	norm := Normalize(raw)
	toks, dropped := Tokenize(norm)
	if strict && len(dropped) > 0 {
		d := dropped[0]
		return nil, &ParseError{Pos: d.Pos, Token: string(d.Char), Msg: "unrecognized character"}
	}

	root, err := Parse(toks)
	if err != nil {
		return nil, err
	}

	return &Expression{
		Raw:        raw,
		Normalized: norm,
		Root:       root,
		Dropped:    dropped,
	}, nil
}

// ParseString compiles s permissively and returns the tree.
func ParseString(s string) (Node, error) {
	e, err := Compile(s, false)
	if err != nil {
		return nil, err
	}
	return e.Root, nil
}

// Parse builds a tree from a token sequence.
//
// Precedence is NOT > AND > OR; AND and OR associate to the left. The whole
// sequence must be consumed.
func Parse(toks []Token) (Node, error) {
	if len(toks) == 0 {
		return nil, &ParseError{Pos: 0, Msg: "empty expression", cause: ErrEmpty}
	}

	p := &parser{toks: toks}
	n, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	if tok, ok := p.peek(); ok {
		if tok.Kind == TokenRParen {
			return nil, p.errorAt(tok, "unmatched ')'")
		}
		return nil, p.errorAt(tok, "unexpected token")
	}

	return n, nil
}

type parser struct {
	toks []Token
	pos  int
}

func (p *parser) peek() (Token, bool) {
	if p.pos >= len(p.toks) {
		return Token{}, false
	}
	return p.toks[p.pos], true
}

func (p *parser) next() (Token, bool) {
	tok, ok := p.peek()
	if ok {
		p.pos++
	}
	return tok, ok
}

func (p *parser) peekKeyword(kw string) bool {
	tok, ok := p.peek()
	return ok && tok.Kind == TokenIdent && strings.EqualFold(tok.Text, kw)
}

func (p *parser) errorAt(tok Token, msg string) *ParseError {
	return &ParseError{Pos: tok.Pos, Token: tok.Text, Msg: msg}
}

// errorEOF reports an expression that ended early, positioned just past
// the last token.
func (p *parser) errorEOF(msg string) *ParseError {
	last := p.toks[len(p.toks)-1]
	return &ParseError{Pos: last.Pos + len(last.Text), Msg: msg}
}

func (p *parser) parseOr() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peekKeyword("or") {
		p.pos++
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &Or{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Node, error) {
	left, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for p.peekKeyword("and") {
		p.pos++
		right, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		left = &And{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAtom() (Node, error) {
	tok, ok := p.next()
	if !ok {
		return nil, p.errorEOF("unexpected end of expression")
	}

	switch tok.Kind {
	case TokenLParen:
		n, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		closing, ok := p.next()
		if !ok {
			return nil, p.errorAt(tok, "unmatched '('")
		}
		if closing.Kind != TokenRParen {
			return nil, p.errorAt(closing, "expected ')'")
		}
		return n, nil
	case TokenRParen:
		return nil, p.errorAt(tok, "unexpected ')'")
	case TokenOperator:
		return nil, p.errorAt(tok, "operator without left operand")
	case TokenNumber:
		return nil, p.errorAt(tok, "literal without column")
	}

	switch strings.ToLower(tok.Text) {
	case "not":
		x, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		return &Not{X: x}, nil
	case "and", "or":
		return nil, p.errorAt(tok, "connective without left operand")
	}

	column := strings.ToLower(tok.Text)
	opTok, ok := p.peek()
	if !ok || opTok.Kind != TokenOperator {
		return &Var{Column: column}, nil
	}
	p.pos++

	op, ok := ParseOperator(opTok.Text)
	if !ok {
		return nil, p.errorAt(opTok, "unknown operator")
	}

	lit, ok := p.next()
	if !ok {
		return nil, p.errorEOF(fmt.Sprintf("expected number after %q", opTok.Text))
	}
	if lit.Kind != TokenNumber {
		return nil, p.errorAt(lit, fmt.Sprintf("expected number after %q", opTok.Text))
	}
	v, err := strconv.ParseFloat(lit.Text, 64)
	if err != nil {
		return nil, &ParseError{Pos: lit.Pos, Token: lit.Text, Msg: "invalid number", cause: err}
	}

	return &Cmp{Column: column, Op: op, Literal: v}, nil
}
