package expr

import "unicode/utf8"

// TokenKind classifies a lexical token.
type TokenKind uint8

const (
	// TokenLParen is "(".
	TokenLParen TokenKind = iota
	// TokenRParen is ")".
	TokenRParen
	// TokenIdent is an identifier or keyword.
	TokenIdent
	// TokenOperator is a comparison operator.
	TokenOperator
	// TokenNumber is an integer or decimal literal.
	TokenNumber
)

// String returns the token kind name.
func (k TokenKind) String() string {
	switch k {
	case TokenLParen:
		return "("
	case TokenRParen:
		return ")"
	case TokenIdent:
		return "identifier"
	case TokenOperator:
		return "operator"
	case TokenNumber:
		return "number"
	default:
		return "unknown"
	}
}

// Token is a lexical token with its byte offset in the input.
type Token struct {
	Kind TokenKind
	Text string
	Pos  int
}

// Dropped is an input character that matched no token class.
type Dropped struct {
	Char rune
	Pos  int
}

// Tokenize splits a normalized expression into tokens.
//
// Characters that fit no token class are skipped and reported in the
// second return value; the token stream itself never contains them.
// Two-character operators are matched before one-character ones, so
// "<=" is never split. A '-' directly in front of a digit is part of the
// number when the previous token is an operator.
func Tokenize(s string) ([]Token, []Dropped) {
	var (
		toks    []Token
		dropped []Dropped
	)

	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			toks = append(toks, Token{Kind: TokenLParen, Text: "(", Pos: i})
			i++
		case c == ')':
			toks = append(toks, Token{Kind: TokenRParen, Text: ")", Pos: i})
			i++
		case isIdentStart(c):
			start := i
			for i < len(s) && isIdentPart(s[i]) {
				i++
			}
			toks = append(toks, Token{Kind: TokenIdent, Text: s[start:i], Pos: start})
		case isDigit(c):
			end := scanNumber(s, i)
			toks = append(toks, Token{Kind: TokenNumber, Text: s[i:end], Pos: i})
			i = end
		case c == '-' && i+1 < len(s) && isDigit(s[i+1]) && lastIs(toks, TokenOperator):
			end := scanNumber(s, i+1)
			toks = append(toks, Token{Kind: TokenNumber, Text: s[i:end], Pos: i})
			i = end
		case i+1 < len(s) && s[i+1] == '=' && (c == '<' || c == '>' || c == '!' || c == '='):
			toks = append(toks, Token{Kind: TokenOperator, Text: s[i : i+2], Pos: i})
			i += 2
		case c == '<' || c == '>':
			toks = append(toks, Token{Kind: TokenOperator, Text: s[i : i+1], Pos: i})
			i++
		default:
			r, size := utf8.DecodeRuneInString(s[i:])
			dropped = append(dropped, Dropped{Char: r, Pos: i})
			i += size
		}
	}

	return toks, dropped
}

// scanNumber returns the end offset of \d+(\.\d+)? starting at i.
func scanNumber(s string, i int) int {
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i+1 < len(s) && s[i] == '.' && isDigit(s[i+1]) {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
		}
	}
	return i
}

func lastIs(toks []Token, kind TokenKind) bool {
	return len(toks) > 0 && toks[len(toks)-1].Kind == kind
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
