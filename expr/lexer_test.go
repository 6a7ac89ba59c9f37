package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func texts(toks []Token) []string {
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.Text
	}
	return out
}

func TestTokenize(t *testing.T) {
	toks, dropped := Tokenize("(bp >= 100 and bp < 130.5) or not active")
	require.Empty(t, dropped)
	assert.Equal(t, []string{"(", "bp", ">=", "100", "and", "bp", "<", "130.5", ")", "or", "not", "active"}, texts(toks))

	assert.Equal(t, TokenLParen, toks[0].Kind)
	assert.Equal(t, TokenIdent, toks[1].Kind)
	assert.Equal(t, TokenOperator, toks[2].Kind)
	assert.Equal(t, TokenNumber, toks[3].Kind)
	assert.Equal(t, 4, toks[2].Pos)
	assert.Equal(t, 7, toks[3].Pos)
}

func TestTokenizeOperators(t *testing.T) {
	toks, _ := Tokenize("a<=1 b>=2 c==3 d!=4 e<5 f>6")
	assert.Equal(t, []string{"a", "<=", "1", "b", ">=", "2", "c", "==", "3", "d", "!=", "4", "e", "<", "5", "f", ">", "6"}, texts(toks))
}

func TestTokenizeNegativeLiteral(t *testing.T) {
	toks, dropped := Tokenize("t > -4.5")
	require.Empty(t, dropped)
	assert.Equal(t, []string{"t", ">", "-4.5"}, texts(toks))
	assert.Equal(t, TokenNumber, toks[2].Kind)
}

func TestTokenizeDropsUnknown(t *testing.T) {
	toks, dropped := Tokenize("bp > 100 $ and # x = 1")
	assert.Equal(t, []string{"bp", ">", "100", "and", "x", "1"}, texts(toks))
	require.Len(t, dropped, 3)
	assert.Equal(t, '$', dropped[0].Char)
	assert.Equal(t, '#', dropped[1].Char)
	assert.Equal(t, '=', dropped[2].Char)
}
