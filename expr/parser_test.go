package expr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"Comparison", "bp > 100", "(CMP bp > 100)"},
		{"Var", "Active", "(VAR active)"},
		{"AndBindsTighterThanOr", "a > 1 or b > 2 and c > 3", "(OR (CMP a > 1) (AND (CMP b > 2) (CMP c > 3)))"},
		{"NotBindsTighterThanAnd", "not a and b", "(AND (NOT (VAR a)) (VAR b))"},
		{"LeftAssociativeAnd", "a and b and c", "(AND (AND (VAR a) (VAR b)) (VAR c))"},
		{"LeftAssociativeOr", "a or b or c", "(OR (OR (VAR a) (VAR b)) (VAR c))"},
		{"Parentheses", "(a or b) and c", "(AND (OR (VAR a) (VAR b)) (VAR c))"},
		{"Between", "bp BETWEEN 100 AND 130", "(AND (CMP bp >= 100) (CMP bp <= 130))"},
		{"Decimal", "x <= 2.25", "(CMP x <= 2.25)"},
		{"Negative", "x != -3", "(CMP x != -3)"},
		{"DoubleNot", "not not a", "(NOT (NOT (VAR a)))"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := ParseString(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, Dump(n))
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		token string
	}{
		{"Empty", "", ""},
		{"OnlySpaces", "   ", ""},
		{"DanglingAnd", "a > 1 and", ""},
		{"UnmatchedOpen", "(a > 1", "("},
		{"UnmatchedClose", "a > 1)", ")"},
		{"OperatorWithoutLeft", "> 100", ">"},
		{"DoubledOperator", "bp >> 100", ">"},
		{"MissingLiteral", "bp >", ""},
		{"IdentAsLiteral", "bp > x", "x"},
		{"LeadingConnective", "and a", "and"},
		{"TrailingTokens", "a b", "b"},
		{"BareLiteral", "100", "100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(tt.in)
			require.Error(t, err)

			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.token, pe.Token)
		})
	}
}

func TestParseEmptyWrapsSentinel(t *testing.T) {
	_, err := ParseString("")
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestCompileStrict(t *testing.T) {
	e, err := Compile("bp > 100 $", false)
	require.NoError(t, err)
	require.Len(t, e.Dropped, 1)
	assert.Equal(t, "bp > 100 $", e.Normalized)

	_, err = Compile("bp > 100 $", true)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "$", pe.Token)
	assert.Equal(t, 9, pe.Pos)
}

func TestLeaves(t *testing.T) {
	n, err := ParseString("a > 1 and not (b < 2 or flag) or not not c == 3")
	require.NoError(t, err)

	leaves := Leaves(n)
	require.Len(t, leaves, 4)

	assert.Equal(t, "a", leaves[0].Column())
	assert.False(t, leaves[0].Negated)
	assert.Equal(t, "b", leaves[1].Column())
	assert.True(t, leaves[1].Negated)
	assert.Equal(t, "flag", leaves[2].Column())
	assert.True(t, leaves[2].Negated)
	assert.Equal(t, "c", leaves[3].Column())
	assert.False(t, leaves[3].Negated)

	assert.Equal(t, []string{"a", "b", "flag", "c"}, Columns(n))
}

func TestNodeString(t *testing.T) {
	n, err := ParseString("(a > 1 OR b) AND NOT c <= 2.5")
	require.NoError(t, err)
	assert.Equal(t, "(a > 1 or b) and not c <= 2.5", n.String())

	again, err := ParseString(n.String())
	require.NoError(t, err)
	assert.Equal(t, Dump(n), Dump(again))
}
