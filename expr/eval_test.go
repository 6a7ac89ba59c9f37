package expr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapLookup(m map[string]string) Lookup {
	return func(column string) (string, error) {
		v, ok := m[column]
		if !ok {
			return "", fmt.Errorf("no column %q", column)
		}
		return v, nil
	}
}

func TestEval(t *testing.T) {
	row := mapLookup(map[string]string{"bp": "120", "active": "yes", "score": "0.5"})

	tests := []struct {
		in   string
		want bool
	}{
		{"bp > 100 and bp < 130", true},
		{"bp > 100 and bp < 110", false},
		{"bp BETWEEN 120 AND 120", true},
		{"bp == 120", true},
		{"bp != 120", false},
		{"active", true},
		{"not active or score >= 0.5", true},
		{"not (active and bp > 200)", true},
		{"score < 0.25 or bp <= 119", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			n, err := ParseString(tt.in)
			require.NoError(t, err)
			got, err := Eval(n, row)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvalValueError(t *testing.T) {
	row := mapLookup(map[string]string{"bp": "high", "ok": "1"})

	// The malformed field sits in the right operand of a true OR.
	n, err := ParseString("ok or bp > 100")
	require.NoError(t, err)

	_, err = Eval(n, row)
	var ve *ValueError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "bp", ve.Column)
	assert.Equal(t, "high", ve.Value)
	assert.Equal(t, "number", ve.Want)
}

func TestLiteral(t *testing.T) {
	row := mapLookup(map[string]string{"bp": "95"})
	n, err := ParseString("not bp > 100")
	require.NoError(t, err)

	leaves := Leaves(n)
	require.Len(t, leaves, 1)

	v, err := Literal(leaves[0], row)
	require.NoError(t, err)
	assert.True(t, v)
}

func TestParseTruth(t *testing.T) {
	for _, s := range []string{"true", "TRUE", "1", "t", "yes", "Y", "2.5"} {
		v, err := ParseTruth("c", s)
		require.NoError(t, err, s)
		assert.True(t, v, s)
	}
	for _, s := range []string{"false", "0", "f", "no", "N", "0.0"} {
		v, err := ParseTruth("c", s)
		require.NoError(t, err, s)
		assert.False(t, v, s)
	}
	_, err := ParseTruth("c", "maybe")
	assert.Error(t, err)
}

func TestOperatorCompare(t *testing.T) {
	assert.True(t, OpLess.Compare(1, 2))
	assert.True(t, OpGreater.Compare(2, 1))
	assert.True(t, OpLessEqual.Compare(2, 2))
	assert.True(t, OpGreaterEqual.Compare(2, 2))
	assert.True(t, OpEqual.Compare(2, 2))
	assert.True(t, OpNotEqual.Compare(2, 3))

	op, ok := ParseOperator("!=")
	require.True(t, ok)
	assert.Equal(t, OpNotEqual, op)
	_, ok = ParseOperator(">>")
	assert.False(t, ok)
}
