package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"Between", "bp BETWEEN 100 AND 130", "(bp >= 100 and bp <= 130)"},
		{"BetweenMixedCase", "bp Between 1.5 aNd 2", "(bp >= 1.5 and bp <= 2)"},
		{"BetweenNegative", "t between -5 and 5", "(t >= -5 and t <= 5)"},
		{"Keywords", "a > 1 AND NOT b OR c", "a > 1 and not b or c"},
		{"Whitespace", "  a   >\t1\n and b  ", "a > 1 and b"},
		{"SloppyOperators", "a >== 1 and b <=== 2", "a >= 1 and b <= 2"},
		{"PassThrough", "bp > 100", "bp > 100"},
		{"KeywordInsideIdent", "ANDROID > 1", "ANDROID > 1"},
		{"QConnectives", "(bp > 100 QAND bp < 130) QOR (bp == 95)", "(bp > 100 and bp < 130) or (bp == 95)"},
		{"QNot", "qnot a QAnd b", "not a and b"},
		{"BetweenQAnd", "bp between 1 QAND 2", "(bp >= 1 and bp <= 2)"},
		{"QInsideIdent", "QANDX > 1 and XQOR < 2", "QANDX > 1 and XQOR < 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"bp BETWEEN 100 AND 130 OR x between 1 and 2",
		"a >=== 1",
		"NOT (a > 1 AND b < 2)",
		"QNOT (a > 1 QAND b < 2) QOR c",
		"  spaced    out   ",
		"weird $$ chars ## here",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}
