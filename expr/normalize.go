package expr

import (
	"regexp"
	"strings"
)

var (
	betweenRe   = regexp.MustCompile(`(?i)\b([A-Za-z_]\w*)\s+BETWEEN\s+(-?\d+(?:\.\d+)?)\s+Q?AND\s+(-?\d+(?:\.\d+)?)`)
	andRe       = regexp.MustCompile(`(?i)\bQ?AND\b`)
	orRe        = regexp.MustCompile(`(?i)\bQ?OR\b`)
	notRe       = regexp.MustCompile(`(?i)\bQ?NOT\b`)
	sloppyCmpRe = regexp.MustCompile(`([<>])==+`)
	spaceRe     = regexp.MustCompile(`\s+`)
)

// Normalize rewrites a raw condition into canonical form.
//
// BETWEEN is expanded into a parenthesized range test, the connectives and
// their QAND, QOR and QNOT spellings become "and", "or" and "not",
// ">==" and "<==" become ">=" and "<=", and runs of whitespace
// collapse to a single space. Text that matches none of these passes
// through unchanged apart from whitespace. Normalize is idempotent.
func Normalize(s string) string {
	s = spaceRe.ReplaceAllString(strings.TrimSpace(s), " ")
	s = betweenRe.ReplaceAllString(s, "(${1} >= ${2} and ${1} <= ${3})")
	s = andRe.ReplaceAllString(s, "and")
	s = orRe.ReplaceAllString(s, "or")
	s = notRe.ReplaceAllString(s, "not")
	s = sloppyCmpRe.ReplaceAllString(s, "${1}=")
	return s
}
