package expr

import (
	"strconv"
	"strings"
)

// Lookup resolves the raw field value of a column for the row being
// evaluated.
type Lookup func(column string) (string, error)

// Eval evaluates n classically.
//
// Both operands of AND and OR are always evaluated, so a malformed field
// is reported no matter where it appears in the tree.
func Eval(n Node, lookup Lookup) (bool, error) {
	switch t := n.(type) {
	case *Var, *Cmp:
		return Test(t, lookup)
	case *Not:
		v, err := Eval(t.X, lookup)
		if err != nil {
			return false, err
		}
		return !v, nil
	case *And:
		l, err := Eval(t.Left, lookup)
		if err != nil {
			return false, err
		}
		r, err := Eval(t.Right, lookup)
		if err != nil {
			return false, err
		}
		return l && r, nil
	case *Or:
		l, err := Eval(t.Left, lookup)
		if err != nil {
			return false, err
		}
		r, err := Eval(t.Right, lookup)
		if err != nil {
			return false, err
		}
		return l || r, nil
	default:
		return false, nil
	}
}

// Test evaluates a single VAR or CMP node. Other node kinds report false.
func Test(n Node, lookup Lookup) (bool, error) {
	switch t := n.(type) {
	case *Var:
		raw, err := lookup(t.Column)
		if err != nil {
			return false, err
		}
		return ParseTruth(t.Column, raw)
	case *Cmp:
		raw, err := lookup(t.Column)
		if err != nil {
			return false, err
		}
		v, err := ParseNumber(t.Column, raw)
		if err != nil {
			return false, err
		}
		return t.Op.Compare(v, t.Literal), nil
	default:
		return false, nil
	}
}

// Literal evaluates a leaf with its polarity applied: the result is the
// leaf's classical outcome, inverted when the leaf is negated.
func Literal(l Leaf, lookup Lookup) (bool, error) {
	v, err := Test(l.Node, lookup)
	if err != nil {
		return false, err
	}
	return v != l.Negated, nil
}

// ParseNumber reads a field as float64.
func ParseNumber(column, raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, &ValueError{Column: column, Value: raw, Want: "number", cause: err}
	}
	return v, nil
}

// ParseTruth reads a field as a boolean. Besides the strconv.ParseBool
// forms it accepts yes/no and treats any other number as true when
// non-zero.
func ParseTruth(column, raw string) (bool, error) {
	s := strings.TrimSpace(raw)
	if b, err := strconv.ParseBool(s); err == nil {
		return b, nil
	}
	switch strings.ToLower(s) {
	case "yes", "y":
		return true, nil
	case "no", "n":
		return false, nil
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v != 0, nil
	}
	return false, &ValueError{Column: column, Value: raw, Want: "boolean"}
}
