package expr

import (
	"strconv"
	"strings"
)

// Kind identifies the concrete type of a Node.
type Kind uint8

const (
	// KindVar is a truthy test of a boolean column.
	KindVar Kind = iota
	// KindCmp is a comparison of a column against a numeric literal.
	KindCmp
	// KindNot negates its operand.
	KindNot
	// KindAnd is a logical conjunction.
	KindAnd
	// KindOr is a logical disjunction.
	KindOr
)

// String returns the node kind name.
func (k Kind) String() string {
	switch k {
	case KindVar:
		return "VAR"
	case KindCmp:
		return "CMP"
	case KindNot:
		return "NOT"
	case KindAnd:
		return "AND"
	case KindOr:
		return "OR"
	default:
		return "UNKNOWN"
	}
}

// Node is an expression tree node.
type Node interface {
	Kind() Kind
	String() string
}

// Operator is a comparison operator.
type Operator uint8

const (
	// OpLess is "<".
	OpLess Operator = iota
	// OpGreater is ">".
	OpGreater
	// OpLessEqual is "<=".
	OpLessEqual
	// OpGreaterEqual is ">=".
	OpGreaterEqual
	// OpEqual is "==".
	OpEqual
	// OpNotEqual is "!=".
	OpNotEqual
)

var operatorText = [...]string{
	OpLess:         "<",
	OpGreater:      ">",
	OpLessEqual:    "<=",
	OpGreaterEqual: ">=",
	OpEqual:        "==",
	OpNotEqual:     "!=",
}

// String returns the operator symbol.
func (op Operator) String() string {
	if int(op) < len(operatorText) {
		return operatorText[op]
	}
	return "?"
}

// ParseOperator maps a symbol to its Operator.
func ParseOperator(s string) (Operator, bool) {
	for i, text := range operatorText {
		if text == s {
			return Operator(i), true
		}
	}
	return 0, false
}

// Compare applies the operator to a and b.
func (op Operator) Compare(a, b float64) bool {
	switch op {
	case OpLess:
		return a < b
	case OpGreater:
		return a > b
	case OpLessEqual:
		return a <= b
	case OpGreaterEqual:
		return a >= b
	case OpEqual:
		return a == b
	case OpNotEqual:
		return a != b
	default:
		return false
	}
}

// Var tests a boolean column.
type Var struct {
	Column string
}

func (*Var) Kind() Kind { return KindVar }

func (v *Var) String() string { return v.Column }

// Cmp compares a column against a numeric literal.
type Cmp struct {
	Column  string
	Op      Operator
	Literal float64
}

func (*Cmp) Kind() Kind { return KindCmp }

func (c *Cmp) String() string {
	return c.Column + " " + c.Op.String() + " " + strconv.FormatFloat(c.Literal, 'g', -1, 64)
}

// Not negates X.
type Not struct {
	X Node
}

func (*Not) Kind() Kind { return KindNot }

func (n *Not) String() string { return "not " + wrap(n.X) }

// And is the conjunction of Left and Right.
type And struct {
	Left, Right Node
}

func (*And) Kind() Kind { return KindAnd }

func (a *And) String() string { return wrap(a.Left) + " and " + wrap(a.Right) }

// Or is the disjunction of Left and Right.
type Or struct {
	Left, Right Node
}

func (*Or) Kind() Kind { return KindOr }

func (o *Or) String() string { return wrap(o.Left) + " or " + wrap(o.Right) }

func wrap(n Node) string {
	switch n.Kind() {
	case KindAnd, KindOr:
		return "(" + n.String() + ")"
	default:
		return n.String()
	}
}

// Leaf is a VAR or CMP node together with its polarity in the tree.
type Leaf struct {
	Node Node
	// Negated is true when the leaf sits under an odd number of NOTs.
	Negated bool
}

// Column returns the column the leaf reads.
func (l Leaf) Column() string {
	switch n := l.Node.(type) {
	case *Var:
		return n.Column
	case *Cmp:
		return n.Column
	default:
		return ""
	}
}

// Leaves returns the leaf tests of n in left-to-right order.
func Leaves(n Node) []Leaf {
	var out []Leaf
	var walk func(Node, bool)
	walk = func(n Node, neg bool) {
		switch t := n.(type) {
		case *Var, *Cmp:
			out = append(out, Leaf{Node: t, Negated: neg})
		case *Not:
			walk(t.X, !neg)
		case *And:
			walk(t.Left, neg)
			walk(t.Right, neg)
		case *Or:
			walk(t.Left, neg)
			walk(t.Right, neg)
		}
	}
	walk(n, false)
	return out
}

// Columns returns the distinct columns referenced by n, in first-use order.
func Columns(n Node) []string {
	seen := make(map[string]struct{})
	var cols []string
	for _, l := range Leaves(n) {
		c := l.Column()
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		cols = append(cols, c)
	}
	return cols
}

// Dump renders n in prefix form, e.g. (AND (CMP bp > 100) (VAR active)).
func Dump(n Node) string {
	var b strings.Builder
	var walk func(Node)
	walk = func(n Node) {
		b.WriteByte('(')
		b.WriteString(n.Kind().String())
		switch t := n.(type) {
		case *Var:
			b.WriteByte(' ')
			b.WriteString(t.Column)
		case *Cmp:
			b.WriteByte(' ')
			b.WriteString(t.String())
		case *Not:
			b.WriteByte(' ')
			walk(t.X)
		case *And:
			b.WriteByte(' ')
			walk(t.Left)
			b.WriteByte(' ')
			walk(t.Right)
		case *Or:
			b.WriteByte(' ')
			walk(t.Left)
			b.WriteByte(' ')
			walk(t.Right)
		}
		b.WriteByte(')')
	}
	walk(n)
	return b.String()
}
