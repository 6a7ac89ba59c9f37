// Package expr implements the filter language accepted by qsql.
//
// A filter string flows through three stages:
//
//	s := expr.Normalize("bp BETWEEN 100 AND 130 OR NOT flagged")
//	toks, _ := expr.Tokenize(s)
//	node, err := expr.Parse(toks)
//
// ParseString runs all three in one call.
//
// # Grammar
//
//	or_expr    := and_expr ("or" and_expr)*
//	and_expr   := atom ("and" atom)*
//	atom       := "not" atom | "(" or_expr ")" | comparison | identifier
//	comparison := identifier cmp_op number
//	cmp_op     := "<=" | ">=" | "==" | "!=" | "<" | ">"
//
// Keywords are case-insensitive. "col BETWEEN a AND b" is sugar for
// "(col >= a and col <= b)" and is expanded by Normalize.
//
// # Evaluation
//
// Eval interprets a tree classically against a row lookup. Leaves lists the
// leaf tests of a tree in source order, which is the unit layout used by the
// probabilistic scorers.
package expr
