// Package qsql evaluates SQL-like filter conditions over tabular rows and
// returns a probability-style score per row instead of a plain boolean.
//
// # Quick Start
//
//	eng, _ := qsql.New([]string{"name", "bp", "diabetic"})
//	defer eng.Close()
//
//	res, err := eng.RunQuery(ctx, rows, "bp > 100 and diabetic")
//	for i, row := range res.Matched {
//	    fmt.Println(row, res.Scores[res.Indices[i]])
//	}
//
// # Conditions
//
// Conditions combine comparisons (`bp >= 120`), boolean columns
// (`diabetic`) and `between` ranges with `not`, `and` and `or`; `not`
// binds tightest and `or` loosest. Keywords are case-insensitive.
//
// # Scoring
//
// Rows are split into at most eight contiguous batches scored in parallel
// by one of the modes in package scoring. The per-row scores are merged in
// input order, normalized to sum to one, and every row scoring at least
// mean + one standard deviation is reported as a match.
//
// By default the mode is chosen per query: queries small enough to
// simulate exactly run a per-row circuit (using accelerated kernels when
// the CPU supports them) and larger ones use a seeded sparse fallback.
// WithMode pins a mode, e.g. scoring.ModeDeterministic for plain
// boolean evaluation.
//
// # Errors
//
// Failures are reported as *ParseError, *SchemaError, *InputError or
// *ResourceError, which match ErrParse, ErrSchema, ErrInput and
// ErrResource with errors.Is.
package qsql
