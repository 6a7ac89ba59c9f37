package qsql

import (
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/qsql/cluster"
	"github.com/hupe1980/qsql/expr"
	"github.com/hupe1980/qsql/scoring"
	"github.com/hupe1980/qsql/table"
)

// Result is the outcome of one query.
type Result struct {
	// Scores holds one normalized score per input row, in input order.
	Scores []float64
	// Indices lists the matched row positions in ascending order.
	Indices []int
	// Matched holds the input rows at Indices, in the same order.
	Matched []table.Row
	// Hits lists the rows the condition accepts classically. It is only
	// populated in deterministic mode.
	Hits []int
	// Threshold is the score at or above which a row matches.
	Threshold float64
	Mean      float64
	StdDev    float64
	// Mode is the scoring mode that produced the scores.
	Mode scoring.Mode
	// Batches is the number of batches the rows were split into.
	Batches int
	// Expr is the parsed condition in canonical form.
	Expr string
	// Normalized is the condition after normalization.
	Normalized string
	// Dropped lists characters the tokenizer skipped.
	Dropped []expr.Dropped
	// Elapsed is the wall time of the query.
	Elapsed time.Duration

	matches *roaring.Bitmap
}

func newResult(rows []table.Row, agg *cluster.Aggregate, hits []int, mode scoring.Mode, batches int, e *expr.Expression) *Result {
	indices := agg.Indices()
	matched := make([]table.Row, len(indices))
	for i, idx := range indices {
		matched[i] = rows[idx]
	}

	return &Result{
		Scores:     agg.Scores,
		Indices:    indices,
		Matched:    matched,
		Hits:       hits,
		Threshold:  agg.Threshold,
		Mean:       agg.Mean,
		StdDev:     agg.StdDev,
		Mode:       mode,
		Batches:    batches,
		Expr:       e.Root.String(),
		Normalized: e.Normalized,
		Dropped:    e.Dropped,
		matches:    agg.Matches,
	}
}

// Len returns the number of scored rows.
func (r *Result) Len() int { return len(r.Scores) }

// Matches reports whether row i matched.
func (r *Result) Matches(i int) bool {
	if i < 0 || r.matches == nil {
		return false
	}
	return r.matches.Contains(uint32(i))
}

// MatchSet returns a copy of the matched row positions as a bitmap.
func (r *Result) MatchSet() *roaring.Bitmap {
	if r.matches == nil {
		return roaring.New()
	}
	return r.matches.Clone()
}
