package scoring

import (
	"context"

	"github.com/hupe1980/qsql/cluster"
)

// Deterministic scores 1 for accepted rows and 0 for rejected ones.
type Deterministic struct {
	plan *Plan
}

// Mode returns ModeDeterministic.
func (*Deterministic) Mode() Mode { return ModeDeterministic }

// Score evaluates the filter on every row of b.
func (d *Deterministic) Score(ctx context.Context, b cluster.Batch) ([]float64, error) {
	out := make([]float64, b.Len())
	for i, row := range b.Rows {
		if err := checkContext(ctx, i); err != nil {
			return nil, err
		}
		ok, err := d.plan.Eval(row)
		if err != nil {
			return nil, &RowError{Row: b.Offset + i, Err: err}
		}
		if ok {
			out[i] = 1
		}
	}
	return out, nil
}
