package scoring

import (
	"context"
	"math/rand/v2"

	"github.com/hupe1980/qsql/cluster"
)

// SparseNoise is the standard deviation of the noise around 1/n.
const SparseNoise = 0.01

// Sparse scores a batch with seeded noise around the uniform distribution.
//
// It is the fallback used when a query is too large to simulate. Field
// values are still validated so malformed rows fail the same way in every
// mode, but they do not influence the scores.
type Sparse struct {
	plan *Plan
	seed uint64
}

// Mode returns ModeSparse.
func (*Sparse) Mode() Mode { return ModeSparse }

// Score returns 1/n + N(0, SparseNoise²) per row, clipped to [0, 1] and
// normalized to sum to 1 within the batch. The stream is derived from the
// seed and the batch ID.
func (s *Sparse) Score(ctx context.Context, b cluster.Batch) ([]float64, error) {
	var truth []bool
	var err error
	for i, row := range b.Rows {
		if err := checkContext(ctx, i); err != nil {
			return nil, err
		}
		if truth, err = s.plan.Literals(row, truth); err != nil {
			return nil, &RowError{Row: b.Offset + i, Err: err}
		}
	}

	n := b.Len()
	out := make([]float64, n)
	if n == 0 {
		return out, nil
	}

	rng := rand.New(rand.NewPCG(s.seed, uint64(b.ID)))
	base := 1 / float64(n)

	var sum float64
	for i := range out {
		out[i] = clamp01(base + rng.NormFloat64()*SparseNoise)
		sum += out[i]
	}

	if sum == 0 {
		for i := range out {
			out[i] = base
		}
		return out, nil
	}

	for i := range out {
		out[i] /= sum
	}
	return out, nil
}
