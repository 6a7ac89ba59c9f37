package cluster

import (
	"math"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
)

// Aggregate is the merged, normalized score distribution of a query.
type Aggregate struct {
	// Scores holds one normalized score per input row.
	Scores []float64
	// Mass is the total raw score before normalization.
	Mass float64
	// Mean and StdDev are the population statistics of Scores.
	Mean   float64
	StdDev float64
	// Threshold is Mean+StdDev, or +Inf when Mass is zero.
	Threshold float64
	// Matches contains every row index whose score is >= Threshold.
	Matches *roaring.Bitmap
}

// Merge concatenates per-batch scores in batch ID order into a vector of
// exactly n entries and selects every row at or above mean + stddev.
//
// The vector is truncated or zero-padded to n and divided by its sum. When
// all scores are identical the threshold equals that value and every row
// matches. A vector with zero mass stays all zeros and matches nothing.
func Merge(results []Result, n int) *Aggregate {
	sorted := slices.Clone(results)
	slices.SortFunc(sorted, func(a, b Result) int { return a.ID - b.ID })

	scores := make([]float64, 0, n)
	for _, r := range sorted {
		scores = append(scores, r.Scores...)
	}
	if len(scores) > n {
		scores = scores[:n]
	}
	for len(scores) < n {
		scores = append(scores, 0)
	}

	agg := &Aggregate{Scores: scores, Matches: roaring.New()}

	for _, s := range scores {
		agg.Mass += s
	}

	if n == 0 || agg.Mass <= 0 {
		agg.Threshold = math.Inf(1)
		return agg
	}

	for i := range scores {
		scores[i] /= agg.Mass
	}

	lo, hi := slices.Min(scores), slices.Max(scores)
	if lo == hi {
		agg.Mean = lo
		agg.Threshold = lo
	} else {
		var sum float64
		for _, s := range scores {
			sum += s
		}
		agg.Mean = sum / float64(n)

		var ss float64
		for _, s := range scores {
			d := s - agg.Mean
			ss += d * d
		}
		agg.StdDev = math.Sqrt(ss / float64(n))
		agg.Threshold = agg.Mean + agg.StdDev
	}

	for i, s := range scores {
		if s >= agg.Threshold {
			agg.Matches.Add(uint32(i))
		}
	}

	return agg
}

// Indices returns the matched row indices in ascending order.
func (a *Aggregate) Indices() []int {
	out := make([]int, 0, a.Matches.GetCardinality())
	it := a.Matches.Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}
