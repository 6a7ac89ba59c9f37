package scoring

import (
	"context"
	"math/bits"
	"math/cmplx"

	"github.com/hupe1980/qsql/cluster"
	"github.com/hupe1980/qsql/internal/circuit"
	"github.com/hupe1980/qsql/resource"
)

// Accelerated computes the Statevector circuit with fused kernels.
//
// The Z gates and the coupling chain are diagonal, so they collapse into
// one pass over the amplitudes. Rows with the same literal pattern share a
// score, which is cached for the duration of a batch.
type Accelerated struct {
	plan   *Plan
	rc     *resource.Controller
	phases []complex128
}

func newAccelerated(plan *Plan, rc *resource.Controller) *Accelerated {
	// phases[k] is the accumulated coupling phase of k adjacent 1-pairs.
	phases := make([]complex128, max(1, plan.Units()))
	for k := range phases {
		phases[k] = cmplx.Exp(complex(0, Coupling*float64(k)))
	}
	return &Accelerated{plan: plan, rc: rc, phases: phases}
}

// Mode returns ModeAccelerated.
func (*Accelerated) Mode() Mode { return ModeAccelerated }

// Score runs the fused circuit once per distinct literal pattern in b.
func (a *Accelerated) Score(ctx context.Context, b cluster.Batch) ([]float64, error) {
	units := a.plan.Units()
	bytes := circuit.AmplitudeBytes(units)
	if err := a.rc.AcquireMemory(ctx, bytes); err != nil {
		return nil, err
	}
	defer a.rc.ReleaseMemory(bytes)

	st, err := circuit.New(units)
	if err != nil {
		return nil, err
	}

	memo := make(map[uint32]float64)
	out := make([]float64, b.Len())
	for i, row := range b.Rows {
		if err := checkContext(ctx, i); err != nil {
			return nil, err
		}
		pattern, err := a.plan.Pattern(row)
		if err != nil {
			return nil, &RowError{Row: b.Offset + i, Err: err}
		}
		v, ok := memo[pattern]
		if !ok {
			v = a.run(st, pattern)
			memo[pattern] = v
		}
		out[i] = v
	}
	return out, nil
}

func (a *Accelerated) run(st *circuit.State, pattern uint32) float64 {
	st.Uniform()
	st.MulDiagonal(func(x int) complex128 {
		u := uint32(x)
		phase := a.phases[bits.OnesCount32(u&(u>>1))]
		if bits.OnesCount32(u&pattern)&1 == 1 {
			return -phase
		}
		return phase
	})
	st.HAllUnrolled()
	return clamp01(st.MeanProbOne())
}
