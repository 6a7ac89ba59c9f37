package scoring

import (
	"context"
	"math"

	"github.com/hupe1980/qsql/cluster"
	"github.com/hupe1980/qsql/internal/circuit"
	"github.com/hupe1980/qsql/resource"
)

// Coupling is the controlled-phase angle between neighbouring units.
const Coupling = math.Pi / 4

// Statevector simulates the filter circuit of every row gate by gate.
//
// Each leaf owns one qubit. The circuit applies H to every qubit, Z to the
// qubits whose literal holds, a controlled phase of Coupling between each
// pair of neighbours, and H again. The row score is the mean probability
// of reading 1 across all qubits, which grows strictly with the number of
// satisfied literals.
type Statevector struct {
	plan *Plan
	rc   *resource.Controller
}

// Mode returns ModeStatevector.
func (*Statevector) Mode() Mode { return ModeStatevector }

// Score runs the circuit for every row of b.
func (s *Statevector) Score(ctx context.Context, b cluster.Batch) ([]float64, error) {
	units := s.plan.Units()
	bytes := circuit.AmplitudeBytes(units)
	if err := s.rc.AcquireMemory(ctx, bytes); err != nil {
		return nil, err
	}
	defer s.rc.ReleaseMemory(bytes)

	st, err := circuit.New(units)
	if err != nil {
		return nil, err
	}

	out := make([]float64, b.Len())
	var truth []bool
	for i, row := range b.Rows {
		if err := checkContext(ctx, i); err != nil {
			return nil, err
		}
		truth, err = s.plan.Literals(row, truth)
		if err != nil {
			return nil, &RowError{Row: b.Offset + i, Err: err}
		}
		out[i] = runCircuit(st, truth)
	}
	return out, nil
}

func runCircuit(st *circuit.State, truth []bool) float64 {
	st.Reset()
	st.HAll()
	for q, t := range truth {
		if t {
			st.Z(q)
		}
	}
	for q := 0; q+1 < len(truth); q++ {
		st.CPhase(q, q+1, Coupling)
	}
	st.HAll()

	var sum float64
	for q := range truth {
		sum += st.ProbOne(q)
	}
	return clamp01(sum / float64(len(truth)))
}

func clamp01(v float64) float64 {
	return min(1, max(0, v))
}
