package scoring

import (
	"context"
	"fmt"

	"github.com/hupe1980/qsql/cluster"
	"github.com/hupe1980/qsql/internal/circuit"
	"github.com/hupe1980/qsql/resource"
)

// cancelCheckInterval is the number of rows scored between context checks.
const cancelCheckInterval = 256

// Scorer scores batches using one Mode.
type Scorer interface {
	cluster.Scorer
	Mode() Mode
}

// Config carries scorer settings shared by all modes.
type Config struct {
	// Seed feeds ModeSparse. Equal seeds give equal scores.
	Seed uint64
	// Resources, when set, accounts the circuit scratch memory of every
	// batch.
	Resources *resource.Controller
	// MaxUnits bounds the circuit width of the statevector modes. Zero
	// means circuit.MaxQubits.
	MaxUnits int
}

// New returns the scorer for mode. ModeAuto must be resolved with
// SelectMode first.
func New(mode Mode, plan *Plan, cfg Config) (Scorer, error) {
	limit := cfg.MaxUnits
	if limit <= 0 || limit > circuit.MaxQubits {
		limit = circuit.MaxQubits
	}

	switch mode {
	case ModeDeterministic:
		return &Deterministic{plan: plan}, nil
	case ModeStatevector, ModeAccelerated:
		if err := plan.CheckUnits(limit); err != nil {
			return nil, err
		}
		if mode == ModeStatevector {
			return &Statevector{plan: plan, rc: cfg.Resources}, nil
		}
		return newAccelerated(plan, cfg.Resources), nil
	case ModeSparse:
		return &Sparse{plan: plan, seed: cfg.Seed}, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrMode, mode)
	}
}

func checkContext(ctx context.Context, i int) error {
	if i%cancelCheckInterval == 0 {
		return ctx.Err()
	}
	return nil
}
