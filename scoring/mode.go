package scoring

import (
	"fmt"
	"strings"

	"github.com/hupe1980/qsql/cluster"
	"github.com/hupe1980/qsql/internal/accel"
)

// Mode identifies a scoring strategy.
type Mode uint8

const (
	// ModeAuto lets SelectMode decide.
	ModeAuto Mode = iota
	ModeDeterministic
	ModeStatevector
	ModeAccelerated
	ModeSparse
)

func (m Mode) String() string {
	switch m {
	case ModeAuto:
		return "auto"
	case ModeDeterministic:
		return "deterministic"
	case ModeStatevector:
		return "statevector"
	case ModeAccelerated:
		return "accelerated"
	case ModeSparse:
		return "sparse"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// ParseMode parses the String form of a mode, case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ModeAuto, nil
	case "deterministic", "classic":
		return ModeDeterministic, nil
	case "statevector", "direct":
		return ModeStatevector, nil
	case "accelerated", "simd":
		return ModeAccelerated, nil
	case "sparse":
		return ModeSparse, nil
	}
	return ModeAuto, fmt.Errorf("%w: %q", ErrMode, s)
}

// Budget bounds the simulated register width used for mode selection.
type Budget struct {
	// Overhead is added to the row qubits of a query.
	Overhead int
	// Limit is the widest register simulated exactly.
	Limit int
}

// DefaultBudget is the budget used when none is configured.
var DefaultBudget = Budget{Overhead: 4, Limit: 28}

// Total returns the register width required for a query of rows rows.
func (b Budget) Total(rows int) int {
	return cluster.RowQubits(rows) + b.Overhead
}

// Probe reports whether accelerated kernels should be preferred.
type Probe func() bool

// DefaultProbe consults the CPU capability detection.
func DefaultProbe() bool { return accel.Accelerated() }

// SelectMode chooses the scorer for a query over rows rows.
//
// Queries whose total width exceeds the limit fall back to ModeSparse.
// Otherwise ModeAccelerated is chosen when probe reports support and
// ModeStatevector when it does not. A nil probe counts as unsupported.
func SelectMode(rows int, budget Budget, probe Probe) Mode {
	if budget.Total(rows) > budget.Limit {
		return ModeSparse
	}
	if probe != nil && probe() {
		return ModeAccelerated
	}
	return ModeStatevector
}
