// Package circuit is a small dense statevector simulator.
//
// Qubit q corresponds to bit q of the basis-state index. A State of n
// qubits holds 2^n complex amplitudes, so n is capped at MaxQubits.
package circuit

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
)

// MaxQubits bounds the width of a State (2^24 amplitudes, 256 MiB).
const MaxQubits = 24

// ErrWidth is returned for a qubit count outside [1, MaxQubits].
var ErrWidth = errors.New("circuit: invalid qubit count")

// AmplitudeBytes returns the memory held by the amplitudes of an n-qubit
// state.
func AmplitudeBytes(n int) int64 {
	return int64(16) << uint(n)
}

// State is a normalized n-qubit statevector.
// A State is not safe for concurrent use.
type State struct {
	n   int
	amp []complex128
}

// New returns an n-qubit state initialized to |0…0⟩.
func New(n int) (*State, error) {
	if n < 1 || n > MaxQubits {
		return nil, fmt.Errorf("%w: %d", ErrWidth, n)
	}
	s := &State{n: n, amp: make([]complex128, 1<<uint(n))}
	s.amp[0] = 1
	return s, nil
}

// Qubits returns the number of qubits.
func (s *State) Qubits() int { return s.n }

// Len returns the number of amplitudes.
func (s *State) Len() int { return len(s.amp) }

// Amplitude returns the amplitude of basis state x.
func (s *State) Amplitude(x int) complex128 { return s.amp[x] }

// Reset returns the state to |0…0⟩.
func (s *State) Reset() {
	clear(s.amp)
	s.amp[0] = 1
}

// Uniform sets the equal superposition H⊗n|0…0⟩ directly.
func (s *State) Uniform() {
	v := complex(1/math.Sqrt(float64(len(s.amp))), 0)
	for i := range s.amp {
		s.amp[i] = v
	}
}

// H applies a Hadamard gate to qubit q.
func (s *State) H(q int) {
	stride := 1 << uint(q)
	for base := 0; base < len(s.amp); base += stride << 1 {
		for j := base; j < base+stride; j++ {
			a, b := s.amp[j], s.amp[j+stride]
			s.amp[j] = (a + b) * invSqrt2
			s.amp[j+stride] = (a - b) * invSqrt2
		}
	}
}

// HAll applies a Hadamard gate to every qubit.
func (s *State) HAll() {
	for q := 0; q < s.n; q++ {
		s.H(q)
	}
}

// Z applies a phase flip to qubit q.
func (s *State) Z(q int) {
	mask := 1 << uint(q)
	for x := range s.amp {
		if x&mask != 0 {
			s.amp[x] = -s.amp[x]
		}
	}
}

// CPhase applies a controlled phase rotation e^{iθ} to basis states in
// which both qubits a and b are 1.
func (s *State) CPhase(a, b int, theta float64) {
	mask := 1<<uint(a) | 1<<uint(b)
	phase := cmplx.Exp(complex(0, theta))
	for x := range s.amp {
		if x&mask == mask {
			s.amp[x] *= phase
		}
	}
}

// MulDiagonal multiplies every amplitude by phase(x). It applies any
// diagonal operator in a single pass.
func (s *State) MulDiagonal(phase func(x int) complex128) {
	for x := range s.amp {
		s.amp[x] *= phase(x)
	}
}

// ProbOne returns the probability of measuring qubit q as 1.
func (s *State) ProbOne(q int) float64 {
	mask := 1 << uint(q)
	var p float64
	for x, a := range s.amp {
		if x&mask != 0 {
			p += sqAbs(a)
		}
	}
	return p
}

// Probabilities returns |amplitude|² for every basis state.
func (s *State) Probabilities() []float64 {
	out := make([]float64, len(s.amp))
	for i, a := range s.amp {
		out[i] = sqAbs(a)
	}
	return out
}

// Norm returns the sum of all probabilities; 1 up to rounding.
func (s *State) Norm() float64 {
	var n float64
	for _, a := range s.amp {
		n += sqAbs(a)
	}
	return n
}

const invSqrt2 = complex(1/math.Sqrt2, 0)

func sqAbs(a complex128) float64 {
	re, im := real(a), imag(a)
	return re*re + im*im
}
