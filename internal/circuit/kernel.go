package circuit

import "math/bits"

// HAllUnrolled applies a Hadamard gate to every qubit, processing four
// butterflies per iteration once the stride allows it. The result is
// identical to HAll.
func (s *State) HAllUnrolled() {
	for q := 0; q < s.n; q++ {
		stride := 1 << uint(q)
		if stride < 4 {
			s.H(q)
			continue
		}
		amp := s.amp
		for base := 0; base < len(amp); base += stride << 1 {
			lo := amp[base : base+stride : base+stride]
			hi := amp[base+stride : base+2*stride : base+2*stride]
			for j := 0; j+3 < stride; j += 4 {
				a0, b0 := lo[j], hi[j]
				a1, b1 := lo[j+1], hi[j+1]
				a2, b2 := lo[j+2], hi[j+2]
				a3, b3 := lo[j+3], hi[j+3]
				lo[j], hi[j] = (a0+b0)*invSqrt2, (a0-b0)*invSqrt2
				lo[j+1], hi[j+1] = (a1+b1)*invSqrt2, (a1-b1)*invSqrt2
				lo[j+2], hi[j+2] = (a2+b2)*invSqrt2, (a2-b2)*invSqrt2
				lo[j+3], hi[j+3] = (a3+b3)*invSqrt2, (a3-b3)*invSqrt2
			}
		}
	}
}

// MeanProbOne returns the mean over all qubits of ProbOne in one pass
// over the amplitudes.
func (s *State) MeanProbOne() float64 {
	var total float64
	for x, a := range s.amp {
		if x == 0 {
			continue
		}
		total += sqAbs(a) * float64(bits.OnesCount32(uint32(x)))
	}
	return total / float64(s.n)
}
