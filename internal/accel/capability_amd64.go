//go:build amd64

package accel

import "golang.org/x/sys/cpu"

func init() {
	host = Features{
		AVX2:   cpu.X86.HasAVX2 && cpu.X86.HasFMA,
		AVX512: cpu.X86.HasAVX512F && cpu.X86.HasAVX512BW,
	}
	initLevel()
}
