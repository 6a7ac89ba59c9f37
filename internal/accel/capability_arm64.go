//go:build arm64

package accel

import "golang.org/x/sys/cpu"

func init() {
	host = Features{
		ASIMD: cpu.ARM64.HasASIMD,
		SVE2:  cpu.ARM64.HasSVE2,
	}
	initLevel()
}
