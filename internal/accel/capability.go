package accel

import (
	"os"
	"runtime"
	"strings"
)

// EnvOverride caps the vector width used at init: "off" disables
// acceleration, "128" or "256" limit it.
const EnvOverride = "QSQL_ACCEL"

// Level is a usable vector register width.
type Level uint8

const (
	Scalar Level = iota
	Vec128
	Vec256
	Vec512
)

func (l Level) String() string {
	switch l {
	case Scalar:
		return "scalar"
	case Vec128:
		return "vec128"
	case Vec256:
		return "vec256"
	case Vec512:
		return "vec512"
	}
	return "unknown"
}

// Bits returns the register width in bits, 0 for Scalar.
func (l Level) Bits() int {
	if l == Scalar {
		return 0
	}
	return 64 << l
}

// ParseLevel accepts a level name or a bit width. "off", "none" and
// "generic" mean Scalar.
func ParseLevel(s string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "scalar", "off", "none", "generic", "0":
		return Scalar, true
	case "vec128", "128", "neon":
		return Vec128, true
	case "vec256", "256", "avx2":
		return Vec256, true
	case "vec512", "512", "avx512":
		return Vec512, true
	}
	return Scalar, false
}

// Features lists the host's vector extensions.
type Features struct {
	ASIMD  bool
	SVE2   bool
	AVX2   bool
	AVX512 bool
}

// Best returns the widest level f supports. SVE2 is treated as 128 bit,
// the width every implementation guarantees, and ignored on darwin.
func (f Features) Best(goos string) Level {
	switch {
	case f.AVX512:
		return Vec512
	case f.AVX2:
		return Vec256
	case f.SVE2 && goos != "darwin", f.ASIMD:
		return Vec128
	}
	return Scalar
}

var (
	host   Features
	active Level
	capped bool
)

func initLevel() {
	active, capped = resolve(host, runtime.GOOS, os.Getenv(EnvOverride))
}

// resolve picks the active level, honoring an override only when it does
// not exceed what the host supports.
func resolve(f Features, goos, override string) (Level, bool) {
	best := f.Best(goos)
	if override == "" {
		return best, false
	}
	want, ok := ParseLevel(override)
	if !ok || want > best {
		return best, false
	}
	return want, true
}

// Host returns the detected features.
func Host() Features { return host }

// Active returns the level in use.
func Active() Level { return active }

// Overridden reports whether QSQL_ACCEL changed the level.
func Overridden() bool { return capped }

// Accelerated reports whether any vector level is active.
func Accelerated() bool { return active > Scalar }
