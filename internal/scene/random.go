package scene

import (
	"math"
	"math/rand/v2"
)

// NewRand returns a PCG-backed generator. A zero seed picks an unpredictable one.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Uniform returns a value in [0,1).
func Uniform(rng *rand.Rand) float32 {
	return rng.Float32()
}

// UniformIn returns a value in [lo,hi). It panics if lo >= hi.
func UniformIn(rng *rand.Rand, lo, hi float32) float32 {
	if lo >= hi {
		panic("scene: UniformIn requires lo < hi")
	}
	v := lo + (hi-lo)*rng.Float32()
	// float32 rounding can land exactly on hi for wide ranges.
	if v >= hi {
		v = math.Nextafter32(hi, lo)
	}
	return v
}
