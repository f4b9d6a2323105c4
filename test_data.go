package snngrow

import (
	"math/rand"

	"github.com/leexyy0804/snngrow/spikegemm"
)

// RandomSpikes generates n spikes with independent firing probability p.
// Both tests and the benchmark tool use this to model sparse activations.
func RandomSpikes(rng *rand.Rand, n int, p float64) []spikegemm.Spike {
	s := make([]spikegemm.Spike, n)
	for i := range s {
		s[i] = rng.Float64() < p
	}
	return s
}

// RandomFloats generates n values uniform in [-1, 1).
func RandomFloats(rng *rand.Rand, n int) []float32 {
	f := make([]float32, n)
	for i := range f {
		f[i] = rng.Float32()*2 - 1
	}
	return f
}
