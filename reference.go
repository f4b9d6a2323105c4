// Package snngrow reference implementations for verification
package snngrow

import (
	"github.com/leexyy0804/snngrow/spikegemm"
)

// Reference contains simple, correct implementations of the spike kernels.
// These are used for testing and verification of the tiled implementations.
type Reference struct{}

// GemmA computes D = spikes * dense + C with an M×K binary A operand.
// All matrices are packed row-major.
func (Reference) GemmA(problem spikegemm.GemmShape, spikes []spikegemm.Spike, dense []float32, c, d []float32) {
	for m := 0; m < problem.M; m++ {
		for n := 0; n < problem.N; n++ {
			sum := c[m*problem.N+n]
			for k := 0; k < problem.K; k++ {
				if spikes[m*problem.K+k] {
					sum += dense[k*problem.N+n]
				}
			}
			d[m*problem.N+n] = sum
		}
	}
}

// GemmB computes D = dense * spikes + C with a K×N binary B operand.
func (Reference) GemmB(problem spikegemm.GemmShape, dense []float32, spikes []spikegemm.Spike, c, d []float32) {
	for m := 0; m < problem.M; m++ {
		for n := 0; n < problem.N; n++ {
			sum := c[m*problem.N+n]
			for k := 0; k < problem.K; k++ {
				if spikes[k*problem.N+n] {
					sum += dense[m*problem.K+k]
				}
			}
			d[m*problem.N+n] = sum
		}
	}
}

// Gemm computes the dense D = A*B + C for cross-checking the spike paths
// against an all-ones spike operand.
func (Reference) Gemm(problem spikegemm.GemmShape, a, b, c, d []float32) {
	for m := 0; m < problem.M; m++ {
		for n := 0; n < problem.N; n++ {
			sum := c[m*problem.N+n]
			for k := 0; k < problem.K; k++ {
				sum += a[m*problem.K+k] * b[k*problem.N+n]
			}
			d[m*problem.N+n] = sum
		}
	}
}

// Linear applies an out×in weight matrix and bias to a spike batch, the
// reference for SpikeLinear.Forward.
func (Reference) Linear(batch, inFeatures, outFeatures int, spikes []spikegemm.Spike, weight, bias []float32) []float32 {
	out := make([]float32, batch*outFeatures)
	for b := 0; b < batch; b++ {
		for o := 0; o < outFeatures; o++ {
			var sum float32
			if bias != nil {
				sum = bias[o]
			}
			for i := 0; i < inFeatures; i++ {
				if spikes[b*inFeatures+i] {
					sum += weight[o*inFeatures+i]
				}
			}
			out[b*outFeatures+o] = sum
		}
	}
	return out
}
