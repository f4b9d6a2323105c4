// Package thread implements the per-thread tile of the spike GEMM: the
// scalar accumulate loop one lane runs over its (m,n,k) tile, specialized
// for a binary operand.
package thread

import (
	"github.com/leexyy0804/snngrow/spikegemm"
	"github.com/leexyy0804/snngrow/spikegemm/arch"
	"github.com/leexyy0804/snngrow/spikegemm/layout"
)

// MmaGeneric computes D = A ∘ B + C for one thread tile where the operand
// selected by S carries spikes. The A-binary and B-binary cases are the
// same routine: S routes each inner step's coordinates, and the
// instantiation fixes the routing before any loop runs.
//
// The m loop is serpentine: for even n it runs 0..M-1, for odd n it runs
// M-1..0, keeping consecutive accumulator writes adjacent. Per-cell
// accumulation over k is commutative, so the traversal order changes
// nothing mathematically.
type MmaGeneric[S spikegemm.Side, T spikegemm.Element, LS layout.Base[LS], LD layout.Base[LD], LC layout.Accumulator[LC]] struct {
	Shape spikegemm.GemmShape

	op arch.SpikeMma[T]
}

// NewMmaGeneric builds the thread-level accumulate for the given tile
// shape. Extents must be positive.
func NewMmaGeneric[S spikegemm.Side, T spikegemm.Element, LS layout.Base[LS], LD layout.Base[LD], LC layout.Accumulator[LC]](shape spikegemm.GemmShape) MmaGeneric[S, T, LS, LD, LC] {
	spikegemm.Assert(shape.M > 0 && shape.N > 0 && shape.K > 0,
		"thread tile %v must have positive extents", shape)
	return MmaGeneric[S, T, LS, LD, LC]{Shape: shape}
}

// SpikeFragment allocates a fragment sized to this tile's spike operand.
func (m MmaGeneric[S, T, LS, LD, LC]) SpikeFragment() spikegemm.Fragment[spikegemm.Spike] {
	var side S
	return spikegemm.NewFragment[spikegemm.Spike](side.SpikeExtent(m.Shape).Count())
}

// DenseFragment allocates a fragment sized to this tile's dense operand.
func (m MmaGeneric[S, T, LS, LD, LC]) DenseFragment() spikegemm.Fragment[T] {
	var side S
	return spikegemm.NewFragment[T](side.DenseExtent(m.Shape).Count())
}

// AccumFragment allocates a fragment sized to the C/D tile.
func (m MmaGeneric[S, T, LS, LD, LC]) AccumFragment() spikegemm.Fragment[T] {
	return spikegemm.NewFragment[T](m.Shape.MN())
}

// MultiplyAdd computes d = spikes ∘ dense + c over the thread tile.
// Under SideA the spike fragment holds the M×K operand and the dense
// fragment the K×N operand; under SideB the roles swap. d and c may alias.
func (m MmaGeneric[S, T, LS, LD, LC]) MultiplyAdd(
	d spikegemm.Fragment[T],
	spikes spikegemm.Fragment[spikegemm.Spike],
	dense spikegemm.Fragment[T],
	c spikegemm.Fragment[T],
) {
	var side S
	shape := m.Shape

	sRef := layout.MakePackedRef[spikegemm.Spike, LS](spikes, side.SpikeExtent(shape))
	vRef := layout.MakePackedRef[T, LD](dense, side.DenseExtent(shape))
	dRef := layout.MakePackedRef[T, LC](d, spikegemm.MatrixShape{Row: shape.M, Column: shape.N})

	// Running-sum formulation: D starts as C and every step writes back.
	if &d[0] != &c[0] {
		d.CopyFrom(c)
	}

	for k := 0; k < shape.K; k++ {
		for n := 0; n < shape.N; n++ {
			for i := 0; i < shape.M; i++ {
				ms := i
				if n%2 == 1 {
					ms = shape.M - 1 - i
				}

				mn := spikegemm.MatrixCoord{Row: ms, Column: n}
				mk := spikegemm.MatrixCoord{Row: ms, Column: k}
				kn := spikegemm.MatrixCoord{Row: k, Column: n}

				sc, vc := side.Pick(mk, kn)

				dv := dRef.At(mn)
				m.op.Op(&dv, sRef.At(sc), vRef.At(vc))
				dRef.Set(mn, dv)
			}
		}
	}
}
