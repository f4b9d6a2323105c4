package thread

import (
	"github.com/leexyy0804/snngrow/spikegemm"
	"github.com/leexyy0804/snngrow/spikegemm/layout"
)

// Mma is the uniform thread-level entry point the warp layer drives. With
// a spike operand present it forwards to MmaGeneric; it adds no state and
// no behavior of its own. Primitive selection happens here per
// instantiation: the packed-integer capability flag derived by the warp
// layer never applies while an operand is binary, so the serpentine
// predicated-add routine is always chosen.
type Mma[S spikegemm.Side, T spikegemm.Element, LS layout.Base[LS], LD layout.Base[LD], LC layout.Accumulator[LC]] struct {
	mma MmaGeneric[S, T, LS, LD, LC]
}

// NewMma builds the dispatch wrapper for the given thread tile shape.
func NewMma[S spikegemm.Side, T spikegemm.Element, LS layout.Base[LS], LD layout.Base[LD], LC layout.Accumulator[LC]](shape spikegemm.GemmShape) Mma[S, T, LS, LD, LC] {
	return Mma[S, T, LS, LD, LC]{mma: NewMmaGeneric[S, T, LS, LD, LC](shape)}
}

// Shape returns the thread tile shape.
func (m Mma[S, T, LS, LD, LC]) Shape() spikegemm.GemmShape { return m.mma.Shape }

// SpikeFragment allocates a fragment sized to the spike operand tile.
func (m Mma[S, T, LS, LD, LC]) SpikeFragment() spikegemm.Fragment[spikegemm.Spike] {
	return m.mma.SpikeFragment()
}

// DenseFragment allocates a fragment sized to the dense operand tile.
func (m Mma[S, T, LS, LD, LC]) DenseFragment() spikegemm.Fragment[T] {
	return m.mma.DenseFragment()
}

// AccumFragment allocates a fragment sized to the C/D tile.
func (m Mma[S, T, LS, LD, LC]) AccumFragment() spikegemm.Fragment[T] {
	return m.mma.AccumFragment()
}

// MultiplyAdd computes d = spikes ∘ dense + c. Pure forwarding.
func (m Mma[S, T, LS, LD, LC]) MultiplyAdd(
	d spikegemm.Fragment[T],
	spikes spikegemm.Fragment[spikegemm.Spike],
	dense spikegemm.Fragment[T],
	c spikegemm.Fragment[T],
) {
	m.mma.MultiplyAdd(d, spikes, dense, c)
}
