package threadblock

import (
	"github.com/leexyy0804/snngrow/spikegemm"
	"github.com/leexyy0804/snngrow/spikegemm/layout"
)

// SmemTileIterator writes a warp's register-resident stripe into its slot
// of a staged tile. Staged tiles are packed row-major; each warp owns a
// disjoint stripe, so concurrent stores never overlap.
type SmemTileIterator[E any] struct {
	dst    layout.TensorRef[E, layout.RowMajor]
	stripe spikegemm.MatrixShape
	origin spikegemm.MatrixCoord
}

// NewSmemTileIterator positions a store window of the given stripe extent
// at origin within the staged tile dst.
func NewSmemTileIterator[E any](
	dst layout.TensorRef[E, layout.RowMajor],
	stripe spikegemm.MatrixShape,
	origin spikegemm.MatrixCoord,
) *SmemTileIterator[E] {
	return &SmemTileIterator[E]{dst: dst, stripe: stripe, origin: origin}
}

// Store copies the packed row-major frag into the stripe.
func (it *SmemTileIterator[E]) Store(frag spikegemm.Fragment[E]) {
	idx := 0
	for r := 0; r < it.stripe.Row; r++ {
		for c := 0; c < it.stripe.Column; c++ {
			it.dst.Set(spikegemm.MatrixCoord{
				Row:    it.origin.Row + r,
				Column: it.origin.Column + c,
			}, frag[idx])
			idx++
		}
	}
}
