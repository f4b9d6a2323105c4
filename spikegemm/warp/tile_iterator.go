package warp

import (
	"github.com/leexyy0804/snngrow/spikegemm"
	"github.com/leexyy0804/snngrow/spikegemm/layout"
)

// TileIterator streams fixed-extent fragments out of a staged
// threadblock tile. Staged tiles are always packed row-major; interleaved
// global layouts have already been repacked by the time a tile is staged.
// Advance moves the window one k-group along the reduction dimension;
// Rewind returns it to the warp's origin for the next staged tile.
type TileIterator[E any] struct {
	src    layout.TensorRef[E, layout.RowMajor]
	extent spikegemm.MatrixShape
	origin spikegemm.MatrixCoord
	step   spikegemm.MatrixCoord
	at     spikegemm.MatrixCoord
}

// NewTileIterator positions a fragment window of the given extent at
// origin within the staged tile src.
func NewTileIterator[E any](
	src layout.TensorRef[E, layout.RowMajor],
	extent spikegemm.MatrixShape,
	origin, step spikegemm.MatrixCoord,
) *TileIterator[E] {
	return &TileIterator[E]{src: src, extent: extent, origin: origin, step: step, at: origin}
}

// Load copies the current window into frag in packed row-major order.
func (it *TileIterator[E]) Load(frag spikegemm.Fragment[E]) {
	idx := 0
	for r := 0; r < it.extent.Row; r++ {
		for c := 0; c < it.extent.Column; c++ {
			frag[idx] = it.src.At(spikegemm.MatrixCoord{
				Row:    it.at.Row + r,
				Column: it.at.Column + c,
			})
			idx++
		}
	}
}

// Advance moves the window one step along the reduction dimension.
func (it *TileIterator[E]) Advance() {
	it.at.Row += it.step.Row
	it.at.Column += it.step.Column
}

// Rewind returns the window to its origin.
func (it *TileIterator[E]) Rewind() {
	it.at = it.origin
}

// Fragment allocates a fragment matching the iterator's window extent.
func (it *TileIterator[E]) Fragment() spikegemm.Fragment[E] {
	return spikegemm.NewFragment[E](it.extent.Count())
}
