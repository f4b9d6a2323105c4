// Package threadblock assembles the outermost level of the spike GEMM:
// predicated global-memory tile iterators, the shared staging tiles, and
// the double-buffered mainloop that advances over the reduction dimension.
package threadblock

import (
	"github.com/leexyy0804/snngrow/spikegemm"
	"github.com/leexyy0804/snngrow/spikegemm/layout"
)

// PredicatedTileIterator streams fixed-extent tiles out of a global
// operand matrix. Accesses that fall outside the matrix bounds are
// masked: the load writes the element's zero value and no out-of-bounds
// offset is ever formed. Partial edge tiles therefore stage zeros, which
// contribute nothing to the accumulate.
//
// An optional gather index array redirects the operand's non-K axis, and
// an optional permutation remaps coordinates before addressing. Both
// default to identity.
type PredicatedTileIterator[E any, L layout.Operand[L]] struct {
	ref    layout.TensorRef[E, L]
	extent spikegemm.MatrixShape // logical matrix bounds
	tile   spikegemm.MatrixShape // window extent per load
	origin spikegemm.MatrixCoord
	kStep  spikegemm.MatrixCoord
	at     spikegemm.MatrixCoord

	gather        []int
	gatherColumns bool
	permute       layout.Permute
}

// NewPredicatedTileIterator positions a window of the given tile extent at
// origin within a matrix of the given logical extent. kStep is the origin
// advance applied by Next.
func NewPredicatedTileIterator[E any, L layout.Operand[L]](
	ref layout.TensorRef[E, L],
	extent, tile spikegemm.MatrixShape,
	origin, kStep spikegemm.MatrixCoord,
) *PredicatedTileIterator[E, L] {
	return &PredicatedTileIterator[E, L]{
		ref:    ref,
		extent: extent,
		tile:   tile,
		origin: origin,
		kStep:  kStep,
		at:     origin,
	}
}

// SetGather redirects the non-K axis through an index array. When columns
// is true the indices apply to columns, otherwise to rows. Logical
// positions beyond the index array are masked.
func (it *PredicatedTileIterator[E, L]) SetGather(indices []int, columns bool) {
	it.gather = indices
	it.gatherColumns = columns
}

// SetPermute remaps coordinates before addressing.
func (it *PredicatedTileIterator[E, L]) SetPermute(p layout.Permute) {
	it.permute = p
}

// Load copies the current window into frag in packed row-major order,
// masking out-of-bounds elements to zero.
func (it *PredicatedTileIterator[E, L]) Load(frag spikegemm.Fragment[E]) {
	idx := 0
	for r := 0; r < it.tile.Row; r++ {
		for c := 0; c < it.tile.Column; c++ {
			g := spikegemm.MatrixCoord{Row: it.at.Row + r, Column: it.at.Column + c}

			valid := true
			if it.gather != nil {
				if it.gatherColumns {
					if g.Column < len(it.gather) {
						g.Column = it.gather[g.Column]
					} else {
						valid = false
					}
				} else {
					if g.Row < len(it.gather) {
						g.Row = it.gather[g.Row]
					} else {
						valid = false
					}
				}
			}
			if valid {
				valid = g.Row >= 0 && g.Row < it.extent.Row &&
					g.Column >= 0 && g.Column < it.extent.Column
			}

			if valid {
				if it.permute != nil {
					g = it.permute.Apply(g, it.extent)
				}
				frag[idx] = it.ref.At(g)
			} else {
				var zero E
				frag[idx] = zero
			}
			idx++
		}
	}
}

// Next advances the window one K-tile.
func (it *PredicatedTileIterator[E, L]) Next() {
	it.at.Row += it.kStep.Row
	it.at.Column += it.kStep.Column
}

// Rewind returns the window to its origin.
func (it *PredicatedTileIterator[E, L]) Rewind() {
	it.at = it.origin
}

// Fragment allocates a fragment matching the window extent.
func (it *PredicatedTileIterator[E, L]) Fragment() spikegemm.Fragment[E] {
	return spikegemm.NewFragment[E](it.tile.Count())
}
