package layout

import (
	"github.com/leexyy0804/snngrow/spikegemm"
)

// TensorRef is a non-owning 2D view: a borrowed slice plus a layout.
// It gives coordinate-indexed access into a fragment or matrix without
// copying. A ref never outlives the accumulate call or pipeline stage it
// was made for.
type TensorRef[T any, L Matrix[L]] struct {
	Data   []T
	Layout L
}

// MakeRef borrows data under the given layout.
func MakeRef[T any, L Matrix[L]](data []T, l L) TensorRef[T, L] {
	return TensorRef[T, L]{Data: data, Layout: l}
}

// MakePackedRef borrows data as a contiguous tile of the given extent.
func MakePackedRef[T any, L Matrix[L]](data []T, extent spikegemm.MatrixShape) TensorRef[T, L] {
	return TensorRef[T, L]{Data: data, Layout: Packed[L](extent)}
}

// At returns the element at coordinate c.
func (r TensorRef[T, L]) At(c spikegemm.MatrixCoord) T {
	return r.Data[r.Layout.Offset(c)]
}

// Set stores v at coordinate c.
func (r TensorRef[T, L]) Set(c spikegemm.MatrixCoord, v T) {
	r.Data[r.Layout.Offset(c)] = v
}
