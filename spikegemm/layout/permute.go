package layout

import (
	"github.com/leexyy0804/snngrow/spikegemm"
)

// Permute remaps a logical tile coordinate to a storage coordinate before
// the layout's addressing function is applied. A nil Permute on an
// iterator means identity addressing.
type Permute interface {
	Apply(c spikegemm.MatrixCoord, extent spikegemm.MatrixShape) spikegemm.MatrixCoord
}

// NoPermute is the identity permutation.
type NoPermute struct{}

func (NoPermute) Apply(c spikegemm.MatrixCoord, _ spikegemm.MatrixShape) spikegemm.MatrixCoord {
	return c
}

// RowReverse reads rows in reverse storage order: logical row r maps to
// storage row extent.Row-1-r.
type RowReverse struct{}

func (RowReverse) Apply(c spikegemm.MatrixCoord, extent spikegemm.MatrixShape) spikegemm.MatrixCoord {
	return spikegemm.MatrixCoord{Row: extent.Row - 1 - c.Row, Column: c.Column}
}
