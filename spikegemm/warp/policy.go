// Package warp orchestrates one warp's share of the spike GEMM: it
// partitions the warp tile across lanes per the SIMT policy, owns the
// iterators feeding lane fragments, and drives the thread-level
// accumulate.
package warp

import (
	"github.com/leexyy0804/snngrow/spikegemm"
)

// Policy describes how a warp's lanes partition its tile: a Row×Column
// lane grid and the tile each lane computes per inner step. The lane grid
// must evenly divide the warp tile.
type Policy struct {
	WarpShape    spikegemm.MatrixShape
	LaneMmaShape spikegemm.GemmShape
}

// DefaultPolicy is the 4×8 lane grid with a K-depth-1 lane tile, matching
// the default warp tile in spikegemm's config.
func DefaultPolicy() Policy {
	return Policy{
		WarpShape:    spikegemm.MatrixShape{Row: 4, Column: 8},
		LaneMmaShape: spikegemm.GemmShape{M: 4, N: 4, K: 1},
	}
}

// Lanes returns the number of lanes in the grid.
func (p Policy) Lanes() int { return p.WarpShape.Count() }

// ThreadShape derives the per-thread tile from a warp tile under this
// policy.
func (p Policy) ThreadShape(warpTile spikegemm.GemmShape) spikegemm.GemmShape {
	return spikegemm.GemmShape{
		M: warpTile.M / p.WarpShape.Row,
		N: warpTile.N / p.WarpShape.Column,
		K: p.LaneMmaShape.K,
	}
}

func (p Policy) validate(warpTile spikegemm.GemmShape) {
	spikegemm.AssertTiling(warpTile, spikegemm.GemmShape{
		M: p.WarpShape.Row,
		N: p.WarpShape.Column,
		K: p.LaneMmaShape.K,
	})
}
