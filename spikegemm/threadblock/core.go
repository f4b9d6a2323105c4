package threadblock

import (
	"github.com/leexyy0804/snngrow/spikegemm"
	"github.com/leexyy0804/snngrow/spikegemm/warp"
)

// Core describes the threadblock's decomposition: the warp grid, the
// staged tile extents for both operands, and the per-warp stripes of the
// global loads. Everything here is fixed when the GEMM is assembled.
type Core[S spikegemm.Side] struct {
	// Shape is the threadblock tile; WarpTile the tile each warp computes.
	Shape    spikegemm.GemmShape
	WarpTile spikegemm.GemmShape

	// WarpCount is the warp grid within the threadblock.
	WarpCount spikegemm.MatrixShape

	Policy warp.Policy
	Stages int

	// KGroups is the number of warp-level k-groups per staged tile.
	KGroups int

	// SpikeStaged and DenseStaged are the staged tile extents; SpikeStripe
	// and DenseStripe the per-warp slices of the global loads feeding
	// them.
	SpikeStaged spikegemm.MatrixShape
	DenseStaged spikegemm.MatrixShape
	SpikeStripe spikegemm.MatrixShape
	DenseStripe spikegemm.MatrixShape
}

// NewCore derives the decomposition from the threadblock and warp tiles.
// The warp tile must evenly divide the threadblock tile in M and N and
// match it in K, and the warp count must evenly divide both staged tiles'
// rows; violations are assembly-time programmer errors and panic.
func NewCore[S spikegemm.Side](tb, warpTile spikegemm.GemmShape, policy warp.Policy, stages int) Core[S] {
	spikegemm.Assert(tb.K == warpTile.K,
		"warp tile K %d must match threadblock tile K %d", warpTile.K, tb.K)
	spikegemm.AssertTiling(tb, warpTile)
	spikegemm.Assert(policy.LaneMmaShape.K > 0 && warpTile.K%policy.LaneMmaShape.K == 0,
		"lane K %d does not divide warp tile K %d", policy.LaneMmaShape.K, warpTile.K)

	var side S
	c := Core[S]{
		Shape:    tb,
		WarpTile: warpTile,
		WarpCount: spikegemm.MatrixShape{
			Row:    tb.M / warpTile.M,
			Column: tb.N / warpTile.N,
		},
		Policy:      policy,
		Stages:      stages,
		KGroups:     warpTile.K / policy.LaneMmaShape.K,
		SpikeStaged: side.SpikeExtent(tb),
		DenseStaged: side.DenseExtent(tb),
	}

	warps := c.WarpCount.Count()
	spikegemm.Assert(c.SpikeStaged.Row%warps == 0 && c.DenseStaged.Row%warps == 0,
		"%d warps do not evenly stripe staged tiles %v and %v",
		warps, c.SpikeStaged, c.DenseStaged)
	c.SpikeStripe = spikegemm.MatrixShape{Row: c.SpikeStaged.Row / warps, Column: c.SpikeStaged.Column}
	c.DenseStripe = spikegemm.MatrixShape{Row: c.DenseStaged.Row / warps, Column: c.DenseStaged.Column}
	return c
}

// Warps returns the number of warps in the threadblock.
func (c Core[S]) Warps() int { return c.WarpCount.Count() }

// WarpGrid maps a warp id to its (row, column) in the warp grid.
func (c Core[S]) WarpGrid(warpID int) (row, column int) {
	return warpID / c.WarpCount.Column, warpID % c.WarpCount.Column
}

// SpikeStripeOrigin returns warp warpID's store origin in the staged
// spike tile; DenseStripeOrigin the dense counterpart.
func (c Core[S]) SpikeStripeOrigin(warpID int) spikegemm.MatrixCoord {
	return spikegemm.MatrixCoord{Row: warpID * c.SpikeStripe.Row}
}

// DenseStripeOrigin returns warp warpID's store origin in the staged
// dense tile.
func (c Core[S]) DenseStripeOrigin(warpID int) spikegemm.MatrixCoord {
	return spikegemm.MatrixCoord{Row: warpID * c.DenseStripe.Row}
}
