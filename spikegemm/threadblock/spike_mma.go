package threadblock

import (
	"fmt"

	"github.com/leexyy0804/snngrow/spikegemm"
	"github.com/leexyy0804/snngrow/spikegemm/layout"
	"github.com/leexyy0804/snngrow/spikegemm/warp"
)

// Config selects the threadblock decomposition and iterator options for
// an assembled spike GEMM. Gather and permute options are named for the
// operand matrices A and B; the assembler routes them to whichever of the
// two is the spike operand for the chosen side.
type Config struct {
	Threadblock spikegemm.GemmShape
	Warp        spikegemm.GemmShape
	Policy      warp.Policy

	// Stages is the pipeline depth. Only the 2-stage lane-parallel
	// mainloop is assembled here; other depths belong to the dense
	// operator set and are refused.
	Stages int

	// AlignmentA and AlignmentB are the access granularities of the
	// global loads, in elements.
	AlignmentA, AlignmentB int

	// GatherA redirects A's rows and GatherB B's columns through an index
	// array; PermuteA and PermuteB remap coordinates before addressing.
	GatherA, GatherB []int
	PermuteA, PermuteB layout.Permute
}

// DefaultConfig returns the default decomposition from spikegemm's
// configuration constants.
func DefaultConfig() Config {
	return Config{
		Threadblock: spikegemm.GemmShape{M: spikegemm.DefaultBlockTileM, N: spikegemm.DefaultBlockTileN, K: spikegemm.DefaultBlockTileK},
		Warp:        spikegemm.GemmShape{M: spikegemm.DefaultWarpTileM, N: spikegemm.DefaultWarpTileN, K: spikegemm.DefaultWarpTileK},
		Policy:      warp.DefaultPolicy(),
		Stages:      spikegemm.PipelineStages,
		AlignmentA:  1,
		AlignmentB:  1,
	}
}

// SpikeMma assembles the threadblock-level spike GEMM: the core
// decomposition, predicated global iterators for both operands, and the
// double-buffered mainloop. The accumulator layout parameter LC only
// admits row-major and affine-equivalent layouts; a column-major
// accumulator does not compile.
type SpikeMma[S spikegemm.Side, T spikegemm.Element, LS layout.Operand[LS], LD layout.Operand[LD], LC layout.Accumulator[LC]] struct {
	Config Config
	Core   Core[S]
}

// NewSpikeMma validates the configuration and derives the core
// decomposition. Unsupported pipeline depths return a NotImplemented
// error; invalid alignments an InvalidArgument error.
func NewSpikeMma[S spikegemm.Side, T spikegemm.Element, LS layout.Operand[LS], LD layout.Operand[LD], LC layout.Accumulator[LC]](cfg Config) (*SpikeMma[S, T, LS, LD, LC], error) {
	const op = "threadblock.NewSpikeMma"

	if cfg.Stages != spikegemm.PipelineStages {
		return nil, spikegemm.NewNotImplementedError(op, fmt.Sprintf(
			"only the %d-stage lane-parallel mainloop is specialized here, got %d stages",
			spikegemm.PipelineStages, cfg.Stages))
	}
	if cfg.AlignmentA < 1 || cfg.AlignmentB < 1 {
		return nil, spikegemm.NewInvalidArgError(op, fmt.Sprintf(
			"alignments must be at least 1 element, got A=%d B=%d",
			cfg.AlignmentA, cfg.AlignmentB))
	}
	if cfg.Threadblock.K%cfg.AlignmentA != 0 || cfg.Threadblock.K%cfg.AlignmentB != 0 {
		return nil, spikegemm.NewInvalidArgError(op, fmt.Sprintf(
			"alignments A=%d B=%d must divide the tile depth %d",
			cfg.AlignmentA, cfg.AlignmentB, cfg.Threadblock.K))
	}

	return &SpikeMma[S, T, LS, LD, LC]{
		Config: cfg,
		Core:   NewCore[S](cfg.Threadblock, cfg.Warp, cfg.Policy, cfg.Stages),
	}, nil
}

// KTiles returns the number of K-tiles the mainloop runs for a problem of
// depth k, counting the final partial tile.
func (m *SpikeMma[S, T, LS, LD, LC]) KTiles(k int) int {
	return (k + m.Core.Shape.K - 1) / m.Core.Shape.K
}

// NewPipeline builds the staging buffers, barrier, and per-warp working
// sets for one threadblock execution.
func (m *SpikeMma[S, T, LS, LD, LC]) NewPipeline() *MmaPipelined[S, T, LS, LD, LC] {
	return newMmaPipelined[S, T, LS, LD, LC](m.Core)
}

// SpikeIterator builds warp warpID's predicated global iterator over the
// spike operand for the threadblock at grid position (blockRow,
// blockColumn). extent is the operand matrix's logical bounds.
func (m *SpikeMma[S, T, LS, LD, LC]) SpikeIterator(
	ref layout.TensorRef[spikegemm.Spike, LS],
	extent spikegemm.MatrixShape,
	blockRow, blockColumn, warpID int,
) *PredicatedTileIterator[spikegemm.Spike, LS] {
	var side S
	origin := side.SpikeOrigin(blockRow*m.Core.Shape.M, blockColumn*m.Core.Shape.N)
	stripe := m.Core.SpikeStripeOrigin(warpID)
	origin.Row += stripe.Row
	origin.Column += stripe.Column

	it := NewPredicatedTileIterator(ref, extent, m.Core.SpikeStripe,
		origin, side.SpikeKStep(m.Core.Shape.K))

	gather, permute := m.Config.GatherB, m.Config.PermuteB
	if side.SpikeIsA() {
		gather, permute = m.Config.GatherA, m.Config.PermuteA
	}
	if gather != nil {
		// The index array redirects the operand's non-K axis: A rows or
		// B columns.
		it.SetGather(gather, !side.SpikeIsA())
	}
	if permute != nil {
		it.SetPermute(permute)
	}
	return it
}

// DenseIterator builds warp warpID's predicated global iterator over the
// dense operand. See SpikeIterator.
func (m *SpikeMma[S, T, LS, LD, LC]) DenseIterator(
	ref layout.TensorRef[T, LD],
	extent spikegemm.MatrixShape,
	blockRow, blockColumn, warpID int,
) *PredicatedTileIterator[T, LD] {
	var side S
	origin := side.DenseOrigin(blockRow*m.Core.Shape.M, blockColumn*m.Core.Shape.N)
	stripe := m.Core.DenseStripeOrigin(warpID)
	origin.Row += stripe.Row
	origin.Column += stripe.Column

	it := NewPredicatedTileIterator(ref, extent, m.Core.DenseStripe,
		origin, side.DenseKStep(m.Core.Shape.K))

	gather, permute := m.Config.GatherA, m.Config.PermuteA
	if side.SpikeIsA() {
		gather, permute = m.Config.GatherB, m.Config.PermuteB
	}
	if gather != nil {
		it.SetGather(gather, side.SpikeIsA())
	}
	if permute != nil {
		it.SetPermute(permute)
	}
	return it
}
