package device

import (
	"fmt"
	"sync"

	"github.com/leexyy0804/snngrow/spikegemm"
	"github.com/leexyy0804/snngrow/spikegemm/layout"
	"github.com/leexyy0804/snngrow/spikegemm/threadblock"
)

// Config selects the threadblock assembly and the host-side execution
// parameters of a device GEMM.
type Config struct {
	Block threadblock.Config

	// Workers caps the number of worker goroutines the grid is
	// distributed over. Zero means one per CPU.
	Workers int
}

// DefaultConfig returns the default assembly and one worker per CPU.
func DefaultConfig() Config {
	return Config{Block: threadblock.DefaultConfig()}
}

// GemmA computes D = spikes * dense + C where the M×K spike matrix takes
// the place of operand A. All matrices are packed row-major. C and D may
// alias.
func GemmA[T spikegemm.Element](cfg Config, problem spikegemm.GemmShape, spikes []spikegemm.Spike, dense []T, c, d []T) error {
	aShape := spikegemm.MatrixShape{Row: problem.M, Column: problem.K}
	bShape := spikegemm.MatrixShape{Row: problem.K, Column: problem.N}
	cShape := spikegemm.MatrixShape{Row: problem.M, Column: problem.N}
	if err := checkOperands("device.GemmA", problem, len(spikes), aShape, len(dense), bShape, len(c), len(d)); err != nil {
		return err
	}
	return Execute[spikegemm.SideA](cfg, problem,
		layout.MakePackedRef[spikegemm.Spike, layout.RowMajor](spikes, aShape), aShape,
		layout.MakePackedRef[T, layout.RowMajor](dense, bShape), bShape,
		layout.MakePackedRef[T, layout.RowMajor](c, cShape),
		layout.MakePackedRef[T, layout.RowMajor](d, cShape))
}

// GemmB computes D = dense * spikes + C where the K×N spike matrix takes
// the place of operand B. All matrices are packed row-major. C and D may
// alias.
func GemmB[T spikegemm.Element](cfg Config, problem spikegemm.GemmShape, dense []T, spikes []spikegemm.Spike, c, d []T) error {
	aShape := spikegemm.MatrixShape{Row: problem.M, Column: problem.K}
	bShape := spikegemm.MatrixShape{Row: problem.K, Column: problem.N}
	cShape := spikegemm.MatrixShape{Row: problem.M, Column: problem.N}
	if err := checkOperands("device.GemmB", problem, len(spikes), bShape, len(dense), aShape, len(c), len(d)); err != nil {
		return err
	}
	return Execute[spikegemm.SideB](cfg, problem,
		layout.MakePackedRef[spikegemm.Spike, layout.RowMajor](spikes, bShape), bShape,
		layout.MakePackedRef[T, layout.RowMajor](dense, aShape), aShape,
		layout.MakePackedRef[T, layout.RowMajor](c, cShape),
		layout.MakePackedRef[T, layout.RowMajor](d, cShape))
}

func checkOperands(op string, problem spikegemm.GemmShape, spikeLen int, spikeShape spikegemm.MatrixShape, denseLen int, denseShape spikegemm.MatrixShape, cLen, dLen int) error {
	if problem.M < 0 || problem.N < 0 || problem.K < 0 {
		return spikegemm.NewInvalidArgError(op, fmt.Sprintf("negative problem shape %v", problem))
	}
	if spikeLen < spikeShape.Count() {
		return spikegemm.NewShapeError(op, fmt.Sprintf(
			"spike operand has %d elements, shape %v needs %d", spikeLen, spikeShape, spikeShape.Count()))
	}
	if denseLen < denseShape.Count() {
		return spikegemm.NewShapeError(op, fmt.Sprintf(
			"dense operand has %d elements, shape %v needs %d", denseLen, denseShape, denseShape.Count()))
	}
	if cLen < problem.MN() || dLen < problem.MN() {
		return spikegemm.NewShapeError(op, fmt.Sprintf(
			"accumulators have %d and %d elements, shape %v needs %d", cLen, dLen, problem.MN(), problem.MN()))
	}
	return nil
}

// Execute runs a spike GEMM with explicit operand references and logical
// extents, which is the form gather and non-packed layouts need. The
// accumulators must be row-major views of the full M×N problem; C and D
// may share storage.
//
// Each threadblock of the grid builds its own pipeline and runs one
// goroutine per warp. A warp's accumulator covers a disjoint warp tile of
// D, so the epilogue writes back without further synchronization.
func Execute[S spikegemm.Side, T spikegemm.Element, LS layout.Operand[LS], LD layout.Operand[LD]](
	cfg Config,
	problem spikegemm.GemmShape,
	spikeRef layout.TensorRef[spikegemm.Spike, LS], spikeExtent spikegemm.MatrixShape,
	denseRef layout.TensorRef[T, LD], denseExtent spikegemm.MatrixShape,
	cRef, dRef layout.TensorRef[T, layout.RowMajor],
) error {
	if problem.M == 0 || problem.N == 0 {
		return nil
	}

	mma, err := threadblock.NewSpikeMma[S, T, LS, LD, layout.RowMajor](cfg.Block)
	if err != nil {
		return err
	}

	tb := mma.Core.Shape
	grid := Dim3{
		X: (problem.N + tb.N - 1) / tb.N,
		Y: (problem.M + tb.M - 1) / tb.M,
		Z: 1,
	}
	kTiles := mma.KTiles(problem.K)

	launchBlocks(grid, cfg.Workers, func(blockRow, blockColumn int) {
		pipeline := mma.NewPipeline()

		var wg sync.WaitGroup
		wg.Add(mma.Core.Warps())
		for w := 0; w < mma.Core.Warps(); w++ {
			go func(warpID int) {
				defer wg.Done()

				itSpikes := mma.SpikeIterator(spikeRef, spikeExtent, blockRow, blockColumn, warpID)
				itDense := mma.DenseIterator(denseRef, denseExtent, blockRow, blockColumn, warpID)

				accum := pipeline.AccumFragment()
				pipeline.RunWarp(warpID, kTiles, itSpikes, itDense, accum)

				writeWarpTile(mma, problem, blockRow, blockColumn, warpID, accum, cRef, dRef)
			}(w)
		}
		wg.Wait()
	})
	return nil
}

// writeWarpTile is the epilogue for one warp: D = C + accum over the
// warp's tile, masked at the problem's M and N edges.
func writeWarpTile[S spikegemm.Side, T spikegemm.Element, LS layout.Operand[LS], LD layout.Operand[LD]](
	mma *threadblock.SpikeMma[S, T, LS, LD, layout.RowMajor],
	problem spikegemm.GemmShape,
	blockRow, blockColumn, warpID int,
	accum spikegemm.Fragment[T],
	cRef, dRef layout.TensorRef[T, layout.RowMajor],
) {
	warpTile := mma.Core.WarpTile
	wr, wc := mma.Core.WarpGrid(warpID)
	rowBase := blockRow*mma.Core.Shape.M + wr*warpTile.M
	colBase := blockColumn*mma.Core.Shape.N + wc*warpTile.N

	for r := 0; r < warpTile.M; r++ {
		row := rowBase + r
		if row >= problem.M {
			break
		}
		for col := 0; col < warpTile.N; col++ {
			gc := colBase + col
			if gc >= problem.N {
				break
			}
			at := spikegemm.MatrixCoord{Row: row, Column: gc}
			dRef.Set(at, cRef.At(at)+accum[r*warpTile.N+col])
		}
	}
}
