package threadblock

import (
	"github.com/leexyy0804/snngrow/spikegemm"
	"github.com/leexyy0804/snngrow/spikegemm/layout"
	"github.com/leexyy0804/snngrow/spikegemm/warp"
)

// MmaPipelined is the software-pipelined mainloop of one threadblock. Two
// staging slots per operand are double-buffered across the K dimension:
// while the warps compute against the staged slot, each warp's next
// global stripe is already in registers, and a single block-wide barrier
// per K-tile separates the stores into the other slot from the reads that
// follow. The schedule is driven only by the countdown of remaining
// K-tiles: prologue stages the first tile, the steady state loads tile
// t+1 while computing tile t, and the epilogue computes the final staged
// tile with no further load.
//
// A pipeline instance belongs to one threadblock execution. RunWarp is
// called concurrently by every warp of the block, each with its own
// iterators and accumulator.
type MmaPipelined[S spikegemm.Side, T spikegemm.Element, LS layout.Operand[LS], LD layout.Operand[LD], LC layout.Accumulator[LC]] struct {
	core    Core[S]
	barrier *spikegemm.Barrier

	stagedSpikes [spikegemm.PipelineStages]spikegemm.Fragment[spikegemm.Spike]
	stagedDense  [spikegemm.PipelineStages]spikegemm.Fragment[T]

	warps []*warpContext[S, T, LS, LD, LC]
}

// warpContext is one warp's private working set: its warp-level operator,
// register stripes for the in-flight global loads, store iterators into
// both staging slots, and k-group fragments.
type warpContext[S spikegemm.Side, T spikegemm.Element, LS layout.Operand[LS], LD layout.Operand[LD], LC layout.Accumulator[LC]] struct {
	mma      *warp.SpikeMmaSimt[S, T, LS, LD, LC]
	row, col int

	stripeSpikes spikegemm.Fragment[spikegemm.Spike]
	stripeDense  spikegemm.Fragment[T]

	smemSpikes [spikegemm.PipelineStages]*SmemTileIterator[spikegemm.Spike]
	smemDense  [spikegemm.PipelineStages]*SmemTileIterator[T]

	itSpikes [spikegemm.PipelineStages]*warp.TileIterator[spikegemm.Spike]
	itDense  [spikegemm.PipelineStages]*warp.TileIterator[T]

	groupSpikes spikegemm.Fragment[spikegemm.Spike]
	groupDense  spikegemm.Fragment[T]
	xfSpikes    spikegemm.Fragment[spikegemm.Spike]
	xfDense     spikegemm.Fragment[T]
}

// newMmaPipelined builds the per-threadblock pipeline state for the given
// core decomposition.
func newMmaPipelined[S spikegemm.Side, T spikegemm.Element, LS layout.Operand[LS], LD layout.Operand[LD], LC layout.Accumulator[LC]](core Core[S]) *MmaPipelined[S, T, LS, LD, LC] {
	p := &MmaPipelined[S, T, LS, LD, LC]{
		core:    core,
		barrier: spikegemm.NewBarrier(core.Warps()),
	}
	for s := 0; s < spikegemm.PipelineStages; s++ {
		p.stagedSpikes[s] = spikegemm.NewFragment[spikegemm.Spike](core.SpikeStaged.Count())
		p.stagedDense[s] = spikegemm.NewFragment[T](core.DenseStaged.Count())
	}

	for w := 0; w < core.Warps(); w++ {
		row, col := core.WarpGrid(w)
		wm := warp.NewSpikeMmaSimt[S, T, LS, LD, LC](core.WarpTile, core.Policy)
		ctx := &warpContext[S, T, LS, LD, LC]{
			mma:          wm,
			row:          row,
			col:          col,
			stripeSpikes: spikegemm.NewFragment[spikegemm.Spike](core.SpikeStripe.Count()),
			stripeDense:  spikegemm.NewFragment[T](core.DenseStripe.Count()),
			groupSpikes:  wm.SpikeFragment(),
			groupDense:   wm.DenseFragment(),
			xfSpikes:     wm.SpikeFragment(),
			xfDense:      wm.DenseFragment(),
		}
		for s := 0; s < spikegemm.PipelineStages; s++ {
			spikeRef := layout.MakePackedRef[spikegemm.Spike, layout.RowMajor](p.stagedSpikes[s], core.SpikeStaged)
			denseRef := layout.MakePackedRef[T, layout.RowMajor](p.stagedDense[s], core.DenseStaged)
			ctx.smemSpikes[s] = NewSmemTileIterator(spikeRef, core.SpikeStripe, core.SpikeStripeOrigin(w))
			ctx.smemDense[s] = NewSmemTileIterator(denseRef, core.DenseStripe, core.DenseStripeOrigin(w))
			ctx.itSpikes[s] = wm.SpikeIterator(spikeRef, row, col)
			ctx.itDense[s] = wm.DenseIterator(denseRef, row, col)
		}
		p.warps = append(p.warps, ctx)
	}
	return p
}

// AccumFragment allocates a warp accumulator sized to the warp tile.
func (p *MmaPipelined[S, T, LS, LD, LC]) AccumFragment() spikegemm.Fragment[T] {
	return p.warps[0].mma.AccumFragment()
}

// RunWarp executes warp warpID's share of the mainloop over kTiles
// K-tiles, accumulating into accum. itSpikes and itDense are the warp's
// predicated global iterators, positioned at its stripe of the first
// K-tile. Every warp of the block must call RunWarp concurrently with the
// same kTiles; the pipeline's barrier ties their phases together.
func (p *MmaPipelined[S, T, LS, LD, LC]) RunWarp(
	warpID, kTiles int,
	itSpikes *PredicatedTileIterator[spikegemm.Spike, LS],
	itDense *PredicatedTileIterator[T, LD],
	accum spikegemm.Fragment[T],
) {
	if kTiles <= 0 {
		return
	}
	ctx := p.warps[warpID]

	// Prologue: prime the first staging slot.
	itSpikes.Load(ctx.stripeSpikes)
	itDense.Load(ctx.stripeDense)
	ctx.smemSpikes[0].Store(ctx.stripeSpikes)
	ctx.smemDense[0].Store(ctx.stripeDense)
	p.barrier.Wait()

	stage := 0
	for remaining := kTiles; remaining > 0; remaining-- {
		last := remaining == 1

		// Issue the next tile's global load so memory latency overlaps
		// the compute below.
		if !last {
			itSpikes.Next()
			itDense.Next()
			itSpikes.Load(ctx.stripeSpikes)
			itDense.Load(ctx.stripeDense)
		}

		// Consume the staged tile, one warp k-group at a time.
		ctx.itSpikes[stage].Rewind()
		ctx.itDense[stage].Rewind()
		for g := 0; g < p.core.KGroups; g++ {
			ctx.itSpikes[stage].Load(ctx.groupSpikes)
			ctx.itDense[stage].Load(ctx.groupDense)
			ctx.itSpikes[stage].Advance()
			ctx.itDense[stage].Advance()

			ctx.mma.Transform(ctx.xfSpikes, ctx.xfDense, ctx.groupSpikes, ctx.groupDense)
			ctx.mma.Accumulate(accum, ctx.xfSpikes, ctx.xfDense, accum, g)
		}

		// Fill the other slot and fence before anyone reads it.
		if !last {
			next := stage ^ 1
			ctx.smemSpikes[next].Store(ctx.stripeSpikes)
			ctx.smemDense[next].Store(ctx.stripeDense)
			p.barrier.Wait()
			stage = next
		}
	}
}
