package warp

import (
	"github.com/leexyy0804/snngrow/spikegemm"
	"github.com/leexyy0804/snngrow/spikegemm/layout"
	"github.com/leexyy0804/snngrow/spikegemm/thread"
)

// Transform identifies the operand transform applied before the thread
// loops run. Conjugation is kept for interface parity with the dense
// operator; spike and real operands make it the identity.
type Transform int

const (
	TransformNone Transform = iota
	TransformConjugate
)

// SpikeMmaSimt computes one warp tile of the spike GEMM on the
// lane-parallel operator class. The warp tile is split across the policy's
// lane grid; each lane runs the thread-level serpentine accumulate over
// its disjoint sub-tile, one k-group at a time.
//
// A SpikeMmaSimt holds per-lane scratch fragments and must not be shared
// between concurrently running warps; the threadblock layer gives each
// warp its own instance.
type SpikeMmaSimt[S spikegemm.Side, T spikegemm.Element, LS layout.Operand[LS], LD layout.Operand[LD], LC layout.Accumulator[LC]] struct {
	// Shape is the warp tile.
	Shape  spikegemm.GemmShape
	Policy Policy

	// TransformSpike and TransformDense are applied by Accumulate before
	// the thread loops. For spike and real elements conjugation is the
	// identity, so both are no-ops in every supported instantiation.
	TransformSpike Transform
	TransformDense Transform

	// UseDP4A reports whether the 4-wide packed-integer primitive applies
	// to this instantiation. Derived once here from the operand element
	// types and layouts, consumed by the thread layer's primitive
	// selection, never consulted per element. A spike operand is boolean,
	// so every spike instantiation derives false; the flag exists so the
	// operator presents the same contract as the dense one.
	UseDP4A bool

	threadShape spikegemm.GemmShape
	mma         thread.Mma[S, T, layout.RowMajor, layout.RowMajor, layout.RowMajor]

	laneSpikes spikegemm.Fragment[spikegemm.Spike]
	laneDense  spikegemm.Fragment[T]
	laneAccum  spikegemm.Fragment[T]
}

// NewSpikeMmaSimt derives the per-thread tile from the warp tile and lane
// policy and builds the warp operator. The policy must evenly divide the
// warp tile; a partition that does not is a programmer error and panics at
// assembly time.
func NewSpikeMmaSimt[S spikegemm.Side, T spikegemm.Element, LS layout.Operand[LS], LD layout.Operand[LD], LC layout.Accumulator[LC]](
	shape spikegemm.GemmShape,
	policy Policy,
) *SpikeMmaSimt[S, T, LS, LD, LC] {
	policy.validate(shape)
	threadShape := policy.ThreadShape(shape)

	var side S
	w := &SpikeMmaSimt[S, T, LS, LD, LC]{
		Shape:       shape,
		Policy:      policy,
		threadShape: threadShape,
		mma:         thread.NewMma[S, T, layout.RowMajor, layout.RowMajor, layout.RowMajor](threadShape),
	}

	// One operand is boolean on the spike path, so aInt8 and bInt8 can
	// never both hold; dense int8 pairings are where the flag matters.
	aInt8 := !side.SpikeIsA() && spikegemm.IsInt8[T]()
	bInt8 := side.SpikeIsA() && spikegemm.IsInt8[T]()
	interleavedA := layout.IsInterleaved4[LD]()
	if side.SpikeIsA() {
		interleavedA = layout.IsInterleaved4[LS]()
	}
	w.UseDP4A = PackedInt8Applies(aInt8, bInt8, interleavedA) &&
		spikegemm.HasPackedInt8()

	w.laneSpikes = spikegemm.NewFragment[spikegemm.Spike](side.SpikeExtent(threadShape).Count())
	w.laneDense = spikegemm.NewFragment[T](side.DenseExtent(threadShape).Count())
	w.laneAccum = spikegemm.NewFragment[T](threadShape.MN())
	return w
}

// PackedInt8Applies reports whether an operand pairing qualifies for the
// 4-wide packed-integer primitive: both operands int8 and the A layout
// 4-wide interleaved.
func PackedInt8Applies(aInt8, bInt8, interleavedA bool) bool {
	return interleavedA && aInt8 && bInt8
}

// ThreadShape returns the derived per-thread tile.
func (w *SpikeMmaSimt[S, T, LS, LD, LC]) ThreadShape() spikegemm.GemmShape { return w.threadShape }

// SpikeFragment allocates a warp fragment for one k-group of the spike
// operand.
func (w *SpikeMmaSimt[S, T, LS, LD, LC]) SpikeFragment() spikegemm.Fragment[spikegemm.Spike] {
	var side S
	return spikegemm.NewFragment[spikegemm.Spike](side.SpikeExtent(w.groupShape()).Count())
}

// DenseFragment allocates a warp fragment for one k-group of the dense
// operand.
func (w *SpikeMmaSimt[S, T, LS, LD, LC]) DenseFragment() spikegemm.Fragment[T] {
	var side S
	return spikegemm.NewFragment[T](side.DenseExtent(w.groupShape()).Count())
}

// AccumFragment allocates the warp accumulator fragment.
func (w *SpikeMmaSimt[S, T, LS, LD, LC]) AccumFragment() spikegemm.Fragment[T] {
	return spikegemm.NewFragment[T](w.Shape.MN())
}

// groupShape is the warp tile restricted to one k-group.
func (w *SpikeMmaSimt[S, T, LS, LD, LC]) groupShape() spikegemm.GemmShape {
	return spikegemm.GemmShape{M: w.Shape.M, N: w.Shape.N, K: w.Policy.LaneMmaShape.K}
}

// SpikeIterator positions an iterator over the staged spike tile for the
// warp at grid position (warpRow, warpColumn).
func (w *SpikeMmaSimt[S, T, LS, LD, LC]) SpikeIterator(
	staged layout.TensorRef[spikegemm.Spike, layout.RowMajor],
	warpRow, warpColumn int,
) *TileIterator[spikegemm.Spike] {
	var side S
	return NewTileIterator(
		staged,
		side.SpikeExtent(w.groupShape()),
		side.SpikeOrigin(warpRow*w.Shape.M, warpColumn*w.Shape.N),
		side.SpikeKStep(w.Policy.LaneMmaShape.K),
	)
}

// DenseIterator positions an iterator over the staged dense tile for the
// warp at grid position (warpRow, warpColumn).
func (w *SpikeMmaSimt[S, T, LS, LD, LC]) DenseIterator(
	staged layout.TensorRef[T, layout.RowMajor],
	warpRow, warpColumn int,
) *TileIterator[T] {
	var side S
	return NewTileIterator(
		staged,
		side.DenseExtent(w.groupShape()),
		side.DenseOrigin(warpRow*w.Shape.M, warpColumn*w.Shape.N),
		side.DenseKStep(w.Policy.LaneMmaShape.K),
	)
}

// Transform copies the operand fragments into the form the thread layer
// consumes. On the spike path this is the identity.
func (w *SpikeMmaSimt[S, T, LS, LD, LC]) Transform(
	dstSpikes spikegemm.Fragment[spikegemm.Spike],
	dstDense spikegemm.Fragment[T],
	spikes spikegemm.Fragment[spikegemm.Spike],
	dense spikegemm.Fragment[T],
) {
	dstSpikes.CopyFrom(spikes)
	dstDense.CopyFrom(dense)
}

// Accumulate performs one warp-tile, one-k-group accumulate: d = spikes ∘
// dense + c. d and c may be the same fragment, which is how the mainloop
// keeps a running accumulator. groupIdx is reserved for K-partitioned
// reductions and ignored by the lane-parallel operator.
func (w *SpikeMmaSimt[S, T, LS, LD, LC]) Accumulate(
	d spikegemm.Fragment[T],
	spikes spikegemm.Fragment[spikegemm.Spike],
	dense spikegemm.Fragment[T],
	c spikegemm.Fragment[T],
	groupIdx int,
) {
	_ = groupIdx

	// Conjugation hooks: the identity for boolean and real scalars.
	_ = w.TransformSpike
	_ = w.TransformDense

	var side S
	ts := w.threadShape
	group := w.groupShape()

	spikeExtent := side.SpikeExtent(group)
	denseExtent := side.DenseExtent(group)
	accumExtent := spikegemm.MatrixShape{Row: w.Shape.M, Column: w.Shape.N}

	laneSpikeExtent := side.SpikeExtent(ts)
	laneDenseExtent := side.DenseExtent(ts)
	laneAccumExtent := spikegemm.MatrixShape{Row: ts.M, Column: ts.N}

	for r := 0; r < w.Policy.WarpShape.Row; r++ {
		for cIdx := 0; cIdx < w.Policy.WarpShape.Column; cIdx++ {
			mOff := r * ts.M
			nOff := cIdx * ts.N

			gatherTile(w.laneSpikes, laneSpikeExtent, spikes, spikeExtent, side.SpikeOrigin(mOff, nOff))
			gatherTile(w.laneDense, laneDenseExtent, dense, denseExtent, side.DenseOrigin(mOff, nOff))
			accumOrigin := spikegemm.MatrixCoord{Row: mOff, Column: nOff}
			gatherTile(w.laneAccum, laneAccumExtent, c, accumExtent, accumOrigin)

			w.mma.MultiplyAdd(w.laneAccum, w.laneSpikes, w.laneDense, w.laneAccum)

			scatterTile(d, accumExtent, w.laneAccum, laneAccumExtent, accumOrigin)
		}
	}
}

// gatherTile copies the sub-tile of src at origin into the packed dst.
func gatherTile[E any](
	dst spikegemm.Fragment[E], dstExtent spikegemm.MatrixShape,
	src spikegemm.Fragment[E], srcExtent spikegemm.MatrixShape,
	origin spikegemm.MatrixCoord,
) {
	srcRef := layout.MakePackedRef[E, layout.RowMajor](src, srcExtent)
	idx := 0
	for r := 0; r < dstExtent.Row; r++ {
		for c := 0; c < dstExtent.Column; c++ {
			dst[idx] = srcRef.At(spikegemm.MatrixCoord{Row: origin.Row + r, Column: origin.Column + c})
			idx++
		}
	}
}

// scatterTile copies the packed src into the sub-tile of dst at origin.
func scatterTile[E any](
	dst spikegemm.Fragment[E], dstExtent spikegemm.MatrixShape,
	src spikegemm.Fragment[E], srcExtent spikegemm.MatrixShape,
	origin spikegemm.MatrixCoord,
) {
	dstRef := layout.MakePackedRef[E, layout.RowMajor](dst, dstExtent)
	idx := 0
	for r := 0; r < srcExtent.Row; r++ {
		for c := 0; c < srcExtent.Column; c++ {
			dstRef.Set(spikegemm.MatrixCoord{Row: origin.Row + r, Column: origin.Column + c}, src[idx])
			idx++
		}
	}
}
