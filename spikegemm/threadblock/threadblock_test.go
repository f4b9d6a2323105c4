package threadblock

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/leexyy0804/snngrow/spikegemm"
	"github.com/leexyy0804/snngrow/spikegemm/layout"
	"github.com/leexyy0804/snngrow/spikegemm/warp"
)

func testConfig() Config {
	return Config{
		Threadblock: spikegemm.GemmShape{M: 8, N: 8, K: 4},
		Warp:        spikegemm.GemmShape{M: 4, N: 4, K: 4},
		Policy: warp.Policy{
			WarpShape:    spikegemm.MatrixShape{Row: 2, Column: 2},
			LaneMmaShape: spikegemm.GemmShape{M: 2, N: 2, K: 1},
		},
		Stages:     spikegemm.PipelineStages,
		AlignmentA: 1,
		AlignmentB: 1,
	}
}

func TestNewSpikeMmaRejectsOtherStageCounts(t *testing.T) {
	cfg := testConfig()
	cfg.Stages = 3
	_, err := NewSpikeMma[spikegemm.SideA, int32, layout.RowMajor, layout.RowMajor, layout.RowMajor](cfg)
	if err == nil {
		t.Fatal("3-stage config did not error")
	}
	if !spikegemm.IsNotImplementedError(err) {
		t.Errorf("got %v, want a NotImplemented error", err)
	}
}

func TestNewSpikeMmaRejectsBadAlignment(t *testing.T) {
	cfg := testConfig()
	cfg.AlignmentA = 0
	if _, err := NewSpikeMma[spikegemm.SideA, int32, layout.RowMajor, layout.RowMajor, layout.RowMajor](cfg); !spikegemm.IsInvalidArgError(err) {
		t.Errorf("zero alignment: got %v, want an InvalidArgument error", err)
	}

	cfg = testConfig()
	cfg.AlignmentB = 3 // does not divide tile K of 4
	if _, err := NewSpikeMma[spikegemm.SideA, int32, layout.RowMajor, layout.RowMajor, layout.RowMajor](cfg); !spikegemm.IsInvalidArgError(err) {
		t.Errorf("non-dividing alignment: got %v, want an InvalidArgument error", err)
	}
}

func TestKTiles(t *testing.T) {
	mma, err := NewSpikeMma[spikegemm.SideA, int32, layout.RowMajor, layout.RowMajor, layout.RowMajor](testConfig())
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct{ k, want int }{
		{0, 0}, {1, 1}, {4, 1}, {5, 2}, {8, 2}, {9, 3},
	}
	for _, tt := range tests {
		if got := mma.KTiles(tt.k); got != tt.want {
			t.Errorf("KTiles(%d) = %d, want %d", tt.k, got, tt.want)
		}
	}
}

func TestCoreDecomposition(t *testing.T) {
	cfg := testConfig()
	core := NewCore[spikegemm.SideA](cfg.Threadblock, cfg.Warp, cfg.Policy, cfg.Stages)

	if core.Warps() != 4 {
		t.Errorf("Warps() = %d, want 4", core.Warps())
	}
	if core.KGroups != 4 {
		t.Errorf("KGroups = %d, want 4", core.KGroups)
	}
	if core.SpikeStaged != (spikegemm.MatrixShape{Row: 8, Column: 4}) {
		t.Errorf("SpikeStaged = %v, want {8 4}", core.SpikeStaged)
	}
	if core.DenseStaged != (spikegemm.MatrixShape{Row: 4, Column: 8}) {
		t.Errorf("DenseStaged = %v, want {4 8}", core.DenseStaged)
	}
	if core.SpikeStripe != (spikegemm.MatrixShape{Row: 2, Column: 4}) {
		t.Errorf("SpikeStripe = %v, want {2 4}", core.SpikeStripe)
	}
	if core.DenseStripe != (spikegemm.MatrixShape{Row: 1, Column: 8}) {
		t.Errorf("DenseStripe = %v, want {1 8}", core.DenseStripe)
	}

	row, col := core.WarpGrid(3)
	if row != 1 || col != 1 {
		t.Errorf("WarpGrid(3) = (%d, %d), want (1, 1)", row, col)
	}
	if got := core.SpikeStripeOrigin(2); got != (spikegemm.MatrixCoord{Row: 4}) {
		t.Errorf("SpikeStripeOrigin(2) = %v, want {4 0}", got)
	}
}

func TestCoreRejectsMismatchedK(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("warp tile K differing from threadblock K did not panic")
		}
	}()
	cfg := testConfig()
	NewCore[spikegemm.SideA](cfg.Threadblock, spikegemm.GemmShape{M: 4, N: 4, K: 2}, cfg.Policy, cfg.Stages)
}

// runBlock executes one threadblock over the given operands and returns
// the assembled M×N accumulator.
func runBlock[S spikegemm.Side](
	t *testing.T,
	cfg Config,
	problem spikegemm.GemmShape,
	spikes []spikegemm.Spike, spikeExtent spikegemm.MatrixShape,
	dense []int32, denseExtent spikegemm.MatrixShape,
) []int32 {
	t.Helper()

	mma, err := NewSpikeMma[S, int32, layout.RowMajor, layout.RowMajor, layout.RowMajor](cfg)
	if err != nil {
		t.Fatal(err)
	}
	spikeRef := layout.MakePackedRef[spikegemm.Spike, layout.RowMajor](spikes, spikeExtent)
	denseRef := layout.MakePackedRef[int32, layout.RowMajor](dense, denseExtent)

	pipeline := mma.NewPipeline()
	kTiles := mma.KTiles(problem.K)
	out := make([]int32, cfg.Threadblock.MN())

	var wg sync.WaitGroup
	wg.Add(mma.Core.Warps())
	for w := 0; w < mma.Core.Warps(); w++ {
		go func(warpID int) {
			defer wg.Done()
			itSpikes := mma.SpikeIterator(spikeRef, spikeExtent, 0, 0, warpID)
			itDense := mma.DenseIterator(denseRef, denseExtent, 0, 0, warpID)
			accum := pipeline.AccumFragment()
			pipeline.RunWarp(warpID, kTiles, itSpikes, itDense, accum)

			wr, wc := mma.Core.WarpGrid(warpID)
			for r := 0; r < cfg.Warp.M; r++ {
				for c := 0; c < cfg.Warp.N; c++ {
					out[(wr*cfg.Warp.M+r)*cfg.Threadblock.N+wc*cfg.Warp.N+c] = accum[r*cfg.Warp.N+c]
				}
			}
		}(w)
	}
	wg.Wait()
	return out
}

// K of 5 with a tile depth of 4 runs a full tile plus a partial one; the
// masked tail must contribute nothing.
func TestMainloopPartialKTileSideA(t *testing.T) {
	cfg := testConfig()
	problem := spikegemm.GemmShape{M: 8, N: 8, K: 5}
	rng := rand.New(rand.NewSource(20))

	aShape := spikegemm.MatrixShape{Row: problem.M, Column: problem.K}
	bShape := spikegemm.MatrixShape{Row: problem.K, Column: problem.N}
	spikes := make([]spikegemm.Spike, aShape.Count())
	for i := range spikes {
		spikes[i] = rng.Intn(2) == 1
	}
	dense := make([]int32, bShape.Count())
	for i := range dense {
		dense[i] = int32(rng.Intn(19) - 9)
	}

	got := runBlock[spikegemm.SideA](t, cfg, problem, spikes, aShape, dense, bShape)

	for m := 0; m < problem.M; m++ {
		for n := 0; n < problem.N; n++ {
			var want int32
			for k := 0; k < problem.K; k++ {
				if spikes[m*problem.K+k] {
					want += dense[k*problem.N+n]
				}
			}
			if got[m*problem.N+n] != want {
				t.Errorf("d[%d,%d] = %d, want %d", m, n, got[m*problem.N+n], want)
			}
		}
	}
}

func TestMainloopPartialKTileSideB(t *testing.T) {
	cfg := testConfig()
	problem := spikegemm.GemmShape{M: 8, N: 8, K: 5}
	rng := rand.New(rand.NewSource(21))

	aShape := spikegemm.MatrixShape{Row: problem.M, Column: problem.K}
	bShape := spikegemm.MatrixShape{Row: problem.K, Column: problem.N}
	spikes := make([]spikegemm.Spike, bShape.Count())
	for i := range spikes {
		spikes[i] = rng.Intn(2) == 1
	}
	dense := make([]int32, aShape.Count())
	for i := range dense {
		dense[i] = int32(rng.Intn(19) - 9)
	}

	got := runBlock[spikegemm.SideB](t, cfg, problem, spikes, bShape, dense, aShape)

	for m := 0; m < problem.M; m++ {
		for n := 0; n < problem.N; n++ {
			var want int32
			for k := 0; k < problem.K; k++ {
				if spikes[k*problem.N+n] {
					want += dense[m*problem.K+k]
				}
			}
			if got[m*problem.N+n] != want {
				t.Errorf("d[%d,%d] = %d, want %d", m, n, got[m*problem.N+n], want)
			}
		}
	}
}

// Gather on the spike operand's rows must behave as if the operand had
// been physically reindexed.
func TestMainloopGatherSpikeRows(t *testing.T) {
	cfg := testConfig()
	problem := spikegemm.GemmShape{M: 8, N: 8, K: 4}
	rng := rand.New(rand.NewSource(22))

	aShape := spikegemm.MatrixShape{Row: problem.M, Column: problem.K}
	bShape := spikegemm.MatrixShape{Row: problem.K, Column: problem.N}
	spikes := make([]spikegemm.Spike, aShape.Count())
	for i := range spikes {
		spikes[i] = rng.Intn(2) == 1
	}
	dense := make([]int32, bShape.Count())
	for i := range dense {
		dense[i] = int32(rng.Intn(19) - 9)
	}
	gather := []int{7, 6, 5, 4, 3, 2, 1, 0}
	cfg.GatherA = gather

	got := runBlock[spikegemm.SideA](t, cfg, problem, spikes, aShape, dense, bShape)

	for m := 0; m < problem.M; m++ {
		for n := 0; n < problem.N; n++ {
			var want int32
			for k := 0; k < problem.K; k++ {
				if spikes[gather[m]*problem.K+k] {
					want += dense[k*problem.N+n]
				}
			}
			if got[m*problem.N+n] != want {
				t.Errorf("d[%d,%d] = %d, want %d", m, n, got[m*problem.N+n], want)
			}
		}
	}
}

func TestPredicatedIteratorMasksOutOfBounds(t *testing.T) {
	extent := spikegemm.MatrixShape{Row: 3, Column: 2}
	data := []int32{1, 2, 3, 4, 5, 6}
	ref := layout.MakePackedRef[int32, layout.RowMajor](data, extent)

	it := NewPredicatedTileIterator(ref, extent,
		spikegemm.MatrixShape{Row: 2, Column: 2},
		spikegemm.MatrixCoord{Row: 2, Column: 0},
		spikegemm.MatrixCoord{Row: 0, Column: 2})

	frag := it.Fragment()
	it.Load(frag)
	want := []int32{5, 6, 0, 0} // row 3 is out of bounds
	for i := range want {
		if frag[i] != want[i] {
			t.Errorf("frag[%d] = %d, want %d", i, frag[i], want[i])
		}
	}

	// One K-step right: columns 2..3 are fully out of bounds.
	it.Next()
	it.Load(frag)
	for i := range frag {
		if frag[i] != 0 {
			t.Errorf("fully masked frag[%d] = %d, want 0", i, frag[i])
		}
	}

	it.Rewind()
	it.Load(frag)
	for i := range want {
		if frag[i] != want[i] {
			t.Errorf("rewound frag[%d] = %d, want %d", i, frag[i], want[i])
		}
	}
}

func TestPredicatedIteratorGatherBounds(t *testing.T) {
	extent := spikegemm.MatrixShape{Row: 4, Column: 2}
	data := []int32{1, 2, 3, 4, 5, 6, 7, 8}
	ref := layout.MakePackedRef[int32, layout.RowMajor](data, extent)

	it := NewPredicatedTileIterator(ref, extent,
		spikegemm.MatrixShape{Row: 3, Column: 2},
		spikegemm.MatrixCoord{}, spikegemm.MatrixCoord{})
	it.SetGather([]int{3, 1}, false)

	frag := it.Fragment()
	it.Load(frag)
	// Row 0 gathers storage row 3, row 1 gathers row 1, row 2 is beyond the
	// index array and masks to zero.
	want := []int32{7, 8, 3, 4, 0, 0}
	for i := range want {
		if frag[i] != want[i] {
			t.Errorf("frag[%d] = %d, want %d", i, frag[i], want[i])
		}
	}
}

func TestPredicatedIteratorPermute(t *testing.T) {
	extent := spikegemm.MatrixShape{Row: 3, Column: 2}
	data := []int32{1, 2, 3, 4, 5, 6}
	ref := layout.MakePackedRef[int32, layout.RowMajor](data, extent)

	it := NewPredicatedTileIterator(ref, extent, extent,
		spikegemm.MatrixCoord{}, spikegemm.MatrixCoord{})
	it.SetPermute(layout.RowReverse{})

	frag := it.Fragment()
	it.Load(frag)
	want := []int32{5, 6, 3, 4, 1, 2}
	for i := range want {
		if frag[i] != want[i] {
			t.Errorf("frag[%d] = %d, want %d", i, frag[i], want[i])
		}
	}
}

func TestSmemTileIteratorStore(t *testing.T) {
	staged := spikegemm.MatrixShape{Row: 4, Column: 2}
	dst := layout.MakePackedRef[int32, layout.RowMajor](make([]int32, staged.Count()), staged)

	it := NewSmemTileIterator(dst, spikegemm.MatrixShape{Row: 2, Column: 2},
		spikegemm.MatrixCoord{Row: 2, Column: 0})
	it.Store(spikegemm.Fragment[int32]{1, 2, 3, 4})

	want := []int32{0, 0, 0, 0, 1, 2, 3, 4}
	for i := range want {
		if dst.Data[i] != want[i] {
			t.Errorf("staged[%d] = %d, want %d", i, dst.Data[i], want[i])
		}
	}
}
