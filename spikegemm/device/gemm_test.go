package device

import (
	"math/rand"
	"testing"

	"github.com/leexyy0804/snngrow/spikegemm"
	"github.com/leexyy0804/snngrow/spikegemm/layout"
	"github.com/leexyy0804/snngrow/spikegemm/threadblock"
	"github.com/leexyy0804/snngrow/spikegemm/warp"
)

func testConfig() Config {
	return Config{
		Block: threadblock.Config{
			Threadblock: spikegemm.GemmShape{M: 8, N: 8, K: 4},
			Warp:        spikegemm.GemmShape{M: 4, N: 4, K: 4},
			Policy: warp.Policy{
				WarpShape:    spikegemm.MatrixShape{Row: 2, Column: 2},
				LaneMmaShape: spikegemm.GemmShape{M: 2, N: 2, K: 1},
			},
			Stages:     spikegemm.PipelineStages,
			AlignmentA: 1,
			AlignmentB: 1,
		},
	}
}

func refGemmA[T spikegemm.Element](problem spikegemm.GemmShape, spikes []spikegemm.Spike, dense []T, c []T) []T {
	d := make([]T, problem.MN())
	for m := 0; m < problem.M; m++ {
		for n := 0; n < problem.N; n++ {
			sum := c[m*problem.N+n]
			for k := 0; k < problem.K; k++ {
				if spikes[m*problem.K+k] {
					sum += dense[k*problem.N+n]
				}
			}
			d[m*problem.N+n] = sum
		}
	}
	return d
}

func refGemmB[T spikegemm.Element](problem spikegemm.GemmShape, dense []T, spikes []spikegemm.Spike, c []T) []T {
	d := make([]T, problem.MN())
	for m := 0; m < problem.M; m++ {
		for n := 0; n < problem.N; n++ {
			sum := c[m*problem.N+n]
			for k := 0; k < problem.K; k++ {
				if spikes[k*problem.N+n] {
					sum += dense[m*problem.K+k]
				}
			}
			d[m*problem.N+n] = sum
		}
	}
	return d
}

func randomSpikes(rng *rand.Rand, n int) []spikegemm.Spike {
	s := make([]spikegemm.Spike, n)
	for i := range s {
		s[i] = rng.Intn(2) == 1
	}
	return s
}

func randomInts(rng *rand.Rand, n int) []int32 {
	f := make([]int32, n)
	for i := range f {
		f[i] = int32(rng.Intn(19) - 9)
	}
	return f
}

// Odd shapes exercise partial tiles along every dimension at once.
func TestGemmAMatchesReference(t *testing.T) {
	cfg := testConfig()
	rng := rand.New(rand.NewSource(30))

	problems := []spikegemm.GemmShape{
		{M: 8, N: 8, K: 4},   // exactly one block, one tile
		{M: 10, N: 6, K: 5},  // partial everything
		{M: 16, N: 24, K: 8}, // multiple blocks
		{M: 1, N: 1, K: 1},
		{M: 3, N: 17, K: 9},
	}
	for _, problem := range problems {
		spikes := randomSpikes(rng, problem.MK())
		dense := randomInts(rng, problem.KN())
		c := randomInts(rng, problem.MN())
		d := make([]int32, problem.MN())

		if err := GemmA(cfg, problem, spikes, dense, c, d); err != nil {
			t.Fatalf("%v: GemmA failed: %v", problem, err)
		}

		want := refGemmA(problem, spikes, dense, c)
		for i := range want {
			if d[i] != want[i] {
				t.Errorf("%v: d[%d] = %d, want %d", problem, i, d[i], want[i])
			}
		}
	}
}

func TestGemmBMatchesReference(t *testing.T) {
	cfg := testConfig()
	rng := rand.New(rand.NewSource(31))

	problems := []spikegemm.GemmShape{
		{M: 8, N: 8, K: 4},
		{M: 6, N: 10, K: 5},
		{M: 24, N: 16, K: 13},
	}
	for _, problem := range problems {
		spikes := randomSpikes(rng, problem.KN())
		dense := randomInts(rng, problem.MK())
		c := randomInts(rng, problem.MN())
		d := make([]int32, problem.MN())

		if err := GemmB(cfg, problem, dense, spikes, c, d); err != nil {
			t.Fatalf("%v: GemmB failed: %v", problem, err)
		}

		want := refGemmB(problem, dense, spikes, c)
		for i := range want {
			if d[i] != want[i] {
				t.Errorf("%v: d[%d] = %d, want %d", problem, i, d[i], want[i])
			}
		}
	}
}

func TestGemmAFloat32(t *testing.T) {
	cfg := testConfig()
	rng := rand.New(rand.NewSource(32))
	problem := spikegemm.GemmShape{M: 10, N: 6, K: 5}

	spikes := randomSpikes(rng, problem.MK())
	dense := make([]float32, problem.KN())
	for i := range dense {
		dense[i] = rng.Float32()*2 - 1
	}
	c := make([]float32, problem.MN())
	for i := range c {
		c[i] = rng.Float32()
	}
	d := make([]float32, problem.MN())

	if err := GemmA(cfg, problem, spikes, dense, c, d); err != nil {
		t.Fatalf("GemmA failed: %v", err)
	}

	want := refGemmA(problem, spikes, dense, c)
	for i := range want {
		diff := d[i] - want[i]
		if diff < -1e-5 || diff > 1e-5 {
			t.Errorf("d[%d] = %v, want %v", i, d[i], want[i])
		}
	}
}

// The epilogue reads C before writing D, so running in place must work.
func TestGemmAAliasedAccumulators(t *testing.T) {
	cfg := testConfig()
	rng := rand.New(rand.NewSource(33))
	problem := spikegemm.GemmShape{M: 10, N: 6, K: 5}

	spikes := randomSpikes(rng, problem.MK())
	dense := randomInts(rng, problem.KN())
	c := randomInts(rng, problem.MN())
	want := refGemmA(problem, spikes, dense, c)

	inPlace := append([]int32(nil), c...)
	if err := GemmA(cfg, problem, spikes, dense, inPlace, inPlace); err != nil {
		t.Fatalf("GemmA failed: %v", err)
	}
	for i := range want {
		if inPlace[i] != want[i] {
			t.Errorf("d[%d] = %d, want %d", i, inPlace[i], want[i])
		}
	}
}

func TestGemmSingleWorker(t *testing.T) {
	cfg := testConfig()
	cfg.Workers = 1
	rng := rand.New(rand.NewSource(34))
	problem := spikegemm.GemmShape{M: 16, N: 16, K: 6}

	spikes := randomSpikes(rng, problem.MK())
	dense := randomInts(rng, problem.KN())
	c := randomInts(rng, problem.MN())
	d := make([]int32, problem.MN())

	if err := GemmA(cfg, problem, spikes, dense, c, d); err != nil {
		t.Fatalf("GemmA failed: %v", err)
	}
	want := refGemmA(problem, spikes, dense, c)
	for i := range want {
		if d[i] != want[i] {
			t.Errorf("d[%d] = %d, want %d", i, d[i], want[i])
		}
	}
}

func TestGemmZeroSizedProblem(t *testing.T) {
	cfg := testConfig()
	if err := GemmA[int32](cfg, spikegemm.GemmShape{M: 0, N: 8, K: 4}, nil, nil, nil, nil); err != nil {
		t.Errorf("M=0 problem errored: %v", err)
	}

	// K=0 leaves D equal to C.
	problem := spikegemm.GemmShape{M: 4, N: 4, K: 0}
	c := []int32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	d := make([]int32, problem.MN())
	if err := GemmA(cfg, problem, nil, nil, c, d); err != nil {
		t.Fatalf("K=0 problem errored: %v", err)
	}
	for i := range c {
		if d[i] != c[i] {
			t.Errorf("d[%d] = %d, want %d", i, d[i], c[i])
		}
	}
}

func TestGemmValidation(t *testing.T) {
	cfg := testConfig()
	problem := spikegemm.GemmShape{M: 4, N: 4, K: 4}

	err := GemmA[int32](cfg, spikegemm.GemmShape{M: -1, N: 4, K: 4}, nil, nil, nil, nil)
	if !spikegemm.IsInvalidArgError(err) {
		t.Errorf("negative shape: got %v, want an InvalidArgument error", err)
	}

	short := make([]spikegemm.Spike, 3)
	err = GemmA(cfg, problem, short, make([]int32, 16), make([]int32, 16), make([]int32, 16))
	if err == nil {
		t.Error("short spike operand did not error")
	}

	err = GemmB(cfg, problem, make([]int32, 16), make([]spikegemm.Spike, 16), make([]int32, 2), make([]int32, 16))
	if err == nil {
		t.Error("short accumulator did not error")
	}
}

// Execute with explicit refs supports gather without repacking operands.
func TestExecuteGather(t *testing.T) {
	cfg := testConfig()
	rng := rand.New(rand.NewSource(35))
	problem := spikegemm.GemmShape{M: 8, N: 8, K: 4}

	aShape := spikegemm.MatrixShape{Row: problem.M, Column: problem.K}
	bShape := spikegemm.MatrixShape{Row: problem.K, Column: problem.N}
	cShape := spikegemm.MatrixShape{Row: problem.M, Column: problem.N}

	spikes := randomSpikes(rng, aShape.Count())
	dense := randomInts(rng, bShape.Count())
	c := randomInts(rng, cShape.Count())
	d := make([]int32, cShape.Count())

	gather := []int{1, 0, 3, 2, 5, 4, 7, 6}
	cfg.Block.GatherA = gather

	err := Execute[spikegemm.SideA](cfg, problem,
		layout.MakePackedRef[spikegemm.Spike, layout.RowMajor](spikes, aShape), aShape,
		layout.MakePackedRef[int32, layout.RowMajor](dense, bShape), bShape,
		layout.MakePackedRef[int32, layout.RowMajor](c, cShape),
		layout.MakePackedRef[int32, layout.RowMajor](d, cShape))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	gathered := make([]spikegemm.Spike, len(spikes))
	for m := 0; m < problem.M; m++ {
		copy(gathered[m*problem.K:(m+1)*problem.K], spikes[gather[m]*problem.K:(gather[m]+1)*problem.K])
	}
	want := refGemmA(problem, gathered, dense, c)
	for i := range want {
		if d[i] != want[i] {
			t.Errorf("d[%d] = %d, want %d", i, d[i], want[i])
		}
	}
}

func BenchmarkGemmA(b *testing.B) {
	cfg := DefaultConfig()
	rng := rand.New(rand.NewSource(50))
	problem := spikegemm.GemmShape{M: 256, N: 256, K: 128}

	spikes := randomSpikes(rng, problem.MK())
	dense := make([]float32, problem.KN())
	for i := range dense {
		dense[i] = rng.Float32()
	}
	c := make([]float32, problem.MN())
	d := make([]float32, problem.MN())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := GemmA(cfg, problem, spikes, dense, c, d); err != nil {
			b.Fatal(err)
		}
	}
	b.SetBytes(int64(problem.MN()) * 4)
}

func TestDim3Size(t *testing.T) {
	tests := []struct {
		d    Dim3
		want int
	}{
		{Dim3{}, 1},
		{Dim3{X: 3}, 3},
		{Dim3{X: 2, Y: 3, Z: 4}, 24},
		{Dim3{X: 0, Y: 5}, 5},
	}
	for _, tt := range tests {
		if got := tt.d.Size(); got != tt.want {
			t.Errorf("%+v.Size() = %d, want %d", tt.d, got, tt.want)
		}
	}
}
