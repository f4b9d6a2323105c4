// Command spikebench measures the spike GEMM against the naive reference
// and reports throughput and sparsity-dependent speedups.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"runtime"
	"time"

	"github.com/leexyy0804/snngrow"
	"github.com/leexyy0804/snngrow/spikegemm"
	"github.com/leexyy0804/snngrow/spikegemm/device"
)

func main() {
	var (
		m       = flag.Int("m", 1024, "Rows of the output")
		n       = flag.Int("n", 1024, "Columns of the output")
		k       = flag.Int("k", 1024, "Reduction depth")
		density = flag.Float64("density", 0.1, "Firing probability of the spike operand")
		side    = flag.String("side", "A", "Which operand carries spikes: A or B")
		iters   = flag.Int("iters", 10, "Timed iterations")
		workers = flag.Int("workers", 0, "Worker goroutines, 0 for one per CPU")
		verify  = flag.Bool("verify", true, "Check the result against the reference")
		seed    = flag.Int64("seed", 42, "RNG seed")
	)
	flag.Parse()

	if *side != "A" && *side != "B" {
		log.Fatalf("invalid -side %q: want A or B", *side)
	}

	fmt.Println("=== snngrow spike GEMM benchmark ===")
	fmt.Printf("Date: %s\n", time.Now().Format(time.RFC3339))
	fmt.Printf("Go Version: %s\n", runtime.Version())
	fmt.Printf("GOARCH: %s\n", runtime.GOARCH)
	fmt.Printf("CPU: %d cores\n", runtime.NumCPU())
	fmt.Printf("Problem: %dx%dx%d, side %s, density %.2f\n", *m, *n, *k, *side, *density)

	rng := rand.New(rand.NewSource(*seed))
	problem := spikegemm.GemmShape{M: *m, N: *n, K: *k}

	spikeCount := problem.MK()
	denseCount := problem.KN()
	if *side == "B" {
		spikeCount, denseCount = problem.KN(), problem.MK()
	}
	spikes := snngrow.RandomSpikes(rng, spikeCount, *density)
	dense := snngrow.RandomFloats(rng, denseCount)
	c := snngrow.RandomFloats(rng, problem.MN())
	d := make([]float32, problem.MN())

	cfg := device.DefaultConfig()
	cfg.Workers = *workers

	run := func() error {
		if *side == "A" {
			return device.GemmA(cfg, problem, spikes, dense, c, d)
		}
		return device.GemmB(cfg, problem, dense, spikes, c, d)
	}

	// Warmup
	if err := run(); err != nil {
		log.Fatalf("spike GEMM failed: %v", err)
	}

	start := time.Now()
	for i := 0; i < *iters; i++ {
		if err := run(); err != nil {
			log.Fatalf("spike GEMM failed: %v", err)
		}
	}
	elapsed := time.Since(start)

	perIter := elapsed / time.Duration(*iters)
	ops := 2 * float64(*m) * float64(*n) * float64(*k)
	gops := ops / perIter.Seconds() / 1e9
	fmt.Printf("Tiled:     %v/iter, %.2f GOP/s\n", perIter, gops)

	ref := snngrow.Reference{}
	want := make([]float32, problem.MN())
	refStart := time.Now()
	if *side == "A" {
		ref.GemmA(problem, spikes, dense, c, want)
	} else {
		ref.GemmB(problem, dense, spikes, c, want)
	}
	refElapsed := time.Since(refStart)
	fmt.Printf("Reference: %v/iter, %.2f GOP/s\n", refElapsed, ops/refElapsed.Seconds()/1e9)

	if *verify {
		if err := snngrow.CompareFloat32Slices(d, want, snngrow.DefaultTolerance()); err != nil {
			log.Fatalf("verification failed: %v", err)
		}
		fmt.Println("Verification: PASS")
	}
}
