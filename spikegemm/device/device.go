// Package device executes assembled spike GEMMs. Threadblocks are
// distributed over a worker pool sized to the host CPU; within a
// threadblock each warp runs on its own goroutine, synchronized by the
// pipeline's barrier. Lanes within a warp execute sequentially in lane
// order, which models the lock-step warp without per-lane scheduling.
package device

import (
	"runtime"
	"sync"
)

// Dim3 represents 3D dimensions for grid and block configurations.
type Dim3 struct {
	X, Y, Z int
}

// Size returns the number of elements covered by the dimensions.
func (d Dim3) Size() int {
	x, y, z := d.X, d.Y, d.Z
	if x == 0 {
		x = 1
	}
	if y == 0 {
		y = 1
	}
	if z == 0 {
		z = 1
	}
	return x * y * z
}

// launchBlocks runs fn once per block of the grid, distributing blocks
// over workers. Each worker processes a contiguous range of blocks to
// keep a block's staging tiles warm in its cache.
func launchBlocks(grid Dim3, workers int, fn func(blockRow, blockColumn int)) {
	gridSize := grid.Size()
	if gridSize == 0 {
		return
	}

	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if gridSize < workers {
		workers = gridSize
	}
	blocksPerWorker := (gridSize + workers - 1) / workers

	var wg sync.WaitGroup
	wg.Add(workers)
	for workerID := 0; workerID < workers; workerID++ {
		start := workerID * blocksPerWorker
		end := start + blocksPerWorker
		if end > gridSize {
			end = gridSize
		}
		go func(start, end int) {
			defer wg.Done()
			for blockID := start; blockID < end; blockID++ {
				fn(blockID/grid.X, blockID%grid.X)
			}
		}(start, end)
	}
	wg.Wait()
}
