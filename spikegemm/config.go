// Package spikegemm configuration constants
package spikegemm

// Warp and threadblock dimensions
const (
	// Lanes per warp, fixed by the execution model
	WarpSize = 32

	// Default number of warp rows / columns in a threadblock tile
	DefaultWarpRows    = 2
	DefaultWarpColumns = 2

	// Number of shared-memory stages in the pipelined mainloop
	PipelineStages = 2
)

// Default tile extents used when the caller does not pick its own
const (
	// Threadblock tile
	DefaultBlockTileM = 64
	DefaultBlockTileN = 64
	DefaultBlockTileK = 8

	// Warp tile
	DefaultWarpTileM = 32
	DefaultWarpTileN = 32
	DefaultWarpTileK = 8
)

// Cache sizes for different levels (in bytes)
const (
	// L1 cache size per core (typical for modern CPUs)
	L1CacheSize = 32 * 1024 // 32KB

	// L2 cache size per core (typical for modern CPUs)
	L2CacheSize = 256 * 1024 // 256KB
)

// Interleave4 is the column group width of the 4-wide interleaved layouts
// and the packing factor of the packed int8 accumulate path.
const Interleave4 = 4
