// Package spikegemm implements a tiled matrix-multiply-accumulate core in
// which one operand is a binary spike matrix. When an operand carries
// fired/not-fired semantics the inner-loop multiply degenerates to a
// predicated add, which is the entire point of this subsystem: a spiking
// layer's forward pass never touches the multiply unit.
//
// The core is organized as a three-level tiling hierarchy mirroring the
// execution model it targets:
//
//	threadblock - stages global-memory tiles through shared staging
//	              buffers with a double-buffered, software-pipelined
//	              mainloop over the K dimension (package threadblock)
//	warp        - partitions a threadblock's warp tile across lanes and
//	              drives the thread-level accumulate (package warp)
//	thread      - the serpentine scalar accumulate loop specialized for
//	              a binary operand (package thread)
//
// Shapes flow top-down at assembly time: the threadblock tile determines
// the warp tile, which with the lane-partition policy determines the
// per-thread tile. Results compose bottom-up at run time across K-tiles.
//
// Package device executes assembled threadblocks on goroutine warps and
// exposes the end-to-end GemmA and GemmB entry points.
package spikegemm
