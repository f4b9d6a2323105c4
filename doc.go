// Package snngrow implements spiking neural network building blocks on
// top of a spike-aware GEMM core. Neuron layers emit binary fired/not-fired
// activations, and the linear layers feed those activations straight into
// the spikegemm hierarchy, where the binary operand turns every multiply
// into a predicated add.
//
// The GEMM core lives under spikegemm/ and is organized like a GPU kernel:
// thread, warp, threadblock, and device levels, each consuming tiles
// produced by the level above. This package is the user-facing surface:
// IF and LIF neurons, spike-driven linear layers, and naive reference
// implementations for verification.
package snngrow
