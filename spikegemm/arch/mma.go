// Package arch holds the leaf scalar multiply-accumulate primitives the
// thread-level loops bottom out in. With a spike operand the multiply
// degenerates to a predicated add, so the hot path never multiplies.
package arch

import (
	"github.com/leexyy0804/snngrow/spikegemm"
)

// SpikeMma is the 1x1x1 multiply-accumulate for one spike and one dense
// scalar: d += v when the spike fired, otherwise d is left untouched.
type SpikeMma[T spikegemm.Element] struct{}

// Op applies the predicated add in place.
func (SpikeMma[T]) Op(d *T, fired spikegemm.Spike, v T) {
	if fired {
		*d += v
	}
}

// Mma is the dense 1x1x1 multiply-accumulate: d += a*b. It exists for
// interface parity with the spike primitive; the spike specializations
// never call it.
type Mma[T spikegemm.Element] struct{}

// Op applies the fused multiply-add in place.
func (Mma[T]) Op(d *T, a, b T) {
	*d += a * b
}
