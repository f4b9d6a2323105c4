package arch

import (
	"github.com/leexyy0804/snngrow/spikegemm"
)

// SpikeMma4 is the 4-wide packed-integer accumulate, the predicated
// counterpart of a dp4a instruction: four int8 lanes are conditionally
// summed into a single int32 accumulator in one step. It is selected for
// interleaved-4 int8 operand pairs; while one operand carries spikes the
// capability flag that would pick it stays false, so it serves the dense
// parity path and direct callers.
type SpikeMma4 struct{}

// Op accumulates d += Σ v[i] over the fired lanes.
func (SpikeMma4) Op(d *int32, fired [spikegemm.Interleave4]spikegemm.Spike, v [spikegemm.Interleave4]int8) {
	var sum int32
	for i := 0; i < spikegemm.Interleave4; i++ {
		if fired[i] {
			sum += int32(v[i])
		}
	}
	*d += sum
}

// Mma4 is the dense 4-wide packed accumulate: d += Σ a[i]*b[i].
type Mma4 struct{}

// Op applies the packed multiply-add in place.
func (Mma4) Op(d *int32, a, b [spikegemm.Interleave4]int8) {
	var sum int32
	for i := 0; i < spikegemm.Interleave4; i++ {
		sum += int32(a[i]) * int32(b[i])
	}
	*d += sum
}
