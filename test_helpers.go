package snngrow

import (
	"testing"
)

// CheckFloat32OrFail compares got against want within tolerance and fails
// the test with the first mismatch.
func CheckFloat32OrFail(t testing.TB, got, want []float32, tol ToleranceConfig) {
	t.Helper()
	if err := CompareFloat32Slices(got, want, tol); err != nil {
		t.Fatalf("Result mismatch: %v", err)
	}
}

// ForwardOrFail runs a SpikeLinear forward pass and fails the test on
// error.
func ForwardOrFail(t testing.TB, l *SpikeLinear, spikes []bool, batch int) []float32 {
	t.Helper()
	out, err := l.Forward(spikes, batch)
	if err != nil {
		t.Fatalf("Forward failed: %v", err)
	}
	return out
}
