// Package snngrow tolerance-based verification for floating-point comparisons
package snngrow

import (
	"fmt"
	"math"
)

// ToleranceConfig defines tolerance parameters for floating-point comparison
type ToleranceConfig struct {
	// AbsTol is the absolute tolerance for values near zero
	AbsTol float32

	// RelTol is the relative tolerance as a fraction of the larger value
	RelTol float32
}

// DefaultTolerance returns the default tolerance configuration. Spike
// accumulation is a sum of unscaled weights, so the defaults are tight.
func DefaultTolerance() ToleranceConfig {
	return ToleranceConfig{
		AbsTol: 1e-6,
		RelTol: 1e-5,
	}
}

// RelaxedTolerance returns relaxed tolerance for long accumulations
func RelaxedTolerance() ToleranceConfig {
	return ToleranceConfig{
		AbsTol: 1e-4,
		RelTol: 1e-3,
	}
}

// Float32NearEqual checks if two float32 values are equal within tolerance
func Float32NearEqual(a, b float32, tol ToleranceConfig) bool {
	if math.IsNaN(float64(a)) && math.IsNaN(float64(b)) {
		return true
	}
	if a == b {
		return true
	}

	diff := math.Abs(float64(a - b))
	if diff <= float64(tol.AbsTol) {
		return true
	}

	larger := math.Max(math.Abs(float64(a)), math.Abs(float64(b)))
	return diff <= larger*float64(tol.RelTol)
}

// CompareFloat32Slices compares two slices element-wise and returns an
// error describing the first mismatch.
func CompareFloat32Slices(got, want []float32, tol ToleranceConfig) error {
	if len(got) != len(want) {
		return fmt.Errorf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		if !Float32NearEqual(got[i], want[i], tol) {
			return fmt.Errorf("element %d: got %v, want %v (abs tol %v, rel tol %v)",
				i, got[i], want[i], tol.AbsTol, tol.RelTol)
		}
	}
	return nil
}
