package spikegemm

// Spike is a binary fired/not-fired activation. A spike operand replaces
// the multiply in the inner GEMM loop with a predicated add: the dense
// scalar is accumulated only when the spike is set.
type Spike = bool

// Element constrains the numeric types usable as a dense operand or
// accumulator. Exactly one of A and B may be a spike operand per
// instantiation; C and D are always Element-typed.
type Element interface {
	~int8 | ~int32 | ~float32 | ~float64
}

// Fragment is flat storage for one tile's elements at a given level of the
// decomposition. A fragment is register-like: it is created when an
// iterator loads a tile and discarded at the end of the pipeline stage
// that consumed it.
type Fragment[T any] []T

// NewFragment allocates a zeroed fragment of n elements.
func NewFragment[T any](n int) Fragment[T] {
	return make(Fragment[T], n)
}

// Clear zeroes the fragment in place.
func (f Fragment[T]) Clear() {
	var zero T
	for i := range f {
		f[i] = zero
	}
}

// CopyFrom copies src into f. The lengths must match.
func (f Fragment[T]) CopyFrom(src Fragment[T]) {
	assertShape(len(f) == len(src),
		"fragment size mismatch: dst %d, src %d", len(f), len(src))
	copy(f, src)
}
