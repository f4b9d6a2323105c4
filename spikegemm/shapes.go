package spikegemm

import "fmt"

// GemmShape describes the extents of a matrix multiply-accumulate problem
// at one level of the tiling hierarchy: C[M×N] += A[M×K] * B[K×N].
// Shapes are fixed when a GEMM is assembled and never change afterwards.
type GemmShape struct {
	M, N, K int
}

// MK returns the number of elements in an A-operand tile.
func (s GemmShape) MK() int { return s.M * s.K }

// KN returns the number of elements in a B-operand tile.
func (s GemmShape) KN() int { return s.K * s.N }

// MN returns the number of elements in a C/D tile.
func (s GemmShape) MN() int { return s.M * s.N }

func (s GemmShape) String() string {
	return fmt.Sprintf("%dx%dx%d", s.M, s.N, s.K)
}

// MatrixShape describes the extents of a 2D tile.
type MatrixShape struct {
	Row, Column int
}

// Count returns the number of elements in the tile.
func (s MatrixShape) Count() int { return s.Row * s.Column }

func (s MatrixShape) String() string {
	return fmt.Sprintf("%dx%d", s.Row, s.Column)
}

// MatrixCoord is a (row, column) position within a tile or matrix.
type MatrixCoord struct {
	Row, Column int
}

// Divides reports whether inner evenly tiles outer along both axes.
func (s MatrixShape) Divides(outer MatrixShape) bool {
	if s.Row <= 0 || s.Column <= 0 {
		return false
	}
	return outer.Row%s.Row == 0 && outer.Column%s.Column == 0
}

// Assert panics when an assembly-time invariant does not hold. Shapes and
// policies are fixed when a GEMM is assembled, so a failure here is a
// programmer error, the Go stand-in for a template static_assert.
func Assert(cond bool, format string, args ...interface{}) {
	if !cond {
		panic("spikegemm: " + fmt.Sprintf(format, args...))
	}
}

func assertShape(cond bool, format string, args ...interface{}) {
	Assert(cond, format, args...)
}

// AssertTiling panics unless inner evenly divides outer along every axis.
func AssertTiling(outer, inner GemmShape) {
	assertShape(inner.M > 0 && inner.N > 0 && inner.K > 0,
		"inner tile %v must have positive extents", inner)
	assertShape(outer.M%inner.M == 0 && outer.N%inner.N == 0 && outer.K%inner.K == 0,
		"tile %v does not evenly divide %v", inner, outer)
}
