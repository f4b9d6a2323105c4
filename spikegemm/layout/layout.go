// Package layout defines the coordinate-to-offset addressing functions for
// 2D tiles and the non-owning TensorRef view over flat storage. Layouts
// are plain value types; generic code over a concrete layout type is
// monomorphized, so addressing never goes through an interface in a
// compute loop.
package layout

import (
	"github.com/leexyy0804/snngrow/spikegemm"
)

// Layout is the runtime-inspectable face of every layout type. Generic
// code should use the Matrix constraint instead.
type Layout interface {
	Offset(c spikegemm.MatrixCoord) int
}

// Matrix constrains a layout type parameter: an addressing function plus a
// Packed constructor producing the contiguous layout for a given extent.
type Matrix[L any] interface {
	Offset(c spikegemm.MatrixCoord) int
	Packed(extent spikegemm.MatrixShape) L
}

// Operand constrains the layouts accepted for a global A or B operand.
type Operand[L any] interface {
	RowMajor | ColumnMajor | RowMajorInterleaved4 | ColumnMajorInterleaved4
	Matrix[L]
}

// Base constrains the layouts that reach the thread level. Interleaved
// operands are repacked into one of these by the warp iterators.
type Base[L any] interface {
	RowMajor | ColumnMajor
	Matrix[L]
}

// Accumulator constrains the accumulator (C/D) layout. The pipelined
// mainloop requires a row-major or affine-equivalent accumulator;
// instantiating the threadblock assembler with anything else does not
// compile.
type Accumulator[L any] interface {
	RowMajor | AffineRank2
	Matrix[L]
}

// RowMajor addresses a tile stored row by row with the given row stride.
type RowMajor struct {
	Stride int
}

func (l RowMajor) Offset(c spikegemm.MatrixCoord) int {
	return c.Row*l.Stride + c.Column
}

// Packed returns the contiguous row-major layout for extent.
func (RowMajor) Packed(extent spikegemm.MatrixShape) RowMajor {
	return RowMajor{Stride: extent.Column}
}

// ColumnMajor addresses a tile stored column by column with the given
// column stride.
type ColumnMajor struct {
	Stride int
}

func (l ColumnMajor) Offset(c spikegemm.MatrixCoord) int {
	return c.Column*l.Stride + c.Row
}

// Packed returns the contiguous column-major layout for extent.
func (ColumnMajor) Packed(extent spikegemm.MatrixShape) ColumnMajor {
	return ColumnMajor{Stride: extent.Row}
}

// RowMajorInterleaved4 groups rows in strips of four. Within a strip each
// column's four row elements are adjacent, which is the packing the 4-wide
// int8 accumulate consumes. Stride is the distance between strips.
type RowMajorInterleaved4 struct {
	Stride int
}

func (l RowMajorInterleaved4) Offset(c spikegemm.MatrixCoord) int {
	strip := c.Row / spikegemm.Interleave4
	minor := c.Row % spikegemm.Interleave4
	return strip*l.Stride + c.Column*spikegemm.Interleave4 + minor
}

// Packed returns the contiguous interleaved layout for extent. The row
// count must be a multiple of the interleave width.
func (RowMajorInterleaved4) Packed(extent spikegemm.MatrixShape) RowMajorInterleaved4 {
	return RowMajorInterleaved4{Stride: extent.Column * spikegemm.Interleave4}
}

// ColumnMajorInterleaved4 groups columns in strips of four; the transpose
// of RowMajorInterleaved4.
type ColumnMajorInterleaved4 struct {
	Stride int
}

func (l ColumnMajorInterleaved4) Offset(c spikegemm.MatrixCoord) int {
	strip := c.Column / spikegemm.Interleave4
	minor := c.Column % spikegemm.Interleave4
	return strip*l.Stride + c.Row*spikegemm.Interleave4 + minor
}

// Packed returns the contiguous interleaved layout for extent.
func (ColumnMajorInterleaved4) Packed(extent spikegemm.MatrixShape) ColumnMajorInterleaved4 {
	return ColumnMajorInterleaved4{Stride: extent.Row * spikegemm.Interleave4}
}

// AffineRank2 addresses a tile through independent row and column strides.
// With ColumnStride == 1 it is equivalent to RowMajor, which is why it is
// admitted as an accumulator layout.
type AffineRank2 struct {
	RowStride, ColumnStride int
}

func (l AffineRank2) Offset(c spikegemm.MatrixCoord) int {
	return c.Row*l.RowStride + c.Column*l.ColumnStride
}

// Packed returns the row-major-equivalent affine layout for extent.
func (AffineRank2) Packed(extent spikegemm.MatrixShape) AffineRank2 {
	return AffineRank2{RowStride: extent.Column, ColumnStride: 1}
}

// Packed builds the contiguous layout of type L for extent.
func Packed[L Matrix[L]](extent spikegemm.MatrixShape) L {
	var l L
	return l.Packed(extent)
}

// IsInterleaved4 reports whether layout type L is one of the 4-wide
// interleaved layouts. Resolved per instantiation, at assembly time.
func IsInterleaved4[L Matrix[L]]() bool {
	switch any(*new(L)).(type) {
	case RowMajorInterleaved4, ColumnMajorInterleaved4:
		return true
	}
	return false
}
