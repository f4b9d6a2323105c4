package spikegemm

// SideA and SideB are zero-size tags selecting which operand of the GEMM
// carries spikes. All levels of the hierarchy are generic over Side, so the
// A-binary and B-binary cases share one routine and the choice is
// monomorphized away: no loop in the core ever branches on the side.
//
// The tag owns the coordinate algebra that differs between the two cases.
// The spike operand is the M×K matrix A under SideA and the K×N matrix B
// under SideB; the dense operand is the other one. Methods are expressed
// in terms of the spike/dense roles so callers never duplicate per-side
// arithmetic.
type SideA struct{}

// SideB marks operand B as the spike operand. See SideA.
type SideB struct{}

// Side is the closed constraint over the two operand tags.
type Side interface {
	SideA | SideB

	// SpikeExtent returns the spike operand's tile extent for problem
	// shape s, and DenseExtent the dense operand's.
	SpikeExtent(s GemmShape) MatrixShape
	DenseExtent(s GemmShape) MatrixShape

	// SpikeOrigin maps a tile's M-offset and N-offset to an origin inside
	// the spike operand; only the offset along the operand's non-K axis
	// survives. DenseOrigin is the counterpart for the dense operand.
	SpikeOrigin(mOffset, nOffset int) MatrixCoord
	DenseOrigin(mOffset, nOffset int) MatrixCoord

	// SpikeKStep and DenseKStep return the coordinate advance that moves
	// an operand tile k elements along the reduction dimension.
	SpikeKStep(k int) MatrixCoord
	DenseKStep(k int) MatrixCoord

	// SpikeIsA reports whether the spike operand is matrix A.
	SpikeIsA() bool

	// Pick routes the per-element coordinates of the accumulate loop:
	// given the A coordinate (m,k) and the B coordinate (k,n) it returns
	// the spike coordinate and the dense coordinate.
	Pick(mk, kn MatrixCoord) (spike, dense MatrixCoord)
}

func (SideA) SpikeExtent(s GemmShape) MatrixShape { return MatrixShape{s.M, s.K} }
func (SideA) DenseExtent(s GemmShape) MatrixShape { return MatrixShape{s.K, s.N} }

func (SideB) SpikeExtent(s GemmShape) MatrixShape { return MatrixShape{s.K, s.N} }
func (SideB) DenseExtent(s GemmShape) MatrixShape { return MatrixShape{s.M, s.K} }

func (SideA) SpikeOrigin(mOffset, _ int) MatrixCoord { return MatrixCoord{mOffset, 0} }
func (SideA) DenseOrigin(_, nOffset int) MatrixCoord { return MatrixCoord{0, nOffset} }

func (SideB) SpikeOrigin(_, nOffset int) MatrixCoord { return MatrixCoord{0, nOffset} }
func (SideB) DenseOrigin(mOffset, _ int) MatrixCoord { return MatrixCoord{mOffset, 0} }

func (SideA) SpikeKStep(k int) MatrixCoord { return MatrixCoord{0, k} }
func (SideA) DenseKStep(k int) MatrixCoord { return MatrixCoord{k, 0} }

func (SideB) SpikeKStep(k int) MatrixCoord { return MatrixCoord{k, 0} }
func (SideB) DenseKStep(k int) MatrixCoord { return MatrixCoord{0, k} }

func (SideA) SpikeIsA() bool { return true }
func (SideB) SpikeIsA() bool { return false }

func (SideA) Pick(mk, kn MatrixCoord) (MatrixCoord, MatrixCoord) { return mk, kn }
func (SideB) Pick(mk, kn MatrixCoord) (MatrixCoord, MatrixCoord) { return kn, mk }
