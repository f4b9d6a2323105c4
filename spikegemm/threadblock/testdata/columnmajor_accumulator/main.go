// This program must NOT compile. The threadblock assembler constrains its
// accumulator layout parameter to row-major or affine-equivalent layouts;
// instantiating it with ColumnMajor violates the layout.Accumulator type
// set and the compiler rejects it:
//
//	ColumnMajor does not satisfy layout.Accumulator[ColumnMajor]
//	(ColumnMajor missing in layout.RowMajor | layout.AffineRank2)
//
// It lives under testdata so the build never includes it; compile it by
// hand to watch it fail.
package main

import (
	"github.com/leexyy0804/snngrow/spikegemm"
	"github.com/leexyy0804/snngrow/spikegemm/layout"
	"github.com/leexyy0804/snngrow/spikegemm/threadblock"
)

func main() {
	_, _ = threadblock.NewSpikeMma[spikegemm.SideA, float32, layout.RowMajor, layout.RowMajor, layout.ColumnMajor](
		threadblock.DefaultConfig())
}
