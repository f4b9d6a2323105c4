package spikegemm

import (
	"golang.org/x/sys/cpu"
)

// CPUFeatures tracks the instruction set extensions relevant to the packed
// int8 accumulate path.
type CPUFeatures struct {
	HasAVX2    bool
	HasAVX512F bool
	HasSSE4    bool
	HasNEON    bool
}

// Global CPU feature detection
var cpuFeatures CPUFeatures

func init() {
	detectCPUFeatures()
}

// detectCPUFeatures populates the global cpuFeatures struct
func detectCPUFeatures() {
	cpuFeatures = CPUFeatures{
		HasSSE4:    cpu.X86.HasSSE41 || cpu.X86.HasSSE42,
		HasAVX2:    cpu.X86.HasAVX2,
		HasAVX512F: cpu.X86.HasAVX512F,
		HasNEON:    cpu.ARM64.HasASIMD,
	}
}

// HasPackedInt8 returns true if the CPU can profitably run the 4-wide
// packed int8 accumulate, the SIMT analogue of the dp4a instruction.
func HasPackedInt8() bool {
	return cpuFeatures.HasSSE4 || cpuFeatures.HasAVX2 ||
		cpuFeatures.HasAVX512F || cpuFeatures.HasNEON
}
