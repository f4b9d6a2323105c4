package snngrow

import (
	"fmt"

	"github.com/leexyy0804/snngrow/spikegemm"
	"github.com/leexyy0804/snngrow/spikegemm/device"
)

// SpikeLinear is a fully connected layer whose input is a spike batch.
// The forward pass is a spike GEMM with the activations as the binary
// operand, so no multiplies run against the input: each output element
// is the sum of the weight entries whose input neuron fired, plus bias.
type SpikeLinear struct {
	InFeatures  int
	OutFeatures int

	// weight is stored pre-transposed, in×out row-major, which is the
	// dense-operand shape the GEMM consumes directly.
	weight []float32
	bias   []float32

	cfg device.Config
}

// NewSpikeLinear creates a layer from an out×in row-major weight matrix
// and an optional per-output bias. The weights are transposed once here
// so every forward pass feeds the GEMM without reshaping.
func NewSpikeLinear(inFeatures, outFeatures int, weight, bias []float32) (*SpikeLinear, error) {
	const op = "snngrow.NewSpikeLinear"
	if inFeatures <= 0 || outFeatures <= 0 {
		return nil, spikegemm.NewInvalidArgError(op, fmt.Sprintf(
			"feature counts must be positive, got in=%d out=%d", inFeatures, outFeatures))
	}
	if len(weight) != inFeatures*outFeatures {
		return nil, spikegemm.NewShapeError(op, fmt.Sprintf(
			"weight has %d elements, %dx%d needs %d",
			len(weight), outFeatures, inFeatures, inFeatures*outFeatures))
	}
	if bias != nil && len(bias) != outFeatures {
		return nil, spikegemm.NewShapeError(op, fmt.Sprintf(
			"bias has %d elements, want %d", len(bias), outFeatures))
	}

	l := &SpikeLinear{
		InFeatures:  inFeatures,
		OutFeatures: outFeatures,
		weight:      make([]float32, inFeatures*outFeatures),
		cfg:         device.DefaultConfig(),
	}
	for o := 0; o < outFeatures; o++ {
		for i := 0; i < inFeatures; i++ {
			l.weight[i*outFeatures+o] = weight[o*inFeatures+i]
		}
	}
	if bias != nil {
		l.bias = append([]float32(nil), bias...)
	}
	return l, nil
}

// SetConfig overrides the GEMM assembly used by Forward. The default is
// device.DefaultConfig.
func (l *SpikeLinear) SetConfig(cfg device.Config) { l.cfg = cfg }

// Forward applies the layer to a batch of spike activations laid out
// batch×in row-major and returns the batch×out dense output.
func (l *SpikeLinear) Forward(spikes []spikegemm.Spike, batch int) ([]float32, error) {
	const op = "snngrow.SpikeLinear.Forward"
	if batch <= 0 {
		return nil, spikegemm.NewInvalidArgError(op, fmt.Sprintf("batch must be positive, got %d", batch))
	}
	if len(spikes) != batch*l.InFeatures {
		return nil, spikegemm.NewShapeError(op, fmt.Sprintf(
			"input has %d spikes, batch %d of width %d needs %d",
			len(spikes), batch, l.InFeatures, batch*l.InFeatures))
	}

	out := make([]float32, batch*l.OutFeatures)
	if l.bias != nil {
		for b := 0; b < batch; b++ {
			copy(out[b*l.OutFeatures:(b+1)*l.OutFeatures], l.bias)
		}
	}

	problem := spikegemm.GemmShape{M: batch, N: l.OutFeatures, K: l.InFeatures}
	if err := device.GemmA(l.cfg, problem, spikes, l.weight, out, out); err != nil {
		return nil, spikegemm.NewExecutionError(op, "spike GEMM failed", err)
	}
	return out, nil
}
