package snngrow

import (
	"fmt"

	"github.com/leexyy0804/snngrow/spikegemm"
)

// baseNode holds the state and reset rule shared by all neuron layers.
// The membrane potential is allocated lazily on the first step so a layer
// does not need to know its width up front, matching how activations flow
// through a network.
type baseNode struct {
	// VThreshold is the firing threshold. VReset is the potential a fired
	// neuron is clamped to under hard reset; with SoftReset the threshold
	// is subtracted instead and VReset is ignored.
	VThreshold float32
	VReset     float32
	SoftReset  bool

	v []float32
}

// ensureState sizes the membrane potential to the input width. A layer
// fed inputs of a different width than its state is a usage error.
func (n *baseNode) ensureState(width int) error {
	if n.v == nil {
		n.v = make([]float32, width)
		if !n.SoftReset {
			for i := range n.v {
				n.v[i] = n.VReset
			}
		}
		return nil
	}
	if len(n.v) != width {
		return spikegemm.NewShapeError("snngrow.neuron", fmt.Sprintf(
			"input width %d does not match membrane state width %d", width, len(n.v)))
	}
	return nil
}

// fire emits spikes for every neuron at or above threshold and applies
// the reset rule.
func (n *baseNode) fire(out []spikegemm.Spike) {
	for i, v := range n.v {
		fired := v >= n.VThreshold
		out[i] = fired
		if fired {
			if n.SoftReset {
				n.v[i] = v - n.VThreshold
			} else {
				n.v[i] = n.VReset
			}
		}
	}
}

// V returns the membrane potential, nil before the first step.
func (n *baseNode) V() []float32 { return n.v }

// Reset discards the membrane state. The next step reinitializes it from
// the reset potential.
func (n *baseNode) Reset() { n.v = nil }

// IFNode is an integrate-and-fire neuron layer: the input charges the
// membrane without leakage, and neurons crossing the threshold fire and
// reset.
type IFNode struct {
	baseNode
}

// NewIFNode creates an integrate-and-fire layer with hard reset to vReset.
func NewIFNode(vThreshold, vReset float32) *IFNode {
	return &IFNode{baseNode{VThreshold: vThreshold, VReset: vReset}}
}

// NewIFNodeSoftReset creates an integrate-and-fire layer that subtracts
// the threshold on firing instead of clamping.
func NewIFNodeSoftReset(vThreshold float32) *IFNode {
	return &IFNode{baseNode{VThreshold: vThreshold, SoftReset: true}}
}

// Forward runs one timestep: charge, fire, reset. The returned spikes are
// the layer's binary activations for this step.
func (n *IFNode) Forward(x []float32) ([]spikegemm.Spike, error) {
	if err := n.ensureState(len(x)); err != nil {
		return nil, err
	}
	for i, xi := range x {
		n.v[i] += xi
	}
	out := make([]spikegemm.Spike, len(x))
	n.fire(out)
	return out, nil
}

// ForwardSequence runs Forward over a sequence of timesteps, carrying the
// membrane state across steps.
func (n *IFNode) ForwardSequence(xSeq [][]float32) ([][]spikegemm.Spike, error) {
	out := make([][]spikegemm.Spike, len(xSeq))
	for t, x := range xSeq {
		spikes, err := n.Forward(x)
		if err != nil {
			return nil, err
		}
		out[t] = spikes
	}
	return out, nil
}

// LIFNode is a leaky integrate-and-fire neuron layer. Between inputs the
// membrane decays toward the reset potential with time constant Tau.
type LIFNode struct {
	baseNode
	Tau float32
}

// NewLIFNode creates a leaky integrate-and-fire layer with hard reset.
// tau must be at least 1; tau of 1 decays instantly and recovers the
// non-leaky IF charge.
func NewLIFNode(vThreshold, vReset, tau float32) (*LIFNode, error) {
	if tau < 1 {
		return nil, spikegemm.NewInvalidArgError("snngrow.NewLIFNode",
			fmt.Sprintf("tau must be at least 1, got %g", tau))
	}
	return &LIFNode{
		baseNode: baseNode{VThreshold: vThreshold, VReset: vReset},
		Tau:      tau,
	}, nil
}

// Forward runs one timestep: leaky charge, fire, reset.
func (n *LIFNode) Forward(x []float32) ([]spikegemm.Spike, error) {
	if err := n.ensureState(len(x)); err != nil {
		return nil, err
	}
	for i, xi := range x {
		v := n.v[i]
		n.v[i] = v + (xi-(v-n.VReset))/n.Tau
	}
	out := make([]spikegemm.Spike, len(x))
	n.fire(out)
	return out, nil
}

// ForwardSequence runs Forward over a sequence of timesteps.
func (n *LIFNode) ForwardSequence(xSeq [][]float32) ([][]spikegemm.Spike, error) {
	out := make([][]spikegemm.Spike, len(xSeq))
	for t, x := range xSeq {
		spikes, err := n.Forward(x)
		if err != nil {
			return nil, err
		}
		out[t] = spikes
	}
	return out, nil
}
