package node

import (
	"context"
	"fmt"
	"sync"

	"github.com/vk/backgrid/internal/nodeid"
)

// Node is a single vertex in the pipeline graph. Its identity and ports are
// immutable after construction; only its per-method results change.
type Node struct {
	// id is the unique identifier for the node within one graph.
	id string
	// inputs and outputs are the declared port names, in declaration order.
	inputs  []string
	outputs []string
	// kernel performs the computation.
	kernel Kernel

	// mu protects results.
	mu sync.RWMutex
	// results holds the stored outputs keyed by method, then by output name.
	results map[Method]Values
}

// New creates a node after validating its id and port declarations.
func New(id string, inputs, outputs []string, kernel Kernel) (*Node, error) {
	if err := nodeid.ValidateName(id); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidNode, err)
	}
	if err := validatePorts(id, "input", inputs); err != nil {
		return nil, err
	}
	if err := validatePorts(id, "output", outputs); err != nil {
		return nil, err
	}
	if kernel == nil {
		return nil, fmt.Errorf("%w: node %q has no kernel", ErrInvalidNode, id)
	}
	_, fits := kernel.(Fitter)
	_, predicts := kernel.(Predictor)
	if !fits && !predicts {
		return nil, fmt.Errorf("%w: kernel of node %q implements neither Fit nor Predict", ErrInvalidNode, id)
	}

	return &Node{
		id:      id,
		inputs:  append([]string(nil), inputs...),
		outputs: append([]string(nil), outputs...),
		kernel:  kernel,
		results: make(map[Method]Values),
	}, nil
}

// MustNew is like New but panics on error.
func MustNew(id string, inputs, outputs []string, kernel Kernel) *Node {
	n, err := New(id, inputs, outputs, kernel)
	if err != nil {
		panic(err)
	}
	return n
}

func validatePorts(id, side string, names []string) error {
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if err := nodeid.ValidateName(name); err != nil {
			return fmt.Errorf("%w: node %q %s port: %v", ErrInvalidNode, id, side, err)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: node %q declares %s port %q twice", ErrInvalidNode, id, side, name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// ID returns the node id.
func (n *Node) ID() string {
	return n.id
}

// InputNames returns a copy of the declared input ports.
func (n *Node) InputNames() []string {
	return append([]string(nil), n.inputs...)
}

// OutputNames returns a copy of the declared output ports.
func (n *Node) OutputNames() []string {
	return append([]string(nil), n.outputs...)
}

// HasInput reports whether name is a declared input port.
func (n *Node) HasInput(name string) bool {
	return contains(n.inputs, name)
}

// HasOutput reports whether name is a declared output port.
func (n *Node) HasOutput(name string) bool {
	return contains(n.outputs, name)
}

// Kernel returns the node's kernel.
func (n *Node) Kernel() Kernel {
	return n.kernel
}

// Supports reports whether the kernel implements the given method.
func (n *Node) Supports(m Method) bool {
	switch m {
	case Fit:
		_, ok := n.kernel.(Fitter)
		return ok
	case Predict:
		_, ok := n.kernel.(Predictor)
		return ok
	}
	return false
}

// Invoke dispatches the method to the kernel. It does not store results.
func (n *Node) Invoke(ctx context.Context, m Method, in Values) (Values, error) {
	switch m {
	case Fit:
		if f, ok := n.kernel.(Fitter); ok {
			return f.Fit(ctx, in)
		}
	case Predict:
		if p, ok := n.kernel.(Predictor); ok {
			return p.Predict(ctx, in)
		}
	}
	return nil, fmt.Errorf("%w: node %q does not support %s", ErrUnsupportedMethod, n.id, m)
}

// Output returns the value stored for an output port under a method.
func (n *Node) Output(m Method, name string) (any, error) {
	if !n.HasOutput(name) {
		return nil, fmt.Errorf("%w: node %q has no output %q", ErrUnknownPort, n.id, name)
	}

	n.mu.RLock()
	defer n.mu.RUnlock()

	stored, ok := n.results[m]
	if !ok {
		return nil, fmt.Errorf("%w: node %q has not run %s", ErrNotComputed, n.id, m)
	}
	v, ok := stored[name]
	if !ok {
		return nil, fmt.Errorf("%w: node %q has no %s value for %q", ErrNotComputed, n.id, m, name)
	}
	return v, nil
}

// Results returns a copy of all outputs stored for a method.
func (n *Node) Results(m Method) (Values, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	stored, ok := n.results[m]
	if !ok {
		return nil, fmt.Errorf("%w: node %q has not run %s", ErrNotComputed, n.id, m)
	}
	return stored.Clone(), nil
}

// Store records the value of an output port under a method, overwriting any
// previous value. Only the execution engine should call it.
func (n *Node) Store(m Method, name string, value any) error {
	if !n.HasOutput(name) {
		return fmt.Errorf("%w: node %q has no output %q", ErrUnknownPort, n.id, name)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	stored, ok := n.results[m]
	if !ok {
		stored = make(Values, len(n.outputs))
		n.results[m] = stored
	}
	stored[name] = value
	return nil
}

// StoreAll records every declared output found in values under a method in
// one step; undeclared keys are ignored. The method counts as computed
// afterwards even when the node declares no outputs.
func (n *Node) StoreAll(m Method, values Values) {
	n.mu.Lock()
	defer n.mu.Unlock()

	stored, ok := n.results[m]
	if !ok {
		stored = make(Values, len(n.outputs))
		n.results[m] = stored
	}
	for _, name := range n.outputs {
		if v, ok := values[name]; ok {
			stored[name] = v
		}
	}
}

// Computed reports whether any result was stored for the method.
func (n *Node) Computed(m Method) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	_, ok := n.results[m]
	return ok
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
