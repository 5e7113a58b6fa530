package graph

import (
	"context"
	"fmt"

	"github.com/vk/backgrid/internal/ctxlog"
	"github.com/vk/backgrid/internal/dag"
	"github.com/vk/backgrid/internal/node"
	"github.com/vk/backgrid/internal/nodestore"
	"github.com/vk/backgrid/internal/topologystore"
)

// Manager composes a topology store and a run-state store.
type Manager struct {
	topology topologystore.Store
	state    nodestore.Store
}

// New creates a new graph manager.
func New(ts topologystore.Store, ns nodestore.Store) *Manager {
	return &Manager{topology: ts, state: ns}
}

var _ Graph = (*Manager)(nil)

// Node retrieves a node by id.
func (m *Manager) Node(_ context.Context, id string) (*node.Node, bool) {
	return m.topology.Node(id)
}

// Order returns every node id in topological order.
func (m *Manager) Order(_ context.Context) ([]string, error) {
	return m.topology.TopologicalOrder()
}

// Ancestors returns the transitive predecessors of id.
func (m *Manager) Ancestors(_ context.Context, id string) ([]string, error) {
	return m.topology.Ancestors(id)
}

// Sinks returns the nodes without children.
func (m *Manager) Sinks(_ context.Context) ([]string, error) {
	return m.topology.Sinks()
}

// Inputs resolves every declared input of id under the method.
func (m *Manager) Inputs(ctx context.Context, id string, method node.Method) (node.Values, error) {
	n, ok := m.topology.Node(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", dag.ErrUnknownNode, id)
	}
	bindings, err := m.topology.InputBindings(id)
	if err != nil {
		return nil, err
	}

	in := make(node.Values, len(bindings))
	for _, port := range n.InputNames() {
		src, ok := bindings[port]
		if !ok {
			return nil, fmt.Errorf("%w: node %q input %q", ErrUnboundInput, id, port)
		}
		parent, ok := m.topology.Node(src.Node)
		if !ok {
			return nil, fmt.Errorf("%w: %q", dag.ErrUnknownNode, src.Node)
		}
		v, err := parent.Output(method, src.Port)
		if err != nil {
			return nil, fmt.Errorf("resolving input %q of node %q: %w", port, id, err)
		}
		in[port] = v
	}
	ctxlog.FromContext(ctx).Debug("Resolved node inputs.", "node", id, "method", method, "inputs", len(in))
	return in, nil
}

// Status returns the run state of (id, method).
func (m *Manager) Status(ctx context.Context, id string, method node.Method) (node.State, error) {
	return m.state.GetStatus(ctx, nodestore.Key{Node: id, Method: method})
}

// Failure returns the recorded cause of a failed (id, method), or nil.
func (m *Manager) Failure(ctx context.Context, id string, method node.Method) (error, error) {
	return m.state.GetError(ctx, nodestore.Key{Node: id, Method: method})
}

// Progress returns how many pairs are in each state.
func (m *Manager) Progress(ctx context.Context) (map[node.State]int, error) {
	return m.state.Counts(ctx)
}

// MarkRunning transitions (id, method) to Running.
func (m *Manager) MarkRunning(ctx context.Context, id string, method node.Method) error {
	key := nodestore.Key{Node: id, Method: method}
	if err := m.state.SetError(ctx, key, nil); err != nil {
		return err
	}
	return m.set(ctx, key, node.Running)
}

// MarkDone transitions (id, method) to Done.
func (m *Manager) MarkDone(ctx context.Context, id string, method node.Method) error {
	return m.set(ctx, nodestore.Key{Node: id, Method: method}, node.Done)
}

// MarkFailed transitions (id, method) to Failed and records the cause.
func (m *Manager) MarkFailed(ctx context.Context, id string, method node.Method, nodeErr error) error {
	key := nodestore.Key{Node: id, Method: method}
	if err := m.state.SetError(ctx, key, nodeErr); err != nil {
		return err
	}
	return m.set(ctx, key, node.Failed)
}

func (m *Manager) set(ctx context.Context, key nodestore.Key, state node.State) error {
	if _, ok := m.topology.Node(key.Node); !ok {
		return fmt.Errorf("%w: %q", dag.ErrUnknownNode, key.Node)
	}
	ctxlog.FromContext(ctx).Debug("Node state changed.", "node", key.Node, "method", key.Method, "state", state)
	return m.state.SetStatus(ctx, key, state)
}
