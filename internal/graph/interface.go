package graph

import (
	"context"
	"errors"

	"github.com/vk/backgrid/internal/node"
)

// ErrUnboundInput is returned when a declared input port has no producer.
var ErrUnboundInput = errors.New("unbound input")

// Graph is the execution-time view of a pipeline: structure plus run state.
type Graph interface {
	// Node retrieves a node by id.
	Node(ctx context.Context, id string) (*node.Node, bool)

	// Order returns every node id in topological order.
	Order(ctx context.Context) ([]string, error)

	// Ancestors returns the transitive predecessors of id in topological order.
	Ancestors(ctx context.Context, id string) ([]string, error)

	// Sinks returns the nodes without children in topological order.
	Sinks(ctx context.Context) ([]string, error)

	// Inputs resolves every declared input of id from the output its unique
	// producer stored under the method.
	Inputs(ctx context.Context, id string, m node.Method) (node.Values, error)

	// Status returns the run state of (id, m).
	Status(ctx context.Context, id string, m node.Method) (node.State, error)

	// Failure returns the recorded cause of a failed (id, m), or nil.
	Failure(ctx context.Context, id string, m node.Method) (error, error)

	// Progress returns how many (node, method) pairs are in each state.
	Progress(ctx context.Context) (map[node.State]int, error)

	// MarkRunning transitions (id, m) to Running and clears any old failure.
	MarkRunning(ctx context.Context, id string, m node.Method) error

	// MarkDone transitions (id, m) to Done.
	MarkDone(ctx context.Context, id string, m node.Method) error

	// MarkFailed transitions (id, m) to Failed and records the cause.
	MarkFailed(ctx context.Context, id string, m node.Method, nodeErr error) error
}
