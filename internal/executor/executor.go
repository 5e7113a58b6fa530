// Package executor defines the interface of the pipeline execution engine and
// the errors it reports.
//
// An Executor runs one method (fit or predict) over a pipeline graph:
//
//   - **RunFull:** every node in topological order; returns the outputs of each sink
//   - **RunUpTo:** only a node and its ancestors; returns the outputs of that node
//   - **RunNode:** a single node, with inputs read from its parents' stored outputs
//
// Execution halts on the first failing node. Outputs stored by nodes that
// finished before the failure remain available for inspection.
package executor

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/backgrid/internal/node"
)

// ErrMissingOutput is returned when a kernel result lacks a declared output.
var ErrMissingOutput = errors.New("missing output")

// Executor runs methods over a pipeline graph.
type Executor interface {
	// RunFull executes the method on every node and returns, per sink id,
	// the sink's outputs.
	RunFull(ctx context.Context, m node.Method) (map[string]node.Values, error)

	// RunUpTo executes the method on id and its ancestors only and returns
	// the outputs of id.
	RunUpTo(ctx context.Context, id string, m node.Method) (node.Values, error)

	// RunNode executes the method on a single node whose parents already hold
	// results for that method.
	RunNode(ctx context.Context, id string, m node.Method) error
}

// NodeError attaches the failing node and method to an execution error.
type NodeError struct {
	NodeID string
	Method node.Method
	Err    error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node %q failed during %s: %v", e.NodeID, e.Method, e.Err)
}

// Unwrap returns the original cause.
func (e *NodeError) Unwrap() error {
	return e.Err
}
