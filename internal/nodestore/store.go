// Package nodestore defines the interface for the mutable run state of nodes
// during pipeline execution.
//
// # Why Node Store Exists
//
// The node store isolates **run state** (status and failure cause per node and
// method) from the **DAG structure** held by topologystore. Node outputs live
// on the nodes themselves; the store only records where each (node, method)
// pair is in its lifecycle.
//
// This separation provides:
//   - **Clarity:** Execution writes state without touching the graph
//   - **Observability:** Progress can be read while a run is in flight (see the app healthcheck)
//   - **Flexibility:** Other backends could record state elsewhere
//
// # State Transitions
//
// Each (node, method) pair follows this lifecycle within a run:
//
//	Pending → Running → Done
//	                  ↘ Failed
package nodestore

import (
	"context"

	"github.com/vk/backgrid/internal/node"
)

// Key identifies one (node, method) pair.
type Key struct {
	Node   string
	Method node.Method
}

// Store records the run state of (node, method) pairs.
//
// # Thread-Safety Requirements
//
// Implementations MUST be safe for concurrent use: the executor writes while
// status endpoints read.
type Store interface {
	// SetStatus records the state of a pair.
	SetStatus(ctx context.Context, key Key, state node.State) error

	// GetStatus returns the state of a pair, or node.Pending if it was never set.
	GetStatus(ctx context.Context, key Key) (node.State, error)

	// SetError records the failure cause of a pair.
	SetError(ctx context.Context, key Key, nodeErr error) error

	// GetError returns the recorded failure cause, or nil.
	GetError(ctx context.Context, key Key) (error, error)

	// Counts returns how many pairs are in each state.
	Counts(ctx context.Context) (map[node.State]int, error)
}
