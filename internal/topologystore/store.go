// Package topologystore defines the read-side interface for the static
// structure of a pipeline graph.
//
// # Why Topology Store Exists
//
// The topology store separates the **DAG structure** (nodes, their ports and
// the bindings between them) from the **run state** (PENDING, RUNNING, DONE,
// FAILED per node and method) kept by nodestore.
//
// This separation gives the engine:
//   - **Clarity:** Planning reads structure only; execution writes state only
//   - **Testability:** Plans can be verified against a graph without running anything
//   - **Flexibility:** Any structure that answers these queries can be executed
//
// # Lifecycle
//
// The topology is:
//  1. **Built** by a builder (see internal/builder), which mutates a dag.Graph
//  2. **Handed** to a session, after which it is treated as read-mostly
//  3. **Queried** by the scheduler for orders and by the executor for bindings
//
// The reference implementation is *dag.Graph, which satisfies Store directly.
package topologystore

import (
	"github.com/vk/backgrid/internal/node"
	"github.com/vk/backgrid/internal/nodeid"
)

// Store is the read-only view of a pipeline DAG used during execution.
//
// Implementations are not required to be safe for concurrent mutation; the
// executor only reads from the store.
type Store interface {
	// Node returns the node with the given id.
	Node(id string) (*node.Node, bool)

	// TopologicalOrder returns all node ids with parents before children.
	// The order must be deterministic for a given structure.
	TopologicalOrder() ([]string, error)

	// Ancestors returns every transitive predecessor of id, in topological
	// order, excluding id itself.
	Ancestors(id string) ([]string, error)

	// Sinks returns the nodes without outgoing edges, in topological order.
	Sinks() ([]string, error)

	// InputBindings returns, for each bound input port of id, the producing
	// output port. Each input has at most one producer.
	InputBindings(id string) (map[string]nodeid.Ref, error)
}
