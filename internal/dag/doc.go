// Package dag is the "Topology Layer" of the application. It owns the
// directed acyclic graph of pipeline nodes and the port bindings carried by
// its edges.
//
// # Why Dag Package Exists
//
// The execution engine needs a graph it can trust: acyclic at all times,
// with at most one producer per input port, and with a stable topological
// order. The dag package enforces those invariants at every mutation, so
// nothing downstream has to re-check them.
//
// # Structure
//
// Nodes live in an arena keyed by a stable int64 id assigned on insertion.
// The arena backs a gonum simple.DirectedGraph, which provides reachability
// (cycle checks), stable topological sorting and traversals. Port bindings
// are stored per child node: input port -> (parent node, parent output port).
// An edge between two nodes exists while at least one binding connects them.
//
// # Modes
//
//   - **Strict:** adding a node whose id exists fails with ErrDuplicateNode.
//   - **Loose:** adding a node whose id exists first removes that node and all
//     of its descendants, then inserts the new node. This supports iterative
//     rebuilding without leaving stale downstream nodes behind.
//
// # Failure Semantics
//
// Every mutation is all-or-nothing. A binding that would close a cycle is
// rolled back before ErrCycle is returned.
package dag
