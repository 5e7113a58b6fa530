// Package graph provides a unified facade over the pipeline topology and the
// run state of its nodes.
//
// # Why Graph Package Exists
//
// The executor needs structure (which nodes exist, in which order, who feeds
// whom) and state (where each node and method is in its lifecycle) at the same
// time. Instead of coordinating two stores at every call site, it talks to one
// Graph.
//
//   - **Unified API:** The executor interacts with one interface instead of two stores
//   - **Convenience:** Inputs joins bindings with the parents' stored outputs
//   - **Encapsulation:** Storage details stay behind the facade
//
// # Architecture
//
//	┌─────────────────────────────────────┐
//	│           Graph Facade              │
//	└──────────┬────────────┬─────────────┘
//	           │            │
//	           ▼            ▼
//	  ┌────────────┐  ┌────────────┐
//	  │  Topology  │  │ Run State  │
//	  │   Store    │  │   Store    │
//	  │ (dag.Graph)│  │ (nodestore)│
//	  └────────────┘  └────────────┘
//
// **Topology Store** (topologystore.Store): the DAG built by a builder.
//
// **Run State Store** (nodestore.Store): PENDING/RUNNING/DONE/FAILED per
// (node, method), updated through MarkRunning, MarkDone and MarkFailed.
//
// # Thread-Safety
//
// State updates and reads are safe for concurrent use. Structure is read-only
// during execution.
package graph
