// Package scheduler turns the pipeline topology into execution plans.
//
// # Why Scheduler Exists
//
// The scheduler separates "what runs, in which order" from "how a node runs"
// (the executor). Execution is single-threaded and synchronous, so a plan is
// simply an ordered list of node ids.
//
//   - **Determinism:** Plans follow the graph's stable topological order
//   - **Partial runs:** PlanUpTo restricts the order to a node and its ancestors
//   - **Testability:** Plans can be inspected without executing anything
//
// # Plans
//
//   - **Plan:** every node, parents before children
//   - **PlanUpTo(id):** the ancestors of id plus id, in the same relative
//     order as Plan; nodes outside that closure never appear
package scheduler
