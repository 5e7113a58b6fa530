// Package node defines the unit of computation in a pipeline graph.
//
// # Why Node Package Exists
//
// A Node is the only thing the graph and the execution engine know about a
// computation. It carries:
//   - **Identity:** a node id unique within one graph
//   - **Ports:** ordered, distinct input and output names declared at construction
//   - **Kernel:** the actual computation, reached through capability interfaces
//   - **Results:** the outputs stored per method after that method ran
//
// The graph never inspects what a kernel computes. It only validates that
// edges connect declared ports, and the engine only checks that a kernel
// returned every declared output.
//
// # Methods and Capabilities
//
// Computation entry points form a closed set (Fit, Predict). Each maps to a
// capability interface (Fitter, Predictor). A kernel implements the ones it
// supports; invoking an unsupported method fails with ErrUnsupportedMethod.
//
// # Lifecycle
//
//  1. **Created** once by a builder with its ports and kernel
//  2. **Added** to a graph, which owns its position and edges
//  3. **Executed** by the engine, which is the only writer of its results
//  4. **Removed** from the graph on explicit removal or a loose re-add upstream
package node
