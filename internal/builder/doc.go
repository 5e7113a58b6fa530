/*
Package builder is responsible for the construction of the pipeline graph. It
acts as the bridge between the static configuration model (the 'config'
package) and the execution engine (the 'executor' package).

A Builder exposes a configuration template and builds a *dag.Graph from a
configuration. The pipeline builder does this in phases:

 1. Template: every node id maps to its kind's default parameters, overlaid
    with the parameters written in the pipeline file.

 2. Node Creation: the supplied configuration is merged over the template and
    each node's kernel is created by its kind's factory. Nodes are added in
    pipeline order, so the graph's stable topological order follows the file.

 3. Linking: every declared input is connected to its producer. The dag
    package rejects unknown ports, double-bound inputs and cycles, so a graph
    that builds successfully satisfies every graph invariant.

Upon successful completion, the graph is handed to a session for execution.
*/
package builder
