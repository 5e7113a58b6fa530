// internal/nodeid/doc.go

/*
Package nodeid provides a structured representation for references to node
ports within a pipeline graph, based on the canonical format `node` or
`node.port`.

A bare reference (`node`) names a node and leaves the port to be resolved by
the graph, which only succeeds when the node declares exactly one port on the
relevant side. A qualified reference (`node.port`) names the port explicitly.

This package enforces the identifier schema and centralizes all formatting
and parsing logic, so that pipeline files, builders and the graph agree on
what a valid identifier is.
*/
package nodeid
