// internal/nodeid/types.go
package nodeid

// Ref is the structured form of a port reference. An empty Port means the
// reference is bare and the port must be inferred from the node's declaration.
type Ref struct {
	Node string
	Port string
}

// NodeRef creates a bare reference to a node.
func NodeRef(node string) Ref {
	return Ref{Node: node}
}

// PortRef creates a reference to an explicit port of a node.
func PortRef(node, port string) Ref {
	return Ref{Node: node, Port: port}
}

// IsBare returns true if the reference does not name a port.
func (r Ref) IsBare() bool {
	return r.Port == ""
}
