// internal/nodeid/address.go
package nodeid

// String serializes the Ref into its canonical string representation.
func (r Ref) String() string {
	if r.Port == "" {
		return r.Node
	}
	return r.Node + "." + r.Port
}

// Equal checks whether two references point at the same node and port.
func (r Ref) Equal(other Ref) bool {
	return r.Node == other.Node && r.Port == other.Port
}

// WithPort returns a copy of the reference qualified with the given port.
func (r Ref) WithPort(port string) Ref {
	return Ref{Node: r.Node, Port: port}
}
