package config

// Pipeline is the format-agnostic representation of a pipeline definition:
// the portfolio simulation settings and the node graph.
type Pipeline struct {
	Portfolio PortfolioSpec
	Nodes     []NodeSpec
	// Dir is the directory the pipeline was loaded from; relative paths in
	// node params and the portfolio block resolve against it.
	Dir string
}

// NodeSpec is the format-agnostic representation of a `node` block.
type NodeSpec struct {
	Name string
	Kind string
	// Inputs maps an input port of this node to its producer, written as
	// "nid" or "nid.port".
	Inputs map[string]string
	Params Config
}

// PortfolioSpec is the format-agnostic representation of the `portfolio` block.
type PortfolioSpec struct {
	InitialCash float64
	// Prices is the path to a CSV price table (timestamp, asset_id, close).
	Prices string
	// Policy is the execution-price policy of generated orders.
	Policy string
	// Fit runs the fit method before predict.
	Fit bool
	// Output names the targets table: "node.port", or a bare port name on
	// the unique sink.
	Output string
}

// Node returns the spec of the named node.
func (p *Pipeline) Node(name string) (NodeSpec, bool) {
	for _, n := range p.Nodes {
		if n.Name == name {
			return n, true
		}
	}
	return NodeSpec{}, false
}
