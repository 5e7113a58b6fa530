package dag

import (
	"github.com/vk/backgrid/internal/node"
	"github.com/vk/backgrid/internal/nodeid"
	"gonum.org/v1/gonum/graph/simple"
)

// Mode controls what happens when a node is added with an existing id.
type Mode int

const (
	// Strict rejects duplicate node ids.
	Strict Mode = iota
	// Loose replaces the existing node and all of its descendants.
	Loose
)

func (m Mode) String() string {
	if m == Loose {
		return "loose"
	}
	return "strict"
}

// Binding connects one output port of a parent to one input port of a child.
type Binding struct {
	From nodeid.Ref
	To   nodeid.Ref
}

// Graph is a collection of nodes and their port bindings, representing a DAG.
// A Graph is mutated by its builder and treated as read-mostly afterwards; it
// is not safe for concurrent mutation.
type Graph struct {
	mode Mode
	// g holds the vertex/edge structure over arena ids.
	g *simple.DirectedGraph
	// ids maps node ids to arena ids.
	ids map[string]int64
	// nodes maps arena ids to nodes.
	nodes map[int64]*node.Node
	// nextID is the next arena id; it only grows, so it doubles as insertion order.
	nextID int64
	// inputs holds, per child node id, the producer of each bound input port.
	inputs map[string]map[string]nodeid.Ref
}
