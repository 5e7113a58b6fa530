package dag

import (
	"fmt"
	"sort"

	"github.com/vk/backgrid/internal/node"
	"github.com/vk/backgrid/internal/nodeid"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// New creates and returns an initialized, empty Graph in the given mode.
func New(mode Mode) *Graph {
	return &Graph{
		mode:   mode,
		g:      simple.NewDirectedGraph(),
		ids:    make(map[string]int64),
		nodes:  make(map[int64]*node.Node),
		inputs: make(map[string]map[string]nodeid.Ref),
	}
}

// Mode returns the graph's duplicate-handling mode.
func (g *Graph) Mode() Mode {
	return g.mode
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	return len(g.ids)
}

// Has reports whether a node with the given id exists.
func (g *Graph) Has(id string) bool {
	_, ok := g.ids[id]
	return ok
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*node.Node, bool) {
	aid, ok := g.ids[id]
	if !ok {
		return nil, false
	}
	return g.nodes[aid], true
}

// AddNode inserts n keyed by its id. In strict mode an existing id is an
// error; in loose mode the existing node and all its descendants are removed
// first.
func (g *Graph) AddNode(n *node.Node) error {
	if n == nil {
		return fmt.Errorf("cannot add nil node")
	}
	if g.Has(n.ID()) {
		if g.mode == Strict {
			return fmt.Errorf("%w: %q", ErrDuplicateNode, n.ID())
		}
		if _, err := g.ReplaceSubgraph(n.ID()); err != nil {
			return err
		}
	}

	aid := g.nextID
	g.nextID++
	g.g.AddNode(simple.Node(aid))
	g.ids[n.ID()] = aid
	g.nodes[aid] = n
	return nil
}

// Connect binds a parent output port to a child input port. Bare references
// resolve to the node's only output (parent) or only input (child).
func (g *Graph) Connect(parent, child nodeid.Ref) error {
	from, err := g.resolve(parent, false)
	if err != nil {
		return err
	}
	to, err := g.resolve(child, true)
	if err != nil {
		return err
	}

	if bound, ok := g.inputs[to.Node][to.Port]; ok {
		return fmt.Errorf("%w: input %q already fed by %q", ErrPortAlreadyBound, to, bound)
	}

	if from.Node == to.Node {
		return fmt.Errorf("%w: %q cannot feed itself", ErrCycle, from.Node)
	}

	pid, cid := g.ids[from.Node], g.ids[to.Node]
	added := false
	if !g.g.HasEdgeFromTo(pid, cid) {
		g.g.SetEdge(g.g.NewEdge(g.g.Node(pid), g.g.Node(cid)))
		added = true
	}
	// The check is global: the new edge may close a path through nodes that
	// were previously unconnected to either endpoint.
	if topo.PathExistsIn(g.g, g.g.Node(cid), g.g.Node(pid)) {
		if added {
			g.g.RemoveEdge(pid, cid)
		}
		return fmt.Errorf("%w: binding %q -> %q", ErrCycle, from, to)
	}

	if g.inputs[to.Node] == nil {
		g.inputs[to.Node] = make(map[string]nodeid.Ref)
	}
	g.inputs[to.Node][to.Port] = from
	return nil
}

// resolve validates a reference and fills in the port for bare references.
func (g *Graph) resolve(ref nodeid.Ref, input bool) (nodeid.Ref, error) {
	n, ok := g.Node(ref.Node)
	if !ok {
		return nodeid.Ref{}, fmt.Errorf("%w: %q", ErrUnknownNode, ref.Node)
	}

	ports, side := n.OutputNames(), "output"
	if input {
		ports, side = n.InputNames(), "input"
	}

	if ref.IsBare() {
		if len(ports) != 1 {
			return nodeid.Ref{}, fmt.Errorf("%w: node %q declares %d %s ports", ErrAmbiguousPort, ref.Node, len(ports), side)
		}
		return ref.WithPort(ports[0]), nil
	}

	if (input && !n.HasInput(ref.Port)) || (!input && !n.HasOutput(ref.Port)) {
		return nodeid.Ref{}, fmt.Errorf("%w: node %q has no %s %q", ErrUnknownPort, ref.Node, side, ref.Port)
	}
	return ref, nil
}

// RemoveNode deletes a node together with its incident edges and bindings.
func (g *Graph) RemoveNode(id string) error {
	aid, ok := g.ids[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownNode, id)
	}

	// Drop bindings where the node is the producer.
	for _, child := range graph.NodesOf(g.g.From(aid)) {
		cid := g.nodes[child.ID()].ID()
		for port, src := range g.inputs[cid] {
			if src.Node == id {
				delete(g.inputs[cid], port)
			}
		}
	}
	delete(g.inputs, id)

	g.g.RemoveNode(aid)
	delete(g.nodes, aid)
	delete(g.ids, id)
	return nil
}

// ReplaceSubgraph removes the node and every node reachable from it. It
// returns the removed ids in topological order.
func (g *Graph) ReplaceSubgraph(id string) ([]string, error) {
	desc, err := g.Descendants(id)
	if err != nil {
		return nil, err
	}
	removed := append([]string{id}, desc...)
	// Remove sinks first so bindings of surviving parents are cleaned as we go.
	for i := len(removed) - 1; i >= 0; i-- {
		if err := g.RemoveNode(removed[i]); err != nil {
			return nil, err
		}
	}
	return removed, nil
}

// InputBindings returns a copy of the producers bound to the node's inputs.
func (g *Graph) InputBindings(id string) (map[string]nodeid.Ref, error) {
	if !g.Has(id) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNode, id)
	}
	out := make(map[string]nodeid.Ref, len(g.inputs[id]))
	for port, src := range g.inputs[id] {
		out[port] = src
	}
	return out, nil
}

// Bindings returns the port bindings carried by the edge parent -> child,
// sorted by child input port.
func (g *Graph) Bindings(parent, child string) []Binding {
	var out []Binding
	for port, src := range g.inputs[child] {
		if src.Node == parent {
			out = append(out, Binding{From: src, To: nodeid.PortRef(child, port)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].To.Port < out[j].To.Port })
	return out
}

// TopologicalOrder returns every node id such that parents precede children.
// Ties are broken by insertion order, so the order is deterministic.
func (g *Graph) TopologicalOrder() ([]string, error) {
	sorted, err := topo.SortStabilized(g.g, byArenaID)
	if err != nil {
		// Unreachable while Connect maintains acyclicity.
		return nil, fmt.Errorf("%w: %v", ErrCycle, err)
	}
	return g.idsOf(sorted), nil
}

// Sources returns the nodes without incoming edges, in topological order.
func (g *Graph) Sources() ([]string, error) {
	return g.filterOrder(func(aid int64) bool { return g.g.To(aid).Len() == 0 })
}

// Sinks returns the nodes without outgoing edges, in topological order.
func (g *Graph) Sinks() ([]string, error) {
	return g.filterOrder(func(aid int64) bool { return g.g.From(aid).Len() == 0 })
}

// UniqueSink returns the only sink of the graph.
func (g *Graph) UniqueSink() (string, error) {
	sinks, err := g.Sinks()
	if err != nil {
		return "", err
	}
	if len(sinks) != 1 {
		return "", fmt.Errorf("%w: found %d %v", ErrMultipleSinks, len(sinks), sinks)
	}
	return sinks[0], nil
}

func (g *Graph) filterOrder(keep func(aid int64) bool) ([]string, error) {
	order, err := g.TopologicalOrder()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(order))
	for _, id := range order {
		if keep(g.ids[id]) {
			out = append(out, id)
		}
	}
	return out, nil
}

func (g *Graph) idsOf(nodes []graph.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, g.nodes[n.ID()].ID())
	}
	return out
}

// byArenaID orders nodes by insertion for stable sorting.
func byArenaID(nodes []graph.Node) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID() < nodes[j].ID() })
}
