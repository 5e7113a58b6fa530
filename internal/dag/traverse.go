package dag

import (
	"fmt"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"
)

// reversed presents the graph with every edge flipped, so ancestor queries
// can reuse the forward traversal.
type reversed struct {
	g *simple.DirectedGraph
}

func (r reversed) From(id int64) graph.Nodes { return r.g.To(id) }

func (r reversed) Edge(uid, vid int64) graph.Edge { return r.g.Edge(vid, uid) }

// Descendants returns every node reachable from id (excluding id), in
// topological order.
func (g *Graph) Descendants(id string) ([]string, error) {
	aid, ok := g.ids[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNode, id)
	}
	return g.reachable(g.g, aid)
}

// Ancestors returns every node from which id is reachable (excluding id), in
// topological order.
func (g *Graph) Ancestors(id string) ([]string, error) {
	aid, ok := g.ids[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNode, id)
	}
	return g.reachable(reversed{g: g.g}, aid)
}

func (g *Graph) reachable(tg traverse.Graph, start int64) ([]string, error) {
	seen := make(map[int64]struct{})
	df := traverse.DepthFirst{
		Visit: func(n graph.Node) {
			if n.ID() != start {
				seen[n.ID()] = struct{}{}
			}
		},
	}
	df.Walk(tg, g.g.Node(start), nil)

	order, err := g.TopologicalOrder()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(seen))
	for _, id := range order {
		if _, ok := seen[g.ids[id]]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}
