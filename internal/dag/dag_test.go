package dag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/backgrid/internal/node"
	"github.com/vk/backgrid/internal/nodeid"
)

func passthrough() node.KernelFunc {
	return func(_ context.Context, in node.Values) (node.Values, error) {
		return node.Values{"out": in["in"]}, nil
	}
}

// addNode adds a node with a single input "in" and a single output "out".
func addNode(t *testing.T, g *Graph, id string) *node.Node {
	t.Helper()
	n := node.MustNew(id, []string{"in"}, []string{"out"}, passthrough())
	require.NoError(t, g.AddNode(n))
	return n
}

func connect(t *testing.T, g *Graph, from, to string) {
	t.Helper()
	require.NoError(t, g.Connect(nodeid.MustParse(from), nodeid.MustParse(to)))
}

func TestNew(t *testing.T) {
	g := New(Strict)
	require.NotNil(t, g)
	assert.Equal(t, 0, g.Len())
	assert.Equal(t, Strict, g.Mode())
	assert.Equal(t, "loose", Loose.String())
}

func TestAddNode(t *testing.T) {
	t.Run("strict mode rejects duplicates", func(t *testing.T) {
		g := New(Strict)
		first := addNode(t, g, "a")

		err := g.AddNode(node.MustNew("a", nil, []string{"out"}, passthrough()))
		assert.ErrorIs(t, err, ErrDuplicateNode)

		got, ok := g.Node("a")
		require.True(t, ok)
		assert.Same(t, first, got, "the original node must survive a rejected add")
	})

	t.Run("loose mode replaces the node and its descendants", func(t *testing.T) {
		g := New(Loose)
		addNode(t, g, "a")
		addNode(t, g, "b")
		c := addNode(t, g, "c")
		addNode(t, g, "x")
		connect(t, g, "a", "b")
		connect(t, g, "b", "c")
		require.NoError(t, c.Store(node.Predict, "out", "stale"))

		replacement := addNode(t, g, "a")

		assert.Equal(t, 2, g.Len())
		assert.False(t, g.Has("b"))
		assert.False(t, g.Has("c"))
		assert.True(t, g.Has("x"), "unrelated nodes are untouched")

		got, ok := g.Node("a")
		require.True(t, ok)
		assert.Same(t, replacement, got)

		sinks, err := g.Sinks()
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"a", "x"}, sinks)

		// The old downstream nodes are unreachable from the graph, so a
		// rebuilt "b" starts with an empty result store.
		b := addNode(t, g, "b")
		connect(t, g, "a", "b")
		assert.False(t, b.Computed(node.Predict))
	})

	t.Run("loose re-add of a middle node keeps its parents", func(t *testing.T) {
		g := New(Loose)
		addNode(t, g, "a")
		addNode(t, g, "b")
		addNode(t, g, "c")
		connect(t, g, "a", "b")
		connect(t, g, "b", "c")

		addNode(t, g, "b")
		assert.True(t, g.Has("a"))
		assert.False(t, g.Has("c"))

		// The parent's binding to the removed child is gone, so it can feed the new one.
		connect(t, g, "a", "b")
		bindings, err := g.InputBindings("b")
		require.NoError(t, err)
		assert.Equal(t, nodeid.PortRef("a", "out"), bindings["in"])
	})

	t.Run("nil node", func(t *testing.T) {
		assert.Error(t, New(Strict).AddNode(nil))
	})
}

func TestConnect(t *testing.T) {
	t.Run("success case", func(t *testing.T) {
		g := New(Strict)
		addNode(t, g, "a")
		addNode(t, g, "b")

		connect(t, g, "a", "b.in")

		bindings, err := g.InputBindings("b")
		require.NoError(t, err)
		assert.Equal(t, map[string]nodeid.Ref{"in": nodeid.PortRef("a", "out")}, bindings)
		assert.Equal(t, []Binding{{From: nodeid.PortRef("a", "out"), To: nodeid.PortRef("b", "in")}}, g.Bindings("a", "b"))
	})

	t.Run("multiple bindings on one edge", func(t *testing.T) {
		g := New(Strict)
		require.NoError(t, g.AddNode(node.MustNew("src", nil, []string{"x", "y"}, passthrough())))
		require.NoError(t, g.AddNode(node.MustNew("dst", []string{"p", "q"}, []string{"out"}, passthrough())))

		connect(t, g, "src.x", "dst.p")
		connect(t, g, "src.y", "dst.q")

		assert.Len(t, g.Bindings("src", "dst"), 2)
		sinks, err := g.Sinks()
		require.NoError(t, err)
		assert.Equal(t, []string{"dst"}, sinks)
	})

	t.Run("error cases", func(t *testing.T) {
		g := New(Strict)
		addNode(t, g, "a")
		addNode(t, g, "b")
		require.NoError(t, g.AddNode(node.MustNew("multi", []string{"l", "r"}, []string{"o1", "o2"}, passthrough())))

		err := g.Connect(nodeid.NodeRef("dne"), nodeid.NodeRef("a"))
		assert.ErrorIs(t, err, ErrUnknownNode)

		err = g.Connect(nodeid.NodeRef("a"), nodeid.NodeRef("dne"))
		assert.ErrorIs(t, err, ErrUnknownNode)

		err = g.Connect(nodeid.PortRef("a", "nope"), nodeid.NodeRef("b"))
		assert.ErrorIs(t, err, ErrUnknownPort)

		err = g.Connect(nodeid.NodeRef("a"), nodeid.PortRef("b", "out"))
		assert.ErrorIs(t, err, ErrUnknownPort, "an output name is not an input port")

		err = g.Connect(nodeid.NodeRef("multi"), nodeid.NodeRef("b"))
		assert.ErrorIs(t, err, ErrAmbiguousPort)

		err = g.Connect(nodeid.NodeRef("a"), nodeid.NodeRef("multi"))
		assert.ErrorIs(t, err, ErrAmbiguousPort)

		err = g.Connect(nodeid.NodeRef("a"), nodeid.NodeRef("a"))
		assert.ErrorIs(t, err, ErrCycle)
	})
}

func TestSingleWriterInputPort(t *testing.T) {
	g := New(Strict)
	addNode(t, g, "a")
	addNode(t, g, "b")
	addNode(t, g, "c")

	connect(t, g, "a", "c")
	err := g.Connect(nodeid.NodeRef("b"), nodeid.NodeRef("c"))
	assert.ErrorIs(t, err, ErrPortAlreadyBound)

	bindings, err := g.InputBindings("c")
	require.NoError(t, err)
	assert.Equal(t, nodeid.PortRef("a", "out"), bindings["in"], "existing binding must be unchanged")
	assert.Empty(t, g.Bindings("b", "c"))
}

func TestAcyclicity(t *testing.T) {
	t.Run("closing a chain is rejected", func(t *testing.T) {
		g := New(Strict)
		require.NoError(t, g.AddNode(node.MustNew("a", []string{"in"}, []string{"out"}, passthrough())))
		addNode(t, g, "b")
		addNode(t, g, "c")

		connect(t, g, "a", "b")
		connect(t, g, "b", "c")
		err := g.Connect(nodeid.NodeRef("c"), nodeid.NodeRef("a"))
		require.ErrorIs(t, err, ErrCycle)

		// A has no path back to itself, and its input stays unbound.
		anc, err := g.Ancestors("a")
		require.NoError(t, err)
		assert.Empty(t, anc)
		bindings, err := g.InputBindings("a")
		require.NoError(t, err)
		assert.Empty(t, bindings)

		order, err := g.TopologicalOrder()
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, order)
	})

	t.Run("rolled back edge keeps existing bindings between the same nodes", func(t *testing.T) {
		g := New(Strict)
		require.NoError(t, g.AddNode(node.MustNew("p", []string{"in"}, []string{"o1", "o2"}, passthrough())))
		require.NoError(t, g.AddNode(node.MustNew("q", []string{"i1", "i2"}, []string{"out"}, passthrough())))

		connect(t, g, "p.o1", "q.i1")
		err := g.Connect(nodeid.NodeRef("q"), nodeid.NodeRef("p"))
		require.ErrorIs(t, err, ErrCycle)

		connect(t, g, "p.o2", "q.i2")
		assert.Len(t, g.Bindings("p", "q"), 2)
	})

	t.Run("cycle through a previously disjoint component", func(t *testing.T) {
		g := New(Strict)
		for _, id := range []string{"a", "b", "x", "y"} {
			require.NoError(t, g.AddNode(node.MustNew(id, []string{"i1", "i2"}, []string{"out"}, passthrough())))
		}
		connect(t, g, "a", "b.i1")
		connect(t, g, "x", "y.i1")
		connect(t, g, "b", "x.i1")

		err := g.Connect(nodeid.NodeRef("y"), nodeid.PortRef("a", "i1"))
		assert.ErrorIs(t, err, ErrCycle)
	})
}

func TestSourcesAndSinks(t *testing.T) {
	g := New(Strict)
	for _, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, g.AddNode(node.MustNew(id, []string{"i1", "i2"}, []string{"out"}, passthrough())))
	}
	// Diamond: a -> b, a -> c, b -> d, c -> d
	connect(t, g, "a", "b.i1")
	connect(t, g, "a", "c.i1")
	connect(t, g, "b", "d.i1")
	connect(t, g, "c", "d.i2")

	sources, err := g.Sources()
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, sources)

	sink, err := g.UniqueSink()
	require.NoError(t, err)
	assert.Equal(t, "d", sink)

	require.NoError(t, g.AddNode(node.MustNew("e", nil, []string{"out"}, passthrough())))
	_, err = g.UniqueSink()
	assert.ErrorIs(t, err, ErrMultipleSinks)

	_, err = New(Strict).UniqueSink()
	assert.ErrorIs(t, err, ErrMultipleSinks)
}

func TestAncestorsAndDescendants(t *testing.T) {
	g := New(Strict)
	for _, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, g.AddNode(node.MustNew(id, []string{"i1", "i2"}, []string{"out"}, passthrough())))
	}
	connect(t, g, "a", "b.i1")
	connect(t, g, "a", "c.i1")
	connect(t, g, "b", "d.i1")
	connect(t, g, "c", "d.i2")

	anc, err := g.Ancestors("d")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, anc)

	anc, err = g.Ancestors("b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, anc)

	desc, err := g.Descendants("a")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "d"}, desc)

	_, err = g.Ancestors("dne")
	assert.ErrorIs(t, err, ErrUnknownNode)
}

func TestRemoveNode(t *testing.T) {
	g := New(Strict)
	addNode(t, g, "a")
	addNode(t, g, "b")
	addNode(t, g, "c")
	connect(t, g, "a", "b")
	connect(t, g, "b", "c")

	require.NoError(t, g.RemoveNode("b"))
	assert.False(t, g.Has("b"))

	bindings, err := g.InputBindings("c")
	require.NoError(t, err)
	assert.Empty(t, bindings, "bindings from the removed node are dropped")

	// Explicit removal does not cascade.
	assert.True(t, g.Has("c"))

	err = g.RemoveNode("b")
	assert.ErrorIs(t, err, ErrUnknownNode)

	_, err = g.InputBindings("b")
	assert.ErrorIs(t, err, ErrUnknownNode)
}

func TestReplaceSubgraph(t *testing.T) {
	g := New(Strict)
	addNode(t, g, "a")
	addNode(t, g, "b")
	addNode(t, g, "c")
	connect(t, g, "a", "b")
	connect(t, g, "b", "c")

	removed, err := g.ReplaceSubgraph("b")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, removed)
	assert.Equal(t, 1, g.Len())

	_, err = g.ReplaceSubgraph("zzz")
	assert.ErrorIs(t, err, ErrUnknownNode)
}

func TestTopologicalOrderIsStable(t *testing.T) {
	g := New(Strict)
	// Insert in an order that differs from the alphabetical one.
	for _, id := range []string{"z", "m", "a"} {
		addNode(t, g, id)
	}
	order, err := g.TopologicalOrder()
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "m", "a"}, order)

	connect(t, g, "a", "z")
	order, err = g.TopologicalOrder()
	require.NoError(t, err)
	assert.Equal(t, []string{"m", "a", "z"}, order)
}
