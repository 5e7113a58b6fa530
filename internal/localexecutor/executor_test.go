package localexecutor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/backgrid/internal/dag"
	"github.com/vk/backgrid/internal/executor"
	"github.com/vk/backgrid/internal/graph"
	"github.com/vk/backgrid/internal/inmemorystore"
	"github.com/vk/backgrid/internal/node"
	"github.com/vk/backgrid/internal/nodeid"
	"github.com/vk/backgrid/internal/scheduler"
	"github.com/vk/backgrid/internal/testutil"
)

func newExecutor(d *dag.Graph, opts ...Option) (*Executor, *graph.Manager) {
	g := graph.New(d, inmemorystore.New())
	return New(scheduler.New(g), g, opts...), g
}

func connect(t *testing.T, d *dag.Graph, from, to string) {
	t.Helper()
	require.NoError(t, d.Connect(nodeid.MustParse(from), nodeid.MustParse(to)))
}

// chain builds a -> b -> c, where every kernel fails on a nil input.
func chain(t *testing.T, rec *testutil.Recorder) *dag.Graph {
	t.Helper()
	d := dag.New(dag.Strict)
	require.NoError(t, d.AddNode(rec.Node("a")))
	require.NoError(t, d.AddNode(rec.Node("b", "in")))
	require.NoError(t, d.AddNode(rec.Node("c", "in")))
	connect(t, d, "a", "b")
	connect(t, d, "b", "c")
	return d
}

// diamond builds a -> b, a -> c, b -> d, c -> d.
func diamond(t *testing.T, rec *testutil.Recorder) *dag.Graph {
	t.Helper()
	d := dag.New(dag.Strict)
	require.NoError(t, d.AddNode(rec.Node("a")))
	require.NoError(t, d.AddNode(rec.Node("b", "in")))
	require.NoError(t, d.AddNode(rec.Node("c", "in")))
	require.NoError(t, d.AddNode(rec.Node("d", "l", "r")))
	connect(t, d, "a", "b")
	connect(t, d, "a", "c")
	connect(t, d, "b", "d.l")
	connect(t, d, "c", "d.r")
	return d
}

func TestRunFull_TopologicalExecution(t *testing.T) {
	rec := testutil.NewRecorder()
	e, g := newExecutor(chain(t, rec))
	ctx := context.Background()

	out, err := e.RunFull(ctx, node.Predict)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, rec.Ran())
	assert.Equal(t, map[string]node.Values{"c": {"out": "c"}}, out)

	records := rec.Records()
	assert.Equal(t, node.Values{"in": "a"}, records[1].Inputs)
	assert.Equal(t, node.Values{"in": "b"}, records[2].Inputs)

	for _, id := range []string{"a", "b", "c"} {
		status, err := g.Status(ctx, id, node.Predict)
		require.NoError(t, err)
		assert.Equal(t, node.Done, status, id)
	}
}

func TestRunFull_MultipleSinks(t *testing.T) {
	rec := testutil.NewRecorder()
	d := dag.New(dag.Strict)
	require.NoError(t, d.AddNode(rec.Node("a")))
	require.NoError(t, d.AddNode(rec.Node("b", "in")))
	require.NoError(t, d.AddNode(rec.Node("c", "in")))
	connect(t, d, "a", "b")
	connect(t, d, "a", "c")
	e, _ := newExecutor(d)

	out, err := e.RunFull(context.Background(), node.Fit)
	require.NoError(t, err)
	assert.Equal(t, map[string]node.Values{"b": {"out": "b"}, "c": {"out": "c"}}, out)
}

func TestRunUpTo_OnlyAncestorClosure(t *testing.T) {
	rec := testutil.NewRecorder()
	e, _ := newExecutor(diamond(t, rec))

	out, err := e.RunUpTo(context.Background(), "b", node.Predict)
	require.NoError(t, err)

	assert.Equal(t, node.Values{"out": "b"}, out)
	assert.Equal(t, []string{"a", "b"}, rec.Ran(), "c and d must never be invoked")

	_, err = e.RunUpTo(context.Background(), "ghost", node.Predict)
	assert.ErrorIs(t, err, dag.ErrUnknownNode)
}

func TestRunFull_HaltsOnFirstFailure(t *testing.T) {
	rec := testutil.NewRecorder()
	d := dag.New(dag.Strict)
	require.NoError(t, d.AddNode(rec.Node("a")))
	require.NoError(t, d.AddNode(node.MustNew("b", []string{"in"}, []string{"out"}, rec.Kernel("b", testutil.Failing()))))
	require.NoError(t, d.AddNode(rec.Node("c", "in")))
	connect(t, d, "a", "b")
	connect(t, d, "b", "c")
	e, g := newExecutor(d)
	ctx := context.Background()

	_, err := e.RunFull(ctx, node.Predict)
	require.Error(t, err)

	var nodeErr *executor.NodeError
	require.True(t, errors.As(err, &nodeErr))
	assert.Equal(t, "b", nodeErr.NodeID)
	assert.Equal(t, node.Predict, nodeErr.Method)
	assert.ErrorIs(t, err, testutil.ErrKernelFailed)

	assert.Equal(t, []string{"a", "b"}, rec.Ran())

	// Outputs of nodes that finished stay inspectable.
	a, _ := d.Node("a")
	v, err := a.Output(node.Predict, "out")
	require.NoError(t, err)
	assert.Equal(t, "a", v)

	status, err := g.Status(ctx, "b", node.Predict)
	require.NoError(t, err)
	assert.Equal(t, node.Failed, status)
	status, err = g.Status(ctx, "c", node.Predict)
	require.NoError(t, err)
	assert.Equal(t, node.Pending, status)
}

func TestRunNode(t *testing.T) {
	ctx := context.Background()

	t.Run("missing declared output", func(t *testing.T) {
		d := dag.New(dag.Strict)
		require.NoError(t, d.AddNode(node.MustNew("a", nil, []string{"x", "y"}, node.KernelFunc(
			func(context.Context, node.Values) (node.Values, error) {
				return node.Values{"x": 1}, nil
			}))))
		e, _ := newExecutor(d)

		err := e.RunNode(ctx, "a", node.Predict)
		assert.ErrorIs(t, err, executor.ErrMissingOutput)

		a, _ := d.Node("a")
		assert.False(t, a.Computed(node.Predict), "partial results must not be stored")
	})

	t.Run("parent not computed", func(t *testing.T) {
		rec := testutil.NewRecorder()
		e, _ := newExecutor(chain(t, rec))

		err := e.RunNode(ctx, "b", node.Predict)
		assert.ErrorIs(t, err, node.ErrNotComputed)
		assert.Empty(t, rec.Ran())
	})

	t.Run("unsupported method", func(t *testing.T) {
		d := dag.New(dag.Strict)
		require.NoError(t, d.AddNode(node.MustNew("p", nil, []string{"out"}, testutil.PredictOnly{Out: node.Values{"out": 1}})))
		e, _ := newExecutor(d)

		err := e.RunNode(ctx, "p", node.Fit)
		assert.ErrorIs(t, err, node.ErrUnsupportedMethod)
		require.NoError(t, e.RunNode(ctx, "p", node.Predict))
	})

	t.Run("sink without outputs", func(t *testing.T) {
		d := dag.New(dag.Strict)
		require.NoError(t, d.AddNode(node.MustNew("s", nil, nil, node.KernelFunc(
			func(context.Context, node.Values) (node.Values, error) { return nil, nil }))))
		e, _ := newExecutor(d)

		out, err := e.RunFull(ctx, node.Predict)
		require.NoError(t, err)
		assert.Equal(t, map[string]node.Values{"s": {}}, out)
	})

	t.Run("unknown node", func(t *testing.T) {
		e, _ := newExecutor(dag.New(dag.Strict))
		assert.ErrorIs(t, e.RunNode(ctx, "ghost", node.Predict), dag.ErrUnknownNode)
	})
}

func TestReuse(t *testing.T) {
	ctx := context.Background()

	t.Run("default re-executes every call", func(t *testing.T) {
		rec := testutil.NewRecorder()
		e, _ := newExecutor(chain(t, rec))

		_, err := e.RunFull(ctx, node.Predict)
		require.NoError(t, err)
		_, err = e.RunFull(ctx, node.Predict)
		require.NoError(t, err)
		assert.Len(t, rec.Ran(), 6)
	})

	t.Run("WithReuse skips computed nodes", func(t *testing.T) {
		rec := testutil.NewRecorder()
		e, _ := newExecutor(diamond(t, rec), WithReuse())

		_, err := e.RunUpTo(ctx, "b", node.Predict)
		require.NoError(t, err)
		rec.Reset()

		_, err = e.RunFull(ctx, node.Predict)
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "d"}, rec.Ran())

		// Results under another method are not reused.
		rec.Reset()
		_, err = e.RunFull(ctx, node.Fit)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c", "d"}, rec.Ran())
	})
}

func TestCancellation(t *testing.T) {
	rec := testutil.NewRecorder()
	d := dag.New(dag.Strict)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, d.AddNode(node.MustNew("a", nil, []string{"out"}, rec.Kernel("a", func(context.Context, node.Values) (node.Values, error) {
		cancel()
		return node.Values{"out": 1}, nil
	}))))
	require.NoError(t, d.AddNode(rec.Node("b", "in")))
	connect(t, d, "a", "b")
	e, _ := newExecutor(d)

	_, err := e.RunFull(ctx, node.Predict)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"a"}, rec.Ran())
}
