package integration_tests

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/backgrid/internal/builder"
	"github.com/vk/backgrid/internal/config"
	"github.com/vk/backgrid/internal/dag"
	"github.com/vk/backgrid/internal/hcl_adapter"
	"github.com/vk/backgrid/internal/localsession"
	"github.com/vk/backgrid/internal/node"
	"github.com/vk/backgrid/internal/registry"
	"github.com/vk/backgrid/internal/session"
	"github.com/vk/backgrid/internal/testutil"
)

// recModule registers stub kinds backed by a shared Recorder:
//
//	rec_source: no inputs, output "out"
//	rec:        input "in", output "out"
//	rec_fail:   input "in", output "out", always fails
//
// The "label" parameter names the recorded invocation.
type recModule struct {
	rec *testutil.Recorder
}

func (m *recModule) kind(name string, inputs []string, fn func() node.KernelFunc) *registry.Kind {
	return &registry.Kind{
		Name:     name,
		Inputs:   inputs,
		Outputs:  []string{"out"},
		Defaults: config.Config{"label": name},
		New: func(params config.Config) (node.Kernel, error) {
			id, err := params.String("label")
			if err != nil {
				return nil, err
			}
			return m.rec.Kernel(id, fn()), nil
		},
	}
}

func (m *recModule) Register(r *registry.Registry) {
	none := func() node.KernelFunc { return nil }
	r.Register(m.kind("rec_source", nil, none))
	r.Register(m.kind("rec", []string{"in"}, none))
	r.Register(m.kind("rec_fail", []string{"in"}, testutil.Failing))
}

// harness is a built pipeline with an open session.
type harness struct {
	ctx   context.Context
	logs  *testutil.SafeBuffer
	graph *dag.Graph
	sess  session.Session
}

// buildPipeline writes files to a temp dir, loads and builds them, and opens
// a local session. Load and build errors are returned for assertions.
func buildPipeline(t *testing.T, files map[string]string, opts session.Options, modules ...registry.Module) (*harness, error) {
	t.Helper()
	ctx, logs := testutil.LoggedContext(t)
	dir := testutil.WriteFiles(t, files)

	spec, err := hcl_adapter.NewLoader().Load(ctx, dir)
	if err != nil {
		return nil, err
	}
	reg := registry.New().Use(modules...)
	g, err := builder.PipelineBuilder(spec, reg, dag.Strict, builder.WithBaseDir(spec.Dir)).Build(ctx, nil)
	if err != nil {
		return nil, err
	}
	sess, err := (&localsession.SessionFactory{}).NewSession(ctx, g, opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sess.Close(ctx) })

	return &harness{ctx: ctx, logs: logs, graph: g, sess: sess}, nil
}

func (h *harness) status(t *testing.T, id string, m node.Method) node.State {
	t.Helper()
	st, err := h.sess.Graph().Status(h.ctx, id, m)
	require.NoError(t, err)
	return st
}

const portfolioBlock = `
portfolio {
  initial_cash = 1000
  prices       = "prices.csv"
}
`
