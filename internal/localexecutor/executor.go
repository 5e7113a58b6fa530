// Package localexecutor provides a concrete, in-process implementation of the
// executor.Executor interface.
//
// Nodes run one at a time on the calling goroutine, following the plans of a
// scheduler. By default every planned node is executed again on every call;
// WithReuse skips nodes that already hold results for the method.
package localexecutor

import (
	"context"
	"fmt"

	"github.com/vk/backgrid/internal/ctxlog"
	"github.com/vk/backgrid/internal/dag"
	"github.com/vk/backgrid/internal/executor"
	"github.com/vk/backgrid/internal/graph"
	"github.com/vk/backgrid/internal/node"
	"github.com/vk/backgrid/internal/scheduler"
)

// Executor implements the executor.Executor interface for local execution.
type Executor struct {
	sched scheduler.Scheduler
	g     graph.Graph
	reuse bool
}

// Option configures an Executor.
type Option func(*Executor)

// WithReuse makes runs skip nodes that already hold results for the method.
func WithReuse() Option {
	return func(e *Executor) {
		e.reuse = true
	}
}

// New creates a new local executor.
func New(sch scheduler.Scheduler, g graph.Graph, opts ...Option) *Executor {
	e := &Executor{sched: sch, g: g}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var _ executor.Executor = (*Executor)(nil)

// RunFull executes the method on every node and returns each sink's outputs.
func (e *Executor) RunFull(ctx context.Context, m node.Method) (map[string]node.Values, error) {
	logger := ctxlog.FromContext(ctx).With("method", m)
	logger.Info("▶️ Running pipeline.")

	plan, err := e.sched.Plan(ctx)
	if err != nil {
		return nil, err
	}
	if err := e.runPlan(ctx, plan, m); err != nil {
		return nil, err
	}

	sinks, err := e.g.Sinks(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]node.Values, len(sinks))
	for _, id := range sinks {
		vals, err := e.results(ctx, id, m)
		if err != nil {
			return nil, err
		}
		out[id] = vals
	}
	logger.Info("✅ Pipeline finished.", "nodes", len(plan), "sinks", len(sinks))
	return out, nil
}

// RunUpTo executes the method on id and its ancestors and returns id's outputs.
func (e *Executor) RunUpTo(ctx context.Context, id string, m node.Method) (node.Values, error) {
	logger := ctxlog.FromContext(ctx).With("method", m, "target", id)
	logger.Info("▶️ Running pipeline up to node.")

	plan, err := e.sched.PlanUpTo(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := e.runPlan(ctx, plan, m); err != nil {
		return nil, err
	}
	logger.Info("✅ Partial run finished.", "nodes", len(plan))
	return e.results(ctx, id, m)
}

// RunNode executes the method on a single node. Inputs are read from the
// parents' stored outputs; outputs are stored only if every declared output
// is present in the kernel's result.
func (e *Executor) RunNode(ctx context.Context, id string, m node.Method) error {
	n, ok := e.g.Node(ctx, id)
	if !ok {
		return fmt.Errorf("%w: %q", dag.ErrUnknownNode, id)
	}
	logger := ctxlog.FromContext(ctx).With("node", id, "method", m)

	if err := e.g.MarkRunning(ctx, id, m); err != nil {
		return err
	}
	if err := e.execute(ctx, n, m); err != nil {
		nodeErr := &executor.NodeError{NodeID: id, Method: m, Err: err}
		logger.Error("Node execution failed.", "error", err)
		if markErr := e.g.MarkFailed(ctx, id, m, nodeErr); markErr != nil {
			logger.Warn("Could not record node failure.", "error", markErr)
		}
		return nodeErr
	}
	logger.Debug("Node execution succeeded.")
	return e.g.MarkDone(ctx, id, m)
}

func (e *Executor) execute(ctx context.Context, n *node.Node, m node.Method) error {
	if !n.Supports(m) {
		return fmt.Errorf("%w: %s", node.ErrUnsupportedMethod, m)
	}
	in, err := e.g.Inputs(ctx, n.ID(), m)
	if err != nil {
		return err
	}
	out, err := n.Invoke(ctx, m, in)
	if err != nil {
		return err
	}

	for _, name := range n.OutputNames() {
		if _, ok := out[name]; !ok {
			return fmt.Errorf("%w: %q", executor.ErrMissingOutput, name)
		}
	}
	n.StoreAll(m, out)
	return nil
}

// runPlan executes the plan in order, halting on the first failure or when
// the context is cancelled between nodes.
func (e *Executor) runPlan(ctx context.Context, plan []string, m node.Method) error {
	logger := ctxlog.FromContext(ctx)
	for _, id := range plan {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("run cancelled before node %q: %w", id, err)
		}
		if e.reuse {
			if n, ok := e.g.Node(ctx, id); ok && n.Computed(m) {
				logger.Debug("Reusing stored outputs.", "node", id, "method", m)
				if err := e.g.MarkDone(ctx, id, m); err != nil {
					return err
				}
				continue
			}
		}
		if err := e.RunNode(ctx, id, m); err != nil {
			return err
		}
	}
	return nil
}

func (e *Executor) results(ctx context.Context, id string, m node.Method) (node.Values, error) {
	n, ok := e.g.Node(ctx, id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", dag.ErrUnknownNode, id)
	}
	return n.Results(m)
}
