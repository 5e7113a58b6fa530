package scheduler

import (
	"context"
	"fmt"

	"github.com/vk/backgrid/internal/ctxlog"
	"github.com/vk/backgrid/internal/dag"
	"github.com/vk/backgrid/internal/graph"
)

// DefaultScheduler plans over the topological order of a graph.
type DefaultScheduler struct {
	g graph.Graph
}

// New creates a new default scheduler for the given graph.
func New(g graph.Graph) *DefaultScheduler {
	return &DefaultScheduler{g: g}
}

var _ Scheduler = (*DefaultScheduler)(nil)

// Plan implements the Scheduler interface.
func (s *DefaultScheduler) Plan(ctx context.Context) ([]string, error) {
	order, err := s.g.Order(ctx)
	if err != nil {
		return nil, fmt.Errorf("planning full run: %w", err)
	}
	ctxlog.FromContext(ctx).Debug("Planned full run.", "nodes", len(order))
	return order, nil
}

// PlanUpTo implements the Scheduler interface.
func (s *DefaultScheduler) PlanUpTo(ctx context.Context, id string) ([]string, error) {
	if _, ok := s.g.Node(ctx, id); !ok {
		return nil, fmt.Errorf("planning run up to %q: %w", id, dag.ErrUnknownNode)
	}
	// Ancestors are already in topological order, and id follows all of them.
	anc, err := s.g.Ancestors(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("planning run up to %q: %w", id, err)
	}
	plan := append(anc, id)
	ctxlog.FromContext(ctx).Debug("Planned partial run.", "target", id, "nodes", len(plan))
	return plan, nil
}
