package scheduler

import "context"

// Scheduler produces execution plans for a graph.
type Scheduler interface {
	// Plan returns every node id in execution order.
	Plan(ctx context.Context) ([]string, error)

	// PlanUpTo returns the ancestors of id followed by id, in execution order.
	PlanUpTo(ctx context.Context, id string) ([]string, error)
}
