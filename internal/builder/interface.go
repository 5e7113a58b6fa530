package builder

import (
	"context"

	"github.com/vk/backgrid/internal/config"
	"github.com/vk/backgrid/internal/dag"
)

// Builder produces a pipeline graph from a configuration.
type Builder interface {
	// ConfigTemplate returns the full parameter set the builder accepts, with
	// default values filled in. Callers edit a copy and pass it to Build.
	ConfigTemplate() config.Config

	// Build constructs a graph. The returned graph satisfies all graph
	// invariants.
	Build(ctx context.Context, cfg config.Config) (*dag.Graph, error)
}
