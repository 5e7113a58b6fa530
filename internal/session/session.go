// Package session defines the core interfaces for creating and managing an
// execution session. It abstracts away the details of local vs. remote execution.
package session

import (
	"context"

	"github.com/vk/backgrid/internal/executor"
	"github.com/vk/backgrid/internal/graph"
	"github.com/vk/backgrid/internal/topologystore"
)

// Options tune how a session executes.
type Options struct {
	// Reuse skips nodes that already hold results for the requested method.
	Reuse bool
}

// SessionFactory creates an execution Session over a built topology.
type SessionFactory interface {
	NewSession(ctx context.Context, topology topologystore.Store, opts Options) (Session, error)
}

// Session represents the execution of one pipeline and manages its lifecycle.
type Session interface {
	Executor() executor.Executor
	// Graph exposes structure and run state, e.g. for progress reporting.
	Graph() graph.Graph
	// Close releases any resources held by the session.
	Close(ctx context.Context) error
}
