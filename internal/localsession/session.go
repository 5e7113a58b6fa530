// Package localsession provides a concrete implementation of the session.Session
// and session.SessionFactory interfaces for local, in-process execution.
package localsession

import (
	"context"
	"errors"

	"github.com/vk/backgrid/internal/ctxlog"
	"github.com/vk/backgrid/internal/executor"
	"github.com/vk/backgrid/internal/graph"
	"github.com/vk/backgrid/internal/inmemorystore"
	"github.com/vk/backgrid/internal/localexecutor"
	"github.com/vk/backgrid/internal/scheduler"
	"github.com/vk/backgrid/internal/session"
	"github.com/vk/backgrid/internal/topologystore"
)

// SessionFactory implements session.SessionFactory for local runs.
type SessionFactory struct{}

var _ session.SessionFactory = (*SessionFactory)(nil)

// NewSession wires a run-state store, scheduler and executor around the topology.
func (f *SessionFactory) NewSession(ctx context.Context, topology topologystore.Store, opts session.Options) (session.Session, error) {
	if topology == nil {
		return nil, errors.New("localsession: topology is nil")
	}
	ctxlog.FromContext(ctx).Debug("Creating local session.", "reuse", opts.Reuse)

	g := graph.New(topology, inmemorystore.New())
	sched := scheduler.New(g)

	var execOpts []localexecutor.Option
	if opts.Reuse {
		execOpts = append(execOpts, localexecutor.WithReuse())
	}
	return &Session{
		graph:    g,
		executor: localexecutor.New(sched, g, execOpts...),
	}, nil
}

// Session implements session.Session for local runs.
type Session struct {
	graph    graph.Graph
	executor executor.Executor
}

// Executor returns the executor wired by the factory.
func (s *Session) Executor() executor.Executor {
	return s.executor
}

// Graph returns the graph facade wired by the factory.
func (s *Session) Graph() graph.Graph {
	return s.graph
}

// Close is a no-op for in-process sessions.
func (s *Session) Close(ctx context.Context) error {
	ctxlog.FromContext(ctx).Debug("Closing local session.")
	return nil
}
