package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/vk/backgrid/internal/backtest"
	"github.com/vk/backgrid/internal/config"
	"github.com/vk/backgrid/internal/graph"
	"github.com/vk/backgrid/internal/localsession"
	"github.com/vk/backgrid/internal/portfoliolog"
	"github.com/vk/backgrid/internal/registry"
	"github.com/vk/backgrid/internal/session"
)

// Publisher uploads a finished portfolio log directory.
type Publisher interface {
	Publish(ctx context.Context, dir string) ([]string, error)
}

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	loader   config.Loader
	registry *registry.Registry
	runID    string

	newPublisher func(ctx context.Context, bucket, prefix string) (Publisher, error)
	sessions     session.SessionFactory

	httpServer *http.Server

	mu     sync.RWMutex
	phase  string
	graph  graph.Graph
	result *backtest.Result
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// Without modules the core node kinds are registered.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader, modules ...registry.Module) *App {
	runID := uuid.NewString()
	logger := newLogger(appConfig, runID, outW)
	logger.Debug("Logger configured successfully.")

	if len(modules) == 0 {
		modules = coreModules
	}
	reg := registry.New().Use(modules...)
	logger.Debug("All Go modules registered.", "count", len(modules), "kinds", reg.Kinds())

	return &App{
		outW:     outW,
		logger:   logger,
		config:   appConfig,
		loader:   loader,
		registry: reg,
		runID:    runID,
		newPublisher: func(ctx context.Context, bucket, prefix string) (Publisher, error) {
			return portfoliolog.NewS3Publisher(ctx, bucket, prefix)
		},
		sessions: &localsession.SessionFactory{},
		phase:    phaseIdle,
	}
}

// WithPublisher replaces the S3 publisher, mainly for tests.
func (a *App) WithPublisher(p Publisher) *App {
	a.newPublisher = func(context.Context, string, string) (Publisher, error) { return p, nil }
	return a
}

// WithSessionFactory replaces the local session factory, mainly for tests.
func (a *App) WithSessionFactory(f session.SessionFactory) *App {
	a.sessions = f
	return a
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// RunID returns the id attached to every log line of this app.
func (a *App) RunID() string {
	return a.runID
}

// Result returns the backtest result of the last successful Run.
func (a *App) Result() *backtest.Result {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.result
}

func (a *App) setPhase(phase string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.phase = phase
}

func (a *App) setGraph(g graph.Graph) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.graph = g
}
