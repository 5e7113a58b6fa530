package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vk/backgrid/internal/graph"
	"github.com/vk/backgrid/internal/node"
)

const (
	phaseIdle     = "idle"
	phaseLoading  = "loading"
	phaseBuilding = "building"
	phaseRunning  = "running"
	phaseWriting  = "writing"
	phaseDone     = "done"
	phaseFailed   = "failed"
)

// Status is the body of the /status endpoint.
type Status struct {
	RunID string         `json:"run_id"`
	Phase string         `json:"phase"`
	Nodes map[string]int `json:"nodes,omitempty"`
	// Failures maps "node/method" to the failure cause of that pair.
	Failures map[string]string `json:"failures,omitempty"`
}

// router builds the healthcheck routes.
func (a *App) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Get("/health", a.healthHandler)
	r.Get("/status", a.statusHandler)
	return r
}

// healthHandler logs the request and answers OK.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// statusHandler reports the run phase and per-state node counts.
func (a *App) statusHandler(w http.ResponseWriter, r *http.Request) {
	a.mu.RLock()
	st := Status{RunID: a.runID, Phase: a.phase}
	g := a.graph
	a.mu.RUnlock()

	if g != nil {
		counts, err := g.Progress(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		st.Nodes = make(map[string]int, len(counts))
		for state, n := range counts {
			st.Nodes[state.String()] = n
		}
		if counts[node.Failed] > 0 {
			if st.Failures, err = failures(r.Context(), g); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(st); err != nil {
		a.logger.Error("Failed to encode status.", "error", err)
	}
}

// failures collects the recorded cause of every failed (node, method) pair.
func failures(ctx context.Context, g graph.Graph) (map[string]string, error) {
	ids, err := g.Order(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string)
	for _, id := range ids {
		for _, m := range []node.Method{node.Fit, node.Predict} {
			cause, err := g.Failure(ctx, id, m)
			if err != nil {
				return nil, err
			}
			if cause != nil {
				out[id+"/"+m.String()] = cause.Error()
			}
		}
	}
	return out, nil
}

// startHealthcheckServer initializes and runs the health check HTTP server.
// It returns the bound address.
func (a *App) startHealthcheckServer(port int) (string, error) {
	a.logger.Debug("Configuring health check server.")
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return "", fmt.Errorf("failed to listen for health checks: %w", err)
	}
	a.httpServer = &http.Server{Handler: a.router(), ReadHeaderTimeout: 5 * time.Second}

	addr := ln.Addr().String()
	go func() {
		a.logger.Info("🩺 Health check server starting", "address", addr)
		if err := a.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Health check server failed unexpectedly", "error", err)
		}
	}()
	return addr, nil
}

func (a *App) closeHealthcheckServer(ctx context.Context) error {
	if a.httpServer == nil {
		a.logger.Debug("Health check server was not running.")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	a.logger.Info("🩺 Shutting down health check server...")
	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("Health check server shutdown failed", "error", err)
		return err
	}
	a.httpServer = nil
	return nil
}
