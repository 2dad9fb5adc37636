// Package health serves /health and /metrics while a run is in progress.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vietddude/harvester/internal/harvest"
)

// Reporter exposes the state of the current run.
type Reporter interface {
	Status() harvest.Status
}

// Server provides HTTP endpoints for health monitoring.
type Server struct {
	reporter Reporter
	server   *http.Server
}

// NewServer creates a new health server.
func NewServer(reporter Reporter, port int) *Server {
	mux := http.NewServeMux()
	s := &Server{
		reporter: reporter,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/health/detailed", s.handleDetailed)
	mux.Handle("/metrics", promhttp.Handler())

	return s
}

// Start starts the HTTP server in the background.
func (s *Server) Start() {
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Health server failed", "error", err)
		}
	}()
	slog.Info("Health server listening", "addr", s.server.Addr)
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	st := s.reporter.Status()
	state := "idle"
	if st.Running {
		state = "running"
	}

	response := map[string]any{
		"status":    "healthy",
		"run":       state,
		"processed": st.Stats.Processed(),
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}

func (s *Server) handleDetailed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.reporter.Status())
}
