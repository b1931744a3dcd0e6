// Package server exposes simulations over HTTP.
//
//	POST /simulate  run a TOML run file, answer with a JSON snapshot
//	GET  /models    registered models and solver methods
//	GET  /health    liveness check
//	GET  /metrics   Prometheus solver metrics
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/njchilds90/gobamm"
	"github.com/njchilds90/gobamm/internal/logging"
	"github.com/njchilds90/gobamm/models"
	"github.com/njchilds90/gobamm/simulation"
	"github.com/njchilds90/gobamm/solver"
)

const maxBodyBytes = 1 << 20

// Server runs simulations on request. Solver metrics from every run are
// collected on one registry.
type Server struct {
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *solver.Metrics
}

type Option func(*Server)

func WithLogger(l *slog.Logger) Option { return func(s *Server) { s.logger = l } }

func New(opts ...Option) (*Server, error) {
	s := &Server{logger: logging.NewNop(), registry: prometheus.NewRegistry()}
	for _, opt := range opts {
		opt(s)
	}
	m, err := solver.NewMetrics(s.registry)
	if err != nil {
		return nil, err
	}
	s.metrics = m
	return s, nil
}

// Handler routes requests to the server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.recoverer)
	r.Post("/simulate", s.simulate)
	r.Get("/models", s.models)
	r.Get("/health", s.health)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return r
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic in handler", "path", r.URL.Path, "panic", rec, "stack", string(debug.Stack()))
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) simulate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	cfg, err := simulation.DecodeConfig(r.Body)
	if err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}
	sim, times, err := cfg.Build(
		simulation.WithName(cfg.Model.Name),
		simulation.WithLogger(s.logger),
		simulation.WithSolverOptions(solver.WithMetrics(s.metrics)),
	)
	if err != nil {
		s.fail(w, statusOf(err), err)
		return
	}
	res, err := sim.Run(r.Context(), times)
	if err != nil {
		s.fail(w, statusOf(err), err)
		return
	}

	snap, err := res.Snapshot(cfg.Output.Variables...)
	if err != nil {
		s.fail(w, statusOf(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) models(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string][]string{
		"models":  models.Names(),
		"solvers": solver.Backends(),
	})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// statusOf maps configuration mistakes to 400 and everything else to 500.
func statusOf(err error) int {
	switch {
	case errors.Is(err, gobamm.ErrConfiguration),
		errors.Is(err, gobamm.ErrDomain),
		errors.Is(err, gobamm.ErrTypeUnsupported),
		errors.Is(err, gobamm.ErrMissingParameter),
		errors.Is(err, gobamm.ErrBackendUnavailable):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, status int, err error) {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		status = http.StatusRequestEntityTooLarge
	}
	s.logger.Warn("request failed", "status", status, "error", err)
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}
