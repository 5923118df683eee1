// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes snapshot lookups and hybrid recommendations over
// a JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/pdiddy/paper-recommender/internal/observability"
	"github.com/pdiddy/paper-recommender/internal/recommend"
	"github.com/pdiddy/paper-recommender/pkg/types"
)

// Recommender is the snapshot holder the API serves from.
type Recommender interface {
	Current() (*recommend.Snapshot, error)
	Ready() bool
	RecommendIn(s *recommend.Snapshot, queryIndex, topN int) ([]types.Recommendation, error)
	Ranking() types.RankingConfig
	Reload(ctx context.Context) (*recommend.Snapshot, error)
}

// Server is the HTTP API server.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	rec        Recommender
	gatherer   prometheus.Gatherer
	metrics    *observability.Metrics
	logger     zerolog.Logger
}

// New creates a server. gatherer backs /metrics; metrics may be nil.
func New(cfg types.ServerConfig, rec Recommender, gatherer prometheus.Gatherer, metrics *observability.Metrics, logger zerolog.Logger) *Server {
	s := &Server{
		rec:      rec,
		gatherer: gatherer,
		metrics:  metrics,
		logger:   observability.WithComponent(logger, "http-server"),
	}
	s.router = s.buildRouter()
	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.healthHandler)
	r.Get("/readyz", s.readinessHandler)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(jsonContentTypeMiddleware)

		r.Get("/papers", s.listPapers)
		r.Get("/papers/{paperID}", s.getPaper)
		r.Get("/papers/{paperID}/recommendations", s.getRecommendations)
		r.Get("/snapshot", s.getSnapshot)
		r.Post("/snapshot/reload", s.reloadSnapshot)
	})

	return r
}

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.httpServer.Addr).Msg("HTTP server starting")
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on HTTP address: %w", err)
	}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readinessHandler(w http.ResponseWriter, _ *http.Request) {
	if !s.rec.Ready() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"error":  recommend.ErrNoSnapshot.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}
