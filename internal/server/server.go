// Package server provides the HTTP API for serupa.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/serupa/internal/config"
	"github.com/hyperjump/serupa/internal/metrics"
	"github.com/hyperjump/serupa/internal/search"
)

// Server is the HTTP server for the serupa API.
type Server struct {
	engine *search.Engine
	config *config.ServerConfig
	logger *zap.Logger
	server *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(engine *search.Engine, cfg *config.ServerConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		engine: engine,
		config: cfg,
		logger: logger,
	}
}

// Router returns the API routes with middleware applied.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware())

	r.Get("/metrics", metrics.Handler().ServeHTTP)
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(seconds(s.config.RequestTimeoutSec, 60)))
		r.Post("/search", s.handleSearch)
		r.Get("/health", s.handleHealth)
		r.Get("/status", s.handleStatus)
	})
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  seconds(s.config.ReadTimeoutSec, 10),
		WriteTimeout: seconds(s.config.WriteTimeoutSec, 60),
	}
	s.logger.Info("Starting server",
		zap.String("addr", addr),
		zap.Bool("model_loaded", s.engine.ModelLoaded()),
	)
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func seconds(n, def int) time.Duration {
	if n <= 0 {
		n = def
	}
	return time.Duration(n) * time.Second
}
