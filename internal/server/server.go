package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ziadkadry99/pageutil/internal/logging"
	"github.com/ziadkadry99/pageutil/internal/pending"
)

var log = logging.For("server")

// RequestTimeout bounds ordinary API handlers. Long-poll and websocket
// routes are mounted on Root and bound themselves.
const RequestTimeout = 60 * time.Second

// Config holds server configuration.
type Config struct {
	Port     int
	AllowAll bool // allow all CORS origins (dev mode)
}

// Server is the pageutil HTTP server.
type Server struct {
	cfg        Config
	registry   *pending.Registry
	root       chi.Router
	router     chi.Router
	httpServer *http.Server
}

// New creates a server around the shared pending registry. The
// http.Server is built here so Shutdown works before or during Start.
func New(cfg Config, reg *pending.Registry) *Server {
	s := &Server{
		cfg:      cfg,
		registry: reg,
	}

	s.root = s.buildRouter()
	s.router = s.root.With(middleware.Timeout(RequestTimeout))
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.root,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":  "ok",
			"pending": s.registry.Count(),
		})
	})

	// API routes are registered by feature packages via RegisterRoutes.

	return r
}

// Router returns the router for ordinary API routes. Handlers mounted
// here are cut off after RequestTimeout.
func (s *Server) Router() chi.Router { return s.router }

// Root returns the router without the request timeout, for long-poll
// and websocket routes.
func (s *Server) Root() chi.Router { return s.root }

// Registry returns the pending-operation registry.
func (s *Server) Registry() *pending.Registry { return s.registry }

// Handler exposes the root handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.root }

// Start begins listening on the configured port. It returns
// http.ErrServerClosed once Shutdown has been called, including when
// Shutdown ran first.
func (s *Server) Start() error {
	log.WithField("addr", s.httpServer.Addr).Info("pageutil server listening")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
