package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/me/concdemo/internal/config"
	"github.com/me/concdemo/internal/demo"
	"github.com/me/concdemo/internal/logging"
)

// Server is the concdemo control API. It exposes the demo's buttons and
// slider over HTTP.
type Server struct {
	router      chi.Router
	logger      *slog.Logger
	config      config.ServerConfig
	startTime   time.Time
	controller  *demo.Controller
	sseInterval time.Duration
}

// Option configures optional Server behaviour.
type Option func(*Server)

// WithSSEInterval sets how often SSE streams poll batch state.
func WithSSEInterval(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.sseInterval = d
		}
	}
}

// New creates a new Server with all routes registered.
func New(cfg config.ServerConfig, ctrl *demo.Controller, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		router:      chi.NewRouter(),
		logger:      logging.OrDiscard(logger).With("component", "server"),
		config:      cfg,
		startTime:   time.Now(),
		controller:  ctrl,
		sseInterval: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := s.router

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))

	// Image files for offline demos
	if s.config.AssetsDir != "" {
		r.Handle("/images/*", http.StripPrefix("/images/", http.FileServer(http.Dir(s.config.AssetsDir))))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/", s.handleDiscovery)
		r.Get("/health", s.handleHealth)
		r.Get("/modes", s.handleListModes)

		// Batches
		r.Route("/batches", func(r chi.Router) {
			r.Get("/", s.handleListBatches)
			r.Post("/", s.handleStartBatch)
			r.Put("/cancel", s.handleCancelCurrent)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetBatch)
				r.Put("/cancel", s.handleCancelBatch)
			})
		})

		// Display state
		r.Get("/gallery", s.handleGallery)
		r.Put("/slider", s.handleSlider)

		// SSE endpoints for real-time updates
		r.Route("/sse", func(r chi.Router) {
			r.Get("/batches/{id}", s.handleSSEBatch)
		})
	})
}
