// Package server implements the pst web tool: a single page to upload a
// portfolio, pick a scenario and download the stressed results, plus a small
// JSON API.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/etnz/stress"
)

// Defaults applied by New to a zero Config.
const (
	DefaultSessionTTL     = 15 * time.Minute
	DefaultMaxUploadBytes = 10 << 20
)

// Config holds server configuration
type Config struct {
	Addr           string
	Log            zerolog.Logger
	Registry       *stress.Registry // named scenarios, DefaultRegistry if nil
	Currency       string           // default reporting currency
	SessionTTL     time.Duration    // how long a result can be downloaded
	MaxUploadBytes int64
}

// Server represents the HTTP server
type Server struct {
	router    *chi.Mux
	server    *http.Server
	log       zerolog.Logger
	cron      *cron.Cron
	sessions  *sessions
	registry  *stress.Registry
	currency  string
	maxUpload int64
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	if cfg.Registry == nil {
		cfg.Registry = stress.DefaultRegistry()
	}
	if cfg.Currency == "" {
		cfg.Currency = money.USD
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}

	s := &Server{
		router:    chi.NewRouter(),
		log:       cfg.Log.With().Str("component", "server").Logger(),
		cron:      cron.New(),
		sessions:  newSessions(cfg.SessionTTL),
		registry:  cfg.Registry,
		currency:  cfg.Currency,
		maxUpload: cfg.MaxUploadBytes,
	}

	s.setupMiddleware()
	s.setupRoutes()

	if _, err := s.cron.AddFunc("@every 1m", s.evictSessions); err != nil {
		// constant schedule
		panic(err)
	}

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	// Single page tool
	s.router.Get("/", s.handleIndex)
	s.router.Post("/evaluate", s.handleEvaluate)
	s.router.Get("/download/{id}", s.handleDownload)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/scenarios", s.handleAPIScenarios)
		r.Post("/evaluate", s.handleAPIEvaluate)
	})
}

// ServeHTTP makes the server usable as an http.Handler, mostly for tests.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start starts the session eviction job and the HTTP server. It blocks until
// the server is shut down.
func (s *Server) Start() error {
	s.cron.Start()
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	<-s.cron.Stop().Done()
	return s.server.Shutdown(ctx)
}

func (s *Server) evictSessions() {
	if n := s.sessions.evict(); n > 0 {
		s.log.Debug().Int("evicted", n).Int("remaining", s.sessions.len()).Msg("Expired results evicted")
	}
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
