package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/Peixotim/emotion-api/pkg/config"
	"github.com/Peixotim/emotion-api/pkg/orchestrator"
	"github.com/Peixotim/emotion-api/pkg/server/handlers"
	"github.com/Peixotim/emotion-api/pkg/server/middleware"
	"github.com/Peixotim/emotion-api/pkg/telemetry/health"
	"github.com/Peixotim/emotion-api/pkg/telemetry/metrics"
)

// Server is the HTTP front end of the emotion analysis service.
type Server struct {
	config       *config.Config
	orchestrator *orchestrator.Orchestrator
	collector    *metrics.Collector
	checker      *health.Checker
	version      string
	httpServer   *http.Server
	logger       *slog.Logger
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates a new API server. The collector may be nil when
// metrics are disabled.
func NewServer(cfg *config.Config, o *orchestrator.Orchestrator, collector *metrics.Collector, version string) *Server {
	return &Server{
		config:       cfg,
		orchestrator: o,
		collector:    collector,
		version:      version,
		logger:       slog.Default().With("component", "server"),
		shutdownChan: make(chan struct{}),
	}
}

// SetHealthChecker installs the readiness checker consulted by /ready.
// Without one, /ready always reports ready.
func (s *Server) SetHealthChecker(checker *health.Checker) {
	s.checker = checker
}

// Start starts the HTTP server and blocks until the context is cancelled,
// Shutdown is called, or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Addr:           s.config.Server.ListenAddress,
		Handler:        s.setupRoutes(),
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		IdleTimeout:    s.config.Server.IdleTimeout,
		MaxHeaderBytes: s.config.Server.MaxHeaderBytes,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting API server",
			"address", s.config.Server.ListenAddress,
			"metrics_enabled", s.config.Telemetry.Metrics.Enabled,
		)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		s.logger.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server, waiting up to the configured
// shutdown timeout for in-flight requests to drain.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		s.logger.Info("initiating graceful shutdown",
			"timeout", s.config.Server.ShutdownTimeout.String(),
		)

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("API server stopped")
	})

	return shutdownErr
}

// setupRoutes configures HTTP routes and the middleware chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	sessionHandler := handlers.NewSessionHandler(s.orchestrator, s.collector)
	analyzeHandler := handlers.NewAnalyzeHandler(s.orchestrator, s.collector)
	healthHandler := handlers.NewHealthHandler(s.version, s.checker)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		// The mux routes every unregistered path here; only the exact
		// root path is the banner endpoint.
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		healthHandler.Root(w, r)
	})
	mux.HandleFunc("/start-session", sessionHandler.StartSession)
	mux.HandleFunc("/analyze-emotion", analyzeHandler.Analyze)
	mux.HandleFunc("/health", healthHandler.Health)
	mux.HandleFunc("/ready", healthHandler.Ready)

	if s.collector != nil && s.config.Telemetry.Metrics.Enabled {
		mux.Handle(s.config.Telemetry.Metrics.Path, s.collector.Handler())
	}

	var handler http.Handler = mux

	handler = middleware.TimeoutMiddleware(s.config.Server.RequestTimeout)(handler)
	handler = middleware.CORSMiddleware(s.convertCORSConfig())(handler)
	handler = middleware.RequestIDMiddleware(handler)
	handler = middleware.LoggingMiddleware(s.collector)(handler)
	handler = middleware.RecoveryMiddleware(handler)

	return handler
}

// Handler returns the configured HTTP handler. Used by tests to exercise
// the full middleware chain without binding a listener.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// convertCORSConfig converts config.CORSConfig to middleware.CORSConfig.
func (s *Server) convertCORSConfig() *middleware.CORSConfig {
	return &middleware.CORSConfig{
		Enabled:        s.config.Server.CORS.Enabled,
		AllowedOrigins: s.config.Server.CORS.AllowedOrigins,
		AllowedMethods: s.config.Server.CORS.AllowedMethods,
		AllowedHeaders: s.config.Server.CORS.AllowedHeaders,
		MaxAge:         s.config.Server.CORS.MaxAge,
	}
}
