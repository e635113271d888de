// Package server exposes the run's prometheus metrics and health over HTTP
// while the suite is running.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/zsiec/omt-send-test/internal/config"
	"github.com/zsiec/omt-send-test/internal/errors"
	"github.com/zsiec/omt-send-test/internal/health"
	"github.com/zsiec/omt-send-test/internal/logger"
)

const shutdownTimeout = 5 * time.Second

// Server is the metrics and health HTTP server.
type Server struct {
	config       *config.MetricsConfig
	router       *mux.Router
	httpServer   *http.Server
	logger       *logrus.Logger
	healthMgr    *health.Manager
	run          *health.RunTracker
	errorHandler *errors.ErrorHandler
}

// New creates a server. run feeds the run section of /health and may be nil;
// checkers are registered with the health manager.
func New(cfg *config.MetricsConfig, log *logrus.Logger, run *health.RunTracker, checkers ...health.Checker) *Server {
	healthMgr := health.NewManager(logger.NewLogrusAdapter(logrus.NewEntry(log)))
	for _, c := range checkers {
		healthMgr.Register(c)
	}

	s := &Server{
		config:       cfg,
		router:       mux.NewRouter(),
		logger:       log,
		healthMgr:    healthMgr,
		run:          run,
		errorHandler: errors.NewErrorHandler(log),
	}
	s.setupRoutes()
	return s
}

// Start listens on the configured port and serves until ctx is done, then
// shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.config.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", s.config.Port, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.logger.WithFields(logrus.Fields{
		"addr": ln.Addr().String(),
		"path": s.config.Path,
	}).Info("Starting metrics server")

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("metrics server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		return s.Shutdown()
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	s.logger.Info("Metrics server shutdown complete")
	return nil
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Use(s.requestIDMiddleware)
	s.router.Use(s.errorHandler.Middleware)
	s.router.Use(s.metricsMiddleware)

	path := s.config.Path
	if path == "" {
		path = "/metrics"
	}
	s.router.Handle(path, promhttp.Handler()).Methods("GET")

	healthHandler := health.NewHandler(s.healthMgr, s.run)
	s.router.HandleFunc("/health", healthHandler.HandleHealth).Methods("GET")
	s.router.HandleFunc("/live", healthHandler.HandleLive).Methods("GET")

	s.router.HandleFunc("/version", s.handleVersion).Methods("GET")

	s.router.NotFoundHandler = http.HandlerFunc(s.errorHandler.HandleNotFound)
}

// Router returns the router for testing.
func (s *Server) Router() *mux.Router {
	return s.router
}
