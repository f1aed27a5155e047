// internal/api/server.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	apihandler "github.com/newthinker/pickboard/internal/api/handler/api"
	"github.com/newthinker/pickboard/internal/api/handler/stream"
	"github.com/newthinker/pickboard/internal/api/handler/web"
	"github.com/newthinker/pickboard/internal/api/middleware"
	"github.com/newthinker/pickboard/internal/dashboard"
	"github.com/newthinker/pickboard/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Board is everything the HTTP surface needs from the dashboard.
type Board interface {
	Snapshot() dashboard.State
	Subscribe() (<-chan dashboard.State, func())
	Refresh(ctx context.Context) error
	Running() bool
}

// Server represents the HTTP server for the dashboard
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
	stream     *stream.Handler
	board      Board
}

// Config holds server configuration
type Config struct {
	Host               string
	Port               int
	APIKey             string
	TemplatesDir       string
	RefreshMinInterval time.Duration
	MetricsPath        string
}

// Dependencies holds what the routes are wired to. Metrics is optional.
type Dependencies struct {
	Board   Board
	Metrics *metrics.Registry
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, deps Dependencies, logger *zap.Logger) (*Server, error) {
	if deps.Board == nil {
		return nil, fmt.Errorf("board is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	mux := http.NewServeMux()
	s := &Server{
		logger: logger.Named("http"),
		mux:    mux,
		board:  deps.Board,
	}

	if err := s.setupRoutes(cfg, deps); err != nil {
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	var handler http.Handler = mux
	if deps.Metrics != nil {
		handler = metrics.HTTPMiddleware(deps.Metrics)(handler)
	}
	handler = metrics.LoggingMiddleware(s.logger)(handler)

	// No WriteTimeout: /ws connections are long-lived and set their own
	// write deadlines.
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(cfg Config, deps Dependencies) error {
	// Web UI routes
	webHandler, err := web.NewHandler(cfg.TemplatesDir, deps.Board, s.logger)
	if err != nil {
		return fmt.Errorf("creating web handler: %w", err)
	}

	s.mux.HandleFunc("GET /{$}", webHandler.Dashboard)
	s.mux.HandleFunc("GET /board", webHandler.Fragment)
	s.mux.HandleFunc("POST /refresh", webHandler.Refresh)

	// Live board
	s.stream = stream.NewHandler(deps.Board, webHandler, s.logger)
	if deps.Metrics != nil {
		s.stream.SetCounter(deps.Metrics)
	}
	s.mux.Handle("GET /ws", s.stream)

	// JSON API
	auth := middleware.APIKeyAuth(cfg.APIKey)
	throttle := middleware.Throttle(middleware.NewRefreshLimiter(cfg.RefreshMinInterval))

	stateHandler := apihandler.NewStateHandler(deps.Board)
	refreshHandler := apihandler.NewRefreshHandler(deps.Board)

	s.mux.Handle("GET /api/state", auth(http.HandlerFunc(stateHandler.Get)))
	s.mux.Handle("POST /api/refresh", auth(throttle(http.HandlerFunc(refreshHandler.Trigger))))
	s.mux.HandleFunc("GET /api/health", s.handleHealth)

	if deps.Metrics != nil && cfg.MetricsPath != "" {
		s.mux.Handle("GET "+cfg.MetricsPath, promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}

	return nil
}

// Handler returns the root handler including middleware.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	s.stream.Close()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	if !s.board.Running() {
		status, code = "stopped", http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	fmt.Fprintf(w, `{"status":%q}`, status)
}
