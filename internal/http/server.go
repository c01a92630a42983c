// Package http provides the REST API over the session registry.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/tacit/internal/logging"
	"github.com/fyrsmithlabs/tacit/internal/session"
)

// Server provides HTTP endpoints for tacit sessions.
type Server struct {
	echo     *echo.Echo
	sessions *session.Registry
	logger   *zap.Logger
	config   *Config
	gatherer prometheus.Gatherer
	metrics  *HTTPMetrics
	now      func() time.Time
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int

	// RequestTimeout bounds a single API call, including any generator
	// round-trips it triggers. Zero disables the bound.
	RequestTimeout time.Duration
}

// DefaultConfig returns the stock listen address and timeout.
func DefaultConfig() *Config {
	return &Config{
		Host:           "localhost",
		Port:           9090,
		RequestTimeout: 3 * time.Minute,
	}
}

// Option configures a Server.
type Option func(*Server)

// WithGatherer serves /metrics from g instead of the default registry.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithHTTPMetrics records request metrics through m.
func WithHTTPMetrics(m *HTTPMetrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithClock overrides the time source used for reports.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// NewServer creates a new HTTP server.
func NewServer(sessions *session.Registry, logger *zap.Logger, cfg *Config, opts ...Option) (*Server, error) {
	if sessions == nil {
		return nil, fmt.Errorf("session registry cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:     e,
		sessions: sessions,
		logger:   logger,
		config:   cfg,
		gatherer: prometheus.DefaultGatherer,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	if s.metrics != nil {
		e.Use(s.metrics.MetricsMiddleware())
	}
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			requestID := c.Response().Header().Get(echo.HeaderXRequestID)
			req := c.Request()
			req = req.WithContext(logging.WithRequestID(req.Context(), requestID))
			c.SetRequest(req)

			err := next(c)
			if err != nil {
				// Let echo write the response first so the logged status is final.
				c.Error(err)
			}

			logger.Info("http request", append(logging.ContextFields(req.Context()),
				zap.String("method", req.Method),
				zap.String("uri", req.RequestURI),
				zap.String("route", c.Path()),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
			)...)
			return nil
		}
	})

	s.registerRoutes()
	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	v1 := s.echo.Group("/api/v1")
	v1.POST("/sessions", s.handleCreate)
	v1.GET("/sessions", s.handleList)
	v1.GET("/sessions/:id", s.handleGet)
	v1.DELETE("/sessions/:id", s.handleDelete)
	v1.POST("/sessions/:id/messages", s.handleMessage)
	v1.POST("/sessions/:id/advance", s.handleAdvance)
	v1.POST("/sessions/:id/reset", s.handleReset)
	v1.POST("/sessions/:id/restart", s.handleRestart)
	v1.GET("/sessions/:id/artifacts", s.handleArtifacts)
	v1.GET("/sessions/:id/report", s.handleReport)
}

// Handler exposes the router, mainly for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
