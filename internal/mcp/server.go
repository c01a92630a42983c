package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/tacit/internal/session"
)

// Server is an MCP server over the session registry.
type Server struct {
	mcp      *mcp.Server
	sessions *session.Registry
	metrics  *Metrics
	logger   *zap.Logger
	config   *Config
}

// Config configures the MCP server.
type Config struct {
	// Name is the server implementation name (default: "tacit")
	Name string

	// Version is the server version (default: "0.1.0")
	Version string

	// Logger for structured logging
	Logger *zap.Logger

	// ToolTimeout bounds one tool call, including generator round-trips.
	// Zero disables the bound.
	ToolTimeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Name:        "tacit",
		Version:     "0.1.0",
		Logger:      zap.NewNop(),
		ToolTimeout: 3 * time.Minute,
	}
}

// NewServer creates a new MCP server over sessions.
func NewServer(cfg *Config, sessions *session.Registry) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if sessions == nil {
		return nil, fmt.Errorf("session registry is required")
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    cfg.Name,
			Version: cfg.Version,
		},
		nil,
	)

	s := &Server{
		mcp:      mcpServer,
		sessions: sessions,
		metrics:  NewMetrics(nil, cfg.Logger),
		logger:   cfg.Logger,
		config:   cfg,
	}
	s.registerTools()
	return s, nil
}

// Run starts the MCP server on the stdio transport.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting MCP server on stdio transport")
	if err := s.mcp.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("server run failed: %w", err)
	}
	return nil
}
