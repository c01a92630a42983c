package main

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/tacit/internal/http"
	"github.com/fyrsmithlabs/tacit/internal/metrics"
	"github.com/fyrsmithlabs/tacit/internal/session"
)

func newServeCmd() *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the spiral over an HTTP API",
		Long: `Start the HTTP API. Each client creates a session and drives it
with messages; artifacts and reports are served per session.

Endpoints:
  GET    /health
  GET    /metrics
  POST   /api/v1/sessions
  GET    /api/v1/sessions
  GET    /api/v1/sessions/:id
  DELETE /api/v1/sessions/:id
  POST   /api/v1/sessions/:id/messages
  POST   /api/v1/sessions/:id/advance
  POST   /api/v1/sessions/:id/reset
  POST   /api/v1/sessions/:id/restart
  GET    /api/v1/sessions/:id/artifacts
  GET    /api/v1/sessions/:id/report?format=md|json|yaml|toml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, modeServe)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			if cmd.Flags().Changed("host") {
				a.cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}
			return runServe(ctx, a)
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "listen host (default server.host)")
	cmd.Flags().IntVar(&port, "port", 0, "listen port (default server.port)")
	return cmd
}

// runServe blocks until ctx is cancelled or the listener fails.
func runServe(ctx context.Context, a *app) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.metrics = metrics.New(reg)

	sessions := session.NewRegistry(a.newOrchestrator, a.logger.Named("session"))
	metrics.TrackSessions(reg, sessions.Len)

	srv, err := http.NewServer(sessions, a.logger.Named("http"), &http.Config{
		Host:           a.cfg.Server.Host,
		Port:           a.cfg.Server.Port,
		RequestTimeout: a.cfg.Server.RequestTimeout.Duration(),
	},
		http.WithGatherer(reg),
		http.WithHTTPMetrics(http.NewHTTPMetrics(nil, a.logger)),
	)
	if err != nil {
		return fmt.Errorf("creating http server: %w", err)
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	if ttl := a.cfg.Session.TTL.Duration(); ttl > 0 {
		go sessions.Sweep(sweepCtx, a.cfg.Session.SweepInterval.Duration(), ttl)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if errors.Is(err, nethttp.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.Server.ShutdownTimeout.Duration())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	a.logger.Info("server stopped", zap.Int("sessions", sessions.Len()))
	return nil
}
