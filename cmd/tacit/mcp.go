package main

import (
	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/tacit/internal/mcp"
	"github.com/fyrsmithlabs/tacit/internal/session"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the spiral as MCP tools over stdio",
		Long: `Run an MCP server on stdin/stdout so an assistant can drive
spiral sessions through tools. Logs go to stderr, or to
logging.output.file when set.

Add to an MCP client configuration:

  {"command": "tacit", "args": ["mcp"]}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, modeMCP)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			sessions := session.NewRegistry(a.newOrchestrator, a.logger.Named("session"))
			if ttl := a.cfg.Session.TTL.Duration(); ttl > 0 {
				go sessions.Sweep(ctx, a.cfg.Session.SweepInterval.Duration(), ttl)
			}

			srv, err := mcp.NewServer(&mcp.Config{
				Name:        "tacit",
				Version:     version,
				Logger:      a.logger.Named("mcp"),
				ToolTimeout: a.cfg.Server.RequestTimeout.Duration(),
			}, sessions)
			if err != nil {
				return err
			}
			if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}
}
