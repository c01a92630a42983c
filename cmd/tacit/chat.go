package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/tacit/internal/tui"
)

func newChatCmd() *cobra.Command {
	var exportDir string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Run the spiral as a terminal chat",
		Long: `Start an interactive session in the terminal.

Type to answer the collaborator. Commands:
  /advance   finish the current phase now
  /export    save the artifacts (json, yaml, toml or md)
  /reset     start over from the first spiral
  처음부터    start the next spiral round
  /quit      leave

Logs are written to a file so they do not disturb the screen
(default ~/.local/state/tacit/tacit.log).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, modeChat)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			if exportDir == "" {
				exportDir = a.cfg.Chat.ExportDir
			}
			o := a.newOrchestrator("")
			model := tui.NewModel(ctx, o,
				tui.WithExportDir(exportDir),
				tui.WithRequestTimeout(a.cfg.Chat.RequestTimeout.Duration()),
			)

			p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("running chat: %w", err)
			}
			st := o.Status()
			a.logger.Info("chat ended",
				zap.String("phase", string(st.Phase)),
				zap.Int("spiral", st.Spiral),
			)
			return nil
		},
	}
	cmd.Flags().StringVar(&exportDir, "export-dir", "", "directory for /export (default chat.export_dir)")
	return cmd
}
