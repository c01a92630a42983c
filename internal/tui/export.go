package tui

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fyrsmithlabs/tacit/internal/orchestrator"
	"github.com/fyrsmithlabs/tacit/internal/report"
)

type exportedMsg struct {
	path string
	err  error
}

// exportTarget resolves the /export argument. An empty argument or a bare
// format name writes a timestamped file into dir; anything else is a path
// whose extension picks the format.
func exportTarget(arg, dir string, spiral int, now time.Time) (string, report.Format, error) {
	if f, err := report.ParseFormat(arg); err == nil {
		name := fmt.Sprintf("tacit-spiral-%d-%s.%s", spiral, now.Format("20060102-150405"), f.Extension())
		return filepath.Join(dir, name), f, nil
	}

	ext := filepath.Ext(arg)
	if ext == "" {
		return "", "", fmt.Errorf("unknown report format %q", arg)
	}
	f, err := report.ParseFormat(ext)
	if err != nil {
		return "", "", err
	}
	if !filepath.IsAbs(arg) {
		arg = filepath.Join(dir, arg)
	}
	return arg, f, nil
}

// exportReport renders the report now, while the orchestrator is idle, and
// writes it to disk in the returned command.
func exportReport(o *orchestrator.Orchestrator, path string, f report.Format, now time.Time) tea.Cmd {
	var buf bytes.Buffer
	err := report.Build(o, true, now).Write(&buf, f)
	return func() tea.Msg {
		if err != nil {
			return exportedMsg{path: path, err: err}
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return exportedMsg{path: path, err: fmt.Errorf("creating export directory: %w", err)}
		}
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return exportedMsg{path: path, err: fmt.Errorf("writing report: %w", err)}
		}
		return exportedMsg{path: path}
	}
}
