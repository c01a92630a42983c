package tui

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/tacit/internal/orchestrator"
	"github.com/fyrsmithlabs/tacit/internal/report"
)

func TestFormatLatency(t *testing.T) {
	tests := []struct {
		name           string
		latencySeconds float64
		expected       string
	}{
		{"milliseconds", 0.0123, "12.3ms"},
		{"sub_millisecond", 0.0001, "0.1ms"},
		{"seconds", 1.234, "1.2s"},
		{"multiple_seconds", 5.678, "5.7s"},
		{"zero", 0.0, "0.0ms"},
		{"very_large", 123.456, "123.5s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatLatency(tt.latencySeconds))
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name     string
		d        time.Duration
		expected string
	}{
		{"zero", 0, "0s"},
		{"seconds", 42 * time.Second, "42s"},
		{"minutes", 3*time.Minute + 5*time.Second, "3m 5s"},
		{"hours", 2*time.Hour + 15*time.Minute + 30*time.Second, "2h 15m"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatDuration(tt.d))
		})
	}
}

func TestFormatPhaseStep(t *testing.T) {
	o := orchestrator.New(nil)
	st := o.Status()
	assert.Equal(t, "1/4 "+st.PhaseName, FormatPhaseStep(st))

	st.Phase = orchestrator.PhaseComplete
	st.PhaseName = orchestrator.PhaseComplete.DisplayName()
	assert.Equal(t, "4/4 완료", FormatPhaseStep(st))
	assert.Equal(t, "3회차", FormatSpiral(3))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "암묵지", truncate("  암묵지  ", 10))
	assert.Equal(t, "암묵…", truncate("암묵지 명세서", 3))
	assert.Equal(t, "…", truncate("abc", 1))
	assert.Equal(t, "abc", truncate("abc", 0))
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line string
		kind commandKind
		arg  string
	}{
		{"안녕하세요", cmdSubmit, ""},
		{"계속", cmdSubmit, ""},
		{"/advance", cmdAdvance, ""},
		{"/NEXT", cmdAdvance, ""},
		{"/reset", cmdReset, ""},
		{"/restart", cmdRestart, ""},
		{"처음부터", cmdRestart, ""},
		{" restart ", cmdRestart, ""},
		{"/export", cmdExport, ""},
		{"/export  yaml ", cmdExport, "yaml"},
		{"/help", cmdHelp, ""},
		{"/quit", cmdQuit, ""},
		{"/exit", cmdQuit, ""},
		{"/dance", cmdUnknown, "dance"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			cmd := parseCommand(tt.line)
			assert.Equal(t, tt.kind, cmd.kind)
			assert.Equal(t, tt.arg, cmd.arg)
		})
	}

	assert.Equal(t, "  그대로  ", parseCommand("  그대로  ").text, "messages pass through untrimmed")
}

func TestExportTarget(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	dir := "/tmp/out"

	path, f, err := exportTarget("", dir, 2, now)
	require.NoError(t, err)
	assert.Equal(t, report.FormatMarkdown, f)
	assert.Equal(t, filepath.Join(dir, "tacit-spiral-2-20260314-093000.md"), path)

	path, f, err = exportTarget("yml", dir, 1, now)
	require.NoError(t, err)
	assert.Equal(t, report.FormatYAML, f)
	assert.Equal(t, filepath.Join(dir, "tacit-spiral-1-20260314-093000.yaml"), path)

	path, f, err = exportTarget("notes/bakery.toml", dir, 1, now)
	require.NoError(t, err)
	assert.Equal(t, report.FormatTOML, f)
	assert.Equal(t, filepath.Join(dir, "notes", "bakery.toml"), path)

	path, _, err = exportTarget("/abs/report.json", dir, 1, now)
	require.NoError(t, err)
	assert.Equal(t, "/abs/report.json", path)

	_, _, err = exportTarget("pdf", dir, 1, now)
	assert.Error(t, err)
	_, _, err = exportTarget("report.pdf", dir, 1, now)
	assert.Error(t, err)
}
