package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/fyrsmithlabs/tacit/internal/orchestrator"
)

// FormatLatency formats latency in seconds as "X.Xms" or "X.Xs"
func FormatLatency(latencySeconds float64) string {
	if latencySeconds < 1.0 {
		return fmt.Sprintf("%.1fms", latencySeconds*1000)
	}
	return fmt.Sprintf("%.1fs", latencySeconds)
}

// FormatDuration formats an elapsed duration as "Xh Ym", "Xm Ys" or "Xs".
func FormatDuration(d time.Duration) string {
	seconds := int64(d.Seconds())
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, secs)
	default:
		return fmt.Sprintf("%ds", secs)
	}
}

// FormatSpiral renders the spiral counter the way the chat header shows it.
func FormatSpiral(spiral int) string {
	return fmt.Sprintf("%d회차", spiral)
}

// FormatPhaseStep renders "n/4 name" for a phase; Complete shows as done.
func FormatPhaseStep(st orchestrator.Status) string {
	total := len(orchestrator.AllPhases()) - 1
	if st.Phase == orchestrator.PhaseComplete {
		return fmt.Sprintf("%d/%d %s", total, total, st.PhaseName)
	}
	return fmt.Sprintf("%d/%d %s", st.Phase.Index()+1, total, st.PhaseName)
}

// phaseBanner separates phases in the chat log.
func phaseBanner(st orchestrator.Status) string {
	return fmt.Sprintf("── %s · %s ──", st.PhaseName, st.BaDescription)
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if n <= 0 || len(r) <= n {
		return string(r)
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
