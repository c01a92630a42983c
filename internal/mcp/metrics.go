package mcp

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/tacit/internal/orchestrator"
	"github.com/fyrsmithlabs/tacit/internal/session"
)

const instrumentationName = "github.com/fyrsmithlabs/tacit/internal/mcp"

// Metrics counts tool calls by outcome and tracks how many are running.
// Instruments that fail to register are left nil and skipped.
type Metrics struct {
	calls      metric.Int64Counter
	duration   metric.Float64Histogram
	inFlight   metric.Int64UpDownCounter
	phaseMoves metric.Int64Counter
	clock      func() time.Time
}

// NewMetrics creates tool metrics on meter. A nil meter uses the global
// meter provider.
func NewMetrics(meter metric.Meter, logger *zap.Logger) *Metrics {
	if logger == nil {
		logger = zap.NewNop()
	}
	if meter == nil {
		meter = otel.Meter(instrumentationName)
	}
	m := &Metrics{clock: time.Now}

	var err error
	m.calls, err = meter.Int64Counter("tacit.mcp.tool.calls",
		metric.WithDescription("Tool calls by tool and outcome"),
		metric.WithUnit("{call}"),
	)
	warnOnErr(logger, "calls", err)

	m.duration, err = meter.Float64Histogram("tacit.mcp.tool.duration",
		metric.WithDescription("Tool call latency, including generator round-trips"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120),
	)
	warnOnErr(logger, "duration", err)

	m.inFlight, err = meter.Int64UpDownCounter("tacit.mcp.tool.in_flight",
		metric.WithDescription("Tool calls currently running"),
		metric.WithUnit("{call}"),
	)
	warnOnErr(logger, "in_flight", err)

	m.phaseMoves, err = meter.Int64Counter("tacit.mcp.phase_changes",
		metric.WithDescription("Phase changes caused by tool calls, by tool and resulting phase"),
		metric.WithUnit("{change}"),
	)
	warnOnErr(logger, "phase_changes", err)
	return m
}

func warnOnErr(logger *zap.Logger, instrument string, err error) {
	if err != nil {
		logger.Warn("failed to create instrument", zap.String("instrument", instrument), zap.Error(err))
	}
}

// Begin marks tool as running. The returned func records the outcome and
// must be called exactly once.
func (m *Metrics) Begin(ctx context.Context, tool string) func(err error) {
	toolAttr := attribute.String("tool", tool)
	if m.inFlight != nil {
		m.inFlight.Add(ctx, 1, metric.WithAttributes(toolAttr))
	}
	start := m.clock()

	return func(err error) {
		if m.inFlight != nil {
			m.inFlight.Add(ctx, -1, metric.WithAttributes(toolAttr))
		}
		attrs := metric.WithAttributes(toolAttr, attribute.String("outcome", outcome(err)))
		if m.calls != nil {
			m.calls.Add(ctx, 1, attrs)
		}
		if m.duration != nil {
			m.duration.Record(ctx, m.clock().Sub(start).Seconds(), attrs)
		}
	}
}

// PhaseChanged counts a tool call that moved its session into to.
func (m *Metrics) PhaseChanged(ctx context.Context, tool string, to orchestrator.Phase) {
	if m.phaseMoves == nil {
		return
	}
	m.phaseMoves.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tool", tool),
		attribute.String("phase", string(to)),
	))
}

// outcome names err for the outcome attribute.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, session.ErrSessionNotFound):
		return "unknown_session"
	case errors.Is(err, orchestrator.ErrEmptyMessage):
		return "empty_message"
	case errors.Is(err, orchestrator.ErrPhaseComplete):
		return "spiral_complete"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "generator_error"
	}
}
