// Package metrics provides Prometheus instrumentation for the spiral: generator
// round-trips per phase, phase transitions and synthesis outcomes.
package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/fyrsmithlabs/tacit/internal/conversation"
	"github.com/fyrsmithlabs/tacit/internal/llm"
	"github.com/fyrsmithlabs/tacit/internal/orchestrator"
)

const namespace = "tacit"

// Synthesis outcomes.
const (
	OutcomeParsed   = "parsed"
	OutcomeFallback = "fallback"
)

// Metrics holds the collectors registered for one process.
type Metrics struct {
	// CollaboratorCalls counts generator round-trips.
	// Labels: phase, result (success, error)
	CollaboratorCalls *prometheus.CounterVec

	// CollaboratorDuration tracks generator latency.
	// Labels: phase
	CollaboratorDuration *prometheus.HistogramVec

	// Transitions counts phase pointer moves.
	// Labels: kind (advance, reset, restart), from, to, forced
	Transitions *prometheus.CounterVec

	// Syntheses counts artifacts produced on advance.
	// Labels: phase, outcome (parsed, fallback)
	Syntheses *prometheus.CounterVec
}

// New registers the collectors with reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		CollaboratorCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "collaborator",
				Name:      "calls_total",
				Help:      "Total number of generator round-trips",
			},
			[]string{"phase", "result"},
		),
		CollaboratorDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "collaborator",
				Name:      "duration_seconds",
				Help:      "Duration of generator round-trips in seconds",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"phase"},
		),
		Transitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "phase_transitions_total",
				Help:      "Total number of phase transitions",
			},
			[]string{"kind", "from", "to", "forced"},
		),
		Syntheses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "synthesis_total",
				Help:      "Total number of artifacts synthesized, by outcome",
			},
			[]string{"phase", "outcome"},
		),
	}
}

// TrackSessions exposes the number of live sessions as a gauge sampled at
// scrape time.
func TrackSessions(reg prometheus.Registerer, count func() int) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	promauto.With(reg).NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of sessions held in the registry",
		},
		func() float64 { return float64(count()) },
	)
}

// Instrument wraps g so every call is counted and timed under phase. It has
// the shape orchestrator.WithGeneratorWrapper expects.
func (m *Metrics) Instrument(phase orchestrator.Phase, g llm.Generator) llm.Generator {
	label := string(phase)
	return llm.GeneratorFunc(func(ctx context.Context, system string, turns []conversation.Turn, maxTokens int) (string, error) {
		start := time.Now()
		out, err := g.Generate(ctx, system, turns, maxTokens)
		m.CollaboratorDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())

		result := "success"
		if err != nil {
			result = "error"
		}
		m.CollaboratorCalls.WithLabelValues(label, result).Inc()
		return out, err
	})
}

// Observe records t. It has the shape of orchestrator.TransitionFunc.
func (m *Metrics) Observe(t orchestrator.Transition) {
	m.Transitions.WithLabelValues(string(t.Kind), string(t.From), string(t.To), strconv.FormatBool(t.Forced)).Inc()

	if t.Kind != orchestrator.TransitionAdvance || t.Artifact == nil {
		return
	}
	outcome := OutcomeParsed
	if t.Degraded {
		outcome = OutcomeFallback
	}
	m.Syntheses.WithLabelValues(string(t.From), outcome).Inc()
}
