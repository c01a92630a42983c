package telemetry

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

// Telemetry owns the exporting tracer and meter providers and installs them
// as the otel globals, which is where the agent tracer and the HTTP and MCP
// meters pick them up.
//
// A provider that cannot be built never stops the process: it is recorded as
// a problem, the global no-op stays in place, and LogStatus reports it once a
// logger exists.
type Telemetry struct {
	config *Config

	tracerProvider *trace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider

	problems []error
	closed   atomic.Bool
}

// New builds the providers described by cfg. It does nothing beyond
// validation when telemetry is disabled.
func New(ctx context.Context, cfg *Config) (*Telemetry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid telemetry config: %w", err)
	}

	t := &Telemetry{config: cfg}
	if !cfg.Enabled {
		return t, nil
	}

	res := newResource(cfg)
	if tp, err := newTracerProvider(ctx, cfg, res); err != nil {
		t.problems = append(t.problems, fmt.Errorf("tracer provider: %w", err))
	} else {
		t.tracerProvider = tp
		otel.SetTracerProvider(tp)
	}

	if mp, err := newMeterProvider(ctx, cfg, res); err != nil {
		t.problems = append(t.problems, fmt.Errorf("meter provider: %w", err))
	} else if mp != nil {
		t.meterProvider = mp
		otel.SetMeterProvider(mp)
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return t, nil
}

// LogStatus reports the exporter setup, and every provider that could not
// be built, through logger.
func (t *Telemetry) LogStatus(logger *zap.Logger) {
	if t == nil || !t.config.Enabled {
		return
	}
	for _, err := range t.problems {
		logger.Warn("telemetry degraded", zap.Error(err))
	}
	logger.Info("telemetry initialized",
		zap.String("endpoint", t.config.Endpoint),
		zap.String("protocol", t.config.Protocol),
		zap.Float64("sampling_rate", t.config.Sampling.Rate),
		zap.Bool("metrics", t.meterProvider != nil),
		zap.Bool("degraded", t.Degraded()),
	)
}

// LoggerProvider returns the provider for the otelzap bridge. No log
// exporter is configured here, so this is whatever the global holds.
func (t *Telemetry) LoggerProvider() log.LoggerProvider {
	return global.GetLoggerProvider()
}

// IsEnabled reports whether telemetry is configured on and not shut down.
func (t *Telemetry) IsEnabled() bool {
	if t == nil || t.config == nil {
		return false
	}
	return t.config.Enabled && !t.closed.Load()
}

// Degraded reports whether any configured provider failed to start.
func (t *Telemetry) Degraded() bool {
	return t != nil && len(t.problems) > 0
}

// Shutdown flushes and stops the providers, bounded by the configured
// timeout when ctx has no deadline. Later calls are no-ops.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil || t.closed.Swap(true) {
		return nil
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.config.Shutdown.Timeout.Duration())
		defer cancel()
	}

	var errs []error
	if t.tracerProvider != nil {
		if err := t.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("trace provider shutdown: %w", err))
		}
	}
	if t.meterProvider != nil {
		if err := t.meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}
