package telemetry

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// TestTelemetry records spans and metrics in memory.
type TestTelemetry struct {
	SpanRecorder *tracetest.SpanRecorder
	MetricReader *sdkmetric.ManualReader

	tracerProvider *trace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
}

// NewTestTelemetry creates in-memory providers. It does not touch the otel
// globals; see Install.
func NewTestTelemetry() *TestTelemetry {
	recorder := tracetest.NewSpanRecorder()
	reader := sdkmetric.NewManualReader()
	return &TestTelemetry{
		SpanRecorder:   recorder,
		MetricReader:   reader,
		tracerProvider: trace.NewTracerProvider(trace.WithSpanProcessor(recorder)),
		meterProvider:  sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)),
	}
}

// Install makes the recorders the otel globals until the test ends, so code
// that uses otel.Tracer or otel.Meter reports into them.
func (t *TestTelemetry) Install(tb testing.TB) {
	tb.Helper()
	prevTP, prevMP := otel.GetTracerProvider(), otel.GetMeterProvider()
	otel.SetTracerProvider(t.tracerProvider)
	otel.SetMeterProvider(t.meterProvider)
	tb.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetMeterProvider(prevMP)
	})
}

func (t *TestTelemetry) Tracer(name string) oteltrace.Tracer {
	return t.tracerProvider.Tracer(name)
}

// Spans returns the ended spans in end order.
func (t *TestTelemetry) Spans() []trace.ReadOnlySpan {
	return t.SpanRecorder.Ended()
}

// Span returns the first ended span called name, or nil.
func (t *TestTelemetry) Span(name string) trace.ReadOnlySpan {
	for _, span := range t.Spans() {
		if span.Name() == name {
			return span
		}
	}
	return nil
}

// RequireSpan stops the test unless a span called name has ended.
func (t *TestTelemetry) RequireSpan(tb testing.TB, name string) trace.ReadOnlySpan {
	tb.Helper()
	if span := t.Span(name); span != nil {
		return span
	}
	names := make([]string, 0, len(t.Spans()))
	for _, s := range t.Spans() {
		names = append(names, s.Name())
	}
	tb.Fatalf("span %q not found, have %v", name, names)
	return nil
}

// AssertSpanAttribute checks one attribute of the first span called name.
// Integers compare as int64.
func (t *TestTelemetry) AssertSpanAttribute(tb testing.TB, name, key string, want any) {
	tb.Helper()
	span := t.RequireSpan(tb, name)
	for _, kv := range span.Attributes() {
		if string(kv.Key) != key {
			continue
		}
		if got := plainValue(kv.Value); got != want {
			tb.Errorf("span %q attribute %q = %v, want %v", name, key, got, want)
		}
		return
	}
	tb.Errorf("span %q has no attribute %q", name, key)
}

func plainValue(v attribute.Value) any {
	switch v.Type() {
	case attribute.STRING:
		return v.AsString()
	case attribute.INT64:
		return v.AsInt64()
	case attribute.FLOAT64:
		return v.AsFloat64()
	case attribute.BOOL:
		return v.AsBool()
	default:
		return v.AsInterface()
	}
}

// ForceFlush pushes pending spans to the recorder.
func (t *TestTelemetry) ForceFlush(ctx context.Context) error {
	return t.tracerProvider.ForceFlush(ctx)
}

// Collect gathers the current metric state.
func (t *TestTelemetry) Collect(ctx context.Context) (metricdata.ResourceMetrics, error) {
	var rm metricdata.ResourceMetrics
	err := t.MetricReader.Collect(ctx, &rm)
	return rm, err
}

// FindMetric returns the named metric from rm, or false.
func FindMetric(rm metricdata.ResourceMetrics, name string) (metricdata.Metrics, bool) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return metricdata.Metrics{}, false
}
