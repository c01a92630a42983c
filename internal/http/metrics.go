package http

import (
	"errors"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const httpInstrumentationName = "github.com/fyrsmithlabs/tacit/internal/http"

// generatorRoutes wait on a generator round-trip and are labelled so their
// latency can be told apart from bookkeeping calls.
var generatorRoutes = map[string]bool{
	"/api/v1/sessions/:id/messages": true,
	"/api/v1/sessions/:id/advance":  true,
}

// HTTPMetrics records request counts, latency and in-flight requests.
type HTTPMetrics struct {
	requests metric.Int64Counter
	latency  metric.Float64Histogram
	inFlight metric.Int64UpDownCounter
	clock    func() time.Time
}

// NewHTTPMetrics creates request metrics on meter. A nil meter uses the
// global meter provider.
func NewHTTPMetrics(meter metric.Meter, logger *zap.Logger) *HTTPMetrics {
	if logger == nil {
		logger = zap.NewNop()
	}
	if meter == nil {
		meter = otel.Meter(httpInstrumentationName)
	}
	m := &HTTPMetrics{clock: time.Now}

	var errs []error
	var err error
	m.requests, err = meter.Int64Counter("tacit.http.requests",
		metric.WithDescription("HTTP requests by method, route and status class"),
		metric.WithUnit("{request}"),
	)
	errs = append(errs, err)

	// Generator-bound requests can take minutes.
	m.latency, err = meter.Float64Histogram("tacit.http.request.duration",
		metric.WithDescription("HTTP request latency"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.05, 0.25, 1, 2.5, 5, 10, 30, 60, 180),
	)
	errs = append(errs, err)

	m.inFlight, err = meter.Int64UpDownCounter("tacit.http.requests.in_flight",
		metric.WithDescription("HTTP requests currently being served"),
		metric.WithUnit("{request}"),
	)
	errs = append(errs, err)

	if err := errors.Join(errs...); err != nil {
		logger.Warn("failed to create http instruments", zap.Error(err))
	}
	return m
}

// MetricsMiddleware returns an Echo middleware that records request metrics.
func (m *HTTPMetrics) MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			start := m.clock()
			if m.inFlight != nil {
				m.inFlight.Add(ctx, 1)
				defer m.inFlight.Add(ctx, -1)
			}

			err := next(c)

			status := c.Response().Status
			var he *echo.HTTPError
			if errors.As(err, &he) {
				status = he.Code
			}
			route := routeLabel(c.Path())
			attrs := metric.WithAttributes(
				attribute.String("method", c.Request().Method),
				attribute.String("route", route),
				attribute.String("status_class", statusClass(status)),
				attribute.Bool("generator", generatorRoutes[route]),
			)
			if m.requests != nil {
				m.requests.Add(ctx, 1, attrs)
			}
			if m.latency != nil {
				m.latency.Record(ctx, m.clock().Sub(start).Seconds(), attrs)
			}
			return err
		}
	}
}

// routeLabel uses the registered route template (/api/v1/sessions/:id) so
// session IDs never become label values.
func routeLabel(path string) string {
	if path == "" {
		return "unmatched"
	}
	return path
}

func statusClass(status int) string {
	if status < 100 || status > 599 {
		return "unknown"
	}
	return fmt.Sprintf("%dxx", status/100)
}
