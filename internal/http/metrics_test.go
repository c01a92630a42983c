package http

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/tacit/internal/llm"
)

type requestPoint struct {
	route       string
	statusClass string
	generator   bool
}

func collectRequests(t *testing.T, reader *metric.ManualReader) (map[requestPoint]int64, bool) {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	points := map[requestPoint]int64{}
	foundLatency := false
	for _, sm := range rm.ScopeMetrics {
		for _, mt := range sm.Metrics {
			switch mt.Name {
			case "tacit.http.requests":
				sum, ok := mt.Data.(metricdata.Sum[int64])
				require.True(t, ok)
				for _, dp := range sum.DataPoints {
					route, _ := dp.Attributes.Value(attribute.Key("route"))
					class, _ := dp.Attributes.Value(attribute.Key("status_class"))
					gen, _ := dp.Attributes.Value(attribute.Key("generator"))
					points[requestPoint{route.AsString(), class.AsString(), gen.AsBool()}] += dp.Value
				}
			case "tacit.http.request.duration":
				foundLatency = true
			}
		}
	}
	return points, foundLatency
}

func TestHTTPMetrics_MetricsMiddleware(t *testing.T) {
	reader := metric.NewManualReader()
	mp := metric.NewMeterProvider(metric.WithReader(reader))
	m := NewHTTPMetrics(mp.Meter(httpInstrumentationName), zap.NewNop())

	server := setupTestServer(t, llm.NewScripted(), WithHTTPMetrics(m))
	id := createSession(t, server).ID

	doRequest(t, server, http.MethodGet, "/health", nil)
	doRequest(t, server, http.MethodGet, "/api/v1/sessions/"+id, nil)
	doRequest(t, server, http.MethodGet, "/api/v1/sessions/missing", nil)
	doRequest(t, server, http.MethodPost, "/api/v1/sessions/"+id+"/messages", MessageRequest{Message: "저는 제빵사입니다"})

	points, foundLatency := collectRequests(t, reader)
	assert.True(t, foundLatency, "latency histogram not found")

	assert.Equal(t, int64(1), points[requestPoint{"/api/v1/sessions", "2xx", false}])
	assert.Equal(t, int64(1), points[requestPoint{"/health", "2xx", false}])
	assert.Equal(t, int64(1), points[requestPoint{"/api/v1/sessions/:id", "2xx", false}])
	assert.Equal(t, int64(1), points[requestPoint{"/api/v1/sessions/:id", "4xx", false}], "session ids collapse into the route template")
	assert.Equal(t, int64(1), points[requestPoint{"/api/v1/sessions/:id/messages", "2xx", true}])
}

func TestRouteLabel(t *testing.T) {
	assert.Equal(t, "unmatched", routeLabel(""))
	assert.Equal(t, "/api/v1/sessions/:id", routeLabel("/api/v1/sessions/:id"))
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", statusClass(http.StatusCreated))
	assert.Equal(t, "4xx", statusClass(http.StatusNotFound))
	assert.Equal(t, "5xx", statusClass(http.StatusBadGateway))
	assert.Equal(t, "unknown", statusClass(0))
}
