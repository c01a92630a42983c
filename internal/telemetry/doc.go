// Package telemetry sets up OpenTelemetry tracing and metric export.
//
// When enabled, New installs OTLP tracer and meter providers (gRPC or
// HTTP/protobuf) as the otel globals. The agents open a span per generator
// call; the HTTP and MCP servers record request counts and durations
// through the global meter. Domain metrics such as phase transitions are
// exposed separately on the Prometheus /metrics endpoint.
//
//	telemetry:
//	  enabled: true
//	  endpoint: "localhost:4317"
//	  protocol: grpc
//	  sampling:
//	    rate: 0.25
//
// Initialization failures degrade to no-op providers instead of failing
// startup. TestTelemetry records spans and metrics in memory for tests.
package telemetry
