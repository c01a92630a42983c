// Package logging provides structured logging on top of Zap.
//
// It adds a Trace level (-2, below Debug) for full prompts and raw generator
// output, redaction of sensitive keys and token-like strings at the encoder,
// per-level sampling that never drops errors, and correlation fields taken
// from the context.
//
// Outputs can be combined: stdout for the HTTP server, stderr for the MCP
// server (stdout carries the protocol), a file for the terminal chat, and
// OpenTelemetry through the otelzap bridge.
//
//	cfg := logging.NewDefaultConfig()
//	logger, err := logging.NewLogger(cfg, otelProvider)
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	ctx = logging.WithSessionID(ctx, "sess_123")
//	logger.Info(ctx, "phase changed", zap.String("to", "externalization"))
//
// Entries then carry session.id, and trace_id/span_id when a span is active.
//
// Configuration comes from the "logging" section of the tacit config file
// or TACIT_LOGGING_* environment variables.
package logging
