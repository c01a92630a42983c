package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// instrumentationName names the logger handed to the OpenTelemetry bridge.
const instrumentationName = "github.com/fyrsmithlabs/tacit"

// newEncoder creates a JSON or console encoder.
func newEncoder(format string) zapcore.Encoder {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = encodeLevel

	if format == "console" {
		return zapcore.NewConsoleEncoder(encoderCfg)
	}
	return zapcore.NewJSONEncoder(encoderCfg)
}

// encodeLevel prints TraceLevel as "trace" rather than "Level(-2)".
func encodeLevel(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(levelName(l))
}

// newCore tees every configured output and applies sampling. Returned
// closers belong to opened log files.
func newCore(cfg *Config, level zapcore.Level, otelProvider log.LoggerProvider) (zapcore.Core, []io.Closer, error) {
	var (
		cores   []zapcore.Core
		closers []io.Closer
		writers []zapcore.WriteSyncer
	)

	if cfg.Output.Stdout {
		writers = append(writers, zapcore.Lock(os.Stdout))
	}
	if cfg.Output.Stderr {
		writers = append(writers, zapcore.Lock(os.Stderr))
	}
	if cfg.Output.File != "" {
		f, err := openLogFile(cfg.Output.File)
		if err != nil {
			return nil, nil, err
		}
		writers = append(writers, zapcore.AddSync(f))
		closers = append(closers, f)
	}

	if len(writers) > 0 {
		encoder, err := NewRedactingEncoder(newEncoder(cfg.Format), cfg.Redaction)
		if err != nil {
			closeAll(closers)
			return nil, nil, fmt.Errorf("failed to create redacting encoder: %w", err)
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(writers...), level))
	}

	if cfg.Output.OTEL && otelProvider != nil {
		cores = append(cores, otelzap.NewCore(instrumentationName,
			otelzap.WithLoggerProvider(otelProvider),
		))
	}

	if len(cores) == 0 {
		return nil, nil, fmt.Errorf("at least one output must be enabled and available")
	}

	core := zapcore.NewTee(cores...)
	return newSampledCore(core, cfg.Sampling), closers, nil
}

// openLogFile appends to path, creating its directory if needed.
func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, nil
}

func closeAll(closers []io.Closer) error {
	var first error
	for _, c := range closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
