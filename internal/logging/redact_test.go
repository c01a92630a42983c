package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/tacit/internal/config"
)

// redactingLogger writes JSON lines into buf through a RedactingEncoder.
func redactingLogger(t *testing.T, cfg RedactionConfig) (*zap.Logger, *bytes.Buffer) {
	t.Helper()
	enc, err := NewRedactingEncoder(newEncoder("json"), cfg)
	require.NoError(t, err)
	buf := &bytes.Buffer{}
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(buf), zapcore.DebugLevel)), buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func TestRedactingEncoder_SensitiveKeys(t *testing.T) {
	logger, buf := redactingLogger(t, NewDefaultConfig().Redaction)

	logger.Info("calling provider",
		zap.String("api_key", "plain-value"),
		zap.String("Authorization", "Basic abc"),
		zap.Int("token", 42),
		zap.String("model", "claude"),
	)

	line := decodeLine(t, buf)
	assert.Equal(t, redactedMarker, line["api_key"])
	assert.Equal(t, redactedMarker, line["Authorization"])
	assert.Equal(t, redactedMarker, line["token"])
	assert.Equal(t, "claude", line["model"])
}

func TestRedactingEncoder_Patterns(t *testing.T) {
	logger, buf := redactingLogger(t, NewDefaultConfig().Redaction)

	logger.Warn("retry with Bearer abcdef123",
		zap.String("detail", "key sk-ant-REDACTED rejected"),
		zap.Error(errors.New("api_key=hunter2 invalid")),
	)

	line := decodeLine(t, buf)
	assert.Equal(t, "retry with [REDACTED]", line["msg"])
	assert.Equal(t, "key [REDACTED] rejected", line["detail"])
	assert.Equal(t, "[REDACTED] invalid", line["error"])
	assert.NotContains(t, buf.String(), "hunter2")
}

func TestRedactingEncoder_WithFields(t *testing.T) {
	logger, buf := redactingLogger(t, NewDefaultConfig().Redaction)

	logger.With(zap.String("password", "pw"), zap.String("note", "Bearer xyz")).Info("child")

	line := decodeLine(t, buf)
	assert.Equal(t, redactedMarker, line["password"])
	assert.Equal(t, "[REDACTED]", line["note"])
}

func TestRedactingEncoder_Disabled(t *testing.T) {
	logger, buf := redactingLogger(t, RedactionConfig{Enabled: false})

	logger.Info("raw", zap.String("api_key", "visible"))

	assert.Equal(t, "visible", decodeLine(t, buf)["api_key"])
}

func TestNewRedactingEncoder_InvalidPattern(t *testing.T) {
	_, err := NewRedactingEncoder(newEncoder("json"), RedactionConfig{Enabled: true, Patterns: []string{"[a-"}})
	assert.Error(t, err)
}

func TestSecretHelpers(t *testing.T) {
	f := RedactedString("header", "abcdef")
	assert.Equal(t, "[REDACTED:6]", f.String)

	f = Secret("llm_key", config.Secret("sk-123"))
	assert.Equal(t, "[REDACTED:6]", f.String)
}
