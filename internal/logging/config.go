package logging

import (
	"fmt"
	"regexp"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/tacit/internal/config"
)

// Config holds logging configuration. It is decoded from the "logging"
// section of the tacit config file.
type Config struct {
	Level      string            `koanf:"level"`
	Format     string            `koanf:"format"`
	Output     OutputConfig      `koanf:"output"`
	Sampling   SamplingConfig    `koanf:"sampling"`
	Caller     bool              `koanf:"caller"`
	Stacktrace string            `koanf:"stacktrace"`
	Fields     map[string]string `koanf:"fields"`
	Redaction  RedactionConfig   `koanf:"redaction"`
}

// OutputConfig controls where logs are written. The chat front end owns the
// terminal and the MCP server owns stdout, so both switch to File or Stderr.
type OutputConfig struct {
	Stdout bool   `koanf:"stdout"`
	Stderr bool   `koanf:"stderr"`
	File   string `koanf:"file"`
	OTEL   bool   `koanf:"otel"`
}

// SamplingConfig controls log volume reduction. Levels is keyed by level
// name; levels without an entry pass through unsampled.
type SamplingConfig struct {
	Enabled bool                           `koanf:"enabled"`
	Tick    config.Duration                `koanf:"tick"`
	Levels  map[string]LevelSamplingConfig `koanf:"levels"`
}

// LevelSamplingConfig keeps the first Initial entries per tick and then
// every Thereafter-th. Thereafter 0 drops the rest.
type LevelSamplingConfig struct {
	Initial    int `koanf:"initial"`
	Thereafter int `koanf:"thereafter"`
}

// RedactionConfig controls sensitive data redaction in encoded output.
type RedactionConfig struct {
	Enabled  bool     `koanf:"enabled"`
	Fields   []string `koanf:"fields"`
	Patterns []string `koanf:"patterns"`
}

// NewDefaultConfig returns JSON logs at info on stdout.
func NewDefaultConfig() *Config {
	return &Config{
		Level:  "info",
		Format: "json",
		Output: OutputConfig{
			Stdout: true,
		},
		Sampling: SamplingConfig{
			Enabled: true,
			Tick:    config.Duration(time.Second),
			Levels:  DefaultLevelSamplingConfig(),
		},
		Caller:     true,
		Stacktrace: "error",
		Fields: map[string]string{
			"service": "tacit",
		},
		Redaction: RedactionConfig{
			Enabled: true,
			Fields: []string{
				"password", "secret", "token", "api_key",
				"authorization", "bearer", "credential", "private_key",
			},
			Patterns: []string{
				`(?i)bearer\s+\S+`,
				`(?i)api[_-]?key[=:]\s*\S+`,
				`sk-(?:ant-)?[A-Za-z0-9_-]{16,}`,
			},
		},
	}
}

// DefaultLevelSamplingConfig returns default sampling by level name.
// Error and above are never sampled.
func DefaultLevelSamplingConfig() map[string]LevelSamplingConfig {
	return map[string]LevelSamplingConfig{
		"trace": {Initial: 1, Thereafter: 0},
		"debug": {Initial: 10, Thereafter: 0},
		"info":  {Initial: 100, Thereafter: 10},
		"warn":  {Initial: 100, Thereafter: 100},
	}
}

// Validate checks config for errors.
func (c *Config) Validate() error {
	if _, err := LevelFromString(c.Level); err != nil {
		return fmt.Errorf("invalid level %q: %w", c.Level, err)
	}
	if c.Stacktrace != "" {
		if _, err := LevelFromString(c.Stacktrace); err != nil {
			return fmt.Errorf("invalid stacktrace level %q: %w", c.Stacktrace, err)
		}
	}
	if c.Format != "json" && c.Format != "console" {
		return fmt.Errorf("format must be 'json' or 'console', got %q", c.Format)
	}
	o := c.Output
	if !o.Stdout && !o.Stderr && o.File == "" && !o.OTEL {
		return fmt.Errorf("at least one output must be enabled (stdout, stderr, file or otel)")
	}

	if c.Sampling.Enabled {
		if c.Sampling.Tick.Duration() <= 0 {
			return fmt.Errorf("sampling tick must be > 0 when sampling enabled")
		}
		for name, s := range c.Sampling.Levels {
			lvl, err := LevelFromString(name)
			if err != nil {
				return fmt.Errorf("invalid sampling level %q: %w", name, err)
			}
			if lvl >= zapcore.ErrorLevel {
				return fmt.Errorf("level %q cannot be sampled", name)
			}
			if s.Initial < 1 || s.Thereafter < 0 {
				return fmt.Errorf("sampling for %q needs initial >= 1 and thereafter >= 0", name)
			}
		}
	}

	if c.Redaction.Enabled {
		for _, pattern := range c.Redaction.Patterns {
			if len(pattern) > maxPatternLen {
				return fmt.Errorf("redaction pattern too long (max %d chars): %q", maxPatternLen, pattern)
			}
			if _, err := regexp.Compile(pattern); err != nil {
				return fmt.Errorf("invalid redaction pattern %q: %w", pattern, err)
			}
		}
	}

	for k, v := range c.Fields {
		if k == "" {
			return fmt.Errorf("field key cannot be empty")
		}
		if v == "" {
			return fmt.Errorf("field %q has empty value", k)
		}
	}
	return nil
}
