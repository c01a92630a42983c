package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/tacit/internal/config"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.False(t, cfg.Enabled)
	assert.Equal(t, "localhost:4317", cfg.Endpoint)
	assert.Equal(t, ProtocolGRPC, cfg.Protocol)
	assert.Equal(t, "tacit", cfg.ServiceName)
	assert.True(t, cfg.Insecure)
	assert.Equal(t, 1.0, cfg.Sampling.Rate)
	assert.Equal(t, 15*time.Second, cfg.Metrics.ExportInterval.Duration())
	assert.Equal(t, 5*time.Second, cfg.Shutdown.Timeout.Duration())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"disabled skips checks", func(c *Config) { c.Endpoint = "" }, ""},
		{"enabled default", func(c *Config) { c.Enabled = true }, ""},
		{"missing endpoint", func(c *Config) { c.Enabled = true; c.Endpoint = "" }, "endpoint is required"},
		{"missing service", func(c *Config) { c.Enabled = true; c.ServiceName = "" }, "service_name"},
		{"bad protocol", func(c *Config) { c.Enabled = true; c.Protocol = "udp" }, "protocol"},
		{"http protocol", func(c *Config) { c.Enabled = true; c.Protocol = ProtocolHTTP }, ""},
		{"insecure remote", func(c *Config) {
			c.Enabled = true
			c.Endpoint = "collector.example.com:4317"
		}, "insecure"},
		{"tls remote", func(c *Config) {
			c.Enabled = true
			c.Endpoint = "https://collector.example.com:4318"
			c.Insecure = false
			c.TLSSkipVerify = true
		}, ""},
		{"insecure ipv6 loopback", func(c *Config) { c.Enabled = true; c.Endpoint = "[::1]:4317" }, ""},
		{"insecure 127.x", func(c *Config) { c.Enabled = true; c.Endpoint = "127.0.0.2:4317" }, ""},
		{"rate too high", func(c *Config) { c.Enabled = true; c.Sampling.Rate = 1.5 }, "sampling.rate"},
		{"rate negative", func(c *Config) { c.Enabled = true; c.Sampling.Rate = -0.1 }, "sampling.rate"},
		{"zero export interval", func(c *Config) {
			c.Enabled = true
			c.Metrics.ExportInterval = config.Duration(0)
		}, "export_interval"},
		{"metrics off ignores interval", func(c *Config) {
			c.Enabled = true
			c.Metrics.Enabled = false
			c.Metrics.ExportInterval = 0
		}, ""},
		{"zero shutdown", func(c *Config) { c.Enabled = true; c.Shutdown.Timeout = 0 }, "shutdown.timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestStripScheme(t *testing.T) {
	assert.Equal(t, "otel.example.com:4318", stripScheme("https://otel.example.com:4318"))
	assert.Equal(t, "localhost:4318", stripScheme("http://localhost:4318"))
	assert.Equal(t, "localhost:4317", stripScheme("localhost:4317"))
}

func TestTLSConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	assert.Nil(t, tlsConfig(cfg))

	cfg.Insecure = false
	assert.Nil(t, tlsConfig(cfg))

	cfg.TLSSkipVerify = true
	tc := tlsConfig(cfg)
	require.NotNil(t, tc)
	assert.True(t, tc.InsecureSkipVerify)
}
