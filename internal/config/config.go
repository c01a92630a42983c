// Package config loads tacit configuration.
//
// Values come from three layers, highest precedence first:
//  1. Environment variables (TACIT_LLM_MODEL, TACIT_SERVER_PORT, ...)
//  2. YAML config file (~/.config/tacit/config.yaml)
//  3. Defaults (Default)
//
// Sections owned by other packages (logging, telemetry) are decoded on demand
// with Config.Section so this package stays a leaf.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/knadh/koanf/v2"
)

// Provider names accepted in llm.provider.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderScripted  = "scripted"
)

// Config holds the complete tacit configuration.
type Config struct {
	LLM     LLMConfig     `koanf:"llm"`
	Agent   AgentConfig   `koanf:"agent"`
	Server  ServerConfig  `koanf:"server"`
	Session SessionConfig `koanf:"session"`
	Chat    ChatConfig    `koanf:"chat"`
	Events  EventsConfig  `koanf:"events"`
	Secrets SecretsConfig `koanf:"secrets"`

	k *koanf.Koanf
}

// LLMConfig selects and tunes the text generator.
type LLMConfig struct {
	Provider    string   `koanf:"provider"`
	Model       string   `koanf:"model"`
	APIKey      Secret   `koanf:"api_key"`
	BaseURL     string   `koanf:"base_url"`
	Timeout     Duration `koanf:"timeout"`
	MaxRetries  int      `koanf:"max_retries"`
	RateLimit   float64  `koanf:"rate_limit"` // requests per second
	Burst       int      `koanf:"burst"`
	Temperature float64  `koanf:"temperature"`
}

// AgentConfig holds per-exchange token budgets. Zero keeps the agent default.
type AgentConfig struct {
	ChatTokens       int `koanf:"chat_tokens"`
	InitialTokens    int `koanf:"initial_tokens"`
	ExperienceTokens int `koanf:"experience_tokens"`
	SynthesisTokens  int `koanf:"synthesis_tokens"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string   `koanf:"host"`
	Port            int      `koanf:"port"`
	RequestTimeout  Duration `koanf:"request_timeout"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
}

// SessionConfig controls how long idle sessions are kept by the server.
type SessionConfig struct {
	TTL           Duration `koanf:"ttl"`
	SweepInterval Duration `koanf:"sweep_interval"`
}

// ChatConfig configures the terminal front end.
type ChatConfig struct {
	ExportDir      string   `koanf:"export_dir"`
	RequestTimeout Duration `koanf:"request_timeout"`
}

// EventsConfig controls publishing of phase transitions to NATS.
type EventsConfig struct {
	Enabled       bool   `koanf:"enabled"`
	URL           string `koanf:"url"`
	SubjectPrefix string `koanf:"subject_prefix"`
}

// SecretsConfig controls scrubbing of secrets from user messages.
type SecretsConfig struct {
	Enabled       bool   `koanf:"enabled"`
	AllowlistPath string `koanf:"allowlist_path"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:    ProviderAnthropic,
			Timeout:     Duration(120 * time.Second),
			MaxRetries:  3,
			RateLimit:   50.0 / 60.0,
			Burst:       5,
			Temperature: 0.7,
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            9090,
			RequestTimeout:  Duration(3 * time.Minute),
			ShutdownTimeout: Duration(10 * time.Second),
		},
		Session: SessionConfig{
			TTL:           Duration(2 * time.Hour),
			SweepInterval: Duration(5 * time.Minute),
		},
		Chat: ChatConfig{
			ExportDir:      ".",
			RequestTimeout: Duration(3 * time.Minute),
		},
		Events: EventsConfig{
			URL:           "nats://127.0.0.1:4222",
			SubjectPrefix: "tacit",
		},
		Secrets: SecretsConfig{
			Enabled: true,
		},
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderAnthropic, ProviderOpenAI:
		if !c.LLM.APIKey.IsSet() {
			return fmt.Errorf("llm.api_key is required for provider %q", c.LLM.Provider)
		}
	case ProviderScripted:
	default:
		return fmt.Errorf("unknown llm provider %q (want anthropic, openai or scripted)", c.LLM.Provider)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be within [0, 2], got %v", c.LLM.Temperature)
	}
	if c.LLM.MaxRetries < 0 {
		return errors.New("llm.max_retries cannot be negative")
	}
	if c.LLM.RateLimit <= 0 {
		return errors.New("llm.rate_limit must be positive")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("server.shutdown_timeout must be positive")
	}

	if c.Session.TTL > 0 && c.Session.SweepInterval <= 0 {
		return errors.New("session.sweep_interval must be positive when session.ttl is set")
	}

	if c.Events.Enabled && c.Events.URL == "" {
		return errors.New("events.url is required when events are enabled")
	}
	return nil
}

// Section decodes the subtree at path into out, leaving fields absent from
// every source untouched. out should already hold its defaults.
func (c *Config) Section(path string, out any) error {
	if c.k == nil || !c.k.Exists(path) {
		return nil
	}
	if err := c.k.Unmarshal(path, out); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}
