// Package llm provides the text-generation collaborators the phase agents
// talk to: an Anthropic Messages API client, an OpenAI-compatible client
// built on langchaingo, and a scripted double for tests and offline demos.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fyrsmithlabs/tacit/internal/conversation"
)

// Generator produces the next assistant turn given a system instruction, the
// ordered turns so far and a token budget.
type Generator interface {
	Generate(ctx context.Context, system string, turns []conversation.Turn, maxTokens int) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, system string, turns []conversation.Turn, maxTokens int) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, system string, turns []conversation.Turn, maxTokens int) (string, error) {
	return f(ctx, system, turns, maxTokens)
}

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderScripted  = "scripted"
)

const (
	defaultAnthropicBaseURL = "https://api.anthropic.com"
	defaultAnthropicModel   = "claude-sonnet-4-20250514"
	defaultOpenAIModel      = "gpt-4o-mini"
	defaultTimeout          = 120 * time.Second
	defaultMaxRetries       = 3
	defaultBaseBackoff      = 1 * time.Second
	defaultRateLimit        = 50.0 / 60.0
	defaultBurst            = 5
	defaultTemperature      = 0.7
)

// Config selects and tunes a Generator.
type Config struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	Timeout     time.Duration
	MaxRetries  int
	RateLimit   float64
	Burst       int
	Temperature float64
}

// ErrEmptyResponse is returned when the provider answers with no text.
var ErrEmptyResponse = errors.New("empty response from provider")

// New builds the Generator named by cfg.Provider.
func New(cfg Config) (Generator, error) {
	switch cfg.Provider {
	case ProviderAnthropic, "":
		return NewAnthropic(cfg)
	case ProviderOpenAI:
		return NewOpenAI(cfg)
	case ProviderScripted:
		return NewScripted(), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}

// retryableError marks a transient failure.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string {
	return e.err.Error()
}

func (e *retryableError) Unwrap() error {
	return e.err
}

func isRetryable(err error) bool {
	var re *retryableError
	return errors.As(err, &re)
}

// withRetry runs fn until it succeeds, returns a permanent error or the
// attempts run out. Backoff doubles from base between attempts.
func withRetry(ctx context.Context, maxRetries int, base time.Duration, fn func() (string, error)) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := base * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		out, err := fn()
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !isRetryable(err) {
			return "", err
		}
	}
	return "", fmt.Errorf("max retries exceeded: %w", lastErr)
}
