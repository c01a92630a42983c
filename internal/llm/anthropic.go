package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/fyrsmithlabs/tacit/internal/conversation"
)

// Anthropic talks to the Anthropic Messages API.
type Anthropic struct {
	model       string
	apiKey      string
	baseURL     string
	temperature float64
	httpClient  *http.Client
	limiter     *rate.Limiter
	maxRetries  int
	backoff     time.Duration
}

var _ Generator = (*Anthropic)(nil)

// NewAnthropic creates a client from cfg, filling unset fields with defaults.
func NewAnthropic(cfg Config) (*Anthropic, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key required")
	}

	a := &Anthropic{
		model:       cfg.Model,
		apiKey:      cfg.APIKey,
		baseURL:     cfg.BaseURL,
		temperature: cfg.Temperature,
		maxRetries:  cfg.MaxRetries,
		backoff:     defaultBaseBackoff,
	}
	if a.model == "" {
		a.model = defaultAnthropicModel
	}
	if a.baseURL == "" {
		a.baseURL = defaultAnthropicBaseURL
	}
	if a.temperature == 0 {
		a.temperature = defaultTemperature
	}
	if a.maxRetries == 0 {
		a.maxRetries = defaultMaxRetries
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	a.httpClient = &http.Client{Timeout: timeout}

	limit, burst := cfg.RateLimit, cfg.Burst
	if limit == 0 {
		limit = defaultRateLimit
	}
	if burst == 0 {
		burst = defaultBurst
	}
	a.limiter = rate.NewLimiter(rate.Limit(limit), burst)

	return a, nil
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	Temperature float64            `json:"temperature"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

type anthropicError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Generate sends the conversation and returns the assistant's text.
func (a *Anthropic) Generate(ctx context.Context, system string, turns []conversation.Turn, maxTokens int) (string, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	req := anthropicRequest{
		Model:       a.model,
		MaxTokens:   maxTokens,
		System:      system,
		Temperature: a.temperature,
		Messages:    make([]anthropicMessage, 0, len(turns)),
	}
	for _, t := range turns {
		req.Messages = append(req.Messages, anthropicMessage{Role: string(t.Role), Content: t.Text})
	}

	return withRetry(ctx, a.maxRetries, a.backoff, func() (string, error) {
		return a.doRequest(ctx, req)
	})
}

func (a *Anthropic) doRequest(ctx context.Context, req anthropicRequest) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-API-Key", a.apiKey)
	httpReq.Header.Set("Anthropic-Version", "2023-06-01")

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", &retryableError{err: fmt.Errorf("API request failed: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", &retryableError{err: fmt.Errorf("rate limited (429)")}
	}
	if resp.StatusCode >= 500 {
		return "", &retryableError{err: fmt.Errorf("server error (%d): %s", resp.StatusCode, string(body))}
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr anthropicError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("API error (%d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return "", fmt.Errorf("API error (%d): %s", resp.StatusCode, string(body))
	}

	var out anthropicResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("parsing response: %w", err)
	}
	for _, block := range out.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}
	return "", ErrEmptyResponse
}
