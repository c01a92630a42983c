package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"github.com/fyrsmithlabs/tacit/internal/conversation"
)

// LangChain adapts any langchaingo model to Generator.
type LangChain struct {
	model       llms.Model
	temperature float64
}

var _ Generator = (*LangChain)(nil)

// NewLangChain wraps an existing langchaingo model.
func NewLangChain(model llms.Model, temperature float64) *LangChain {
	if temperature == 0 {
		temperature = defaultTemperature
	}
	return &LangChain{model: model, temperature: temperature}
}

// NewOpenAI builds a LangChain generator backed by an OpenAI-compatible API.
func NewOpenAI(cfg Config) (*LangChain, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key required")
	}

	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}

	opts := []openai.Option{
		openai.WithModel(model),
		openai.WithToken(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OpenAI client: %w", err)
	}
	return NewLangChain(client, cfg.Temperature), nil
}

// Generate maps turns onto langchaingo chat messages.
func (l *LangChain) Generate(ctx context.Context, system string, turns []conversation.Turn, maxTokens int) (string, error) {
	msgs := make([]llms.MessageContent, 0, len(turns)+1)
	if system != "" {
		msgs = append(msgs, llms.TextParts(schema.ChatMessageTypeSystem, system))
	}
	for _, t := range turns {
		role := schema.ChatMessageTypeHuman
		if t.Role == conversation.RoleAssistant {
			role = schema.ChatMessageTypeAI
		}
		msgs = append(msgs, llms.TextParts(role, t.Text))
	}

	resp, err := l.model.GenerateContent(ctx, msgs,
		llms.WithMaxTokens(maxTokens),
		llms.WithTemperature(l.temperature),
	)
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Content == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Content, nil
}
