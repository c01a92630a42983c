package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"

	"github.com/fyrsmithlabs/tacit/internal/conversation"
)

func testTurns() []conversation.Turn {
	return []conversation.Turn{
		{Role: conversation.RoleUser, Text: "저는 20년차 목수입니다"},
		{Role: conversation.RoleAssistant, Text: "어떤 일을 가장 잘하시나요?"},
		{Role: conversation.RoleUser, Text: "나무결을 보는 눈이요"},
	}
}

func newTestAnthropic(t *testing.T, url string) *Anthropic {
	t.Helper()
	a, err := NewAnthropic(Config{APIKey: "test-key", BaseURL: url, MaxRetries: 2})
	require.NoError(t, err)
	a.backoff = time.Millisecond
	return a
}

func TestNew_Providers(t *testing.T) {
	g, err := New(Config{Provider: ProviderScripted})
	require.NoError(t, err)
	assert.IsType(t, &Scripted{}, g)

	_, err = New(Config{Provider: ProviderAnthropic})
	assert.Error(t, err, "api key is required")

	_, err = New(Config{Provider: "palm"})
	assert.ErrorContains(t, err, "unknown provider")
}

func TestAnthropic_Generate(t *testing.T) {
	var got anthropicRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-API-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"그 눈은 어떻게 생겼나요?"}],"stop_reason":"end_turn"}`))
	}))
	defer srv.Close()

	a := newTestAnthropic(t, srv.URL)
	out, err := a.Generate(context.Background(), "system prompt", testTurns(), 2048)
	require.NoError(t, err)

	assert.Equal(t, "그 눈은 어떻게 생겼나요?", out)
	assert.Equal(t, "system prompt", got.System)
	assert.Equal(t, 2048, got.MaxTokens)
	require.Len(t, got.Messages, 3)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "assistant", got.Messages[1].Role)
}

func TestAnthropic_RetriesServerErrors(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"ok"}]}`))
	}))
	defer srv.Close()

	out, err := newTestAnthropic(t, srv.URL).Generate(context.Background(), "", testTurns(), 10)
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestAnthropic_ClientErrorIsNotRetried(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"invalid_request_error","message":"bad turns"}}`))
	}))
	defer srv.Close()

	_, err := newTestAnthropic(t, srv.URL).Generate(context.Background(), "", testTurns(), 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad turns")
	assert.Equal(t, int32(1), attempts.Load())
}

func TestAnthropic_EmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content":[]}`))
	}))
	defer srv.Close()

	_, err := newTestAnthropic(t, srv.URL).Generate(context.Background(), "", testTurns(), 10)
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

type fakeModel struct {
	messages []llms.MessageContent
	opts     llms.CallOptions
	reply    string
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.messages = messages
	for _, o := range options {
		o(&f.opts)
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.reply}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func TestLangChain_Generate(t *testing.T) {
	model := &fakeModel{reply: "좋은 이야기네요"}
	g := NewLangChain(model, 0.2)

	out, err := g.Generate(context.Background(), "system", testTurns(), 512)
	require.NoError(t, err)

	assert.Equal(t, "좋은 이야기네요", out)
	require.Len(t, model.messages, 4)
	assert.Equal(t, schema.ChatMessageTypeSystem, model.messages[0].Role)
	assert.Equal(t, schema.ChatMessageTypeHuman, model.messages[1].Role)
	assert.Equal(t, schema.ChatMessageTypeAI, model.messages[2].Role)
	assert.Equal(t, 512, model.opts.MaxTokens)
}

func TestScripted(t *testing.T) {
	s := NewScripted("하나", "둘")
	s.FailOn(2, errors.New("boom"))
	ctx := context.Background()

	out, err := s.Generate(ctx, "sys", testTurns(), 1)
	require.NoError(t, err)
	assert.Equal(t, "하나", out)

	out, _ = s.Generate(ctx, "sys", nil, 1)
	assert.Equal(t, "둘", out)

	_, err = s.Generate(ctx, "sys", nil, 1)
	assert.EqualError(t, err, "boom")

	out, _ = s.Generate(ctx, "sys", nil, 1)
	assert.Equal(t, s.Default, out)

	calls := s.Calls()
	require.Len(t, calls, 4)
	assert.Len(t, calls[0].Turns, 3)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = s.Generate(cancelled, "", nil, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
