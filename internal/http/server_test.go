package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/tacit/internal/conversation"
	"github.com/fyrsmithlabs/tacit/internal/llm"
	"github.com/fyrsmithlabs/tacit/internal/metrics"
	"github.com/fyrsmithlabs/tacit/internal/orchestrator"
	"github.com/fyrsmithlabs/tacit/internal/session"
)

func newRegistry(gen llm.Generator) *session.Registry {
	return session.NewRegistry(func(string) *orchestrator.Orchestrator {
		return orchestrator.New(gen)
	}, zap.NewNop())
}

func setupTestServer(t *testing.T, gen llm.Generator, opts ...Option) *Server {
	t.Helper()
	server, err := NewServer(newRegistry(gen), zap.NewNop(), DefaultConfig(), opts...)
	require.NoError(t, err)
	return server
}

func doRequest(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func createSession(t *testing.T, s *Server) SessionResponse {
	t.Helper()
	rec := doRequest(t, s, http.MethodPost, "/api/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[SessionResponse](t, rec)
}

func TestNewServer(t *testing.T) {
	t.Run("creates server with valid config", func(t *testing.T) {
		cfg := &Config{Host: "localhost", Port: 9191}
		server, err := NewServer(newRegistry(llm.NewScripted()), zap.NewNop(), cfg)
		require.NoError(t, err)
		assert.NotNil(t, server.echo)
		assert.Equal(t, cfg, server.config)
	})

	t.Run("uses defaults when config is nil", func(t *testing.T) {
		server, err := NewServer(newRegistry(llm.NewScripted()), zap.NewNop(), nil)
		require.NoError(t, err)
		assert.Equal(t, "localhost", server.config.Host)
		assert.Equal(t, 9090, server.config.Port)
		assert.Equal(t, 3*time.Minute, server.config.RequestTimeout)
	})

	t.Run("returns error when logger is nil", func(t *testing.T) {
		_, err := NewServer(newRegistry(llm.NewScripted()), nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "logger is required")
	})

	t.Run("returns error when registry is nil", func(t *testing.T) {
		_, err := NewServer(nil, zap.NewNop(), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "session registry cannot be nil")
	})
}

func TestHandleHealth(t *testing.T) {
	server := setupTestServer(t, llm.NewScripted())
	createSession(t, server)

	rec := doRequest(t, server, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	resp := decode[HealthResponse](t, rec)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Sessions)
}

func TestSessionLifecycle(t *testing.T) {
	gen := llm.NewScripted("어떤 빵을 굽나요?")
	server := setupTestServer(t, gen)

	created := createSession(t, server)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, orchestrator.PhaseSocialization, created.Status.Phase)
	assert.Equal(t, 1, created.Status.Spiral)
	assert.NotEmpty(t, created.Message, "welcome message opens the session")
	base := "/api/v1/sessions/" + created.ID

	t.Run("message continues the dialogue", func(t *testing.T) {
		rec := doRequest(t, server, http.MethodPost, base+"/messages", MessageRequest{Message: "저는 제빵사입니다"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		resp := decode[SubmitResponse](t, rec)
		assert.Equal(t, "어떤 빵을 굽나요?", resp.Response)
		assert.False(t, resp.PhaseChanged)
	})

	t.Run("advance synthesizes with fallback", func(t *testing.T) {
		rec := doRequest(t, server, http.MethodPost, base+"/advance", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		resp := decode[SubmitResponse](t, rec)
		assert.True(t, resp.PhaseChanged)
		assert.True(t, resp.Degraded)
		assert.Equal(t, "experience_map", string(resp.ArtifactKind))
		assert.Equal(t, orchestrator.PhaseExternalization, resp.Status.Phase)
	})

	t.Run("get reports the new phase", func(t *testing.T) {
		rec := doRequest(t, server, http.MethodGet, base, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, orchestrator.BaDialoguing, decode[SessionResponse](t, rec).Status.Ba)
	})

	t.Run("artifacts lists the experience map", func(t *testing.T) {
		rec := doRequest(t, server, http.MethodGet, base+"/artifacts", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Artifacts map[string]map[string]any `json:"artifacts"`
			Degraded  []string                  `json:"degraded"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Contains(t, resp.Artifacts, "socialization")
		assert.Contains(t, resp.Artifacts["socialization"], "user_profile")
		assert.Equal(t, []string{"socialization"}, resp.Degraded)
	})

	t.Run("report renders markdown and json", func(t *testing.T) {
		rec := doRequest(t, server, http.MethodGet, base+"/report", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/markdown")
		assert.Contains(t, rec.Body.String(), "# SECI 지식 창조 리포트")

		rec = doRequest(t, server, http.MethodGet, base+"/report?format=json&transcripts=true", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		doc := decode[map[string]any](t, rec)
		assert.Contains(t, doc, "socialization")
		assert.Contains(t, doc, "transcripts")
	})

	t.Run("restart begins the next spiral", func(t *testing.T) {
		rec := doRequest(t, server, http.MethodPost, base+"/restart", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[SessionResponse](t, rec)
		assert.Equal(t, orchestrator.PhaseSocialization, resp.Status.Phase)
		assert.Equal(t, 2, resp.Status.Spiral)
		assert.NotEmpty(t, resp.Message)
	})

	t.Run("reset returns to the first spiral", func(t *testing.T) {
		rec := doRequest(t, server, http.MethodPost, base+"/reset", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, decode[SessionResponse](t, rec).Status.Spiral)
	})

	t.Run("list and delete", func(t *testing.T) {
		rec := doRequest(t, server, http.MethodGet, "/api/v1/sessions", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{created.ID}, decode[SessionListResponse](t, rec).Sessions)

		rec = doRequest(t, server, http.MethodDelete, base, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = doRequest(t, server, http.MethodGet, base, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandleMessage_Errors(t *testing.T) {
	t.Run("unknown session", func(t *testing.T) {
		server := setupTestServer(t, llm.NewScripted())
		rec := doRequest(t, server, http.MethodPost, "/api/v1/sessions/missing/messages", MessageRequest{Message: "안녕"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("empty message", func(t *testing.T) {
		server := setupTestServer(t, llm.NewScripted())
		id := createSession(t, server).ID
		rec := doRequest(t, server, http.MethodPost, "/api/v1/sessions/"+id+"/messages", MessageRequest{Message: "  "})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("generator failure is a bad gateway and keeps state", func(t *testing.T) {
		gen := llm.NewScripted("두 번째 시도 답변")
		gen.FailOn(0, errors.New("upstream unavailable"))
		server := setupTestServer(t, gen)
		id := createSession(t, server).ID

		rec := doRequest(t, server, http.MethodPost, "/api/v1/sessions/"+id+"/messages", MessageRequest{Message: "안녕하세요"})
		assert.Equal(t, http.StatusBadGateway, rec.Code)

		rec = doRequest(t, server, http.MethodPost, "/api/v1/sessions/"+id+"/messages", MessageRequest{Message: "안녕하세요"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "두 번째 시도 답변", decode[SubmitResponse](t, rec).Response)
	})

	t.Run("generator timeout", func(t *testing.T) {
		blocking := llm.GeneratorFunc(func(ctx context.Context, _ string, _ []conversation.Turn, _ int) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		})
		server, err := NewServer(newRegistry(blocking), zap.NewNop(), &Config{RequestTimeout: 20 * time.Millisecond})
		require.NoError(t, err)
		id := createSession(t, server).ID

		rec := doRequest(t, server, http.MethodPost, "/api/v1/sessions/"+id+"/messages", MessageRequest{Message: "안녕하세요"})
		assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	})

	t.Run("invalid body", func(t *testing.T) {
		server := setupTestServer(t, llm.NewScripted())
		id := createSession(t, server).ID
		req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/"+id+"/messages", bytes.NewReader([]byte("{")))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		server.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleAdvance_Complete(t *testing.T) {
	server := setupTestServer(t, llm.NewScripted())
	id := createSession(t, server).ID
	path := "/api/v1/sessions/" + id + "/advance"

	for i := 0; i < 4; i++ {
		rec := doRequest(t, server, http.MethodPost, path, nil)
		require.Equal(t, http.StatusOK, rec.Code, "advance %d: %s", i, rec.Body.String())
	}

	rec := doRequest(t, server, http.MethodGet, "/api/v1/sessions/"+id, nil)
	assert.Equal(t, orchestrator.PhaseComplete, decode[SessionResponse](t, rec).Status.Phase)

	rec = doRequest(t, server, http.MethodPost, path, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleReport_BadQuery(t *testing.T) {
	server := setupTestServer(t, llm.NewScripted())
	id := createSession(t, server).ID

	rec := doRequest(t, server, http.MethodGet, "/api/v1/sessions/"+id+"/report?format=pdf", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, server, http.MethodGet, "/api/v1/sessions/"+id+"/report?transcripts=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	gen := llm.NewScripted()
	registry := session.NewRegistry(func(string) *orchestrator.Orchestrator {
		o := orchestrator.New(gen, orchestrator.WithGeneratorWrapper(m.Instrument))
		o.OnTransition(m.Observe)
		return o
	}, zap.NewNop())

	server, err := NewServer(registry, zap.NewNop(), nil, WithGatherer(reg))
	require.NoError(t, err)

	id := createSession(t, server).ID
	rec := doRequest(t, server, http.MethodPost, "/api/v1/sessions/"+id+"/advance", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, server, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `tacit_synthesis_total{outcome="fallback",phase="socialization"} 1`)
	assert.Contains(t, body, "tacit_collaborator_calls_total")
}
