package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/tacit/internal/logging"
	"github.com/fyrsmithlabs/tacit/internal/orchestrator"
	"github.com/fyrsmithlabs/tacit/internal/report"
	"github.com/fyrsmithlabs/tacit/internal/session"
)

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok", Sessions: s.sessions.Len()})
}

func (s *Server) handleCreate(c echo.Context) error {
	sess := s.sessions.Create()

	var resp SessionResponse
	err := s.do(c, sess, func(ctx context.Context, o *orchestrator.Orchestrator) error {
		msg, err := o.InitialMessage(ctx)
		if err != nil {
			return err
		}
		resp = SessionResponse{ID: sess.ID, Status: o.Status(), Message: msg}
		return nil
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, resp)
}

func (s *Server) handleList(c echo.Context) error {
	return c.JSON(http.StatusOK, SessionListResponse{Sessions: s.sessions.IDs()})
}

func (s *Server) handleGet(c echo.Context) error {
	return s.withSession(c, func(_ context.Context, id string, o *orchestrator.Orchestrator) error {
		return c.JSON(http.StatusOK, SessionResponse{ID: id, Status: o.Status()})
	})
}

func (s *Server) handleDelete(c echo.Context) error {
	if err := s.sessions.Delete(c.Param("id")); err != nil {
		return s.httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleMessage(c echo.Context) error {
	var req MessageRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid message request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	return s.withSession(c, func(ctx context.Context, _ string, o *orchestrator.Orchestrator) error {
		res, err := o.Submit(ctx, req.Message)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, submitResponse(res))
	})
}

func (s *Server) handleAdvance(c echo.Context) error {
	return s.withSession(c, func(ctx context.Context, _ string, o *orchestrator.Orchestrator) error {
		res, err := o.ForceAdvance(ctx)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, submitResponse(res))
	})
}

func (s *Server) handleReset(c echo.Context) error {
	return s.withSession(c, func(ctx context.Context, id string, o *orchestrator.Orchestrator) error {
		o.Reset()
		return s.writeOpening(ctx, c, id, o)
	})
}

func (s *Server) handleRestart(c echo.Context) error {
	return s.withSession(c, func(ctx context.Context, id string, o *orchestrator.Orchestrator) error {
		o.Restart()
		return s.writeOpening(ctx, c, id, o)
	})
}

func (s *Server) writeOpening(ctx context.Context, c echo.Context, id string, o *orchestrator.Orchestrator) error {
	msg, err := o.InitialMessage(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, SessionResponse{ID: id, Status: o.Status(), Message: msg})
}

func (s *Server) handleArtifacts(c echo.Context) error {
	return s.withSession(c, func(_ context.Context, _ string, o *orchestrator.Orchestrator) error {
		all := o.AllArtifacts()
		resp := ArtifactsResponse{
			Status:    o.Status(),
			Artifacts: all,
			Degraded:  []orchestrator.Phase{},
		}
		for _, p := range orchestrator.AllPhases() {
			if a, ok := all[p]; ok && a.Degraded() {
				resp.Degraded = append(resp.Degraded, p)
			}
		}
		return c.JSON(http.StatusOK, resp)
	})
}

func (s *Server) handleReport(c echo.Context) error {
	format, err := report.ParseFormat(c.QueryParam("format"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	withTranscripts := false
	if v := c.QueryParam("transcripts"); v != "" {
		withTranscripts, err = strconv.ParseBool(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "transcripts must be a boolean")
		}
	}

	return s.withSession(c, func(_ context.Context, _ string, o *orchestrator.Orchestrator) error {
		var buf bytes.Buffer
		if err := report.Build(o, withTranscripts, s.now()).Write(&buf, format); err != nil {
			return err
		}
		return c.Blob(http.StatusOK, format.ContentType(), buf.Bytes())
	})
}

// withSession looks up the session named by the :id parameter and runs fn
// with exclusive access to it.
func (s *Server) withSession(c echo.Context, fn func(ctx context.Context, id string, o *orchestrator.Orchestrator) error) error {
	sess, err := s.sessions.Get(c.Param("id"))
	if err != nil {
		return s.httpError(err)
	}
	return s.do(c, sess, func(ctx context.Context, o *orchestrator.Orchestrator) error {
		return fn(ctx, sess.ID, o)
	})
}

func (s *Server) do(c echo.Context, sess *session.Session, fn func(ctx context.Context, o *orchestrator.Orchestrator) error) error {
	ctx := logging.WithSessionID(c.Request().Context(), sess.ID)
	if s.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.RequestTimeout)
		defer cancel()
	}

	err := sess.Do(ctx, func(o *orchestrator.Orchestrator) error {
		return fn(ctx, o)
	})
	if err != nil {
		return s.httpError(err)
	}
	return nil
}

// httpError maps domain errors onto HTTP status codes. Anything unknown came
// from the generator and is reported as a bad gateway.
func (s *Server) httpError(err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}

	code := http.StatusBadGateway
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		code = http.StatusNotFound
	case errors.Is(err, orchestrator.ErrEmptyMessage):
		code = http.StatusBadRequest
	case errors.Is(err, orchestrator.ErrPhaseComplete):
		code = http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		code = http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		code = http.StatusServiceUnavailable
	}
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err), zap.Int("status", code))
	}
	return echo.NewHTTPError(code, err.Error()).SetInternal(err)
}
