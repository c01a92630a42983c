package mcp

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/tacit/internal/logging"
	"github.com/fyrsmithlabs/tacit/internal/orchestrator"
	"github.com/fyrsmithlabs/tacit/internal/report"
)

type startInput struct{}

type sessionInput struct {
	SessionID string `json:"session_id" jsonschema:"Session identifier returned by tacit_start"`
}

type sessionOutput struct {
	SessionID string              `json:"session_id" jsonschema:"Session identifier"`
	Status    orchestrator.Status `json:"status" jsonschema:"Current phase, Ba and spiral"`
	Message   string              `json:"message,omitempty" jsonschema:"Opening message of the current phase, if any"`
}

type submitInput struct {
	SessionID string `json:"session_id" jsonschema:"Session identifier returned by tacit_start"`
	Message   string `json:"message" jsonschema:"The user's message, verbatim"`
}

type submitOutput struct {
	Response     string              `json:"response" jsonschema:"Reply to show the user"`
	PhaseChanged bool                `json:"phase_changed" jsonschema:"True when this call finished a phase"`
	Degraded     bool                `json:"degraded" jsonschema:"True when the finished artifact contains placeholders"`
	Status       orchestrator.Status `json:"status" jsonschema:"Phase, Ba and spiral after the call"`
}

type resetInput struct {
	SessionID string `json:"session_id" jsonschema:"Session identifier returned by tacit_start"`
	Restart   bool   `json:"restart,omitempty" jsonschema:"Begin the next spiral instead of returning to spiral 1"`
}

type artifactsInput struct {
	SessionID   string `json:"session_id" jsonschema:"Session identifier returned by tacit_start"`
	Format      string `json:"format,omitempty" jsonschema:"markdown (default), json, yaml or toml"`
	Transcripts bool   `json:"transcripts,omitempty" jsonschema:"Include conversation transcripts"`
}

type artifactsOutput struct {
	SessionID string              `json:"session_id" jsonschema:"Session identifier"`
	Status    orchestrator.Status `json:"status" jsonschema:"Current phase, Ba and spiral"`
	Phases    []string            `json:"phases" jsonschema:"Phases that have produced an artifact"`
	Degraded  []string            `json:"degraded" jsonschema:"Phases whose artifact contains placeholders"`
	Format    string              `json:"format" jsonschema:"Encoding of report"`
	Report    string              `json:"report" jsonschema:"Rendered report"`
}

// registerTools registers all MCP tools with the server.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "tacit_start",
		Description: "Start a new tacit knowledge session at the socialization phase and return its welcome message",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ startInput) (*mcp.CallToolResult, sessionOutput, error) {
		var out sessionOutput
		err := s.instrument(ctx, "tacit_start", func(ctx context.Context) error {
			sess := s.sessions.Create()
			return sess.Do(ctx, func(o *orchestrator.Orchestrator) error {
				msg, err := o.InitialMessage(ctx)
				if err != nil {
					return err
				}
				out = sessionOutput{SessionID: sess.ID, Status: o.Status(), Message: msg}
				return nil
			})
		})
		if err != nil {
			return nil, sessionOutput{}, err
		}
		return textResult(out.Message), out, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "tacit_status",
		Description: "Report the current SECI phase, Ba and spiral count of a session",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args sessionInput) (*mcp.CallToolResult, sessionOutput, error) {
		var out sessionOutput
		err := s.withSession(ctx, "tacit_status", args.SessionID, func(_ context.Context, o *orchestrator.Orchestrator) error {
			out = sessionOutput{SessionID: args.SessionID, Status: o.Status()}
			return nil
		})
		if err != nil {
			return nil, sessionOutput{}, err
		}
		return textResult(fmt.Sprintf("%s / %s / %d회차", out.Status.PhaseName, out.Status.BaDescription, out.Status.Spiral)), out, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "tacit_submit",
		Description: "Send the user's message to the current phase. Finishes the phase automatically once enough has been said",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args submitInput) (*mcp.CallToolResult, submitOutput, error) {
		var out submitOutput
		err := s.withSession(ctx, "tacit_submit", args.SessionID, func(ctx context.Context, o *orchestrator.Orchestrator) error {
			res, err := o.Submit(ctx, args.Message)
			if err != nil {
				return err
			}
			out = s.submitOutput(ctx, "tacit_submit", res)
			return nil
		})
		if err != nil {
			return nil, submitOutput{}, err
		}
		return textResult(out.Response), out, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "tacit_advance",
		Description: "Finish the current phase now, synthesizing its artifact from what has been said so far",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args sessionInput) (*mcp.CallToolResult, submitOutput, error) {
		var out submitOutput
		err := s.withSession(ctx, "tacit_advance", args.SessionID, func(ctx context.Context, o *orchestrator.Orchestrator) error {
			res, err := o.ForceAdvance(ctx)
			if err != nil {
				return err
			}
			out = s.submitOutput(ctx, "tacit_advance", res)
			return nil
		})
		if err != nil {
			return nil, submitOutput{}, err
		}
		return textResult(out.Response), out, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "tacit_reset",
		Description: "Discard the session's progress and return to socialization. With restart, the spiral counter advances instead of resetting",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args resetInput) (*mcp.CallToolResult, sessionOutput, error) {
		var out sessionOutput
		err := s.withSession(ctx, "tacit_reset", args.SessionID, func(ctx context.Context, o *orchestrator.Orchestrator) error {
			if args.Restart {
				o.Restart()
			} else {
				o.Reset()
			}
			msg, err := o.InitialMessage(ctx)
			if err != nil {
				return err
			}
			out = sessionOutput{SessionID: args.SessionID, Status: o.Status(), Message: msg}
			return nil
		})
		if err != nil {
			return nil, sessionOutput{}, err
		}
		return textResult(out.Message), out, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "tacit_artifacts",
		Description: "Render every artifact the session has produced as a report",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args artifactsInput) (*mcp.CallToolResult, artifactsOutput, error) {
		format, err := report.ParseFormat(args.Format)
		if err != nil {
			return nil, artifactsOutput{}, err
		}

		var out artifactsOutput
		err = s.withSession(ctx, "tacit_artifacts", args.SessionID, func(_ context.Context, o *orchestrator.Orchestrator) error {
			r := report.Build(o, args.Transcripts, time.Now())
			var buf bytes.Buffer
			if err := r.Write(&buf, format); err != nil {
				return err
			}
			out = artifactsOutput{
				SessionID: args.SessionID,
				Status:    r.Status,
				Phases:    []string{},
				Degraded:  []string{},
				Format:    string(format),
				Report:    buf.String(),
			}
			for _, p := range orchestrator.AllPhases() {
				a, ok := r.Artifacts[p]
				if !ok {
					continue
				}
				out.Phases = append(out.Phases, string(p))
				if a.Degraded() {
					out.Degraded = append(out.Degraded, string(p))
				}
			}
			return nil
		})
		if err != nil {
			return nil, artifactsOutput{}, err
		}
		return textResult(out.Report), out, nil
	})
}

// withSession runs fn with exclusive access to the named session.
func (s *Server) withSession(ctx context.Context, tool, id string, fn func(ctx context.Context, o *orchestrator.Orchestrator) error) error {
	ctx = logging.WithSessionID(ctx, id)
	return s.instrument(ctx, tool, func(ctx context.Context) error {
		sess, err := s.sessions.Get(id)
		if err != nil {
			return fmt.Errorf("%s: %w", id, err)
		}
		return sess.Do(ctx, func(o *orchestrator.Orchestrator) error {
			return fn(ctx, o)
		})
	})
}

// instrument applies the tool timeout and records metrics and failures.
func (s *Server) instrument(ctx context.Context, tool string, fn func(ctx context.Context) error) error {
	if s.config.ToolTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.ToolTimeout)
		defer cancel()
	}

	done := s.metrics.Begin(ctx, tool)
	err := fn(ctx)
	done(err)

	if err != nil {
		s.logger.Warn("tool call failed", append(logging.ContextFields(ctx),
			zap.String("tool", tool),
			zap.Error(err),
		)...)
	}
	return err
}

func (s *Server) submitOutput(ctx context.Context, tool string, r orchestrator.SubmitResult) submitOutput {
	if r.PhaseChanged {
		s.metrics.PhaseChanged(ctx, tool, r.Status.Phase)
	}
	return submitOutput{
		Response:     r.Response,
		PhaseChanged: r.PhaseChanged,
		Degraded:     r.Degraded,
		Status:       r.Status,
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}
