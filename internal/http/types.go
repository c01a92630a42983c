package http

import (
	"github.com/fyrsmithlabs/tacit/internal/artifact"
	"github.com/fyrsmithlabs/tacit/internal/orchestrator"
)

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}

// SessionResponse describes one session. Message carries the opening
// message of the current phase when there is one.
type SessionResponse struct {
	ID      string              `json:"id"`
	Status  orchestrator.Status `json:"status"`
	Message string              `json:"message,omitempty"`
}

// SessionListResponse is the response body for GET /api/v1/sessions.
type SessionListResponse struct {
	Sessions []string `json:"sessions"`
}

// MessageRequest is the request body for POST /api/v1/sessions/:id/messages.
type MessageRequest struct {
	Message string `json:"message"`
}

// SubmitResponse is the outcome of a message or a forced advance.
type SubmitResponse struct {
	Response     string              `json:"response"`
	PhaseChanged bool                `json:"phase_changed"`
	Degraded     bool                `json:"degraded"`
	Status       orchestrator.Status `json:"status"`
	ArtifactKind artifact.Kind       `json:"artifact_kind,omitempty"`
}

// ArtifactsResponse lists every artifact produced so far, keyed by the phase
// that produced it.
type ArtifactsResponse struct {
	Status    orchestrator.Status                      `json:"status"`
	Artifacts map[orchestrator.Phase]artifact.Artifact `json:"artifacts"`
	Degraded  []orchestrator.Phase                     `json:"degraded"`
}

func submitResponse(r orchestrator.SubmitResult) SubmitResponse {
	out := SubmitResponse{
		Response:     r.Response,
		PhaseChanged: r.PhaseChanged,
		Degraded:     r.Degraded,
		Status:       r.Status,
	}
	if r.Artifact != nil {
		out.ArtifactKind = r.Artifact.Kind()
	}
	return out
}
