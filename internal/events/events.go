// Package events publishes session transitions to NATS so other services
// can follow a spiral as it progresses.
//
// Every transition is published as JSON to the subject
//
//	{prefix}.{session_id}.{kind}
//
// where kind is "phase" for forward moves and "reset" or "restart" otherwise.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/tacit/internal/orchestrator"
)

// DefaultSubjectPrefix is used when no prefix is configured.
const DefaultSubjectPrefix = "tacit.sessions"

// Event is the wire form of a transition.
type Event struct {
	ID           string    `json:"id"`
	SessionID    string    `json:"session_id"`
	Kind         string    `json:"kind"`
	From         string    `json:"from"`
	To           string    `json:"to"`
	Spiral       int       `json:"spiral"`
	Forced       bool      `json:"forced"`
	ArtifactKind string    `json:"artifact_kind,omitempty"`
	Degraded     bool      `json:"degraded"`
	At           time.Time `json:"at"`
}

// FromTransition builds the event for a transition in sessionID.
func FromTransition(sessionID string, t orchestrator.Transition) Event {
	e := Event{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Kind:      string(t.Kind),
		From:      string(t.From),
		To:        string(t.To),
		Spiral:    t.Spiral,
		Forced:    t.Forced,
		Degraded:  t.Degraded,
		At:        t.At,
	}
	if t.Artifact != nil {
		e.ArtifactKind = string(t.Artifact.Kind())
	}
	return e
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NATSPublisher publishes events to a NATS connection.
type NATSPublisher struct {
	nc     *nats.Conn
	prefix string
	owned  bool
}

// NewNATSPublisher publishes over an existing connection, which the caller
// keeps ownership of.
func NewNATSPublisher(nc *nats.Conn, prefix string) *NATSPublisher {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &NATSPublisher{nc: nc, prefix: prefix}
}

// Connect dials url and returns a publisher that closes the connection on
// Close.
func Connect(url, prefix string, logger *zap.Logger) (*NATSPublisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	nc, err := nats.Connect(url,
		nats.Name("tacit"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to nats: %w", err)
	}
	p := NewNATSPublisher(nc, prefix)
	p.owned = true
	return p, nil
}

// Subject returns the subject an event is published to.
func (p *NATSPublisher) Subject(e Event) string {
	kind := "phase"
	if e.Kind != string(orchestrator.TransitionAdvance) {
		kind = e.Kind
	}
	return fmt.Sprintf("%s.%s.%s", p.prefix, e.SessionID, kind)
}

// Publish marshals e and publishes it.
func (p *NATSPublisher) Publish(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.nc.Publish(p.Subject(e), data); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Close drains the connection if the publisher opened it.
func (p *NATSPublisher) Close() error {
	if !p.owned {
		return nil
	}
	return p.nc.Drain()
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// Listener adapts a Publisher to an orchestrator transition callback.
// Publish failures are logged and never interrupt the session.
func Listener(p Publisher, sessionID string, logger *zap.Logger) orchestrator.TransitionFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(t orchestrator.Transition) {
		e := FromTransition(sessionID, t)
		if err := p.Publish(context.Background(), e); err != nil {
			logger.Warn("failed to publish transition",
				zap.String("session_id", sessionID),
				zap.String("kind", e.Kind),
				zap.Error(err),
			)
		}
	}
}
