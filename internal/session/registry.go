// Package session keeps the live orchestrators of a multi-user server and
// serializes access to each one.
package session

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/tacit/internal/orchestrator"
)

// ErrSessionNotFound is returned for unknown session IDs.
var ErrSessionNotFound = errors.New("session not found")

// Factory builds the orchestrator for a new session.
type Factory func(id string) *orchestrator.Orchestrator

// Session is one user's spiral.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	orch     *orchestrator.Orchestrator
	lastUsed time.Time
}

// Do runs fn with exclusive access to the session's orchestrator. A session
// handles one operation at a time; concurrent callers wait in turn or give
// up when ctx is done.
func (s *Session) Do(ctx context.Context, fn func(o *orchestrator.Orchestrator) error) error {
	locked := make(chan struct{})
	go func() {
		s.mu.Lock()
		close(locked)
	}()

	select {
	case <-locked:
	case <-ctx.Done():
		// Release the lock once the pending acquisition completes.
		go func() {
			<-locked
			s.mu.Unlock()
		}()
		return ctx.Err()
	}
	defer s.mu.Unlock()

	s.lastUsed = time.Now()
	return fn(s.orch)
}

// Registry maps session IDs to sessions.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	factory  Factory
	logger   *zap.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(factory Factory, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		sessions: make(map[string]*Session),
		factory:  factory,
		logger:   logger,
	}
}

// Create starts a new session at socialization.
func (r *Registry) Create() *Session {
	id := uuid.NewString()
	now := time.Now()
	s := &Session{
		ID:        id,
		CreatedAt: now,
		orch:      r.factory(id),
		lastUsed:  now,
	}

	r.mu.Lock()
	r.sessions[id] = s
	r.mu.Unlock()

	r.logger.Info("session created", zap.String("session_id", id))
	return s
}

// Get looks up a session.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Delete removes a session.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(r.sessions, id)
	r.logger.Info("session deleted", zap.String("session_id", id))
	return nil
}

// IDs lists session IDs in creation order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	list := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		list = append(list, s)
	}
	r.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	ids := make([]string, len(list))
	for i, s := range list {
		ids[i] = s.ID
	}
	return ids
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Expire removes sessions idle for longer than ttl and returns how many
// were removed. Busy sessions are skipped.
func (r *Registry) Expire(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		if !s.mu.TryLock() {
			continue
		}
		idle := s.lastUsed.Before(cutoff)
		s.mu.Unlock()
		if idle {
			delete(r.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		r.logger.Info("expired idle sessions", zap.Int("count", removed))
	}
	return removed
}

// Sweep calls Expire every interval until ctx is done.
func (r *Registry) Sweep(ctx context.Context, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Expire(ttl)
		}
	}
}
