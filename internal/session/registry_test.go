package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/tacit/internal/llm"
	"github.com/fyrsmithlabs/tacit/internal/orchestrator"
)

func newTestRegistry() *Registry {
	return NewRegistry(func(id string) *orchestrator.Orchestrator {
		return orchestrator.New(llm.NewScripted())
	}, nil)
}

func TestRegistry_CreateGetDelete(t *testing.T) {
	r := newTestRegistry()

	s := r.Create()
	require.NotEmpty(t, s.ID)
	assert.Equal(t, 1, r.Len())

	got, err := r.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	require.NoError(t, r.Delete(s.ID))
	_, err = r.Get(s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, r.Delete(s.ID), ErrSessionNotFound)
}

func TestRegistry_IDsInCreationOrder(t *testing.T) {
	r := newTestRegistry()
	a := r.Create()
	time.Sleep(time.Millisecond)
	b := r.Create()

	assert.Equal(t, []string{a.ID, b.ID}, r.IDs())
}

func TestSession_DoSerializes(t *testing.T) {
	r := newTestRegistry()
	s := r.Create()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		active  int
		maxSeen int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Do(context.Background(), func(o *orchestrator.Orchestrator) error {
				mu.Lock()
				active++
				if active > maxSeen {
					maxSeen = active
				}
				mu.Unlock()

				time.Sleep(2 * time.Millisecond)

				mu.Lock()
				active--
				mu.Unlock()
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)
}

func TestSession_DoHonoursContext(t *testing.T) {
	r := newTestRegistry()
	s := r.Create()

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = s.Do(context.Background(), func(o *orchestrator.Orchestrator) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := s.Do(ctx, func(o *orchestrator.Orchestrator) error { return nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	require.NoError(t, s.Do(context.Background(), func(o *orchestrator.Orchestrator) error { return nil }))
}

func TestRegistry_Expire(t *testing.T) {
	r := newTestRegistry()
	old := r.Create()
	old.lastUsed = time.Now().Add(-time.Hour)
	fresh := r.Create()

	assert.Equal(t, 1, r.Expire(30*time.Minute))
	_, err := r.Get(old.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = r.Get(fresh.ID)
	assert.NoError(t, err)
}
