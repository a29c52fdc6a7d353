package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/sma-schedule-sim/pkg/errors"
)

type memorySessionRepo struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemorySessionRepo() *memorySessionRepo {
	return &memorySessionRepo{data: map[string][]byte{}}
}

func (r *memorySessionRepo) Get(_ context.Context, id string, dest interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	raw, ok := r.data[id]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (r *memorySessionRepo) Set(_ context.Context, id string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.data[id] = raw
	r.mu.Unlock()
	return nil
}

func (r *memorySessionRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	delete(r.data, id)
	r.mu.Unlock()
	return nil
}

func (r *memorySessionRepo) has(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.data[id]
	return ok
}

func TestSessionStoreGetUnknown(t *testing.T) {
	store := NewSessionStore(time.Hour, nil, nil, nil, false)

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestSessionStoreExpiresIdleSessions(t *testing.T) {
	store := NewSessionStore(time.Minute, nil, NewMetricsService(), nil, false)
	now := time.Now()
	store.now = func() time.Time { return now }
	store.Add(context.Background(), NewSession("s1", testSimulationConfig(), false))

	_, err := store.Get(context.Background(), "s1")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = store.Get(context.Background(), "s1")
	assert.ErrorIs(t, err, appErrors.ErrSessionExpired)
	assert.Zero(t, store.Len())
}

func TestSessionStoreSweepKeepsRunningSessions(t *testing.T) {
	store := NewSessionStore(time.Minute, nil, nil, nil, false)
	now := time.Now()
	store.now = func() time.Time { return now }

	idle := NewSession("idle", testSimulationConfig(), false)
	busy := populatedSession(t)
	advanceTo(t, busy, StepReviewAndRun)
	_, err := busy.BeginRun()
	require.NoError(t, err)
	store.Add(context.Background(), idle)
	store.Add(context.Background(), busy)

	now = now.Add(time.Hour)
	assert.Equal(t, 1, store.Sweep(context.Background()))
	assert.Equal(t, 1, store.Len())
}

func TestSessionStoreRestoresFromRepository(t *testing.T) {
	repo := newMemorySessionRepo()
	first := NewSessionStore(time.Hour, repo, NewMetricsService(), nil, true)
	session := populatedSession(t)
	first.Add(context.Background(), session)
	require.NoError(t, session.Next())
	first.Save(context.Background(), session)

	second := NewSessionStore(time.Hour, repo, nil, nil, true)
	restored, err := second.Get(context.Background(), session.ID())
	require.NoError(t, err)

	assert.Equal(t, StepBasicConfig, restored.View().Step)
	assert.Equal(t, 2, restored.View().Counts.Teachers)

	assert.True(t, second.Delete(context.Background(), session.ID()))
	assert.False(t, repo.has(session.ID()))
}
