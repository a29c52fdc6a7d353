package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/sma-schedule-sim/pkg/errors"
)

// SessionRepository persists session state between process restarts.
type SessionRepository interface {
	Get(ctx context.Context, id string, dest interface{}) error
	Set(ctx context.Context, id string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

type storedSession struct {
	session    *Session
	lastAccess time.Time
}

// SessionStore keeps live sessions in memory, expiring idle ones after ttl.
// When a repository is configured every save is written through, and misses
// are restored from it.
type SessionStore struct {
	ttl                time.Duration
	repo               SessionRepository
	metrics            *MetricsService
	logger             *zap.Logger
	institutionEnabled bool
	now                func() time.Time

	mu    sync.RWMutex
	items map[string]*storedSession
}

// NewSessionStore constructs a store. repo may be nil to keep sessions in memory only.
func NewSessionStore(ttl time.Duration, repo SessionRepository, metrics *MetricsService, logger *zap.Logger, institutionEnabled bool) *SessionStore {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionStore{
		ttl:                ttl,
		repo:               repo,
		metrics:            metrics,
		logger:             logger,
		institutionEnabled: institutionEnabled,
		now:                time.Now,
		items:              make(map[string]*storedSession),
	}
}

// Add registers a new session and persists it.
func (s *SessionStore) Add(ctx context.Context, session *Session) {
	s.mu.Lock()
	s.items[session.ID()] = &storedSession{session: session, lastAccess: s.now()}
	count := len(s.items)
	s.mu.Unlock()
	s.metrics.SetActiveSessions(count)
	s.Save(ctx, session)
}

// Get returns a live session, restoring it from the repository when it is not in memory.
func (s *SessionStore) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.Lock()
	item, ok := s.items[id]
	if ok {
		if s.now().Sub(item.lastAccess) > s.ttl && !item.session.Running() {
			delete(s.items, id)
			count := len(s.items)
			s.mu.Unlock()
			s.metrics.SetActiveSessions(count)
			s.forget(ctx, id)
			return nil, appErrors.Newf(appErrors.ErrSessionExpired, "simulation session %s expired", id)
		}
		item.lastAccess = s.now()
		s.mu.Unlock()
		return item.session, nil
	}
	s.mu.Unlock()

	session, err := s.restore(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if existing, ok := s.items[id]; ok {
		// Another request restored it first.
		existing.lastAccess = s.now()
		s.mu.Unlock()
		return existing.session, nil
	}
	s.items[id] = &storedSession{session: session, lastAccess: s.now()}
	count := len(s.items)
	s.mu.Unlock()
	s.metrics.SetActiveSessions(count)
	return session, nil
}

func (s *SessionStore) restore(ctx context.Context, id string) (*Session, error) {
	notFound := appErrors.Newf(appErrors.ErrNotFound, "simulation session %s not found", id)
	if s.repo == nil {
		return nil, notFound
	}

	start := time.Now()
	var state SessionState
	err := s.repo.Get(ctx, id, &state)
	duration := time.Since(start)
	if err != nil {
		s.metrics.RecordCacheOperation(false, duration)
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return nil, notFound
		}
		s.logger.Warn("session restore failed", zap.String("session_id", id), zap.Error(err))
		return nil, notFound
	}
	s.metrics.RecordCacheOperation(true, duration)

	session, err := RestoreSession(state, s.institutionEnabled)
	if err != nil {
		s.logger.Warn("session state unreadable", zap.String("session_id", id), zap.Error(err))
		return nil, notFound
	}
	return session, nil
}

// Save writes the session through to the repository. Failures are logged, not returned:
// the in-memory copy stays authoritative.
func (s *SessionStore) Save(ctx context.Context, session *Session) {
	if s.repo == nil || session == nil {
		return
	}
	state, err := session.State()
	if err != nil {
		s.logger.Warn("session state encode failed", zap.String("session_id", session.ID()), zap.Error(err))
		return
	}
	start := time.Now()
	err = s.repo.Set(ctx, session.ID(), state, s.ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("session persist failed", zap.String("session_id", session.ID()), zap.Error(err))
	}
}

// Delete drops a session from memory and from the repository.
func (s *SessionStore) Delete(ctx context.Context, id string) bool {
	s.mu.Lock()
	_, ok := s.items[id]
	delete(s.items, id)
	count := len(s.items)
	s.mu.Unlock()
	s.metrics.SetActiveSessions(count)
	s.forget(ctx, id)
	return ok
}

// Sweep removes idle sessions and returns how many were dropped. Sessions with a run in
// flight are kept.
func (s *SessionStore) Sweep(ctx context.Context) int {
	s.mu.Lock()
	var expired []string
	for id, item := range s.items {
		if s.now().Sub(item.lastAccess) > s.ttl && !item.session.Running() {
			expired = append(expired, id)
			delete(s.items, id)
		}
	}
	count := len(s.items)
	s.mu.Unlock()

	s.metrics.SetActiveSessions(count)
	for _, id := range expired {
		s.forget(ctx, id)
	}
	if len(expired) > 0 {
		s.logger.Info("expired simulation sessions", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// Len returns the number of sessions held in memory.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *SessionStore) forget(ctx context.Context, id string) {
	if s.repo == nil {
		return
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Warn("session delete failed", zap.String("session_id", id), zap.Error(err))
	}
}
