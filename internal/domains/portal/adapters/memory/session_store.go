package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Apurer/pawmatch/internal/domains/portal/domain"
	"github.com/Apurer/pawmatch/internal/domains/portal/ports"
)

// SessionStore is an in-memory SessionStore implementation.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.Snapshot
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: map[string]domain.Snapshot{}, now: time.Now}
}

func (s *SessionStore) Save(_ context.Context, snapshot *domain.Snapshot) error {
	if snapshot == nil || snapshot.ID == "" {
		return domain.ErrEmptySessionID
	}
	s.mu.Lock()
	s.sessions[snapshot.ID] = clone(*snapshot)
	s.mu.Unlock()
	return nil
}

func (s *SessionStore) Get(_ context.Context, id string) (*domain.Snapshot, error) {
	s.mu.RLock()
	snapshot, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok || snapshot.Expired(s.now()) {
		return nil, ports.ErrNotFound
	}
	out := clone(snapshot)
	return &out, nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

func (s *SessionStore) PurgeExpired(_ context.Context) (int64, error) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	var purged int64
	for id, snapshot := range s.sessions {
		if snapshot.Expired(now) {
			delete(s.sessions, id)
			purged++
		}
	}
	return purged, nil
}

func clone(s domain.Snapshot) domain.Snapshot {
	s.Cookies = append([]domain.Cookie{}, s.Cookies...)
	s.Selection = append([]string{}, s.Selection...)
	s.Criteria = s.Criteria.Clone()
	return s
}

var _ ports.SessionStore = (*SessionStore)(nil)
