package repo

import (
	"context"
	"sync"
	"time"

	"github.com/Chative-core-poc-v1/bookstore/internal/agent/model"
)

// MemorySessionStore is a process-local session store. Callers always get
// and hand over copies.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*model.Session
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[int64]*model.Session)}
}

func (m *MemorySessionStore) Load(_ context.Context, userID int64) (*model.Session, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		return nil, false, nil
	}
	return s.Clone(), true, nil
}

func (m *MemorySessionStore) Save(_ context.Context, s *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.UserID] = s.Clone()
	return nil
}

func (m *MemorySessionStore) Delete(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
	return nil
}

func (m *MemorySessionStore) EvictIdle(_ context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if s.LastActivity.Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

// Len reports how many sessions are held.
func (m *MemorySessionStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

var _ model.SessionStore = (*MemorySessionStore)(nil)
