package session

import (
	"context"
	"time"

	"github.com/Chative-core-poc-v1/bookstore/internal/agent/model"
	errx "github.com/Chative-core-poc-v1/bookstore/internal/core/error"
	logx "github.com/Chative-core-poc-v1/bookstore/pkg/logger"
)

const DefaultTimeout = 30 * time.Minute

// Manager owns session lifecycle on top of a SessionStore: lazy creation,
// idle expiry checked on every lookup, and persistence after each turn.
type Manager struct {
	store   model.SessionStore
	timeout time.Duration
	now     func() time.Time
}

type Option func(*Manager)

// WithClock replaces time.Now, mainly so tests can advance time.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(store model.SessionStore, timeout time.Duration, opts ...Option) *Manager {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	m := &Manager{store: store, timeout: timeout, now: time.Now}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *Manager) Now() time.Time { return m.now() }

// Get returns the live session for userID. A missing or expired session is
// replaced by a fresh one in INITIAL; created reports that case. Other idle
// sessions are evicted on the way.
func (m *Manager) Get(ctx context.Context, userID int64, displayName string) (s *model.Session, created bool, err error) {
	now := m.now()

	if n, err := m.store.EvictIdle(ctx, now.Add(-m.timeout)); err != nil {
		logx.Warn().Err(err).Msg("idle session eviction failed")
	} else if n > 0 {
		logx.Debug().Int("evicted", n).Msg("evicted idle sessions")
	}

	s, ok, err := m.store.Load(ctx, userID)
	if err != nil {
		return nil, false, errx.WrapStore(err)
	}
	if ok && !s.Expired(now, m.timeout) {
		if displayName != "" {
			s.DisplayName = displayName
		}
		return s, false, nil
	}
	if ok {
		logx.Info().Int64("user_id", userID).Time("last_activity", s.LastActivity).Msg("session expired")
	}

	return &model.Session{
		UserID:       userID,
		DisplayName:  displayName,
		State:        model.StateInitial,
		Turns:        []model.Turn{},
		LastActivity: now,
	}, true, nil
}

func (m *Manager) Save(ctx context.Context, s *model.Session) error {
	if err := m.store.Save(ctx, s); err != nil {
		return errx.WrapStore(err)
	}
	return nil
}

// Reset drops the user's session; the next Get starts over.
func (m *Manager) Reset(ctx context.Context, userID int64) error {
	if err := m.store.Delete(ctx, userID); err != nil {
		return errx.WrapStore(err)
	}
	return nil
}
