package model

import (
	"context"
	"time"
)

// State is the dialogue position of a session.
type State string

const (
	StateInitial                 State = "INITIAL"
	StateAwaitingSearchTerm      State = "AWAITING_SEARCH_TERM"
	StateAwaitingPurchaseDetails State = "AWAITING_PURCHASE_DETAILS"
	StateAwaitingCreditAmount    State = "AWAITING_CREDIT_AMOUNT"
)

// States lists every dialogue state; dispatch tables must cover all of them.
var States = []State{
	StateInitial,
	StateAwaitingSearchTerm,
	StateAwaitingPurchaseDetails,
	StateAwaitingCreditAmount,
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry of a session's append-only log.
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is the per-user conversation record.
type Session struct {
	UserID       int64     `json:"user_id"`
	DisplayName  string    `json:"display_name"`
	State        State     `json:"state"`
	Turns        []Turn    `json:"turns"`
	LastActivity time.Time `json:"last_activity"`
}

// Append adds a timestamped turn and refreshes LastActivity.
func (s *Session) Append(role Role, content string, at time.Time) {
	s.Turns = append(s.Turns, Turn{Role: role, Content: content, Timestamp: at})
	s.LastActivity = at
}

// Clone returns a deep copy so stores never share the turn slice with callers.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Turns = make([]Turn, len(s.Turns))
	copy(c.Turns, s.Turns)
	return &c
}

// Expired reports whether the session has been idle longer than timeout at now.
func (s *Session) Expired(now time.Time, timeout time.Duration) bool {
	return timeout > 0 && now.Sub(s.LastActivity) > timeout
}

type SessionStore interface {
	// Load returns the stored session for userID, if any.
	Load(ctx context.Context, userID int64) (*Session, bool, error)

	// Save creates or replaces the session.
	Save(ctx context.Context, s *Session) error

	// Delete removes the session; deleting a missing session is not an error.
	Delete(ctx context.Context, userID int64) error

	// EvictIdle removes every session whose last activity is before cutoff
	// and returns how many were removed.
	EvictIdle(ctx context.Context, cutoff time.Time) (int, error)
}
