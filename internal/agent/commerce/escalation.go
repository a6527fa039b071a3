package commerce

import (
	"context"

	logx "github.com/Chative-core-poc-v1/bookstore/pkg/logger"
)

// Escalator is notified when a rollback leaves records it could not restore.
// Whatever it does, the store stays inconsistent until someone reconciles it.
type Escalator interface {
	Escalate(ctx context.Context, userID int64, unreconciled []string, cause error)
}

// LogEscalator reports unreconciled records at error level.
type LogEscalator struct{}

func (LogEscalator) Escalate(_ context.Context, userID int64, unreconciled []string, cause error) {
	logx.Error().
		Err(cause).
		Int64("user_id", userID).
		Strs("unreconciled", unreconciled).
		Msg("compensation failed, manual reconciliation required")
}
