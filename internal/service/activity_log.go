package service

import (
	"context"
	"time"

	"contaflow/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxActivityEntries bounds the per-user activity log; the oldest entries are
// dropped first once the limit is exceeded.
const MaxActivityEntries = 200

// ActivityLog records user-visible processing events. It is constructed once
// per process and passed explicitly to its callers; there is no ambient
// module-level state. Every write is best-effort: failures are logged and
// swallowed, never propagated into the operation being recorded.
type ActivityLog struct {
	repo   *repository.ActivityLogRepository
	logger *zap.Logger
	closed bool
}

func NewActivityLog(repo *repository.ActivityLogRepository, logger *zap.Logger) *ActivityLog {
	return &ActivityLog{
		repo:   repo,
		logger: logger,
	}
}

// Record appends one entry and evicts beyond the maximum.
func (l *ActivityLog) Record(ctx context.Context, userID uuid.UUID, level, message, detail string) {
	if l.closed {
		return
	}
	entry := &repository.ActivityEntry{
		UserID:    userID,
		Level:     level,
		Message:   message,
		Detail:    detail,
		CreatedAt: time.Now(),
	}
	if err := l.repo.Append(ctx, entry); err != nil {
		l.logger.Warn("Failed to record activity entry", zap.Error(err))
		return
	}
	if err := l.repo.Evict(ctx, userID, MaxActivityEntries); err != nil {
		l.logger.Warn("Failed to evict old activity entries", zap.Error(err))
	}
}

func (l *ActivityLog) Recent(ctx context.Context, userID uuid.UUID, limit int) ([]*repository.ActivityEntry, error) {
	if limit <= 0 || limit > MaxActivityEntries {
		limit = MaxActivityEntries
	}
	return l.repo.Recent(ctx, userID, limit)
}

// Close tears the log down; subsequent Record calls are no-ops.
func (l *ActivityLog) Close() {
	l.closed = true
}
