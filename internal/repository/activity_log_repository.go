package repository

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ActivityEntry is one line in the bounded per-user activity log.
type ActivityEntry struct {
	ID        int64     `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	Level     string    `db:"level"`
	Message   string    `db:"message"`
	Detail    string    `db:"detail"`
	CreatedAt time.Time `db:"created_at"`
}

type ActivityLogRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewActivityLogRepository(db *pgxpool.Pool, logger *zap.Logger) *ActivityLogRepository {
	return &ActivityLogRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ActivityLogRepository) Append(ctx context.Context, entry *ActivityEntry) error {
	query := squirrel.Insert("activity_log").
		Columns("user_id", "level", "message", "detail", "created_at").
		Values(entry.UserID, entry.Level, entry.Message, entry.Detail, entry.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// Evict drops the oldest entries so that at most maxEntries remain for the user.
func (r *ActivityLogRepository) Evict(ctx context.Context, userID uuid.UUID, maxEntries int) error {
	sql := `DELETE FROM activity_log
		WHERE user_id = $1 AND id NOT IN (
			SELECT id FROM activity_log
			WHERE user_id = $1
			ORDER BY id DESC
			LIMIT $2
		)`
	_, err := r.db.Exec(ctx, sql, userID, maxEntries)
	return err
}

func (r *ActivityLogRepository) Recent(ctx context.Context, userID uuid.UUID, limit int) ([]*ActivityEntry, error) {
	query := squirrel.Select("id", "user_id", "level", "message", "detail", "created_at").
		From("activity_log").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("id DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*ActivityEntry
	for rows.Next() {
		var entry ActivityEntry
		if err := rows.Scan(
			&entry.ID, &entry.UserID, &entry.Level, &entry.Message, &entry.Detail, &entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}
