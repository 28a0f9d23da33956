package repository

import (
	"context"
	"errors"

	"contaflow/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var timelineColumns = []string{
	"id", "user_id", "date", "type", "description", "amount", "currency",
	"linked_expense_id", "created_at", "updated_at",
}

type TimelineRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTimelineRepository(db *pgxpool.Pool, logger *zap.Logger) *TimelineRepository {
	return &TimelineRepository{
		db:     db,
		logger: logger,
	}
}

func (r *TimelineRepository) Upsert(ctx context.Context, entry *models.TimelineEntry) error {
	query := squirrel.Insert("timeline_entries").
		Columns(timelineColumns...).
		Values(
			entry.ID, entry.UserID, entry.Date, entry.Type, entry.Description,
			entry.Amount, entry.Currency, entry.LinkedExpenseID, entry.CreatedAt, entry.UpdatedAt,
		).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			date = EXCLUDED.date,
			description = EXCLUDED.description,
			amount = EXCLUDED.amount,
			currency = EXCLUDED.currency,
			linked_expense_id = EXCLUDED.linked_expense_id,
			updated_at = EXCLUDED.updated_at`).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// GetByExpenseID returns the entry linked to an expense, or nil.
func (r *TimelineRepository) GetByExpenseID(ctx context.Context, userID uuid.UUID, expenseID string) (*models.TimelineEntry, error) {
	query := squirrel.Select(timelineColumns...).
		From("timeline_entries").
		Where(squirrel.Eq{"user_id": userID, "linked_expense_id": expenseID}).
		Limit(1).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var entry models.TimelineEntry
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&entry.ID, &entry.UserID, &entry.Date, &entry.Type, &entry.Description,
		&entry.Amount, &entry.Currency, &entry.LinkedExpenseID, &entry.CreatedAt, &entry.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *TimelineRepository) ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.TimelineEntry, error) {
	query := squirrel.Select(timelineColumns...).
		From("timeline_entries").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("date ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
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

	var entries []*models.TimelineEntry
	for rows.Next() {
		var entry models.TimelineEntry
		if err := rows.Scan(
			&entry.ID, &entry.UserID, &entry.Date, &entry.Type, &entry.Description,
			&entry.Amount, &entry.Currency, &entry.LinkedExpenseID, &entry.CreatedAt, &entry.UpdatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}
