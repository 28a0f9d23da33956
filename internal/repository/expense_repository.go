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

var expenseColumns = []string{
	"id", "user_id", "document_id", "account_id", "description", "category",
	"amount", "currency", "due_date", "recurrence", "fixed", "status",
	"supplier_id", "deduplication_key", "created_at", "updated_at",
}

type ExpenseRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewExpenseRepository(db *pgxpool.Pool, logger *zap.Logger) *ExpenseRepository {
	return &ExpenseRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert writes an expense, replacing the stored record when the
// deterministic id already exists.
func (r *ExpenseRepository) Upsert(ctx context.Context, exp *models.Expense) error {
	query := squirrel.Insert("expenses").
		Columns(expenseColumns...).
		Values(
			exp.ID, exp.UserID, exp.DocumentID, exp.AccountID, exp.Description, exp.Category,
			exp.Amount, exp.Currency, exp.DueDate, exp.Recurrence, exp.Fixed, exp.Status,
			exp.SupplierID, exp.DeduplicationKey, exp.CreatedAt, exp.UpdatedAt,
		).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			document_id = EXCLUDED.document_id,
			account_id = EXCLUDED.account_id,
			description = EXCLUDED.description,
			category = EXCLUDED.category,
			amount = EXCLUDED.amount,
			currency = EXCLUDED.currency,
			due_date = EXCLUDED.due_date,
			recurrence = EXCLUDED.recurrence,
			fixed = EXCLUDED.fixed,
			status = EXCLUDED.status,
			supplier_id = EXCLUDED.supplier_id,
			deduplication_key = EXCLUDED.deduplication_key,
			updated_at = EXCLUDED.updated_at`).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *ExpenseRepository) getOne(ctx context.Context, where squirrel.Eq) (*models.Expense, error) {
	query := squirrel.Select(expenseColumns...).
		From("expenses").
		Where(where).
		Limit(1).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var exp models.Expense
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&exp.ID, &exp.UserID, &exp.DocumentID, &exp.AccountID, &exp.Description, &exp.Category,
		&exp.Amount, &exp.Currency, &exp.DueDate, &exp.Recurrence, &exp.Fixed, &exp.Status,
		&exp.SupplierID, &exp.DeduplicationKey, &exp.CreatedAt, &exp.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &exp, nil
}

// FindExisting looks for an expense the document should merge into: first by
// deduplication key, then by the document it came from. Nil means a fresh
// derivation.
func (r *ExpenseRepository) FindExisting(ctx context.Context, userID uuid.UUID, dedupKey *string, documentID string) (*models.Expense, error) {
	if dedupKey != nil {
		exp, err := r.getOne(ctx, squirrel.Eq{"user_id": userID, "deduplication_key": *dedupKey})
		if err != nil || exp != nil {
			return exp, err
		}
	}
	return r.getOne(ctx, squirrel.Eq{"user_id": userID, "document_id": documentID})
}

func (r *ExpenseRepository) ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Expense, error) {
	query := squirrel.Select(expenseColumns...).
		From("expenses").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("due_date ASC").
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

	var expenses []*models.Expense
	for rows.Next() {
		var exp models.Expense
		if err := rows.Scan(
			&exp.ID, &exp.UserID, &exp.DocumentID, &exp.AccountID, &exp.Description, &exp.Category,
			&exp.Amount, &exp.Currency, &exp.DueDate, &exp.Recurrence, &exp.Fixed, &exp.Status,
			&exp.SupplierID, &exp.DeduplicationKey, &exp.CreatedAt, &exp.UpdatedAt,
		); err != nil {
			return nil, err
		}
		expenses = append(expenses, &exp)
	}

	return expenses, rows.Err()
}
