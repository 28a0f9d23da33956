package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"contaflow/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type AccountRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewAccountRepository(db *pgxpool.Pool, logger *zap.Logger) *AccountRepository {
	return &AccountRepository{
		db:     db,
		logger: logger,
	}
}

func (r *AccountRepository) Create(ctx context.Context, acc *models.Account) error {
	metadata, err := json.Marshal(acc.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal account metadata: %w", err)
	}

	query := squirrel.Insert("accounts").
		Columns("id", "user_id", "name", "iban", "metadata", "created_at", "updated_at").
		Values(acc.ID, acc.UserID, acc.Name, acc.IBAN, metadata, acc.CreatedAt, acc.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// ListByUserID returns the user's accounts in creation order. The resolver
// depends on that order: first match wins.
func (r *AccountRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]models.Account, error) {
	query := squirrel.Select("id", "user_id", "name", "iban", "metadata", "created_at", "updated_at").
		From("accounts").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at ASC").
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

	var accounts []models.Account
	for rows.Next() {
		var acc models.Account
		var metadata []byte
		if err := rows.Scan(
			&acc.ID, &acc.UserID, &acc.Name, &acc.IBAN, &metadata, &acc.CreatedAt, &acc.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &acc.Metadata); err != nil {
				r.logger.Warn("Failed to unmarshal account metadata",
					zap.String("account_id", acc.ID),
					zap.Error(err),
				)
			}
		}
		accounts = append(accounts, acc)
	}

	return accounts, rows.Err()
}

func (r *AccountRepository) Delete(ctx context.Context, userID uuid.UUID, id string) error {
	query := squirrel.Delete("accounts").
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}
