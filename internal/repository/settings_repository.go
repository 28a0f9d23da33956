package repository

import (
	"context"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var ErrSettingNotFound = errors.New("setting not found")

// SettingsRepository is an opaque per-user key-value store with get/set/remove
// semantics. Values are stored as raw strings; callers own the encoding.
type SettingsRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewSettingsRepository(db *pgxpool.Pool, logger *zap.Logger) *SettingsRepository {
	return &SettingsRepository{
		db:     db,
		logger: logger,
	}
}

func (r *SettingsRepository) Get(ctx context.Context, userID uuid.UUID, key string) (string, error) {
	query := squirrel.Select("value").
		From("settings").
		Where(squirrel.Eq{"user_id": userID, "key": key}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return "", err
	}

	var value string
	err = r.db.QueryRow(ctx, sql, args...).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrSettingNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (r *SettingsRepository) Set(ctx context.Context, userID uuid.UUID, key, value string) error {
	query := squirrel.Insert("settings").
		Columns("user_id", "key", "value", "updated_at").
		Values(userID, key, value, squirrel.Expr("NOW()")).
		Suffix(`ON CONFLICT (user_id, key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = NOW()`).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *SettingsRepository) Remove(ctx context.Context, userID uuid.UUID, key string) error {
	query := squirrel.Delete("settings").
		Where(squirrel.Eq{"user_id": userID, "key": key}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}
