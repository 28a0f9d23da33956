package repository

import (
	"context"

	"contaflow/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var documentColumns = []string{
	"id", "user_id", "original_name", "file_size", "file_url", "upload_date",
	"extracted_text", "source_type", "amount", "currency", "due_date",
	"account_hint", "company_name", "expense_type", "notes", "supplier_id",
	"supplier_tax_id", "statement_account_iban", "created_at", "updated_at",
}

type DocumentRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewDocumentRepository(db *pgxpool.Pool, logger *zap.Logger) *DocumentRepository {
	return &DocumentRepository{
		db:     db,
		logger: logger,
	}
}

func (r *DocumentRepository) Create(ctx context.Context, doc *models.DocumentMetadata) error {
	query := squirrel.Insert("documents").
		Columns(documentColumns...).
		Values(
			doc.ID, doc.UserID, doc.OriginalName, doc.FileSize, doc.FileURL, doc.UploadDate,
			doc.ExtractedText, doc.SourceType, doc.Amount, doc.Currency, doc.DueDate,
			doc.AccountHint, doc.CompanyName, doc.ExpenseType, doc.Notes, doc.SupplierID,
			doc.SupplierTaxID, doc.StatementAccountIBAN, doc.CreatedAt, doc.UpdatedAt,
		).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*models.DocumentMetadata, error) {
	query := squirrel.Select(documentColumns...).
		From("documents").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var doc models.DocumentMetadata
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&doc.ID, &doc.UserID, &doc.OriginalName, &doc.FileSize, &doc.FileURL, &doc.UploadDate,
		&doc.ExtractedText, &doc.SourceType, &doc.Amount, &doc.Currency, &doc.DueDate,
		&doc.AccountHint, &doc.CompanyName, &doc.ExpenseType, &doc.Notes, &doc.SupplierID,
		&doc.SupplierTaxID, &doc.StatementAccountIBAN, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &doc, nil
}

func (r *DocumentRepository) UpdateExtractedText(ctx context.Context, id string, text string) error {
	query := squirrel.Update("documents").
		Set("extracted_text", text).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// UpdateExtraction overwrites the extraction fields of a document.
// Re-processing a document replaces whatever was extracted before.
func (r *DocumentRepository) UpdateExtraction(ctx context.Context, id string, extraction *models.DocumentExtraction, supplierID *string) error {
	query := squirrel.Update("documents").
		Set("source_type", extraction.SourceType).
		Set("amount", extraction.Amount).
		Set("currency", extraction.Currency).
		Set("due_date", extraction.DueDate).
		Set("account_hint", extraction.AccountHint).
		Set("company_name", extraction.CompanyName).
		Set("expense_type", extraction.ExpenseType).
		Set("notes", extraction.Notes).
		Set("supplier_id", supplierID).
		Set("supplier_tax_id", extraction.SupplierTaxID).
		Set("statement_account_iban", extraction.StatementAccountIBAN).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *DocumentRepository) ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.DocumentMetadata, error) {
	query := squirrel.Select(documentColumns...).
		From("documents").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("upload_date DESC").
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

	var documents []*models.DocumentMetadata
	for rows.Next() {
		var doc models.DocumentMetadata
		if err := rows.Scan(
			&doc.ID, &doc.UserID, &doc.OriginalName, &doc.FileSize, &doc.FileURL, &doc.UploadDate,
			&doc.ExtractedText, &doc.SourceType, &doc.Amount, &doc.Currency, &doc.DueDate,
			&doc.AccountHint, &doc.CompanyName, &doc.ExpenseType, &doc.Notes, &doc.SupplierID,
			&doc.SupplierTaxID, &doc.StatementAccountIBAN, &doc.CreatedAt, &doc.UpdatedAt,
		); err != nil {
			return nil, err
		}
		documents = append(documents, &doc)
	}

	return documents, rows.Err()
}
