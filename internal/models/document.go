package models

import (
	"time"

	"github.com/google/uuid"
)

// DocumentMetadata is the stored record for one uploaded document, including
// the fields filled in by remote extraction. Extraction fields are pointers:
// nil means the extractor did not return that field. Re-processing a document
// overwrites them.
type DocumentMetadata struct {
	ID           string    `db:"id"`
	UserID       uuid.UUID `db:"user_id"`
	OriginalName string    `db:"original_name"`
	FileSize     int64     `db:"file_size"`
	FileURL      string    `db:"file_url"`
	UploadDate   time.Time `db:"upload_date"`

	// Plain-text preview extracted locally from the PDF
	ExtractedText string `db:"extracted_text"`

	SourceType           *string  `db:"source_type"`
	Amount               *float64 `db:"amount"`
	Currency             *string  `db:"currency"`
	DueDate              *string  `db:"due_date"`
	AccountHint          *string  `db:"account_hint"`
	CompanyName          *string  `db:"company_name"`
	ExpenseType          *string  `db:"expense_type"`
	Notes                *string  `db:"notes"`
	SupplierID           *string  `db:"supplier_id"`
	SupplierTaxID        *string  `db:"supplier_tax_id"`
	StatementAccountIBAN *string  `db:"statement_account_iban"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
