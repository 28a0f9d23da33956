package models

import (
	"time"

	"github.com/google/uuid"
)

type ExpenseStatus string

const (
	ExpenseStatusPlanned ExpenseStatus = "planeado"
	ExpenseStatusPaid    ExpenseStatus = "pago"
)

// DefaultCategory is the bucket used when the extractor gives no expense type.
const DefaultCategory = "Outros"

// Expense is a payable derived from an extracted document. Its ID is
// deterministic when a deduplication key exists, so re-deriving the same
// logical charge never creates a duplicate record.
type Expense struct {
	ID               string        `db:"id"`
	UserID           uuid.UUID     `db:"user_id"`
	DocumentID       string        `db:"document_id"`
	AccountID        string        `db:"account_id"`
	Description      string        `db:"description"`
	Category         string        `db:"category"`
	Amount           float64       `db:"amount"`
	Currency         string        `db:"currency"`
	DueDate          string        `db:"due_date"`
	Recurrence       *string       `db:"recurrence"`
	Fixed            bool          `db:"fixed"`
	Status           ExpenseStatus `db:"status"`
	SupplierID       *string       `db:"supplier_id"`
	DeduplicationKey *string       `db:"deduplication_key"`
	CreatedAt        time.Time     `db:"created_at"`
	UpdatedAt        time.Time     `db:"updated_at"`
}
