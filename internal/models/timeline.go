package models

import (
	"time"

	"github.com/google/uuid"
)

// TimelineEntryTypeExpense is the only entry type this layer produces.
const TimelineEntryTypeExpense = "despesa"

// TimelineEntry is the calendar projection of an expense with a due date.
type TimelineEntry struct {
	ID              string    `db:"id"`
	UserID          uuid.UUID `db:"user_id"`
	Date            string    `db:"date"`
	Type            string    `db:"type"`
	Description     string    `db:"description"`
	Amount          float64   `db:"amount"`
	Currency        string    `db:"currency"`
	LinkedExpenseID string    `db:"linked_expense_id"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}
