package service

import (
	"time"

	"contaflow/internal/models"
)

// DeriveTimelineEntry projects an expense onto the payment timeline. An
// expense without a due date produces nothing: the previously existing entry
// is returned untouched (or nil). The entry id is derived from the expense id
// on creation, so re-deriving never duplicates entries.
func DeriveTimelineEntry(expense *models.Expense, existing *models.TimelineEntry) *models.TimelineEntry {
	if expense == nil || expense.DueDate == "" {
		return existing
	}

	now := time.Now()
	entry := &models.TimelineEntry{
		ID:              "tl-" + expense.ID,
		UserID:          expense.UserID,
		Date:            expense.DueDate,
		Type:            models.TimelineEntryTypeExpense,
		Description:     expense.Description,
		Amount:          expense.Amount,
		Currency:        expense.Currency,
		LinkedExpenseID: expense.ID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if existing != nil {
		entry.ID = existing.ID
		entry.CreatedAt = existing.CreatedAt
	}
	return entry
}
