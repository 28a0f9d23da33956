package service

import (
	"testing"
	"time"

	"contaflow/internal/models"
)

func TestDeriveTimelineEntry(t *testing.T) {
	expense := &models.Expense{
		ID:          "exp-abc",
		Description: "EDP Comercial",
		Amount:      42,
		Currency:    "EUR",
		DueDate:     "2025-03-20",
	}

	t.Run("creates an entry keyed by the expense", func(t *testing.T) {
		entry := DeriveTimelineEntry(expense, nil)
		if entry == nil {
			t.Fatal("expected an entry")
		}
		if entry.ID != "tl-exp-abc" {
			t.Errorf("ID = %q, want tl-exp-abc", entry.ID)
		}
		if entry.Type != models.TimelineEntryTypeExpense {
			t.Errorf("Type = %q, want %q", entry.Type, models.TimelineEntryTypeExpense)
		}
		if entry.Date != "2025-03-20" {
			t.Errorf("Date = %q, want 2025-03-20", entry.Date)
		}
		if entry.LinkedExpenseID != "exp-abc" {
			t.Errorf("LinkedExpenseID = %q, want exp-abc", entry.LinkedExpenseID)
		}
	})

	t.Run("no due date leaves the existing entry untouched", func(t *testing.T) {
		undated := &models.Expense{ID: "exp-x", Amount: 10}
		existing := &models.TimelineEntry{ID: "tl-exp-x", Date: "2025-01-01"}

		if got := DeriveTimelineEntry(undated, existing); got != existing {
			t.Errorf("expected the existing entry back, got %+v", got)
		}
		if got := DeriveTimelineEntry(undated, nil); got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
		if got := DeriveTimelineEntry(nil, existing); got != existing {
			t.Errorf("nil expense must return existing, got %+v", got)
		}
	})

	t.Run("re-derivation keeps id and creation time", func(t *testing.T) {
		created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		existing := &models.TimelineEntry{ID: "tl-exp-abc", CreatedAt: created, Date: "2025-02-20"}

		entry := DeriveTimelineEntry(expense, existing)
		if entry == nil {
			t.Fatal("expected an entry")
		}
		if entry.ID != "tl-exp-abc" {
			t.Errorf("ID = %q, want preserved tl-exp-abc", entry.ID)
		}
		if !entry.CreatedAt.Equal(created) {
			t.Errorf("CreatedAt = %v, want preserved %v", entry.CreatedAt, created)
		}
		if entry.Date != "2025-03-20" {
			t.Errorf("Date = %q, want refreshed 2025-03-20", entry.Date)
		}
	})
}
