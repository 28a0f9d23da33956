package service

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"contaflow/internal/models"
)

// DeriveExpense synthesizes or updates an Expense from extracted document
// metadata, the user's accounts and an optional pre-existing expense.
//
// Merge policy is override-if-present, preserve-existing, else default:
// fields the new metadata leaves absent are never lost from an existing
// record. A fresh derivation (no existing expense) requires both an amount
// and a due date on the document; an expense is never created without a
// resolvable account. When the derivation cannot proceed the existing expense
// is returned unchanged, or nil when there is none.
func DeriveExpense(meta *models.DocumentMetadata, accounts []models.Account, existing *models.Expense, supplierIDOverride *string) *models.Expense {
	var existingAccountID *string
	if existing != nil && existing.AccountID != "" {
		existingAccountID = &existing.AccountID
	}
	accountID := ResolveAccountID(meta.AccountHint, accounts, existingAccountID)

	amount := meta.Amount
	if amount == nil && existing != nil {
		v := existing.Amount
		amount = &v
	}

	dueDate := ""
	switch {
	case meta.DueDate != nil && strings.TrimSpace(*meta.DueDate) != "":
		dueDate = *meta.DueDate
	case existing != nil && existing.DueDate != "":
		dueDate = existing.DueDate
	default:
		// Last resort: the upload date stands in for a missing due date.
		dueDate = meta.UploadDate.Format("2006-01-02")
	}

	// An existing key wins over a freshly computed one: id stability matters
	// more than drift from reprocessing.
	var key *string
	if existing != nil && existing.DeduplicationKey != nil {
		key = existing.DeduplicationKey
	} else {
		key = DocumentDedupKey(meta)
	}

	if existing == nil && (meta.Amount == nil || meta.DueDate == nil) {
		return nil
	}
	if accountID == nil {
		return existing
	}
	if amount == nil {
		return existing
	}

	var id string
	switch {
	case existing != nil && existing.ID != "":
		id = existing.ID
	case key != nil:
		id = BuildExpenseID("exp", *key)
	default:
		id = fmt.Sprintf("exp-%s", meta.ID)
	}

	now := time.Now()
	expense := &models.Expense{
		ID:               id,
		UserID:           meta.UserID,
		DocumentID:       meta.ID,
		AccountID:        *accountID,
		Amount:           *amount,
		DueDate:          dueDate,
		DeduplicationKey: key,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	switch {
	case meta.CompanyName != nil && strings.TrimSpace(*meta.CompanyName) != "":
		expense.Description = *meta.CompanyName
	case existing != nil && existing.Description != "":
		expense.Description = existing.Description
	default:
		expense.Description = humanizeFilename(meta.OriginalName)
	}

	switch {
	case meta.ExpenseType != nil && strings.TrimSpace(*meta.ExpenseType) != "":
		expense.Category = *meta.ExpenseType
	case existing != nil && existing.Category != "":
		expense.Category = existing.Category
	default:
		expense.Category = models.DefaultCategory
	}

	switch {
	case meta.Currency != nil && strings.TrimSpace(*meta.Currency) != "":
		expense.Currency = *meta.Currency
	case existing != nil && existing.Currency != "":
		expense.Currency = existing.Currency
	default:
		expense.Currency = "EUR"
	}

	switch {
	case supplierIDOverride != nil:
		expense.SupplierID = supplierIDOverride
	case meta.SupplierID != nil:
		expense.SupplierID = meta.SupplierID
	case existing != nil:
		expense.SupplierID = existing.SupplierID
	}

	if existing != nil {
		expense.Recurrence = existing.Recurrence
		expense.Fixed = existing.Fixed
		expense.Status = existing.Status
		expense.CreatedAt = existing.CreatedAt
	} else {
		expense.Fixed = true
		expense.Status = models.ExpenseStatusPlanned
	}

	return expense
}

// humanizeFilename turns an original upload name into a readable description:
// extension stripped, separators replaced with spaces, each word title-cased.
func humanizeFilename(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.NewReplacer("-", " ", "_", " ", ".", " ").Replace(base)
	words := strings.Fields(base)
	if len(words) == 0 {
		return "Documento"
	}
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
