package service

import (
	"testing"
	"time"

	"contaflow/internal/models"

	"github.com/google/uuid"
)

func invoiceMeta() *models.DocumentMetadata {
	return &models.DocumentMetadata{
		ID:           "doc-1",
		UserID:       uuid.New(),
		OriginalName: "fatura-edp-marco.pdf",
		UploadDate:   time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC),
		SourceType:   strPtr("fatura"),
		CompanyName:  strPtr("EDP Comercial"),
		Amount:       f64Ptr(42),
		Currency:     strPtr("EUR"),
		DueDate:      strPtr("2025-03-20"),
		ExpenseType:  strPtr("Eletricidade"),
	}
}

func TestDeriveExpenseFresh(t *testing.T) {
	meta := invoiceMeta()
	accounts := []models.Account{{ID: "acc-main", Name: "Conta Ordenado"}}

	expense := DeriveExpense(meta, accounts, nil, nil)
	if expense == nil {
		t.Fatal("expected an expense")
	}

	if expense.AccountID != "acc-main" {
		t.Errorf("AccountID = %q, want acc-main", expense.AccountID)
	}
	if expense.Amount != 42 {
		t.Errorf("Amount = %v, want 42", expense.Amount)
	}
	if expense.Currency != "EUR" {
		t.Errorf("Currency = %q, want EUR", expense.Currency)
	}
	if expense.DueDate != "2025-03-20" {
		t.Errorf("DueDate = %q, want 2025-03-20", expense.DueDate)
	}
	if expense.Description != "EDP Comercial" {
		t.Errorf("Description = %q, want EDP Comercial", expense.Description)
	}
	if expense.Category != "Eletricidade" {
		t.Errorf("Category = %q, want Eletricidade", expense.Category)
	}
	if expense.Status != models.ExpenseStatusPlanned {
		t.Errorf("Status = %q, want %q", expense.Status, models.ExpenseStatusPlanned)
	}
	if !expense.Fixed {
		t.Error("new expenses default to fixed")
	}
	if expense.DeduplicationKey == nil {
		t.Fatal("expected a deduplication key")
	}
	if want := BuildExpenseID("exp", *expense.DeduplicationKey); expense.ID != want {
		t.Errorf("ID = %q, want %q", expense.ID, want)
	}
}

func TestDeriveExpenseRejections(t *testing.T) {
	accounts := []models.Account{{ID: "acc-main", Name: "Conta Ordenado"}}

	t.Run("fresh derivation without amount", func(t *testing.T) {
		meta := invoiceMeta()
		meta.Amount = nil
		if exp := DeriveExpense(meta, accounts, nil, nil); exp != nil {
			t.Errorf("expected nil, got %+v", exp)
		}
	})

	t.Run("fresh derivation without due date", func(t *testing.T) {
		meta := invoiceMeta()
		meta.DueDate = nil
		if exp := DeriveExpense(meta, accounts, nil, nil); exp != nil {
			t.Errorf("expected nil, got %+v", exp)
		}
	})

	t.Run("unresolvable account returns existing unchanged", func(t *testing.T) {
		meta := invoiceMeta()
		meta.AccountHint = strPtr("banco desconhecido")
		several := []models.Account{
			{ID: "acc-a", Name: "Conta A"},
			{ID: "acc-b", Name: "Conta B"},
		}

		if exp := DeriveExpense(meta, several, nil, nil); exp != nil {
			t.Errorf("expected nil without existing expense, got %+v", exp)
		}

		existing := &models.Expense{ID: "exp-old", Description: "antiga"}
		if exp := DeriveExpense(meta, several, existing, nil); exp != existing {
			t.Errorf("expected the existing expense back, got %+v", exp)
		}
	})
}

func TestDeriveExpenseUpdate(t *testing.T) {
	meta := invoiceMeta()
	meta.CompanyName = nil
	meta.ExpenseType = nil
	meta.Amount = f64Ptr(45.5)

	created := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	existing := &models.Expense{
		ID:               "exp-abc",
		UserID:           meta.UserID,
		DocumentID:       "doc-1",
		AccountID:        "acc-savings",
		Description:      "EDP Comercial",
		Category:         "Eletricidade",
		Amount:           42,
		Currency:         "EUR",
		DueDate:          "2025-02-20",
		Recurrence:       strPtr("monthly"),
		Fixed:            false,
		Status:           models.ExpenseStatusPaid,
		DeduplicationKey: strPtr("fatura|edp comercial|42.00|eur"),
		CreatedAt:        created,
	}

	expense := DeriveExpense(meta, []models.Account{{ID: "acc-main", Name: "Conta"}}, existing, nil)
	if expense == nil {
		t.Fatal("expected an expense")
	}

	// Sticky assignment: the extraction never re-links an expense.
	if expense.AccountID != "acc-savings" {
		t.Errorf("AccountID = %q, want acc-savings", expense.AccountID)
	}
	if expense.ID != "exp-abc" {
		t.Errorf("ID = %q, want exp-abc", expense.ID)
	}
	if expense.Amount != 45.5 {
		t.Errorf("Amount = %v, want override 45.5", expense.Amount)
	}
	if expense.Description != "EDP Comercial" {
		t.Errorf("Description = %q, want preserved EDP Comercial", expense.Description)
	}
	if expense.Category != "Eletricidade" {
		t.Errorf("Category = %q, want preserved Eletricidade", expense.Category)
	}
	if expense.Status != models.ExpenseStatusPaid {
		t.Errorf("Status = %q, want preserved %q", expense.Status, models.ExpenseStatusPaid)
	}
	if expense.Recurrence == nil || *expense.Recurrence != "monthly" {
		t.Error("Recurrence must survive re-derivation")
	}
	if expense.Fixed {
		t.Error("Fixed must survive re-derivation")
	}
	if !expense.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want preserved %v", expense.CreatedAt, created)
	}
	if expense.DeduplicationKey == nil || *expense.DeduplicationKey != *existing.DeduplicationKey {
		t.Error("existing deduplication key must win over a recomputed one")
	}
}

func TestDeriveExpenseUploadDateFallback(t *testing.T) {
	meta := invoiceMeta()
	meta.DueDate = nil

	existing := &models.Expense{
		ID:        "exp-abc",
		AccountID: "acc-main",
		Amount:    42,
		Status:    models.ExpenseStatusPlanned,
	}

	expense := DeriveExpense(meta, []models.Account{{ID: "acc-main", Name: "Conta"}}, existing, nil)
	if expense == nil {
		t.Fatal("expected an expense")
	}
	if expense.DueDate != "2025-03-02" {
		t.Errorf("DueDate = %q, want upload-date fallback 2025-03-02", expense.DueDate)
	}
}

func TestDeriveExpenseSupplierIDPrecedence(t *testing.T) {
	meta := invoiceMeta()
	meta.SupplierID = strPtr("sup-meta")
	accounts := []models.Account{{ID: "acc-main", Name: "Conta"}}

	t.Run("override wins", func(t *testing.T) {
		exp := DeriveExpense(meta, accounts, nil, strPtr("sup-override"))
		if exp == nil || exp.SupplierID == nil || *exp.SupplierID != "sup-override" {
			t.Fatalf("SupplierID = %v, want sup-override", exp)
		}
	})

	t.Run("metadata over existing", func(t *testing.T) {
		existing := &models.Expense{ID: "exp-1", AccountID: "acc-main", Amount: 1, SupplierID: strPtr("sup-old")}
		exp := DeriveExpense(meta, accounts, existing, nil)
		if exp == nil || exp.SupplierID == nil || *exp.SupplierID != "sup-meta" {
			t.Fatalf("SupplierID = %v, want sup-meta", exp)
		}
	})
}

func TestHumanizeFilename(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"fatura-edp-marco.pdf", "Fatura Edp Marco"},
		{"recibo_renda_2025.pdf", "Recibo Renda 2025"},
		{"EXTRACTO.PDF", "Extracto"},
		{".pdf", "Documento"},
		{"", "Documento"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := humanizeFilename(tt.input); got != tt.want {
				t.Errorf("humanizeFilename(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
