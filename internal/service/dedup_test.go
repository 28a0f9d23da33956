package service

import (
	"math"
	"strings"
	"testing"
	"time"

	"contaflow/internal/models"
)

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }
func intPtr(i int) *int         { return &i }

func TestBuildDedupKey(t *testing.T) {
	t.Run("drops absent segments instead of keeping placeholders", func(t *testing.T) {
		key := BuildDedupKey(strPtr("fatura"), nil, strPtr("12.50"), nil)
		if key == nil {
			t.Fatal("expected a key")
		}
		if *key != "fatura|12.50" {
			t.Errorf("key = %q, want %q", *key, "fatura|12.50")
		}
	})

	t.Run("all segments absent yields nil", func(t *testing.T) {
		if key := BuildDedupKey(nil, nil, nil); key != nil {
			t.Errorf("expected nil key, got %q", *key)
		}
	})

	t.Run("single segment has no delimiter", func(t *testing.T) {
		key := BuildDedupKey(strPtr("edp"))
		if key == nil || *key != "edp" {
			t.Fatalf("key = %v, want %q", key, "edp")
		}
	})
}

func TestNumberSegment(t *testing.T) {
	tests := []struct {
		name  string
		input *float64
		want  *string
	}{
		{"two decimals", f64Ptr(12.5), strPtr("12.50")},
		{"already two decimals", f64Ptr(12.50), strPtr("12.50")},
		{"integer", f64Ptr(42), strPtr("42.00")},
		{"rounds", f64Ptr(9.999), strPtr("10.00")},
		{"nil absent", nil, nil},
		{"NaN absent", f64Ptr(math.NaN()), nil},
		{"Inf absent", f64Ptr(math.Inf(1)), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := numberSegment(tt.input)
			switch {
			case got == nil && tt.want == nil:
			case got == nil || tt.want == nil:
				t.Errorf("numberSegment = %v, want %v", got, tt.want)
			case *got != *tt.want:
				t.Errorf("numberSegment = %q, want %q", *got, *tt.want)
			}
		})
	}
}

func TestDocumentDedupKeyFormattingEquivalence(t *testing.T) {
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	a := &models.DocumentMetadata{
		OriginalName: "fatura-edp.pdf",
		UploadDate:   base,
		SourceType:   strPtr("fatura"),
		CompanyName:  strPtr("EDP  Comercial"),
		Amount:       f64Ptr(12.5),
		Currency:     strPtr("EUR"),
		DueDate:      strPtr("2025-03-20"),
	}
	b := &models.DocumentMetadata{
		OriginalName: "outro-nome.pdf",
		UploadDate:   base.AddDate(0, 0, 5),
		SourceType:   strPtr("fatura"),
		CompanyName:  strPtr("edp comercial"),
		Amount:       f64Ptr(12.50),
		Currency:     strPtr("eur"),
		DueDate:      strPtr("2025-03-20"),
	}

	keyA, keyB := DocumentDedupKey(a), DocumentDedupKey(b)
	if keyA == nil || keyB == nil {
		t.Fatal("expected keys for both documents")
	}
	if *keyA != *keyB {
		t.Errorf("formatting-equivalent documents built different keys: %q vs %q", *keyA, *keyB)
	}
}

func TestDocumentDedupKeyDefaults(t *testing.T) {
	meta := &models.DocumentMetadata{OriginalName: "Recibo Março.pdf"}

	key := DocumentDedupKey(meta)
	if key == nil {
		t.Fatal("expected a key")
	}
	// Source type defaults to fatura; the original name stands in for the
	// missing company name.
	if !strings.HasPrefix(*key, "fatura|recibo marco.pdf") {
		t.Errorf("key = %q, want fatura|recibo marco.pdf prefix", *key)
	}
}

func TestBuildExpenseID(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		a := BuildExpenseID("exp", "fatura|edp comercial|12.50|eur")
		b := BuildExpenseID("exp", "fatura|edp comercial|12.50|eur")
		if a != b {
			t.Errorf("same key built different ids: %q vs %q", a, b)
		}
		if !strings.HasPrefix(a, "exp-") {
			t.Errorf("id = %q, want exp- prefix", a)
		}
	})

	t.Run("distinct keys build distinct ids", func(t *testing.T) {
		a := BuildExpenseID("exp", "fatura|edp|12.50")
		b := BuildExpenseID("exp", "fatura|galp|12.50")
		if a == b {
			t.Errorf("different keys collided on id %q", a)
		}
	})
}

func TestRecurringDedupKey(t *testing.T) {
	cand := &models.RecurringExpenseCandidate{
		Description:   "Netflix",
		AverageAmount: f64Ptr(15.99),
		Currency:      strPtr("EUR"),
		DayOfMonth:    intPtr(12),
	}

	t.Run("statement IBAN wins over candidate hint", func(t *testing.T) {
		withIBAN := RecurringDedupKey(strPtr("extracto"), strPtr("PT50000201231234567890154"), cand)
		if withIBAN == nil {
			t.Fatal("expected a key")
		}
		if !strings.Contains(*withIBAN, "pt50000201231234567890154") {
			t.Errorf("key %q misses statement IBAN segment", *withIBAN)
		}
	})

	t.Run("day of month joins as two-decimal number", func(t *testing.T) {
		key := RecurringDedupKey(nil, nil, cand)
		if key == nil {
			t.Fatal("expected a key")
		}
		if !strings.HasSuffix(*key, "|12.00") {
			t.Errorf("key = %q, want |12.00 suffix", *key)
		}
	})
}
