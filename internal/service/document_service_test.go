package service

import (
	"testing"
	"unicode/utf8"

	"contaflow/internal/models"
)

func TestApplyExtractionSanitizesText(t *testing.T) {
	doc := &models.DocumentMetadata{
		ID:           "doc-1",
		OriginalName: "fatura.pdf",
		CompanyName:  strPtr("antiga"),
	}
	extraction := &models.DocumentExtraction{
		SourceType:  strPtr("fatura"),
		Amount:      f64Ptr(12.5),
		AccountHint: strPtr("CONTA\xc3"),
		CompanyName: strPtr("EDP\x00 Comercial"),
		Notes:       strPtr("ok"),
	}

	applyExtraction(doc, extraction)

	if doc.AccountHint == nil || !utf8.ValidString(*doc.AccountHint) {
		t.Errorf("AccountHint = %v, want valid UTF-8", doc.AccountHint)
	}
	if doc.AccountHint != nil && *doc.AccountHint != "CONTA" {
		t.Errorf("AccountHint = %q, want CONTA", *doc.AccountHint)
	}
	if doc.CompanyName == nil || *doc.CompanyName != "EDP Comercial" {
		t.Errorf("CompanyName = %v, want NUL stripped", doc.CompanyName)
	}
	if doc.Amount == nil || *doc.Amount != 12.5 {
		t.Errorf("Amount = %v, want 12.5", doc.Amount)
	}

	// Extraction owns its fields: absent values overwrite.
	extraction.CompanyName = nil
	applyExtraction(doc, extraction)
	if doc.CompanyName != nil {
		t.Errorf("CompanyName = %q, want cleared on re-extraction", *doc.CompanyName)
	}
}
