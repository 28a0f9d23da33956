package dto

import "contaflow/internal/models"

type DocumentResponse struct {
	ID            string `json:"id"`
	OriginalName  string `json:"original_name"`
	FileSize      int64  `json:"file_size"`
	FileURL       string `json:"file_url"`
	UploadDate    string `json:"upload_date"`
	ExtractedText string `json:"extracted_text,omitempty"`

	SourceType  *string  `json:"source_type,omitempty"`
	Amount      *float64 `json:"amount,omitempty"`
	Currency    *string  `json:"currency,omitempty"`
	DueDate     *string  `json:"due_date,omitempty"`
	CompanyName *string  `json:"company_name,omitempty"`
	ExpenseType *string  `json:"expense_type,omitempty"`
}

// ProcessDocumentResponse bundles everything one processing run produced:
// the refreshed document, the raw structured extraction, and the derived
// records (nil when derivation declined).
type ProcessDocumentResponse struct {
	Document   DocumentResponse           `json:"document"`
	Extraction *models.DocumentExtraction `json:"extraction"`
	Expense    *ExpenseResponse           `json:"expense,omitempty"`
	Timeline   *TimelineEntryResponse     `json:"timeline_entry,omitempty"`
}
