package dto

type ExpenseResponse struct {
	ID               string  `json:"id"`
	DocumentID       string  `json:"document_id"`
	AccountID        string  `json:"account_id"`
	Description      string  `json:"description"`
	Category         string  `json:"category"`
	Amount           float64 `json:"amount"`
	Currency         string  `json:"currency"`
	DueDate          string  `json:"due_date"`
	Recurrence       *string `json:"recurrence,omitempty"`
	Fixed            bool    `json:"fixed"`
	Status           string  `json:"status"`
	SupplierID       *string `json:"supplier_id,omitempty"`
	DeduplicationKey *string `json:"deduplication_key,omitempty"`
}

type TimelineEntryResponse struct {
	ID              string  `json:"id"`
	Date            string  `json:"date"`
	Type            string  `json:"type"`
	Description     string  `json:"description"`
	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency"`
	LinkedExpenseID string  `json:"linked_expense_id"`
}
