package models

// SourceType values the extractor is allowed to return.
const (
	SourceTypeFatura   = "fatura"
	SourceTypeRecibo   = "recibo"
	SourceTypeExtracto = "extracto"
)

// DocumentExtraction is the structured result of one remote extraction call.
// All scalar fields are optional: nil means the model could not determine the
// value from the document.
type DocumentExtraction struct {
	SourceType           *string                     `json:"sourceType"`
	Amount               *float64                    `json:"amount"`
	Currency             *string                     `json:"currency"`
	DueDate              *string                     `json:"dueDate"`
	AccountHint          *string                     `json:"accountHint"`
	CompanyName          *string                     `json:"companyName"`
	ExpenseType          *string                     `json:"expenseType"`
	Notes                *string                     `json:"notes"`
	SupplierTaxID        *string                     `json:"supplierTaxId"`
	StatementAccountIBAN *string                     `json:"statementAccountIban"`
	RecurringExpenses    []RecurringExpenseCandidate `json:"recurringExpenses"`
	StatementSettlements []StatementSettlement       `json:"statementSettlements"`
}

// RecurringExpenseCandidate is a fixed recurring charge detected on a bank
// statement. It is not an Expense until separately materialized.
type RecurringExpenseCandidate struct {
	Description      string   `json:"description"`
	AverageAmount    *float64 `json:"averageAmount"`
	Currency         *string  `json:"currency"`
	DayOfMonth       *int     `json:"dayOfMonth"`
	AccountHint      *string  `json:"accountHint"`
	MonthsObserved   []string `json:"monthsObserved"`
	Notes            *string  `json:"notes"`
	DeduplicationKey *string  `json:"deduplicationKey,omitempty"`
}

// StatementSettlement is one already-paid line item found on a bank statement,
// used by downstream reconciliation against existing expenses.
type StatementSettlement struct {
	Description    *string  `json:"description"`
	Amount         *float64 `json:"amount"`
	Currency       *string  `json:"currency"`
	SettledOn      *string  `json:"settledOn"`
	DocumentIDHint *string  `json:"documentIdHint"`
	ExpenseIDHint  *string  `json:"expenseIdHint"`
	SupplierName   *string  `json:"supplierName"`
	SupplierTaxID  *string  `json:"supplierTaxId"`
}
