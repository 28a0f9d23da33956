package dto

type CreateAccountRequest struct {
	Name     string                 `json:"name" validate:"required"`
	IBAN     *string                `json:"iban,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

type AccountResponse struct {
	ID       string                 `json:"id"`
	Name     string                 `json:"name"`
	IBAN     *string                `json:"iban,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}
