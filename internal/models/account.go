package models

import (
	"time"

	"github.com/google/uuid"
)

// Account is a user's bank account or payment source. Besides id and name it
// may carry extra identifying material used for hint matching: an IBAN and a
// free-form metadata map that can hold alias lists ("aliases", "hints") or
// other identifier-like string values.
type Account struct {
	ID        string                 `db:"id"`
	UserID    uuid.UUID              `db:"user_id"`
	Name      string                 `db:"name"`
	IBAN      *string                `db:"iban"`
	Metadata  map[string]interface{} `db:"metadata"`
	CreatedAt time.Time              `db:"created_at"`
	UpdatedAt time.Time              `db:"updated_at"`
}
