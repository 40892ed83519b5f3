package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a customer ledger account. Accounts are never deleted; IsActive
// false hides them from every ledger operation.
type Account struct {
	AccountNumber string          `json:"account_number"`
	Balance       decimal.Decimal `json:"balance"`
	FormID        *int64          `json:"form_id,omitempty"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// AccountCreate is the input of account creation.
type AccountCreate struct {
	InitialBalance decimal.Decimal
	FormID         *int64
}

// AccountType defines the minimum-balance rule of a product.
type AccountType struct {
	TypeID     int64           `json:"type_id"`
	TypeName   string          `json:"type_name"`
	MinBalance decimal.Decimal `json:"min_balance"`
	IsActive   bool            `json:"is_active"`
}

// Validate checks the administrable fields of an account type.
func (t *AccountType) Validate() error {
	if t.TypeName == "" || len(t.TypeName) > 50 {
		return Invalid("type name is required and must be at most 50 characters")
	}
	return ValidateBalance(t.MinBalance)
}
