package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the business reason of a ledger posting.
type TransactionType string

const (
	TxDeposit  TransactionType = "Deposit"
	TxWithdraw TransactionType = "Withdraw"
	TxTransfer TransactionType = "Transfer"
)

// Transaction is one immutable row of the transaction log. FromAccount is empty
// for deposits and ToAccount is empty for withdrawals.
type Transaction struct {
	TransactionID   int64           `json:"transaction_id"`
	FromAccount     string          `json:"from_account,omitempty"`
	ToAccount       string          `json:"to_account,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionDate time.Time       `json:"transaction_date"`
	TransactionType TransactionType `json:"transaction_type"`
}

// Posting is what the ledger hands back for a committed operation: the log row
// plus the balances it produced.
type Posting struct {
	Transaction *Transaction               `json:"transaction"`
	Balances    map[string]decimal.Decimal `json:"balances"`
}

// Page bounds a listing query.
type Page struct {
	Limit  int
	Offset int
}

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 500
)

// Normalize clamps the page to sane bounds.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
