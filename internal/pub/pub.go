package pub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ledger-service/internal/domain"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

const (
	TransactionEventsChannel = "ledger_transaction_events"
)

// Publisher ships committed postings to downstream consumers. It is only
// called after commit, so a failure never affects the ledger itself.
type Publisher interface {
	PublishPosting(ctx context.Context, p *domain.Posting) error
	Close() error
}

type TransactionEvent struct {
	EventID         string                     `json:"event_id"`
	EventType       string                     `json:"event_type"` // deposit.completed, withdrawal.completed, transfer.completed
	TransactionID   int64                      `json:"transaction_id"`
	TransactionType string                     `json:"transaction_type"`
	Amount          decimal.Decimal            `json:"amount"`
	FromAccount     string                     `json:"from_account,omitempty"`
	ToAccount       string                     `json:"to_account,omitempty"`
	Balances        map[string]decimal.Decimal `json:"balances,omitempty"`
	TransactionDate time.Time                  `json:"transaction_date"`
	Timestamp       time.Time                  `json:"timestamp"`
}

// NewTransactionEvent builds the wire event for a committed posting.
func NewTransactionEvent(p *domain.Posting) *TransactionEvent {
	t := p.Transaction
	return &TransactionEvent{
		EventID:         ulid.Make().String(),
		EventType:       eventType(t.TransactionType),
		TransactionID:   t.TransactionID,
		TransactionType: string(t.TransactionType),
		Amount:          t.Amount,
		FromAccount:     t.FromAccount,
		ToAccount:       t.ToAccount,
		Balances:        p.Balances,
		TransactionDate: t.TransactionDate,
		Timestamp:       time.Now().UTC(),
	}
}

// Key partitions events by the account they debit, or credit for deposits, so
// one account's events stay ordered.
func (e *TransactionEvent) Key() string {
	if e.FromAccount != "" {
		return e.FromAccount
	}
	return e.ToAccount
}

func (e *TransactionEvent) Marshal() ([]byte, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return payload, nil
}

func eventType(t domain.TransactionType) string {
	switch t {
	case domain.TxDeposit:
		return "deposit.completed"
	case domain.TxWithdraw:
		return "withdrawal.completed"
	case domain.TxTransfer:
		return "transfer.completed"
	}
	return "transaction.completed"
}

// Noop drops every event. Used when no broker is configured.
type Noop struct{}

func (Noop) PublishPosting(context.Context, *domain.Posting) error { return nil }
func (Noop) Close() error                                          { return nil }
