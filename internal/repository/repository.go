// Package repository declares the storage contracts of the ledger. The postgres
// and sqlite subpackages implement them against their respective drivers.
package repository

import (
	"context"

	"ledger-service/internal/domain"

	"github.com/shopspring/decimal"
)

// SequenceAllocator hands out strictly increasing values per named sequence.
// A value is never handed out twice, even across concurrent callers.
type SequenceAllocator interface {
	Next(ctx context.Context, name string) (int64, error)
}

// SequenceFloor reports the highest value of a sequence the store already
// holds, whether it was drawn from the store's own counter or is in use by a
// row. Allocators outside the store seed from it.
type SequenceFloor interface {
	HighWater(ctx context.Context, name string) (int64, error)
}

// SequenceStore is the store's own allocator.
type SequenceStore interface {
	SequenceAllocator
	SequenceFloor
}

// Store is a complete ledger backend.
type Store interface {
	// WithinTx runs fn inside one isolated database transaction. fn's error
	// rolls the transaction back and is returned unchanged.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	Accounts() AccountRepository
	AccountTypes() AccountTypeRepository
	Branches() BranchRepository
	Forms() FormRepository
	Transactions() TransactionRepository
	Sequences() SequenceStore

	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// Tx is the write side of the ledger, valid only inside Store.WithinTx.
type Tx interface {
	// LockAccounts row-locks the given active accounts in ascending
	// account-number order. Accounts that do not exist or are inactive are
	// absent from the returned map.
	LockAccounts(ctx context.Context, accountNumbers ...string) (map[string]*domain.Account, error)
	// AdjustBalance adds delta to a locked account and returns the new balance.
	AdjustBalance(ctx context.Context, accountNumber string, delta decimal.Decimal) (decimal.Decimal, error)
	// MinBalanceFor resolves account -> form -> account type -> min balance.
	MinBalanceFor(ctx context.Context, accountNumber string) (decimal.Decimal, error)
	// AppendTransaction writes one immutable log row and fills in its id.
	AppendTransaction(ctx context.Context, t *domain.Transaction) error

	InsertAccount(ctx context.Context, a *domain.Account) error
	LockForm(ctx context.Context, formID int64) (*domain.ApplicationForm, error)
	MarkFormApproved(ctx context.Context, formID int64, accountNumber string) error
	GetAccountType(ctx context.Context, typeID int64) (*domain.AccountType, error)
}

type AccountRepository interface {
	// GetByNumber returns an active account or domain.ErrAccountNotFound.
	GetByNumber(ctx context.Context, accountNumber string) (*domain.Account, error)
	MinBalanceFor(ctx context.Context, accountNumber string) (decimal.Decimal, error)
	Deactivate(ctx context.Context, accountNumber string) error
}

type AccountTypeRepository interface {
	Create(ctx context.Context, t *domain.AccountType) error
	GetByID(ctx context.Context, typeID int64) (*domain.AccountType, error)
	ListActive(ctx context.Context) ([]*domain.AccountType, error)
	Update(ctx context.Context, t *domain.AccountType) error
	Deactivate(ctx context.Context, typeID int64) error
}

type BranchRepository interface {
	Create(ctx context.Context, b *domain.Branch) error
	GetByIFSC(ctx context.Context, ifsc string) (*domain.Branch, error)
	ListActive(ctx context.Context) ([]*domain.Branch, error)
	Update(ctx context.Context, ifsc string, in domain.BranchInput) (*domain.Branch, error)
	Deactivate(ctx context.Context, ifsc string) error
}

type FormRepository interface {
	Create(ctx context.Context, f *domain.ApplicationForm) error
	GetByID(ctx context.Context, formID int64) (*domain.ApplicationForm, error)
}

type TransactionRepository interface {
	// ListByAccount returns rows touching the account, newest first.
	ListByAccount(ctx context.Context, accountNumber string, page domain.Page) ([]*domain.Transaction, error)
	List(ctx context.Context, page domain.Page) ([]*domain.Transaction, error)
	CountByAccount(ctx context.Context, accountNumber string) (int64, error)
}
