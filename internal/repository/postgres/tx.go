package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"ledger-service/internal/domain"
	"ledger-service/pkg/xerrors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type ledgerTx struct {
	tx pgx.Tx
}

// LockAccounts takes FOR UPDATE locks one row at a time in ascending order so
// two transfers over the same pair can never wait on each other in a cycle.
func (l *ledgerTx) LockAccounts(ctx context.Context, accountNumbers ...string) (map[string]*domain.Account, error) {
	ordered := sortedUnique(accountNumbers)
	locked := make(map[string]*domain.Account, len(ordered))

	query := `
		SELECT account_number, balance, form_id, is_active, created_at, updated_at
		FROM accounts
		WHERE account_number = $1 AND is_active = true
		FOR UPDATE
	`
	for _, number := range ordered {
		a, err := scanAccount(l.tx.QueryRow(ctx, query, number))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				continue
			}
			return nil, fmt.Errorf("failed to lock account %s: %w", number, err)
		}
		locked[number] = a
	}
	return locked, nil
}

func (l *ledgerTx) AdjustBalance(ctx context.Context, accountNumber string, delta decimal.Decimal) (decimal.Decimal, error) {
	query := `
		UPDATE accounts
		SET balance = balance + $2, updated_at = now()
		WHERE account_number = $1 AND is_active = true
		RETURNING balance
	`
	var balance decimal.Decimal
	if err := l.tx.QueryRow(ctx, query, accountNumber, delta).Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, domain.ErrAccountNotFound
		}
		if xerrors.IsNumericOutOfRange(err) {
			return decimal.Zero, domain.Wrap(domain.ErrInvalidAmount, err)
		}
		return decimal.Zero, fmt.Errorf("failed to adjust balance: %w", err)
	}
	return balance, nil
}

func (l *ledgerTx) MinBalanceFor(ctx context.Context, accountNumber string) (decimal.Decimal, error) {
	return minBalanceFor(ctx, l.tx, accountNumber)
}

func (l *ledgerTx) AppendTransaction(ctx context.Context, t *domain.Transaction) error {
	query := `
		INSERT INTO transactions (from_account_number, to_account_number, amount, transaction_date, transaction_type)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING transaction_id
	`
	err := l.tx.QueryRow(ctx, query,
		nullString(t.FromAccount),
		nullString(t.ToAccount),
		t.Amount,
		t.TransactionDate.UTC(),
		string(t.TransactionType),
	).Scan(&t.TransactionID)
	if err != nil {
		return fmt.Errorf("failed to append transaction: %w", err)
	}
	return nil
}

func (l *ledgerTx) InsertAccount(ctx context.Context, a *domain.Account) error {
	query := `
		INSERT INTO accounts (account_number, balance, form_id, is_active)
		VALUES ($1, $2, $3, true)
		RETURNING is_active, created_at, updated_at
	`
	if err := l.tx.QueryRow(ctx, query, a.AccountNumber, a.Balance, a.FormID).
		Scan(&a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

func (l *ledgerTx) LockForm(ctx context.Context, formID int64) (*domain.ApplicationForm, error) {
	query := `
		SELECT form_id, full_name, email, account_type_id, ifsc, status,
		       COALESCE(account_number, ''), date_of_registration
		FROM application_forms
		WHERE form_id = $1
		FOR UPDATE
	`
	f, err := scanForm(l.tx.QueryRow(ctx, query, formID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrFormNotFound
		}
		return nil, fmt.Errorf("failed to lock form: %w", err)
	}
	return f, nil
}

func (l *ledgerTx) MarkFormApproved(ctx context.Context, formID int64, accountNumber string) error {
	tag, err := l.tx.Exec(ctx,
		`UPDATE application_forms SET status = $2, account_number = $3 WHERE form_id = $1`,
		formID, string(domain.FormApproved), accountNumber,
	)
	if err != nil {
		return fmt.Errorf("failed to approve form: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrFormNotFound
	}
	return nil
}

func (l *ledgerTx) GetAccountType(ctx context.Context, typeID int64) (*domain.AccountType, error) {
	return getAccountType(ctx, l.tx, typeID)
}

func sortedUnique(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
