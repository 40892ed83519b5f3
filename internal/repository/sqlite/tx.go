package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"ledger-service/internal/domain"

	"github.com/shopspring/decimal"
)

type ledgerTx struct {
	tx *sql.Tx
}

// LockAccounts reads the accounts in ascending order. The IMMEDIATE
// transaction already holds the database write lock, so the rows cannot change
// underneath the caller.
func (l *ledgerTx) LockAccounts(ctx context.Context, accountNumbers ...string) (map[string]*domain.Account, error) {
	ordered := sortedUnique(accountNumbers)
	locked := make(map[string]*domain.Account, len(ordered))

	query := `
		SELECT account_number, balance, form_id, is_active, created_at, updated_at
		FROM accounts
		WHERE account_number = ? AND is_active = 1
	`
	for _, number := range ordered {
		a, err := scanAccount(l.tx.QueryRowContext(ctx, query, number))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			return nil, fmt.Errorf("failed to lock account %s: %w", number, err)
		}
		locked[number] = a
	}
	return locked, nil
}

// AdjustBalance computes the new balance in Go: TEXT money columns would be
// coerced to REAL by SQL arithmetic.
func (l *ledgerTx) AdjustBalance(ctx context.Context, accountNumber string, delta decimal.Decimal) (decimal.Decimal, error) {
	var current decimal.Decimal
	err := l.tx.QueryRowContext(ctx,
		`SELECT balance FROM accounts WHERE account_number = ? AND is_active = 1`, accountNumber,
	).Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, domain.ErrAccountNotFound
		}
		return decimal.Zero, fmt.Errorf("failed to read balance: %w", err)
	}

	next := current.Add(delta).Round(domain.MoneyScale)
	if err := domain.ValidateBalance(next); err != nil {
		return decimal.Zero, domain.Wrap(domain.ErrInvalidAmount, fmt.Errorf("balance of %s out of range: %s", accountNumber, next))
	}
	if _, err := l.tx.ExecContext(ctx,
		`UPDATE accounts SET balance = ?, updated_at = ? WHERE account_number = ?`,
		next.StringFixed(domain.MoneyScale), now(), accountNumber,
	); err != nil {
		return decimal.Zero, fmt.Errorf("failed to adjust balance: %w", err)
	}
	return next, nil
}

func (l *ledgerTx) MinBalanceFor(ctx context.Context, accountNumber string) (decimal.Decimal, error) {
	return minBalanceFor(ctx, l.tx, accountNumber)
}

func (l *ledgerTx) AppendTransaction(ctx context.Context, t *domain.Transaction) error {
	res, err := l.tx.ExecContext(ctx, `
		INSERT INTO transactions (from_account_number, to_account_number, amount, transaction_date, transaction_type)
		VALUES (?, ?, ?, ?, ?)
	`,
		nullString(t.FromAccount),
		nullString(t.ToAccount),
		t.Amount.StringFixed(domain.MoneyScale),
		t.TransactionDate.UTC().Format(timeLayout),
		string(t.TransactionType),
	)
	if err != nil {
		return fmt.Errorf("failed to append transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read transaction id: %w", err)
	}
	t.TransactionID = id
	return nil
}

func (l *ledgerTx) InsertAccount(ctx context.Context, a *domain.Account) error {
	ts := now()
	if _, err := l.tx.ExecContext(ctx, `
		INSERT INTO accounts (account_number, balance, form_id, is_active, created_at, updated_at)
		VALUES (?, ?, ?, 1, ?, ?)
	`, a.AccountNumber, a.Balance.StringFixed(domain.MoneyScale), a.FormID, ts, ts); err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}
	a.IsActive = true
	a.CreatedAt = parseTime(ts)
	a.UpdatedAt = a.CreatedAt
	return nil
}

func (l *ledgerTx) LockForm(ctx context.Context, formID int64) (*domain.ApplicationForm, error) {
	return getForm(ctx, l.tx, formID)
}

func (l *ledgerTx) MarkFormApproved(ctx context.Context, formID int64, accountNumber string) error {
	res, err := l.tx.ExecContext(ctx,
		`UPDATE application_forms SET status = ?, account_number = ? WHERE form_id = ?`,
		string(domain.FormApproved), accountNumber, formID,
	)
	if err != nil {
		return fmt.Errorf("failed to approve form: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
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
