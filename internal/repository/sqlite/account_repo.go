package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ledger-service/internal/domain"

	"github.com/shopspring/decimal"
)

type accountRepo struct {
	db *sql.DB
}

func (r *accountRepo) GetByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	a, err := scanAccount(r.db.QueryRowContext(ctx, `
		SELECT account_number, balance, form_id, is_active, created_at, updated_at
		FROM accounts
		WHERE account_number = ? AND is_active = 1
	`, accountNumber))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return a, nil
}

func (r *accountRepo) MinBalanceFor(ctx context.Context, accountNumber string) (decimal.Decimal, error) {
	return minBalanceFor(ctx, r.db, accountNumber)
}

func (r *accountRepo) Deactivate(ctx context.Context, accountNumber string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET is_active = 0, updated_at = ? WHERE account_number = ? AND is_active = 1`,
		now(), accountNumber,
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func minBalanceFor(ctx context.Context, q querier, accountNumber string) (decimal.Decimal, error) {
	var (
		formID sql.NullInt64
		minBal decimal.NullDecimal
	)
	err := q.QueryRowContext(ctx, `
		SELECT a.form_id, t.min_balance
		FROM accounts a
		LEFT JOIN application_forms f ON f.form_id = a.form_id
		LEFT JOIN account_types t ON t.type_id = f.account_type_id
		WHERE a.account_number = ? AND a.is_active = 1
	`, accountNumber).Scan(&formID, &minBal)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, domain.ErrAccountNotFound
		}
		return decimal.Zero, fmt.Errorf("failed to resolve min balance: %w", err)
	}
	if !formID.Valid || !minBal.Valid {
		return decimal.Zero, domain.Wrap(domain.ErrPolicyResolution,
			fmt.Errorf("account %s has no linked account type", accountNumber))
	}
	return minBal.Decimal, nil
}
