package postgres

import (
	"context"
	"errors"
	"fmt"

	"ledger-service/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type accountRepo struct {
	db *pgxpool.Pool
}

// GetByNumber fetches an active account (read-only, no lock)
func (r *accountRepo) GetByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	query := `
		SELECT account_number, balance, form_id, is_active, created_at, updated_at
		FROM accounts
		WHERE account_number = $1 AND is_active = true
	`
	a, err := scanAccount(r.db.QueryRow(ctx, query, accountNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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
	tag, err := r.db.Exec(ctx,
		`UPDATE accounts SET is_active = false, updated_at = now() WHERE account_number = $1 AND is_active = true`,
		accountNumber,
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// minBalanceFor walks account -> application form -> account type. A missing
// link is a configuration fault and never defaults to zero.
func minBalanceFor(ctx context.Context, q querier, accountNumber string) (decimal.Decimal, error) {
	query := `
		SELECT a.form_id, t.min_balance
		FROM accounts a
		LEFT JOIN application_forms f ON f.form_id = a.form_id
		LEFT JOIN account_types t ON t.type_id = f.account_type_id
		WHERE a.account_number = $1 AND a.is_active = true
	`
	var (
		formID *int64
		minBal decimal.NullDecimal
	)
	if err := q.QueryRow(ctx, query, accountNumber).Scan(&formID, &minBal); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, domain.ErrAccountNotFound
		}
		return decimal.Zero, fmt.Errorf("failed to resolve min balance: %w", err)
	}
	if formID == nil || !minBal.Valid {
		return decimal.Zero, domain.Wrap(domain.ErrPolicyResolution,
			fmt.Errorf("account %s has no linked account type", accountNumber))
	}
	return minBal.Decimal, nil
}
