package postgres

import (
	"context"
	"fmt"

	"ledger-service/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type transactionRepo struct {
	db *pgxpool.Pool
}

const transactionColumns = `transaction_id, from_account_number, to_account_number, amount, transaction_date, transaction_type`

func (r *transactionRepo) ListByAccount(ctx context.Context, accountNumber string, page domain.Page) ([]*domain.Transaction, error) {
	page = page.Normalize()
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE from_account_number = $1 OR to_account_number = $1
		ORDER BY transaction_id DESC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, accountNumber, page.Limit, page.Offset)
}

func (r *transactionRepo) List(ctx context.Context, page domain.Page) ([]*domain.Transaction, error) {
	page = page.Normalize()
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		ORDER BY transaction_id DESC
		LIMIT $1 OFFSET $2
	`
	return r.list(ctx, query, page.Limit, page.Offset)
}

func (r *transactionRepo) CountByAccount(ctx context.Context, accountNumber string) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM transactions WHERE from_account_number = $1 OR to_account_number = $1`,
		accountNumber,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return n, nil
}

func (r *transactionRepo) list(ctx context.Context, query string, args ...any) ([]*domain.Transaction, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
