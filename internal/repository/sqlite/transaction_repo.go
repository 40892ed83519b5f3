package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"ledger-service/internal/domain"
)

type transactionRepo struct {
	db *sql.DB
}

const transactionColumns = `transaction_id, from_account_number, to_account_number, amount, transaction_date, transaction_type`

func (r *transactionRepo) ListByAccount(ctx context.Context, accountNumber string, page domain.Page) ([]*domain.Transaction, error) {
	page = page.Normalize()
	return r.list(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE from_account_number = ? OR to_account_number = ?
		ORDER BY transaction_id DESC
		LIMIT ? OFFSET ?
	`, accountNumber, accountNumber, page.Limit, page.Offset)
}

func (r *transactionRepo) List(ctx context.Context, page domain.Page) ([]*domain.Transaction, error) {
	page = page.Normalize()
	return r.list(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		ORDER BY transaction_id DESC
		LIMIT ? OFFSET ?
	`, page.Limit, page.Offset)
}

func (r *transactionRepo) CountByAccount(ctx context.Context, accountNumber string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE from_account_number = ? OR to_account_number = ?`,
		accountNumber, accountNumber,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return n, nil
}

func (r *transactionRepo) list(ctx context.Context, query string, args ...any) ([]*domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
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
