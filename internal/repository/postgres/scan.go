package postgres

import (
	"context"

	"ledger-service/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// querier is satisfied by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	if err := row.Scan(&a.AccountNumber, &a.Balance, &a.FormID, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func scanForm(row pgx.Row) (*domain.ApplicationForm, error) {
	var (
		f      domain.ApplicationForm
		status string
	)
	if err := row.Scan(&f.FormID, &f.FullName, &f.Email, &f.AccountTypeID, &f.IFSC, &status,
		&f.AccountNumber, &f.DateOfRegistration); err != nil {
		return nil, err
	}
	f.Status = domain.FormStatus(status)
	return &f, nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		t        domain.Transaction
		from, to *string
		txType   *string
	)
	if err := row.Scan(&t.TransactionID, &from, &to, &t.Amount, &t.TransactionDate, &txType); err != nil {
		return nil, err
	}
	if from != nil {
		t.FromAccount = *from
	}
	if to != nil {
		t.ToAccount = *to
	}
	if txType != nil {
		t.TransactionType = domain.TransactionType(*txType)
	}
	t.TransactionDate = t.TransactionDate.UTC()
	return &t, nil
}
