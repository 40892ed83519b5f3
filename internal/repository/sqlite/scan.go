package sqlite

import (
	"database/sql"

	"ledger-service/internal/domain"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var (
		a                domain.Account
		created, updated string
	)
	if err := row.Scan(&a.AccountNumber, &a.Balance, &a.FormID, &a.IsActive, &created, &updated); err != nil {
		return nil, err
	}
	a.CreatedAt = parseTime(created)
	a.UpdatedAt = parseTime(updated)
	return &a, nil
}

func scanForm(row rowScanner) (*domain.ApplicationForm, error) {
	var (
		f               domain.ApplicationForm
		status, regDate string
		accountNumber   sql.NullString
	)
	if err := row.Scan(&f.FormID, &f.FullName, &f.Email, &f.AccountTypeID, &f.IFSC, &status,
		&accountNumber, &regDate); err != nil {
		return nil, err
	}
	f.Status = domain.FormStatus(status)
	f.AccountNumber = accountNumber.String
	f.DateOfRegistration = parseTime(regDate)
	return &f, nil
}

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var (
		t                domain.Transaction
		from, to, txType sql.NullString
		date             string
	)
	if err := row.Scan(&t.TransactionID, &from, &to, &t.Amount, &date, &txType); err != nil {
		return nil, err
	}
	t.FromAccount = from.String
	t.ToAccount = to.String
	t.TransactionType = domain.TransactionType(txType.String)
	t.TransactionDate = parseTime(date)
	return &t, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
