package sqlite

import (
	"fmt"

	"ledger-service/internal/domain"
)

// Migrations returns the schema statements in apply order. Each string is a
// single statement; money columns are TEXT so decimals round-trip exactly.
func Migrations() []string {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sequences (
			name  TEXT PRIMARY KEY,
			value INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS account_types (
			type_id     INTEGER PRIMARY KEY AUTOINCREMENT,
			type_name   TEXT NOT NULL UNIQUE,
			min_balance TEXT NOT NULL DEFAULT '0',
			is_active   INTEGER NOT NULL DEFAULT 1
		)`,
		`CREATE TABLE IF NOT EXISTS branches (
			ifsc        TEXT PRIMARY KEY,
			branch_name TEXT NOT NULL,
			state       TEXT NOT NULL DEFAULT '',
			country     TEXT NOT NULL DEFAULT '',
			is_active   INTEGER NOT NULL DEFAULT 1
		)`,
		`CREATE TABLE IF NOT EXISTS application_forms (
			form_id              INTEGER PRIMARY KEY AUTOINCREMENT,
			full_name            TEXT NOT NULL,
			email                TEXT NOT NULL,
			account_type_id      INTEGER NOT NULL REFERENCES account_types(type_id),
			ifsc                 TEXT NOT NULL REFERENCES branches(ifsc),
			status               TEXT NOT NULL DEFAULT 'FormFilled',
			account_number       TEXT,
			date_of_registration TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS accounts (
			account_number TEXT PRIMARY KEY,
			balance        TEXT NOT NULL DEFAULT '0',
			form_id        INTEGER REFERENCES application_forms(form_id),
			is_active      INTEGER NOT NULL DEFAULT 1,
			created_at     TEXT NOT NULL,
			updated_at     TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			transaction_id      INTEGER PRIMARY KEY AUTOINCREMENT,
			from_account_number TEXT,
			to_account_number   TEXT,
			amount              TEXT NOT NULL,
			transaction_date    TEXT NOT NULL,
			transaction_type    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_from ON transactions(from_account_number)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_to ON transactions(to_account_number)`,
	}
	// Sequences store the last handed-out value, so they are seeded one below start.
	for _, s := range domain.Sequences {
		stmts = append(stmts, fmt.Sprintf(
			`INSERT OR IGNORE INTO sequences (name, value) VALUES ('%s', %d)`, s.Name, s.Start-1,
		))
	}
	return stmts
}
