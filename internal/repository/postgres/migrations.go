package postgres

import (
	"fmt"

	"ledger-service/internal/domain"

	"github.com/jackc/pgx/v5"
)

// Migrations returns the schema statements in apply order. Every statement is
// idempotent so Migrate can run on each start.
func Migrations() []string {
	stmts := make([]string, 0, 16)
	for _, s := range domain.Sequences {
		stmts = append(stmts, fmt.Sprintf(
			`CREATE SEQUENCE IF NOT EXISTS %s START WITH %d INCREMENT BY 1 NO CYCLE`,
			pgx.Identifier{s.Name}.Sanitize(), s.Start,
		))
	}
	return append(stmts,
		`CREATE TABLE IF NOT EXISTS account_types (
			type_id     BIGSERIAL PRIMARY KEY,
			type_name   VARCHAR(50) NOT NULL UNIQUE,
			min_balance NUMERIC(18,2) NOT NULL DEFAULT 0 CHECK (min_balance >= 0),
			is_active   BOOLEAN NOT NULL DEFAULT TRUE,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS branches (
			ifsc        VARCHAR(20) PRIMARY KEY,
			branch_name VARCHAR(50) NOT NULL,
			state       VARCHAR(50) NOT NULL DEFAULT '',
			country     VARCHAR(50) NOT NULL DEFAULT '',
			is_active   BOOLEAN NOT NULL DEFAULT TRUE
		)`,
		`CREATE TABLE IF NOT EXISTS application_forms (
			form_id              BIGSERIAL PRIMARY KEY,
			full_name            VARCHAR(50) NOT NULL,
			email                VARCHAR(100) NOT NULL,
			account_type_id      BIGINT NOT NULL REFERENCES account_types(type_id),
			ifsc                 VARCHAR(20) NOT NULL REFERENCES branches(ifsc),
			status               VARCHAR(20) NOT NULL DEFAULT 'FormFilled',
			account_number       VARCHAR(50),
			date_of_registration TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS accounts (
			account_number VARCHAR(50) PRIMARY KEY,
			balance        NUMERIC(18,2) NOT NULL DEFAULT 0,
			form_id        BIGINT REFERENCES application_forms(form_id),
			is_active      BOOLEAN NOT NULL DEFAULT TRUE,
			created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			transaction_id      BIGSERIAL PRIMARY KEY,
			from_account_number VARCHAR(20),
			to_account_number   VARCHAR(20),
			amount              NUMERIC(18,2) NOT NULL CHECK (amount > 0),
			transaction_date    TIMESTAMPTZ NOT NULL DEFAULT now(),
			transaction_type    VARCHAR(20)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_from ON transactions(from_account_number, transaction_id DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_to ON transactions(to_account_number, transaction_id DESC)`,
	)
}
