package postgres

import (
	"context"
	"errors"
	"fmt"

	"ledger-service/internal/domain"
	"ledger-service/pkg/xerrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type formRepo struct {
	db *pgxpool.Pool
}

func (r *formRepo) Create(ctx context.Context, f *domain.ApplicationForm) error {
	query := `
		INSERT INTO application_forms (full_name, email, account_type_id, ifsc, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING form_id, date_of_registration
	`
	err := r.db.QueryRow(ctx, query, f.FullName, f.Email, f.AccountTypeID, f.IFSC, string(f.Status)).
		Scan(&f.FormID, &f.DateOfRegistration)
	if err != nil {
		if xerrors.ParsePGErrorCode(err) == xerrors.PGForeignKeyViolation {
			return domain.Invalid("account type or branch does not exist")
		}
		return fmt.Errorf("failed to create form: %w", err)
	}
	return nil
}

func (r *formRepo) GetByID(ctx context.Context, formID int64) (*domain.ApplicationForm, error) {
	query := `
		SELECT form_id, full_name, email, account_type_id, ifsc, status,
		       COALESCE(account_number, ''), date_of_registration
		FROM application_forms
		WHERE form_id = $1
	`
	f, err := scanForm(r.db.QueryRow(ctx, query, formID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrFormNotFound
		}
		return nil, fmt.Errorf("failed to get form: %w", err)
	}
	return f, nil
}
