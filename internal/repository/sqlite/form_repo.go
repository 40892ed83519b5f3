package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ledger-service/internal/domain"
)

type formRepo struct {
	db *sql.DB
}

func (r *formRepo) Create(ctx context.Context, f *domain.ApplicationForm) error {
	f.DateOfRegistration = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO application_forms (full_name, email, account_type_id, ifsc, status, date_of_registration)
		VALUES (?, ?, ?, ?, ?, ?)
	`, f.FullName, f.Email, f.AccountTypeID, f.IFSC, string(f.Status), f.DateOfRegistration.Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to create form: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read form id: %w", err)
	}
	f.FormID = id
	return nil
}

func (r *formRepo) GetByID(ctx context.Context, formID int64) (*domain.ApplicationForm, error) {
	return getForm(ctx, r.db, formID)
}

func getForm(ctx context.Context, q querier, formID int64) (*domain.ApplicationForm, error) {
	f, err := scanForm(q.QueryRowContext(ctx, `
		SELECT form_id, full_name, email, account_type_id, ifsc, status, account_number, date_of_registration
		FROM application_forms
		WHERE form_id = ?
	`, formID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrFormNotFound
		}
		return nil, fmt.Errorf("failed to get form: %w", err)
	}
	return f, nil
}
