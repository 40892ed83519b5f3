package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ledger-service/internal/domain"
	"ledger-service/pkg/xerrors"
)

type accountTypeRepo struct {
	db *sql.DB
}

func (r *accountTypeRepo) Create(ctx context.Context, t *domain.AccountType) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO account_types (type_name, min_balance, is_active) VALUES (?, ?, 1)`,
		t.TypeName, t.MinBalance.StringFixed(domain.MoneyScale),
	)
	if err != nil {
		if xerrors.IsUniqueViolation(err) {
			return domain.Invalid("account type name already exists")
		}
		return fmt.Errorf("failed to create account type: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read account type id: %w", err)
	}
	t.TypeID = id
	t.IsActive = true
	return nil
}

func (r *accountTypeRepo) GetByID(ctx context.Context, typeID int64) (*domain.AccountType, error) {
	return getAccountType(ctx, r.db, typeID)
}

func (r *accountTypeRepo) ListActive(ctx context.Context) ([]*domain.AccountType, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT type_id, type_name, min_balance, is_active
		FROM account_types
		WHERE is_active = 1
		ORDER BY type_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list account types: %w", err)
	}
	defer rows.Close()

	var out []*domain.AccountType
	for rows.Next() {
		var t domain.AccountType
		if err := rows.Scan(&t.TypeID, &t.TypeName, &t.MinBalance, &t.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan account type: %w", err)
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

func (r *accountTypeRepo) Update(ctx context.Context, t *domain.AccountType) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE account_types SET type_name = ?, min_balance = ? WHERE type_id = ? AND is_active = 1`,
		t.TypeName, t.MinBalance.StringFixed(domain.MoneyScale), t.TypeID,
	)
	if err != nil {
		if xerrors.IsUniqueViolation(err) {
			return domain.Invalid("account type name already exists")
		}
		return fmt.Errorf("failed to update account type: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrAccountTypeNotFound
	}
	t.IsActive = true
	return nil
}

func (r *accountTypeRepo) Deactivate(ctx context.Context, typeID int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE account_types SET is_active = 0 WHERE type_id = ? AND is_active = 1`, typeID,
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate account type: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrAccountTypeNotFound
	}
	return nil
}

func getAccountType(ctx context.Context, q querier, typeID int64) (*domain.AccountType, error) {
	var t domain.AccountType
	err := q.QueryRowContext(ctx, `
		SELECT type_id, type_name, min_balance, is_active
		FROM account_types
		WHERE type_id = ? AND is_active = 1
	`, typeID).Scan(&t.TypeID, &t.TypeName, &t.MinBalance, &t.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAccountTypeNotFound
		}
		return nil, fmt.Errorf("failed to get account type: %w", err)
	}
	return &t, nil
}
