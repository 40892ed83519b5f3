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

type accountTypeRepo struct {
	db *pgxpool.Pool
}

func (r *accountTypeRepo) Create(ctx context.Context, t *domain.AccountType) error {
	query := `
		INSERT INTO account_types (type_name, min_balance, is_active)
		VALUES ($1, $2, true)
		RETURNING type_id, is_active
	`
	if err := r.db.QueryRow(ctx, query, t.TypeName, t.MinBalance).Scan(&t.TypeID, &t.IsActive); err != nil {
		if xerrors.IsUniqueViolation(err) {
			return domain.Invalid("account type name already exists")
		}
		return fmt.Errorf("failed to create account type: %w", err)
	}
	return nil
}

func (r *accountTypeRepo) GetByID(ctx context.Context, typeID int64) (*domain.AccountType, error) {
	return getAccountType(ctx, r.db, typeID)
}

func (r *accountTypeRepo) ListActive(ctx context.Context) ([]*domain.AccountType, error) {
	rows, err := r.db.Query(ctx, `
		SELECT type_id, type_name, min_balance, is_active
		FROM account_types
		WHERE is_active = true
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
	tag, err := r.db.Exec(ctx, `
		UPDATE account_types
		SET type_name = $2, min_balance = $3, updated_at = now()
		WHERE type_id = $1 AND is_active = true
	`, t.TypeID, t.TypeName, t.MinBalance)
	if err != nil {
		if xerrors.IsUniqueViolation(err) {
			return domain.Invalid("account type name already exists")
		}
		return fmt.Errorf("failed to update account type: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountTypeNotFound
	}
	t.IsActive = true
	return nil
}

func (r *accountTypeRepo) Deactivate(ctx context.Context, typeID int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE account_types SET is_active = false, updated_at = now() WHERE type_id = $1 AND is_active = true`,
		typeID,
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate account type: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountTypeNotFound
	}
	return nil
}

func getAccountType(ctx context.Context, q querier, typeID int64) (*domain.AccountType, error) {
	var t domain.AccountType
	err := q.QueryRow(ctx, `
		SELECT type_id, type_name, min_balance, is_active
		FROM account_types
		WHERE type_id = $1 AND is_active = true
	`, typeID).Scan(&t.TypeID, &t.TypeName, &t.MinBalance, &t.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountTypeNotFound
		}
		return nil, fmt.Errorf("failed to get account type: %w", err)
	}
	return &t, nil
}
