package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ledger-service/internal/domain"
)

type branchRepo struct {
	db *sql.DB
}

func (r *branchRepo) Create(ctx context.Context, b *domain.Branch) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO branches (ifsc, branch_name, state, country, is_active) VALUES (?, ?, ?, ?, 1)`,
		b.IFSC, b.BranchName, b.State, b.Country,
	); err != nil {
		return fmt.Errorf("failed to create branch: %w", err)
	}
	b.IsActive = true
	return nil
}

func (r *branchRepo) GetByIFSC(ctx context.Context, ifsc string) (*domain.Branch, error) {
	var b domain.Branch
	err := r.db.QueryRowContext(ctx, `
		SELECT ifsc, branch_name, state, country, is_active
		FROM branches
		WHERE ifsc = ? AND is_active = 1
	`, ifsc).Scan(&b.IFSC, &b.BranchName, &b.State, &b.Country, &b.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBranchNotFound
		}
		return nil, fmt.Errorf("failed to get branch: %w", err)
	}
	return &b, nil
}

func (r *branchRepo) ListActive(ctx context.Context) ([]*domain.Branch, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT ifsc, branch_name, state, country, is_active
		FROM branches
		WHERE is_active = 1
		ORDER BY ifsc
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	defer rows.Close()

	var out []*domain.Branch
	for rows.Next() {
		var b domain.Branch
		if err := rows.Scan(&b.IFSC, &b.BranchName, &b.State, &b.Country, &b.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan branch: %w", err)
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}

func (r *branchRepo) Update(ctx context.Context, ifsc string, in domain.BranchInput) (*domain.Branch, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE branches SET branch_name = ?, state = ?, country = ? WHERE ifsc = ? AND is_active = 1`,
		in.BranchName, in.State, in.Country, ifsc,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update branch: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, domain.ErrBranchNotFound
	}
	return &domain.Branch{IFSC: ifsc, BranchName: in.BranchName, State: in.State, Country: in.Country, IsActive: true}, nil
}

func (r *branchRepo) Deactivate(ctx context.Context, ifsc string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE branches SET is_active = 0 WHERE ifsc = ? AND is_active = 1`, ifsc)
	if err != nil {
		return fmt.Errorf("failed to deactivate branch: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrBranchNotFound
	}
	return nil
}
