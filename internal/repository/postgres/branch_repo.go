package postgres

import (
	"context"
	"errors"
	"fmt"

	"ledger-service/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type branchRepo struct {
	db *pgxpool.Pool
}

func (r *branchRepo) Create(ctx context.Context, b *domain.Branch) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO branches (ifsc, branch_name, state, country, is_active)
		VALUES ($1, $2, $3, $4, true)
	`, b.IFSC, b.BranchName, b.State, b.Country)
	if err != nil {
		return fmt.Errorf("failed to create branch: %w", err)
	}
	b.IsActive = true
	return nil
}

func (r *branchRepo) GetByIFSC(ctx context.Context, ifsc string) (*domain.Branch, error) {
	var b domain.Branch
	err := r.db.QueryRow(ctx, `
		SELECT ifsc, branch_name, state, country, is_active
		FROM branches
		WHERE ifsc = $1 AND is_active = true
	`, ifsc).Scan(&b.IFSC, &b.BranchName, &b.State, &b.Country, &b.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBranchNotFound
		}
		return nil, fmt.Errorf("failed to get branch: %w", err)
	}
	return &b, nil
}

func (r *branchRepo) ListActive(ctx context.Context) ([]*domain.Branch, error) {
	rows, err := r.db.Query(ctx, `
		SELECT ifsc, branch_name, state, country, is_active
		FROM branches
		WHERE is_active = true
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
	tag, err := r.db.Exec(ctx, `
		UPDATE branches
		SET branch_name = $2, state = $3, country = $4
		WHERE ifsc = $1 AND is_active = true
	`, ifsc, in.BranchName, in.State, in.Country)
	if err != nil {
		return nil, fmt.Errorf("failed to update branch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrBranchNotFound
	}
	return &domain.Branch{IFSC: ifsc, BranchName: in.BranchName, State: in.State, Country: in.Country, IsActive: true}, nil
}

func (r *branchRepo) Deactivate(ctx context.Context, ifsc string) error {
	tag, err := r.db.Exec(ctx, `UPDATE branches SET is_active = false WHERE ifsc = $1 AND is_active = true`, ifsc)
	if err != nil {
		return fmt.Errorf("failed to deactivate branch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBranchNotFound
	}
	return nil
}
