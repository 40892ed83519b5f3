package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ledger-service/internal/domain"
)

// sequenceRepo keeps one row per sequence holding the last value handed out.
// UPDATE ... RETURNING increments and reads in a single statement.
type sequenceRepo struct {
	db *sql.DB
}

func (r *sequenceRepo) Next(ctx context.Context, name string) (int64, error) {
	if _, ok := domain.LookupSequence(name); !ok {
		return 0, domain.Wrap(domain.ErrAllocation, fmt.Errorf("unknown sequence %q", name))
	}

	var v int64
	err := r.db.QueryRowContext(ctx,
		`UPDATE sequences SET value = value + 1 WHERE name = ? RETURNING value`, name,
	).Scan(&v)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = fmt.Errorf("sequence %s not migrated", name)
		}
		return 0, domain.Wrap(domain.ErrAllocation, fmt.Errorf("failed to allocate from %s: %w", name, err))
	}
	return v, nil
}

func (r *sequenceRepo) HighWater(ctx context.Context, name string) (int64, error) {
	if _, ok := domain.LookupSequence(name); !ok {
		return 0, domain.Wrap(domain.ErrAllocation, fmt.Errorf("unknown sequence %q", name))
	}

	var issued int64
	err := r.db.QueryRowContext(ctx, `SELECT value FROM sequences WHERE name = ?`, name).Scan(&issued)
	if err != nil {
		return 0, fmt.Errorf("failed to read sequence %s: %w", name, err)
	}
	used, err := inUse(ctx, r.db, name)
	if err != nil {
		return 0, err
	}
	return max(issued, used), nil
}

// inUse is the largest sequence value present in the rows the sequence numbers.
func inUse(ctx context.Context, q querier, name string) (int64, error) {
	var (
		query string
		args  []any
	)
	switch name {
	case domain.AccountNumberSequence.Name:
		query = `SELECT COALESCE(MAX(CAST(account_number AS INTEGER)), 0) FROM accounts`
	case domain.IFSCSequence.Name:
		query = `SELECT COALESCE(MAX(CAST(SUBSTR(ifsc, ?) AS INTEGER)), 0) FROM branches WHERE ifsc LIKE ?`
		args = []any{len(domain.IFSCPrefix) + 1, domain.IFSCPrefix + "%"}
	default:
		return 0, nil
	}

	var v int64
	if err := q.QueryRowContext(ctx, query, args...).Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read %s high-water mark: %w", name, err)
	}
	return v, nil
}

// syncSequences moves every counter up to the values already in use, so a
// store that was fed by another allocator never re-issues them.
func syncSequences(ctx context.Context, db *sql.DB) error {
	for _, seq := range domain.Sequences {
		used, err := inUse(ctx, db, seq.Name)
		if err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx,
			`UPDATE sequences SET value = ? WHERE name = ? AND value < ?`, used, seq.Name, used,
		); err != nil {
			return fmt.Errorf("failed to sync sequence %s: %w", seq.Name, err)
		}
	}
	return nil
}
