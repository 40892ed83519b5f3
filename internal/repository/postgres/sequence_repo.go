package postgres

import (
	"context"
	"fmt"

	"ledger-service/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// sequenceRepo allocates from native postgres sequences. nextval is atomic and
// never hands out a value twice, rolled-back transactions included.
type sequenceRepo struct {
	db *pgxpool.Pool
}

func (r *sequenceRepo) Next(ctx context.Context, name string) (int64, error) {
	if _, ok := domain.LookupSequence(name); !ok {
		return 0, domain.Wrap(domain.ErrAllocation, fmt.Errorf("unknown sequence %q", name))
	}

	var v int64
	if err := r.db.QueryRow(ctx, `SELECT nextval($1::regclass)`, pgx.Identifier{name}.Sanitize()).Scan(&v); err != nil {
		return 0, domain.Wrap(domain.ErrAllocation, fmt.Errorf("failed to allocate from %s: %w", name, err))
	}
	return v, nil
}

func (r *sequenceRepo) HighWater(ctx context.Context, name string) (int64, error) {
	if _, ok := domain.LookupSequence(name); !ok {
		return 0, domain.Wrap(domain.ErrAllocation, fmt.Errorf("unknown sequence %q", name))
	}

	issued, err := lastIssued(ctx, r.db, name)
	if err != nil {
		return 0, err
	}
	used, err := inUse(ctx, r.db, name)
	if err != nil {
		return 0, err
	}
	return max(issued, used), nil
}

// lastIssued is the last value nextval returned, or start-1 before the first call.
func lastIssued(ctx context.Context, q querier, name string) (int64, error) {
	query := fmt.Sprintf(
		`SELECT CASE WHEN is_called THEN last_value ELSE last_value - 1 END FROM %s`,
		pgx.Identifier{name}.Sanitize(),
	)
	var v int64
	if err := q.QueryRow(ctx, query).Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read sequence %s: %w", name, err)
	}
	return v, nil
}

// inUse is the largest sequence value present in the rows the sequence numbers.
func inUse(ctx context.Context, q querier, name string) (int64, error) {
	var (
		query string
		args  []any
	)
	switch name {
	case domain.AccountNumberSequence.Name:
		query = `SELECT COALESCE(MAX(account_number::bigint), 0) FROM accounts WHERE account_number ~ '^[0-9]{1,18}$'`
	case domain.IFSCSequence.Name:
		query = `SELECT COALESCE(MAX(substr(ifsc, $1)::bigint), 0) FROM branches WHERE ifsc ~ $2`
		args = []any{len(domain.IFSCPrefix) + 1, "^" + domain.IFSCPrefix + "[0-9]{1,18}$"}
	default:
		return 0, nil
	}

	var v int64
	if err := q.QueryRow(ctx, query, args...).Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read %s high-water mark: %w", name, err)
	}
	return v, nil
}

// syncSequences moves every sequence up to the values already in use, so a
// database that was fed by another allocator never re-issues them.
func syncSequences(ctx context.Context, q querier) error {
	for _, seq := range domain.Sequences {
		used, err := inUse(ctx, q, seq.Name)
		if err != nil {
			return err
		}
		issued, err := lastIssued(ctx, q, seq.Name)
		if err != nil {
			return err
		}
		if used <= issued {
			continue
		}
		if _, err := q.Exec(ctx, `SELECT setval($1::regclass, $2, true)`, pgx.Identifier{seq.Name}.Sanitize(), used); err != nil {
			return fmt.Errorf("failed to sync sequence %s: %w", seq.Name, err)
		}
	}
	return nil
}
