// Package sqlite is the embedded ledger backend built on modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"ledger-service/internal/repository"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const timeLayout = time.RFC3339Nano

type Store struct {
	db     *sql.DB
	logger *zap.Logger

	accounts     *accountRepo
	accountTypes *accountTypeRepo
	branches     *branchRepo
	forms        *formRepo
	transactions *transactionRepo
	sequences    *sequenceRepo
}

var _ repository.Store = (*Store)(nil)

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open opens (creating if needed) the database file at path. Write
// transactions start with BEGIN IMMEDIATE so the write lock is held from the
// first read of a ledger operation.
func Open(path string, logger *zap.Logger) (*Store, error) {
	q := url.Values{}
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "foreign_keys(1)")
	q.Set("_txlock", "immediate")
	dsn := "file:" + path + "?" + q.Encode()

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// One writer at a time; readers queue behind it instead of hitting SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	return &Store{
		db:           db,
		logger:       logger,
		accounts:     &accountRepo{db: db},
		accountTypes: &accountTypeRepo{db: db},
		branches:     &branchRepo{db: db},
		forms:        &formRepo{db: db},
		transactions: &transactionRepo{db: db},
		sequences:    &sequenceRepo{db: db},
	}, nil
}

func (s *Store) Accounts() repository.AccountRepository         { return s.accounts }
func (s *Store) AccountTypes() repository.AccountTypeRepository { return s.accountTypes }
func (s *Store) Branches() repository.BranchRepository          { return s.branches }
func (s *Store) Forms() repository.FormRepository               { return s.forms }
func (s *Store) Transactions() repository.TransactionRepository { return s.transactions }
func (s *Store) Sequences() repository.SequenceStore            { return s.sequences }

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(ctx, &ledgerTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) Migrate(ctx context.Context) error {
	stmts := Migrations()
	for i, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", i, err)
		}
	}
	if err := syncSequences(ctx, s.db); err != nil {
		return err
	}
	s.logger.Info("sqlite schema up to date", zap.Int("statements", len(stmts)))
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func now() string {
	return time.Now().UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
