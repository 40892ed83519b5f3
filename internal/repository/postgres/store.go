package postgres

import (
	"context"
	"fmt"

	"ledger-service/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// lockTimeout bounds how long a ledger transaction waits on a row lock before
// postgres raises 55P03.
const lockTimeout = "3s"

type Store struct {
	db     *pgxpool.Pool
	logger *zap.Logger

	accounts     *accountRepo
	accountTypes *accountTypeRepo
	branches     *branchRepo
	forms        *formRepo
	transactions *transactionRepo
	sequences    *sequenceRepo
}

var _ repository.Store = (*Store)(nil)

func NewStore(db *pgxpool.Pool, logger *zap.Logger) *Store {
	return &Store{
		db:           db,
		logger:       logger,
		accounts:     &accountRepo{db: db},
		accountTypes: &accountTypeRepo{db: db},
		branches:     &branchRepo{db: db},
		forms:        &formRepo{db: db},
		transactions: &transactionRepo{db: db},
		sequences:    &sequenceRepo{db: db},
	}
}

func (s *Store) Accounts() repository.AccountRepository         { return s.accounts }
func (s *Store) AccountTypes() repository.AccountTypeRepository { return s.accountTypes }
func (s *Store) Branches() repository.BranchRepository          { return s.branches }
func (s *Store) Forms() repository.FormRepository               { return s.forms }
func (s *Store) Transactions() repository.TransactionRepository { return s.transactions }
func (s *Store) Sequences() repository.SequenceStore            { return s.sequences }

// WithinTx runs fn in a read-committed transaction. Row locks taken by fn are
// released on commit or rollback.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "SET LOCAL lock_timeout = '"+lockTimeout+"'"); err != nil {
		return fmt.Errorf("failed to set lock timeout: %w", err)
	}

	if err := fn(ctx, &ledgerTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) Migrate(ctx context.Context) error {
	for i, stmt := range Migrations() {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", i, err)
		}
	}
	if err := syncSequences(ctx, s.db); err != nil {
		return err
	}
	s.logger.Info("postgres schema up to date", zap.Int("statements", len(Migrations())))
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *Store) Close() error {
	s.db.Close()
	return nil
}
