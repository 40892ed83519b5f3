package usecase

import (
	"context"
	"fmt"
	"time"

	"ledger-service/internal/domain"
	"ledger-service/internal/metrics"
	"ledger-service/internal/pub"
	"ledger-service/internal/repository"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	opDeposit  = "deposit"
	opWithdraw = "withdraw"
	opTransfer = "transfer"
)

type LedgerConfig struct {
	// MaxAttempts bounds how often an operation is run when it hits a lock
	// conflict. Values below 1 mean 1.
	MaxAttempts int
	// OpTimeout bounds one operation, retries included.
	OpTimeout time.Duration
	// RejectSelfTransfer turns Transfer(a, a, x) into an InvalidRequest.
	RejectSelfTransfer bool
}

// LedgerUsecase moves money. Every operation locks its accounts in the
// process-wide arena and then in the database, both in ascending
// account-number order, and runs its checks and writes in one transaction.
type LedgerUsecase struct {
	store     repository.Store
	arena     *lockArena
	history   *HistoryCache
	publisher pub.Publisher
	logger    *zap.Logger
	cfg       LedgerConfig
}

func NewLedgerUsecase(
	store repository.Store,
	history *HistoryCache,
	publisher pub.Publisher,
	logger *zap.Logger,
	cfg LedgerConfig,
) *LedgerUsecase {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.OpTimeout <= 0 {
		cfg.OpTimeout = 5 * time.Second
	}
	if publisher == nil {
		publisher = pub.Noop{}
	}
	return &LedgerUsecase{
		store:     store,
		arena:     newLockArena(),
		history:   history,
		publisher: publisher,
		logger:    logger,
		cfg:       cfg,
	}
}

// postingFunc applies one operation against accounts already locked in tx.
type postingFunc func(ctx context.Context, tx repository.Tx, locked map[string]*domain.Account) (*domain.Posting, error)

// Deposit credits toAccount. Deposits never check the minimum balance.
func (uc *LedgerUsecase) Deposit(ctx context.Context, toAccount string, amount decimal.Decimal) (*domain.Posting, error) {
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, uc.reject(opDeposit, err)
	}
	if toAccount == "" {
		return nil, uc.reject(opDeposit, domain.Invalid("account number is required"))
	}

	return uc.execute(ctx, opDeposit, []string{toAccount},
		func(ctx context.Context, tx repository.Tx, locked map[string]*domain.Account) (*domain.Posting, error) {
			to, ok := locked[toAccount]
			if !ok {
				return nil, domain.ErrAccountNotFound
			}
			if err := checkCredit(to, amount); err != nil {
				return nil, err
			}
			balance, err := tx.AdjustBalance(ctx, toAccount, amount)
			if err != nil {
				return nil, err
			}
			t := &domain.Transaction{
				ToAccount:       toAccount,
				Amount:          amount,
				TransactionDate: time.Now().UTC(),
				TransactionType: domain.TxDeposit,
			}
			if err := tx.AppendTransaction(ctx, t); err != nil {
				return nil, err
			}
			return &domain.Posting{Transaction: t, Balances: map[string]decimal.Decimal{toAccount: balance}}, nil
		})
}

// Withdraw debits fromAccount, keeping it at or above its minimum balance.
func (uc *LedgerUsecase) Withdraw(ctx context.Context, fromAccount string, amount decimal.Decimal) (*domain.Posting, error) {
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, uc.reject(opWithdraw, err)
	}
	if fromAccount == "" {
		return nil, uc.reject(opWithdraw, domain.Invalid("account number is required"))
	}

	return uc.execute(ctx, opWithdraw, []string{fromAccount},
		func(ctx context.Context, tx repository.Tx, locked map[string]*domain.Account) (*domain.Posting, error) {
			from, ok := locked[fromAccount]
			if !ok {
				return nil, domain.ErrAccountNotFound
			}
			if err := checkDebit(ctx, tx, from, amount); err != nil {
				return nil, err
			}
			balance, err := tx.AdjustBalance(ctx, fromAccount, amount.Neg())
			if err != nil {
				return nil, err
			}
			t := &domain.Transaction{
				FromAccount:     fromAccount,
				Amount:          amount,
				TransactionDate: time.Now().UTC(),
				TransactionType: domain.TxWithdraw,
			}
			if err := tx.AppendTransaction(ctx, t); err != nil {
				return nil, err
			}
			return &domain.Posting{Transaction: t, Balances: map[string]decimal.Decimal{fromAccount: balance}}, nil
		})
}

// Transfer moves amount between two accounts. A self-transfer passes the same
// checks, leaves the balance unchanged and still writes one row, unless
// RejectSelfTransfer is set.
func (uc *LedgerUsecase) Transfer(ctx context.Context, fromAccount, toAccount string, amount decimal.Decimal) (*domain.Posting, error) {
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, uc.reject(opTransfer, err)
	}
	if fromAccount == "" || toAccount == "" {
		return nil, uc.reject(opTransfer, domain.Invalid("source and destination account numbers are required"))
	}
	if fromAccount == toAccount && uc.cfg.RejectSelfTransfer {
		return nil, uc.reject(opTransfer, domain.Invalid("source and destination accounts must differ"))
	}

	return uc.execute(ctx, opTransfer, []string{fromAccount, toAccount},
		func(ctx context.Context, tx repository.Tx, locked map[string]*domain.Account) (*domain.Posting, error) {
			from, ok := locked[fromAccount]
			if !ok {
				return nil, domain.ErrAccountNotFound
			}
			to, ok := locked[toAccount]
			if !ok {
				return nil, domain.ErrAccountNotFound
			}
			if err := checkDebit(ctx, tx, from, amount); err != nil {
				return nil, err
			}
			// a self-transfer nets to zero
			if fromAccount != toAccount {
				if err := checkCredit(to, amount); err != nil {
					return nil, err
				}
			}

			fromBalance, err := tx.AdjustBalance(ctx, fromAccount, amount.Neg())
			if err != nil {
				return nil, err
			}
			toBalance, err := tx.AdjustBalance(ctx, toAccount, amount)
			if err != nil {
				return nil, err
			}

			t := &domain.Transaction{
				FromAccount:     fromAccount,
				ToAccount:       toAccount,
				Amount:          amount,
				TransactionDate: time.Now().UTC(),
				TransactionType: domain.TxTransfer,
			}
			if err := tx.AppendTransaction(ctx, t); err != nil {
				return nil, err
			}
			balances := map[string]decimal.Decimal{fromAccount: fromBalance, toAccount: toBalance}
			return &domain.Posting{Transaction: t, Balances: balances}, nil
		})
}

// checkDebit runs the sufficiency and minimum-balance checks against the
// locked snapshot of the source account.
func checkDebit(ctx context.Context, tx repository.Tx, from *domain.Account, amount decimal.Decimal) error {
	if from.Balance.LessThan(amount) {
		return domain.ErrInsufficientFunds
	}
	minBalance, err := tx.MinBalanceFor(ctx, from.AccountNumber)
	if err != nil {
		return err
	}
	if from.Balance.Sub(amount).LessThan(minBalance) {
		return domain.ErrMinimumBalanceViolation
	}
	return nil
}

// checkCredit keeps the credited balance inside numeric(18,2).
func checkCredit(to *domain.Account, amount decimal.Decimal) error {
	if err := domain.ValidateBalance(to.Balance.Add(amount)); err != nil {
		return domain.Wrap(domain.ErrInvalidAmount, fmt.Errorf("balance of %s would exceed the representable range", to.AccountNumber))
	}
	return nil
}

func (uc *LedgerUsecase) execute(ctx context.Context, op string, accounts []string, apply postingFunc) (*domain.Posting, error) {
	timer := prometheus.NewTimer(metrics.LedgerOperationDuration.WithLabelValues(op))
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, uc.cfg.OpTimeout)
	defer cancel()

	var (
		posting *domain.Posting
		de      *domain.Error
	)
	for attempt := 1; attempt <= uc.cfg.MaxAttempts; attempt++ {
		p, err := uc.attempt(ctx, accounts, apply)
		if err == nil {
			posting, de = p, nil
			break
		}
		de = classify(err)
		if !de.Retryable || ctx.Err() != nil || attempt == uc.cfg.MaxAttempts {
			break
		}
		metrics.LedgerConflictRetries.WithLabelValues(op).Inc()
		uc.logger.Warn("ledger lock conflict, retrying",
			zap.String("operation", op),
			zap.Strings("accounts", accounts),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}

	if de != nil {
		if isBusinessRejection(de) {
			return nil, uc.reject(op, de)
		}
		metrics.LedgerOperations.WithLabelValues(op, metrics.OutcomeFailed).Inc()
		uc.logger.Error("ledger operation failed",
			zap.String("operation", op),
			zap.Strings("accounts", accounts),
			zap.String("code", string(de.Code)),
			zap.Bool("retryable", de.Retryable),
			zap.Error(de.Err),
		)
		return nil, de
	}

	metrics.LedgerOperations.WithLabelValues(op, metrics.OutcomeOK).Inc()
	uc.logger.Info("ledger operation committed",
		zap.String("operation", op),
		zap.Int64("transaction_id", posting.Transaction.TransactionID),
		zap.String("amount", posting.Transaction.Amount.StringFixed(domain.MoneyScale)),
		zap.Strings("accounts", accounts),
	)
	uc.afterCommit(ctx, accounts, posting)
	return posting, nil
}

func (uc *LedgerUsecase) attempt(ctx context.Context, accounts []string, apply postingFunc) (*domain.Posting, error) {
	release, err := uc.arena.Acquire(ctx, accounts...)
	if err != nil {
		return nil, err
	}
	defer release()

	var posting *domain.Posting
	err = uc.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		locked, err := tx.LockAccounts(ctx, accounts...)
		if err != nil {
			return err
		}
		posting, err = apply(ctx, tx, locked)
		return err
	})
	if err != nil {
		return nil, err
	}
	return posting, nil
}

// afterCommit runs best-effort side effects. Their failures are logged and
// never reach the caller: the posting is already durable.
func (uc *LedgerUsecase) afterCommit(ctx context.Context, accounts []string, posting *domain.Posting) {
	sideCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()

	uc.history.Invalidate(sideCtx, accounts...)

	if err := uc.publisher.PublishPosting(sideCtx, posting); err != nil {
		uc.logger.Warn("failed to publish transaction event",
			zap.Int64("transaction_id", posting.Transaction.TransactionID),
			zap.Error(err),
		)
	}
}

func (uc *LedgerUsecase) reject(op string, err error) error {
	de := domain.AsError(err)
	metrics.LedgerOperations.WithLabelValues(op, metrics.OutcomeRejected).Inc()
	uc.logger.Info("ledger operation rejected",
		zap.String("operation", op),
		zap.String("code", string(de.Code)),
	)
	return de
}
