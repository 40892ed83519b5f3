package usecase

import (
	"context"

	"ledger-service/internal/domain"
	"ledger-service/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type AccountUsecase struct {
	store     repository.Store
	allocator repository.SequenceAllocator
	history   *HistoryCache
	logger    *zap.Logger
}

func NewAccountUsecase(
	store repository.Store,
	allocator repository.SequenceAllocator,
	history *HistoryCache,
	logger *zap.Logger,
) *AccountUsecase {
	if allocator == nil {
		allocator = store.Sequences()
	}
	return &AccountUsecase{store: store, allocator: allocator, history: history, logger: logger}
}

// CreateAccount opens an account with a freshly allocated number. The opening
// balance is not checked against any minimum balance. Linking a form consumes
// it: the form must still be awaiting approval and is approved with the new
// account in the same transaction, so a form backs at most one account.
func (uc *AccountUsecase) CreateAccount(ctx context.Context, in domain.AccountCreate) (*domain.Account, error) {
	if err := domain.ValidateBalance(in.InitialBalance); err != nil {
		return nil, err
	}

	number, err := uc.allocateNumber(ctx)
	if err != nil {
		return nil, err
	}

	account := &domain.Account{AccountNumber: number, Balance: in.InitialBalance, FormID: in.FormID}
	err = uc.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if in.FormID == nil {
			return tx.InsertAccount(ctx, account)
		}
		form, err := tx.LockForm(ctx, *in.FormID)
		if err != nil {
			return err
		}
		if form.Status != domain.FormFilled || form.AccountNumber != "" {
			return domain.Invalid("form is not awaiting approval")
		}
		if err := tx.InsertAccount(ctx, account); err != nil {
			return err
		}
		return tx.MarkFormApproved(ctx, form.FormID, number)
	})
	if err != nil {
		return nil, classify(err)
	}

	uc.logger.Info("account created",
		zap.String("account", number),
		zap.String("initial_balance", in.InitialBalance.StringFixed(domain.MoneyScale)),
	)
	return account, nil
}

func (uc *AccountUsecase) allocateNumber(ctx context.Context) (string, error) {
	v, err := allocate(ctx, uc.allocator, domain.AccountNumberSequence)
	if err != nil {
		uc.logger.Error("account number allocation failed", zap.Error(err))
		return "", err
	}
	return domain.AccountNumberFromSequence(v), nil
}

func (uc *AccountUsecase) GetAccount(ctx context.Context, accountNumber string) (*domain.Account, error) {
	a, err := uc.store.Accounts().GetByNumber(ctx, accountNumber)
	if err != nil {
		return nil, classify(err)
	}
	return a, nil
}

// MinBalanceFor is the collaborator lookup: account -> form -> type -> min balance.
func (uc *AccountUsecase) MinBalanceFor(ctx context.Context, accountNumber string) (decimal.Decimal, error) {
	v, err := uc.store.Accounts().MinBalanceFor(ctx, accountNumber)
	if err != nil {
		return decimal.Zero, classify(err)
	}
	return v, nil
}

// History lists an account's transactions newest first, through the cache.
func (uc *AccountUsecase) History(ctx context.Context, accountNumber string, page domain.Page) ([]*domain.Transaction, error) {
	page = page.Normalize()
	if _, err := uc.GetAccount(ctx, accountNumber); err != nil {
		return nil, err
	}

	txs, key, hit := uc.history.Lookup(ctx, accountNumber, page)
	if hit {
		return txs, nil
	}

	txs, err := uc.store.Transactions().ListByAccount(ctx, accountNumber, page)
	if err != nil {
		return nil, classify(err)
	}
	uc.history.Store(ctx, key, txs)
	return txs, nil
}

func (uc *AccountUsecase) ListTransactions(ctx context.Context, page domain.Page) ([]*domain.Transaction, error) {
	txs, err := uc.store.Transactions().List(ctx, page.Normalize())
	if err != nil {
		return nil, classify(err)
	}
	return txs, nil
}

// Deactivate soft-deletes an account; the ledger treats it as missing from then on.
func (uc *AccountUsecase) Deactivate(ctx context.Context, accountNumber string) error {
	if err := uc.store.Accounts().Deactivate(ctx, accountNumber); err != nil {
		return classify(err)
	}
	uc.history.Invalidate(ctx, accountNumber)
	uc.logger.Info("account deactivated", zap.String("account", accountNumber))
	return nil
}
