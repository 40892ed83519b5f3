package usecase

import (
	"context"

	"ledger-service/internal/domain"
	"ledger-service/internal/repository"

	"go.uber.org/zap"
)

// FormUsecase covers only the part of the application workflow that touches
// the ledger: a form names an account type, and approving it opens the account.
type FormUsecase struct {
	store    repository.Store
	accounts *AccountUsecase
	logger   *zap.Logger
}

func NewFormUsecase(store repository.Store, accounts *AccountUsecase, logger *zap.Logger) *FormUsecase {
	return &FormUsecase{store: store, accounts: accounts, logger: logger}
}

func (uc *FormUsecase) Submit(ctx context.Context, in domain.FormInput) (*domain.ApplicationForm, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if _, err := uc.store.AccountTypes().GetByID(ctx, in.AccountTypeID); err != nil {
		return nil, classify(err)
	}
	if _, err := uc.store.Branches().GetByIFSC(ctx, in.IFSC); err != nil {
		return nil, classify(err)
	}

	f := &domain.ApplicationForm{
		FullName:      in.FullName,
		Email:         in.Email,
		AccountTypeID: in.AccountTypeID,
		IFSC:          in.IFSC,
		Status:        domain.FormFilled,
	}
	if err := uc.store.Forms().Create(ctx, f); err != nil {
		return nil, classify(err)
	}
	uc.logger.Info("application form submitted", zap.Int64("form_id", f.FormID))
	return f, nil
}

func (uc *FormUsecase) Get(ctx context.Context, formID int64) (*domain.ApplicationForm, error) {
	f, err := uc.store.Forms().GetByID(ctx, formID)
	if err != nil {
		return nil, classify(err)
	}
	return f, nil
}

// Approve opens the account for a filled form with the account type's minimum
// balance as opening balance, links it to the form and marks the form
// approved, all in one transaction.
func (uc *FormUsecase) Approve(ctx context.Context, formID int64) (*domain.Account, error) {
	f, err := uc.Get(ctx, formID)
	if err != nil {
		return nil, err
	}
	if f.Status != domain.FormFilled {
		return nil, domain.Invalid("form is not awaiting approval")
	}

	number, err := uc.accounts.allocateNumber(ctx)
	if err != nil {
		return nil, err
	}

	var account *domain.Account
	err = uc.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		locked, err := tx.LockForm(ctx, formID)
		if err != nil {
			return err
		}
		// re-checked under the lock: a concurrent approval may have won
		if locked.Status != domain.FormFilled {
			return domain.Invalid("form is not awaiting approval")
		}
		at, err := tx.GetAccountType(ctx, locked.AccountTypeID)
		if err != nil {
			return err
		}

		account = &domain.Account{AccountNumber: number, Balance: at.MinBalance, FormID: &locked.FormID}
		if err := tx.InsertAccount(ctx, account); err != nil {
			return err
		}
		return tx.MarkFormApproved(ctx, formID, number)
	})
	if err != nil {
		return nil, classify(err)
	}

	uc.logger.Info("application form approved",
		zap.Int64("form_id", formID),
		zap.String("account", number),
	)
	return account, nil
}
