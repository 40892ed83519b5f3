package usecase

import (
	"context"

	"ledger-service/internal/domain"
	"ledger-service/internal/repository"

	"go.uber.org/zap"
)

type AccountTypeUsecase struct {
	repo   repository.AccountTypeRepository
	logger *zap.Logger
}

func NewAccountTypeUsecase(repo repository.AccountTypeRepository, logger *zap.Logger) *AccountTypeUsecase {
	return &AccountTypeUsecase{repo: repo, logger: logger}
}

func (uc *AccountTypeUsecase) Create(ctx context.Context, t *domain.AccountType) (*domain.AccountType, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, t); err != nil {
		return nil, classify(err)
	}
	uc.logger.Info("account type created", zap.Int64("type_id", t.TypeID), zap.String("type_name", t.TypeName))
	return t, nil
}

func (uc *AccountTypeUsecase) Get(ctx context.Context, typeID int64) (*domain.AccountType, error) {
	t, err := uc.repo.GetByID(ctx, typeID)
	if err != nil {
		return nil, classify(err)
	}
	return t, nil
}

func (uc *AccountTypeUsecase) List(ctx context.Context) ([]*domain.AccountType, error) {
	list, err := uc.repo.ListActive(ctx)
	if err != nil {
		return nil, classify(err)
	}
	if list == nil {
		list = []*domain.AccountType{}
	}
	return list, nil
}

// Update changes name and minimum balance. A raised minimum applies to the
// next debit; existing balances below it are not touched.
func (uc *AccountTypeUsecase) Update(ctx context.Context, t *domain.AccountType) (*domain.AccountType, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := uc.repo.Update(ctx, t); err != nil {
		return nil, classify(err)
	}
	return t, nil
}

func (uc *AccountTypeUsecase) Deactivate(ctx context.Context, typeID int64) error {
	if err := uc.repo.Deactivate(ctx, typeID); err != nil {
		return classify(err)
	}
	uc.logger.Info("account type deactivated", zap.Int64("type_id", typeID))
	return nil
}
