package usecase

import (
	"context"

	"ledger-service/internal/domain"
	"ledger-service/internal/repository"

	"go.uber.org/zap"
)

type BranchUsecase struct {
	repo      repository.BranchRepository
	allocator repository.SequenceAllocator
	logger    *zap.Logger
}

func NewBranchUsecase(repo repository.BranchRepository, allocator repository.SequenceAllocator, logger *zap.Logger) *BranchUsecase {
	return &BranchUsecase{repo: repo, allocator: allocator, logger: logger}
}

// Add registers a branch under a newly allocated IFSC code.
func (uc *BranchUsecase) Add(ctx context.Context, in domain.BranchInput) (*domain.Branch, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	v, err := allocate(ctx, uc.allocator, domain.IFSCSequence)
	if err != nil {
		uc.logger.Error("ifsc allocation failed", zap.Error(err))
		return nil, err
	}

	b := &domain.Branch{
		IFSC:       domain.IFSCFromSequence(v),
		BranchName: in.BranchName,
		State:      in.State,
		Country:    in.Country,
	}
	if err := uc.repo.Create(ctx, b); err != nil {
		return nil, classify(err)
	}
	uc.logger.Info("branch added", zap.String("ifsc", b.IFSC), zap.String("branch_name", b.BranchName))
	return b, nil
}

func (uc *BranchUsecase) Get(ctx context.Context, ifsc string) (*domain.Branch, error) {
	b, err := uc.repo.GetByIFSC(ctx, ifsc)
	if err != nil {
		return nil, classify(err)
	}
	return b, nil
}

func (uc *BranchUsecase) List(ctx context.Context) ([]*domain.Branch, error) {
	list, err := uc.repo.ListActive(ctx)
	if err != nil {
		return nil, classify(err)
	}
	if list == nil {
		list = []*domain.Branch{}
	}
	return list, nil
}

func (uc *BranchUsecase) Update(ctx context.Context, ifsc string, in domain.BranchInput) (*domain.Branch, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	b, err := uc.repo.Update(ctx, ifsc, in)
	if err != nil {
		return nil, classify(err)
	}
	return b, nil
}

func (uc *BranchUsecase) Deactivate(ctx context.Context, ifsc string) error {
	if err := uc.repo.Deactivate(ctx, ifsc); err != nil {
		return classify(err)
	}
	uc.logger.Info("branch deactivated", zap.String("ifsc", ifsc))
	return nil
}
