package usecase

import (
	"context"
	"errors"

	"ledger-service/internal/domain"
	"ledger-service/internal/metrics"
	"ledger-service/internal/repository"
	"ledger-service/pkg/xerrors"
)

// allocate draws the next value of seq and records the outcome.
func allocate(ctx context.Context, alloc repository.SequenceAllocator, seq domain.Sequence) (int64, error) {
	v, err := alloc.Next(ctx, seq.Name)
	if err != nil {
		metrics.SequenceAllocations.WithLabelValues(seq.Name, "error").Inc()
		if errors.Is(err, domain.ErrAllocation) {
			return 0, err
		}
		return 0, domain.Wrap(domain.ErrAllocation, err)
	}
	metrics.SequenceAllocations.WithLabelValues(seq.Name, "ok").Inc()
	return v, nil
}

// classify turns any error into a typed ledger error. Lock conflicts and
// timeouts become retryable PersistenceErrors.
func classify(err error) *domain.Error {
	var de *domain.Error
	if errors.As(err, &de) {
		return de
	}
	return domain.PersistenceFailure(err, xerrors.IsRetryable(err))
}

// isBusinessRejection reports errors caused by the request rather than the system.
func isBusinessRejection(de *domain.Error) bool {
	switch de.Code {
	case domain.CodeInvalidAmount, domain.CodeInvalidRequest,
		domain.CodeAccountNotFound, domain.CodeAccountTypeNotFound,
		domain.CodeBranchNotFound, domain.CodeFormNotFound,
		domain.CodeInsufficientFunds, domain.CodeMinimumBalanceViolation:
		return true
	}
	return false
}
