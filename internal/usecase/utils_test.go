package usecase

import (
	"fmt"
	"testing"

	"ledger-service/internal/domain"
	"ledger-service/pkg/xerrors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestClassifyPostgresErrors(t *testing.T) {
	cases := []struct {
		code      string
		retryable bool
	}{
		{xerrors.PGSerializationFailure, true},
		{xerrors.PGDeadlockDetected, true},
		{xerrors.PGLockNotAvailable, true},
		{xerrors.PGQueryCanceled, true},
		{xerrors.PGUniqueViolation, false},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			err := fmt.Errorf("failed to lock account: %w", &pgconn.PgError{Code: tc.code})
			de := classify(err)
			assert.Equal(t, domain.CodePersistenceError, de.Code)
			assert.Equal(t, tc.retryable, de.Retryable)
			assert.False(t, isBusinessRejection(de))
		})
	}

	// typed errors pass through unchanged
	assert.Same(t, domain.ErrInsufficientFunds, classify(domain.ErrInsufficientFunds))
}
