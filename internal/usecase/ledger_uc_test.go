package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ledger-service/internal/domain"
	"ledger-service/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLedgerScenario(t *testing.T) {
	f := newFixture(t, LedgerConfig{}, nil)
	ctx := context.Background()

	a := f.openAccount(t, "1000", "100")
	b := f.openAccount(t, "200", "0")

	_, err := f.ledger.Withdraw(ctx, a, dec("950"))
	assert.ErrorIs(t, err, domain.ErrMinimumBalanceViolation)
	assert.True(t, f.balance(t, a).Equal(dec("1000")))

	p, err := f.ledger.Withdraw(ctx, a, dec("850"))
	require.NoError(t, err)
	assert.True(t, p.Balances[a].Equal(dec("150")))
	assert.True(t, f.balance(t, a).Equal(dec("150")))

	_, err = f.ledger.Transfer(ctx, a, b, dec("100"))
	assert.ErrorIs(t, err, domain.ErrMinimumBalanceViolation)
	assert.True(t, f.balance(t, a).Equal(dec("150")))
	assert.True(t, f.balance(t, b).Equal(dec("200")))

	before := f.rowCount(t, b)
	p, err = f.ledger.Deposit(ctx, b, dec("50"))
	require.NoError(t, err)
	assert.Equal(t, domain.TxDeposit, p.Transaction.TransactionType)
	assert.True(t, f.balance(t, b).Equal(dec("250")))
	assert.Equal(t, before+1, f.rowCount(t, b))
}

func TestInvalidAmountChangesNothing(t *testing.T) {
	f := newFixture(t, LedgerConfig{}, nil)
	ctx := context.Background()
	a := f.openAccount(t, "100", "0")
	b := f.openAccount(t, "100", "0")

	for _, amount := range []string{"0", "-1", "0.001"} {
		_, err := f.ledger.Deposit(ctx, a, dec(amount))
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
		_, err = f.ledger.Withdraw(ctx, a, dec(amount))
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
		_, err = f.ledger.Transfer(ctx, a, b, dec(amount))
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	}

	assert.True(t, f.balance(t, a).Equal(dec("100")))
	assert.Equal(t, int64(0), f.rowCount(t, a))
	assert.Equal(t, 0, f.publisher.count())
}

func TestInsufficientFunds(t *testing.T) {
	f := newFixture(t, LedgerConfig{}, nil)
	a := f.openAccount(t, "50", "0")

	_, err := f.ledger.Withdraw(context.Background(), a, dec("50.01"))
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	p, err := f.ledger.Withdraw(context.Background(), a, dec("50"))
	require.NoError(t, err)
	assert.True(t, p.Balances[a].IsZero())
}

func TestUnknownAccounts(t *testing.T) {
	f := newFixture(t, LedgerConfig{}, nil)
	ctx := context.Background()
	a := f.openAccount(t, "100", "0")

	_, err := f.ledger.Deposit(ctx, "99999999", dec("1"))
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
	_, err = f.ledger.Transfer(ctx, a, "99999999", dec("1"))
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
	_, err = f.ledger.Transfer(ctx, "99999999", a, dec("1"))
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
	assert.True(t, f.balance(t, a).Equal(dec("100")))

	require.NoError(t, f.accounts.Deactivate(ctx, a))
	_, err = f.ledger.Deposit(ctx, a, dec("1"))
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestMissingPolicyLinkIsNotDefaulted(t *testing.T) {
	f := newFixture(t, LedgerConfig{}, nil)
	ctx := context.Background()

	orphan, err := f.accounts.CreateAccount(ctx, domain.AccountCreate{InitialBalance: dec("100")})
	require.NoError(t, err)

	_, err = f.ledger.Withdraw(ctx, orphan.AccountNumber, dec("10"))
	assert.ErrorIs(t, err, domain.ErrPolicyResolution)
	assert.True(t, f.balance(t, orphan.AccountNumber).Equal(dec("100")))

	// deposits never consult the policy
	_, err = f.ledger.Deposit(ctx, orphan.AccountNumber, dec("10"))
	assert.NoError(t, err)
}

func TestTransferConservesMoney(t *testing.T) {
	f := newFixture(t, LedgerConfig{}, nil)
	ctx := context.Background()
	a := f.openAccount(t, "500.25", "100")
	b := f.openAccount(t, "10", "0")

	p, err := f.ledger.Transfer(ctx, a, b, dec("400.25"))
	require.NoError(t, err)

	assert.True(t, f.balance(t, a).Equal(dec("100")))
	assert.True(t, f.balance(t, b).Equal(dec("410.25")))
	assert.True(t, p.Balances[a].Add(p.Balances[b]).Equal(dec("510.25")))
	assert.Equal(t, a, p.Transaction.FromAccount)
	assert.Equal(t, b, p.Transaction.ToAccount)
	assert.Equal(t, 1, f.publisher.count())
}

func TestCreditBeyondNumericRangeIsRejected(t *testing.T) {
	f := newFixture(t, LedgerConfig{}, nil)
	ctx := context.Background()
	top := f.openAccount(t, "9999999999999999.99", "0")
	src := f.openAccount(t, "10000", "0")

	_, err := f.ledger.Deposit(ctx, top, dec("5000"))
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = f.ledger.Transfer(ctx, src, top, dec("0.01"))
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	assert.True(t, f.balance(t, top).Equal(dec("9999999999999999.99")))
	assert.True(t, f.balance(t, src).Equal(dec("10000")))
	assert.Equal(t, int64(0), f.rowCount(t, top))
	assert.Equal(t, 0, f.publisher.count())

	// debiting the full account is still fine
	_, err = f.ledger.Withdraw(ctx, top, dec("9999999999999999.99"))
	require.NoError(t, err)
	assert.True(t, f.balance(t, top).IsZero())
}

func TestSelfTransfer(t *testing.T) {
	t.Run("allowed by default", func(t *testing.T) {
		f := newFixture(t, LedgerConfig{}, nil)
		a := f.openAccount(t, "300", "100")

		p, err := f.ledger.Transfer(context.Background(), a, a, dec("50"))
		require.NoError(t, err)
		assert.True(t, p.Balances[a].Equal(dec("300")))
		assert.True(t, f.balance(t, a).Equal(dec("300")))
		assert.Equal(t, int64(1), f.rowCount(t, a))
	})

	t.Run("still checked against the minimum balance", func(t *testing.T) {
		f := newFixture(t, LedgerConfig{}, nil)
		a := f.openAccount(t, "300", "100")

		_, err := f.ledger.Transfer(context.Background(), a, a, dec("250"))
		assert.ErrorIs(t, err, domain.ErrMinimumBalanceViolation)
	})

	t.Run("rejected when configured", func(t *testing.T) {
		f := newFixture(t, LedgerConfig{RejectSelfTransfer: true}, nil)
		a := f.openAccount(t, "300", "100")

		_, err := f.ledger.Transfer(context.Background(), a, a, dec("50"))
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
		assert.Equal(t, int64(0), f.rowCount(t, a))
	})
}

func TestConcurrentWithdrawalsNeverBreachMinimum(t *testing.T) {
	f := newFixture(t, LedgerConfig{OpTimeout: 30 * time.Second}, nil)
	a := f.openAccount(t, "1000", "100")

	const k = 25
	var (
		wg         sync.WaitGroup
		succeeded  int32
		unexpected []error
		mu         sync.Mutex
	)
	for i := 0; i < k; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.ledger.Withdraw(context.Background(), a, dec("100"))
			if err == nil {
				atomic.AddInt32(&succeeded, 1)
				return
			}
			if !errors.Is(err, domain.ErrMinimumBalanceViolation) && !errors.Is(err, domain.ErrInsufficientFunds) {
				mu.Lock()
				unexpected = append(unexpected, err)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Empty(t, unexpected)
	assert.Equal(t, int32(9), succeeded) // floor((1000-100)/100)
	assert.True(t, f.balance(t, a).Equal(dec("100")))
	assert.Equal(t, int64(9), f.rowCount(t, a))
}

func TestConcurrentOpposingTransfersConserveTotal(t *testing.T) {
	f := newFixture(t, LedgerConfig{OpTimeout: 30 * time.Second}, nil)
	a := f.openAccount(t, "1000", "0")
	b := f.openAccount(t, "1000", "0")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = f.ledger.Transfer(context.Background(), a, b, dec("7"))
		}()
		go func() {
			defer wg.Done()
			_, _ = f.ledger.Transfer(context.Background(), b, a, dec("3"))
		}()
	}
	wg.Wait()

	total := f.balance(t, a).Add(f.balance(t, b))
	assert.True(t, total.Equal(dec("2000")))
	assert.True(t, f.balance(t, a).Equal(dec("920")))
}

// flakyStore fails the first n transactions with a serialization failure.
type flakyStore struct {
	repository.Store
	failures int32
	calls    int32
}

func (s *flakyStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	if atomic.AddInt32(&s.calls, 1) <= s.failures {
		return &pgconn.PgError{Code: "40001", Message: "could not serialize access"}
	}
	return s.Store.WithinTx(ctx, fn)
}

func TestLockConflictsAreRetried(t *testing.T) {
	f := newFixture(t, LedgerConfig{}, nil)
	a := f.openAccount(t, "100", "0")

	store := &flakyStore{Store: f.store, failures: 2}
	ledger := NewLedgerUsecase(store, nil, nil, zap.NewNop(), LedgerConfig{MaxAttempts: 3})

	_, err := ledger.Deposit(context.Background(), a, dec("5"))
	require.NoError(t, err)
	assert.Equal(t, int32(3), store.calls)
	assert.True(t, f.balance(t, a).Equal(dec("105")))
}

func TestExhaustedRetriesSurfaceAsPersistenceError(t *testing.T) {
	f := newFixture(t, LedgerConfig{}, nil)
	a := f.openAccount(t, "100", "0")

	store := &flakyStore{Store: f.store, failures: 10}
	ledger := NewLedgerUsecase(store, nil, nil, zap.NewNop(), LedgerConfig{MaxAttempts: 3})

	_, err := ledger.Deposit(context.Background(), a, dec("5"))
	require.ErrorIs(t, err, domain.ErrPersistence)
	assert.True(t, domain.AsError(err).Retryable)
	assert.Equal(t, int32(3), store.calls)
	assert.True(t, f.balance(t, a).Equal(dec("100")))
}

func TestOperationTimeoutIsRetryablePersistenceError(t *testing.T) {
	f := newFixture(t, LedgerConfig{}, nil)
	a := f.openAccount(t, "100", "0")
	ledger := NewLedgerUsecase(f.store, nil, nil, zap.NewNop(), LedgerConfig{MaxAttempts: 3, OpTimeout: 50 * time.Millisecond})

	// hold the account's arena lock so the operation cannot start
	release, err := ledger.arena.Acquire(context.Background(), a)
	require.NoError(t, err)
	defer release()

	_, err = ledger.Withdraw(context.Background(), a, dec("1"))
	require.ErrorIs(t, err, domain.ErrPersistence)
	assert.True(t, domain.AsError(err).Retryable)
}

func TestPublishFailureDoesNotFailCommittedPosting(t *testing.T) {
	f := newFixture(t, LedgerConfig{}, nil)
	a := f.openAccount(t, "100", "0")
	f.publisher.err = errors.New("broker down")

	_, err := f.ledger.Deposit(context.Background(), a, dec("1"))
	require.NoError(t, err)
	assert.True(t, f.balance(t, a).Equal(dec("101")))
	assert.Equal(t, 1, f.publisher.count())
}
