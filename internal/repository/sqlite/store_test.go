package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"ledger-service/internal/domain"
	"ledger-service/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "ledger.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// seedLinkedAccount creates type -> branch -> form -> account and returns the account number.
func seedLinkedAccount(t *testing.T, s *Store, number string, balance, minBalance string) string {
	t.Helper()
	ctx := context.Background()

	at := &domain.AccountType{TypeName: "type-" + number, MinBalance: dec(minBalance)}
	require.NoError(t, s.AccountTypes().Create(ctx, at))

	br := &domain.Branch{IFSC: "SBIFSC-" + number, BranchName: "Main"}
	require.NoError(t, s.Branches().Create(ctx, br))

	form := &domain.ApplicationForm{
		FullName: "Holder " + number, Email: number + "@example.com",
		AccountTypeID: at.TypeID, IFSC: br.IFSC, Status: domain.FormFilled,
	}
	require.NoError(t, s.Forms().Create(ctx, form))

	err := s.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		return tx.InsertAccount(ctx, &domain.Account{AccountNumber: number, Balance: dec(balance), FormID: &form.FormID})
	})
	require.NoError(t, err)
	return number
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Migrate(context.Background()))
	require.NoError(t, s.Ping(context.Background()))
}

func TestSequenceStartsAtConfiguredValue(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	v, err := s.Sequences().Next(ctx, domain.AccountNumberSequence.Name)
	require.NoError(t, err)
	assert.Equal(t, int64(11235813), v)

	v, err = s.Sequences().Next(ctx, domain.AccountNumberSequence.Name)
	require.NoError(t, err)
	assert.Equal(t, int64(11235814), v)

	v, err = s.Sequences().Next(ctx, domain.IFSCSequence.Name)
	require.NoError(t, err)
	assert.Equal(t, int64(5993), v)
}

func TestSequenceConcurrentCallersGetDistinctContiguousValues(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base, err := s.Sequences().Next(ctx, domain.AccountNumberSequence.Name)
	require.NoError(t, err)

	const n = 40
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		got  []int64
		errs []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := s.Sequences().Next(ctx, domain.AccountNumberSequence.Name)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			got = append(got, v)
		}()
	}
	wg.Wait()

	require.Empty(t, errs)
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	for i, v := range got {
		assert.Equal(t, base+int64(i)+1, v)
	}
}

func TestUnknownSequenceIsAllocationError(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Sequences().Next(context.Background(), "NoSuchSequence")
	assert.ErrorIs(t, err, domain.ErrAllocation)
}

func TestMinBalanceResolution(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedLinkedAccount(t, s, "1001", "500", "100")

	minBal, err := s.Accounts().MinBalanceFor(ctx, "1001")
	require.NoError(t, err)
	assert.True(t, minBal.Equal(dec("100")))

	err = s.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		return tx.InsertAccount(ctx, &domain.Account{AccountNumber: "orphan", Balance: dec("10")})
	})
	require.NoError(t, err)

	_, err = s.Accounts().MinBalanceFor(ctx, "orphan")
	assert.ErrorIs(t, err, domain.ErrPolicyResolution)

	_, err = s.Accounts().MinBalanceFor(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if err := tx.InsertAccount(ctx, &domain.Account{AccountNumber: "ghost", Balance: dec("1")}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = s.Accounts().GetByNumber(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestLockAdjustAndAppend(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedLinkedAccount(t, s, "2001", "100.10", "0")
	seedLinkedAccount(t, s, "2000", "5", "0")

	err := s.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		locked, err := tx.LockAccounts(ctx, "2001", "2000", "2001", "absent")
		require.NoError(t, err)
		assert.Len(t, locked, 2)
		assert.NotContains(t, locked, "absent")

		bal, err := tx.AdjustBalance(ctx, "2001", dec("-0.10"))
		require.NoError(t, err)
		assert.Equal(t, "100.00", bal.StringFixed(2))

		_, err = tx.AdjustBalance(ctx, "2000", dec("0.10"))
		require.NoError(t, err)

		return tx.AppendTransaction(ctx, &domain.Transaction{
			FromAccount: "2001", ToAccount: "2000", Amount: dec("0.10"),
			TransactionDate: time.Now().UTC(), TransactionType: domain.TxTransfer,
		})
	})
	require.NoError(t, err)

	a, err := s.Accounts().GetByNumber(ctx, "2000")
	require.NoError(t, err)
	assert.True(t, a.Balance.Equal(dec("5.10")))

	txs, err := s.Transactions().ListByAccount(ctx, "2000", domain.Page{})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "2001", txs[0].FromAccount)
	assert.Equal(t, domain.TxTransfer, txs[0].TransactionType)
}

func TestTransactionsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedLinkedAccount(t, s, "3001", "0", "0")

	for i := 1; i <= 3; i++ {
		amount := decimal.NewFromInt(int64(i))
		err := s.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
			return tx.AppendTransaction(ctx, &domain.Transaction{
				ToAccount: "3001", Amount: amount,
				TransactionDate: time.Now().UTC(), TransactionType: domain.TxDeposit,
			})
		})
		require.NoError(t, err)
	}

	txs, err := s.Transactions().ListByAccount(ctx, "3001", domain.Page{Limit: 2})
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.True(t, txs[0].Amount.Equal(dec("3")))
	assert.Empty(t, txs[0].FromAccount)

	n, err := s.Transactions().CountByAccount(ctx, "3001")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestDeactivatedAccountIsInvisible(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedLinkedAccount(t, s, "4001", "10", "0")

	require.NoError(t, s.Accounts().Deactivate(ctx, "4001"))
	_, err := s.Accounts().GetByNumber(ctx, "4001")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
	assert.ErrorIs(t, s.Accounts().Deactivate(ctx, "4001"), domain.ErrAccountNotFound)
}

func TestAccountTypeAdministration(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	at := &domain.AccountType{TypeName: "Savings", MinBalance: dec("1000")}
	require.NoError(t, s.AccountTypes().Create(ctx, at))

	dup := &domain.AccountType{TypeName: "Savings", MinBalance: dec("0")}
	assert.ErrorIs(t, s.AccountTypes().Create(ctx, dup), domain.ErrInvalidRequest)

	at.MinBalance = dec("500")
	require.NoError(t, s.AccountTypes().Update(ctx, at))
	got, err := s.AccountTypes().GetByID(ctx, at.TypeID)
	require.NoError(t, err)
	assert.True(t, got.MinBalance.Equal(dec("500")))

	require.NoError(t, s.AccountTypes().Deactivate(ctx, at.TypeID))
	list, err := s.AccountTypes().ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAdjustBalanceRejectsOutOfRangeResult(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	n := seedLinkedAccount(t, s, "11235813", "9999999999999999.00", "0")

	err := s.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		_, err := tx.AdjustBalance(ctx, n, dec("1"))
		return err
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	a, err := s.Accounts().GetByNumber(ctx, n)
	require.NoError(t, err)
	assert.True(t, a.Balance.Equal(dec("9999999999999999")))
}
