package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"ledger-service/internal/domain"
	sqlitestore "ledger-service/internal/repository/sqlite"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingPublisher struct {
	mu       sync.Mutex
	postings []*domain.Posting
	err      error
}

func (p *recordingPublisher) PublishPosting(_ context.Context, posting *domain.Posting) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.postings = append(p.postings, posting)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.postings)
}

type fixture struct {
	store     *sqlitestore.Store
	ledger    *LedgerUsecase
	accounts  *AccountUsecase
	types     *AccountTypeUsecase
	branches  *BranchUsecase
	forms     *FormUsecase
	publisher *recordingPublisher
	seq       int
}

func newFixture(t *testing.T, cfg LedgerConfig, rdb *redis.Client) *fixture {
	t.Helper()
	logger := zap.NewNop()

	store, err := sqlitestore.Open(filepath.Join(t.TempDir(), "ledger.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))

	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 3
	}
	history := NewHistoryCache(rdb, 0, logger)
	publisher := &recordingPublisher{}
	accounts := NewAccountUsecase(store, nil, history, logger)

	return &fixture{
		store:     store,
		ledger:    NewLedgerUsecase(store, history, publisher, logger, cfg),
		accounts:  accounts,
		types:     NewAccountTypeUsecase(store.AccountTypes(), logger),
		branches:  NewBranchUsecase(store.Branches(), store.Sequences(), logger),
		forms:     NewFormUsecase(store, accounts, logger),
		publisher: publisher,
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// filledForm creates an account type with the given minimum balance, a branch
// and a submitted form for it.
func (f *fixture) filledForm(t *testing.T, minBalance string) *domain.ApplicationForm {
	t.Helper()
	ctx := context.Background()
	f.seq++

	at, err := f.types.Create(ctx, &domain.AccountType{
		TypeName:   fmt.Sprintf("type-%d", f.seq),
		MinBalance: dec(minBalance),
	})
	require.NoError(t, err)

	br, err := f.branches.Add(ctx, domain.BranchInput{BranchName: "Main", State: "KA", Country: "IN"})
	require.NoError(t, err)

	form, err := f.forms.Submit(ctx, domain.FormInput{
		FullName:      fmt.Sprintf("Holder %d", f.seq),
		Email:         fmt.Sprintf("holder%d@example.com", f.seq),
		AccountTypeID: at.TypeID,
		IFSC:          br.IFSC,
	})
	require.NoError(t, err)
	return form
}

// openAccount creates an account linked to a fresh account type.
func (f *fixture) openAccount(t *testing.T, balance, minBalance string) string {
	t.Helper()
	form := f.filledForm(t, minBalance)
	a, err := f.accounts.CreateAccount(context.Background(), domain.AccountCreate{
		InitialBalance: dec(balance),
		FormID:         &form.FormID,
	})
	require.NoError(t, err)
	return a.AccountNumber
}

func (f *fixture) balance(t *testing.T, number string) decimal.Decimal {
	t.Helper()
	a, err := f.accounts.GetAccount(context.Background(), number)
	require.NoError(t, err)
	return a.Balance
}

func (f *fixture) rowCount(t *testing.T, number string) int64 {
	t.Helper()
	n, err := f.store.Transactions().CountByAccount(context.Background(), number)
	require.NoError(t, err)
	return n
}
