package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"ledger-service/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEnv(t *testing.T) {
	t.Helper()
	mr := miniredis.RunT(t)
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "ledger.db"))
	t.Setenv("REDIS_ADDR", mr.Addr())
	t.Setenv("SEQUENCE_BACKEND", "store")
	t.Setenv("EVENT_BACKEND", "none")
	t.Setenv("LOG_LEVEL", "error")
}

func run(t *testing.T, args ...string) []byte {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	return out.Bytes()
}

func TestAdminCommandsAllocateFromSequences(t *testing.T) {
	setupEnv(t)

	var br domain.Branch
	require.NoError(t, json.Unmarshal(run(t, "branch", "add", "--name", "Main", "--state", "KA", "--country", "IN"), &br))
	assert.Equal(t, "SBIFSC5993", br.IFSC)

	var at domain.AccountType
	require.NoError(t, json.Unmarshal(run(t, "account-type", "create", "--name", "Savings", "--min-balance", "100"), &at))
	assert.True(t, at.MinBalance.Equal(decimal.NewFromInt(100)))

	var acct domain.Account
	require.NoError(t, json.Unmarshal(run(t, "account", "create", "--initial-balance", "25.50"), &acct))
	assert.Equal(t, "11235813", acct.AccountNumber)
	assert.True(t, acct.Balance.Equal(decimal.RequireFromString("25.50")))
}

func TestMigrateIsRepeatable(t *testing.T) {
	setupEnv(t)
	run(t, "migrate")
	run(t, "migrate")
}

func TestFormApproveRejectsBadID(t *testing.T) {
	setupEnv(t)
	rootCmd.SetArgs([]string{"form", "approve", "abc"})
	err := rootCmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}
