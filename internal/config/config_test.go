package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"LEDGER_CONFIG", "HTTP_ADDR", "STORE_DRIVER", "SQLITE_PATH", "DB_HOST", "DB_MAX_CONNS",
		"SEQUENCE_BACKEND", "EVENT_BACKEND", "KAFKA_BROKERS", "LEDGER_MAX_ATTEMPTS",
		"LEDGER_OP_TIMEOUT", "LEDGER_REJECT_SELF_TRANSFER", "HISTORY_CACHE_TTL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8023", cfg.HTTPAddr)
	assert.Equal(t, "postgres", cfg.StoreDriver)
	assert.Equal(t, 3, cfg.LedgerMaxAttempts)
	assert.Equal(t, 5*time.Second, cfg.LedgerOpTimeout)
	assert.False(t, cfg.RejectSelfTransfer)
	assert.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, int32(50), cfg.DB.MaxConns)
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "SQLite")
	t.Setenv("LEDGER_MAX_ATTEMPTS", "5")
	t.Setenv("LEDGER_OP_TIMEOUT", "750ms")
	t.Setenv("LEDGER_REJECT_SELF_TRANSFER", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.StoreDriver)
	assert.Equal(t, 5, cfg.LedgerMaxAttempts)
	assert.Equal(t, 750*time.Millisecond, cfg.LedgerOpTimeout)
	assert.True(t, cfg.RejectSelfTransfer)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "ledger.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
http_addr = ":9000"
store_driver = "sqlite"
sqlite_path = "/var/lib/ledger.db"
ledger_max_attempts = 4
kafka_brokers = ["a:1", "b:2"]
`), 0o600))
	t.Setenv("LEDGER_CONFIG", path)
	t.Setenv("HTTP_ADDR", ":9100")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9100", cfg.HTTPAddr)
	assert.Equal(t, "sqlite", cfg.StoreDriver)
	assert.Equal(t, "/var/lib/ledger.db", cfg.SQLitePath)
	assert.Equal(t, 4, cfg.LedgerMaxAttempts)
	assert.Equal(t, []string{"a:1", "b:2"}, cfg.KafkaBrokers)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string][2]string{
		"bad driver":    {"STORE_DRIVER", "mysql"},
		"bad attempts":  {"LEDGER_MAX_ATTEMPTS", "many"},
		"zero attempts": {"LEDGER_MAX_ATTEMPTS", "0"},
		"bad timeout":   {"LEDGER_OP_TIMEOUT", "soon"},
		"bad flag":      {"LEDGER_REJECT_SELF_TRANSFER", "perhaps"},
		"bad events":    {"EVENT_BACKEND", "nats"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestNewLogger(t *testing.T) {
	l, err := NewLogger("development", "debug")
	require.NoError(t, err)
	assert.NotNil(t, l)

	_, err = NewLogger("production", "loud")
	assert.Error(t, err)
}

func TestDBURL(t *testing.T) {
	c := DBConfig{Host: "db", Port: "5432", User: "u", Password: "p", Name: "ledger", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/ledger?sslmode=disable", c.URL())
}
