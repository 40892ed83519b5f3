package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// URL renders the pgx connection string.
func (c DBConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type AppConfig struct {
	HTTPAddr string
	GRPCAddr string
	AppEnv   string
	LogLevel string

	StoreDriver string // postgres | sqlite
	SQLitePath  string
	DB          DBConfig

	RedisAddr string
	RedisPass string
	RedisDB   int

	SequenceBackend string // store | redis
	EventBackend    string // none | kafka | redis
	KafkaBrokers    []string
	KafkaTopic      string

	LedgerMaxAttempts  int
	LedgerOpTimeout    time.Duration
	RejectSelfTransfer bool
	HistoryCacheTTL    time.Duration
}

// loader resolves a key from the environment first, then from the optional
// TOML file, then from the fallback.
type loader struct {
	file map[string]interface{}
	errs []string
}

// Load reads the configuration. LEDGER_CONFIG may name a TOML file whose keys
// are the lower-cased variable names (http_addr = ":8023"); environment
// variables override it.
func Load() (AppConfig, error) {
	l := &loader{}
	if path := os.Getenv("LEDGER_CONFIG"); path != "" {
		if _, err := toml.DecodeFile(path, &l.file); err != nil {
			return AppConfig{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := AppConfig{
		HTTPAddr: l.getEnv("HTTP_ADDR", ":8023"),
		GRPCAddr: l.getEnv("GRPC_ADDR", ":8024"),
		AppEnv:   l.getEnv("APP_ENV", "production"),
		LogLevel: l.getEnv("LOG_LEVEL", "info"),

		StoreDriver: strings.ToLower(l.getEnv("STORE_DRIVER", "postgres")),
		SQLitePath:  l.getEnv("SQLITE_PATH", "ledger.db"),
		DB: DBConfig{
			Host:     l.getEnv("DB_HOST", "localhost"),
			Port:     l.getEnv("DB_PORT", "5432"),
			User:     l.getEnv("DB_USER", "postgres"),
			Password: l.getEnv("DB_PASSWORD", ""),
			Name:     l.getEnv("DB_NAME", "ledger"),
			SSLMode:  l.getEnv("DB_SSLMODE", "disable"),
			MaxConns: int32(l.getEnvInt("DB_MAX_CONNS", 50)),
			MinConns: int32(l.getEnvInt("DB_MIN_CONNS", 10)),
		},

		RedisAddr: l.getEnv("REDIS_ADDR", "redis:6379"),
		RedisPass: l.getEnv("REDIS_PASS", ""),
		RedisDB:   l.getEnvInt("REDIS_DB", 0),

		SequenceBackend: strings.ToLower(l.getEnv("SEQUENCE_BACKEND", "store")),
		EventBackend:    strings.ToLower(l.getEnv("EVENT_BACKEND", "none")),
		KafkaBrokers:    l.getEnvSlice("KAFKA_BROKERS", []string{"kafka:9092"}),
		KafkaTopic:      l.getEnv("KAFKA_TOPIC", "ledger.transactions"),

		LedgerMaxAttempts:  l.getEnvInt("LEDGER_MAX_ATTEMPTS", 3),
		LedgerOpTimeout:    l.getEnvDuration("LEDGER_OP_TIMEOUT", 5*time.Second),
		RejectSelfTransfer: l.getEnvBool("LEDGER_REJECT_SELF_TRANSFER", false),
		HistoryCacheTTL:    l.getEnvDuration("HISTORY_CACHE_TTL", time.Minute),
	}

	if len(l.errs) > 0 {
		return AppConfig{}, fmt.Errorf("invalid configuration: %s", strings.Join(l.errs, "; "))
	}
	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

func (c AppConfig) Validate() error {
	switch c.StoreDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("invalid configuration: STORE_DRIVER must be postgres or sqlite, got %q", c.StoreDriver)
	}
	switch c.SequenceBackend {
	case "store", "redis":
	default:
		return fmt.Errorf("invalid configuration: SEQUENCE_BACKEND must be store or redis, got %q", c.SequenceBackend)
	}
	switch c.EventBackend {
	case "none", "kafka", "redis":
	default:
		return fmt.Errorf("invalid configuration: EVENT_BACKEND must be none, kafka or redis, got %q", c.EventBackend)
	}
	if c.LedgerMaxAttempts < 1 {
		return fmt.Errorf("invalid configuration: LEDGER_MAX_ATTEMPTS must be at least 1")
	}
	if c.LedgerOpTimeout <= 0 {
		return fmt.Errorf("invalid configuration: LEDGER_OP_TIMEOUT must be positive")
	}
	if c.EventBackend == "kafka" && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("invalid configuration: KAFKA_BROKERS is required for the kafka event backend")
	}
	return nil
}

func (l *loader) getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	if v, ok := l.file[strings.ToLower(key)]; ok {
		switch t := v.(type) {
		case []interface{}:
			parts := make([]string, 0, len(t))
			for _, p := range t {
				parts = append(parts, fmt.Sprint(p))
			}
			return strings.Join(parts, ",")
		default:
			return fmt.Sprint(t)
		}
	}
	return fallback
}

func (l *loader) getEnvSlice(key string, defaultValue []string) []string {
	value := l.getEnv(key, "")
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, p := range strings.Split(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (l *loader) getEnvInt(key string, fallback int) int {
	value := l.getEnv(key, "")
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		l.errs = append(l.errs, fmt.Sprintf("%s: %q is not an integer", key, value))
		return fallback
	}
	return n
}

func (l *loader) getEnvBool(key string, fallback bool) bool {
	value := l.getEnv(key, "")
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		l.errs = append(l.errs, fmt.Sprintf("%s: %q is not a boolean", key, value))
		return fallback
	}
	return b
}

func (l *loader) getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := l.getEnv(key, "")
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		l.errs = append(l.errs, fmt.Sprintf("%s: %q is not a duration", key, value))
		return fallback
	}
	return d
}
