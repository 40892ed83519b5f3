package server

import (
	"context"
	"fmt"
	"time"

	"ledger-service/internal/config"
	"ledger-service/internal/pub"
	"ledger-service/internal/repository"
	"ledger-service/internal/repository/postgres"
	"ledger-service/internal/repository/redisseq"
	"ledger-service/internal/repository/sqlite"
	"ledger-service/internal/usecase"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// App holds the wired ledger components shared by the server and the CLI.
type App struct {
	Store     repository.Store
	Redis     *redis.Client
	Publisher pub.Publisher

	Ledger   *usecase.LedgerUsecase
	Accounts *usecase.AccountUsecase
	Types    *usecase.AccountTypeUsecase
	Branches *usecase.BranchUsecase
	Forms    *usecase.FormUsecase

	logger *zap.Logger
}

// OpenStore connects the configured persistence backend.
func OpenStore(ctx context.Context, cfg config.AppConfig, logger *zap.Logger) (repository.Store, error) {
	switch cfg.StoreDriver {
	case "sqlite":
		return sqlite.Open(cfg.SQLitePath, logger)
	default:
		pool, err := config.ConnectDB(ctx, cfg.DB, logger)
		if err != nil {
			return nil, err
		}
		return postgres.NewStore(pool, logger), nil
	}
}

// NewRedis returns a connected client, or nil when Redis is unreachable.
func NewRedis(ctx context.Context, cfg config.AppConfig, logger *zap.Logger) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPass,
		DB:           cfg.RedisDB,
		PoolSize:     50,
		MinIdleConns: 5,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unavailable, history cache disabled",
			zap.String("addr", cfg.RedisAddr),
			zap.Error(err),
		)
		_ = rdb.Close()
		return nil
	}
	logger.Info("redis connected", zap.String("addr", cfg.RedisAddr))
	return rdb
}

// Build wires store, allocator, publisher and usecases from cfg.
func Build(ctx context.Context, cfg config.AppConfig, logger *zap.Logger) (*App, error) {
	store, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate store: %w", err)
	}

	app := &App{Store: store, logger: logger}
	app.Redis = NewRedis(ctx, cfg, logger)

	var allocator repository.SequenceAllocator = store.Sequences()
	if cfg.SequenceBackend == "redis" {
		if app.Redis == nil {
			app.Close()
			return nil, fmt.Errorf("SEQUENCE_BACKEND=redis but redis is unreachable at %s", cfg.RedisAddr)
		}
		allocator = redisseq.New(app.Redis, store.Sequences())
	}

	switch cfg.EventBackend {
	case "kafka":
		app.Publisher = pub.NewKafkaTransactionPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
	case "redis":
		if app.Redis != nil {
			app.Publisher = pub.NewRedisTransactionPublisher(app.Redis, logger)
		} else {
			logger.Warn("redis event backend requested but redis is unavailable, events disabled")
			app.Publisher = pub.Noop{}
		}
	default:
		app.Publisher = pub.Noop{}
	}

	history := usecase.NewHistoryCache(app.Redis, cfg.HistoryCacheTTL, logger)

	app.Ledger = usecase.NewLedgerUsecase(store, history, app.Publisher, logger, usecase.LedgerConfig{
		MaxAttempts:        cfg.LedgerMaxAttempts,
		OpTimeout:          cfg.LedgerOpTimeout,
		RejectSelfTransfer: cfg.RejectSelfTransfer,
	})
	app.Accounts = usecase.NewAccountUsecase(store, allocator, history, logger)
	app.Types = usecase.NewAccountTypeUsecase(store.AccountTypes(), logger)
	app.Branches = usecase.NewBranchUsecase(store.Branches(), allocator, logger)
	app.Forms = usecase.NewFormUsecase(store, app.Accounts, logger)

	logger.Info("ledger wired",
		zap.String("store", cfg.StoreDriver),
		zap.String("sequences", cfg.SequenceBackend),
		zap.String("events", cfg.EventBackend),
		zap.Bool("history_cache", app.Redis != nil),
	)
	return app, nil
}

// Close releases the publisher, redis and store, in that order.
func (a *App) Close() {
	if a.Publisher != nil {
		if err := a.Publisher.Close(); err != nil {
			a.logger.Warn("failed to close publisher", zap.Error(err))
		}
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if err := a.Store.Close(); err != nil {
		a.logger.Warn("failed to close store", zap.Error(err))
	}
}
