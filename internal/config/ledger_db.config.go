package config

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ConnectDB opens the postgres pool, retrying with exponential backoff while
// the database comes up.
func ConnectDB(ctx context.Context, cfg DBConfig, logger *zap.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to parse db config: %w", err)
	}

	// tuning pool settings
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	maxRetries := 5
	delay := 2 * time.Second

	for i := 1; i <= maxRetries; i++ {
		logger.Info("connecting to database",
			zap.Int("attempt", i),
			zap.Int("max_attempts", maxRetries),
			zap.String("host", cfg.Host),
			zap.String("database", cfg.Name),
		)

		attemptCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		var dbpool *pgxpool.Pool
		dbpool, err = pgxpool.NewWithConfig(attemptCtx, poolCfg)
		if err == nil {
			if err = dbpool.Ping(attemptCtx); err == nil {
				cancel()
				logger.Info("connected to database",
					zap.Int32("max_conns", poolCfg.MaxConns),
					zap.Int32("min_conns", poolCfg.MinConns),
				)
				return dbpool, nil
			}
			dbpool.Close()
			err = fmt.Errorf("ping failed: %w", err)
		}
		cancel()

		logger.Warn("database connection failed", zap.Int("attempt", i), zap.Error(err))

		if i < maxRetries {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			delay *= 2 // exponential backoff
		}
	}

	return nil, fmt.Errorf("failed to connect to DB after %d attempts: %w", maxRetries, err)
}
