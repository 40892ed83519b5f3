package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ledger-service/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// HistoryCache is a read-through cache of per-account transaction pages.
// Each account has a version counter that is part of every page key; bumping
// it on a posting orphans all cached pages of that account at once, including
// a page a concurrent reader is about to write with the old version.
type HistoryCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewHistoryCache returns a cache backed by rdb. A nil rdb disables caching.
func NewHistoryCache(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *HistoryCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &HistoryCache{rdb: rdb, ttl: ttl, logger: logger}
}

func versionKey(accountNumber string) string {
	return "ledger:history:ver:" + accountNumber
}

// Lookup returns the cached page if present. key is what Store must be called
// with on a miss; it is empty when caching is unavailable.
func (c *HistoryCache) Lookup(ctx context.Context, accountNumber string, page domain.Page) (txs []*domain.Transaction, key string, hit bool) {
	if c == nil || c.rdb == nil {
		return nil, "", false
	}

	ver, err := c.rdb.Get(ctx, versionKey(accountNumber)).Result()
	if errors.Is(err, redis.Nil) {
		ver = "0"
	} else if err != nil {
		c.logger.Debug("history cache unavailable", zap.Error(err))
		return nil, "", false
	}

	key = fmt.Sprintf("ledger:history:%s:v%s:%d:%d", accountNumber, ver, page.Limit, page.Offset)
	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		return nil, key, false
	}
	if jsonErr := json.Unmarshal([]byte(val), &txs); jsonErr != nil {
		return nil, key, false
	}
	return txs, key, true
}

func (c *HistoryCache) Store(ctx context.Context, key string, txs []*domain.Transaction) {
	if c == nil || c.rdb == nil || key == "" {
		return
	}
	if data, err := json.Marshal(txs); err == nil {
		_ = c.rdb.Set(ctx, key, data, c.ttl).Err()
	}
}

// Invalidate bumps the version of every given account.
func (c *HistoryCache) Invalidate(ctx context.Context, accountNumbers ...string) {
	if c == nil || c.rdb == nil {
		return
	}
	for _, n := range accountNumbers {
		if n == "" {
			continue
		}
		if err := c.rdb.Incr(ctx, versionKey(n)).Err(); err != nil {
			c.logger.Warn("failed to invalidate history cache", zap.String("account", n), zap.Error(err))
		}
	}
}
