package pub

import (
	"context"
	"fmt"

	"ledger-service/internal/domain"
	"ledger-service/internal/metrics"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisTransactionPublisher fans events out over Redis pub/sub. Lighter than
// Kafka for single-node deployments; subscribers that are offline miss events.
type RedisTransactionPublisher struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewRedisTransactionPublisher(rdb *redis.Client, logger *zap.Logger) *RedisTransactionPublisher {
	return &RedisTransactionPublisher{rdb: rdb, logger: logger}
}

func (p *RedisTransactionPublisher) PublishPosting(ctx context.Context, posting *domain.Posting) error {
	event := NewTransactionEvent(posting)
	payload, err := event.Marshal()
	if err != nil {
		return err
	}

	if err := p.rdb.Publish(ctx, TransactionEventsChannel, payload).Err(); err != nil {
		metrics.EventsPublished.WithLabelValues("failed").Inc()
		return fmt.Errorf("failed to publish event: %w", err)
	}
	metrics.EventsPublished.WithLabelValues("delivered").Inc()

	p.logger.Debug("transaction event published",
		zap.String("event_type", event.EventType),
		zap.Int64("transaction_id", event.TransactionID),
	)
	return nil
}

// Close is a no-op: the client is shared and closed by its owner.
func (p *RedisTransactionPublisher) Close() error { return nil }
