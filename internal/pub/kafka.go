package pub

import (
	"context"
	"fmt"
	"time"

	"ledger-service/internal/domain"
	"ledger-service/internal/metrics"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type KafkaTransactionPublisher struct {
	writer *kafka.Writer
	logger *zap.Logger
}

func NewKafkaTransactionPublisher(brokers []string, topic string, logger *zap.Logger) *KafkaTransactionPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{}, // same account, same partition
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		MaxAttempts:  3,
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		Compression:  kafka.Snappy,
		Logger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Debug(fmt.Sprintf(msg, args...))
		}),
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				metrics.EventsPublished.WithLabelValues("failed").Add(float64(len(messages)))
				logger.Warn("kafka delivery failed", zap.Int("messages", len(messages)), zap.Error(err))
				return
			}
			metrics.EventsPublished.WithLabelValues("delivered").Add(float64(len(messages)))
		},
	}

	logger.Info("kafka writer initialized",
		zap.Strings("brokers", brokers),
		zap.String("topic", topic),
		zap.String("mode", "async"),
	)
	return &KafkaTransactionPublisher{writer: writer, logger: logger}
}

func (p *KafkaTransactionPublisher) PublishPosting(ctx context.Context, posting *domain.Posting) error {
	event := NewTransactionEvent(posting)
	payload, err := event.Marshal()
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.Key()),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "event_id", Value: []byte(event.EventID)},
		},
		Time: event.Timestamp,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Debug("transaction event queued",
		zap.String("event_id", event.EventID),
		zap.String("event_type", event.EventType),
		zap.Int64("transaction_id", event.TransactionID),
	)
	return nil
}

func (p *KafkaTransactionPublisher) Close() error {
	return p.writer.Close()
}
