package pub

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"ledger-service/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func samplePosting() *domain.Posting {
	return &domain.Posting{
		Transaction: &domain.Transaction{
			TransactionID:   7,
			FromAccount:     "11235813",
			ToAccount:       "11235814",
			Amount:          decimal.RequireFromString("100.50"),
			TransactionDate: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
			TransactionType: domain.TxTransfer,
		},
		Balances: map[string]decimal.Decimal{
			"11235813": decimal.RequireFromString("899.50"),
			"11235814": decimal.RequireFromString("300.50"),
		},
	}
}

func TestNewTransactionEvent(t *testing.T) {
	e := NewTransactionEvent(samplePosting())

	assert.Equal(t, "transfer.completed", e.EventType)
	assert.Equal(t, "11235813", e.Key())
	assert.Len(t, e.EventID, 26)

	deposit := NewTransactionEvent(&domain.Posting{Transaction: &domain.Transaction{
		ToAccount: "11235814", Amount: decimal.NewFromInt(1), TransactionType: domain.TxDeposit,
	}})
	assert.Equal(t, "deposit.completed", deposit.EventType)
	assert.Equal(t, "11235814", deposit.Key())
}

func TestRedisPublisherDeliversToSubscribers(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sub := rdb.Subscribe(ctx, TransactionEventsChannel)
	defer sub.Close()
	_, err := sub.Receive(ctx) // subscription confirmation
	require.NoError(t, err)

	p := NewRedisTransactionPublisher(rdb, zap.NewNop())
	require.NoError(t, p.PublishPosting(ctx, samplePosting()))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)

	var got TransactionEvent
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
	assert.Equal(t, int64(7), got.TransactionID)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("100.5")))
	assert.Equal(t, "Transfer", got.TransactionType)
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = Noop{}
	assert.NoError(t, p.PublishPosting(context.Background(), samplePosting()))
	assert.NoError(t, p.Close())
}
