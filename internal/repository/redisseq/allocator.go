// Package redisseq allocates ledger sequence values from Redis so several
// ledger nodes can share one counter without touching the database.
package redisseq

import (
	"context"
	"errors"
	"fmt"

	"ledger-service/internal/domain"
	"ledger-service/internal/repository"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "ledger:seq:"

// nextScript INCRs an existing counter. A missing counter is seeded from
// ARGV[1] first; with an empty ARGV[1] it returns nil so the caller can look
// up a seed. Seeding and the first INCR run atomically inside Redis.
var nextScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	if ARGV[1] == '' then
		return false
	end
	redis.call('SET', KEYS[1], ARGV[1])
end
return redis.call('INCR', KEYS[1])
`)

type Allocator struct {
	rdb   *redis.Client
	floor repository.SequenceFloor
}

var _ repository.SequenceAllocator = (*Allocator)(nil)

// New returns an allocator over rdb. floor supplies the store's high-water
// mark whenever a counter has to be (re)created; nil seeds at the sequence
// start.
func New(rdb *redis.Client, floor repository.SequenceFloor) *Allocator {
	return &Allocator{rdb: rdb, floor: floor}
}

func (a *Allocator) Next(ctx context.Context, name string) (int64, error) {
	seq, ok := domain.LookupSequence(name)
	if !ok {
		return 0, domain.Wrap(domain.ErrAllocation, fmt.Errorf("unknown sequence %q", name))
	}
	keys := []string{keyPrefix + name}

	v, err := nextScript.Run(ctx, a.rdb, keys, "").Int64()
	if errors.Is(err, redis.Nil) {
		var seed int64
		if seed, err = a.seed(ctx, seq); err == nil {
			v, err = nextScript.Run(ctx, a.rdb, keys, seed).Int64()
		}
	}
	if err != nil {
		return 0, domain.Wrap(domain.ErrAllocation, fmt.Errorf("failed to allocate from %s: %w", name, err))
	}
	return v, nil
}

// seed is the value a fresh counter starts from; the next INCR is one above it.
func (a *Allocator) seed(ctx context.Context, seq domain.Sequence) (int64, error) {
	seed := seq.Start - 1
	if a.floor == nil {
		return seed, nil
	}
	hw, err := a.floor.HighWater(ctx, seq.Name)
	if err != nil {
		return 0, fmt.Errorf("failed to read high-water mark: %w", err)
	}
	return max(seed, hw), nil
}
