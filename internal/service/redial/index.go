package redial

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const indexKey = "voicesquad:redial:due"

// Index is the due-retry queue: a Redis sorted set of contact ids scored by
// the instant their next call should fire. The scheduler drains due members
// each tick.
type Index struct {
	client *redis.Client
}

// NewIndex constructs a redial index.
func NewIndex(client *redis.Client) *Index {
	return &Index{client: client}
}

// Schedule records (or moves) a contact's next call instant.
func (i *Index) Schedule(ctx context.Context, contactID string, at time.Time) error {
	member := redis.Z{Score: float64(at.Unix()), Member: contactID}
	if err := i.client.ZAdd(ctx, indexKey, member).Err(); err != nil {
		return fmt.Errorf("redial schedule: %w", err)
	}
	return nil
}

// Due returns up to limit contacts whose next call instant has passed.
func (i *Index) Due(ctx context.Context, now time.Time, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 100
	}
	rng := &redis.ZRangeBy{
		Min:   "-inf",
		Max:   fmt.Sprintf("%d", now.Unix()),
		Count: int64(limit),
	}
	ids, err := i.client.ZRangeByScore(ctx, indexKey, rng).Result()
	if err != nil {
		return nil, fmt.Errorf("redial due: %w", err)
	}
	return ids, nil
}

// Remove drops a contact from the index once its dial has been dispatched.
func (i *Index) Remove(ctx context.Context, contactID string) error {
	if err := i.client.ZRem(ctx, indexKey, contactID).Err(); err != nil {
		return fmt.Errorf("redial remove: %w", err)
	}
	return nil
}
