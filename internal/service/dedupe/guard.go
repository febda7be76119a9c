package dedupe

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Guard drops duplicate webhook deliveries using Redis SET NX. The upstream
// voice platform delivers call-ended events at least once; the first delivery
// claims the key, later ones see it and bail out.
type Guard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewGuard constructs a dedupe guard.
func NewGuard(client *redis.Client, ttl time.Duration) *Guard {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Guard{client: client, ttl: ttl}
}

// Claim attempts to mark the event as seen. It returns true when this caller
// is the first to observe it.
func (g *Guard) Claim(ctx context.Context, eventKey string) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.key(eventKey), "1", g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("dedupe claim: %w", err)
	}
	return ok, nil
}

// Release removes the claim, allowing a reprocess after a handling failure.
func (g *Guard) Release(ctx context.Context, eventKey string) error {
	if err := g.client.Del(ctx, g.key(eventKey)).Err(); err != nil {
		return fmt.Errorf("dedupe release: %w", err)
	}
	return nil
}

func (g *Guard) key(eventKey string) string {
	return "voicesquad:event:" + eventKey
}
