package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupTTL = 24 * time.Hour

// StatDedup maps idempotency keys of stat submissions to the stored stat id.
// Key format: dedup:stat:<idempotency_key>
type StatDedup struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatDedup creates a StatDedup wrapping the given Redis client.
func NewStatDedup(client *redis.Client) *StatDedup {
	return &StatDedup{client: client, ttl: dedupTTL}
}

// Lookup reports the stat id recorded for key, if any.
func (d *StatDedup) Lookup(ctx context.Context, key string) (string, bool, error) {
	id, err := d.client.Get(ctx, d.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("dedup lookup: %w", err)
	}
	return id, true, nil
}

// Remember records key as processed (expires after the dedup TTL).
func (d *StatDedup) Remember(ctx context.Context, key, statID string) error {
	return d.client.Set(ctx, d.key(key), statID, d.ttl).Err()
}

func (d *StatDedup) key(k string) string {
	return "dedup:stat:" + k
}
