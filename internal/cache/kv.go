package cache

import (
	"context"
	"time"
)

// KV is the key-value surface the caches need. RedisClient implements it;
// tests use an in-memory map.
type KV interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, keys ...string) error
}
