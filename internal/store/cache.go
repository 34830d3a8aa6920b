package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cached decorates a Store with a short-TTL Redis read cache. It is a
// best-effort accelerator only: every cache miss or Redis error falls
// through to the backing store, and writes invalidate before hitting
// Redis so correctness never depends on cache state. Intended for the
// team/user read path, not for the standup update path.
type Cached struct {
	next   Store
	client *redis.Client
	ttl    time.Duration
}

func NewCached(next Store, client *redis.Client, ttl time.Duration) *Cached {
	return &Cached{next: next, client: client, ttl: ttl}
}

func (c *Cached) Get(ctx context.Context, key string) (json.RawMessage, error) {
	// Any Redis error, including a miss, degrades to an uncached read.
	if data, err := c.client.Get(ctx, cacheKey(key)).Bytes(); err == nil {
		return data, nil
	}

	data, err := c.next.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	_ = c.client.Set(ctx, cacheKey(key), []byte(data), c.ttl).Err()
	return data, nil
}

func (c *Cached) Put(ctx context.Context, key string, doc json.RawMessage) error {
	_ = c.client.Del(ctx, cacheKey(key)).Err()
	if err := c.next.Put(ctx, key, doc); err != nil {
		return err
	}
	_ = c.client.Set(ctx, cacheKey(key), []byte(doc), c.ttl).Err()
	return nil
}

func (c *Cached) Delete(ctx context.Context, key string) error {
	_ = c.client.Del(ctx, cacheKey(key)).Err()
	return c.next.Delete(ctx, key)
}

// ListKeys is never cached; scans go straight to the backing store.
func (c *Cached) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	return c.next.ListKeys(ctx, prefix)
}

func cacheKey(key string) string {
	return "doc:" + key
}
