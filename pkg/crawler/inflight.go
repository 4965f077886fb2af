package crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisMarker marks feeds as in-flight in Redis so overlapping scheduler
// passes (or multiple poller processes) never double-poll the same feed.
// The key carries a TTL as a safety net against crashed pollers.
type RedisMarker struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisMarker creates a marker with the given safety TTL. The TTL should
// comfortably exceed the longest expected crawl.
func NewRedisMarker(rdb *redis.Client, ttl time.Duration) *RedisMarker {
	return &RedisMarker{rdb: rdb, ttl: ttl}
}

func (m *RedisMarker) key(feedID int64) string {
	return fmt.Sprintf("poll:inflight:%d", feedID)
}

// TryAcquire atomically claims the feed. False means another poll holds it.
func (m *RedisMarker) TryAcquire(ctx context.Context, feedID int64) (bool, error) {
	ok, err := m.rdb.SetNX(ctx, m.key(feedID), 1, m.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("setnx %s: %w", m.key(feedID), err)
	}
	return ok, nil
}

// Release frees the feed for the next poll.
func (m *RedisMarker) Release(ctx context.Context, feedID int64) error {
	if err := m.rdb.Del(ctx, m.key(feedID)).Err(); err != nil {
		return fmt.Errorf("del %s: %w", m.key(feedID), err)
	}
	return nil
}

// NoopMarker never blocks a poll. Suitable for single-process deployments
// where scheduler passes cannot overlap.
type NoopMarker struct{}

// TryAcquire always succeeds.
func (NoopMarker) TryAcquire(context.Context, int64) (bool, error) { return true, nil }

// Release does nothing.
func (NoopMarker) Release(context.Context, int64) error { return nil }
