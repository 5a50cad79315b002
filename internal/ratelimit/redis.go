package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter implements Limiter using a fixed window counter in Redis.
// Every instance of the service shares the same counters, so per-owner
// limits hold across horizontally scaled deployments.
type RedisLimiter struct {
	rdb    *redis.Client
	limit  int64
	window time.Duration
	prefix string
}

// NewRedisLimiter connects to Redis at url and creates a limiter allowing
// limit requests per key per window. The prefix namespaces keys so multiple
// limiters can share one Redis instance.
func NewRedisLimiter(ctx context.Context, url, prefix string, limit int, window time.Duration) (*RedisLimiter, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("ratelimit: parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ratelimit: ping redis: %w", err)
	}
	return &RedisLimiter{
		rdb:    rdb,
		limit:  int64(limit),
		window: window,
		prefix: prefix,
	}, nil
}

// Allow increments the window counter for key and compares it to the limit.
// INCR followed by a first-hit EXPIRE keeps the window aligned to the first
// request rather than wall-clock boundaries.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := l.prefix + ":" + key

	count, err := l.rdb.Incr(ctx, k).Result()
	if err != nil {
		return false, fmt.Errorf("ratelimit: incr %s: %w", k, err)
	}
	if count == 1 {
		if err := l.rdb.Expire(ctx, k, l.window).Err(); err != nil {
			return false, fmt.Errorf("ratelimit: expire %s: %w", k, err)
		}
	}
	return count <= l.limit, nil
}

// Close closes the underlying Redis client.
func (l *RedisLimiter) Close() error {
	return l.rdb.Close()
}
