package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/rafaelleal24/catalog/internal/adapters/http/middleware"
)

const rateLimitPrefix = "ratelimit:"

// RateLimiter counts calls per key in fixed windows. The window starts with
// the first call and its expiry is never extended by later calls.
type RateLimiter struct {
	client *Client
}

func NewRateLimiter(client *Client) middleware.RateLimiter {
	return &RateLimiter{client: client}
}

func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	redisKey := rateLimitPrefix + key

	var count *goredis.IntCmd
	_, err := r.client.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		count = pipe.Incr(ctx, redisKey)
		pipe.ExpireNX(ctx, redisKey, window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("rate limit %q: %w", key, err)
	}

	return count.Val() <= int64(limit), nil
}
