package services

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window request counter.
type RateLimiter interface {
	// CheckLimit returns whether the call is allowed, the counter value and,
	// when denied, how long until the window resets.
	CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (allowed bool, count int64, retryAfter time.Duration, err error)
}

// RateLimitService counts requests in Redis with INCR plus EXPIRE.
type RateLimitService struct {
	redis     *redis.Client
	keyPrefix string
}

var _ RateLimiter = (*RateLimitService)(nil)

func NewRateLimitService(redis *redis.Client) *RateLimitService {
	return &RateLimitService{
		redis:     redis,
		keyPrefix: "rate_limit:",
	}
}

func (s *RateLimitService) CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, int64, time.Duration, error) {
	rKey := s.keyPrefix + key

	pipe := s.redis.Pipeline()
	incr := pipe.Incr(ctx, rKey)
	pipe.ExpireNX(ctx, rKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, 0, err
	}

	count := incr.Val()
	if count <= int64(limit) {
		return true, count, 0, nil
	}

	ttl, err := s.redis.TTL(ctx, rKey).Result()
	if err != nil || ttl < 0 {
		ttl = window
	}
	return false, count, ttl, nil
}
