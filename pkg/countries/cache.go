package countries

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/NomadCrew/crewtrip-backend/logger"
	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "country:"

// CachedResolver memoizes lookups in Redis. Cache failures degrade to a
// direct lookup.
type CachedResolver struct {
	next Resolver
	rdb  *redis.Client
	ttl  time.Duration
}

func NewCachedResolver(next Resolver, rdb *redis.Client, ttl time.Duration) *CachedResolver {
	return &CachedResolver{next: next, rdb: rdb, ttl: ttl}
}

func CacheKey(query string) string {
	return cacheKeyPrefix + strings.ToLower(strings.TrimSpace(query))
}

func (r *CachedResolver) Lookup(ctx context.Context, query string) (*Country, error) {
	log := logger.GetLogger()
	key := CacheKey(query)

	cached, err := r.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		var c Country
		if jsonErr := json.Unmarshal([]byte(cached), &c); jsonErr == nil {
			return &c, nil
		}
		log.Warnw("Discarding malformed country cache entry", "key", key)
	case !errors.Is(err, redis.Nil):
		log.Warnw("Country cache read failed", "key", key, "error", err)
	}

	c, err := r.next.Lookup(ctx, query)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(c)
	if err == nil {
		if err := r.rdb.Set(ctx, key, string(payload), r.ttl).Err(); err != nil {
			log.Warnw("Country cache write failed", "key", key, "error", err)
		}
	}
	return c, nil
}
