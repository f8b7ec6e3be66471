package profile

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"mealcart/internal/grocery"
)

const cacheKeyPrefix = "profile:"

// CachedSource is a read-through Redis cache in front of a profile store.
// Profiles are hot, small, and change rarely, so cache hits spare the
// database on every list mutation. Any cache failure degrades to the
// underlying store; any store failure is the caller's to handle.
type CachedSource struct {
	store  grocery.ProfileSource
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedSource wraps store with a Redis read-through cache.
func NewCachedSource(store grocery.ProfileSource, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedSource {
	return &CachedSource{store: store, client: client, ttl: ttl, logger: logger}
}

// ProfilesFor resolves profiles, serving what it can from cache and
// filling misses from the store. Only profiles that exist are cached;
// absent names stay absent.
func (c *CachedSource) ProfilesFor(ctx context.Context, namesNormalized []string) (map[string]grocery.UnitProfile, error) {
	profiles := make(map[string]grocery.UnitProfile)
	if len(namesNormalized) == 0 {
		return profiles, nil
	}

	missing := namesNormalized
	if cached, ok := c.fromCache(ctx, namesNormalized); ok {
		missing = make([]string, 0, len(namesNormalized))
		for _, name := range namesNormalized {
			if p, hit := cached[name]; hit {
				profiles[name] = p
			} else {
				missing = append(missing, name)
			}
		}
	}

	if len(missing) == 0 {
		return profiles, nil
	}

	fetched, err := c.store.ProfilesFor(ctx, missing)
	if err != nil {
		return nil, err
	}
	for name, p := range fetched {
		profiles[name] = p
	}
	c.fill(ctx, fetched)
	return profiles, nil
}

// fromCache returns cached profiles by name. ok is false when the cache
// itself failed, in which case every name goes to the store.
func (c *CachedSource) fromCache(ctx context.Context, names []string) (map[string]grocery.UnitProfile, bool) {
	keys := make([]string, len(names))
	for i, name := range names {
		keys[i] = cacheKeyPrefix + name
	}

	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		c.logger.Warn("profile cache read failed", zap.Error(err))
		return nil, false
	}

	cached := make(map[string]grocery.UnitProfile)
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue // cache miss
		}
		var p grocery.UnitProfile
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			c.logger.Warn("discarding malformed cached profile",
				zap.String("name", names[i]), zap.Error(err))
			continue
		}
		cached[names[i]] = p
	}
	return cached, true
}

func (c *CachedSource) fill(ctx context.Context, profiles map[string]grocery.UnitProfile) {
	for name, p := range profiles {
		data, err := json.Marshal(p)
		if err != nil {
			continue
		}
		if err := c.client.Set(ctx, cacheKeyPrefix+name, data, c.ttl).Err(); err != nil {
			c.logger.Warn("profile cache write failed",
				zap.String("name", name), zap.Error(err))
			return
		}
	}
}
