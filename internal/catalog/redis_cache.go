package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/angelmondragon/funnelcart/pkg/logger"
	"github.com/angelmondragon/funnelcart/pkg/redis"
)

// cacheStore is the subset of the redis client the cache needs.
type cacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// CachedLookup decorates a Lookup with a redis cache. Concurrent misses for
// the same package collapse into a single upstream call.
type CachedLookup struct {
	inner Lookup
	store cacheStore
	ttl   time.Duration
	group singleflight.Group
	logg  *logger.Logger
}

// NewCachedLookup wraps the inner lookup with caching.
func NewCachedLookup(inner Lookup, store cacheStore, ttl time.Duration, logg *logger.Logger) *CachedLookup {
	return &CachedLookup{
		inner: inner,
		store: store,
		ttl:   ttl,
		logg:  logg,
	}
}

// GetPackage implements Lookup.
func (c *CachedLookup) GetPackage(ctx context.Context, refID int) (*Package, error) {
	key := redis.Key("catalog", "pkg", strconv.Itoa(refID))

	raw, err := c.store.Get(ctx, key)
	if err == nil {
		var pkg Package
		if decodeErr := json.Unmarshal([]byte(raw), &pkg); decodeErr == nil {
			return &pkg, nil
		}
		// A corrupt entry falls through to the upstream lookup and is rewritten.
		c.warn(ctx, "catalog cache entry corrupt, refreshing")
	} else if !errors.Is(err, redis.Nil) {
		c.warn(ctx, "catalog cache read failed, falling back to upstream")
	}

	value, err, _ := c.group.Do(key, func() (any, error) {
		pkg, err := c.inner.GetPackage(ctx, refID)
		if err != nil {
			return nil, err
		}
		if encoded, encodeErr := json.Marshal(pkg); encodeErr == nil {
			if setErr := c.store.Set(ctx, key, string(encoded), c.ttl); setErr != nil {
				c.warn(ctx, "catalog cache write failed")
			}
		}
		return pkg, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*Package), nil
}

func (c *CachedLookup) warn(ctx context.Context, msg string) {
	if c.logg != nil {
		c.logg.Warn(ctx, msg)
	}
}
