package cache

import (
	"context"
	"errors"
	"time"

	"system-mirror/core/metrics"

	"github.com/Velocidex/ttlcache/v2"
	"golang.org/x/sync/singleflight"
)

type entry[V any] struct {
	value   V
	err     error
	expires time.Time
}

// Cache memoizes loads of V by string key.
type Cache[V any] struct {
	name  string
	cfg   Config
	lru   *ttlcache.Cache
	group singleflight.Group
	now   func() time.Time
}

// New creates a cache. name labels its metrics.
func New[V any](name string, cfg Config) *Cache[V] {
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}
	if cfg.Size <= 0 {
		cfg.Size = 4096
	}

	c := &Cache[V]{
		name: name,
		cfg:  cfg,
		lru:  ttlcache.NewCache(),
		now:  time.Now,
	}
	c.lru.SetCacheSizeLimit(cfg.Size)
	_ = c.lru.SetTTL(cfg.TTL)
	return c
}

// Peek returns a cached value without loading. Cached failures are returned
// with their error.
func (c *Cache[V]) Peek(key string) (V, bool, error) {
	raw, err := c.lru.Get(key)
	if err != nil {
		var zero V
		return zero, false, nil
	}

	e := raw.(*entry[V])
	if !e.expires.IsZero() && c.now().After(e.expires) {
		_ = c.lru.Remove(key)
		var zero V
		return zero, false, nil
	}
	return e.value, true, e.err
}

// Get returns the cached value for key, calling load on a miss.
func (c *Cache[V]) Get(ctx context.Context, key string, load func(ctx context.Context) (V, error)) (V, error) {
	if v, ok, err := c.Peek(key); ok {
		metrics.CacheLookups.WithLabelValues(c.name, "hit").Inc()
		return v, err
	}
	metrics.CacheLookups.WithLabelValues(c.name, "miss").Inc()

	raw, err, _ := c.group.Do(key, func() (any, error) {
		// Another caller may have filled it while we waited.
		if v, ok, err := c.Peek(key); ok {
			return v, err
		}

		v, err := load(ctx)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return v, err
		}
		c.store(key, v, err)
		return v, err
	})

	v, _ := raw.(V)
	return v, err
}

func (c *Cache[V]) store(key string, v V, err error) {
	e := &entry[V]{value: v, err: err}
	if err != nil {
		if c.cfg.ErrorTTL <= 0 {
			return
		}
		e.expires = c.now().Add(c.cfg.ErrorTTL)
	}
	_ = c.lru.Set(key, e)
}

// Set stores a value directly.
func (c *Cache[V]) Set(key string, v V) {
	c.store(key, v, nil)
}

// Remove drops key.
func (c *Cache[V]) Remove(key string) {
	_ = c.lru.Remove(key)
}

// Flush drops every entry.
func (c *Cache[V]) Flush() {
	_ = c.lru.Purge()
}

// Len returns the number of entries.
func (c *Cache[V]) Len() int {
	return c.lru.Count()
}

// Close stops the cache's expiry goroutine.
func (c *Cache[V]) Close() error {
	return c.lru.Close()
}
