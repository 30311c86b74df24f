// Package cache provides a TTL-bounded, size-limited memoizing cache for
// expensive per-key lookups such as reverse DNS and file digests.
//
// It wraps ttlcache with a singleflight group: concurrent misses for the same
// key share one load. Failed loads are cached too, under a separate and
// usually shorter TTL, so a broken key does not hammer the backend every
// cycle.
//
// # Usage
//
//	c := cache.New[string]("dns", cache.Config{TTL: 5 * time.Minute, Size: 4096})
//	defer c.Close()
//
//	host, err := c.Get(ctx, "10.0.0.1", func(ctx context.Context) (string, error) {
//	    return lookup(ctx, "10.0.0.1")
//	})
package cache
