// Package cache stores rendered artifacts keyed by everything that
// determines their bytes.
//
// A render is a pure function of the graph, the event table, the settings
// and the output format, so [Keyer.ArtifactKey] hashes exactly those. Three
// backends implement [Cache]:
//
//   - [NullCache] never stores anything (caching disabled)
//   - [FileCache] keeps entries as files under a directory, for the CLI
//   - [RedisCache] shares entries between machines rendering frame batches
//
// Wrap a backend with [Instrument] to report hits, misses and writes to the
// registered observability hooks.
package cache

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/netposter/pkg/observability"
)

// Cache is a byte store with optional expiry.
type Cache interface {
	// Get returns the entry for key. A missing or expired entry is
	// reported as a miss, not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl <= 0 never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// TTLArtifact is the default lifetime of a cached artifact.
const TTLArtifact = 7 * 24 * time.Hour

// NullCache disables caching: every lookup misses and writes are dropped.
type NullCache struct{}

// NewNullCache returns a NullCache.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error { return nil }
func (NullCache) Close() error { return nil }

// Instrument wraps c so that every lookup and write fires the cache hooks.
func Instrument(c Cache) Cache {
	if c == nil {
		return nil
	}
	if _, ok := c.(*instrumented); ok {
		return c
	}
	return &instrumented{Cache: c}
}

type instrumented struct {
	Cache
}

func (c *instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := c.Cache.Get(ctx, key)
	if err == nil {
		if ok {
			observability.Cache().OnCacheHit(ctx, keyType(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, keyType(key))
		}
	}
	return data, ok, err
}

func (c *instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.Cache.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, keyType(key), len(data))
	return nil
}

// keyType returns the kind segment of a key, "artifact" for
// "scope:artifact:<hash>".
func keyType(key string) string {
	parts := strings.Split(key, ":")
	if len(parts) < 2 {
		return "unknown"
	}
	return parts[len(parts)-2]
}
