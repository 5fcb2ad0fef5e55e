// Package cache provides the injected result-cache store used by the
// leaderboard aggregator and the user-detail fetcher.
//
// The store is a byte cache with per-entry TTLs. Two backends are provided:
// an in-process LRU ([MemoryCache], the default) and a redis-backed cache
// ([RedisCache]) for multi-instance deployments. [NullCache] disables
// caching entirely.
//
// Keys are produced by a [Keyer] so that the composite key schema (query,
// sort, page, cursor, credential class) lives in one place and responses for
// anonymous and authenticated callers can never collide.
package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Cache is a byte store with per-entry expiry. Implementations must be safe
// for concurrent use.
type Cache interface {
	// Get retrieves a value by key. The second return value reports whether
	// a fresh entry was found; expired entries are treated as absent.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value under key. A ttl of 0 means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the backend.
	Close() error
}

// GetJSON retrieves a cached value and unmarshals it into v.
// Returns false on a miss; v is unchanged in that case.
func GetJSON(ctx context.Context, c Cache, key string, v any) (bool, error) {
	data, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		// Corrupt entry - drop it and report a miss.
		_ = c.Delete(ctx, key)
		return false, nil
	}
	return true, nil
}

// SetJSON marshals v and stores it under key.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, data, ttl)
}
