// Package cache provides the result cache used by the bulk scheduler:
// a small key/value surface with per-entry TTLs, backed either by
// process memory or by Redis. Stage-level caches (DNS, disposable,
// typo) are in-process only and do not go through this interface.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache: miss")

// Cache stores JSON-encodable values under string keys.
type Cache interface {
	// Get decodes the value stored under key into dest. Returns
	// ErrCacheMiss when the key is absent or expired.
	Get(ctx context.Context, key string, dest any) error
	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases any backing resources.
	Close() error
}
