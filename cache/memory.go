package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/verimail/verimail/internal/ttlcache"
)

// Memory is the default in-process cache. Values are stored as JSON so
// the semantics match the Redis backend exactly: callers always get a
// decoded copy, never a shared pointer.
type Memory struct {
	entries *ttlcache.Cache[[]byte]
}

// NewMemory creates an in-process cache. defaultTTL applies when Set is
// called with a non-positive TTL.
func NewMemory(defaultTTL time.Duration) *Memory {
	return &Memory{entries: ttlcache.New[[]byte](defaultTTL)}
}

func (m *Memory) Get(ctx context.Context, key string, dest any) error {
	raw, ok := m.entries.Get(key)
	if !ok {
		return ErrCacheMiss
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode cached value for %q: %w", key, err)
	}
	return nil
}

func (m *Memory) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode value for %q: %w", key, err)
	}
	if ttl <= 0 {
		m.entries.Set(key, raw)
	} else {
		m.entries.SetWithTTL(key, raw, ttl)
	}
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.entries.Delete(key)
	return nil
}

func (m *Memory) Close() error { return nil }
