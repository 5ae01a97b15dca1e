// Package cache stores upstream catalog responses so repeated requests do
// not hit the rate-limited source.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gamedash/gamedash-server/internal/metrics"
)

// Cache is a byte-oriented key/value cache with per-entry TTL.
// A miss is reported as ok == false with a nil error.
type Cache interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (Noop) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (Noop) Delete(context.Context, string) error { return nil }

// Key builds a cache key from a namespace and the parts that identify a
// request. Parts are hashed so arbitrary query strings stay short.
func Key(namespace string, parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return namespace + ":" + hex.EncodeToString(h.Sum(nil)[:12])
}

// Typed wraps a Cache with JSON encoding for one value type and records
// hit/miss metrics under backend.
type Typed[T any] struct {
	cache   Cache
	backend string
	ttl     time.Duration
}

// NewTyped creates a Typed cache.
func NewTyped[T any](c Cache, backend string, ttl time.Duration) *Typed[T] {
	if c == nil {
		c = Noop{}
	}
	return &Typed[T]{cache: c, backend: backend, ttl: ttl}
}

// Get returns the cached value, or nil on a miss.
func (t *Typed[T]) Get(ctx context.Context, key string) (*T, error) {
	data, ok, err := t.cache.Get(ctx, key)
	if err != nil {
		metrics.RecordCacheLookup(t.backend, "error")
		return nil, fmt.Errorf("cache get: %w", err)
	}
	if !ok {
		metrics.RecordCacheLookup(t.backend, "miss")
		return nil, nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		// Stale layout from an older build; treat as a miss.
		metrics.RecordCacheLookup(t.backend, "miss")
		return nil, nil
	}
	metrics.RecordCacheLookup(t.backend, "hit")
	return &v, nil
}

// Set stores v under key with the configured TTL.
func (t *Typed[T]) Set(ctx context.Context, key string, v *T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache marshal: %w", err)
	}
	if err := t.cache.Set(ctx, key, data, t.ttl); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}
