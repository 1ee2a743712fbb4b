package cache

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"time"
)

// LayeredCache keeps a short-lived in-process copy (L1) in front of a shared
// Service (L2). Writes go to L2 first. L1 entries live at most the configured
// TTL so writes from other instances become visible.
type LayeredCache struct {
	local  *MemoryCache
	remote Service
	l1TTL  time.Duration

	hits   atomic.Uint64
	misses atomic.Uint64
}

// LayeredStats counts L1 lookups.
type LayeredStats struct {
	LocalHits   uint64
	LocalMisses uint64
}

func NewLayeredCache(remote Service, opts ...LayeredOption) *LayeredCache {
	cfg := layeredConfig{size: defaultLocalSize, ttl: defaultLocalTTL}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &LayeredCache{
		local:  NewMemoryCache(WithMemoryMaxSize(cfg.size)),
		remote: remote,
		l1TTL:  cfg.ttl,
	}
}

func (lc *LayeredCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if err := lc.remote.Set(ctx, key, value, expiration); err != nil {
		_ = lc.local.Delete(ctx, key)
		return err
	}
	_ = lc.local.Set(ctx, key, value, lc.localTTL(expiration))
	return nil
}

func (lc *LayeredCache) Get(ctx context.Context, key string, dest interface{}) error {
	if err := lc.local.Get(ctx, key, dest); err == nil {
		lc.hits.Add(1)
		return nil
	}
	lc.misses.Add(1)

	if err := lc.remote.Get(ctx, key, dest); err != nil {
		return err
	}
	_ = lc.local.Set(ctx, key, dest, lc.l1TTL)
	return nil
}

func (lc *LayeredCache) localTTL(expiration time.Duration) time.Duration {
	if expiration <= 0 || expiration > lc.l1TTL {
		return lc.l1TTL
	}
	return expiration
}

func (lc *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	_ = lc.local.Delete(ctx, keys...)
	return lc.remote.Delete(ctx, keys...)
}

func (lc *LayeredCache) DeleteByPattern(ctx context.Context, pattern string) error {
	_ = lc.local.DeleteByPattern(ctx, pattern)
	return lc.remote.DeleteByPattern(ctx, pattern)
}

// Keys, Exists and MGet always ask L2; L1 may hold a subset.
func (lc *LayeredCache) Keys(ctx context.Context, pattern string) ([]string, error) {
	return lc.remote.Keys(ctx, pattern)
}

func (lc *LayeredCache) Exists(ctx context.Context, keys ...string) (bool, error) {
	return lc.remote.Exists(ctx, keys...)
}

func (lc *LayeredCache) MGet(ctx context.Context, keys ...string) (map[string]string, error) {
	return lc.remote.MGet(ctx, keys...)
}

func (lc *LayeredCache) Stats() LayeredStats {
	return LayeredStats{LocalHits: lc.hits.Load(), LocalMisses: lc.misses.Load()}
}

// Close closes L1 and, when it supports it, L2.
func (lc *LayeredCache) Close() error {
	err := lc.local.Close()
	if c, ok := lc.remote.(io.Closer); ok {
		err = errors.Join(err, c.Close())
	}
	return err
}
