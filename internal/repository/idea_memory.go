package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"SMCTrader/internal/domain/models"
	"SMCTrader/internal/domain/service"
	"SMCTrader/internal/services/ideas"
	"SMCTrader/pkg/cache"
)

const ideaPrefix = "idea"

// CacheIdeaMemory stores ideas in a cache.Service, one key per idea, expiring
// with the idea itself.
type CacheIdeaMemory struct {
	c      cache.Service
	expiry time.Duration
	now    func() time.Time
}

func NewCacheIdeaMemory(c cache.Service, expiry time.Duration) *CacheIdeaMemory {
	if expiry <= 0 {
		expiry = ideas.DefaultExpiry
	}
	return &CacheIdeaMemory{c: c, expiry: expiry, now: time.Now}
}

// SetClock replaces the time source.
func (m *CacheIdeaMemory) SetClock(now func() time.Time) { m.now = now }

func ideaKey(symbol, key string) string {
	return cache.GenerateKeyWithParams(ideaPrefix, symbol, key)
}

func (m *CacheIdeaMemory) IsAllowed(ctx context.Context, symbol, key string) (bool, error) {
	var idea models.Idea
	if err := m.c.Get(ctx, ideaKey(symbol, key), &idea); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return true, nil
		}
		return false, fmt.Errorf("idea lookup: %w", err)
	}
	return ideas.Allowed(idea, m.now()), nil
}

func (m *CacheIdeaMemory) MarkActive(ctx context.Context, symbol, key string) error {
	return m.mark(ctx, symbol, key, models.IdeaActive)
}

func (m *CacheIdeaMemory) MarkFailed(ctx context.Context, symbol, key string) error {
	return m.mark(ctx, symbol, key, models.IdeaFailed)
}

func (m *CacheIdeaMemory) mark(ctx context.Context, symbol, key string, status models.IdeaStatus) error {
	now := m.now()
	idea := models.Idea{Key: key, Status: status, MarkedAt: now, ExpiresAt: now.Add(m.expiry)}
	if err := m.c.Set(ctx, ideaKey(symbol, key), idea, m.expiry); err != nil {
		return fmt.Errorf("mark idea %s: %w", status, err)
	}
	return nil
}

func (m *CacheIdeaMemory) ResetAll(ctx context.Context, symbol, _ string) error {
	pattern := cache.BuildPattern(cache.GenerateKeyWithParams(ideaPrefix, symbol, ""))
	if err := m.c.DeleteByPattern(ctx, pattern); err != nil {
		return fmt.Errorf("reset ideas: %w", err)
	}
	return nil
}

func (m *CacheIdeaMemory) Failed(ctx context.Context, symbol string) ([]models.Idea, error) {
	pattern := cache.BuildPattern(cache.GenerateKeyWithParams(ideaPrefix, symbol, ""))
	keys, err := m.c.Keys(ctx, pattern)
	if err != nil {
		return nil, fmt.Errorf("list ideas: %w", err)
	}
	found, err := cache.MGetTyped[models.Idea](ctx, m.c, keys...)
	if err != nil {
		return nil, fmt.Errorf("load ideas: %w", err)
	}
	now := m.now()
	out := []models.Idea{}
	for _, idea := range found {
		if idea.Status == models.IdeaFailed && now.Before(idea.ExpiresAt) {
			out = append(out, idea)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

const narrativePrefix = "narrative"

// CacheNarrativeStore persists session records per symbol and timeframe pair.
type CacheNarrativeStore struct {
	c   cache.Service
	ttl time.Duration
}

func NewCacheNarrativeStore(c cache.Service, ttl time.Duration) *CacheNarrativeStore {
	return &CacheNarrativeStore{c: c, ttl: ttl}
}

func (s *CacheNarrativeStore) Save(ctx context.Context, key string, rec models.SessionRecord) error {
	if err := s.c.Set(ctx, cache.GenerateKey(narrativePrefix, key), rec, s.ttl); err != nil {
		return fmt.Errorf("save narrative: %w", err)
	}
	return nil
}

func (s *CacheNarrativeStore) Load(ctx context.Context, key string) (models.SessionRecord, bool, error) {
	var rec models.SessionRecord
	if err := s.c.Get(ctx, cache.GenerateKey(narrativePrefix, key), &rec); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return models.SessionRecord{}, false, nil
		}
		return models.SessionRecord{}, false, fmt.Errorf("load narrative: %w", err)
	}
	return rec, true, nil
}

var (
	_ service.IdeaMemory     = (*CacheIdeaMemory)(nil)
	_ service.IdeaMemory     = (*ideas.Memory)(nil)
	_ service.NarrativeStore = (*CacheNarrativeStore)(nil)
)
