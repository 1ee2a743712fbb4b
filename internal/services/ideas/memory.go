package ideas

import (
	"context"
	"sort"
	"sync"
	"time"

	"SMCTrader/internal/domain/models"
)

// Memory is an in-process IdeaMemory used when Redis is disabled.
type Memory struct {
	mu     sync.Mutex
	expiry time.Duration
	now    func() time.Time
	ideas  map[string]map[string]models.Idea
}

func NewMemory(expiry time.Duration) *Memory {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &Memory{
		expiry: expiry,
		now:    time.Now,
		ideas:  make(map[string]map[string]models.Idea),
	}
}

// SetClock replaces the time source.
func (m *Memory) SetClock(now func() time.Time) { m.now = now }

func (m *Memory) IsAllowed(_ context.Context, symbol, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idea, ok := m.ideas[symbol][key]
	if !ok {
		return true, nil
	}
	now := m.now()
	if !now.Before(idea.ExpiresAt) {
		delete(m.ideas[symbol], key)
		return true, nil
	}
	return Allowed(idea, now), nil
}

func (m *Memory) MarkActive(_ context.Context, symbol, key string) error {
	m.mark(symbol, key, models.IdeaActive)
	return nil
}

func (m *Memory) MarkFailed(_ context.Context, symbol, key string) error {
	m.mark(symbol, key, models.IdeaFailed)
	return nil
}

func (m *Memory) mark(symbol, key string, status models.IdeaStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if m.ideas[symbol] == nil {
		m.ideas[symbol] = make(map[string]models.Idea)
	}
	m.ideas[symbol][key] = models.Idea{Key: key, Status: status, MarkedAt: now, ExpiresAt: now.Add(m.expiry)}
}

func (m *Memory) ResetAll(_ context.Context, symbol, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.ideas, symbol)
	return nil
}

// Failed lists the unexpired failed ideas of symbol ordered by key.
func (m *Memory) Failed(_ context.Context, symbol string) ([]models.Idea, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	out := []models.Idea{}
	for _, idea := range m.ideas[symbol] {
		if idea.Status == models.IdeaFailed && now.Before(idea.ExpiresAt) {
			out = append(out, idea)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
