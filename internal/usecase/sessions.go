package usecase

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"SMCTrader/internal/domain/models"
	"SMCTrader/internal/domain/service"
	"SMCTrader/internal/services/narrative"
	"SMCTrader/pkg/logger"
)

// SessionKey identifies the narrative of one symbol traded on one timeframe pair.
func SessionKey(symbol string, tf, htf models.Timeframe) string {
	return symbol + "|" + string(tf) + "|" + string(htf)
}

func keySymbol(key string) string {
	if i := strings.IndexByte(key, '|'); i >= 0 {
		return key[:i]
	}
	return key
}

// SymbolState is the long-lived memory of one session key between evaluations.
// Callers hold it between Acquire and Release.
type SymbolState struct {
	mu      sync.Mutex
	Session *narrative.Session
	Bias    models.Polarity
	CHOCHAt time.Time
	LastBar time.Time
}

func (st *SymbolState) record() models.SessionRecord {
	return models.SessionRecord{
		Narrative: st.Session.Snapshot(),
		Bias:      st.Bias,
		CHOCHAt:   st.CHOCHAt,
		LastBar:   st.LastBar,
	}
}

func (st *SymbolState) load(rec models.SessionRecord) {
	st.Session.Restore(rec.Narrative)
	st.Bias = rec.Bias
	st.CHOCHAt = rec.CHOCHAt
	st.LastBar = rec.LastBar
}

// Sessions owns one narrative session per key and persists its records. Only
// the candle driver advances a session; readers work on detached copies.
type Sessions struct {
	mu    sync.Mutex
	items map[string]*SymbolState
	store service.NarrativeStore
	opts  []narrative.Option
	l     *logger.Logger
}

func NewSessions(store service.NarrativeStore, l *logger.Logger, opts ...narrative.Option) *Sessions {
	if l == nil {
		l = logger.NewNop()
	}
	return &Sessions{items: make(map[string]*SymbolState), store: store, opts: opts, l: l}
}

// Fresh returns an unregistered state for one-off evaluations.
func (s *Sessions) Fresh() *SymbolState {
	return &SymbolState{Session: narrative.NewSession(s.opts...)}
}

// Acquire returns the locked state of key, restoring it from the store the
// first time the key is seen.
func (s *Sessions) Acquire(ctx context.Context, key string) *SymbolState {
	s.mu.Lock()
	st, ok := s.items[key]
	if !ok {
		st = s.Fresh()
		s.items[key] = st
		st.mu.Lock()
		s.mu.Unlock()
		if rec, ok := s.load(ctx, key); ok {
			st.load(rec)
			s.l.Info("narrative restored", logger.String("key", key), logger.String("state", string(rec.Narrative.State)))
		}
		return st
	}
	s.mu.Unlock()
	st.mu.Lock()
	return st
}

func (s *Sessions) load(ctx context.Context, key string) (models.SessionRecord, bool) {
	if s.store == nil {
		return models.SessionRecord{}, false
	}
	rec, ok, err := s.store.Load(ctx, key)
	if err != nil {
		s.l.Warn("narrative restore failed", logger.String("key", key), logger.Error(err))
		return models.SessionRecord{}, false
	}
	return rec, ok
}

// Release persists the current record and unlocks the state.
func (s *Sessions) Release(ctx context.Context, key string, st *SymbolState) {
	defer st.mu.Unlock()
	if s.store == nil {
		return
	}
	if err := s.store.Save(ctx, key, st.record()); err != nil {
		s.l.Warn("narrative save failed", logger.String("key", key), logger.Error(err))
	}
}

// Peek returns an unregistered copy of key's state: the live one when the key is
// registered, else the persisted one, else a fresh state. Changes to the copy are
// never seen by the live session.
func (s *Sessions) Peek(ctx context.Context, key string) *SymbolState {
	cp := s.Fresh()
	s.mu.Lock()
	st, ok := s.items[key]
	s.mu.Unlock()
	if ok {
		st.mu.Lock()
		rec := st.record()
		st.mu.Unlock()
		cp.load(rec)
		return cp
	}
	if rec, ok := s.load(ctx, key); ok {
		cp.load(rec)
	}
	return cp
}

// Snapshot returns the narrative of key without advancing it.
func (s *Sessions) Snapshot(ctx context.Context, key string) models.NarrativeSnapshot {
	return s.Peek(ctx, key).Session.Snapshot()
}

// Reset sends the narrative of key back to IDLE and persists it.
func (s *Sessions) Reset(ctx context.Context, key, reason string) models.NarrativeSnapshot {
	st := s.Acquire(ctx, key)
	snap := st.Session.Reset(reason)
	s.Release(ctx, key, st)
	return snap
}

// ResetSymbol resets every registered session of symbol plus the given keys,
// which may not have been loaded since the last restart.
func (s *Sessions) ResetSymbol(ctx context.Context, symbol, reason string, keys ...string) map[string]models.NarrativeSnapshot {
	targets := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		targets[k] = struct{}{}
	}
	s.mu.Lock()
	for k := range s.items {
		if keySymbol(k) == symbol {
			targets[k] = struct{}{}
		}
	}
	s.mu.Unlock()

	out := make(map[string]models.NarrativeSnapshot, len(targets))
	for k := range targets {
		out[k] = s.Reset(ctx, k, reason)
	}
	return out
}

// Keys lists the registered session keys in order.
func (s *Sessions) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.items))
	for k := range s.items {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Symbols lists the symbols with a live session.
func (s *Sessions) Symbols() []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, k := range s.Keys() {
		sym := keySymbol(k)
		if _, ok := seen[sym]; ok {
			continue
		}
		seen[sym] = struct{}{}
		out = append(out, sym)
	}
	return out
}
