// Package narrative gates entries behind an ordered sequence of market events.
package narrative

import (
	"sync"
	"time"

	"SMCTrader/internal/domain/models"
)

// DefaultMaxHops caps transitions taken in one Update.
const DefaultMaxHops = 16

const (
	ResetHTFOBInvalidated = "HTF_OB_INVALIDATED"
	ResetBiasFlipped      = "BIAS_FLIPPED"
)

type condition func(in models.NarrativeInput, dir models.Polarity) bool

type transition struct {
	next models.NarrativeState
	cond condition
}

func sameDirection(in models.NarrativeInput, dir models.Polarity) bool {
	return dir != models.PolarityNone && in.Direction == dir
}

var transitions = map[models.NarrativeState]transition{
	models.StateIdle: {
		next: models.StateTradingRangeDefined,
		cond: func(in models.NarrativeInput, _ models.Polarity) bool { return in.RangeDefined },
	},
	models.StateTradingRangeDefined: {
		next: models.StateExternalLiquiditySwept,
		cond: func(in models.NarrativeInput, _ models.Polarity) bool {
			return in.LiquiditySwept && in.Direction != models.PolarityNone
		},
	},
	models.StateExternalLiquiditySwept: {
		next: models.StateHTFPOIReached,
		cond: func(in models.NarrativeInput, dir models.Polarity) bool {
			return in.HTFPOIReached && sameDirection(in, dir)
		},
	},
	models.StateHTFPOIReached: {
		next: models.StateLTFStructureShift,
		cond: func(in models.NarrativeInput, dir models.Polarity) bool {
			return in.LTFStructureShift && sameDirection(in, dir)
		},
	},
	models.StateLTFStructureShift: {
		next: models.StateLTFPOIMitigated,
		cond: func(in models.NarrativeInput, dir models.Polarity) bool {
			return in.LTFPOIMitigated && sameDirection(in, dir)
		},
	},
	models.StateLTFPOIMitigated: {
		next: models.StateEntryAllowed,
		cond: func(in models.NarrativeInput, dir models.Polarity) bool {
			return in.EntryPOIPermitted && sameDirection(in, dir)
		},
	},
}

type Option func(*Session)

// WithClock overrides the time source used for UpdatedAt and resets.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithMaxHops overrides the per-update transition cap.
func WithMaxHops(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.maxHops = n
		}
	}
}

// Session owns one symbol's narrative. It is safe for concurrent use.
type Session struct {
	mu        sync.Mutex
	state     models.NarrativeState
	direction models.Polarity
	updatedAt time.Time
	lastReset *models.NarrativeReset
	maxHops   int
	now       func() time.Time
}

func NewSession(opts ...Option) *Session {
	s := &Session{state: models.StateIdle, maxHops: DefaultMaxHops, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Update applies global resets, then advances as many stages as the input allows.
func (s *Session) Update(in models.NarrativeInput) models.NarrativeSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	switch {
	case in.HTFOBInvalidated:
		s.resetLocked(ResetHTFOBInvalidated, now)
	case in.BiasFlipped:
		s.resetLocked(ResetBiasFlipped, now)
	}

	for hop := 0; hop < s.maxHops; hop++ {
		tr, ok := transitions[s.state]
		if !ok || !tr.cond(in, s.direction) {
			break
		}
		if s.state == models.StateTradingRangeDefined {
			s.direction = in.Direction
		}
		s.state = tr.next
	}
	s.updatedAt = now
	return s.snapshotLocked()
}

// Reset forces the session back to IDLE.
func (s *Session) Reset(reason string) models.NarrativeSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.resetLocked(reason, now)
	s.updatedAt = now
	return s.snapshotLocked()
}

func (s *Session) resetLocked(reason string, at time.Time) {
	s.lastReset = &models.NarrativeReset{Reason: reason, From: s.state, At: at}
	s.state = models.StateIdle
	s.direction = models.PolarityNone
}

func (s *Session) Snapshot() models.NarrativeSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Restore loads a persisted snapshot. Unknown states restore as IDLE.
func (s *Session) Restore(snap models.NarrativeSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if snap.State.Index() < 0 {
		snap.State = models.StateIdle
		snap.Direction = models.PolarityNone
	}
	s.state = snap.State
	s.direction = snap.Direction
	s.updatedAt = snap.UpdatedAt
	if snap.LastReset != nil {
		r := *snap.LastReset
		s.lastReset = &r
	} else {
		s.lastReset = nil
	}
}

func (s *Session) snapshotLocked() models.NarrativeSnapshot {
	snap := models.NarrativeSnapshot{
		State:        s.state,
		EntryAllowed: s.state == models.StateEntryAllowed,
		Direction:    s.direction,
		StageIndex:   s.state.Index(),
		UpdatedAt:    s.updatedAt,
	}
	if s.lastReset != nil {
		r := *s.lastReset
		snap.LastReset = &r
	}
	return snap
}
