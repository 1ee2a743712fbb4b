package service

import (
	"context"
	"time"

	"SMCTrader/internal/domain/models"
)

// LiquiditySource supplies resting liquidity levels for a series.
type LiquiditySource interface {
	Levels(series models.Series) []models.LiquidityLevel
}

// SessionOracle answers whether a moment falls inside a high-probability trading window.
type SessionOracle interface {
	IsInKillZone(t time.Time) bool
}

// ZoneClassifier names the premium/discount zone of a price.
type ZoneClassifier interface {
	Classify(price float64) models.ZoneName
}

// IdeaMemory remembers trade ideas so a failed idea is not retried before it cools down.
type IdeaMemory interface {
	IsAllowed(ctx context.Context, symbol, key string) (bool, error)
	MarkActive(ctx context.Context, symbol, key string) error
	MarkFailed(ctx context.Context, symbol, key string) error
	ResetAll(ctx context.Context, symbol, reason string) error
	Failed(ctx context.Context, symbol string) ([]models.Idea, error)
}

// NarrativeStore persists session records across restarts. key identifies one
// symbol and timeframe pair.
type NarrativeStore interface {
	Save(ctx context.Context, key string, rec models.SessionRecord) error
	Load(ctx context.Context, key string) (models.SessionRecord, bool, error)
}
