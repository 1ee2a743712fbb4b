package repository

import (
	"context"
	"errors"
	"time"

	"SMCTrader/internal/domain/models"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrInsufficientCandles = errors.New("insufficient candles")
	ErrUnavailable         = errors.New("storage unavailable")
)

// MarketStream is a live candle feed.
type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Candle, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// CandlePublisher forwards closed candles to the message bus.
type CandlePublisher interface {
	Publish(ctx context.Context, c *models.Candle) error
	PublishBatch(ctx context.Context, candles []*models.Candle) error
	Close() error
}

// CandleWriter persists closed candles.
type CandleWriter interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Store(ctx context.Context, c *models.Candle) error
	StoreBatch(ctx context.Context, candles []*models.Candle) error
	Health(ctx context.Context) error // ping
	Close() error
}

// CandleStore provides read-only access to candles for evaluation, ascending by time.
type CandleStore interface {
	GetCandles(ctx context.Context, symbol string, tf models.Timeframe, from, to time.Time) (models.Series, error)
	GetLatestNCandles(ctx context.Context, symbol string, tf models.Timeframe, n int) (models.Series, error)
}

// ContextPublisher announces evaluated contexts to downstream consumers.
type ContextPublisher interface {
	Publish(ctx context.Context, tc *models.TradingContext) error
	Close() error
}

// ContextStorage keeps evaluated context snapshots.
type ContextStorage interface {
	Save(ctx context.Context, tc *models.TradingContext) error
	// Latest returns ErrNotFound when nothing was stored for the pair.
	Latest(ctx context.Context, symbol string, tf models.Timeframe) (*models.TradingContext, error)
}

type Metrics interface {
	RecordMessageSent(backend, symbol string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
	RecordEvaluation(symbol, timeframe, reason string, stage int)
	RecordEntrySignal(symbol, direction string)
}
