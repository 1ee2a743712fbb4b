package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"SMCTrader/internal/domain/models"
	domrepo "SMCTrader/internal/domain/repository"
	applogger "SMCTrader/pkg/logger"
)

// CHCandleStore implements CandleStore backed by ClickHouse. Reads go through a
// circuit breaker so a struggling cluster fails fast instead of stacking queries.
type CHCandleStore struct {
	db    *sql.DB
	table string
	cb    *gobreaker.CircuitBreaker
	l     *applogger.Logger
}

// BreakerSettings tunes the read circuit breaker.
type BreakerSettings struct {
	MaxRequests         uint32
	Interval            time.Duration
	Timeout             time.Duration
	ConsecutiveFailures uint32
}

func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests:         1,
		Interval:            time.Minute,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 5,
	}
}

func NewCHCandleStore(db *sql.DB, table string, bs BreakerSettings) *CHCandleStore {
	s := &CHCandleStore{db: db, table: table}
	s.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "clickhouse-candles",
		MaxRequests: bs.MaxRequests,
		Interval:    bs.Interval,
		Timeout:     bs.Timeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= bs.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if s.l != nil {
				s.l.Warn("circuit breaker state change",
					applogger.String("breaker", name),
					applogger.String("from", from.String()),
					applogger.String("to", to.String()),
				)
			}
		},
	})
	return s
}

// SetLogger injects a structured logger.
func (s *CHCandleStore) SetLogger(l *applogger.Logger) { s.l = l }

// State reports the breaker state for health endpoints.
func (s *CHCandleStore) State() string { return s.cb.State().String() }

func (s *CHCandleStore) GetCandles(ctx context.Context, symbol string, tf models.Timeframe, from, to time.Time) (models.Series, error) {
	const qtpl = `
        SELECT ts, open, high, low, close, volume
        FROM %s FINAL
        WHERE symbol = ? AND tf = ? AND ts >= ? AND ts <= ?
        ORDER BY ts ASC
    `
	q := fmt.Sprintf(qtpl, s.table)
	out, err := s.query(ctx, "get_candles", symbol, tf, q, symbol, string(tf), from, to)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *CHCandleStore) GetLatestNCandles(ctx context.Context, symbol string, tf models.Timeframe, n int) (models.Series, error) {
	const qtpl = `
        SELECT ts, open, high, low, close, volume
        FROM %s FINAL
        WHERE symbol = ? AND tf = ?
        ORDER BY ts DESC
        LIMIT ?
    `
	q := fmt.Sprintf(qtpl, s.table)
	out, err := s.query(ctx, "latest_candles", symbol, tf, q, symbol, string(tf), n)
	if err != nil {
		return nil, err
	}
	// reverse to ASC
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (s *CHCandleStore) query(ctx context.Context, op, symbol string, tf models.Timeframe, q string, args ...any) (models.Series, error) {
	start := time.Now()
	res, err := s.cb.Execute(func() (interface{}, error) {
		return s.scan(ctx, symbol, tf, q, args...)
	})
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse "+op+" error",
				applogger.String("table", s.table),
				applogger.String("symbol", symbol),
				applogger.String("tf", string(tf)),
				applogger.Error(err),
			)
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%s: %w", op, domrepo.ErrUnavailable)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	out := res.(models.Series)
	if s.l != nil {
		s.l.Debug("clickhouse "+op+" ok",
			applogger.String("table", s.table),
			applogger.String("symbol", symbol),
			applogger.String("tf", string(tf)),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *CHCandleStore) scan(ctx context.Context, symbol string, tf models.Timeframe, q string, args ...any) (models.Series, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	out := make(models.Series, 0, 512)
	for rows.Next() {
		c := models.Candle{Symbol: symbol, Timeframe: tf}
		if err := rows.Scan(&c.Time, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		c.Time = c.Time.UTC()
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}
