// Package liquidity maps resting liquidity (previous period extremes, swing and
// equal-level pools) and detects wick sweeps through it.
package liquidity

import (
	"time"

	"SMCTrader/internal/domain/models"
	"SMCTrader/internal/services/swing"
)

type Config struct {
	EqualTolerance float64
	EqualLookback  int
	NearestCount   int
}

func DefaultConfig() Config {
	return Config{EqualTolerance: 0.5, EqualLookback: 100, NearestCount: 3}
}

// Engine builds the liquidity map for one series. It holds no series state.
type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	if cfg.NearestCount <= 0 {
		cfg.NearestCount = DefaultConfig().NearestCount
	}
	return &Engine{cfg: cfg}
}

// Build assembles the liquidity map using swings already detected on series.
func (e *Engine) Build(series models.Series, swings []models.SwingPoint, now time.Time) models.LiquidityMap {
	lc := series.LastClosed()
	period := PreviousPeriod(series, now)
	m := models.LiquidityMap{
		Period:     period,
		EqualHighs: EqualFromSwings(swings, lc, models.SwingHigh, e.cfg.EqualTolerance, e.cfg.EqualLookback),
		EqualLows:  EqualFromSwings(swings, lc, models.SwingLow, e.cfg.EqualTolerance, e.cfg.EqualLookback),
		PDHSweep:   models.SweepResult{BarIndex: -1, Wick: models.WickNone, Reason: models.ReasonNoData},
		PDLSweep:   models.SweepResult{BarIndex: -1, Wick: models.WickNone, Reason: models.ReasonNoData},
		SweptSide:  models.PolarityNone,
	}

	clusters := append(append([]models.EqualCluster{}, m.EqualHighs...), m.EqualLows...)
	price := 0.0
	if c, ok := series.LastClosedCandle(); ok {
		price = c.Close
	}
	m.Nearest = Nearest(CollectLevels(period, swings, clusters), price, e.cfg.NearestCount)

	if period.Found() && !period.Degenerate {
		m.PDHSweep = WickSweep(series, period.High, period.EndIndex)
		m.PDLSweep = WickSweep(series, period.Low, period.EndIndex)
		m.SweptSide = sweptSide(m.PDHSweep, m.PDLSweep)
	}
	return m
}

// sweptSide reads the most recent external sweep: a swept low favours longs and a
// swept high favours shorts.
func sweptSide(pdh, pdl models.SweepResult) models.Polarity {
	high := pdh.IsSweep && pdh.Wick == models.WickUpper
	low := pdl.IsSweep && pdl.Wick == models.WickLower
	switch {
	case high && low:
		if pdl.BarIndex > pdh.BarIndex {
			return models.PolarityBullish
		}
		return models.PolarityBearish
	case low:
		return models.PolarityBullish
	case high:
		return models.PolarityBearish
	default:
		return models.PolarityNone
	}
}

// Levels implements the liquidity source collaborator.
func (e *Engine) Levels(series models.Series) []models.LiquidityLevel {
	swings := swing.Detect(series)
	m := e.Build(series, swings, time.Time{})
	clusters := append(append([]models.EqualCluster{}, m.EqualHighs...), m.EqualLows...)
	return CollectLevels(m.Period, swings, clusters)
}
