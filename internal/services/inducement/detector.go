// Package inducement finds recent candles that wicked through liquidity and closed
// back inside, weighted by the session they printed in.
package inducement

import (
	"time"

	"SMCTrader/internal/domain/models"
	"SMCTrader/internal/services/session"
)

const (
	DefaultLookback      = 10
	DefaultWickThreshold = 0.3
)

// SessionSource names the session of a bar.
type SessionSource interface {
	Current(t time.Time) models.SessionInfo
}

type Detector struct {
	lookback  int
	threshold float64
	sessions  SessionSource
}

func NewDetector(lookback int, threshold float64, sessions SessionSource) *Detector {
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	if threshold <= 0 {
		threshold = DefaultWickThreshold
	}
	return &Detector{lookback: lookback, threshold: threshold, sessions: sessions}
}

// Detect scans the last closed bars newest first and returns the first inducement
// wick, or nil. Per bar, sweeps above are checked before sweeps below, and previous
// day levels before swing levels. A bar is only tested against levels whose Index
// is before it; later levels did not exist yet when it printed.
func (d *Detector) Detect(series models.Series, levels []models.LiquidityLevel) *models.InducementWick {
	lc := series.LastClosed()
	if lc < 0 {
		return nil
	}
	above, below := split(levels)
	for i := lc; i >= 0 && i > lc-d.lookback; i-- {
		if !series.Usable(i) {
			continue
		}
		c := series[i]
		body := c.Body()
		if body <= 0 {
			continue
		}
		for _, l := range above {
			if l.Index >= i {
				continue
			}
			if c.High > l.Price && c.Close < l.Price && c.UpperWick()/body >= d.threshold {
				return d.wick(i, c, l, models.PolarityBearish, c.UpperWick()/body)
			}
		}
		for _, l := range below {
			if l.Index >= i {
				continue
			}
			if c.Low < l.Price && c.Close > l.Price && c.LowerWick()/body >= d.threshold {
				return d.wick(i, c, l, models.PolarityBullish, c.LowerWick()/body)
			}
		}
	}
	return nil
}

func split(levels []models.LiquidityLevel) (above, below []models.LiquidityLevel) {
	var swingHighs, swingLows []models.LiquidityLevel
	for _, l := range levels {
		switch l.Kind {
		case models.LevelPDH:
			above = append(above, l)
		case models.LevelPDL:
			below = append(below, l)
		case models.LevelSwingHigh, models.LevelEqualHighs:
			swingHighs = append(swingHighs, l)
		case models.LevelSwingLow, models.LevelEqualLows:
			swingLows = append(swingLows, l)
		}
	}
	return append(above, swingHighs...), append(below, swingLows...)
}

func (d *Detector) wick(i int, c models.Candle, l models.LiquidityLevel, pol models.Polarity, ratio float64) *models.InducementWick {
	base := models.ConfidenceMedium
	if l.Kind == models.LevelPDH || l.Kind == models.LevelPDL {
		base = models.ConfidenceHigh
	}
	w := &models.InducementWick{
		Index:      i,
		Time:       c.Time,
		Level:      l.Kind,
		LevelPrice: l.Price,
		Polarity:   pol,
		WickRatio:  ratio,
		Base:       base,
		Confidence: base,
	}
	if d.sessions != nil {
		info := d.sessions.Current(c.Time)
		w.Session = info.Name
		w.Score = info.Reliability
		w.Confidence = session.WeightedConfidence(info.Reliability)
	}
	return w
}
