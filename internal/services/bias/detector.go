// Package bias reads directional bias from daily candle shape.
package bias

import (
	"time"

	"SMCTrader/internal/domain/models"
)

const (
	DefaultLookback = 3
	bullishClose    = 0.65
	bearishClose    = 0.35
)

// Detector votes over the last completed daily candles.
type Detector struct {
	lookback int
}

func NewDetector(lookback int) *Detector {
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	return &Detector{lookback: lookback}
}

// Pattern classifies one daily candle. A close in the top 35% of the range above
// the open is OLHC (bullish); a close in the bottom 35% below the open is OHLC.
func Pattern(c models.Candle) models.DailyBias {
	out := models.DailyBias{Date: c.Time, Pattern: models.PatternNeutral, Bias: models.PolarityNone}
	rng := c.Range()
	if !c.Valid() || !c.IsClosed() || rng <= 0 {
		return out
	}
	out.ClosePosition = (c.Close - c.Low) / rng
	switch {
	case out.ClosePosition > bullishClose && c.Close > c.Open:
		out.Pattern, out.Bias = models.PatternOLHC, models.PolarityBullish
	case out.ClosePosition < bearishClose && c.Close < c.Open:
		out.Pattern, out.Bias = models.PatternOHLC, models.PolarityBearish
	}
	return out
}

// Daily resamples closed bars into UTC calendar days. The day holding the last
// closed bar is still open and is left out.
func Daily(series models.Series) models.Series {
	lc := series.LastClosed()
	out := models.Series{}
	if lc < 0 {
		return out
	}
	current := series[lc].Time.UTC().Truncate(24 * time.Hour)
	for i := 0; i <= lc; i++ {
		if !series.Usable(i) {
			continue
		}
		c := series[i]
		d := c.Time.UTC().Truncate(24 * time.Hour)
		if !d.Before(current) {
			break
		}
		if n := len(out); n > 0 && out[n-1].Time.Equal(d) {
			last := &out[n-1]
			if c.High > last.High {
				last.High = c.High
			}
			if c.Low < last.Low {
				last.Low = c.Low
			}
			last.Close = c.Close
			last.Volume += c.Volume
			continue
		}
		out = append(out, models.Candle{Time: d, Symbol: c.Symbol, Open: c.Open, High: c.High, Low: c.Low, Close: c.Close, Volume: c.Volume})
	}
	return out
}

// Detect aggregates the bias of the last completed days of series.
func (d *Detector) Detect(series models.Series) models.BiasReport {
	days := Daily(series)
	if len(days) > d.lookback {
		days = days[len(days)-d.lookback:]
	}
	rep := models.BiasReport{Days: make([]models.DailyBias, 0, len(days)), Bias: models.PolarityNone}
	for _, c := range days {
		db := Pattern(c)
		rep.Days = append(rep.Days, db)
		switch db.Bias {
		case models.PolarityBullish:
			rep.Bullish++
		case models.PolarityBearish:
			rep.Bearish++
		}
	}
	if len(days) < d.lookback {
		return rep
	}
	switch {
	case rep.Bullish > rep.Bearish:
		rep.Bias = models.PolarityBullish
	case rep.Bearish > rep.Bullish:
		rep.Bias = models.PolarityBearish
	}
	return rep
}

// Aligned reports whether direction trades with the bias. Neutral bias allows both.
func Aligned(b, direction models.Polarity) bool {
	return b == models.PolarityNone || b == direction
}
