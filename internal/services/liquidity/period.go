package liquidity

import (
	"math"
	"time"

	"SMCTrader/internal/domain/models"
)

const day = 24 * time.Hour

// PreviousPeriod returns the high and low of the UTC calendar day before the day of
// now (or of the last closed bar when now is zero). When that day has no closed bars
// the last 24 hours of closed bars ending at the last closed bar are used instead.
func PreviousPeriod(series models.Series, now time.Time) models.PeriodLevels {
	out := models.PeriodLevels{Source: models.PeriodNone, EndIndex: -1}
	lc := series.LastClosed()
	if lc < 0 {
		return out
	}
	if now.IsZero() {
		now = series[lc].Time
	}

	today := now.UTC().Truncate(day)
	from := today.Add(-day)
	if levels, ok := window(series, lc, from, today); ok {
		levels.Source = models.PeriodPreviousDay
		return levels
	}

	end := series[lc].Time
	if levels, ok := window(series, lc, end.Add(-day), end.Add(time.Nanosecond)); ok {
		levels.Source = models.PeriodRolling24h
		return levels
	}
	return out
}

// window aggregates usable bars with from <= time < to.
func window(series models.Series, lc int, from, to time.Time) (models.PeriodLevels, bool) {
	var (
		out   models.PeriodLevels
		found bool
	)
	for i := 0; i <= lc; i++ {
		if !series.Usable(i) {
			continue
		}
		c := series[i]
		t := c.Time.UTC()
		if t.Before(from) || !t.Before(to) {
			continue
		}
		if !found {
			out = models.PeriodLevels{High: c.High, Low: c.Low, From: from, To: to, EndIndex: i}
			found = true
			continue
		}
		out.High = math.Max(out.High, c.High)
		out.Low = math.Min(out.Low, c.Low)
		out.EndIndex = i
	}
	if found {
		out.Degenerate = math.Abs(out.High-out.Low) <= 1e-9*math.Max(1, math.Abs(out.High))
	}
	return out, found
}
