package liquidity

import "SMCTrader/internal/domain/models"

// WickSweep scans closed bars strictly after start for the first one whose wick
// pierced target and whose close came back to the near side of it. The upper side
// is checked before the lower side on each bar; the earliest bar wins. Bars that
// are malformed are skipped.
//
// Only bars in (start, LastClosed] are read, so the result for a given last closed
// index never changes and a reported sweep survives any number of newer closes.
func WickSweep(series models.Series, target float64, start int) models.SweepResult {
	res := models.SweepResult{BarIndex: -1, Target: target, Wick: models.WickNone}
	lc := series.LastClosed()
	if start < -1 {
		start = -1
	}
	if start+1 > lc {
		res.Reason = models.ReasonNoData
		return res
	}

	for i := start + 1; i <= lc; i++ {
		if !series.Usable(i) {
			continue
		}
		c := series[i]
		switch {
		case c.High > target && c.Close <= target:
			return hit(res, i, c, c.High, models.WickUpper)
		case c.Low < target && c.Close >= target:
			return hit(res, i, c, c.Low, models.WickLower)
		}
	}
	res.Reason = models.ReasonNotYetSwept
	return res
}

func hit(res models.SweepResult, i int, c models.Candle, price float64, wick models.WickSide) models.SweepResult {
	res.IsSweep = true
	res.BarIndex = i
	res.Time = c.Time
	res.Price = price
	res.Wick = wick
	res.Reason = models.ReasonSwept
	return res
}

// SweepFunc is the signature of the sweep primitive so callers can substitute it.
type SweepFunc func(series models.Series, target float64, start int) models.SweepResult
