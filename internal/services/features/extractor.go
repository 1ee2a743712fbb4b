package features

import (
	"math"

	talib "github.com/markcheno/go-talib"

	"SMCTrader/internal/domain/models"
)

// DefaultATRPeriod is the ATR length used for stop buffers.
const DefaultATRPeriod = 14

// closedOHLC returns the high/low/close columns of the usable closed bars.
func closedOHLC(s models.Series) (highs, lows, closes []float64) {
	lc := s.LastClosed()
	for i := 0; i <= lc; i++ {
		if !s.Usable(i) {
			continue
		}
		highs = append(highs, s[i].High)
		lows = append(lows, s[i].Low)
		closes = append(closes, s[i].Close)
	}
	return highs, lows, closes
}

// ComputeLogReturns computes log returns r_t = ln(C_t / C_{t-1}) over closed bars.
// It returns nil if there are fewer than two closed bars.
func ComputeLogReturns(s models.Series) []float64 {
	_, _, closes := closedOHLC(s)
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		prev := closes[i-1]
		cur := closes[i]
		if prev <= 0 || cur <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, math.Log(cur/prev))
	}
	return out
}

// RealizedVolatility computes annualized realized volatility over a rolling window
// using the provided number of bars per year. Returns the latest window sigma.
func RealizedVolatility(logReturns []float64, window int, barsPerYear float64) float64 {
	if window <= 1 || len(logReturns) < window {
		return 0
	}
	sum := 0.0
	sum2 := 0.0
	for i := len(logReturns) - window; i < len(logReturns); i++ {
		r := logReturns[i]
		sum += r
		sum2 += r * r
	}
	n := float64(window)
	mean := sum / n
	variance := (sum2 - n*mean*mean) / (n - 1)
	if variance < 0 {
		variance = 0
	}
	// annualize
	return math.Sqrt(variance * barsPerYear)
}

// BarsPerYear returns the approximate number of bars per year for a timeframe.
func BarsPerYear(tf models.Timeframe) float64 {
	d := tf.Duration()
	if d <= 0 {
		return 365 * 24 * 60
	}
	return float64(365*24*60*60) / d.Seconds()
}

// ATR returns the latest Wilder ATR over the closed bars, or 0 when fewer than
// period+1 bars are available.
func ATR(s models.Series, period int) float64 {
	if period <= 0 {
		period = DefaultATRPeriod
	}
	highs, lows, closes := closedOHLC(s)
	if len(closes) <= period {
		return 0
	}
	atr := talib.Atr(highs, lows, closes, period)
	return atr[len(atr)-1]
}

// Displacement is the body of the last closed bar relative to the mean body of
// the window closed bars before it. 0 when there is nothing to compare with.
func Displacement(s models.Series, window int) float64 {
	lc := s.LastClosed()
	if !s.Usable(lc) || window <= 0 {
		return 0
	}
	sum, n := 0.0, 0
	for i := lc - 1; i >= 0 && n < window; i-- {
		if !s.Usable(i) {
			continue
		}
		sum += s[i].Body()
		n++
	}
	if n == 0 || sum == 0 {
		return 0
	}
	return s[lc].Body() / (sum / float64(n))
}

// Extract computes the feature snapshot attached to a trading context.
func Extract(s models.Series, tf models.Timeframe) map[string]float64 {
	rets := ComputeLogReturns(s)
	feats := map[string]float64{
		"atr_14":       ATR(s, DefaultATRPeriod),
		"displacement": Displacement(s, 20),
		"sigma_now":    RealizedVolatility(rets, min(60, len(rets)), BarsPerYear(tf)),
	}
	if c, ok := s.LastClosedCandle(); ok && c.Close > 0 {
		feats["range_pct"] = c.Range() / c.Close * 100
	}
	return feats
}
