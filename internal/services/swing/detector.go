// Package swing finds two-bar fractal highs and lows on closed candles.
package swing

import "SMCTrader/internal/domain/models"

// MinCandles is the smallest series that can hold one fractal.
const MinCandles = 5

// Detect returns swing points in ascending index order. A bar is a swing high when
// its high is strictly above the two bars on each side, and symmetric for lows. A
// candidate is emitted only once both right-hand bars have closed, so no index is
// ever above LastClosed()-2.
func Detect(series models.Series) []models.SwingPoint {
	lc := series.LastClosed()
	if len(series) < MinCandles || lc < 2 {
		return []models.SwingPoint{}
	}

	out := make([]models.SwingPoint, 0, 16)
	for i := 2; i <= lc-2; i++ {
		if !windowUsable(series, i) {
			continue
		}
		c := series[i]
		if isHigh(series, i) {
			out = append(out, models.SwingPoint{Index: i, Time: c.Time, Price: c.High, Kind: models.SwingHigh})
		}
		if isLow(series, i) {
			out = append(out, models.SwingPoint{Index: i, Time: c.Time, Price: c.Low, Kind: models.SwingLow})
		}
	}
	return out
}

func windowUsable(s models.Series, i int) bool {
	for j := i - 2; j <= i+2; j++ {
		if !s.Usable(j) {
			return false
		}
	}
	return true
}

func isHigh(s models.Series, i int) bool {
	h := s[i].High
	return h > s[i-1].High && h > s[i-2].High && h > s[i+1].High && h > s[i+2].High
}

func isLow(s models.Series, i int) bool {
	l := s[i].Low
	return l < s[i-1].Low && l < s[i-2].Low && l < s[i+1].Low && l < s[i+2].Low
}

// Highs filters swing highs, preserving order.
func Highs(points []models.SwingPoint) []models.SwingPoint {
	return filter(points, models.SwingHigh)
}

// Lows filters swing lows, preserving order.
func Lows(points []models.SwingPoint) []models.SwingPoint {
	return filter(points, models.SwingLow)
}

// LastN returns up to n of the most recent swings of kind, oldest first.
func LastN(points []models.SwingPoint, kind models.SwingKind, n int) []models.SwingPoint {
	all := filter(points, kind)
	if n <= 0 {
		return []models.SwingPoint{}
	}
	if len(all) > n {
		all = all[len(all)-n:]
	}
	return all
}

func filter(points []models.SwingPoint, kind models.SwingKind) []models.SwingPoint {
	out := make([]models.SwingPoint, 0, len(points)/2+1)
	for _, p := range points {
		if p.Kind == kind {
			out = append(out, p)
		}
	}
	return out
}
