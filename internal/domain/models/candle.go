package models

import (
	"math"
	"time"
)

// Candle is one OHLCV bar. A bar still being built by the feed is Forming and its
// close must not be read by any detector.
type Candle struct {
	Time      time.Time `json:"time"`
	Symbol    string    `json:"symbol,omitempty"`
	Timeframe Timeframe `json:"tf,omitempty"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
	Forming   bool      `json:"forming,omitempty"`
}

// IsClosed reports whether the close of the bar is known.
func (c Candle) IsClosed() bool {
	return !c.Forming && finite(c.Close)
}

// Valid reports whether open/high/low are usable numbers with high >= low.
func (c Candle) Valid() bool {
	return finite(c.Open) && finite(c.High) && finite(c.Low) && c.High >= c.Low
}

func (c Candle) Body() float64     { return math.Abs(c.Close - c.Open) }
func (c Candle) BodyHigh() float64 { return math.Max(c.Open, c.Close) }
func (c Candle) BodyLow() float64  { return math.Min(c.Open, c.Close) }
func (c Candle) Range() float64    { return c.High - c.Low }
func (c Candle) IsBullish() bool   { return c.Close > c.Open }
func (c Candle) IsBearish() bool   { return c.Close < c.Open }

// UpperWick is the distance between the high and the top of the body.
func (c Candle) UpperWick() float64 { return c.High - c.BodyHigh() }

// LowerWick is the distance between the bottom of the body and the low.
func (c Candle) LowerWick() float64 { return c.BodyLow() - c.Low }

// Series is an ascending, gap-free run of candles addressed by position.
type Series []Candle

// LastClosed returns the highest index whose close is present, or -1.
func (s Series) LastClosed() int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i].IsClosed() {
			return i
		}
	}
	return -1
}

// Usable reports whether bar i exists, is closed and is well formed.
func (s Series) Usable(i int) bool {
	if i < 0 || i >= len(s) {
		return false
	}
	return s[i].IsClosed() && s[i].Valid()
}

// Closed returns the prefix of the series ending at the last closed bar.
func (s Series) Closed() Series {
	lc := s.LastClosed()
	if lc < 0 {
		return Series{}
	}
	return s[:lc+1]
}

// LastClosedCandle returns the last closed bar, if any.
func (s Series) LastClosedCandle() (Candle, bool) {
	lc := s.LastClosed()
	if lc < 0 {
		return Candle{}, false
	}
	return s[lc], true
}

// HighLow returns the extreme high and low of the usable bars in [from, to].
func (s Series) HighLow(from, to int) (hi, lo float64, ok bool) {
	if from < 0 {
		from = 0
	}
	for i := from; i <= to && i < len(s); i++ {
		if !s.Usable(i) {
			continue
		}
		if !ok {
			hi, lo, ok = s[i].High, s[i].Low, true
			continue
		}
		if s[i].High > hi {
			hi = s[i].High
		}
		if s[i].Low < lo {
			lo = s[i].Low
		}
	}
	return hi, lo, ok
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
