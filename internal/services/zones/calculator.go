// Package zones splits a dealing range into premium, discount and equilibrium.
package zones

import (
	"math"

	"SMCTrader/internal/domain/models"
)

// DefaultBufferPct is the half-width of the equilibrium band as a percent of the range.
const DefaultBufferPct = 2.0

// Calculate builds the zone for a range. Inverted bounds are swapped; an empty or
// non-finite range yields false.
func Calculate(high, low, bufferPct float64) (models.Zone, bool) {
	if math.IsNaN(high) || math.IsNaN(low) || math.IsInf(high, 0) || math.IsInf(low, 0) {
		return models.Zone{}, false
	}
	if high < low {
		high, low = low, high
	}
	rng := high - low
	if rng <= 0 {
		return models.Zone{}, false
	}
	if bufferPct < 0 {
		bufferPct = DefaultBufferPct
	}

	eq := (high + low) / 2
	buf := rng * bufferPct / 100
	z := models.Zone{
		SwingHigh:     high,
		SwingLow:      low,
		Range:         rng,
		Equilibrium:   eq,
		Buffer:        buf,
		EqUpper:       eq + buf,
		EqLower:       eq - buf,
		PremiumStart:  eq + buf,
		PremiumEnd:    high,
		DiscountStart: low,
		DiscountEnd:   eq - buf,
		Fib382:        low + rng*0.382,
		Fib500:        eq,
		Fib618:        low + rng*0.618,
		Fib786:        low + rng*0.786,
	}
	z.PremiumMid = (z.PremiumEnd + z.PremiumStart) / 2
	z.DiscountMid = (z.DiscountStart + z.DiscountEnd) / 2
	return z, true
}

// FromSeries builds the zone from the extremes of the last n closed bars.
func FromSeries(series models.Series, n int, bufferPct float64) (models.Zone, bool) {
	lc := series.LastClosed()
	if lc < 0 {
		return models.Zone{}, false
	}
	from := 0
	if n > 0 {
		from = lc - n + 1
	}
	hi, lo, ok := series.HighLow(from, lc)
	if !ok {
		return models.Zone{}, false
	}
	return Calculate(hi, lo, bufferPct)
}

// Strength is how deep price sits inside the premium or discount leg, 0-100.
// Prices in equilibrium score 0.
func Strength(z models.Zone, price float64) float64 {
	switch {
	case price > z.PremiumStart:
		leg := z.PremiumEnd - z.PremiumStart
		if leg <= 0 {
			return 0
		}
		return math.Min(100, (price-z.PremiumStart)/leg*100)
	case price < z.DiscountEnd:
		leg := z.DiscountEnd - z.DiscountStart
		if leg <= 0 {
			return 0
		}
		return math.Min(100, (z.DiscountEnd-price)/leg*100)
	default:
		return 0
	}
}

// Reference names a level of the zone for distance queries.
type Reference string

const (
	RefEquilibrium Reference = "EQUILIBRIUM"
	RefPremiumMid  Reference = "PREMIUM_MID"
	RefDiscountMid Reference = "DISCOUNT_MID"
)

// DistanceFrom is price minus the reference level; positive means above it.
func DistanceFrom(z models.Zone, price float64, ref Reference) float64 {
	switch ref {
	case RefPremiumMid:
		return price - z.PremiumMid
	case RefDiscountMid:
		return price - z.DiscountMid
	default:
		return price - z.Equilibrium
	}
}

// CanExecute allows longs only in discount and shorts only in premium.
func CanExecute(direction models.Polarity, zone models.ZoneName) bool {
	switch direction {
	case models.PolarityBullish:
		return zone == models.ZoneDiscount
	case models.PolarityBearish:
		return zone == models.ZonePremium
	default:
		return false
	}
}
