// Package structure runs the inducement -> sweep -> break-of-structure sequence
// over a candle series. The state is rebuilt from scratch on every call.
package structure

import (
	"SMCTrader/internal/domain/models"
	"SMCTrader/internal/services/liquidity"
	"SMCTrader/internal/services/swing"
)

// Evaluate labels the inducement candidate, confirms its sweep and looks for the
// structure break that follows it. Every outcome carries a reason code.
func Evaluate(series models.Series, swings []models.SwingPoint) models.StructureState {
	st := models.StructureState{
		Trend:       models.TrendNeutral,
		Phase:       models.PhaseNoIDM,
		Label:       models.LabelNone,
		BOSBarIndex: -1,
	}

	highs := swing.LastN(swings, models.SwingHigh, 2)
	lows := swing.LastN(swings, models.SwingLow, 2)
	if len(highs) < 2 || len(lows) < 2 {
		st.Reason = models.ReasonInsufficientData
		return st
	}

	st.Trend = trend(highs, lows)
	idm := findIDM(swings, st.Trend)
	if idm == nil {
		st.Reason = models.ReasonNoIDM
		return st
	}
	st.IDM = idm
	st.Phase = models.PhaseIDMPresent

	sweep := liquidity.WickSweep(series, idm.Price, idm.Index)
	if !sweep.IsSweep {
		st.Reason = models.ReasonIDMNotSwept
		return st
	}
	st.Sweep = &sweep
	if sweep.Wick != expectedWick(idm.Polarity) {
		st.Reason = models.ReasonSweepWrongDirection
		return st
	}
	st.IsSwept = true
	st.Phase = models.PhaseIDMSwept

	level, bar, ok := findBOS(series, idm.Polarity, highs[1].Price, lows[1].Price, sweep.BarIndex)
	if !ok {
		st.Reason = models.ReasonNoBOSAfterSweep
		return st
	}
	st.StructureConfirmed = true
	st.Phase = models.PhaseStructureConfirmed
	st.BOSLevel = &level
	st.BOSBarIndex = bar
	st.Label = label(idm.Polarity, swings)
	st.Reason = models.ReasonStructureConfirmed
	return st
}

// EvaluateSeries detects swings on series and evaluates them.
func EvaluateSeries(series models.Series) models.StructureState {
	return Evaluate(series, swing.Detect(series))
}

func trend(highs, lows []models.SwingPoint) models.Trend {
	hh := highs[1].Price > highs[0].Price
	hl := lows[1].Price > lows[0].Price
	lh := highs[1].Price < highs[0].Price
	ll := lows[1].Price < lows[0].Price
	switch {
	case hh && hl:
		return models.TrendUp
	case lh && ll:
		return models.TrendDown
	default:
		return models.TrendNeutral
	}
}

// findIDM walks swings of the pullback side newest to oldest. In an uptrend the
// inducement is the first swing low above its predecessor; in a downtrend the first
// swing high below its predecessor.
func findIDM(swings []models.SwingPoint, tr models.Trend) *models.InducementCandidate {
	var (
		kind models.SwingKind
		pol  models.Polarity
		cmp  func(cur, prev float64) bool
	)
	switch tr {
	case models.TrendUp:
		kind, pol = models.SwingLow, models.PolarityBullish
		cmp = func(cur, prev float64) bool { return cur > prev }
	case models.TrendDown:
		kind, pol = models.SwingHigh, models.PolarityBearish
		cmp = func(cur, prev float64) bool { return cur < prev }
	default:
		return nil
	}

	side := swing.LastN(swings, kind, len(swings))
	for i := len(side) - 1; i >= 1; i-- {
		if cmp(side[i].Price, side[i-1].Price) {
			p := side[i]
			return &models.InducementCandidate{Index: p.Index, Time: p.Time, Price: p.Price, Polarity: pol}
		}
	}
	return nil
}

func expectedWick(p models.Polarity) models.WickSide {
	if p == models.PolarityBullish {
		return models.WickLower
	}
	return models.WickUpper
}

// findBOS returns the first close beyond the last swing on the side of pol, scanning
// from the sweep bar through the last closed bar.
func findBOS(series models.Series, pol models.Polarity, lastHigh, lastLow float64, from int) (float64, int, bool) {
	lc := series.LastClosed()
	for i := from; i <= lc; i++ {
		if !series.Usable(i) {
			continue
		}
		c := series[i].Close
		if pol == models.PolarityBullish && c > lastHigh {
			return lastHigh, i, true
		}
		if pol == models.PolarityBearish && c < lastLow {
			return lastLow, i, true
		}
	}
	return 0, -1, false
}

// label reports CHOCH when the leg before the broken one ran against the break:
// for a bullish break the swing high before the last one was a lower high, for a
// bearish break the swing low before the last one was a higher low. Anything else,
// including too little history to judge the earlier leg, is MSS.
func label(pol models.Polarity, swings []models.SwingPoint) models.StructureLabel {
	if pol == models.PolarityBullish {
		if h := swing.LastN(swings, models.SwingHigh, 3); len(h) == 3 && h[1].Price < h[0].Price {
			return models.LabelCHOCHBullish
		}
		return models.LabelMSSBullish
	}
	if l := swing.LastN(swings, models.SwingLow, 3); len(l) == 3 && l[1].Price > l[0].Price {
		return models.LabelCHOCHBearish
	}
	return models.LabelMSSBearish
}
