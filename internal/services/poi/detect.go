package poi

import (
	"math"
	"sort"

	"SMCTrader/internal/domain/models"
)

// bodyWindow is how many closed bars feed the displacement filter.
const bodyWindow = 20

// FindFVGs scans fully closed triples whose first bar lies in the last lookback
// closed bars. Mitigation is the first later closed bar that trades back into the gap.
func FindFVGs(series models.Series, lookback int) []models.FairValueGap {
	lc := series.LastClosed()
	out := make([]models.FairValueGap, 0)
	if lc < 2 {
		return out
	}
	start := 0
	if lookback > 0 && lc-lookback > 0 {
		start = lc - lookback
	}
	for i := start; i+2 <= lc; i++ {
		if !series.Usable(i) || !series.Usable(i+1) || !series.Usable(i+2) {
			continue
		}
		a, c := series[i], series[i+2]
		var g models.FairValueGap
		switch {
		case a.High < c.Low:
			g = models.FairValueGap{Polarity: models.PolarityBullish, Top: c.Low, Bottom: a.High}
		case a.Low > c.High:
			g = models.FairValueGap{Polarity: models.PolarityBearish, Top: a.Low, Bottom: c.High}
		default:
			continue
		}
		g.ID = models.FVGID(i+1, g.Polarity)
		g.GapSize = g.Top - g.Bottom
		g.CreatedByBar = i + 1
		g.CreatedTime = series[i+1].Time
		g.MitigatedAtBar = -1
		markMitigation(series, lc, &g)
		out = append(out, g)
	}
	return out
}

func markMitigation(series models.Series, lc int, g *models.FairValueGap) {
	for j := g.CreatedByBar + 2; j <= lc; j++ {
		if !series.Usable(j) {
			continue
		}
		c := series[j]
		if (g.Polarity == models.PolarityBullish && c.Low <= g.Top) ||
			(g.Polarity == models.PolarityBearish && c.High >= g.Bottom) {
			g.Mitigated = true
			g.MitigatedAtBar = j
			return
		}
	}
}

// FindOrderBlocks returns candidates in bar order. A bullish block is a bearish
// candle followed by a bar with a higher high; a bearish block is a bullish candle
// followed by a bar with a lower low. The candle body must be at least the mean
// absolute body of the last 20 closed bars ending at the block itself, so the
// confirming bar never raises its own bar.
func FindOrderBlocks(series models.Series, lookback int) []models.OrderBlock {
	lc := series.LastClosed()
	out := make([]models.OrderBlock, 0)
	if lc < 1 {
		return out
	}
	start := 0
	if lookback > 0 && lc-lookback > 0 {
		start = lc - lookback
	}
	for i := start; i+1 <= lc; i++ {
		if !series.Usable(i) || !series.Usable(i+1) {
			continue
		}
		cur, next := series[i], series[i+1]
		if cur.Body() < meanBody(series, i) {
			continue
		}
		var pol models.Polarity
		switch {
		case cur.IsBearish() && next.High > cur.High:
			pol = models.PolarityBullish
		case cur.IsBullish() && next.Low < cur.Low:
			pol = models.PolarityBearish
		default:
			continue
		}
		out = append(out, newBlock(i, cur, pol))
	}
	return out
}

func newBlock(i int, c models.Candle, pol models.Polarity) models.OrderBlock {
	return models.OrderBlock{
		ID:            models.OBID(i, pol),
		Polarity:      pol,
		BarIndex:      i,
		Time:          c.Time,
		Top:           c.High,
		Bottom:        c.Low,
		BodyHigh:      c.BodyHigh(),
		BodyLow:       c.BodyLow(),
		BodySize:      c.Body(),
		MeanThreshold: (c.High + c.Low) / 2,
		Class:         models.ClassPotential,
		Rank:          models.RankNone,
		Reason:        models.ReasonInsufficientData,
	}
}

// meanBody averages absolute bodies of up to bodyWindow usable bars ending at end.
func meanBody(series models.Series, end int) float64 {
	sum, n := 0.0, 0
	for j := end; j >= 0 && n < bodyWindow; j-- {
		if !series.Usable(j) {
			continue
		}
		sum += math.Abs(series[j].Close - series[j].Open)
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Associate links each block to the earliest created gap overlapping its footprint.
func Associate(obs []models.OrderBlock, fvgs []models.FairValueGap, tol float64) []models.OrderBlock {
	sorted := make([]models.FairValueGap, len(fvgs))
	copy(sorted, fvgs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CreatedByBar < sorted[j].CreatedByBar })

	out := make([]models.OrderBlock, len(obs))
	for i, ob := range obs {
		ob.HasFVG = false
		ob.FVGID = ""
		for _, g := range sorted {
			if ob.Top+tol >= g.Bottom && ob.Bottom-tol <= g.Top {
				ob.HasFVG = true
				ob.FVGID = g.ID
				break
			}
		}
		if ob.HasFVG {
			ob.Reason = models.ReasonFVGAssociated
		} else {
			ob.Reason = models.ReasonNoFVGAssociation
		}
		out[i] = ob
	}
	return out
}
