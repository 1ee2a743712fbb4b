package liquidity

import (
	"math"
	"sort"

	"SMCTrader/internal/domain/models"
)

// CollectLevels flattens period levels, swings and equal clusters into one list.
func CollectLevels(period models.PeriodLevels, swings []models.SwingPoint, clusters []models.EqualCluster) []models.LiquidityLevel {
	out := make([]models.LiquidityLevel, 0, len(swings)+len(clusters)+2)
	if period.Found() {
		out = append(out,
			models.LiquidityLevel{Kind: models.LevelPDH, Price: period.High, Index: period.EndIndex},
			models.LiquidityLevel{Kind: models.LevelPDL, Price: period.Low, Index: period.EndIndex},
		)
	}
	for _, s := range swings {
		kind := models.LevelSwingLow
		if s.Kind == models.SwingHigh {
			kind = models.LevelSwingHigh
		}
		out = append(out, models.LiquidityLevel{Kind: kind, Price: s.Price, Index: s.Index})
	}
	for _, c := range clusters {
		kind := models.LevelEqualLows
		if c.Kind == models.SwingHigh {
			kind = models.LevelEqualHighs
		}
		out = append(out, models.LiquidityLevel{Kind: kind, Price: c.Price, Index: c.LastIndex, Count: c.Count})
	}
	return out
}

// Nearest splits levels into those strictly above and strictly below price, each
// sorted by distance and capped at n (n <= 0 means no cap).
func Nearest(levels []models.LiquidityLevel, price float64, n int) models.NearestLiquidity {
	out := models.NearestLiquidity{Reference: price, Above: []models.LiquidityLevel{}, Below: []models.LiquidityLevel{}}
	for _, l := range levels {
		if math.IsNaN(l.Price) {
			continue
		}
		l.Distance = math.Abs(l.Price - price)
		switch {
		case l.Price > price:
			out.Above = append(out.Above, l)
		case l.Price < price:
			out.Below = append(out.Below, l)
		}
	}
	byDistance := func(s []models.LiquidityLevel) {
		sort.SliceStable(s, func(i, j int) bool { return s[i].Distance < s[j].Distance })
	}
	byDistance(out.Above)
	byDistance(out.Below)
	if n > 0 {
		if len(out.Above) > n {
			out.Above = out.Above[:n]
		}
		if len(out.Below) > n {
			out.Below = out.Below[:n]
		}
	}
	return out
}

// StaticSource serves a fixed list of levels regardless of the series.
type StaticSource struct {
	levels []models.LiquidityLevel
}

func NewStaticSource(levels []models.LiquidityLevel) *StaticSource {
	cp := make([]models.LiquidityLevel, len(levels))
	copy(cp, levels)
	return &StaticSource{levels: cp}
}

func (s *StaticSource) Levels(models.Series) []models.LiquidityLevel {
	out := make([]models.LiquidityLevel, len(s.levels))
	copy(out, s.levels)
	return out
}
