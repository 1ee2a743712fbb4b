package liquidity

import (
	"sort"

	"SMCTrader/internal/domain/models"
	"SMCTrader/internal/services/swing"
)

// EqualExtremes groups swing extremes of kind whose prices sit within tolerance of
// each other. Only swings inside the last lookback closed bars are considered
// (lookback <= 0 means all). Clusters with fewer than two members are dropped.
func EqualExtremes(series models.Series, kind models.SwingKind, tolerance float64, lookback int) []models.EqualCluster {
	return EqualFromSwings(swing.Detect(series), series.LastClosed(), kind, tolerance, lookback)
}

// EqualFromSwings is EqualExtremes over already detected swings.
func EqualFromSwings(points []models.SwingPoint, lastClosed int, kind models.SwingKind, tolerance float64, lookback int) []models.EqualCluster {
	if tolerance < 0 {
		tolerance = -tolerance
	}
	cand := make([]models.SwingPoint, 0, len(points))
	for _, p := range points {
		if p.Kind != kind {
			continue
		}
		if lookback > 0 && p.Index < lastClosed-lookback {
			continue
		}
		cand = append(cand, p)
	}
	if len(cand) < 2 {
		return []models.EqualCluster{}
	}
	sort.SliceStable(cand, func(i, j int) bool { return cand[i].Price < cand[j].Price })

	out := make([]models.EqualCluster, 0)
	group := []models.SwingPoint{cand[0]}
	flush := func() {
		if len(group) >= 2 {
			out = append(out, cluster(kind, group))
		}
	}
	for _, p := range cand[1:] {
		if p.Price-group[0].Price <= tolerance {
			group = append(group, p)
			continue
		}
		flush()
		group = []models.SwingPoint{p}
	}
	flush()

	sort.SliceStable(out, func(i, j int) bool { return out[i].FirstIndex < out[j].FirstIndex })
	return out
}

func cluster(kind models.SwingKind, group []models.SwingPoint) models.EqualCluster {
	c := models.EqualCluster{Kind: kind, Count: len(group), FirstIndex: group[0].Index, LastIndex: group[0].Index}
	sum := 0.0
	for _, p := range group {
		sum += p.Price
		if p.Index < c.FirstIndex {
			c.FirstIndex = p.Index
		}
		if p.Index > c.LastIndex {
			c.LastIndex = p.Index
		}
	}
	c.Price = sum / float64(len(group))
	c.Span = c.LastIndex - c.FirstIndex
	return c
}
