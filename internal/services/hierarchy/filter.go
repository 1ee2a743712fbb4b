// Package hierarchy checks an entry direction against higher timeframe bias.
package hierarchy

import (
	"fmt"

	"SMCTrader/internal/domain/models"
)

var weights = map[models.Timeframe]float64{
	models.TF1d:  4,
	models.TF4h:  3,
	models.TF1h:  2,
	models.TF15m: 1.5,
	models.TF5m:  1,
}

// Weight returns the vote weight of a timeframe; unknown timeframes weigh 1.
func Weight(tf models.Timeframe) float64 {
	if w, ok := weights[tf]; ok {
		return w
	}
	return 1
}

// Filter validates entries taken on the execution timeframe.
type Filter struct {
	exec models.Timeframe
}

func NewFilter(exec models.Timeframe) *Filter {
	return &Filter{exec: exec}
}

// Validate blocks entries against a daily bias that has not printed a reversal in
// the entry direction, and against two opposing intraday higher timeframes.
func (f *Filter) Validate(direction models.Polarity, reads []models.TimeframeRead) models.Alignment {
	out := models.Alignment{
		Direction:  direction,
		Score:      f.Score(direction, reads),
		Multiplier: 1,
		Reason:     models.ReasonOK,
	}
	if direction == models.PolarityNone {
		return out
	}
	opposite := direction.Opposite()

	byTF := make(map[models.Timeframe]models.TimeframeRead, len(reads))
	for _, r := range reads {
		byTF[r.Timeframe] = r
	}

	if d1, ok := byTF[models.TF1d]; ok && d1.Bias == opposite {
		if !(d1.Label.IsCHOCH() && d1.Label.Polarity() == direction) {
			return blocked(out, fmt.Sprintf("%s opposes %s without a reversal", models.TF1d, direction))
		}
	}

	oppose, support := 0, 0
	for _, tf := range []models.Timeframe{models.TF4h, models.TF1h} {
		r, ok := byTF[tf]
		if !ok || tf == f.exec {
			continue
		}
		switch r.Bias {
		case opposite:
			oppose++
			out.Conflicts = append(out.Conflicts, string(tf))
		case direction:
			support++
		}
	}
	switch {
	case oppose >= 2:
		return blocked(out, "4h and 1h oppose the entry")
	case oppose == 1 && support == 0:
		out.Multiplier = 0.6
	case support >= 2:
		out.Multiplier = 1.2
	}
	return out
}

func blocked(a models.Alignment, conflict string) models.Alignment {
	a.Blocked = true
	a.Multiplier = 0
	a.Reason = models.ReasonHierarchyBlocked
	a.Conflicts = append(a.Conflicts, conflict)
	return a
}

// Score is the weighted agreement of higher timeframes with direction, 0-100.
// Neutral reads count half. With no reads the score is 50.
func (f *Filter) Score(direction models.Polarity, reads []models.TimeframeRead) float64 {
	score, total := 0.0, 0.0
	for _, r := range reads {
		if r.Timeframe == f.exec {
			continue
		}
		w := Weight(r.Timeframe)
		switch r.Bias {
		case direction:
			score += w * 100
		case models.PolarityNone:
			score += w * 50
		}
		total += w
	}
	if total == 0 {
		return 50
	}
	return score / total
}
