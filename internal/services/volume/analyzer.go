// Package volume reads participation on the last closed bar: spikes against the
// recent average, price/volume divergence and on-balance volume.
package volume

import (
	"fmt"
	"strings"

	talib "github.com/markcheno/go-talib"

	"SMCTrader/internal/domain/models"
)

const (
	DefaultSpikeLookback      = 20
	DefaultDivergenceLookback = 10
	DefaultSpikeRatio         = 1.5

	mediumRatio   = 2.0
	strongRatio   = 3.0
	minDivergence = 5

	spikeBoost      = 15
	divergenceBoost = 10
)

type Analyzer struct {
	spikeLookback int
	divLookback   int
	spikeRatio    float64
}

func NewAnalyzer(spikeLookback, divLookback int, spikeRatio float64) *Analyzer {
	if spikeLookback <= 0 {
		spikeLookback = DefaultSpikeLookback
	}
	if divLookback <= 0 {
		divLookback = DefaultDivergenceLookback
	}
	if spikeRatio <= 0 {
		spikeRatio = DefaultSpikeRatio
	}
	return &Analyzer{spikeLookback: spikeLookback, divLookback: divLookback, spikeRatio: spikeRatio}
}

// closedBars returns the usable closed bars in order.
func closedBars(s models.Series) []models.Candle {
	lc := s.LastClosed()
	out := make([]models.Candle, 0, lc+1)
	for i := 0; i <= lc; i++ {
		if s.Usable(i) {
			out = append(out, s[i])
		}
	}
	return out
}

// Analyze returns the volume read of the last closed bar, or nil when the feed
// carries no volume for it or for any of the bars before it.
func (a *Analyzer) Analyze(s models.Series) *models.VolumeReport {
	bars := closedBars(s)
	if len(bars) < 2 {
		return nil
	}
	last := bars[len(bars)-1]
	if last.Volume <= 0 {
		return nil
	}

	from := len(bars) - 1 - a.spikeLookback
	if from < 0 {
		from = 0
	}
	var sum float64
	var n int
	for _, b := range bars[from : len(bars)-1] {
		if b.Volume > 0 {
			sum += b.Volume
			n++
		}
	}
	if n == 0 {
		return nil
	}

	r := &models.VolumeReport{
		Current: last.Volume,
		Average: sum / float64(n),
		Flow:    flow(last),
	}
	r.Ratio = r.Current / r.Average
	r.Spike = r.Ratio > a.spikeRatio
	r.Strength = strength(r.Ratio, r.Spike)
	r.Divergence = a.divergence(bars)
	r.OBV = obv(bars)
	return r
}

func strength(ratio float64, spike bool) models.VolumeStrength {
	switch {
	case ratio >= strongRatio:
		return models.VolumeStrong
	case ratio >= mediumRatio:
		return models.VolumeMedium
	case spike:
		return models.VolumeWeak
	}
	return models.VolumeNormal
}

// divergence compares the mean volume of the two halves of the window against
// the net price move across it.
func (a *Analyzer) divergence(bars []models.Candle) models.Polarity {
	if len(bars) < a.divLookback {
		return models.PolarityNone
	}
	w := bars[len(bars)-a.divLookback:]
	var vols []float64
	for _, b := range w {
		if b.Volume > 0 {
			vols = append(vols, b.Volume)
		}
	}
	if len(vols) < minDivergence {
		return models.PolarityNone
	}
	mid := len(vols) / 2
	early, recent := mean(vols[:mid]), mean(vols[mid:])
	move := w[len(w)-1].Close - w[0].Close
	switch {
	case move > 0 && recent < early*0.8:
		return models.PolarityBearish
	case move < 0 && recent > early*1.2:
		return models.PolarityBullish
	}
	return models.PolarityNone
}

// flow is buying when a bullish bar barely wicked above its body and selling when
// a bearish bar barely wicked below it.
func flow(c models.Candle) models.VolumeFlow {
	body := c.Body()
	switch {
	case c.IsBullish() && c.UpperWick() < body*0.2:
		return models.FlowBuying
	case c.IsBearish() && c.LowerWick() < body*0.2:
		return models.FlowSelling
	}
	return models.FlowNeutral
}

func obv(bars []models.Candle) float64 {
	closes := make([]float64, len(bars))
	vols := make([]float64, len(bars))
	for i, b := range bars {
		closes[i], vols[i] = b.Close, b.Volume
	}
	out := talib.Obv(closes, vols)
	return out[len(out)-1]
}

func mean(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s / float64(len(xs))
}

// Confirm scores the report for a trade in dir: a spike adds 15 and a divergence
// pointing the same way adds 10. A nil report or no direction is left unconfirmed.
func Confirm(r *models.VolumeReport, dir models.Polarity) {
	if r == nil {
		return
	}
	r.Confirmed, r.Boost, r.Reasons = false, 0, nil
	if dir == models.PolarityNone {
		return
	}
	if r.Spike {
		r.Confirmed = true
		r.Boost += spikeBoost
		r.Reasons = append(r.Reasons, fmt.Sprintf("volume spike %.1fx", r.Ratio))
	}
	if r.Divergence != models.PolarityNone && r.Divergence == dir {
		r.Confirmed = true
		r.Boost += divergenceBoost
		r.Reasons = append(r.Reasons, strings.ToLower(string(dir))+" volume divergence")
	}
}
