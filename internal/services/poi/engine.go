// Package poi detects fair value gaps and order blocks, and runs the validation,
// ranking and permission pipeline that decides which blocks may be traded.
package poi

import (
	"SMCTrader/internal/domain/models"
	"SMCTrader/internal/domain/service"
	"SMCTrader/internal/services/liquidity"
	"SMCTrader/internal/services/zones"
)

// ZoneBars is how many closed bars define the dealing range when no classifier is injected.
const ZoneBars = 100

type Options struct {
	Lookback        int
	Tolerance       float64
	LifecycleWindow int
	BufferPct       float64
	RequireKillZone bool
	Classifier      service.ZoneClassifier
	Oracle          service.SessionOracle
	Sweep           liquidity.SweepFunc
}

func DefaultOptions() Options {
	return Options{
		Lookback:        200,
		LifecycleWindow: DefaultLifecycleWindow,
		BufferPct:       zones.DefaultBufferPct,
		RequireKillZone: true,
	}
}

type Engine struct {
	opts Options
}

func NewEngine(opts Options) *Engine {
	return &Engine{opts: opts}
}

// Finalize runs the whole pipeline over series with the given structure state.
func (e *Engine) Finalize(series models.Series, st models.StructureState) models.POISet {
	return Finalize(series, st, e.opts)
}

// WithOracle returns an engine sharing options but using oracle for the kill-zone gate.
func (e *Engine) WithOracle(oracle service.SessionOracle) *Engine {
	opts := e.opts
	opts.Oracle = oracle
	return &Engine{opts: opts}
}

// Finalize detects, links, classifies, validates, ranks and gates blocks. Price for
// ranking is the last closed close.
func Finalize(series models.Series, st models.StructureState, opts Options) models.POISet {
	set := models.POISet{OrderBlocks: []models.OrderBlock{}, FVGs: []models.FairValueGap{}}
	lc := series.LastClosed()
	if lc < 2 {
		return set
	}

	set.FVGs = FindFVGs(series, opts.Lookback)
	obs := Associate(FindOrderBlocks(series, opts.Lookback), set.FVGs, opts.Tolerance)
	for i := range obs {
		obs[i] = Classify(obs[i], series, opts.LifecycleWindow)
		obs[i] = ValidateBasic(obs[i], st, series, opts.Sweep)
	}
	obs = RankHierarchy(obs, series[lc].Close)

	classifier := opts.Classifier
	if classifier == nil {
		if z, ok := zones.FromSeries(series, ZoneBars, opts.BufferPct); ok {
			set.Zone = &z
			classifier = zones.NewClassifier(z)
		}
	}

	for i := range obs {
		ok, reason, ob := EvaluatePermission(obs[i], classifier, opts.Oracle, opts.RequireKillZone)
		ob.PermissionToTrade = ok
		if !ok && ob.ValidBasic {
			ob.Reason = reason
		}
		obs[i] = ob
	}
	set.OrderBlocks = obs
	return set
}
