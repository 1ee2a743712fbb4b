package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"SMCTrader/internal/domain/models"
	domrepo "SMCTrader/internal/domain/repository"
	"SMCTrader/internal/domain/service"
	"SMCTrader/internal/services/bias"
	"SMCTrader/internal/services/chart"
	"SMCTrader/internal/services/features"
	"SMCTrader/internal/services/hierarchy"
	"SMCTrader/internal/services/ideas"
	"SMCTrader/internal/services/inducement"
	"SMCTrader/internal/services/liquidity"
	"SMCTrader/internal/services/narrative"
	"SMCTrader/internal/services/poi"
	"SMCTrader/internal/services/session"
	"SMCTrader/internal/services/structure"
	"SMCTrader/internal/services/swing"
	"SMCTrader/internal/services/volume"
	"SMCTrader/internal/services/zones"
	"SMCTrader/pkg/cache"
	"SMCTrader/pkg/logger"
)

// EngineConfig tunes the detectors run by the evaluator.
type EngineConfig struct {
	Timeframe        models.Timeframe
	HTFTimeframe     models.Timeframe
	Candles          int
	Lookback         int
	EqualTolerance   float64
	EqualLookback    int
	ZoneBufferPct    float64
	NearestCount     int
	LifecycleWindow  int
	RequireKillZone  bool
	NarrativeMaxHops int
	IdeaBucketStep   float64
	ContextCacheTTL  time.Duration
	LoadTimeout      time.Duration
}

func DefaultEngineConfig() EngineConfig {
	lc := liquidity.DefaultConfig()
	return EngineConfig{
		Timeframe:        models.TF5m,
		HTFTimeframe:     models.TF1h,
		Candles:          500,
		Lookback:         200,
		EqualTolerance:   lc.EqualTolerance,
		EqualLookback:    lc.EqualLookback,
		ZoneBufferPct:    zones.DefaultBufferPct,
		NearestCount:     lc.NearestCount,
		LifecycleWindow:  poi.DefaultLifecycleWindow,
		RequireKillZone:  true,
		NarrativeMaxHops: narrative.DefaultMaxHops,
		IdeaBucketStep:   1,
		ContextCacheTTL:  time.Minute,
		LoadTimeout:      10 * time.Second,
	}
}

// runMode says whose state a cycle reads and whether it may change it.
type runMode int

const (
	// modeAdvance moves the live session of the pair forward. Only the candle
	// driver runs in this mode.
	modeAdvance runMode = iota
	// modePeek runs on a detached copy of the live session.
	modePeek
	// modeFresh runs on a new IDLE session.
	modeFresh
)

type EvaluateParams struct {
	Symbol       string
	Timeframe    models.Timeframe
	HTFTimeframe models.Timeframe
	N            int
	Chart        bool
}

// ContextEvaluator runs the full analysis for one symbol and advances its narrative.
type ContextEvaluator struct {
	cfg      EngineConfig
	store    domrepo.CandleStore
	ideas    service.IdeaMemory
	sessions *Sessions
	cache    cache.Service
	metrics  domrepo.Metrics
	l        *logger.Logger
	now      func() time.Time

	liq    *liquidity.Engine
	clock  *session.Detector
	bias   *bias.Detector
	induce *inducement.Detector
	vol    *volume.Analyzer
}

// NewContextEvaluator wires the evaluator. The cache is optional.
func NewContextEvaluator(
	cfg EngineConfig,
	store domrepo.CandleStore,
	ideaMemory service.IdeaMemory,
	sessions *Sessions,
	c cache.Service,
	metrics domrepo.Metrics,
	l *logger.Logger,
) *ContextEvaluator {
	def := DefaultEngineConfig()
	if cfg.Candles <= 0 {
		cfg.Candles = def.Candles
	}
	if cfg.LoadTimeout <= 0 {
		cfg.LoadTimeout = def.LoadTimeout
	}
	if cfg.Timeframe == "" {
		cfg.Timeframe = def.Timeframe
	}
	if cfg.HTFTimeframe == "" {
		cfg.HTFTimeframe = def.HTFTimeframe
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if l == nil {
		l = logger.NewNop()
	}
	if sessions == nil {
		sessions = NewSessions(nil, l)
	}
	clock := session.NewDetector()
	return &ContextEvaluator{
		cfg:      cfg,
		store:    store,
		ideas:    ideaMemory,
		sessions: sessions,
		cache:    c,
		metrics:  metrics,
		l:        l,
		now:      time.Now,
		liq: liquidity.NewEngine(liquidity.Config{
			EqualTolerance: cfg.EqualTolerance,
			EqualLookback:  cfg.EqualLookback,
			NearestCount:   cfg.NearestCount,
		}),
		clock:  clock,
		bias:   bias.NewDetector(bias.DefaultLookback),
		induce: inducement.NewDetector(inducement.DefaultLookback, inducement.DefaultWickThreshold, clock),
		vol:    volume.NewAnalyzer(volume.DefaultSpikeLookback, volume.DefaultDivergenceLookback, volume.DefaultSpikeRatio),
	}
}

// SetClock overrides the time source used for EvaluatedAt.
func (e *ContextEvaluator) SetClock(now func() time.Time) { e.now = now }

func (e *ContextEvaluator) Sessions() *Sessions { return e.sessions }

// SessionAt classifies t with the evaluator's session clock.
func (e *ContextEvaluator) SessionAt(t time.Time) models.SessionInfo { return e.clock.Current(t) }

func (e *ContextEvaluator) normalize(p EvaluateParams) EvaluateParams {
	if p.Timeframe == "" {
		p.Timeframe = e.cfg.Timeframe
	}
	if p.HTFTimeframe == "" {
		p.HTFTimeframe = e.cfg.HTFTimeframe
	}
	if p.N <= 0 {
		p.N = e.cfg.Candles
	}
	return p
}

// Evaluate loads candles from storage and advances the session of the symbol and
// timeframe pair. It belongs to the candle driver. Results are cached per last
// closed bar, so repeated calls inside one bar do not advance the narrative twice.
func (e *ContextEvaluator) Evaluate(ctx context.Context, p EvaluateParams) (*models.TradingContext, error) {
	return e.evaluateStored(ctx, p, modeAdvance)
}

// Project returns the context of the pair without touching its session. The
// driver's cached context for the last closed bar is served when present; else
// the cycle runs on a copy of the live session and is not cached.
func (e *ContextEvaluator) Project(ctx context.Context, p EvaluateParams) (*models.TradingContext, error) {
	return e.evaluateStored(ctx, p, modePeek)
}

func (e *ContextEvaluator) evaluateStored(ctx context.Context, p EvaluateParams, mode runMode) (*models.TradingContext, error) {
	p = e.normalize(p)
	if p.Symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}

	ltf, htf, err := e.load(ctx, p)
	if err != nil {
		return nil, err
	}
	lc := ltf.LastClosed()
	if lc < 0 {
		return nil, fmt.Errorf("%s %s: %w", p.Symbol, p.Timeframe, domrepo.ErrNotFound)
	}

	key := contextKey(p, ltf[lc].Time)
	if e.cache != nil {
		var cached models.TradingContext
		if err := e.cache.Get(ctx, key, &cached); err == nil {
			return withChart(&cached, p.Chart), nil
		}
	}

	tc := e.run(ctx, p, ltf, htf, mode)
	if mode == modeAdvance && e.cache != nil && e.cfg.ContextCacheTTL > 0 {
		if err := e.cache.Set(ctx, key, tc, e.cfg.ContextCacheTTL); err != nil {
			e.l.Warn("context cache set failed", logger.String("key", key), logger.Error(err))
		}
	}
	return withChart(tc, p.Chart), nil
}

// EvaluateSeries evaluates caller-supplied candles. A stateless call runs on a
// fresh narrative; otherwise it runs on a copy of the pair's live session. Neither
// changes a live session or writes idea memory.
func (e *ContextEvaluator) EvaluateSeries(ctx context.Context, p EvaluateParams, ltf, htf models.Series, stateless bool) (*models.TradingContext, error) {
	p = e.normalize(p)
	if p.Symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	ltf = ascending(ltf)
	htf = ascending(htf)
	if ltf.LastClosed() < 0 {
		return nil, fmt.Errorf("%s %s: %w", p.Symbol, p.Timeframe, domrepo.ErrInsufficientCandles)
	}
	mode := modePeek
	if stateless {
		mode = modeFresh
	}
	return withChart(e.run(ctx, p, ltf, htf, mode), p.Chart), nil
}

func withChart(tc *models.TradingContext, keep bool) *models.TradingContext {
	if keep || tc.Chart == nil {
		return tc
	}
	out := *tc
	out.Chart = nil
	return &out
}

func contextKey(p EvaluateParams, lastClosed time.Time) string {
	return cache.GenerateKeyWithParams("ctx", p.Symbol, p.Timeframe, p.HTFTimeframe, lastClosed.Unix())
}

func ascending(s models.Series) models.Series {
	out := make(models.Series, len(s))
	copy(out, s)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out
}

// load fetches both timeframes concurrently. A failing higher timeframe degrades
// to an empty series.
func (e *ContextEvaluator) load(ctx context.Context, p EvaluateParams) (models.Series, models.Series, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.LoadTimeout)
	defer cancel()

	var (
		wg             sync.WaitGroup
		ltf, htf       models.Series
		ltfErr, htfErr error
	)
	start := time.Now()
	wg.Add(2)
	go func() {
		defer wg.Done()
		ltf, ltfErr = e.store.GetLatestNCandles(ctx, p.Symbol, p.Timeframe, p.N)
	}()
	go func() {
		defer wg.Done()
		htf, htfErr = e.store.GetLatestNCandles(ctx, p.Symbol, p.HTFTimeframe, p.N)
	}()
	wg.Wait()
	e.metrics.RecordLatency("load_candles", time.Since(start).Seconds())

	if ltfErr != nil {
		e.metrics.RecordError("load_candles")
		return nil, nil, fmt.Errorf("load %s %s candles: %w", p.Symbol, p.Timeframe, ltfErr)
	}
	if htfErr != nil {
		e.metrics.RecordError("load_htf_candles")
		e.l.Warn("higher timeframe unavailable",
			logger.String("symbol", p.Symbol),
			logger.String("tf", string(p.HTFTimeframe)),
			logger.Error(htfErr),
		)
		htf = models.Series{}
	}
	return ltf, htf, nil
}

// analysis holds the detector outputs of one cycle.
type analysis struct {
	ltf, htf   models.Series
	lc         int
	swings     []models.SwingPoint
	levels     []models.LiquidityLevel
	liq        models.LiquidityMap
	st         models.StructureState
	pois       models.POISet
	zone       *models.Zone
	htfSt      models.StructureState
	htfPOIs    models.POISet
	bias       models.BiasReport
	sessionNow models.SessionInfo
}

func (e *ContextEvaluator) analyze(ltf, htf models.Series) analysis {
	a := analysis{ltf: ltf, htf: htf, lc: ltf.LastClosed()}
	last := ltf[a.lc]

	a.swings = swing.Detect(ltf)
	a.liq = e.liq.Build(ltf, a.swings, time.Time{})
	clusters := append(append([]models.EqualCluster{}, a.liq.EqualHighs...), a.liq.EqualLows...)
	a.levels = liquidity.CollectLevels(a.liq.Period, a.swings, clusters)
	a.st = structure.Evaluate(ltf, a.swings)
	a.sessionNow = e.clock.Current(last.Time)

	higher := htf.LastClosed() >= 0
	rangeSrc := ltf
	if higher {
		rangeSrc = htf
	}

	opts := poi.Options{
		Lookback:        e.cfg.Lookback,
		Tolerance:       0,
		LifecycleWindow: e.cfg.LifecycleWindow,
		BufferPct:       e.cfg.ZoneBufferPct,
		RequireKillZone: e.cfg.RequireKillZone,
		Oracle:          e.clock,
		Sweep:           liquidity.WickSweep,
	}
	if z, ok := zones.FromSeries(rangeSrc, poi.ZoneBars, e.cfg.ZoneBufferPct); ok {
		a.zone = &z
		opts.Classifier = zones.NewClassifier(z)
	}
	a.pois = poi.Finalize(ltf, a.st, opts)
	if a.zone != nil {
		a.pois.Zone = a.zone
	} else {
		a.zone = a.pois.Zone
	}

	a.htfSt = models.StructureState{
		Trend:       models.TrendNeutral,
		Phase:       models.PhaseNoIDM,
		Label:       models.LabelNone,
		BOSBarIndex: -1,
		Reason:      models.ReasonInsufficientData,
	}
	a.htfPOIs = models.POISet{OrderBlocks: []models.OrderBlock{}, FVGs: []models.FairValueGap{}}
	if higher {
		hs := swing.Detect(htf)
		a.htfSt = structure.Evaluate(htf, hs)
		hopts := opts
		hopts.RequireKillZone = false
		hopts.Oracle = nil
		a.htfPOIs = poi.Finalize(htf, a.htfSt, hopts)
		a.htfPOIs.Zone = a.zone
	}

	a.bias = e.bias.Detect(rangeSrc)
	return a
}

// run evaluates one cycle. Only modeAdvance touches the live session or writes
// idea memory.
func (e *ContextEvaluator) run(ctx context.Context, p EvaluateParams, ltf, htf models.Series, mode runMode) *models.TradingContext {
	start := time.Now()
	a := e.analyze(ltf, htf)
	last := ltf[a.lc]

	tc := &models.TradingContext{
		ID:              uuid.NewString(),
		Symbol:          p.Symbol,
		Timeframe:       p.Timeframe,
		HTFTimeframe:    p.HTFTimeframe,
		EvaluatedAt:     e.now().UTC(),
		LastClosedIndex: a.lc,
		LastClosedTime:  last.Time,
		Price:           last.Close,
		Swings:          a.swings,
		Liquidity:       a.liq,
		Structure:       a.st,
		HTFStructure:    a.htfSt,
		POIs:            a.pois,
		HTFPOIs:         a.htfPOIs,
		Zone:            a.zone,
		Session:         a.sessionNow,
		Bias:            a.bias,
		Inducement:      e.induce.Detect(ltf, a.levels),
		Volume:          e.vol.Analyze(ltf),
		Features:        features.Extract(ltf, p.Timeframe),
	}
	if tc.Swings == nil {
		tc.Swings = []models.SwingPoint{}
	}
	if a.zone != nil {
		tc.ZoneName = a.zone.Classify(last.Close)
	}

	var st *SymbolState
	switch key := SessionKey(p.Symbol, p.Timeframe, p.HTFTimeframe); mode {
	case modeAdvance:
		st = e.sessions.Acquire(ctx, key)
		defer e.sessions.Release(ctx, key, st)
	case modePeek:
		st = e.sessions.Peek(ctx, key)
	default:
		st = e.sessions.Fresh()
	}
	e.advance(ctx, tc, a, st, mode)

	overlay := chart.Build(chart.Input{
		Series:    ltf,
		Swings:    a.swings,
		Structure: a.st,
		POIs:      a.pois,
		Zone:      a.zone,
		Levels:    a.levels,
		ATRPeriod: features.DefaultATRPeriod,
		RangeFrom: a.lc - poi.ZoneBars + 1,
	})
	tc.Chart = &overlay

	e.metrics.RecordLastPrice(p.Symbol, last.Close)
	e.metrics.RecordEvaluation(p.Symbol, string(p.Timeframe), string(tc.Reason), tc.Narrative.StageIndex)
	if tc.EntrySignal {
		e.metrics.RecordEntrySignal(p.Symbol, string(tc.Direction))
	}
	e.metrics.RecordLatency("evaluate", time.Since(start).Seconds())
	if v := tc.Volume; tc.EntrySignal && v != nil && v.Confirmed {
		e.l.Info("entry confirmed by volume",
			logger.String("symbol", p.Symbol),
			logger.Float64("ratio", v.Ratio),
			logger.Int("boost", v.Boost),
		)
	}
	e.l.Debug("context evaluated",
		logger.String("symbol", p.Symbol),
		logger.String("tf", string(p.Timeframe)),
		logger.String("state", string(tc.Narrative.State)),
		logger.String("reason", string(tc.Reason)),
		logger.Bool("entry", tc.EntrySignal),
	)
	return tc
}

// advance feeds the cycle's facts to the narrative, consults idea memory and
// settles the entry signal.
func (e *ContextEvaluator) advance(ctx context.Context, tc *models.TradingContext, a analysis, st *SymbolState, mode runMode) {
	last := a.ltf[a.lc]
	prev := st.Session.Snapshot()

	in := narrativeInput(a, prev.Direction, st.Bias)
	tc.NarrativeInput = in

	if mode != modeFresh && !st.LastBar.IsZero() && !last.Time.After(st.LastBar) {
		tc.Narrative = prev
	} else {
		tc.Narrative = st.Session.Update(in)
		st.LastBar = last.Time
	}
	if a.bias.Bias != models.PolarityNone {
		tc.Bias.Previous = st.Bias
		tc.Bias.Flipped = in.BiasFlipped
		st.Bias = a.bias.Bias
	}

	if mode == modeAdvance && e.ideas != nil {
		e.resetIdeas(ctx, tc, a, st, prev)
	}

	dir := tc.Narrative.Direction
	if dir == models.PolarityNone {
		dir = in.Direction
	}
	tc.Direction = dir
	volume.Confirm(tc.Volume, dir)
	tc.Alignment = hierarchy.NewFilter(tc.Timeframe).Validate(dir, reads(tc, a))

	tc.IdeaAllowed = true
	if entry := entryPOI(a.pois, dir, last.Close); entry != nil {
		tc.EntryPOI = entry
		tc.IdeaKey = ideas.Key(models.IdeaKey{
			Direction: dir,
			Zone:      entry.ZoneName,
			Price:     entry.MeanThreshold,
			Session:   a.sessionNow.Name,
		}, e.cfg.IdeaBucketStep)
		if e.ideas != nil {
			ok, err := e.ideas.IsAllowed(ctx, tc.Symbol, tc.IdeaKey)
			if err != nil {
				e.metrics.RecordError("idea_memory")
				e.l.Warn("idea memory unavailable", logger.String("symbol", tc.Symbol), logger.Error(err))
				ok = false
			}
			tc.IdeaAllowed = ok
		}
	}

	tc.EntrySignal = tc.Narrative.EntryAllowed && tc.EntryPOI != nil && tc.IdeaAllowed && !tc.Alignment.Blocked
	tc.Reason = entryReason(tc)

	if tc.EntrySignal && mode == modeAdvance && e.ideas != nil {
		if err := e.ideas.MarkActive(ctx, tc.Symbol, tc.IdeaKey); err != nil {
			e.l.Warn("idea mark active failed", logger.String("symbol", tc.Symbol), logger.Error(err))
		}
	}
}

// resetIdeas clears idea memory when structure flips with a new CHOCH or when
// the narrative was reset during this update.
func (e *ContextEvaluator) resetIdeas(ctx context.Context, tc *models.TradingContext, a analysis, st *SymbolState, prev models.NarrativeSnapshot) {
	reason := ""
	if a.st.Label.IsCHOCH() && a.st.BOSBarIndex == a.lc {
		at := a.ltf[a.lc].Time
		if at.After(st.CHOCHAt) {
			st.CHOCHAt = at
			reason = "structure_change"
		}
	}
	if r := tc.Narrative.LastReset; reason == "" && r != nil {
		if prev.LastReset == nil || !prev.LastReset.At.Equal(r.At) {
			reason = "narrative_reset:" + r.Reason
		}
	}
	if reason == "" {
		return
	}
	if err := e.ideas.ResetAll(ctx, tc.Symbol, reason); err != nil {
		e.l.Warn("idea reset failed", logger.String("symbol", tc.Symbol), logger.Error(err))
		return
	}
	e.l.Info("idea memory reset", logger.String("symbol", tc.Symbol), logger.String("reason", reason))
}

// narrativeInput derives the cycle's narrative facts. sessionDir is the direction
// the narrative already committed to, prevBias the last stored daily bias.
func narrativeInput(a analysis, sessionDir, prevBias models.Polarity) models.NarrativeInput {
	price := a.ltf[a.lc].Close
	in := models.NarrativeInput{RangeDefined: a.zone != nil}

	dir := a.liq.SweptSide
	if dir == models.PolarityNone && a.st.IsSwept && a.st.IDM != nil {
		dir = a.st.IDM.Polarity
	}
	in.Direction = dir
	in.LiquiditySwept = dir != models.PolarityNone

	if dir != models.PolarityNone {
		in.HTFPOIReached = htfPOIReached(a, dir, price)
		in.LTFStructureShift = a.st.StructureConfirmed && a.st.Label.Polarity() == dir
		in.LTFPOIMitigated = ltfPOIMitigated(a.pois, dir)
		in.EntryPOIPermitted = len(a.pois.Permitted(dir)) > 0
	}

	if sessionDir != models.PolarityNone {
		hlc := a.htf.LastClosed()
		for _, ob := range a.htfPOIs.OrderBlocks {
			if ob.Polarity == sessionDir && ob.ValidBasic && hlc >= 0 && poi.BrokenAt(ob, a.htf) == hlc {
				in.HTFOBInvalidated = true
				break
			}
		}
	}
	in.BiasFlipped = prevBias != models.PolarityNone && a.bias.Bias != models.PolarityNone && prevBias != a.bias.Bias
	return in
}

func htfPOIReached(a analysis, dir models.Polarity, price float64) bool {
	for _, ob := range a.htfPOIs.OrderBlocks {
		if ob.Polarity == dir && ob.ValidBasic && ob.Contains(price) {
			return true
		}
	}
	for _, g := range a.htfPOIs.FVGs {
		if g.Polarity == dir && price >= g.Bottom && price <= g.Top {
			return true
		}
	}
	return a.zone != nil && zones.CanExecute(dir, a.zone.Classify(price))
}

func ltfPOIMitigated(set models.POISet, dir models.Polarity) bool {
	for _, ob := range set.OrderBlocks {
		if ob.Polarity != dir || !ob.ValidBasic || ob.TimesTested == 0 {
			continue
		}
		if ob.Class == models.ClassWeak || ob.Class == models.ClassBreaker {
			continue
		}
		return true
	}
	return false
}

// entryPOI prefers the permitted DECISION block, then the permitted block whose
// mean threshold is nearest to price.
func entryPOI(set models.POISet, dir models.Polarity, price float64) *models.OrderBlock {
	if dir == models.PolarityNone {
		return nil
	}
	permitted := set.Permitted(dir)
	if len(permitted) == 0 {
		return nil
	}
	for _, ob := range permitted {
		if ob.Rank == models.RankDecision {
			out := ob
			return &out
		}
	}
	best := 0
	for i, ob := range permitted {
		if math.Abs(ob.MeanThreshold-price) < math.Abs(permitted[best].MeanThreshold-price) {
			best = i
		}
	}
	out := permitted[best]
	return &out
}

func reads(tc *models.TradingContext, a analysis) []models.TimeframeRead {
	out := []models.TimeframeRead{{
		Timeframe: tc.Timeframe,
		Bias:      trendBias(a.st),
		Label:     a.st.Label,
	}}
	if a.htf.LastClosed() >= 0 {
		out = append(out, models.TimeframeRead{
			Timeframe: tc.HTFTimeframe,
			Bias:      trendBias(a.htfSt),
			Label:     a.htfSt.Label,
		})
	}
	if tc.HTFTimeframe != models.TF1d && a.bias.Bias != models.PolarityNone {
		out = append(out, models.TimeframeRead{
			Timeframe: models.TF1d,
			Bias:      a.bias.Bias,
			Label:     a.htfSt.Label,
		})
	}
	return out
}

func trendBias(st models.StructureState) models.Polarity {
	switch st.Trend {
	case models.TrendUp:
		return models.PolarityBullish
	case models.TrendDown:
		return models.PolarityBearish
	default:
		return st.Label.Polarity()
	}
}

func entryReason(tc *models.TradingContext) models.Reason {
	switch {
	case tc.EntrySignal:
		return models.ReasonOK
	case tc.Alignment.Blocked:
		return models.ReasonHierarchyBlocked
	case !tc.Narrative.EntryAllowed:
		return models.ReasonNarrativeIncomplete
	case tc.EntryPOI == nil:
		return models.ReasonNoMatchingPOI
	default:
		return models.ReasonIdeaCoolingDown
	}
}

type nopMetrics struct{}

func (nopMetrics) RecordMessageSent(string, string)             {}
func (nopMetrics) RecordError(string)                           {}
func (nopMetrics) RecordLastPrice(string, float64)              {}
func (nopMetrics) RecordLatency(string, float64)                {}
func (nopMetrics) RecordEvaluation(string, string, string, int) {}
func (nopMetrics) RecordEntrySignal(string, string)             {}
