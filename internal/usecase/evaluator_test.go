package usecase

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"SMCTrader/internal/domain/models"
	domrepo "SMCTrader/internal/domain/repository"
	"SMCTrader/internal/services/ideas"
	"SMCTrader/internal/services/zones"
	"SMCTrader/pkg/cache"
)

var t0 = time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC)

type fakeStore struct {
	mu     sync.Mutex
	series map[models.Timeframe]models.Series
	errs   map[models.Timeframe]error
	calls  int
}

func (s *fakeStore) GetCandles(_ context.Context, _ string, tf models.Timeframe, from, to time.Time) (models.Series, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := models.Series{}
	for _, c := range s.series[tf] {
		if !c.Time.Before(from) && !c.Time.After(to) {
			out = append(out, c)
		}
	}
	return out, s.errs[tf]
}

func (s *fakeStore) GetLatestNCandles(_ context.Context, _ string, tf models.Timeframe, n int) (models.Series, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if err := s.errs[tf]; err != nil {
		return nil, err
	}
	out := s.series[tf]
	if len(out) > n {
		out = out[len(out)-n:]
	}
	return out, nil
}

type memNarratives struct {
	mu   sync.Mutex
	recs map[string]models.SessionRecord
}

func (m *memNarratives) Save(_ context.Context, key string, rec models.SessionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs[key] = rec
	return nil
}

func (m *memNarratives) Load(_ context.Context, key string) (models.SessionRecord, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.recs[key]
	return r, ok, nil
}

// wave builds n closed bars oscillating around 100 so swings, gaps and blocks appear.
func wave(n int, step time.Duration) models.Series {
	s := make(models.Series, n)
	for i := range s {
		mid := 100 + 5*math.Sin(float64(i)/3) + float64(i)*0.05
		open := mid - 0.6*math.Cos(float64(i))
		close := mid + 0.6*math.Cos(float64(i))
		s[i] = models.Candle{
			Time:   t0.Add(time.Duration(i) * step),
			Open:   open,
			High:   math.Max(open, close) + 0.4,
			Low:    math.Min(open, close) - 0.4,
			Close:  close,
			Volume: 10,
		}
	}
	return s
}

func newEvaluator(store domrepo.CandleStore, c cache.Service) *ContextEvaluator {
	e := NewContextEvaluator(DefaultEngineConfig(), store, ideas.NewMemory(time.Hour), nil, c, nil, nil)
	e.SetClock(func() time.Time { return t0.Add(24 * time.Hour) })
	return e
}

func TestEvaluateNoCandles(t *testing.T) {
	e := newEvaluator(&fakeStore{series: map[models.Timeframe]models.Series{}}, nil)
	_, err := e.Evaluate(context.Background(), EvaluateParams{Symbol: "BTCUSDT"})
	if !errors.Is(err, domrepo.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := e.Evaluate(context.Background(), EvaluateParams{}); err == nil {
		t.Fatal("expected error for empty symbol")
	}
}

func TestEvaluateLowerTimeframeError(t *testing.T) {
	store := &fakeStore{errs: map[models.Timeframe]error{models.TF5m: domrepo.ErrUnavailable}}
	e := newEvaluator(store, nil)
	_, err := e.Evaluate(context.Background(), EvaluateParams{Symbol: "BTCUSDT"})
	if !errors.Is(err, domrepo.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestEvaluateDegradesWithoutHigherTimeframe(t *testing.T) {
	ltf := wave(80, 5*time.Minute)
	ltf[len(ltf)-1].Forming = true
	store := &fakeStore{
		series: map[models.Timeframe]models.Series{models.TF5m: ltf},
		errs:   map[models.Timeframe]error{models.TF1h: errors.New("boom")},
	}
	e := newEvaluator(store, nil)
	tc, err := e.Evaluate(context.Background(), EvaluateParams{Symbol: "BTCUSDT", Chart: true})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if tc.LastClosedIndex != 78 || !tc.LastClosedTime.Equal(ltf[78].Time) {
		t.Fatalf("forming bar was read: lc=%d", tc.LastClosedIndex)
	}
	if tc.Price != ltf[78].Close {
		t.Fatalf("price should be the last close, got %v", tc.Price)
	}
	if tc.HTFStructure.Reason != models.ReasonInsufficientData {
		t.Fatalf("expected empty higher timeframe, got %+v", tc.HTFStructure)
	}
	if tc.ID == "" || tc.Chart == nil || tc.Zone == nil {
		t.Fatalf("incomplete context: id=%q chart=%v zone=%v", tc.ID, tc.Chart, tc.Zone)
	}
	if _, ok := tc.Features["atr_14"]; !ok {
		t.Fatalf("features missing: %v", tc.Features)
	}
	if v := tc.Volume; v == nil || v.Ratio != 1 || v.Spike || v.Confirmed {
		t.Fatalf("flat volume should read as normal, got %+v", v)
	}
	if tc.Reason == "" || tc.Narrative.State == "" {
		t.Fatalf("context carries no reason: %+v", tc.Narrative)
	}
	for _, sp := range tc.Swings {
		if sp.Index > tc.LastClosedIndex-2 {
			t.Fatalf("swing %d confirmed by unclosed bars", sp.Index)
		}
	}
}

func TestEvaluateCachesPerClosedBar(t *testing.T) {
	store := &fakeStore{series: map[models.Timeframe]models.Series{
		models.TF5m: wave(60, 5*time.Minute),
		models.TF1h: wave(60, time.Hour),
	}}
	mc := cache.NewMemoryCache()
	defer mc.Close()
	e := newEvaluator(store, mc)

	first, err := e.Evaluate(context.Background(), EvaluateParams{Symbol: "BTCUSDT"})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if first.Chart != nil {
		t.Fatal("chart returned without being asked for")
	}
	second, err := e.Evaluate(context.Background(), EvaluateParams{Symbol: "BTCUSDT", Chart: true})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected cached context, ids %s vs %s", first.ID, second.ID)
	}
	if second.Chart == nil {
		t.Fatal("cached context lost its chart")
	}

	store.mu.Lock()
	store.series[models.TF5m] = wave(61, 5*time.Minute)
	store.mu.Unlock()
	third, err := e.Evaluate(context.Background(), EvaluateParams{Symbol: "BTCUSDT"})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if third.ID == first.ID {
		t.Fatal("new closed bar should produce a new context")
	}
}

func TestEvaluateSeriesStatelessLeavesSessionsAlone(t *testing.T) {
	e := newEvaluator(&fakeStore{}, nil)
	ltf := wave(60, 5*time.Minute)
	// reversed input is sorted before evaluation
	rev := make(models.Series, len(ltf))
	for i := range ltf {
		rev[len(ltf)-1-i] = ltf[i]
	}
	tc, err := e.EvaluateSeries(context.Background(), EvaluateParams{Symbol: "ETHUSDT"}, rev, nil, true)
	if err != nil {
		t.Fatalf("evaluate series: %v", err)
	}
	if !tc.LastClosedTime.Equal(ltf[59].Time) {
		t.Fatalf("series not sorted: last closed %s", tc.LastClosedTime)
	}
	if len(e.Sessions().Symbols()) != 0 {
		t.Fatalf("stateless evaluation registered a session: %v", e.Sessions().Symbols())
	}

	if _, err := e.EvaluateSeries(context.Background(), EvaluateParams{Symbol: "ETHUSDT"}, models.Series{}, nil, true); !errors.Is(err, domrepo.ErrInsufficientCandles) {
		t.Fatalf("expected ErrInsufficientCandles, got %v", err)
	}
}

func TestSessionsRestoreFromStore(t *testing.T) {
	key := SessionKey("BTCUSDT", models.TF5m, models.TF1h)
	last := t0.Add(time.Hour)
	store := &memNarratives{recs: map[string]models.SessionRecord{
		key: {
			Narrative: models.NarrativeSnapshot{State: models.StateHTFPOIReached, Direction: models.PolarityBearish},
			Bias:      models.PolarityBearish,
			CHOCHAt:   t0,
			LastBar:   last,
		},
	}}
	s := NewSessions(store, nil)
	snap := s.Snapshot(context.Background(), key)
	if snap.State != models.StateHTFPOIReached || snap.Direction != models.PolarityBearish {
		t.Fatalf("snapshot not restored: %+v", snap)
	}
	if len(s.Keys()) != 0 {
		t.Fatalf("snapshot registered a session: %v", s.Keys())
	}

	st := s.Acquire(context.Background(), key)
	if st.Bias != models.PolarityBearish || !st.CHOCHAt.Equal(t0) || !st.LastBar.Equal(last) {
		t.Fatalf("bookkeeping not restored: bias=%s choch=%s last=%s", st.Bias, st.CHOCHAt, st.LastBar)
	}
	st.Bias = models.PolarityBullish
	s.Release(context.Background(), key, st)
	if store.recs[key].Bias != models.PolarityBullish || !store.recs[key].LastBar.Equal(last) {
		t.Fatalf("bookkeeping not persisted: %+v", store.recs[key])
	}

	reset := s.Reset(context.Background(), key, "manual")
	if reset.State != models.StateIdle || reset.LastReset == nil || reset.LastReset.Reason != "manual" {
		t.Fatalf("unexpected reset snapshot: %+v", reset)
	}
	if store.recs[key].Narrative.State != models.StateIdle {
		t.Fatalf("reset not persisted: %+v", store.recs[key])
	}
}

func TestSessionsResetSymbolCoversUnloadedKeys(t *testing.T) {
	exec := SessionKey("BTCUSDT", models.TF5m, models.TF1h)
	other := SessionKey("BTCUSDT", models.TF15m, models.TF4h)
	store := &memNarratives{recs: map[string]models.SessionRecord{
		exec: {Narrative: models.NarrativeSnapshot{State: models.StateLTFStructureShift, Direction: models.PolarityBullish}},
	}}
	s := NewSessions(store, nil)
	st := s.Acquire(context.Background(), other)
	s.Release(context.Background(), other, st)
	st = s.Acquire(context.Background(), SessionKey("ETHUSDT", models.TF5m, models.TF1h))
	s.Release(context.Background(), SessionKey("ETHUSDT", models.TF5m, models.TF1h), st)

	out := s.ResetSymbol(context.Background(), "BTCUSDT", "manual", exec)
	if len(out) != 2 || out[exec].State != models.StateIdle {
		t.Fatalf("unexpected resets %+v", out)
	}
	if store.recs[exec].Narrative.LastReset == nil {
		t.Fatalf("unloaded key not reset: %+v", store.recs[exec])
	}
	if got := s.Symbols(); len(got) != 2 || got[0] != "BTCUSDT" || got[1] != "ETHUSDT" {
		t.Fatalf("unexpected symbols %v", got)
	}
}

// driverSetup stores both timeframes and a cache so the driver and readers share
// the same candles.
func driverSetup(t *testing.T) (*ContextEvaluator, *fakeStore) {
	t.Helper()
	store := &fakeStore{series: map[models.Timeframe]models.Series{
		models.TF5m:  wave(60, 5*time.Minute),
		models.TF15m: wave(120, 15*time.Minute),
		models.TF1h:  wave(60, time.Hour),
		models.TF4h:  wave(60, 4*time.Hour),
	}}
	mc := cache.NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })
	return newEvaluator(store, mc), store
}

func TestProjectionsDoNotMoveTheLiveSession(t *testing.T) {
	e, store := driverSetup(t)
	ctx := context.Background()
	execKey := SessionKey("BTCUSDT", models.TF5m, models.TF1h)

	if _, err := e.Evaluate(ctx, EvaluateParams{Symbol: "BTCUSDT"}); err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	before := e.sessions.Peek(ctx, execKey).LastBar
	if !before.Equal(t0.Add(59 * 5 * time.Minute)) {
		t.Fatalf("driver did not record its bar: %s", before)
	}

	// a read on another pair runs on a copy and registers nothing
	if _, err := e.Project(ctx, EvaluateParams{Symbol: "BTCUSDT", Timeframe: models.TF15m, HTFTimeframe: models.TF4h}); err != nil {
		t.Fatalf("project: %v", err)
	}
	if keys := e.Sessions().Keys(); len(keys) != 1 || keys[0] != execKey {
		t.Fatalf("projection registered a session: %v", keys)
	}
	if got := e.sessions.Peek(ctx, execKey).LastBar; !got.Equal(before) {
		t.Fatalf("projection moved the live session to %s", got)
	}

	// caller candles far in the future never reach the live session
	future := wave(60, time.Hour)
	if _, err := e.EvaluateSeries(ctx, EvaluateParams{Symbol: "BTCUSDT"}, future, nil, false); err != nil {
		t.Fatalf("evaluate series: %v", err)
	}
	if got := e.sessions.Peek(ctx, execKey).LastBar; !got.Equal(before) {
		t.Fatalf("caller candles moved the live session to %s", got)
	}

	// the next driver bar is still applied
	store.mu.Lock()
	store.series[models.TF5m] = wave(61, 5*time.Minute)
	store.mu.Unlock()
	if _, err := e.Evaluate(ctx, EvaluateParams{Symbol: "BTCUSDT"}); err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if got := e.sessions.Peek(ctx, execKey).LastBar; !got.Equal(t0.Add(60 * 5 * time.Minute)) {
		t.Fatalf("next driver bar ignored, last bar %s", got)
	}
}

func TestProjectServesDriverContext(t *testing.T) {
	e, store := driverSetup(t)
	ctx := context.Background()

	peek, err := e.Project(ctx, EvaluateParams{Symbol: "BTCUSDT"})
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	driven, err := e.Evaluate(ctx, EvaluateParams{Symbol: "BTCUSDT"})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if driven.ID == peek.ID {
		t.Fatal("a projection was cached and hid the driver cycle")
	}
	again, err := e.Project(ctx, EvaluateParams{Symbol: "BTCUSDT"})
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	if again.ID != driven.ID {
		t.Fatalf("projection should serve the driver context, ids %s vs %s", again.ID, driven.ID)
	}
	if store.calls == 0 {
		t.Fatal("store never read")
	}
}

// entrySetup is a hand-built analysis where every narrative condition holds for a long.
func entrySetup(at time.Time) analysis {
	z, _ := zones.Calculate(110, 90, 2)
	ltf := models.Series{{Time: at, Open: 95, High: 96, Low: 94, Close: 95}}
	ob := models.OrderBlock{
		ID:                "OB:0:BULLISH",
		Polarity:          models.PolarityBullish,
		Top:               96,
		Bottom:            94,
		MeanThreshold:     95,
		TimesTested:       1,
		Class:             models.ClassMitigation,
		Rank:              models.RankDecision,
		ValidBasic:        true,
		ZoneName:          models.ZoneDiscount,
		PermissionToTrade: true,
	}
	return analysis{
		ltf:  ltf,
		htf:  models.Series{},
		lc:   0,
		liq:  models.LiquidityMap{SweptSide: models.PolarityBullish},
		st:   models.StructureState{StructureConfirmed: true, Label: models.LabelMSSBullish, Trend: models.TrendUp, BOSBarIndex: -1},
		pois: models.POISet{OrderBlocks: []models.OrderBlock{ob}},
		zone: &z,
		sessionNow: models.SessionInfo{
			Name: models.SessionLondon,
		},
	}
}

func TestAdvanceEntrySignalAndCooldown(t *testing.T) {
	mem := ideas.NewMemory(time.Hour)
	e := NewContextEvaluator(DefaultEngineConfig(), &fakeStore{}, mem, nil, nil, nil, nil)
	ctx := context.Background()
	st := e.sessions.Acquire(ctx, "BTCUSDT")

	a := entrySetup(t0)
	tc := &models.TradingContext{Symbol: "BTCUSDT", Timeframe: models.TF5m, HTFTimeframe: models.TF1h}
	tc.Volume = &models.VolumeReport{Current: 30, Average: 10, Ratio: 3, Spike: true, Divergence: models.PolarityBullish}
	e.advance(ctx, tc, a, st, modeAdvance)
	if !tc.Narrative.EntryAllowed || !tc.EntrySignal || tc.Reason != models.ReasonOK {
		t.Fatalf("expected entry, got state=%s reason=%s", tc.Narrative.State, tc.Reason)
	}
	if !tc.Volume.Confirmed || tc.Volume.Boost != 25 || len(tc.Volume.Reasons) != 2 {
		t.Fatalf("volume should confirm the long, got %+v", tc.Volume)
	}
	if tc.EntryPOI == nil || tc.EntryPOI.ID != "OB:0:BULLISH" {
		t.Fatalf("unexpected entry poi %+v", tc.EntryPOI)
	}
	if tc.IdeaKey != "BULLISH|DISCOUNT|95|LONDON" {
		t.Fatalf("unexpected idea key %q", tc.IdeaKey)
	}

	if err := mem.MarkFailed(ctx, "BTCUSDT", tc.IdeaKey); err != nil {
		t.Fatal(err)
	}
	a2 := entrySetup(t0.Add(5 * time.Minute))
	tc2 := &models.TradingContext{Symbol: "BTCUSDT", Timeframe: models.TF5m, HTFTimeframe: models.TF1h}
	e.advance(ctx, tc2, a2, st, modeAdvance)
	if tc2.EntrySignal || tc2.Reason != models.ReasonIdeaCoolingDown || tc2.IdeaAllowed {
		t.Fatalf("failed idea should cool down, got reason=%s entry=%v", tc2.Reason, tc2.EntrySignal)
	}
	e.sessions.Release(ctx, "BTCUSDT", st)
}

func TestAdvanceSameBarDoesNotUpdate(t *testing.T) {
	e := NewContextEvaluator(DefaultEngineConfig(), &fakeStore{}, nil, nil, nil, nil, nil)
	ctx := context.Background()
	st := e.sessions.Acquire(ctx, "BTCUSDT")
	defer e.sessions.Release(ctx, "BTCUSDT", st)

	a := entrySetup(t0)
	a.zone = nil
	tc := &models.TradingContext{Symbol: "BTCUSDT", Timeframe: models.TF5m}
	e.advance(ctx, tc, a, st, modeAdvance)
	if tc.Narrative.State != models.StateIdle {
		t.Fatalf("no range should stay idle, got %s", tc.Narrative.State)
	}

	again := entrySetup(t0)
	tc2 := &models.TradingContext{Symbol: "BTCUSDT", Timeframe: models.TF5m}
	e.advance(ctx, tc2, again, st, modeAdvance)
	if tc2.Narrative.State != models.StateIdle {
		t.Fatalf("repeated bar advanced the narrative to %s", tc2.Narrative.State)
	}
}

func TestAdvanceHierarchyBlocks(t *testing.T) {
	e := NewContextEvaluator(DefaultEngineConfig(), &fakeStore{}, nil, nil, nil, nil, nil)
	st := e.sessions.Fresh()
	a := entrySetup(t0)
	a.bias = models.BiasReport{Bias: models.PolarityBearish}
	tc := &models.TradingContext{Symbol: "BTCUSDT", Timeframe: models.TF5m, HTFTimeframe: models.TF1h}
	e.advance(context.Background(), tc, a, st, modeFresh)
	if !tc.Narrative.EntryAllowed {
		t.Fatalf("narrative should complete, got %s", tc.Narrative.State)
	}
	if tc.EntrySignal || tc.Reason != models.ReasonHierarchyBlocked || !tc.Alignment.Blocked {
		t.Fatalf("daily bias against the long should block, got %s", tc.Reason)
	}
}

func TestNarrativeInputResets(t *testing.T) {
	htf := models.Series{
		{Time: t0, Open: 100, High: 100.5, Low: 97, Close: 97.5},
		{Time: t0.Add(time.Hour), Open: 97.5, High: 103, Low: 97.4, Close: 102.8},
		{Time: t0.Add(2 * time.Hour), Open: 102.8, High: 103, Low: 96, Close: 96.5},
	}
	a := entrySetup(t0)
	a.htf = htf
	a.htfPOIs = models.POISet{OrderBlocks: []models.OrderBlock{{
		Polarity: models.PolarityBullish, BarIndex: 0, Top: 100.5, Bottom: 97, ValidBasic: true,
	}}}
	a.bias = models.BiasReport{Bias: models.PolarityBearish}

	in := narrativeInput(a, models.PolarityBullish, models.PolarityBullish)
	if !in.HTFOBInvalidated {
		t.Fatal("block broken on the last higher bar should invalidate")
	}
	if !in.BiasFlipped {
		t.Fatal("bullish to bearish bias should flip")
	}
	if in.Direction != models.PolarityBullish || !in.LiquiditySwept || !in.HTFPOIReached || !in.LTFStructureShift || !in.LTFPOIMitigated || !in.EntryPOIPermitted {
		t.Fatalf("unexpected input %+v", in)
	}

	in = narrativeInput(a, models.PolarityNone, models.PolarityNone)
	if in.HTFOBInvalidated || in.BiasFlipped {
		t.Fatalf("no committed direction or previous bias: %+v", in)
	}
}

func TestNarrativeInputDirectionFromIDMSweep(t *testing.T) {
	a := entrySetup(t0)
	a.liq.SweptSide = models.PolarityNone
	a.st = models.StructureState{IsSwept: true, IDM: &models.InducementCandidate{Polarity: models.PolarityBearish}}
	in := narrativeInput(a, models.PolarityNone, models.PolarityNone)
	if in.Direction != models.PolarityBearish || !in.LiquiditySwept {
		t.Fatalf("expected bearish sweep from inducement, got %+v", in)
	}
	if in.LTFPOIMitigated || in.EntryPOIPermitted {
		t.Fatalf("bullish block must not serve a bearish narrative: %+v", in)
	}
}

func TestEntryReason(t *testing.T) {
	ob := &models.OrderBlock{}
	tests := []struct {
		name string
		tc   models.TradingContext
		want models.Reason
	}{
		{"entry", models.TradingContext{EntrySignal: true}, models.ReasonOK},
		{"blocked", models.TradingContext{Alignment: models.Alignment{Blocked: true}}, models.ReasonHierarchyBlocked},
		{"incomplete", models.TradingContext{}, models.ReasonNarrativeIncomplete},
		{"no poi", models.TradingContext{Narrative: models.NarrativeSnapshot{EntryAllowed: true}}, models.ReasonNoMatchingPOI},
		{"cooling", models.TradingContext{Narrative: models.NarrativeSnapshot{EntryAllowed: true}, EntryPOI: ob}, models.ReasonIdeaCoolingDown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := entryReason(&tt.tc); got != tt.want {
				t.Fatalf("got %s want %s", got, tt.want)
			}
		})
	}
}

func TestEntryPOIPrefersDecision(t *testing.T) {
	set := models.POISet{OrderBlocks: []models.OrderBlock{
		{ID: "a", Polarity: models.PolarityBullish, PermissionToTrade: true, Rank: models.RankExtreme, MeanThreshold: 90},
		{ID: "b", Polarity: models.PolarityBullish, PermissionToTrade: true, Rank: models.RankExtreme, MeanThreshold: 98},
		{ID: "c", Polarity: models.PolarityBearish, PermissionToTrade: true, Rank: models.RankDecision, MeanThreshold: 101},
	}}
	if got := entryPOI(set, models.PolarityBullish, 100); got == nil || got.ID != "b" {
		t.Fatalf("expected nearest permitted block b, got %+v", got)
	}
	set.OrderBlocks[0].Rank = models.RankDecision
	if got := entryPOI(set, models.PolarityBullish, 100); got == nil || got.ID != "a" {
		t.Fatalf("expected decision block a, got %+v", got)
	}
	if got := entryPOI(set, models.PolarityNone, 100); got != nil {
		t.Fatalf("no direction should pick nothing, got %+v", got)
	}
}
