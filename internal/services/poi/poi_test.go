package poi

import (
	"math"
	"testing"
	"time"

	"SMCTrader/internal/domain/models"
	"SMCTrader/internal/services/zones"
)

var t0 = time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)

func ohlc(rows ...[4]float64) models.Series {
	s := make(models.Series, len(rows))
	for i, r := range rows {
		s[i] = models.Candle{Time: t0.Add(time.Duration(i) * 5 * time.Minute), Open: r[0], High: r[1], Low: r[2], Close: r[3]}
	}
	return s
}

// bullishSetup has a bearish candle at 3 displaced by bar 4, a gap 3..5, a
// lower-wick sweep of the block's mean threshold on bar 4 and one retest on bar 6.
func bullishSetup() models.Series {
	s := ohlc(
		[4]float64{100, 101, 99, 100.5},
		[4]float64{100.5, 101, 99.5, 100},
		[4]float64{100, 100.5, 99.5, 100.2},
		[4]float64{100.2, 100.4, 97, 97.5},
		[4]float64{97.5, 103, 97.4, 102.8},
		[4]float64{102.8, 105, 102.5, 104.5},
		[4]float64{104.5, 104.8, 99.5, 101},
		[4]float64{101, 102, 100.6, 101.8},
		[4]float64{101.8, 102, 101.5, 101.9},
	)
	s[8].Forming = true
	return s
}

type fixedOracle bool

func (o fixedOracle) IsInKillZone(time.Time) bool { return bool(o) }

type ptrOracle struct{ open bool }

func (o *ptrOracle) IsInKillZone(time.Time) bool {
	if o == nil {
		return false
	}
	return o.open
}

func TestFindFVGs(t *testing.T) {
	got := FindFVGs(bullishSetup(), 200)
	if len(got) != 2 {
		t.Fatalf("expected 2 gaps, got %+v", got)
	}
	bull := got[0]
	if bull.ID != "FVG:4:BULL" || bull.Top != 102.5 || bull.Bottom != 100.4 || bull.CreatedByBar != 4 {
		t.Fatalf("unexpected bullish gap %+v", bull)
	}
	if !bull.Mitigated || bull.MitigatedAtBar != 6 {
		t.Fatalf("expected mitigation at 6, got %+v", bull)
	}
	bear := got[1]
	if bear.ID != "FVG:6:BEAR" || bear.Top <= bear.Bottom {
		t.Fatalf("unexpected bearish gap %+v", bear)
	}
}

func TestFindFVGsIgnoresFormingTriple(t *testing.T) {
	s := ohlc(
		[4]float64{10, 11, 9, 10},
		[4]float64{10, 14, 10, 14},
		[4]float64{14, 16, 13, 15},
	)
	s[2].Forming = true
	if got := FindFVGs(s, 0); len(got) != 0 {
		t.Fatalf("gap built from forming bar: %+v", got)
	}
}

func TestFindOrderBlocks(t *testing.T) {
	got := FindOrderBlocks(bullishSetup(), 200)
	if len(got) != 1 {
		t.Fatalf("expected one block, got %+v", got)
	}
	ob := got[0]
	if ob.ID != "OB:3:BULLISH" || ob.Top != 100.4 || ob.Bottom != 97 || math.Abs(ob.MeanThreshold-98.7) > 1e-9 {
		t.Fatalf("unexpected block %+v", ob)
	}
	if ob.BodyHigh != 100.2 || ob.BodyLow != 97.5 {
		t.Fatalf("unexpected body bounds %+v", ob)
	}
}

func TestFindOrderBlocksBodyWindowEndsAtBlock(t *testing.T) {
	// bar 2 has body 1 against a mean of 0.47 over bars 0..2; counting the wide
	// bar 3 would lift the mean to 2.85
	s := ohlc(
		[4]float64{100, 100.3, 99.4, 100.2},
		[4]float64{100.2, 100.5, 99.5, 100.4},
		[4]float64{101, 101.1, 99.8, 100},
		[4]float64{100, 111, 99.9, 110},
	)
	got := FindOrderBlocks(s, 0)
	if len(got) != 1 || got[0].ID != "OB:2:BULLISH" {
		t.Fatalf("expected block at 2, got %+v", got)
	}
}

func TestAssociate(t *testing.T) {
	obs := []models.OrderBlock{{ID: "a", Top: 10, Bottom: 8}, {ID: "b", Top: 5, Bottom: 4}}
	fvgs := []models.FairValueGap{
		{ID: "late", Top: 12, Bottom: 9, CreatedByBar: 9},
		{ID: "early", Top: 11, Bottom: 10, CreatedByBar: 2},
	}
	got := Associate(obs, fvgs, 0)
	if !got[0].HasFVG || got[0].FVGID != "early" || got[0].Reason != models.ReasonFVGAssociated {
		t.Fatalf("unexpected association %+v", got[0])
	}
	if got[1].HasFVG || got[1].Reason != models.ReasonNoFVGAssociation {
		t.Fatalf("unexpected association %+v", got[1])
	}
	if got := Associate(obs[1:], []models.FairValueGap{{ID: "near", Top: 6, Bottom: 5.5}}, 0.5); !got[0].HasFVG {
		t.Fatalf("tolerance not applied")
	}
}

func TestClassify(t *testing.T) {
	ob := models.OrderBlock{Polarity: models.PolarityBullish, BarIndex: 0, Top: 10, Bottom: 8}
	away := [4]float64{12, 13, 11, 12.5}
	hold := [4]float64{11, 11.5, 9, 11}
	brk := [4]float64{11, 11.5, 7, 9}
	cases := []struct {
		name   string
		rows   [][4]float64
		want   models.OBClass
		tested int
	}{
		{"potential", [][4]float64{away, away}, models.ClassPotential, 0},
		{"weak", [][4]float64{away, away, away}, models.ClassWeak, 0},
		{"mitigation", [][4]float64{away, away, hold}, models.ClassMitigation, 1},
		{"breaker", [][4]float64{away, away, hold, away, hold}, models.ClassBreaker, 2},
		{"reclaimed", [][4]float64{away, away, brk, hold}, models.ClassReclaimed, 2},
		{"broken", [][4]float64{away, away, brk}, models.ClassWeak, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(ob, ohlc(tc.rows...), 50)
			if got.Class != tc.want || got.TimesTested != tc.tested {
				t.Fatalf("got %s tested %d, want %s tested %d", got.Class, got.TimesTested, tc.want, tc.tested)
			}
		})
	}
}

func TestValidateBasicRequiresFVG(t *testing.T) {
	lvl := 200.0
	st := models.StructureState{StructureConfirmed: true, BOSLevel: &lvl}
	ob := FindOrderBlocks(bullishSetup(), 200)[0]
	ob.HasFVG = false
	got := ValidateBasic(ob, st, bullishSetup(), nil)
	if got.ValidBasic || got.Reason != models.ReasonInvalidNoFVG {
		t.Fatalf("block without gap validated: %+v", got)
	}
}

func TestValidateBasicPaths(t *testing.T) {
	s := bullishSetup()
	ob := Associate(FindOrderBlocks(s, 200), FindFVGs(s, 200), 0)[0]

	lvl := 101.0
	byBOS := ValidateBasic(ob, models.StructureState{StructureConfirmed: true, BOSLevel: &lvl}, s, nil)
	if !byBOS.ValidBasic || !byBOS.CausedBOS || byBOS.Reason != models.ReasonValidOB {
		t.Fatalf("expected BOS validation, got %+v", byBOS)
	}

	bySweep := ValidateBasic(ob, models.StructureState{}, s, nil)
	if !bySweep.ValidBasic || bySweep.SweepEvidence == nil || bySweep.SweepEvidence.BarIndex != 4 {
		t.Fatalf("expected sweep validation, got %+v", bySweep)
	}

	low := 99.0
	below := ValidateBasic(ob, models.StructureState{StructureConfirmed: true, BOSLevel: &low}, s, nil)
	if below.CausedBOS {
		t.Fatalf("BOS level inside block must not count")
	}
}

func TestValidateBasicDiscardsFutureEvidence(t *testing.T) {
	s := bullishSetup()
	ob := Associate(FindOrderBlocks(s, 200), FindFVGs(s, 200), 0)[0]
	future := func(models.Series, float64, int) models.SweepResult {
		return models.SweepResult{IsSweep: true, BarIndex: 8, Wick: models.WickLower}
	}
	if got := ValidateBasic(ob, models.StructureState{}, s, future); got.ValidBasic || got.Reason != models.ReasonInvalidNoBOSNoSweep {
		t.Fatalf("future evidence trusted: %+v", got)
	}
	own := func(models.Series, float64, int) models.SweepResult {
		return models.SweepResult{IsSweep: true, BarIndex: 3, Wick: models.WickLower}
	}
	if got := ValidateBasic(ob, models.StructureState{}, s, own); got.ValidBasic {
		t.Fatalf("evidence on the block's own bar trusted: %+v", got)
	}
	wrong := func(models.Series, float64, int) models.SweepResult {
		return models.SweepResult{IsSweep: true, BarIndex: 5, Wick: models.WickUpper}
	}
	if got := ValidateBasic(ob, models.StructureState{}, s, wrong); got.Reason != models.ReasonSweepWrongDirection {
		t.Fatalf("expected wrong direction, got %s", got.Reason)
	}
}

func TestRankHierarchy(t *testing.T) {
	obs := []models.OrderBlock{
		{ID: "far", Polarity: models.PolarityBullish, MeanThreshold: 80, ValidBasic: true},
		{ID: "near", Polarity: models.PolarityBullish, MeanThreshold: 98, ValidBasic: true},
		{ID: "mid", Polarity: models.PolarityBullish, MeanThreshold: 90, ValidBasic: true},
		{ID: "solo", Polarity: models.PolarityBearish, MeanThreshold: 120, ValidBasic: true},
		{ID: "bad", Polarity: models.PolarityBearish, MeanThreshold: 101},
	}
	want := map[string]models.OBRank{
		"far":  models.RankExtreme,
		"near": models.RankDecision,
		"mid":  models.RankTrap,
		"solo": models.RankDecision,
		"bad":  models.RankInvalid,
	}
	for _, ob := range RankHierarchy(obs, 100) {
		if ob.Rank != want[ob.ID] {
			t.Errorf("%s ranked %s, want %s", ob.ID, ob.Rank, want[ob.ID])
		}
	}
}

func TestEvaluatePermission(t *testing.T) {
	z, _ := zones.Calculate(200, 100, zones.DefaultBufferPct)
	cls := zones.NewClassifier(z)
	base := models.OrderBlock{Polarity: models.PolarityBullish, MeanThreshold: 120, ValidBasic: true, Rank: models.RankDecision, Reason: models.ReasonValidOB}
	var typedNil *ptrOracle

	cases := []struct {
		name   string
		mutate func(*models.OrderBlock)
		cls    *zones.Classifier
		oracle interface{ IsInKillZone(time.Time) bool }
		ok     bool
		reason models.Reason
	}{
		{"ok without oracle", nil, cls, nil, true, models.ReasonOK},
		{"ok with open oracle", nil, cls, fixedOracle(true), true, models.ReasonOK},
		{"closed oracle", nil, cls, fixedOracle(false), false, models.ReasonOutsideKillZone},
		{"typed nil oracle denies", nil, cls, typedNil, false, models.ReasonOutsideKillZone},
		{"trap", func(ob *models.OrderBlock) { ob.Rank = models.RankTrap }, cls, nil, false, models.ReasonTrapPOI},
		{"wrong zone", func(ob *models.OrderBlock) { ob.MeanThreshold = 180 }, cls, nil, false, models.ReasonNotInCorrectArray},
		{"invalid", func(ob *models.OrderBlock) { ob.ValidBasic = false; ob.Reason = models.ReasonInvalidNoFVG }, cls, nil, false, models.ReasonInvalidNoFVG},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ob := base
			if tc.mutate != nil {
				tc.mutate(&ob)
			}
			ok, reason, _ := EvaluatePermission(ob, tc.cls, tc.oracle, true)
			if ok != tc.ok || reason != tc.reason {
				t.Fatalf("got %v/%s, want %v/%s", ok, reason, tc.ok, tc.reason)
			}
		})
	}

	if ok, reason, _ := EvaluatePermission(base, nil, nil, true); ok || reason != models.ReasonNotInCorrectArray {
		t.Fatalf("nil classifier must block, got %v/%s", ok, reason)
	}
}

func TestFinalize(t *testing.T) {
	s := bullishSetup()
	set := Finalize(s, models.StructureState{}, DefaultOptions())
	if set.Zone == nil || len(set.OrderBlocks) != 1 {
		t.Fatalf("unexpected set %+v", set)
	}
	ob := set.OrderBlocks[0]
	if !ob.ValidBasic || ob.Rank != models.RankDecision || ob.Class != models.ClassMitigation {
		t.Fatalf("unexpected block %+v", ob)
	}
	if !ob.PermissionToTrade || ob.ZoneName != models.ZoneDiscount || ob.Reason != models.ReasonValidOB {
		t.Fatalf("expected permitted block, got %+v", ob)
	}
	if got := set.Permitted(models.PolarityBullish); len(got) != 1 {
		t.Fatalf("permitted filter mismatch")
	}

	opts := DefaultOptions()
	opts.Oracle = fixedOracle(false)
	denied := Finalize(s, models.StructureState{}, opts).OrderBlocks[0]
	if denied.PermissionToTrade || denied.Reason != models.ReasonOutsideKillZone || !denied.KillZoneChecked {
		t.Fatalf("expected kill zone denial, got %+v", denied)
	}
}

func TestFinalizeTrapNeverTrades(t *testing.T) {
	obs := RankHierarchy([]models.OrderBlock{
		{ID: "a", Polarity: models.PolarityBullish, MeanThreshold: 110, ValidBasic: true},
		{ID: "b", Polarity: models.PolarityBullish, MeanThreshold: 120, ValidBasic: true},
		{ID: "c", Polarity: models.PolarityBullish, MeanThreshold: 130, ValidBasic: true},
	}, 200)
	z, _ := zones.Calculate(300, 100, zones.DefaultBufferPct)
	for _, ob := range obs {
		ok, _, _ := EvaluatePermission(ob, zones.NewClassifier(z), nil, false)
		if ob.Rank == models.RankTrap && ok {
			t.Fatalf("trap block permitted: %+v", ob)
		}
	}
}

func TestBrokenAt(t *testing.T) {
	s := bullishSetup()
	ob := models.OrderBlock{Polarity: models.PolarityBullish, BarIndex: 3, Top: 100.4, Bottom: 97}
	if got := BrokenAt(ob, s); got != -1 {
		t.Fatalf("block should be intact, broken at %d", got)
	}
	s[7].Close = 96.5
	s[7].Low = 96
	if got := BrokenAt(ob, s); got != 7 {
		t.Fatalf("expected break at 7, got %d", got)
	}
	// a forming bar never breaks a block
	s = bullishSetup()
	s[8].Close = 90
	if Broken(ob, s) {
		t.Fatal("forming bar counted as a break")
	}
}
