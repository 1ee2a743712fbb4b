package structure

import (
	"testing"
	"time"

	"SMCTrader/internal/domain/models"
)

var t0 = time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)

func ohlc(rows ...[4]float64) models.Series {
	s := make(models.Series, len(rows))
	for i, r := range rows {
		s[i] = models.Candle{Time: t0.Add(time.Duration(i) * 5 * time.Minute), Open: r[0], High: r[1], Low: r[2], Close: r[3]}
	}
	return s
}

func flat(n int, v float64) [][4]float64 {
	out := make([][4]float64, n)
	for i := range out {
		out[i] = [4]float64{v, v + 1, v - 1, v}
	}
	return out
}

func hi(i int, p float64) models.SwingPoint {
	return models.SwingPoint{Index: i, Price: p, Kind: models.SwingHigh}
}

func lo(i int, p float64) models.SwingPoint {
	return models.SwingPoint{Index: i, Price: p, Kind: models.SwingLow}
}

var upSwings = []models.SwingPoint{hi(1, 110), lo(2, 100), hi(4, 115), lo(6, 105)}

func upSeries(tail ...[4]float64) models.Series {
	return ohlc(append(flat(7, 108), tail...)...)
}

func TestEvaluateInsufficientData(t *testing.T) {
	got := Evaluate(upSeries(), []models.SwingPoint{hi(1, 110), lo(2, 100), lo(4, 101)})
	if got.Reason != models.ReasonInsufficientData || got.Phase != models.PhaseNoIDM {
		t.Fatalf("unexpected %+v", got)
	}
}

func TestEvaluateNeutralTrendHasNoIDM(t *testing.T) {
	got := Evaluate(upSeries(), []models.SwingPoint{hi(1, 110), lo(2, 100), hi(4, 115), lo(6, 95)})
	if got.Trend != models.TrendNeutral || got.Reason != models.ReasonNoIDM || got.IDM != nil {
		t.Fatalf("unexpected %+v", got)
	}
}

func TestEvaluateBullishSequence(t *testing.T) {
	cases := []struct {
		name   string
		tail   [][4]float64
		reason models.Reason
		phase  models.StructurePhase
	}{
		{
			name:   "idm not swept",
			tail:   [][4]float64{{107, 109, 106, 108}},
			reason: models.ReasonIDMNotSwept,
			phase:  models.PhaseIDMPresent,
		},
		{
			name:   "wrong direction",
			tail:   [][4]float64{{107, 109, 106, 108}, {104, 107, 103, 104}},
			reason: models.ReasonSweepWrongDirection,
			phase:  models.PhaseIDMPresent,
		},
		{
			name:   "no bos",
			tail:   [][4]float64{{107, 109, 106, 108}, {107, 108, 103, 106}, {106, 112, 105, 111}},
			reason: models.ReasonNoBOSAfterSweep,
			phase:  models.PhaseIDMSwept,
		},
		{
			name:   "confirmed",
			tail:   [][4]float64{{107, 109, 106, 108}, {107, 108, 103, 106}, {106, 112, 105, 111}, {111, 118, 110, 117}},
			reason: models.ReasonStructureConfirmed,
			phase:  models.PhaseStructureConfirmed,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Evaluate(upSeries(tc.tail...), upSwings)
			if got.Trend != models.TrendUp {
				t.Fatalf("expected uptrend, got %s", got.Trend)
			}
			if got.IDM == nil || got.IDM.Index != 6 || got.IDM.Polarity != models.PolarityBullish {
				t.Fatalf("unexpected idm %+v", got.IDM)
			}
			if got.Reason != tc.reason || got.Phase != tc.phase {
				t.Fatalf("expected %s/%s, got %s/%s", tc.reason, tc.phase, got.Reason, got.Phase)
			}
		})
	}
}

func TestEvaluateBullishConfirmationDetails(t *testing.T) {
	s := upSeries([4]float64{107, 109, 106, 108}, [4]float64{107, 108, 103, 106}, [4]float64{106, 112, 105, 111}, [4]float64{111, 118, 110, 117})
	got := Evaluate(s, upSwings)
	if !got.IsSwept || got.Sweep == nil || got.Sweep.BarIndex != 8 || got.Sweep.Wick != models.WickLower {
		t.Fatalf("unexpected sweep %+v", got.Sweep)
	}
	if !got.StructureConfirmed || got.BOSBarIndex != 10 || got.BOSLevel == nil || *got.BOSLevel != 115 {
		t.Fatalf("unexpected bos %+v", got)
	}
	if got.Label != models.LabelMSSBullish {
		t.Fatalf("expected MSS_BULLISH, got %s", got.Label)
	}
}

func TestEvaluateIgnoresFormingBreak(t *testing.T) {
	s := upSeries([4]float64{107, 109, 106, 108}, [4]float64{107, 108, 103, 106}, [4]float64{111, 118, 110, 117})
	s[len(s)-1].Forming = true
	got := Evaluate(s, upSwings)
	if got.StructureConfirmed || got.Reason != models.ReasonNoBOSAfterSweep {
		t.Fatalf("forming bar confirmed structure: %+v", got)
	}
}

func TestEvaluateBearishSequence(t *testing.T) {
	swings := []models.SwingPoint{lo(1, 100), hi(2, 110), lo(4, 95), hi(6, 105)}
	rows := append(flat(7, 100),
		[4]float64{103, 104, 101, 102},
		[4]float64{103, 107, 102, 104},
		[4]float64{104, 104, 96, 97},
		[4]float64{97, 98, 92, 93},
	)
	got := Evaluate(ohlc(rows...), swings)
	if got.Trend != models.TrendDown || got.IDM == nil || got.IDM.Polarity != models.PolarityBearish {
		t.Fatalf("unexpected trend/idm %+v", got)
	}
	if got.Sweep == nil || got.Sweep.Wick != models.WickUpper {
		t.Fatalf("expected upper sweep, got %+v", got.Sweep)
	}
	if got.Label != models.LabelMSSBearish || got.BOSBarIndex != 10 || *got.BOSLevel != 95 {
		t.Fatalf("unexpected confirmation %+v", got)
	}
}

// reversalSeries is a downtrend (120 then a lower high at 110) that turns up
// with a higher high at 115 and a higher low at 105, sweeps that low on bar 22
// and closes above 115 on bar 23.
func reversalSeries() models.Series {
	hl := [][2]float64{
		{112, 108}, {116, 110}, {120, 113}, {117, 109}, {113, 104}, {111, 102}, {108, 99}, {106, 101},
		{109, 103}, {110, 104}, {108, 102}, {105, 100.5}, {104, 100}, {107, 101}, {111, 103}, {113, 106},
		{115, 108}, {113, 107}, {110, 106}, {108, 105}, {109, 106}, {110, 107}, {108, 104}, {117, 106},
	}
	rows := make([][4]float64, len(hl))
	for i, r := range hl {
		h, l := r[0], r[1]
		rows[i] = [4]float64{l + 0.3*(h-l), h, l, l + 0.7*(h-l)}
	}
	rows[23][0], rows[23][3] = 107, 116.5
	return ohlc(rows...)
}

// mirror reflects prices around m, turning highs into lows.
func mirror(s models.Series, m float64) models.Series {
	out := make(models.Series, len(s))
	for i, c := range s {
		c.Open, c.Close = m-c.Open, m-c.Close
		c.High, c.Low = m-c.Low, m-c.High
		out[i] = c
	}
	return out
}

func TestEvaluateSeriesReversalIsCHOCH(t *testing.T) {
	got := EvaluateSeries(reversalSeries())
	if got.Trend != models.TrendUp || got.IDM == nil || got.IDM.Index != 19 || got.IDM.Price != 105 {
		t.Fatalf("unexpected trend/idm %+v", got)
	}
	if got.Sweep == nil || got.Sweep.BarIndex != 22 || got.Sweep.Wick != models.WickLower {
		t.Fatalf("unexpected sweep %+v", got.Sweep)
	}
	if !got.StructureConfirmed || got.BOSBarIndex != 23 || *got.BOSLevel != 115 {
		t.Fatalf("unexpected bos %+v", got)
	}
	if got.Label != models.LabelCHOCHBullish {
		t.Fatalf("expected CHOCH_BULLISH, got %s", got.Label)
	}

	bear := EvaluateSeries(mirror(reversalSeries(), 240))
	if bear.Trend != models.TrendDown || !bear.StructureConfirmed || bear.BOSBarIndex != 23 {
		t.Fatalf("unexpected mirrored state %+v", bear)
	}
	if bear.Label != models.LabelCHOCHBearish {
		t.Fatalf("expected CHOCH_BEARISH, got %s", bear.Label)
	}
}

func TestEvaluateContinuationIsMSS(t *testing.T) {
	swings := append([]models.SwingPoint{hi(0, 105)}, upSwings...)
	s := upSeries([4]float64{107, 109, 106, 108}, [4]float64{107, 108, 103, 106}, [4]float64{106, 112, 105, 111}, [4]float64{111, 118, 110, 117})
	if got := Evaluate(s, swings); got.Label != models.LabelMSSBullish {
		t.Fatalf("expected MSS_BULLISH after higher highs, got %s", got.Label)
	}
	swings[0] = hi(0, 120)
	if got := Evaluate(s, swings); got.Label != models.LabelCHOCHBullish {
		t.Fatalf("expected CHOCH_BULLISH after a lower high, got %s", got.Label)
	}
}
