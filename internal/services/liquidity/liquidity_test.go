package liquidity

import (
	"testing"
	"time"

	"SMCTrader/internal/domain/models"
)

var t0 = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

func ohlc(step time.Duration, rows ...[4]float64) models.Series {
	s := make(models.Series, len(rows))
	for i, r := range rows {
		s[i] = models.Candle{Time: t0.Add(time.Duration(i) * step), Open: r[0], High: r[1], Low: r[2], Close: r[3]}
	}
	return s
}

func bullishIDMSeries() models.Series {
	return ohlc(5*time.Minute,
		[4]float64{5502, 5510, 5500, 5505},
		[4]float64{5506, 5520, 5510, 5515},
		[4]float64{5512, 5515, 5500, 5510},
		[4]float64{5518, 5525, 5515, 5520},
		[4]float64{5520, 5512, 5495, 5508},
		[4]float64{5509, 5530, 5510, 5525},
	)
}

func TestWickSweepLowerAfterIDM(t *testing.T) {
	got := WickSweep(bullishIDMSeries(), 5500, 2)
	if !got.IsSweep || got.Wick != models.WickLower || got.BarIndex != 4 {
		t.Fatalf("expected lower sweep at 4, got %+v", got)
	}
	if got.Price != 5495 || got.Reason != models.ReasonSwept {
		t.Fatalf("unexpected sweep details %+v", got)
	}
}

func TestWickSweepUpperNeverLower(t *testing.T) {
	s := ohlc(5*time.Minute,
		[4]float64{5512, 5520, 5510, 5515},
		[4]float64{5508, 5510, 5500, 5505},
		[4]float64{5507, 5515, 5505, 5510},
		[4]float64{5503, 5505, 5495, 5500},
		[4]float64{5502, 5522, 5510, 5512},
		[4]float64{5511, 5510, 5500, 5505},
	)
	got := WickSweep(s, 5515, 2)
	if !got.IsSweep || got.Wick != models.WickUpper || got.BarIndex != 4 {
		t.Fatalf("expected upper sweep at 4, got %+v", got)
	}
}

func TestWickSweepReasons(t *testing.T) {
	s := bullishIDMSeries()
	if got := WickSweep(s, 5500, 5); got.IsSweep || got.Reason != models.ReasonNoData {
		t.Fatalf("expected NO_DATA, got %+v", got)
	}
	if got := WickSweep(s, 5000, 0); got.IsSweep || got.Reason != models.ReasonNotYetSwept {
		t.Fatalf("expected NOT_YET_SWEPT, got %+v", got)
	}

	s[5].Forming = true
	if got := WickSweep(s, 5500, 4); got.Reason != models.ReasonNoData {
		t.Fatalf("forming bar must not be scanned, got %+v", got)
	}
}

func TestWickSweepIsStableAsBarsClose(t *testing.T) {
	full := bullishIDMSeries()
	partial := append(models.Series{}, full...)
	partial[5].Forming = true

	first := WickSweep(partial, 5500, 2)
	again := WickSweep(partial, 5500, 2)
	if first != again {
		t.Fatalf("not idempotent: %+v vs %+v", first, again)
	}
	later := WickSweep(full, 5500, 2)
	if !later.IsSweep || later.BarIndex != first.BarIndex || later.Wick != first.Wick {
		t.Fatalf("sweep retracted: before %+v after %+v", first, later)
	}
}

func TestPreviousPeriodCalendarDay(t *testing.T) {
	rows := make([][4]float64, 0, 30)
	for i := 0; i < 24; i++ {
		v := 100 + float64(i)
		rows = append(rows, [4]float64{v, v + 1, v - 10, v})
	}
	for i := 0; i < 6; i++ {
		rows = append(rows, [4]float64{150, 160, 140, 150})
	}
	s := ohlc(time.Hour, rows...)

	got := PreviousPeriod(s, time.Time{})
	if got.Source != models.PeriodPreviousDay {
		t.Fatalf("expected previous day, got %s", got.Source)
	}
	if got.High != 124 || got.Low != 90 || got.EndIndex != 23 {
		t.Fatalf("unexpected levels %+v", got)
	}
	if got.Degenerate {
		t.Fatalf("range should not be degenerate")
	}
}

func TestPreviousPeriodRollingFallback(t *testing.T) {
	s := ohlc(time.Hour,
		[4]float64{10, 12, 9, 11},
		[4]float64{11, 13, 10, 12},
		[4]float64{12, 12, 8, 9},
	)
	got := PreviousPeriod(s, time.Time{})
	if got.Source != models.PeriodRolling24h || got.High != 13 || got.Low != 8 {
		t.Fatalf("unexpected fallback %+v", got)
	}
}

func TestPreviousPeriodDegenerateAndEmpty(t *testing.T) {
	flat := ohlc(time.Hour, [4]float64{5, 5, 5, 5}, [4]float64{5, 5, 5, 5})
	if got := PreviousPeriod(flat, time.Time{}); !got.Degenerate {
		t.Fatalf("flat range must be degenerate: %+v", got)
	}
	if got := PreviousPeriod(models.Series{}, time.Time{}); got.Found() {
		t.Fatalf("empty series must not produce levels: %+v", got)
	}
}

func TestEqualFromSwings(t *testing.T) {
	pts := []models.SwingPoint{
		{Index: 3, Price: 100.0, Kind: models.SwingHigh},
		{Index: 9, Price: 100.3, Kind: models.SwingHigh},
		{Index: 12, Price: 105, Kind: models.SwingHigh},
		{Index: 15, Price: 99.9, Kind: models.SwingHigh},
		{Index: 6, Price: 90, Kind: models.SwingLow},
	}
	got := EqualFromSwings(pts, 20, models.SwingHigh, 0.5, 0)
	if len(got) != 1 {
		t.Fatalf("expected one cluster, got %+v", got)
	}
	c := got[0]
	if c.Count != 3 || c.FirstIndex != 3 || c.LastIndex != 15 || c.Span != 12 {
		t.Fatalf("unexpected cluster %+v", c)
	}
	if c.Price < 100.06 || c.Price > 100.07 {
		t.Fatalf("unexpected mean %v", c.Price)
	}

	if got := EqualFromSwings(pts, 20, models.SwingHigh, 0.5, 10); len(got) != 0 {
		t.Fatalf("lookback should leave a single swing, got %+v", got)
	}
}

func TestNearestSortedAndCapped(t *testing.T) {
	levels := []models.LiquidityLevel{
		{Kind: models.LevelSwingHigh, Price: 110},
		{Kind: models.LevelPDH, Price: 103},
		{Kind: models.LevelSwingHigh, Price: 105},
		{Kind: models.LevelPDL, Price: 95},
		{Kind: models.LevelSwingLow, Price: 99},
		{Kind: models.LevelSwingLow, Price: 100},
	}
	got := Nearest(levels, 100, 2)
	if len(got.Above) != 2 || got.Above[0].Price != 103 || got.Above[1].Price != 105 {
		t.Fatalf("unexpected above %+v", got.Above)
	}
	if len(got.Below) != 2 || got.Below[0].Price != 99 || got.Below[1].Price != 95 {
		t.Fatalf("unexpected below %+v", got.Below)
	}
}

func TestStaticSourceReturnsCopy(t *testing.T) {
	src := NewStaticSource([]models.LiquidityLevel{{Kind: models.LevelPDH, Price: 1}})
	a := src.Levels(nil)
	a[0].Price = 2
	if b := src.Levels(nil); b[0].Price != 1 {
		t.Fatalf("source mutated through returned slice")
	}
}

func TestEngineBuildDetectsPDLSweep(t *testing.T) {
	rows := make([][4]float64, 0, 30)
	for i := 0; i < 24; i++ {
		rows = append(rows, [4]float64{100, 105, 95, 100})
	}
	rows = append(rows,
		[4]float64{100, 104, 97, 101},
		[4]float64{101, 102, 93, 99},
		[4]float64{99, 103, 98, 102},
	)
	s := ohlc(time.Hour, rows...)
	m := NewEngine(DefaultConfig()).Build(s, nil, time.Time{})
	if !m.PDLSweep.IsSweep || m.PDLSweep.BarIndex != 25 {
		t.Fatalf("expected PDL sweep at 25, got %+v", m.PDLSweep)
	}
	if m.SweptSide != models.PolarityBullish {
		t.Fatalf("expected bullish swept side, got %q", m.SweptSide)
	}
	if m.PDHSweep.IsSweep {
		t.Fatalf("unexpected PDH sweep %+v", m.PDHSweep)
	}
}
