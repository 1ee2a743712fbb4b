package swing

import (
	"math"
	"testing"
	"time"

	"SMCTrader/internal/domain/models"
)

var t0 = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

// hl builds a closed series from high/low pairs.
func hl(pairs ...[2]float64) models.Series {
	s := make(models.Series, len(pairs))
	for i, p := range pairs {
		mid := (p[0] + p[1]) / 2
		s[i] = models.Candle{Time: t0.Add(time.Duration(i) * 5 * time.Minute), Open: mid, High: p[0], Low: p[1], Close: mid}
	}
	return s
}

func TestDetectFindsStrictFractals(t *testing.T) {
	s := hl(
		[2]float64{10, 8},
		[2]float64{11, 9},
		[2]float64{14, 10},
		[2]float64{12, 9},
		[2]float64{11, 7},
		[2]float64{12, 8},
		[2]float64{13, 9},
	)
	got := Detect(s)
	if len(got) != 2 {
		t.Fatalf("expected 2 swings, got %d: %+v", len(got), got)
	}
	if got[0].Kind != models.SwingHigh || got[0].Index != 2 || got[0].Price != 14 {
		t.Errorf("unexpected swing high %+v", got[0])
	}
	if got[1].Kind != models.SwingLow || got[1].Index != 4 || got[1].Price != 7 {
		t.Errorf("unexpected swing low %+v", got[1])
	}
}

func TestDetectEqualNeighbourIsNotSwing(t *testing.T) {
	s := hl(
		[2]float64{10, 8},
		[2]float64{14, 9},
		[2]float64{14, 10},
		[2]float64{12, 9},
		[2]float64{11, 9},
	)
	for _, p := range Detect(s) {
		if p.Kind == models.SwingHigh {
			t.Fatalf("tie must not produce a swing high: %+v", p)
		}
	}
}

func TestDetectShortOrUnclosedSeries(t *testing.T) {
	cases := []struct {
		name string
		s    models.Series
	}{
		{"empty", models.Series{}},
		{"four bars", hl([2]float64{1, 0}, [2]float64{2, 1}, [2]float64{3, 2}, [2]float64{2, 1})},
		{"nothing closed", func() models.Series {
			s := hl([2]float64{1, 0}, [2]float64{2, 1}, [2]float64{5, 2}, [2]float64{2, 1}, [2]float64{1, 0})
			for i := range s {
				s[i].Forming = true
			}
			return s
		}()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Detect(tc.s)
			if got == nil || len(got) != 0 {
				t.Fatalf("expected empty non-nil slice, got %+v", got)
			}
		})
	}
}

func TestDetectWaitsForTwoClosedBars(t *testing.T) {
	s := hl(
		[2]float64{10, 8},
		[2]float64{11, 9},
		[2]float64{14, 10},
		[2]float64{12, 9},
		[2]float64{11, 9},
	)
	s[4].Forming = true
	if got := Detect(s); len(got) != 0 {
		t.Fatalf("swing emitted before confirmation: %+v", got)
	}

	s[4].Close = math.NaN()
	s[4].Forming = false
	if got := Detect(s); len(got) != 0 {
		t.Fatalf("NaN close must count as forming: %+v", got)
	}
}

func TestDetectNeverExceedsLastClosedMinusTwo(t *testing.T) {
	pairs := make([][2]float64, 0, 60)
	for i := 0; i < 60; i++ {
		v := 100 + 10*math.Sin(float64(i)/3)
		pairs = append(pairs, [2]float64{v + 1, v - 1})
	}
	s := hl(pairs...)
	s[len(s)-1].Forming = true
	lc := s.LastClosed()
	for _, p := range Detect(s) {
		if p.Index > lc-2 {
			t.Fatalf("swing at %d beyond last closed %d", p.Index, lc)
		}
	}
}

func TestDetectSkipsMalformedWindow(t *testing.T) {
	s := hl(
		[2]float64{10, 8},
		[2]float64{11, 9},
		[2]float64{14, 10},
		[2]float64{12, 9},
		[2]float64{11, 7},
		[2]float64{12, 8},
		[2]float64{13, 9},
	)
	s[1].High = math.Inf(1)
	for _, p := range Detect(s) {
		if p.Index == 2 {
			t.Fatalf("candidate next to malformed bar emitted: %+v", p)
		}
	}
}

func TestLastN(t *testing.T) {
	pts := []models.SwingPoint{
		{Index: 1, Kind: models.SwingHigh},
		{Index: 2, Kind: models.SwingLow},
		{Index: 3, Kind: models.SwingHigh},
		{Index: 5, Kind: models.SwingHigh},
	}
	got := LastN(pts, models.SwingHigh, 2)
	if len(got) != 2 || got[0].Index != 3 || got[1].Index != 5 {
		t.Fatalf("unexpected %+v", got)
	}
	if len(Lows(pts)) != 1 || len(Highs(pts)) != 3 {
		t.Fatalf("filter mismatch")
	}
}
