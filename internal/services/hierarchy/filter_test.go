package hierarchy

import (
	"testing"

	"SMCTrader/internal/domain/models"
)

func read(tf models.Timeframe, bias models.Polarity, label models.StructureLabel) models.TimeframeRead {
	return models.TimeframeRead{Timeframe: tf, Bias: bias, Label: label}
}

func TestValidate(t *testing.T) {
	bull, bear, none := models.PolarityBullish, models.PolarityBearish, models.PolarityNone
	cases := []struct {
		name       string
		reads      []models.TimeframeRead
		blocked    bool
		multiplier float64
	}{
		{"no reads", nil, false, 1},
		{"d1 opposes", []models.TimeframeRead{read(models.TF1d, bear, models.LabelNone)}, true, 0},
		{"d1 opposes with choch", []models.TimeframeRead{read(models.TF1d, bear, models.LabelCHOCHBullish)}, false, 1},
		{"d1 opposes with wrong choch", []models.TimeframeRead{read(models.TF1d, bear, models.LabelCHOCHBearish)}, true, 0},
		{"both intraday oppose", []models.TimeframeRead{read(models.TF4h, bear, ""), read(models.TF1h, bear, "")}, true, 0},
		{"one opposes", []models.TimeframeRead{read(models.TF4h, bear, ""), read(models.TF1h, none, "")}, false, 0.6},
		{"mixed", []models.TimeframeRead{read(models.TF4h, bear, ""), read(models.TF1h, bull, "")}, false, 1},
		{"both support", []models.TimeframeRead{read(models.TF4h, bull, ""), read(models.TF1h, bull, "")}, false, 1.2},
	}
	f := NewFilter(models.TF5m)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := f.Validate(bull, tc.reads)
			if got.Blocked != tc.blocked || got.Multiplier != tc.multiplier {
				t.Fatalf("got blocked=%v mult=%v, want blocked=%v mult=%v", got.Blocked, got.Multiplier, tc.blocked, tc.multiplier)
			}
			if tc.blocked && got.Reason != models.ReasonHierarchyBlocked {
				t.Fatalf("blocked without reason: %+v", got)
			}
		})
	}
}

func TestScore(t *testing.T) {
	f := NewFilter(models.TF5m)
	reads := []models.TimeframeRead{
		read(models.TF1d, models.PolarityBullish, ""),
		read(models.TF4h, models.PolarityNone, ""),
		read(models.TF1h, models.PolarityBearish, ""),
		read(models.TF5m, models.PolarityBearish, ""),
	}
	// (4*100 + 3*50 + 2*0) / 9
	want := 550.0 / 9
	if got := f.Score(models.PolarityBullish, reads); got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
	if got := f.Score(models.PolarityBullish, nil); got != 50 {
		t.Fatalf("empty score %v", got)
	}
}
