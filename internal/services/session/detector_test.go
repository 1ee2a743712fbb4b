package session

import (
	"testing"
	"time"

	"SMCTrader/internal/domain/models"
)

func at(hour int) time.Time {
	return time.Date(2024, 3, 4, hour, 30, 0, 0, time.UTC)
}

func TestCurrent(t *testing.T) {
	cases := []struct {
		hour int
		want models.SessionName
		kill bool
	}{
		{1, models.SessionAsian, false},
		{3, models.SessionLondon, true},
		{8, models.SessionLondon, true},
		{12, models.SessionOffHours, false},
		{13, models.SessionOverlap, true},
		{16, models.SessionOverlap, true},
		{17, models.SessionNewYork, true},
		{21, models.SessionNewYork, true},
		{22, models.SessionOffHours, false},
		{23, models.SessionOffHours, false},
	}
	d := NewDetector()
	for _, tc := range cases {
		got := d.Current(at(tc.hour))
		if got.Name != tc.want || got.KillZone != tc.kill {
			t.Errorf("hour %d: got %s kill=%v, want %s kill=%v", tc.hour, got.Name, got.KillZone, tc.want, tc.kill)
		}
		if d.IsInKillZone(at(tc.hour)) != tc.kill {
			t.Errorf("hour %d: IsInKillZone mismatch", tc.hour)
		}
	}
}

func TestCurrentConvertsToGMT(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	got := NewDetector().Current(time.Date(2024, 3, 4, 19, 0, 0, 0, loc))
	if got.Name != models.SessionOverlap {
		t.Fatalf("expected overlap at 14:00 GMT, got %s", got.Name)
	}
}

func TestNilDetectorDenies(t *testing.T) {
	var d *Detector
	if d.IsInKillZone(at(14)) {
		t.Fatalf("nil detector must deny")
	}
}

func TestWeightedConfidence(t *testing.T) {
	cases := map[float64]models.Confidence{
		0.95: models.ConfidenceVeryHigh,
		0.85: models.ConfidenceHigh,
		0.70: models.ConfidenceMedium,
		0.60: models.ConfidenceLow,
	}
	for r, want := range cases {
		if got := WeightedConfidence(r); got != want {
			t.Errorf("WeightedConfidence(%v) = %s, want %s", r, got, want)
		}
	}
}
