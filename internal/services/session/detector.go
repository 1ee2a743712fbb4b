// Package session maps timestamps to forex trading sessions and their kill zones.
package session

import (
	"time"

	"SMCTrader/internal/domain/models"
)

// KillZoneReliability is the minimum session reliability that counts as a kill zone.
const KillZoneReliability = 0.80

type window struct {
	name        models.SessionName
	start, end  int
	reliability float64
	multiplier  float64
}

// Checked in priority order; hours are GMT, end exclusive.
var windows = []window{
	{models.SessionOverlap, 13, 17, 0.95, 1.30},
	{models.SessionLondon, 3, 12, 0.85, 1.15},
	{models.SessionNewYork, 13, 22, 0.80, 1.10},
	{models.SessionAsian, 0, 9, 0.60, 0.85},
}

var offHours = window{models.SessionOffHours, 0, 0, 0.70, 1.0}

// Detector implements the session oracle over fixed GMT windows.
type Detector struct{}

func NewDetector() *Detector { return &Detector{} }

// Current returns the session active at t.
func (d *Detector) Current(t time.Time) models.SessionInfo {
	w := lookup(t.UTC().Hour())
	return models.SessionInfo{
		Name:        w.name,
		Reliability: w.reliability,
		Multiplier:  w.multiplier,
		KillZone:    w.reliability >= KillZoneReliability,
		At:          t,
	}
}

// IsInKillZone reports whether t falls in a high-reliability session. A nil
// detector answers false.
func (d *Detector) IsInKillZone(t time.Time) bool {
	if d == nil {
		return false
	}
	return d.Current(t).KillZone
}

func lookup(hour int) window {
	for _, w := range windows {
		if hour >= w.start && hour < w.end {
			return w
		}
	}
	return offHours
}

// WeightedConfidence grades a reliability score.
func WeightedConfidence(reliability float64) models.Confidence {
	switch {
	case reliability >= 0.90:
		return models.ConfidenceVeryHigh
	case reliability >= 0.80:
		return models.ConfidenceHigh
	case reliability >= 0.70:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}
