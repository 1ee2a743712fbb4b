package models

import "time"

// Polarity is the side a pattern favours.
type Polarity string

const (
	PolarityNone    Polarity = ""
	PolarityBullish Polarity = "BULLISH"
	PolarityBearish Polarity = "BEARISH"
)

// Opposite flips bullish and bearish; none stays none.
func (p Polarity) Opposite() Polarity {
	switch p {
	case PolarityBullish:
		return PolarityBearish
	case PolarityBearish:
		return PolarityBullish
	default:
		return PolarityNone
	}
}

type SwingKind string

const (
	SwingHigh SwingKind = "HIGH"
	SwingLow  SwingKind = "LOW"
)

// SwingPoint is a fractal extreme confirmed by two closed bars on its right.
type SwingPoint struct {
	Index int       `json:"index"`
	Time  time.Time `json:"time"`
	Price float64   `json:"price"`
	Kind  SwingKind `json:"kind"`
}

type Trend string

const (
	TrendUp      Trend = "UP"
	TrendDown    Trend = "DOWN"
	TrendNeutral Trend = "NEUTRAL"
)

// StructurePhase tracks how far the inducement -> sweep -> break sequence got.
type StructurePhase string

const (
	PhaseNoIDM              StructurePhase = "NO_IDM"
	PhaseIDMPresent         StructurePhase = "IDM_PRESENT"
	PhaseIDMSwept           StructurePhase = "IDM_SWEPT"
	PhaseStructureConfirmed StructurePhase = "STRUCTURE_CONFIRMED"
)

type StructureLabel string

const (
	LabelNone         StructureLabel = "NONE"
	LabelMSSBullish   StructureLabel = "MSS_BULLISH"
	LabelMSSBearish   StructureLabel = "MSS_BEARISH"
	LabelCHOCHBullish StructureLabel = "CHOCH_BULLISH"
	LabelCHOCHBearish StructureLabel = "CHOCH_BEARISH"
)

// Polarity returns the direction of a confirmed break.
func (l StructureLabel) Polarity() Polarity {
	switch l {
	case LabelMSSBullish, LabelCHOCHBullish:
		return PolarityBullish
	case LabelMSSBearish, LabelCHOCHBearish:
		return PolarityBearish
	default:
		return PolarityNone
	}
}

// IsCHOCH reports whether the break reversed the prevailing trend.
func (l StructureLabel) IsCHOCH() bool {
	return l == LabelCHOCHBullish || l == LabelCHOCHBearish
}

// InducementCandidate is the internal pullback extreme expected to be swept.
type InducementCandidate struct {
	Index    int       `json:"index"`
	Time     time.Time `json:"time"`
	Price    float64   `json:"price"`
	Polarity Polarity  `json:"polarity"`
}

// StructureState is recomputed from the candle series on every evaluation.
type StructureState struct {
	Trend              Trend                `json:"trend"`
	Phase              StructurePhase       `json:"phase"`
	IDM                *InducementCandidate `json:"idm,omitempty"`
	IsSwept            bool                 `json:"is_swept"`
	Sweep              *SweepResult         `json:"sweep,omitempty"`
	StructureConfirmed bool                 `json:"structure_confirmed"`
	Label              StructureLabel       `json:"label"`
	BOSLevel           *float64             `json:"bos_level,omitempty"`
	BOSBarIndex        int                  `json:"bos_bar_index"`
	Reason             Reason               `json:"reason_code"`
}
