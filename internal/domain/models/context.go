package models

import "time"

// TradingContext is the full read of one symbol after an evaluation cycle.
type TradingContext struct {
	ID              string             `json:"id"`
	Symbol          string             `json:"symbol"`
	Timeframe       Timeframe          `json:"timeframe"`
	HTFTimeframe    Timeframe          `json:"htf_timeframe"`
	EvaluatedAt     time.Time          `json:"evaluated_at"`
	LastClosedIndex int                `json:"last_closed_index"`
	LastClosedTime  time.Time          `json:"last_closed_time"`
	Price           float64            `json:"price"`
	Swings          []SwingPoint       `json:"swings"`
	Liquidity       LiquidityMap       `json:"liquidity"`
	Structure       StructureState     `json:"structure"`
	HTFStructure    StructureState     `json:"htf_structure"`
	POIs            POISet             `json:"pois"`
	HTFPOIs         POISet             `json:"htf_pois"`
	Zone            *Zone              `json:"zone,omitempty"`
	ZoneName        ZoneName           `json:"zone_name"`
	Session         SessionInfo        `json:"session"`
	Bias            BiasReport         `json:"bias"`
	Inducement      *InducementWick    `json:"inducement,omitempty"`
	Volume          *VolumeReport      `json:"volume,omitempty"`
	Features        map[string]float64 `json:"features,omitempty"`
	NarrativeInput  NarrativeInput     `json:"narrative_input"`
	Narrative       NarrativeSnapshot  `json:"narrative"`
	Direction       Polarity           `json:"direction"`
	Alignment       Alignment          `json:"alignment"`
	IdeaKey         string             `json:"idea_key,omitempty"`
	IdeaAllowed     bool               `json:"idea_allowed"`
	EntrySignal     bool               `json:"entry_signal"`
	EntryPOI        *OrderBlock        `json:"entry_poi,omitempty"`
	Reason          Reason             `json:"reason_code"`
	Chart           *ChartOverlay      `json:"chart,omitempty"`
}

// IdeaStatus is the lifecycle of a traded idea in idea memory.
type IdeaStatus string

const (
	IdeaActive IdeaStatus = "ACTIVE"
	IdeaFailed IdeaStatus = "FAILED"
)

// Idea is one remembered trade idea.
type Idea struct {
	Key       string     `json:"key"`
	Status    IdeaStatus `json:"status"`
	MarkedAt  time.Time  `json:"marked_at"`
	ExpiresAt time.Time  `json:"expires_at"`
}

// IdeaKey identifies a trade idea independent of the exact entry price.
type IdeaKey struct {
	Direction Polarity
	Zone      ZoneName
	Price     float64
	Session   SessionName
}
