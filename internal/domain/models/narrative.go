package models

import "time"

// NarrativeState is one of the ordered stages that must complete before an entry.
type NarrativeState string

const (
	StateIdle                   NarrativeState = "IDLE"
	StateTradingRangeDefined    NarrativeState = "TRADING_RANGE_DEFINED"
	StateExternalLiquiditySwept NarrativeState = "EXTERNAL_LIQUIDITY_SWEPT"
	StateHTFPOIReached          NarrativeState = "HTF_POI_REACHED"
	StateLTFStructureShift      NarrativeState = "LTF_STRUCTURE_SHIFT"
	StateLTFPOIMitigated        NarrativeState = "LTF_POI_MITIGATED"
	StateEntryAllowed           NarrativeState = "ENTRY_ALLOWED"
)

// NarrativeStates lists the stages in order.
var NarrativeStates = []NarrativeState{
	StateIdle,
	StateTradingRangeDefined,
	StateExternalLiquiditySwept,
	StateHTFPOIReached,
	StateLTFStructureShift,
	StateLTFPOIMitigated,
	StateEntryAllowed,
}

// Index returns the position of the stage, or -1 for an unknown value.
func (s NarrativeState) Index() int {
	for i, v := range NarrativeStates {
		if v == s {
			return i
		}
	}
	return -1
}

// NarrativeInput is the set of facts one evaluation cycle feeds the narrative.
type NarrativeInput struct {
	RangeDefined      bool     `json:"range_defined"`
	LiquiditySwept    bool     `json:"liquidity_swept"`
	HTFPOIReached     bool     `json:"htf_poi_reached"`
	LTFStructureShift bool     `json:"ltf_structure_shift"`
	LTFPOIMitigated   bool     `json:"ltf_poi_mitigated"`
	EntryPOIPermitted bool     `json:"entry_poi_permitted"`
	HTFOBInvalidated  bool     `json:"htf_ob_invalidated"`
	BiasFlipped       bool     `json:"bias_flipped"`
	Direction         Polarity `json:"direction"`
}

// NarrativeReset records why and when the narrative last went back to IDLE.
type NarrativeReset struct {
	Reason string         `json:"reason"`
	From   NarrativeState `json:"from"`
	At     time.Time      `json:"at"`
}

// SessionRecord is what survives a restart for one symbol and timeframe pair:
// the narrative plus the driver's bookkeeping around it.
type SessionRecord struct {
	Narrative NarrativeSnapshot `json:"narrative"`
	Bias      Polarity          `json:"bias,omitempty"`
	CHOCHAt   time.Time         `json:"choch_at"`
	LastBar   time.Time         `json:"last_bar"`
}

// NarrativeSnapshot is a copy of a session's state.
type NarrativeSnapshot struct {
	State        NarrativeState  `json:"state"`
	EntryAllowed bool            `json:"entry_allowed"`
	Direction    Polarity        `json:"direction"`
	StageIndex   int             `json:"stage_index"`
	UpdatedAt    time.Time       `json:"updated_at"`
	LastReset    *NarrativeReset `json:"last_reset,omitempty"`
}
