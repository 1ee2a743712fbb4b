package models

import (
	"fmt"
	"time"
)

// FairValueGap is a three-candle imbalance. Top > Bottom is fixed at creation.
type FairValueGap struct {
	ID             string    `json:"id"`
	Polarity       Polarity  `json:"polarity"`
	Top            float64   `json:"top"`
	Bottom         float64   `json:"bottom"`
	GapSize        float64   `json:"gap_size"`
	CreatedByBar   int       `json:"created_by_bar"`
	CreatedTime    time.Time `json:"created_time"`
	Mitigated      bool      `json:"mitigated"`
	MitigatedAtBar int       `json:"mitigated_at_bar"`
}

// FVGID builds the stable identifier of a gap created by bar.
func FVGID(bar int, p Polarity) string {
	suffix := "BULL"
	if p == PolarityBearish {
		suffix = "BEAR"
	}
	return fmt.Sprintf("FVG:%d:%s", bar, suffix)
}

type OBClass string

const (
	ClassPotential  OBClass = "POTENTIAL"
	ClassBreaker    OBClass = "BREAKER"
	ClassMitigation OBClass = "MITIGATION"
	ClassReclaimed  OBClass = "RECLAIMED"
	ClassWeak       OBClass = "WEAK"
)

type OBRank string

const (
	RankNone     OBRank = "NONE"
	RankDecision OBRank = "DECISION"
	RankExtreme  OBRank = "EXTREME"
	RankTrap     OBRank = "TRAP"
	RankInvalid  OBRank = "INVALID"
)

// OrderBlock is the last opposing candle before an impulsive move. Identity
// fields (ID, Polarity, BarIndex, Time, Top, Bottom, body) never change after
// detection; pipeline stages fill the rest on copies.
type OrderBlock struct {
	ID            string    `json:"id"`
	Polarity      Polarity  `json:"polarity"`
	BarIndex      int       `json:"bar_index"`
	Time          time.Time `json:"time"`
	Top           float64   `json:"top"`
	Bottom        float64   `json:"bottom"`
	BodyHigh      float64   `json:"body_high"`
	BodyLow       float64   `json:"body_low"`
	BodySize      float64   `json:"body_size"`
	MeanThreshold float64   `json:"mean_threshold"`

	HasFVG        bool         `json:"has_fvg"`
	FVGID         string       `json:"fvg_id,omitempty"`
	CausedBOS     bool         `json:"caused_bos"`
	BOSLevel      *float64     `json:"bos_level,omitempty"`
	SweepEvidence *SweepResult `json:"sweep_evidence,omitempty"`

	TimesTested   int     `json:"times_tested"`
	TestedAndHeld bool    `json:"tested_and_held"`
	Class         OBClass `json:"class"`
	Rank          OBRank  `json:"rank"`

	ValidBasic        bool     `json:"valid_basic"`
	ValidPOI          bool     `json:"valid_poi"`
	ZoneName          ZoneName `json:"zone_name,omitempty"`
	KillZoneChecked   bool     `json:"kill_zone_checked"`
	KillZoneResult    bool     `json:"kill_zone_result"`
	PermissionToTrade bool     `json:"permission_to_trade"`
	Reason            Reason   `json:"reason_code"`
}

// OBID builds the stable identifier of an order block at bar.
func OBID(bar int, p Polarity) string {
	return fmt.Sprintf("OB:%d:%s", bar, p)
}

// Contains reports whether price is inside the block's footprint.
func (ob OrderBlock) Contains(price float64) bool {
	return price >= ob.Bottom && price <= ob.Top
}

// Intersects reports whether a candle traded into the block.
func (ob OrderBlock) Intersects(c Candle) bool {
	return c.Low <= ob.Top && c.High >= ob.Bottom
}

// POISet is the finalized output of the POI engine.
type POISet struct {
	OrderBlocks []OrderBlock   `json:"order_blocks"`
	FVGs        []FairValueGap `json:"fvgs"`
	Zone        *Zone          `json:"zone,omitempty"`
}

// Permitted returns the blocks allowed to trade in the given direction.
func (s POISet) Permitted(p Polarity) []OrderBlock {
	var out []OrderBlock
	for _, ob := range s.OrderBlocks {
		if ob.PermissionToTrade && ob.Polarity == p {
			out = append(out, ob)
		}
	}
	return out
}
