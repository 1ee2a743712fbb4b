package models

import "time"

type WickSide string

const (
	WickNone  WickSide = "NONE"
	WickUpper WickSide = "UPPER"
	WickLower WickSide = "LOWER"
)

// SweepResult is the earliest closed bar, after the start bar, whose wick pierced a target.
type SweepResult struct {
	IsSweep  bool      `json:"is_sweep"`
	BarIndex int       `json:"sweep_bar_index"`
	Time     time.Time `json:"sweep_time,omitempty"`
	Price    float64   `json:"sweep_price"`
	Target   float64   `json:"target"`
	Wick     WickSide  `json:"sweep_wick_type"`
	Reason   Reason    `json:"reason_code"`
}

type PeriodSource string

const (
	PeriodPreviousDay PeriodSource = "PREVIOUS_DAY"
	PeriodRolling24h  PeriodSource = "ROLLING_24H"
	PeriodNone        PeriodSource = "NONE"
)

// PeriodLevels is the external liquidity left by the previous trading period.
type PeriodLevels struct {
	High       float64      `json:"high"`
	Low        float64      `json:"low"`
	Source     PeriodSource `json:"source"`
	Degenerate bool         `json:"degenerate"`
	From       time.Time    `json:"from"`
	To         time.Time    `json:"to"`
	EndIndex   int          `json:"end_index"`
}

// Found reports whether any window produced levels.
func (p PeriodLevels) Found() bool { return p.Source != PeriodNone && p.Source != "" }

// EqualCluster groups two or more swing extremes resting at the same price.
type EqualCluster struct {
	Kind       SwingKind `json:"kind"`
	Price      float64   `json:"price"`
	Count      int       `json:"count"`
	FirstIndex int       `json:"first_index"`
	LastIndex  int       `json:"last_index"`
	Span       int       `json:"span"`
}

type LevelKind string

const (
	LevelPDH        LevelKind = "PDH"
	LevelPDL        LevelKind = "PDL"
	LevelSwingHigh  LevelKind = "SWING_HIGH"
	LevelSwingLow   LevelKind = "SWING_LOW"
	LevelEqualHighs LevelKind = "EQUAL_HIGHS"
	LevelEqualLows  LevelKind = "EQUAL_LOWS"
)

// LiquidityLevel is a resting pool of orders at a price.
type LiquidityLevel struct {
	Kind     LevelKind `json:"kind"`
	Price    float64   `json:"price"`
	Index    int       `json:"index"`
	Count    int       `json:"count,omitempty"`
	Distance float64   `json:"distance,omitempty"`
}

// NearestLiquidity partitions levels around a reference price.
type NearestLiquidity struct {
	Reference float64          `json:"reference"`
	Above     []LiquidityLevel `json:"above"`
	Below     []LiquidityLevel `json:"below"`
}

// LiquidityMap is the liquidity section of a trading context.
type LiquidityMap struct {
	Period     PeriodLevels     `json:"period"`
	EqualHighs []EqualCluster   `json:"equal_highs"`
	EqualLows  []EqualCluster   `json:"equal_lows"`
	Nearest    NearestLiquidity `json:"nearest"`
	PDHSweep   SweepResult      `json:"pdh_sweep"`
	PDLSweep   SweepResult      `json:"pdl_sweep"`
	SweptSide  Polarity         `json:"swept_side"`
}
