package models

import "time"

type SessionName string

const (
	SessionAsian    SessionName = "ASIAN"
	SessionLondon   SessionName = "LONDON"
	SessionNewYork  SessionName = "NEW_YORK"
	SessionOverlap  SessionName = "OVERLAP"
	SessionOffHours SessionName = "OFF_HOURS"
)

// SessionInfo describes the trading session active at a point in time.
type SessionInfo struct {
	Name        SessionName `json:"name"`
	Reliability float64     `json:"reliability"`
	Multiplier  float64     `json:"confidence_multiplier"`
	KillZone    bool        `json:"kill_zone"`
	At          time.Time   `json:"at"`
}

type BiasPattern string

const (
	PatternOLHC    BiasPattern = "OLHC"
	PatternOHLC    BiasPattern = "OHLC"
	PatternNeutral BiasPattern = "NEUTRAL"
)

// DailyBias is the directional read of one daily candle.
type DailyBias struct {
	Date          time.Time   `json:"date"`
	Pattern       BiasPattern `json:"pattern"`
	Bias          Polarity    `json:"bias"`
	ClosePosition float64     `json:"close_position"`
}

// BiasReport aggregates the last daily candles into one higher-timeframe bias.
type BiasReport struct {
	Days     []DailyBias `json:"days"`
	Bias     Polarity    `json:"bias"`
	Bullish  int         `json:"bullish"`
	Bearish  int         `json:"bearish"`
	Previous Polarity    `json:"previous,omitempty"`
	Flipped  bool        `json:"flipped"`
}

type Confidence string

const (
	ConfidenceLow      Confidence = "LOW"
	ConfidenceMedium   Confidence = "MEDIUM"
	ConfidenceHigh     Confidence = "HIGH"
	ConfidenceVeryHigh Confidence = "VERY_HIGH"
)

// InducementWick is a bar that wicked through a liquidity level and closed back inside.
type InducementWick struct {
	Index      int         `json:"index"`
	Time       time.Time   `json:"time"`
	Level      LevelKind   `json:"level"`
	LevelPrice float64     `json:"level_price"`
	Polarity   Polarity    `json:"polarity"`
	WickRatio  float64     `json:"wick_ratio"`
	Base       Confidence  `json:"base_confidence"`
	Score      float64     `json:"score"`
	Confidence Confidence  `json:"confidence"`
	Session    SessionName `json:"session"`
}

// TimeframeRead is one timeframe's directional vote.
type TimeframeRead struct {
	Timeframe Timeframe      `json:"timeframe"`
	Bias      Polarity       `json:"bias"`
	Label     StructureLabel `json:"label"`
}

// Alignment is the multi-timeframe agreement with a proposed direction.
type Alignment struct {
	Direction  Polarity `json:"direction"`
	Score      float64  `json:"score"`
	Multiplier float64  `json:"multiplier"`
	Blocked    bool     `json:"blocked"`
	Reason     Reason   `json:"reason_code"`
	Conflicts  []string `json:"conflicts,omitempty"`
}
