package models

// Requests for context HTTP endpoints.

type ContextRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	TF     string `query:"tf" json:"tf" default:"5m" validate:"oneof=1m 5m 15m 1h 4h"`
	HTF    string `query:"htf" json:"htf" default:"1h" validate:"oneof=15m 1h 4h 1d"`
	N      int    `query:"n" json:"n" default:"500" validate:"gte=5,lte=5000"`
	Chart  bool   `query:"chart" json:"chart"`
}

// EvaluateRequest carries caller-supplied candles instead of reading storage.
type EvaluateRequest struct {
	Symbol     string   `json:"symbol" validate:"required"`
	TF         string   `json:"tf" default:"5m" validate:"oneof=1m 5m 15m 1h 4h"`
	HTF        string   `json:"htf" default:"1h" validate:"oneof=15m 1h 4h 1d"`
	Candles    []Candle `json:"candles" validate:"required,min=5,max=10000"`
	HTFCandles []Candle `json:"htf_candles"`
	Chart      bool     `json:"chart"`
	Stateless  bool     `json:"stateless"`
}

type CandlesRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	TF     string `query:"tf" json:"tf" default:"5m" validate:"oneof=1m 5m 15m 1h 4h 1d"`
	N      int    `query:"n" json:"n" default:"200" validate:"gte=1,lte=5000"`
	// From and To select a range instead of the latest N; RFC3339 or unix seconds.
	From string `query:"from" json:"from"`
	To   string `query:"to" json:"to"`
}

type IdeaRequest struct {
	Symbol    string  `json:"symbol" validate:"required"`
	Direction string  `json:"direction" validate:"required,oneof=BULLISH BEARISH"`
	Zone      string  `json:"zone" validate:"required,oneof=PREMIUM DISCOUNT EQUILIBRIUM"`
	Price     float64 `json:"price" validate:"gt=0"`
	Session   string  `json:"session" validate:"omitempty,oneof=ASIAN LONDON NEW_YORK OVERLAP OFF_HOURS"`
}

type IdeaResetRequest struct {
	Symbol string `json:"symbol" validate:"required"`
	Reason string `json:"reason" default:"manual"`
}
