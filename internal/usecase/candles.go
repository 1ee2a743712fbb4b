package usecase

import (
	"context"
	"fmt"
	"time"

	"SMCTrader/internal/domain/models"
	domrepo "SMCTrader/internal/domain/repository"
	xutil "SMCTrader/pkg/util"
)

// CandlesUseCase provides business logic for retrieving candles.
type CandlesUseCase struct {
	store domrepo.CandleStore
}

func NewCandlesUseCase(store domrepo.CandleStore) *CandlesUseCase {
	return &CandlesUseCase{store: store}
}

type GetCandlesParams struct {
	Symbol    string
	From      time.Time
	To        time.Time
	Timeframe models.Timeframe
	Limit     int
}

type GetCandlesResult struct {
	Symbol    string          `json:"symbol"`
	Timeframe string          `json:"tf"`
	From      time.Time       `json:"from,omitempty"`
	To        time.Time       `json:"to,omitempty"`
	Count     int             `json:"count"`
	Candles   []models.Candle `json:"candles"`
}

func (uc *CandlesUseCase) GetCandles(ctx context.Context, p GetCandlesParams) (*GetCandlesResult, error) {
	if p.Symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	if p.From.After(p.To) {
		return nil, fmt.Errorf("from must be <= to")
	}
	p.Limit = clampLimit(p.Limit, 10000, 50000)
	p.From, p.To = xutil.AlignFromTo(p.From, p.To, p.Timeframe.Duration())

	candles, err := uc.store.GetCandles(ctx, p.Symbol, p.Timeframe, p.From, p.To)
	if err != nil {
		return nil, fmt.Errorf("get candles: %w", err)
	}
	if len(candles) > p.Limit {
		candles = candles[:p.Limit]
	}

	return &GetCandlesResult{
		Symbol:    p.Symbol,
		Timeframe: string(p.Timeframe),
		From:      p.From,
		To:        p.To,
		Count:     len(candles),
		Candles:   candles,
	}, nil
}

// GetLatest returns the last n candles of a symbol, oldest first.
func (uc *CandlesUseCase) GetLatest(ctx context.Context, symbol string, tf models.Timeframe, n int) (*GetCandlesResult, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	n = clampLimit(n, 200, 5000)
	candles, err := uc.store.GetLatestNCandles(ctx, symbol, tf, n)
	if err != nil {
		return nil, fmt.Errorf("get latest candles: %w", err)
	}
	res := &GetCandlesResult{Symbol: symbol, Timeframe: string(tf), Count: len(candles), Candles: candles}
	if len(candles) > 0 {
		res.From = candles[0].Time
		res.To = candles[len(candles)-1].Time
	}
	return res, nil
}

func clampLimit(n, def, max int) int {
	if n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
