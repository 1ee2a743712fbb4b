package usecase

import (
	"context"
	"fmt"

	"SMCTrader/internal/domain/models"
	"SMCTrader/internal/domain/service"
	"SMCTrader/internal/services/ideas"
	"SMCTrader/pkg/logger"
)

// IdeasUseCase lets operators and the trading loop report idea outcomes.
type IdeasUseCase struct {
	memory   service.IdeaMemory
	sessions *Sessions
	step     float64
	tf, htf  models.Timeframe
	l        *logger.Logger
}

func NewIdeasUseCase(memory service.IdeaMemory, sessions *Sessions, step float64, l *logger.Logger) *IdeasUseCase {
	if l == nil {
		l = logger.NewNop()
	}
	def := DefaultEngineConfig()
	return &IdeasUseCase{memory: memory, sessions: sessions, step: step, tf: def.Timeframe, htf: def.HTFTimeframe, l: l}
}

// SetSessionPair sets the timeframe pair whose narrative Reset always clears,
// even when it has not been loaded since the last restart.
func (uc *IdeasUseCase) SetSessionPair(tf, htf models.Timeframe) {
	uc.tf, uc.htf = tf, htf
}

type MarkIdeaParams struct {
	Symbol    string
	Direction models.Polarity
	Zone      models.ZoneName
	Price     float64
	Session   models.SessionName
}

// Key returns the memory key the evaluator would derive for the same idea.
func (uc *IdeasUseCase) Key(p MarkIdeaParams) string {
	return ideas.Key(models.IdeaKey{
		Direction: p.Direction,
		Zone:      p.Zone,
		Price:     p.Price,
		Session:   p.Session,
	}, uc.step)
}

// MarkFailed blocks the idea until it expires.
func (uc *IdeasUseCase) MarkFailed(ctx context.Context, p MarkIdeaParams) (string, error) {
	if p.Symbol == "" {
		return "", fmt.Errorf("symbol required")
	}
	key := uc.Key(p)
	if err := uc.memory.MarkFailed(ctx, p.Symbol, key); err != nil {
		return "", fmt.Errorf("mark idea failed: %w", err)
	}
	uc.l.Info("idea marked failed", logger.String("symbol", p.Symbol), logger.String("key", key))
	return key, nil
}

func (uc *IdeasUseCase) MarkActive(ctx context.Context, p MarkIdeaParams) (string, error) {
	if p.Symbol == "" {
		return "", fmt.Errorf("symbol required")
	}
	key := uc.Key(p)
	if err := uc.memory.MarkActive(ctx, p.Symbol, key); err != nil {
		return "", fmt.Errorf("mark idea active: %w", err)
	}
	return key, nil
}

// Failed lists ideas still cooling down.
func (uc *IdeasUseCase) Failed(ctx context.Context, symbol string) ([]models.Idea, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	out, err := uc.memory.Failed(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("list failed ideas: %w", err)
	}
	if out == nil {
		out = []models.Idea{}
	}
	return out, nil
}

// Reset clears idea memory for symbol and sends its narratives back to IDLE. The
// returned snapshot is the one of the configured timeframe pair.
func (uc *IdeasUseCase) Reset(ctx context.Context, symbol, reason string) (models.NarrativeSnapshot, error) {
	if symbol == "" {
		return models.NarrativeSnapshot{}, fmt.Errorf("symbol required")
	}
	if err := uc.memory.ResetAll(ctx, symbol, reason); err != nil {
		return models.NarrativeSnapshot{}, fmt.Errorf("reset ideas: %w", err)
	}
	uc.l.Info("ideas reset", logger.String("symbol", symbol), logger.String("reason", reason))
	if uc.sessions == nil {
		return models.NarrativeSnapshot{}, nil
	}
	key := SessionKey(symbol, uc.tf, uc.htf)
	return uc.sessions.ResetSymbol(ctx, symbol, reason, key)[key], nil
}
