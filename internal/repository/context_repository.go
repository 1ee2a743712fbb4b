package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"SMCTrader/internal/domain/models"
	"SMCTrader/internal/domain/repository"
	pkgkafka "SMCTrader/pkg/kafka"
)

// CHContextStorage keeps evaluated contexts in ClickHouse as JSON payloads
// next to a few indexed columns.
type CHContextStorage struct {
	db    *sql.DB
	table string
}

func NewCHContextStorage(db *sql.DB, table string) *CHContextStorage {
	return &CHContextStorage{db: db, table: table}
}

func (s *CHContextStorage) Save(ctx context.Context, tc *models.TradingContext) error {
	payload, err := json.Marshal(tc)
	if err != nil {
		return fmt.Errorf("marshal context: %w", err)
	}
	entry := uint8(0)
	if tc.EntrySignal {
		entry = 1
	}
	q := fmt.Sprintf("INSERT INTO %s (id, symbol, tf, evaluated_at, bar_time, reason, state, entry_signal, payload) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)", s.table)
	_, err = s.db.ExecContext(ctx, q,
		tc.ID,
		tc.Symbol,
		string(tc.Timeframe),
		tc.EvaluatedAt.UTC(),
		tc.LastClosedTime.UTC(),
		string(tc.Reason),
		string(tc.Narrative.State),
		entry,
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("insert context: %w", err)
	}
	return nil
}

func (s *CHContextStorage) Latest(ctx context.Context, symbol string, tf models.Timeframe) (*models.TradingContext, error) {
	q := fmt.Sprintf("SELECT payload FROM %s WHERE symbol = ? AND tf = ? ORDER BY evaluated_at DESC LIMIT 1", s.table)
	var payload string
	if err := s.db.QueryRowContext(ctx, q, symbol, string(tf)).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("latest context: %w", err)
	}
	var tc models.TradingContext
	if err := json.Unmarshal([]byte(payload), &tc); err != nil {
		return nil, fmt.Errorf("decode context: %w", err)
	}
	return &tc, nil
}

// KafkaContextPublisher publishes contexts keyed by symbol.
type KafkaContextPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaContextPublisher(producer *pkgkafka.Producer, topic string) *KafkaContextPublisher {
	return &KafkaContextPublisher{producer: producer, topic: topic}
}

func (p *KafkaContextPublisher) Publish(ctx context.Context, tc *models.TradingContext) error {
	// the overlay is for screens, not for the trading loop
	msg := *tc
	msg.Chart = nil
	return p.producer.Publish(ctx, p.topic, []byte(tc.Symbol), msg)
}

func (p *KafkaContextPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

var (
	_ repository.ContextStorage   = (*CHContextStorage)(nil)
	_ repository.ContextPublisher = (*KafkaContextPublisher)(nil)
	_ repository.CandleStore      = (*CHCandleStore)(nil)
)
