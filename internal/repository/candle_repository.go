package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"SMCTrader/internal/domain/models"
	"SMCTrader/internal/domain/repository"
	pkgkafka "SMCTrader/pkg/kafka"
)

// ClickHouseCandleWriter implements CandleWriter for ClickHouse.
type ClickHouseCandleWriter struct {
	db    *sql.DB
	table string
}

// NewClickHouseCandleWriter creates ClickHouse candle storage.
func NewClickHouseCandleWriter(db *sql.DB, table string) repository.CandleWriter {
	return &ClickHouseCandleWriter{db: db, table: table}
}

func (s *ClickHouseCandleWriter) Init(ctx context.Context) error {
	return nil // Schema init in pkg
}

func (s *ClickHouseCandleWriter) Store(ctx context.Context, c *models.Candle) error {
	return s.StoreBatch(ctx, []*models.Candle{c})
}

// StoreBatch inserts closed candles; forming bars are dropped. Re-inserting a bar
// replaces it thanks to the ReplacingMergeTree key.
func (s *ClickHouseCandleWriter) StoreBatch(ctx context.Context, candles []*models.Candle) error {
	if len(candles) == 0 {
		return nil
	}
	// Chunk size tuned to 2000 rows per batch.
	const chunkSize = 2000
	for start := 0; start < len(candles); start += chunkSize {
		end := min(start+chunkSize, len(candles))

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*8)
		for _, c := range candles[start:end] {
			if c == nil || c.Symbol == "" || c.Time.IsZero() || !c.IsClosed() {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				c.Symbol,
				string(c.Timeframe),
				c.Time.UTC(),
				c.Open,
				c.High,
				c.Low,
				c.Close,
				c.Volume,
			)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (symbol, tf, ts, open, high, low, close, volume) VALUES %s", s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("insert candles: %w", err)
		}
	}
	return nil
}

func (s *ClickHouseCandleWriter) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseCandleWriter) Close() error {
	return nil // Managed by pkg
}

// CandleMessage is the wire form of a closed candle on the candles topic.
type CandleMessage struct {
	Symbol string  `json:"symbol"`
	TF     string  `json:"tf"`
	T      int64   `json:"t"` // unix milliseconds of bar open
	O      float64 `json:"o"`
	H      float64 `json:"h"`
	L      float64 `json:"l"`
	C      float64 `json:"c"`
	V      float64 `json:"v"`
}

func NewCandleMessage(c *models.Candle) CandleMessage {
	return CandleMessage{
		Symbol: c.Symbol,
		TF:     string(c.Timeframe),
		T:      c.Time.UnixMilli(),
		O:      c.Open,
		H:      c.High,
		L:      c.Low,
		C:      c.Close,
		V:      c.Volume,
	}
}

// KafkaCandlePublisher implements CandlePublisher for Kafka, keyed by symbol so
// a symbol's candles stay ordered within one partition.
type KafkaCandlePublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaCandlePublisher creates Kafka publisher.
func NewKafkaCandlePublisher(producer *pkgkafka.Producer, topic string) repository.CandlePublisher {
	return &KafkaCandlePublisher{producer: producer, topic: topic}
}

func (p *KafkaCandlePublisher) Publish(ctx context.Context, c *models.Candle) error {
	return p.producer.Publish(ctx, p.topic, []byte(c.Symbol), NewCandleMessage(c))
}

func (p *KafkaCandlePublisher) PublishBatch(ctx context.Context, candles []*models.Candle) error {
	if len(candles) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(candles))
	for i, c := range candles {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(c.Symbol),
			Value: NewCandleMessage(c),
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaCandlePublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
