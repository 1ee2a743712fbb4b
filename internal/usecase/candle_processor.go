package usecase

import (
	"context"
	"fmt"
	"time"

	"SMCTrader/internal/domain/models"
	drepo "SMCTrader/internal/domain/repository"
)

const (
	BackendKafka      = "kafka"
	BackendClickHouse = "clickhouse"
)

// CandleProcessor routes closed feed candles to the configured backend: the
// candles topic, or straight into storage and evaluation.
type CandleProcessor struct {
	pub      drepo.CandlePublisher
	ingestor *CandleIngestor
	metrics  drepo.Metrics
	backend  string
}

// NewCandleProcessor creates a new CandleProcessor instance.
func NewCandleProcessor(
	pub drepo.CandlePublisher,
	ingestor *CandleIngestor,
	metrics drepo.Metrics,
	backend string,
) *CandleProcessor {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &CandleProcessor{
		pub:      pub,
		ingestor: ingestor,
		metrics:  metrics,
		backend:  backend,
	}
}

// Process processes a single candle and routes it to the configured backend.
func (p *CandleProcessor) Process(ctx context.Context, c *models.Candle) error {
	if c == nil {
		return fmt.Errorf("candle is nil")
	}

	start := time.Now()
	var err error

	switch p.backend {
	case BackendKafka:
		err = p.pub.Publish(ctx, c)
	case BackendClickHouse:
		_, err = p.ingestor.Ingest(ctx, c)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process")
		return fmt.Errorf("process candle: %w", err)
	}

	p.metrics.RecordMessageSent(p.backend, c.Symbol)
	p.metrics.RecordLatency("process", time.Since(start).Seconds())

	return nil
}

// ProcessBatch processes multiple candles in a batch.
func (p *CandleProcessor) ProcessBatch(ctx context.Context, candles []*models.Candle) error {
	if len(candles) == 0 {
		return nil
	}

	start := time.Now()
	var err error

	switch p.backend {
	case BackendKafka:
		err = p.pub.PublishBatch(ctx, candles)
	case BackendClickHouse:
		for _, c := range candles {
			if _, err = p.ingestor.Ingest(ctx, c); err != nil {
				break
			}
		}
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process_batch")
		return fmt.Errorf("process batch: %w", err)
	}

	for _, c := range candles {
		p.metrics.RecordMessageSent(p.backend, c.Symbol)
	}
	p.metrics.RecordLatency("process_batch", time.Since(start).Seconds())

	return nil
}

// Close closes underlying resources if available.
func (p *CandleProcessor) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
	if p.ingestor != nil && p.ingestor.writer != nil {
		_ = p.ingestor.writer.Close()
	}
}
