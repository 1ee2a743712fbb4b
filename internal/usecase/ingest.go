package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"SMCTrader/internal/domain/models"
	domrepo "SMCTrader/internal/domain/repository"
	pkgkafka "SMCTrader/pkg/kafka"
	"SMCTrader/pkg/logger"
)

// CandleIngestor stores a closed candle and, for the execution timeframe,
// evaluates the symbol and fans the context out to storage and the bus.
type CandleIngestor struct {
	writer    domrepo.CandleWriter
	eval      *ContextEvaluator
	storage   domrepo.ContextStorage
	publisher domrepo.ContextPublisher
	metrics   domrepo.Metrics
	l         *logger.Logger
}

// NewCandleIngestor wires the ingestor. storage and publisher may be nil.
func NewCandleIngestor(
	writer domrepo.CandleWriter,
	eval *ContextEvaluator,
	storage domrepo.ContextStorage,
	publisher domrepo.ContextPublisher,
	metrics domrepo.Metrics,
	l *logger.Logger,
) *CandleIngestor {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if l == nil {
		l = logger.NewNop()
	}
	return &CandleIngestor{writer: writer, eval: eval, storage: storage, publisher: publisher, metrics: metrics, l: l}
}

// Ingest returns the evaluated context, or nil when the candle only needed storing.
func (i *CandleIngestor) Ingest(ctx context.Context, c *models.Candle) (*models.TradingContext, error) {
	if c == nil {
		return nil, fmt.Errorf("candle is nil")
	}
	if !c.IsClosed() || !c.Valid() {
		i.metrics.RecordError("ingest_invalid")
		return nil, fmt.Errorf("candle %s %s at %s is not a closed, valid bar", c.Symbol, c.Timeframe, c.Time)
	}

	start := time.Now()
	if i.writer != nil {
		if err := i.writer.Store(ctx, c); err != nil {
			i.metrics.RecordError("ingest_store")
			return nil, fmt.Errorf("store candle: %w", err)
		}
		i.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
		i.metrics.RecordMessageSent("clickhouse", c.Symbol)
	}
	i.metrics.RecordLastPrice(c.Symbol, c.Close)

	if i.eval == nil || c.Timeframe != i.eval.cfg.Timeframe {
		return nil, nil
	}

	tc, err := i.eval.Evaluate(ctx, EvaluateParams{Symbol: c.Symbol, Timeframe: c.Timeframe})
	if err != nil {
		i.metrics.RecordError("ingest_evaluate")
		return nil, fmt.Errorf("evaluate %s: %w", c.Symbol, err)
	}

	if i.storage != nil {
		if err := i.storage.Save(ctx, tc); err != nil {
			i.metrics.RecordError("context_store")
			i.l.Warn("context snapshot not saved", logger.String("symbol", c.Symbol), logger.Error(err))
		}
	}
	if i.publisher != nil {
		if err := i.publisher.Publish(ctx, tc); err != nil {
			i.metrics.RecordError("context_publish")
			return tc, fmt.Errorf("publish context: %w", err)
		}
		i.metrics.RecordMessageSent("kafka_context", c.Symbol)
	}
	i.metrics.RecordLatency("ingest_seconds", time.Since(start).Seconds())
	return tc, nil
}

// KafkaCandlesHandler consumes closed candles from Kafka and ingests them.
type KafkaCandlesHandler struct {
	topic    string
	ingestor *CandleIngestor
	metrics  domrepo.Metrics
}

func NewKafkaCandlesHandler(topic string, ingestor *CandleIngestor, metrics domrepo.Metrics) *KafkaCandlesHandler {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &KafkaCandlesHandler{topic: topic, ingestor: ingestor, metrics: metrics}
}

func (h *KafkaCandlesHandler) Topic() string { return h.topic }

// incoming message schema: {symbol, tf, t, o, h, l, c, v}
func (h *KafkaCandlesHandler) Handle(ctx context.Context, b []byte) error {
	c, err := DecodeCandleMessage(b)
	if err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	// E2E latency from bar close to now (approx)
	h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(c.Time.Add(c.Timeframe.Duration())).Seconds())

	_, err = h.ingestor.Ingest(ctx, c)
	return err
}

// DecodeCandleMessage parses a candles topic payload. t may be seconds or milliseconds.
func DecodeCandleMessage(b []byte) (*models.Candle, error) {
	var m struct {
		Symbol string  `json:"symbol"`
		TF     string  `json:"tf"`
		T      int64   `json:"t"`
		O      float64 `json:"o"`
		H      float64 `json:"h"`
		L      float64 `json:"l"`
		C      float64 `json:"c"`
		V      float64 `json:"v"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decode candle: %w", err)
	}
	if m.Symbol == "" {
		return nil, fmt.Errorf("decode candle: symbol missing")
	}
	tf := models.Timeframe(strings.ToLower(m.TF))
	if tf.Duration() == 0 {
		return nil, fmt.Errorf("decode candle: unknown timeframe %q", m.TF)
	}
	ts := time.UnixMilli(m.T)
	if m.T < 1e11 { // seconds
		ts = time.Unix(m.T, 0)
	}
	return &models.Candle{
		Time:      ts.UTC(),
		Symbol:    strings.ToUpper(m.Symbol),
		Timeframe: tf,
		Open:      m.O,
		High:      m.H,
		Low:       m.L,
		Close:     m.C,
		Volume:    m.V,
	}, nil
}

var _ pkgkafka.MessageHandler = (*KafkaCandlesHandler)(nil)
