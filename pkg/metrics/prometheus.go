package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	messagesSent   *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	lastPrice      *prometheus.GaugeVec
	latency        *prometheus.HistogramVec
	evaluations    *prometheus.CounterVec
	narrativeStage *prometheus.GaugeVec
	entrySignals   *prometheus.CounterVec
}

// New creates a recorder registered on the default registry.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a recorder registered on reg.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		messagesSent: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smctrader_messages_sent_total",
				Help: "Total number of messages sent to backend",
			},
			[]string{"backend", "symbol"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smctrader_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "smctrader_last_price",
				Help: "Last closed price for a symbol",
			},
			[]string{"symbol"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "smctrader_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		evaluations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smctrader_evaluations_total",
				Help: "Context evaluations by final reason code",
			},
			[]string{"symbol", "timeframe", "reason"},
		),
		narrativeStage: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "smctrader_narrative_stage",
				Help: "Current narrative stage index (0 = IDLE, 6 = ENTRY_ALLOWED)",
			},
			[]string{"symbol"},
		),
		entrySignals: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smctrader_entry_signals_total",
				Help: "Entry signals emitted",
			},
			[]string{"symbol", "direction"},
		),
	}
}

// RecordMessageSent records a message sent to a backend.
func (r *Recorder) RecordMessageSent(backend, symbol string) {
	r.messagesSent.WithLabelValues(backend, symbol).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordEvaluation records one evaluation outcome.
func (r *Recorder) RecordEvaluation(symbol, timeframe, reason string, stage int) {
	r.evaluations.WithLabelValues(symbol, timeframe, reason).Inc()
	r.narrativeStage.WithLabelValues(symbol).Set(float64(stage))
}

// RecordEntrySignal counts an emitted entry signal.
func (r *Recorder) RecordEntrySignal(symbol, direction string) {
	r.entrySignals.WithLabelValues(symbol, direction).Inc()
}
