package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	APILatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "smctrader",
			Subsystem: "api",
			Name:      "latency_seconds",
			Help:      "Latency of context API endpoints",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	APIErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "smctrader",
			Subsystem: "api",
			Name:      "errors_total",
			Help:      "Errors by context API endpoint",
		},
		[]string{"endpoint", "code"},
	)

	APIThrottled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "smctrader",
			Subsystem: "api",
			Name:      "throttled_total",
			Help:      "Requests rejected by the rate limiter",
		},
	)
)

// Register registers the API collectors once on reg, or the default registerer when nil.
func Register(reg prometheus.Registerer) {
	once.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		reg.MustRegister(APILatency, APIErrors, APIThrottled)
	})
}
