package aipsdk

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the collectors updated by a Client.
type Metrics struct {
	RequestsTotal     *prometheus.CounterVec   // API calls by operation and result
	RequestLatency    *prometheus.HistogramVec // API call latency by operation
	TokenFetchesTotal *prometheus.CounterVec   // token grants by result
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aipface_requests_total",
				Help: "Total number of face API requests",
			},
			[]string{"operation", "result"}, // success/api_error/failure
		),
		RequestLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aipface_request_duration_seconds",
				Help:    "Latency of face API requests in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"operation"},
		),
		TokenFetchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aipface_token_fetches_total",
				Help: "Total number of access token grants",
			},
			[]string{"result"},
		),
	}
}
