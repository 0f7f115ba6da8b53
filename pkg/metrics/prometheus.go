package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	signalsDelivered *prometheus.CounterVec
	rejections       *prometheus.CounterVec
	activeTickers    prometheus.Gauge
	latency          *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		signalsDelivered: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signaldesk_signals_delivered_total",
				Help: "Total number of signals delivered",
			},
			[]string{"market", "pair"},
		),
		rejections: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signaldesk_request_rejections_total",
				Help: "Signal requests rejected by a precondition guard",
			},
			[]string{"reason"},
		),
		activeTickers: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "signaldesk_active_cooldown_tickers",
				Help: "Currently running cooldown display tickers",
			},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "signaldesk_operation_duration_seconds",
				Help:    "Duration of session operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordSignalDelivered counts a delivered signal.
func (r *Recorder) RecordSignalDelivered(market, pair string) {
	r.signalsDelivered.WithLabelValues(market, pair).Inc()
}

// RecordRejection counts a rejected signal request by guard reason.
func (r *Recorder) RecordRejection(reason string) {
	r.rejections.WithLabelValues(reason).Inc()
}

// SetActiveTickers records the number of running cooldown tickers.
func (r *Recorder) SetActiveTickers(n int) {
	r.activeTickers.Set(float64(n))
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
