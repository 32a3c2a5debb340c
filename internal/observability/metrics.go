package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics of the service.
type Metrics struct {
	Operations      *prometheus.CounterVec
	DepositedAmount prometheus.Counter
	ConvertedAmount *prometheus.CounterVec
	PendingAmount   *prometheus.GaugeVec
	ScheduledTicks  *prometheus.CounterVec
	MarketCondition *prometheus.GaugeVec

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	RecorderErrors *prometheus.CounterVec
}

// NewMetrics creates all metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Operations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "crosspay_routing_operations_total",
			Help: "Routing operations applied, by type and trigger.",
		}, []string{"type", "trigger"}),
		DepositedAmount: f.NewCounter(prometheus.CounterOpts{
			Name: "crosspay_deposited_amount_total",
			Help: "Sum of accepted salary deposits.",
		}),
		ConvertedAmount: f.NewCounterVec(prometheus.CounterOpts{
			Name: "crosspay_converted_amount_total",
			Help: "Sum of pending funds converted, by operation type.",
		}, []string{"type"}),
		PendingAmount: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "crosspay_pending_amount",
			Help: "Pending balance per user after the last operation.",
		}, []string{"user"}),
		ScheduledTicks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "crosspay_scheduled_ticks_total",
			Help: "Scheduled optimisation runs, by market condition.",
		}, []string{"condition"}),
		MarketCondition: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "crosspay_market_condition",
			Help: "1 for the condition reported by the last classification, 0 otherwise.",
		}, []string{"condition"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "crosspay_http_requests_total",
			Help: "HTTP requests, by route and status.",
		}, []string{"route", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "crosspay_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		RecorderErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "crosspay_recorder_errors_total",
			Help: "Failed recorder writes, by event kind.",
		}, []string{"kind"}),
	}
}

// SetCondition flips the market condition gauge to condition.
func (m *Metrics) SetCondition(condition string) {
	for _, c := range []string{"GOOD", "OK", "BAD"} {
		v := 0.0
		if c == condition {
			v = 1
		}
		m.MarketCondition.WithLabelValues(c).Set(v)
	}
}
