package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gojenga",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gojenga",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	transfers = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gojenga",
			Subsystem: "ledger",
			Name:      "transfers_total",
			Help:      "Transfers by outcome.",
		},
		[]string{"outcome"},
	)

	compensations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gojenga",
			Subsystem: "ledger",
			Name:      "compensations_total",
			Help:      "Compensating sender writes by outcome.",
		},
		[]string{"outcome"},
	)

	balanceChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gojenga",
			Subsystem: "ledger",
			Name:      "balance_changes_total",
			Help:      "Single-account balance mutations by operation.",
		},
		[]string{"operation"},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		transfers,
		compensations,
		balanceChanges,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequests.WithLabelValues(method, path, status).Inc()
	httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordTransfer counts a transfer; outcome is "completed", "failed" or "rejected".
func RecordTransfer(outcome string) {
	transfers.WithLabelValues(outcome).Inc()
}

// RecordCompensation counts a compensating write; outcome is "succeeded" or "failed".
func RecordCompensation(outcome string) {
	compensations.WithLabelValues(outcome).Inc()
}

func RecordBalanceChange(operation string) {
	balanceChanges.WithLabelValues(operation).Inc()
}
