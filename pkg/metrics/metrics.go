// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "colisflow_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "colisflow_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	MovementsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "colisflow_cash_movements_recorded_total",
			Help: "Ledger movements recorded by category.",
		},
		[]string{"category"},
	)

	WithdrawalsRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "colisflow_cash_withdrawals_rejected_total",
			Help: "Disbursements refused for insufficient balance.",
		},
	)

	RegisterBalance = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "colisflow_cash_register_balance",
			Help: "Computed register balance at the last alert scan.",
		},
		[]string{"register"},
	)

	RegistersBelowAlert = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "colisflow_cash_registers_below_alert",
			Help: "Registers whose balance is below their minimum alert threshold.",
		},
	)

	AuditEntries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "colisflow_audit_entries_total",
			Help: "Audit entries by outcome: written, dropped, failed.",
		},
		[]string{"result"},
	)

	AuditQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "colisflow_audit_queue_length",
			Help: "Audit entries waiting to be written.",
		},
	)
)

// RecordHTTPRequest observes one served request.
func RecordHTTPRequest(method, route, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordMovement counts a committed ledger movement.
func RecordMovement(category string) {
	MovementsRecorded.WithLabelValues(category).Inc()
}

// RecordAudit counts an audit entry result.
func RecordAudit(result string) {
	AuditEntries.WithLabelValues(result).Inc()
}
