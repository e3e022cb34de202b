// Package metric holds the Prometheus metrics okan exports on /metrics.
package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Check metrics
var (
	ChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "okan_checks_total",
			Help: "Total number of generated check lists.",
		},
		[]string{"result"}, // result: "blocked", "confirm", "pass", "error"
	)

	CheckDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "okan_check_duration_seconds",
			Help:    "Time taken to parse a message and generate its check list.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	AlertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "okan_alerts_total",
			Help: "Total number of alerts raised.",
		},
		[]string{"importance"}, // importance: "important", "normal"
	)

	RulesLoadErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "okan_rules_load_errors_total",
			Help: "Total number of failed rule table loads.",
		},
	)
)

// Storage metrics
var (
	RecordsStoredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "okan_records_stored_total",
			Help: "Total number of audit records stored.",
		},
	)

	RetentionDeletesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "okan_retention_deletes_total",
			Help: "Total number of audit records deleted by the retention scanner.",
		},
	)

	RetainedRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "okan_retention_retained_records",
			Help: "Audit records retained by the last retention scan.",
		},
	)

	RetentionPeriod = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "okan_retention_period_seconds",
			Help: "Configured audit record retention period.",
		},
	)

	RetentionScanCompleted = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "okan_retention_scan_completed_timestamp_seconds",
			Help: "Unix time the last retention scan completed.",
		},
	)
)

// Web metrics
var (
	MonitorClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "okan_monitor_clients",
			Help: "Connected check monitor websocket clients.",
		},
	)
)

// Handler serves the registered metrics in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
