// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admission_evaluations_total",
			Help: "Total number of per-application evaluations by outcome",
		},
		[]string{"outcome"},
	)

	TransitionsCommitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admission_transitions_committed_total",
			Help: "Total number of committed status transitions",
		},
		[]string{"from", "to"},
	)

	TransitionsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admission_transitions_rejected_total",
			Help: "Total number of transitions rejected by the validator",
		},
		[]string{"check"},
	)

	BatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "admission_batch_duration_seconds",
			Help: "Duration of full batch evaluation runs in seconds",
		},
	)

	BatchesActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "admission_batches_active",
			Help: "Number of batch evaluations currently running",
		},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admission_notifications_sent_total",
			Help: "Total number of notification dispatch attempts by channel and status",
		},
		[]string{"channel", "status"},
	)
)
