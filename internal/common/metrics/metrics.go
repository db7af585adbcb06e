// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkflowActionsAccepted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_actions_accepted_total",
			Help: "Total number of accepted workflow actions",
		},
		[]string{"action"},
	)

	WorkflowActionsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_actions_rejected_total",
			Help: "Total number of rejected workflow actions",
		},
		[]string{"action", "error_code"},
	)

	WorkflowActionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "workflow_action_duration_seconds",
			Help: "Duration of workflow action processing in seconds",
		},
		[]string{"action"},
	)

	NotificationsEnqueued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "workflow_notifications_enqueued_total",
			Help: "Total number of notifications handed to the dispatcher",
		},
	)

	NotificationsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "workflow_notifications_dropped_total",
			Help: "Total number of notifications dropped due to a full queue",
		},
	)
)
