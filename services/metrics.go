package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	remindersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "task_manager_reminders_total",
			Help: "Reminder deliveries by type and outcome",
		},
		[]string{"type", "outcome"},
	)

	reminderPassDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "task_manager_reminder_pass_duration_seconds",
			Help:    "Duration of one reminder scan pass",
			Buckets: prometheus.DefBuckets,
		},
	)

	rolloversTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "task_manager_task_rollovers_total",
			Help: "Recurring tasks advanced to their next occurrence",
		},
	)
)

const (
	outcomeSent      = "sent"
	outcomeSkipped   = "skipped"
	outcomeDuplicate = "duplicate"
	outcomeFailed    = "failed"
)
