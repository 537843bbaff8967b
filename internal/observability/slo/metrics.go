// Package slo tracks the service level objective for approval notifications:
// subscribers should be notified shortly after an editor approves an article.
package slo

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// NotificationDelayTarget is the longest acceptable time between an
	// approval committing and its notification being marked delivered.
	NotificationDelayTarget = 2 * time.Minute

	// NotificationSuccessSLO is the target share of events delivered within
	// NotificationDelayTarget.
	NotificationSuccessSLO = 0.99
)

var (
	// NotificationDelay is measured from approved_at to the delivered mark,
	// so it includes outbox redelivery.
	NotificationDelay = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "slo_notification_delay_seconds",
			Help:    "Time from article approval to notification delivery, target: 120s",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 900, 3600},
		},
	)

	NotificationsWithinTarget = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "slo_notifications_within_target_total",
			Help: "Notifications delivered within the delay target",
		},
	)

	NotificationsBreached = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "slo_notifications_breached_total",
			Help: "Notifications delivered after the delay target",
		},
	)
)

// ObserveDelivery records one delivered approval event. A delivery stamped
// before the approval (clock skew between hosts) counts as zero delay.
func ObserveDelivery(approvedAt, deliveredAt time.Time) {
	delay := deliveredAt.Sub(approvedAt)
	if delay < 0 {
		delay = 0
	}
	NotificationDelay.Observe(delay.Seconds())
	if delay <= NotificationDelayTarget {
		NotificationsWithinTarget.Inc()
		return
	}
	NotificationsBreached.Inc()
}
