package notify

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	notificationDispatchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_dispatched_total",
			Help: "Total number of notifications dispatched",
		},
		[]string{"channel"},
	)

	notificationSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_sent_total",
			Help: "Total number of notifications sent",
		},
		[]string{"channel", "status"}, // status: success|failure
	)

	notificationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notification_duration_seconds",
			Help:    "Notification send duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30},
		},
		[]string{"channel"},
	)

	notificationRecipients = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "notification_email_recipients",
			Help:    "Number of recipients addressed by one approval email",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	// reason: pool_full|circuit_open|disabled|no_recipients|already_delivered
	notificationDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_dropped_total",
			Help: "Total number of dropped or skipped notifications",
		},
		[]string{"channel", "reason"},
	)

	activeNotifications = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "notification_active_goroutines",
			Help: "Number of approval events being processed",
		},
	)
)

// RecordDispatch records a send attempt on channel.
func RecordDispatch(channel string) {
	notificationDispatchedTotal.WithLabelValues(channel).Inc()
}

func RecordSuccess(channel string, duration time.Duration) {
	notificationSentTotal.WithLabelValues(channel, "success").Inc()
	notificationDuration.WithLabelValues(channel).Observe(duration.Seconds())
}

func RecordFailure(channel string, duration time.Duration) {
	notificationSentTotal.WithLabelValues(channel, "failure").Inc()
	notificationDuration.WithLabelValues(channel).Observe(duration.Seconds())
}

func RecordDropped(channel string, reason string) {
	notificationDroppedTotal.WithLabelValues(channel, reason).Inc()
}

func RecordRecipients(n int) {
	notificationRecipients.Observe(float64(n))
}
