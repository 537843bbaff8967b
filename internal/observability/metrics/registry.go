// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Portal metrics track the authoring, approval and reading workflow.
var (
	// ArticlesSubmittedTotal counts articles submitted by journalists
	ArticlesSubmittedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "portal_articles_submitted_total",
			Help: "Total number of articles submitted for approval",
		},
	)

	// ArticlesApprovedTotal counts approve calls by result (approved, already_approved)
	ArticlesApprovedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_article_approvals_total",
			Help: "Total number of article approval calls by result",
		},
		[]string{"result"},
	)

	// VisibilityResolutionsTotal counts visibility resolutions by viewer path
	VisibilityResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_visibility_resolutions_total",
			Help: "Total number of visible-article resolutions by viewer path",
		},
		[]string{"path"},
	)

	// VisibleArticles observes how many articles a resolution returned
	VisibleArticles = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portal_visible_articles",
			Help:    "Number of articles returned by a visibility resolution",
			Buckets: prometheus.ExponentialBuckets(1, 4, 7),
		},
		[]string{"path"},
	)

	// RoleTransitionsTotal counts persisted role changes
	RoleTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_role_transitions_total",
			Help: "Total number of principal role transitions",
		},
		[]string{"from", "to"},
	)

	// SubscriptionChangesTotal counts subscribe/unsubscribe calls by target kind
	SubscriptionChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_subscription_changes_total",
			Help: "Total number of subscription changes",
		},
		[]string{"kind", "action"},
	)

	// OutboxRedeliveredTotal counts approval events re-published by the sweeper
	OutboxRedeliveredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "portal_outbox_redelivered_total",
			Help: "Total number of undelivered approval events re-published",
		},
	)

	// OutboxBacklog is the number of undelivered events seen by the last sweep
	OutboxBacklog = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "portal_outbox_backlog",
			Help: "Undelivered approval events found by the last sweep",
		},
	)
)

// Database metrics track database performance
var (
	// DBQueryDuration measures database query duration
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)
)

// RecordOperationDuration records the duration of a named operation
func RecordOperationDuration(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
