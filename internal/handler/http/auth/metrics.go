package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// authRequestsTotal counts token requests by role and result.
	authRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_requests_total",
			Help: "Total authentication requests by role and result",
		},
		[]string{"role", "result"}, // result: success | failure
	)

	// authDuration tracks authentication duration by role.
	authDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "auth_duration_seconds",
			Help:    "Authentication duration by role",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1.0},
		},
		[]string{"role"},
	)

	// tokenRejectionsTotal counts bearer tokens refused by the middleware.
	tokenRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_token_rejections_total",
			Help: "Bearer tokens rejected by reason",
		},
		[]string{"reason"},
	)

	signupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_signups_total",
			Help: "Sign-up attempts by requested role and result",
		},
		[]string{"role", "result"},
	)
)

// RecordAuthRequest records an authentication request.
func RecordAuthRequest(role, result string) {
	authRequestsTotal.WithLabelValues(role, result).Inc()
}

// RecordAuthDuration records authentication duration.
func RecordAuthDuration(role string, durationSeconds float64) {
	authDuration.WithLabelValues(role).Observe(durationSeconds)
}

func RecordTokenRejected(reason string) {
	tokenRejectionsTotal.WithLabelValues(reason).Inc()
}

// RecordSignup records a sign-up attempt. Unknown roles are folded into
// "invalid" to keep the label set bounded.
func RecordSignup(role, result string) {
	switch role {
	case "reader", "editor", "journalist":
	default:
		role = "invalid"
	}
	signupsTotal.WithLabelValues(role, result).Inc()
}
