package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sweepRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_sweep_runs_total",
		Help: "Total number of outbox sweep runs by status (success/failure)",
	}, []string{"status"})

	sweepDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "outbox_sweep_duration_seconds",
		Help:    "Duration of outbox sweep runs in seconds",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 30},
	})

	sweepLastSuccessTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "outbox_sweep_last_success_timestamp",
		Help: "Unix timestamp of the last successful outbox sweep",
	})
)

func recordRun(status string, seconds float64) {
	sweepRunsTotal.WithLabelValues(status).Inc()
	sweepDurationSeconds.Observe(seconds)
	if status == "success" {
		sweepLastSuccessTimestamp.SetToCurrentTime()
	}
}
