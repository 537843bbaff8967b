// Package http wires the portal's JSON API: middleware, health and metrics
// endpoints, and the route table.
package http

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"newsportal/internal/handler/http/respond"
	"newsportal/internal/usecase/notify"
)

// HealthResponse represents the JSON response for health check endpoints.
type HealthResponse struct {
	Status    string                 `json:"status"`    // "healthy", "degraded" or "unhealthy"
	Timestamp string                 `json:"timestamp"` // ISO 8601 format
	Checks    map[string]CheckStatus `json:"checks"`
	Version   string                 `json:"version"`
}

// CheckStatus represents the status of a single health check.
type CheckStatus struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// DB is the part of *sql.DB the probes use.
type DB interface {
	PingContext(ctx context.Context) error
	Stats() sql.DBStats
}

// HealthHandler reports database connectivity and the state of the
// notification channels. A nil DB means the in-memory store is in use.
// An open circuit breaker degrades the report but never fails it:
// approvals keep committing while a channel is down.
type HealthHandler struct {
	DB       DB
	Version  string
	Channels func() []notify.ChannelHealthStatus
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]CheckStatus{"database": h.checkDatabase(ctx)}
	if h.Channels != nil {
		checks["notifications"] = h.checkChannels()
	}

	status, code := "healthy", http.StatusOK
	for _, c := range checks {
		switch c.Status {
		case "unhealthy":
			status, code = "unhealthy", http.StatusServiceUnavailable
		case "degraded":
			if status == "healthy" {
				status = "degraded"
			}
		}
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	respond.JSON(w, code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	})
}

func (h *HealthHandler) checkDatabase(ctx context.Context) CheckStatus {
	if h.DB == nil {
		return CheckStatus{Status: "healthy", Message: "in-memory store"}
	}
	if err := h.DB.PingContext(ctx); err != nil {
		slog.Warn("health: database ping failed", slog.String("error", respond.SanitizeError(err)))
		return CheckStatus{Status: "unhealthy", Message: "database unreachable"}
	}

	stats := h.DB.Stats()
	details := map[string]any{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
	}
	if stats.MaxOpenConnections == 0 {
		return CheckStatus{Status: "degraded", Message: "connection pool max connections not configured", Details: details}
	}
	utilization := float64(stats.InUse) / float64(stats.MaxOpenConnections) * 100
	details["utilization_percent"] = utilization
	if utilization >= 80.0 {
		return CheckStatus{Status: "degraded", Message: "connection pool utilization above 80%", Details: details}
	}
	return CheckStatus{Status: "healthy", Details: details}
}

func (h *HealthHandler) checkChannels() CheckStatus {
	channels := h.Channels()
	details := make(map[string]any, len(channels))
	status := "healthy"
	for _, c := range channels {
		details[c.Name] = c
		if c.Enabled && c.CircuitBreakerOpen {
			status = "degraded"
		}
	}
	return CheckStatus{Status: status, Details: details}
}

// ReadyHandler handles readiness probes. It answers 503 until the database
// responds; the in-memory store is always ready.
type ReadyHandler struct {
	DB DB
}

func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.DB != nil {
		if err := h.DB.PingContext(ctx); err != nil {
			respond.JSON(w, http.StatusServiceUnavailable, respond.ErrorBody{Error: "database not ready"})
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// LiveHandler handles liveness probes.
type LiveHandler struct{}

func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("alive"))
}
