// Package observability groups the portal's logging, metrics and tracing.
//
// Subpackages:
//   - logging: structured logging with slog and request-id propagation
//   - metrics: Prometheus counters for submissions, approvals and visibility
//   - tracing: OpenTelemetry spans for use cases and HTTP requests
package observability
