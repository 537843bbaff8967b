// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes the portal metrics including:
//   - Article submission and approval counters
//   - Visibility resolution counts by viewer path
//   - Role transition and subscription change counters
//   - Approval outbox backlog
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the /metrics endpoint.
//
// Example usage:
//
//	import "newsportal/internal/observability/metrics"
//
//	func approve(transitioned bool) {
//	    metrics.RecordApproval(transitioned)
//	}
package metrics
