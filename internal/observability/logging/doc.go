// Package logging builds the slog loggers used by the API and portalctl and
// carries a request-scoped logger through context.
//
// The HTTP Logging middleware stores a logger tagged with request_id and
// trace_id; use cases and the notification pipeline pick it up with
// FromContext so one approval can be followed from the request to the last
// delivered notification:
//
//	logging.FromContext(ctx).Info("article approved", slog.Int64("article_id", id))
package logging
