// Package tracing provides OpenTelemetry tracing integration.
//
// Use cases open internal spans with StartSpan and close them with EndSpan;
// the HTTP Middleware opens one server span per request.
//
//	ctx, span := tracing.StartSpan(ctx, "article.Approve", attribute.Int64("article.id", id))
//	defer func() { tracing.EndSpan(span, err) }()
package tracing
