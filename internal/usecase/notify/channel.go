// Package notify delivers the side effects of an article approval: one email
// to every subscriber of the article's publisher or journalist, and
// independent broadcasts to external surfaces (social feed, newsroom desk).
//
// Email delivery is tracked in the approval outbox and retried by the sweeper.
// Broadcasts are best effort and never affect the email or the approval.
package notify

import (
	"context"

	"newsportal/internal/domain/entity"
)

// Mailer is the email channel of the dispatcher.
// All methods must be safe for concurrent use.
type Mailer interface {
	// Name is the channel label used in logs and metrics.
	Name() string
	IsEnabled() bool
	// Send delivers exactly one message addressed to all recipients.
	Send(ctx context.Context, recipients []string, article *entity.Article) error
}

// Broadcaster publishes an approved article to a third party.
// A broadcaster failure is logged and never retried by the outbox.
type Broadcaster interface {
	Name() string
	IsEnabled() bool
	Publish(ctx context.Context, article *entity.Article) error
}

// breakerState is implemented by channels guarded by a circuit breaker.
type breakerState interface {
	IsOpen() bool
}
