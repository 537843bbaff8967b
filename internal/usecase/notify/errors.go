package notify

import "errors"

var (
	// ErrChannelDisabled is returned by Send or Publish on a disabled channel.
	ErrChannelDisabled = errors.New("channel is disabled")

	// ErrInvalidArticle is returned when the article is nil.
	ErrInvalidArticle = errors.New("invalid article data")

	// ErrNotificationDropped means no worker slot became free in time.
	// The outbox entry stays undelivered, so the sweeper picks the event up again.
	ErrNotificationDropped = errors.New("notification dropped due to pool saturation")

	// ErrCircuitBreakerOpen means the channel's breaker rejected the call.
	ErrCircuitBreakerOpen = errors.New("circuit breaker is open for this channel")

	// ErrDispatcherClosed is returned by Go after Shutdown.
	ErrDispatcherClosed = errors.New("dispatcher is shut down")
)
