package events

import (
	"context"
	"errors"
	"log/slog"

	"newsportal/internal/domain/entity"
	"newsportal/internal/observability/logging"
	"newsportal/internal/usecase/notify"
)

// Dispatcher runs an approval event asynchronously.
type Dispatcher interface {
	Go(ev entity.ApprovalEvent, done func(error)) error
}

// Consumer feeds approval events from the bus into the dispatcher.
//
// A message is acked once the dispatcher has accepted it; delivery failures
// after that point are tracked on the outbox. A message is nacked, and thus
// redelivered, only when the dispatcher's worker pool is saturated.
type Consumer struct {
	bus        *Bus
	dispatcher Dispatcher
	logger     *slog.Logger
	ready      chan struct{}
}

func NewConsumer(bus *Bus, dispatcher Dispatcher, logger *slog.Logger) *Consumer {
	return &Consumer{bus: bus, dispatcher: dispatcher, logger: logger, ready: make(chan struct{})}
}

// Ready is closed once Run has subscribed to the bus.
func (c *Consumer) Ready() <-chan struct{} {
	return c.ready
}

// Run blocks until ctx is done or the bus is closed.
func (c *Consumer) Run(ctx context.Context) error {
	messages, err := c.bus.subscribe(ctx)
	if err != nil {
		return err
	}
	close(c.ready)
	c.logger.Info("approval event consumer started")

	for msg := range messages {
		ev, err := decodeEvent(msg)
		if err != nil {
			c.logger.Error("dropping malformed approval event", "message_uuid", msg.UUID, "error", err)
			msg.Ack()
			continue
		}

		evCtx := context.Background()
		if id := msg.Metadata.Get("request_id"); id != "" {
			evCtx = logging.ContextWithRequestID(evCtx, id)
		}
		logger := logging.WithRequestID(evCtx, c.logger).With("article_id", ev.ArticleID)

		err = c.dispatcher.Go(ev, func(err error) {
			if err != nil {
				logger.Error("approval event handling failed; left for the outbox sweeper", "error", err)
			}
		})
		switch {
		case err == nil:
			msg.Ack()
		case errors.Is(err, notify.ErrNotificationDropped):
			logger.Warn("dispatcher saturated, redelivering approval event")
			msg.Nack()
		default:
			// dispatcher is shut down; the outbox still holds the event
			logger.Warn("approval event not dispatched", "error", err)
			msg.Ack()
			if errors.Is(err, notify.ErrDispatcherClosed) {
				return nil
			}
		}
	}

	c.logger.Info("approval event consumer stopped")
	return nil
}
