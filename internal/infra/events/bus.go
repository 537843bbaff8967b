// Package events carries approval events from the approve transaction to the
// notification dispatcher over an in-process Watermill pub/sub.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"newsportal/internal/domain/entity"
	"newsportal/internal/observability/logging"
)

// TopicArticleApproved carries one message per approval event.
const TopicArticleApproved = "article.approved"

type approvalPayload struct {
	ArticleID  int64     `json:"article_id"`
	ApprovedAt time.Time `json:"approved_at"`
}

// Bus publishes approval events. It is the approval hook of the article
// service and the event publisher of the outbox sweeper.
type Bus struct {
	pubsub *gochannel.GoChannel
}

// NewBus creates a non-persistent GoChannel pub/sub. Events published while no
// consumer is subscribed are dropped; the outbox sweeper republishes them.
func NewBus(buffer int64, logger *slog.Logger) *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{
				OutputChannelBuffer:            buffer,
				BlockPublishUntilSubscriberAck: false,
			},
			newSlogAdapter(logger.With("component", "event_bus")),
		),
	}
}

// Publish sends ev on TopicArticleApproved. The request ID in ctx, if any,
// travels as message metadata.
func (b *Bus) Publish(ctx context.Context, ev entity.ApprovalEvent) error {
	payload, err := json.Marshal(approvalPayload{ArticleID: ev.ArticleID, ApprovedAt: ev.ApprovedAt.UTC()})
	if err != nil {
		return fmt.Errorf("Publish: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if id := logging.RequestID(ctx); id != "" {
		msg.Metadata.Set("request_id", id)
	}
	if err := b.pubsub.Publish(TopicArticleApproved, msg); err != nil {
		return fmt.Errorf("Publish: %w", err)
	}
	return nil
}

// ApprovalCommitted is called by the article service after an approve commits.
func (b *Bus) ApprovalCommitted(ctx context.Context, ev entity.ApprovalEvent) error {
	return b.Publish(ctx, ev)
}

func (b *Bus) subscribe(ctx context.Context) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, TopicArticleApproved)
}

// Close stops the pub/sub and closes every subscription channel.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}

func decodeEvent(msg *message.Message) (entity.ApprovalEvent, error) {
	var p approvalPayload
	if err := json.Unmarshal(msg.Payload, &p); err != nil {
		return entity.ApprovalEvent{}, fmt.Errorf("decode approval event: %w", err)
	}
	if p.ArticleID <= 0 || p.ApprovedAt.IsZero() {
		return entity.ApprovalEvent{}, fmt.Errorf("decode approval event: incomplete payload %q", msg.Payload)
	}
	return entity.ApprovalEvent{ArticleID: p.ArticleID, ApprovedAt: p.ApprovedAt}, nil
}
