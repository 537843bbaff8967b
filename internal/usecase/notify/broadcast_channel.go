package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/sony/gobreaker"

	"newsportal/internal/domain/entity"
	"newsportal/internal/infra/notifier"
	"newsportal/internal/resilience/circuitbreaker"
)

// BroadcastChannel adapts a notifier.Publisher to the Broadcaster interface.
type BroadcastChannel struct {
	name      string
	publisher notifier.Publisher
	enabled   bool
	breaker   *circuitbreaker.CircuitBreaker
}

func newBroadcastChannel(name string, p notifier.Publisher, enabled bool, cfg circuitbreaker.Config) *BroadcastChannel {
	if !enabled || p == nil {
		p = notifier.NewNoOp()
	}
	return &BroadcastChannel{name: name, publisher: p, enabled: enabled, breaker: circuitbreaker.New(cfg)}
}

// NewSocialChannel guards the social feed poster.
func NewSocialChannel(p notifier.Publisher, enabled bool) *BroadcastChannel {
	return newBroadcastChannel("social", p, enabled, circuitbreaker.SocialConfig())
}

// NewNewsroomChannel guards the newsroom Slack desk.
func NewNewsroomChannel(p notifier.Publisher, enabled bool) *BroadcastChannel {
	return newBroadcastChannel("newsroom", p, enabled, circuitbreaker.NewsroomConfig())
}

func (c *BroadcastChannel) Name() string { return c.name }

func (c *BroadcastChannel) IsEnabled() bool { return c.enabled }

func (c *BroadcastChannel) IsOpen() bool { return c.breaker.IsOpen() }

func (c *BroadcastChannel) Publish(ctx context.Context, article *entity.Article) error {
	if !c.enabled {
		return ErrChannelDisabled
	}
	if article == nil {
		return ErrInvalidArticle
	}
	err := c.breaker.Do(func() error {
		return c.publisher.PublishArticle(ctx, article)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %s", ErrCircuitBreakerOpen, c.name)
	}
	return err
}

var _ Broadcaster = (*BroadcastChannel)(nil)
