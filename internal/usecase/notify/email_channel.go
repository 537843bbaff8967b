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

// EmailChannel adapts a notifier.Mailer to the Mailer interface behind the SMTP breaker.
type EmailChannel struct {
	mailer  notifier.Mailer
	enabled bool
	breaker *circuitbreaker.CircuitBreaker
}

// NewEmailChannel wraps m. A disabled channel uses a no-op mailer.
func NewEmailChannel(m notifier.Mailer, enabled bool) *EmailChannel {
	if !enabled || m == nil {
		m = notifier.NewNoOp()
	}
	return &EmailChannel{
		mailer:  m,
		enabled: enabled,
		breaker: circuitbreaker.New(circuitbreaker.SMTPConfig()),
	}
}

func (c *EmailChannel) Name() string { return "email" }

func (c *EmailChannel) IsEnabled() bool { return c.enabled }

func (c *EmailChannel) IsOpen() bool { return c.breaker.IsOpen() }

func (c *EmailChannel) Send(ctx context.Context, recipients []string, article *entity.Article) error {
	if !c.enabled {
		return ErrChannelDisabled
	}
	if article == nil {
		return ErrInvalidArticle
	}
	err := c.breaker.Do(func() error {
		return c.mailer.SendApproval(ctx, recipients, article)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %s", ErrCircuitBreakerOpen, c.Name())
	}
	return err
}

var _ Mailer = (*EmailChannel)(nil)
