package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"newsportal/internal/domain/entity"
	"newsportal/internal/observability/logging"
	"newsportal/internal/observability/slo"
	"newsportal/internal/observability/tracing"
	"newsportal/internal/repository"
)

// Config bounds the dispatcher's concurrency.
type Config struct {
	// MaxConcurrent is the number of approval events processed at once.
	MaxConcurrent int
	// EventTimeout bounds the handling of one event, all channels included.
	EventTimeout time.Duration
	// PoolTimeout is how long Go waits for a free worker slot.
	PoolTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{MaxConcurrent: 4, EventTimeout: 30 * time.Second, PoolTimeout: 5 * time.Second}
}

// ChannelHealthStatus is the state of one notification channel.
type ChannelHealthStatus struct {
	Name               string `json:"name"`
	Enabled            bool   `json:"enabled"`
	CircuitBreakerOpen bool   `json:"circuit_breaker_open"`
}

// Dispatcher turns approval events into notifications.
type Dispatcher struct {
	articles      repository.ArticleRepository
	subscriptions repository.SubscriptionRepository
	outbox        repository.ApprovalOutboxRepository
	mailer        Mailer
	broadcasters  []Broadcaster
	cfg           Config
	now           func() time.Time

	workerPool     chan struct{}
	mu             sync.Mutex
	closed         bool
	wg             sync.WaitGroup
	shutdownCtx    context.Context
	shutdownCancel context.CancelFunc
}

// NewDispatcher reads articles, subscriptions and the outbox through repos.
func NewDispatcher(repos repository.Repositories, mailer Mailer, broadcasters []Broadcaster, cfg Config) *Dispatcher {
	def := DefaultConfig()
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = def.MaxConcurrent
	}
	if cfg.EventTimeout <= 0 {
		cfg.EventTimeout = def.EventTimeout
	}
	if cfg.PoolTimeout <= 0 {
		cfg.PoolTimeout = def.PoolTimeout
	}
	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())
	return &Dispatcher{
		articles:       repos.Articles,
		subscriptions:  repos.Subscriptions,
		outbox:         repos.Outbox,
		mailer:         mailer,
		broadcasters:   broadcasters,
		cfg:            cfg,
		now:            time.Now,
		workerPool:     make(chan struct{}, cfg.MaxConcurrent),
		shutdownCtx:    shutdownCtx,
		shutdownCancel: shutdownCancel,
	}
}

// Handle processes one approval event.
//
// Transport failures are recorded on the outbox entry and logged; Handle
// returns an error only when the event could not be evaluated at all.
// Broadcasts run only on the first attempt of an event so that outbox
// redelivery never re-posts to third parties.
func (d *Dispatcher) Handle(ctx context.Context, ev entity.ApprovalEvent) (err error) {
	ctx, span := tracing.StartSpan(ctx, "notify.handle", attribute.Int64("article.id", ev.ArticleID))
	defer func() { tracing.EndSpan(span, err) }()
	logger := logging.FromContext(ctx).With("article_id", ev.ArticleID, "event_key", ev.Key())

	entry, err := d.outbox.Get(ctx, ev)
	if err != nil {
		return fmt.Errorf("Handle: %w", err)
	}
	if entry != nil && entry.Delivered() {
		logger.Debug("approval event already delivered")
		RecordDropped(d.mailer.Name(), "already_delivered")
		return nil
	}
	firstAttempt := entry == nil || entry.Attempts == 0

	article, err := d.articles.Get(ctx, ev.ArticleID)
	if err != nil {
		return fmt.Errorf("Handle: %w", err)
	}
	if article == nil || !article.Approved {
		logger.Warn("approval event refers to a missing or pending article")
		if err := d.outbox.RecordFailure(ctx, ev, "article not found or not approved"); err != nil {
			return fmt.Errorf("Handle: %w", err)
		}
		return nil
	}

	recipients, err := Recipients(ctx, d.subscriptions, article)
	if err != nil {
		return fmt.Errorf("Handle: %w", err)
	}

	var g errgroup.Group
	if firstAttempt {
		for _, b := range d.broadcasters {
			if !b.IsEnabled() {
				continue
			}
			g.Go(func() error {
				d.broadcast(ctx, logger, b, article)
				return nil
			})
		}
	}
	mailErr := d.deliverEmail(ctx, logger, ev, article, recipients)
	_ = g.Wait()
	return mailErr
}

func (d *Dispatcher) deliverEmail(ctx context.Context, logger *slog.Logger, ev entity.ApprovalEvent, article *entity.Article, recipients []string) error {
	channel := d.mailer.Name()
	switch {
	case !d.mailer.IsEnabled():
		RecordDropped(channel, "disabled")
		return d.markDelivered(ctx, ev)
	case len(recipients) == 0:
		logger.Info("approved article has no subscribers")
		RecordDropped(channel, "no_recipients")
		return d.markDelivered(ctx, ev)
	}

	RecordDispatch(channel)
	RecordRecipients(len(recipients))
	start := d.now()
	err := d.mailer.Send(ctx, recipients, article)
	elapsed := d.now().Sub(start)
	if err != nil {
		RecordFailure(channel, elapsed)
		if errors.Is(err, ErrCircuitBreakerOpen) {
			RecordDropped(channel, "circuit_open")
		}
		dispatchErr := &entity.NotificationDispatchError{Channel: channel, Err: err}
		logger.Error("approval notification failed",
			"recipients", len(recipients),
			"duration", elapsed,
			"error", dispatchErr)
		if err := d.outbox.RecordFailure(ctx, ev, dispatchErr.Error()); err != nil {
			return fmt.Errorf("Handle: %w", err)
		}
		return nil
	}

	RecordSuccess(channel, elapsed)
	logger.Info("approval notification sent", "recipients", len(recipients), "duration", elapsed)
	return d.markDelivered(ctx, ev)
}

func (d *Dispatcher) markDelivered(ctx context.Context, ev entity.ApprovalEvent) error {
	at := d.now()
	if err := d.outbox.MarkDelivered(ctx, ev, at); err != nil {
		return fmt.Errorf("Handle: %w", err)
	}
	slo.ObserveDelivery(ev.ApprovedAt, at)
	return nil
}

func (d *Dispatcher) broadcast(ctx context.Context, logger *slog.Logger, b Broadcaster, article *entity.Article) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic in broadcaster",
				"channel", b.Name(),
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()

	RecordDispatch(b.Name())
	start := d.now()
	err := b.Publish(ctx, article)
	elapsed := d.now().Sub(start)
	if err != nil {
		RecordFailure(b.Name(), elapsed)
		if errors.Is(err, ErrCircuitBreakerOpen) {
			RecordDropped(b.Name(), "circuit_open")
		}
		logger.Warn("external publish failed",
			"channel", b.Name(),
			"error", &entity.ExternalPublishError{Target: b.Name(), Err: err})
		return
	}
	RecordSuccess(b.Name(), elapsed)
}

// Go runs Handle on the worker pool without blocking the caller beyond
// PoolTimeout. done, if not nil, receives Handle's result.
func (d *Dispatcher) Go(ev entity.ApprovalEvent, done func(error)) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrDispatcherClosed
	}
	d.wg.Add(1)
	d.mu.Unlock()

	timer := time.NewTimer(d.cfg.PoolTimeout)
	defer timer.Stop()
	select {
	case d.workerPool <- struct{}{}:
	case <-timer.C:
		d.wg.Done()
		RecordDropped("dispatcher", "pool_full")
		return ErrNotificationDropped
	}

	go func() {
		defer d.wg.Done()
		defer func() { <-d.workerPool }()

		activeNotifications.Inc()
		defer activeNotifications.Dec()

		var err error
		defer func() {
			if r := recover(); r != nil {
				slog.Error("panic while handling approval event",
					slog.Int64("article_id", ev.ArticleID),
					slog.Any("panic", r),
					slog.String("stack", string(debug.Stack())))
				err = fmt.Errorf("panic: %v", r)
			}
			if done != nil {
				done(err)
			}
		}()

		ctx, cancel := context.WithTimeout(d.shutdownCtx, d.cfg.EventTimeout)
		defer cancel()
		err = d.Handle(ctx, ev)
	}()
	return nil
}

// ChannelHealth reports every configured channel, email first.
func (d *Dispatcher) ChannelHealth() []ChannelHealthStatus {
	statuses := make([]ChannelHealthStatus, 0, 1+len(d.broadcasters))
	add := func(name string, enabled bool, ch any) {
		s := ChannelHealthStatus{Name: name, Enabled: enabled}
		if b, ok := ch.(breakerState); ok {
			s.CircuitBreakerOpen = b.IsOpen()
		}
		statuses = append(statuses, s)
	}
	add(d.mailer.Name(), d.mailer.IsEnabled(), d.mailer)
	for _, b := range d.broadcasters {
		add(b.Name(), b.IsEnabled(), b)
	}
	return statuses
}

// Shutdown stops accepting events and waits for in-flight ones.
// When ctx expires first, in-flight handlers are canceled.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.shutdownCancel()
		slog.Info("notification dispatcher stopped")
		return nil
	case <-ctx.Done():
		d.shutdownCancel()
		slog.Warn("notification dispatcher shutdown timeout")
		return ctx.Err()
	}
}
