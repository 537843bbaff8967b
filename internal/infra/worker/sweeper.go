// Package worker runs background jobs of the API process. The only job is
// the outbox sweeper, which gives approval notifications at-least-once
// delivery across crashes and bus failures.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"newsportal/internal/domain/entity"
	"newsportal/internal/observability/metrics"
	"newsportal/internal/repository"
)

// EventPublisher puts an approval event back on the notification bus.
type EventPublisher interface {
	Publish(ctx context.Context, ev entity.ApprovalEvent) error
}

// Sweeper periodically re-publishes undelivered outbox entries.
type Sweeper struct {
	outbox    repository.ApprovalOutboxRepository
	publisher EventPublisher
	cfg       SweeperConfig
	logger    *slog.Logger
	now       func() time.Time

	mu   sync.Mutex
	cron *cron.Cron
}

func NewSweeper(outbox repository.ApprovalOutboxRepository, pub EventPublisher, cfg SweeperConfig, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		outbox:    outbox,
		publisher: pub,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// RunOnce re-publishes one batch and returns how many events were published.
// A publish failure for one event does not stop the batch.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.cfg.Grace)
	entries, err := s.outbox.ListUndelivered(ctx, cutoff, s.cfg.MaxAttempts, s.cfg.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("list undelivered: %w", err)
	}

	published := 0
	var errs []error
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := s.publisher.Publish(ctx, e.Event); err != nil {
			s.logger.Warn("outbox re-publish failed",
				slog.Int64("article_id", e.Event.ArticleID),
				slog.String("event_key", e.Event.Key()),
				slog.Any("error", err))
			errs = append(errs, err)
			continue
		}
		published++
	}

	metrics.RecordOutboxSweep(len(entries), published)
	if len(entries) > 0 {
		s.logger.Info("outbox sweep completed",
			slog.Int("backlog", len(entries)),
			slog.Int("republished", published))
	}
	return published, errors.Join(errs...)
}

func (s *Sweeper) run() {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RunTimeout)
	defer cancel()

	if _, err := s.RunOnce(ctx); err != nil {
		s.logger.Error("outbox sweep failed", slog.Any("error", err))
		recordRun("failure", time.Since(start).Seconds())
		return
	}
	recordRun("success", time.Since(start).Seconds())
}

// Start schedules the sweeper. It returns an error for an invalid schedule
// or timezone; calling Start twice is a no-op.
func (s *Sweeper) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return nil
	}

	loc, err := time.LoadLocation(s.cfg.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", s.cfg.Timezone, err)
	}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithParser(cron.NewParser(cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow|cron.Descriptor)),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	if _, err := c.AddFunc(s.cfg.Schedule, s.run); err != nil {
		return fmt.Errorf("add sweep job: %w", err)
	}
	c.Start()
	s.cron = c

	s.logger.Info("outbox sweeper started",
		slog.String("schedule", s.cfg.Schedule),
		slog.String("timezone", s.cfg.Timezone),
		slog.Duration("grace", s.cfg.Grace))
	return nil
}

// Stop halts scheduling and waits for a running sweep or ctx expiry.
func (s *Sweeper) Stop(ctx context.Context) {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()
	if c == nil {
		return
	}

	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("outbox sweeper stop timed out")
	}
}
