package repository

import (
	"context"
	"time"

	"newsportal/internal/domain/entity"
)

// ApprovalOutboxRepository tracks delivery of approval notifications.
type ApprovalOutboxRepository interface {
	// Enqueue records a new approval event. Enqueueing the same event twice is a no-op.
	Enqueue(ctx context.Context, ev entity.ApprovalEvent) error
	// Get returns (nil, nil) when no entry exists for the event.
	Get(ctx context.Context, ev entity.ApprovalEvent) (*entity.OutboxEntry, error)
	MarkDelivered(ctx context.Context, ev entity.ApprovalEvent, at time.Time) error
	RecordFailure(ctx context.Context, ev entity.ApprovalEvent, reason string) error
	// ListUndelivered returns entries created before olderThan with fewer than maxAttempts attempts.
	ListUndelivered(ctx context.Context, olderThan time.Time, maxAttempts, limit int) ([]*entity.OutboxEntry, error)
}
