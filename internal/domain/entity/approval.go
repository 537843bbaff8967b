package entity

import (
	"fmt"
	"time"
)

// ApprovalEvent records one Pending to Approved transition of an article.
// (ArticleID, ApprovedAt) is the idempotency key of its notification.
type ApprovalEvent struct {
	ArticleID  int64
	ApprovedAt time.Time
}

// Key returns the idempotency key of the event.
func (e ApprovalEvent) Key() string {
	return fmt.Sprintf("%d@%d", e.ArticleID, e.ApprovedAt.UTC().UnixNano())
}

// OutboxEntry is the delivery state of an approval event.
type OutboxEntry struct {
	Event       ApprovalEvent
	Attempts    int
	LastError   string
	DeliveredAt *time.Time
	CreatedAt   time.Time
}

// Delivered reports whether the notification for the event has been handed off.
func (o *OutboxEntry) Delivered() bool {
	return o.DeliveredAt != nil
}
