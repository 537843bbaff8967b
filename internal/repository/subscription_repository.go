package repository

import (
	"context"

	"newsportal/internal/domain/entity"
)

// SubscriptionRepository manages reader→publisher and reader→journalist edges.
// Subscribe and Unsubscribe calls are idempotent.
type SubscriptionRepository interface {
	ListForReader(ctx context.Context, readerID int64) (entity.Subscriptions, error)
	SubscribePublisher(ctx context.Context, readerID, publisherID int64) error
	UnsubscribePublisher(ctx context.Context, readerID, publisherID int64) error
	SubscribeJournalist(ctx context.Context, readerID, journalistID int64) error
	UnsubscribeJournalist(ctx context.Context, readerID, journalistID int64) error
	// ClearForReader drops every outgoing edge of the principal.
	ClearForReader(ctx context.Context, readerID int64) error
	// SubscriberEmails returns the emails of principals subscribed to the publisher
	// or to the journalist, without duplicates.
	SubscriberEmails(ctx context.Context, publisherID, journalistID int64) ([]string, error)
}
