package repository

import "context"

// Repositories bundles the repositories bound to one unit of work.
type Repositories struct {
	Principals    PrincipalRepository
	Publishers    PublisherRepository
	Subscriptions SubscriptionRepository
	Articles      ArticleRepository
	Outbox        ApprovalOutboxRepository
}

// Transactor runs fn inside a single transaction.
// If fn returns an error every write made through repos is rolled back.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
