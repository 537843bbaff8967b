// Package subscription manages the subscription graph of reader principals.
// Only readers hold subscriptions; every edit is idempotent.
package subscription

import (
	"context"
	"fmt"

	"newsportal/internal/domain/entity"
	"newsportal/internal/observability/metrics"
	"newsportal/internal/repository"
)

var (
	ErrPublisherNotFound  = fmt.Errorf("publisher %w", entity.ErrNotFound)
	ErrJournalistNotFound = fmt.Errorf("journalist %w", entity.ErrNotFound)
)

const (
	kindPublisher  = "publisher"
	kindJournalist = "journalist"
)

// Service edits the subscription graph. Subscribe calls run in a
// transaction that re-reads the actor's role under a row lock, so a role
// change committed after the request authenticated cannot leave a
// non-reader holding a subscription.
type Service struct {
	Tx            repository.Transactor
	Subscriptions repository.SubscriptionRepository
}

func requireReader(actor *entity.Principal, action string) error {
	if actor == nil {
		return &entity.AuthorizationError{Action: action}
	}
	if !actor.IsReader() {
		return &entity.AuthorizationError{Role: actor.Role, Action: action}
	}
	return nil
}

// List returns the subscriptions of the calling reader.
func (s *Service) List(ctx context.Context, actor *entity.Principal) (entity.Subscriptions, error) {
	if err := requireReader(actor, "list subscriptions"); err != nil {
		return entity.Subscriptions{}, err
	}
	subs, err := s.Subscriptions.ListForReader(ctx, actor.ID)
	if err != nil {
		return entity.Subscriptions{}, fmt.Errorf("list subscriptions: %w", err)
	}
	return subs, nil
}

// SubscribePublisher adds a publisher subscription. Subscribing twice is a no-op.
func (s *Service) SubscribePublisher(ctx context.Context, actor *entity.Principal, publisherID int64) error {
	const action = "subscribe to publishers"
	if err := requireReader(actor, action); err != nil {
		return err
	}
	if err := entity.ValidateID("publisher_id", publisherID); err != nil {
		return err
	}
	err := s.Tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := lockReader(ctx, repos.Principals, actor.ID, action); err != nil {
			return err
		}
		if err := checkPublisher(ctx, repos.Publishers, publisherID); err != nil {
			return err
		}
		if err := repos.Subscriptions.SubscribePublisher(ctx, actor.ID, publisherID); err != nil {
			return fmt.Errorf("subscribe publisher: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	metrics.RecordSubscriptionChange(kindPublisher, "subscribe")
	return nil
}

// UnsubscribePublisher removes a publisher subscription. Removing an absent one is a no-op.
func (s *Service) UnsubscribePublisher(ctx context.Context, actor *entity.Principal, publisherID int64) error {
	if err := requireReader(actor, "unsubscribe from publishers"); err != nil {
		return err
	}
	if err := entity.ValidateID("publisher_id", publisherID); err != nil {
		return err
	}
	if err := s.Subscriptions.UnsubscribePublisher(ctx, actor.ID, publisherID); err != nil {
		return fmt.Errorf("unsubscribe publisher: %w", err)
	}
	metrics.RecordSubscriptionChange(kindPublisher, "unsubscribe")
	return nil
}

// SubscribeJournalist adds a journalist subscription. The target must
// currently hold the journalist role.
func (s *Service) SubscribeJournalist(ctx context.Context, actor *entity.Principal, journalistID int64) error {
	const action = "subscribe to journalists"
	if err := requireReader(actor, action); err != nil {
		return err
	}
	if err := entity.ValidateID("journalist_id", journalistID); err != nil {
		return err
	}
	err := s.Tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := lockReader(ctx, repos.Principals, actor.ID, action); err != nil {
			return err
		}
		if err := checkJournalist(ctx, repos.Principals, journalistID); err != nil {
			return err
		}
		if err := repos.Subscriptions.SubscribeJournalist(ctx, actor.ID, journalistID); err != nil {
			return fmt.Errorf("subscribe journalist: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	metrics.RecordSubscriptionChange(kindJournalist, "subscribe")
	return nil
}

func (s *Service) UnsubscribeJournalist(ctx context.Context, actor *entity.Principal, journalistID int64) error {
	if err := requireReader(actor, "unsubscribe from journalists"); err != nil {
		return err
	}
	if err := entity.ValidateID("journalist_id", journalistID); err != nil {
		return err
	}
	if err := s.Subscriptions.UnsubscribeJournalist(ctx, actor.ID, journalistID); err != nil {
		return fmt.Errorf("unsubscribe journalist: %w", err)
	}
	metrics.RecordSubscriptionChange(kindJournalist, "unsubscribe")
	return nil
}

// lockReader re-reads the actor inside the transaction and fails unless it
// is still a reader.
func lockReader(ctx context.Context, principals repository.PrincipalRepository, id int64, action string) error {
	p, err := principals.GetForUpdate(ctx, id)
	if err != nil {
		return fmt.Errorf("lock principal: %w", err)
	}
	if p == nil {
		return &entity.AuthorizationError{Action: action}
	}
	if !p.IsReader() {
		return &entity.AuthorizationError{Role: p.Role, Action: action}
	}
	return nil
}

func checkPublisher(ctx context.Context, publishers repository.PublisherRepository, id int64) error {
	p, err := publishers.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get publisher: %w", err)
	}
	if p == nil {
		return ErrPublisherNotFound
	}
	return nil
}

func checkJournalist(ctx context.Context, principals repository.PrincipalRepository, id int64) error {
	p, err := principals.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get journalist: %w", err)
	}
	if !p.IsJournalist() {
		return ErrJournalistNotFound
	}
	return nil
}
