// Package publisher manages publishers and their editor and journalist
// memberships.
package publisher

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"newsportal/internal/domain/entity"
	"newsportal/internal/repository"
)

var (
	ErrPublisherNotFound  = fmt.Errorf("publisher %w", entity.ErrNotFound)
	ErrJournalistNotFound = fmt.Errorf("journalist %w", entity.ErrNotFound)
)

const maxNameLength = 200

type Service struct {
	Tx         repository.Transactor
	Publishers repository.PublisherRepository
	Principals repository.PrincipalRepository
}

func (s *Service) List(ctx context.Context) ([]*entity.Publisher, error) {
	out, err := s.Publishers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list publishers: %w", err)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*entity.Publisher, error) {
	if err := entity.ValidateID("id", id); err != nil {
		return nil, err
	}
	p, err := s.Publishers.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get publisher: %w", err)
	}
	if p == nil {
		return nil, ErrPublisherNotFound
	}
	return p, nil
}

// Create adds a publisher. The creating editor becomes its first editor member.
func (s *Service) Create(ctx context.Context, actor *entity.Principal, name string) (*entity.Publisher, error) {
	if actor == nil {
		return nil, &entity.AuthorizationError{Action: "create publishers"}
	}
	if !actor.IsEditor() {
		return nil, &entity.AuthorizationError{Role: actor.Role, Action: "create publishers"}
	}
	return s.create(ctx, name, actor.ID)
}

// AdminCreate adds a publisher without members. Used by the admin CLI.
func (s *Service) AdminCreate(ctx context.Context, name string) (*entity.Publisher, error) {
	return s.create(ctx, name, 0)
}

func (s *Service) create(ctx context.Context, name string, editorID int64) (*entity.Publisher, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &entity.ValidationError{Field: "name", Message: "is required"}
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return nil, &entity.ValidationError{Field: "name", Message: fmt.Sprintf("must be at most %d characters", maxNameLength)}
	}

	p := &entity.Publisher{Name: name}
	err := s.Tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := repos.Publishers.Create(ctx, p); err != nil {
			return fmt.Errorf("create publisher: %w", err)
		}
		if editorID == 0 {
			return nil
		}
		if err := repos.Publishers.AddEditor(ctx, p.ID, editorID); err != nil {
			return fmt.Errorf("add editor: %w", err)
		}
		p.EditorIDs = []int64{editorID}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// AffiliateJournalist links a journalist to a publisher. The caller must be
// an editor member of that publisher; affiliating twice is a no-op.
func (s *Service) AffiliateJournalist(ctx context.Context, actor *entity.Principal, publisherID, journalistID int64) (*entity.Publisher, error) {
	if actor == nil {
		return nil, &entity.AuthorizationError{Action: "affiliate journalists"}
	}
	if !actor.IsEditor() {
		return nil, &entity.AuthorizationError{Role: actor.Role, Action: "affiliate journalists"}
	}
	pub, err := s.Get(ctx, publisherID)
	if err != nil {
		return nil, err
	}
	if !pub.HasEditor(actor.ID) {
		return nil, &entity.AuthorizationError{Role: actor.Role, Action: "manage another publisher"}
	}
	if err := entity.ValidateID("journalist_id", journalistID); err != nil {
		return nil, err
	}
	j, err := s.Principals.Get(ctx, journalistID)
	if err != nil {
		return nil, fmt.Errorf("get journalist: %w", err)
	}
	if !j.IsJournalist() {
		return nil, ErrJournalistNotFound
	}
	if err := s.Publishers.AddJournalist(ctx, publisherID, journalistID); err != nil {
		return nil, fmt.Errorf("add journalist: %w", err)
	}
	return s.Get(ctx, publisherID)
}
