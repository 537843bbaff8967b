package repository

import (
	"context"

	"newsportal/internal/domain/entity"
)

// PrincipalRepository persists principals and their journalist portfolio.
// Get and GetByUsername return (nil, nil) when the principal does not exist.
type PrincipalRepository interface {
	Get(ctx context.Context, id int64) (*entity.Principal, error)
	// GetForUpdate is Get that also locks the row until the surrounding
	// transaction ends, so a concurrent role change waits for it.
	GetForUpdate(ctx context.Context, id int64) (*entity.Principal, error)
	GetByUsername(ctx context.Context, username string) (*entity.Principal, error)
	List(ctx context.Context) ([]*entity.Principal, error)
	ListByRole(ctx context.Context, role entity.Role) ([]*entity.Principal, error)
	// Create inserts the principal and fills in ID and CreatedAt.
	Create(ctx context.Context, p *entity.Principal) error
	// Update writes username, email, role, bio and newsletter.
	Update(ctx context.Context, p *entity.Principal) error
	// AddToPortfolio credits an approved article to its journalist. Idempotent.
	AddToPortfolio(ctx context.Context, journalistID, articleID int64) error
	// ClearPortfolio removes every published-article entry of the principal.
	ClearPortfolio(ctx context.Context, principalID int64) error
	// PortfolioSize returns the number of published-article entries of the principal.
	PortfolioSize(ctx context.Context, principalID int64) (int, error)
}
