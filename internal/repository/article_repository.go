package repository

import (
	"context"
	"time"

	"newsportal/internal/domain/entity"
)

type ArticleRepository interface {
	// Get returns (nil, nil) if the article is not found.
	Get(ctx context.Context, id int64) (*entity.Article, error)
	// ListApproved returns every approved article ordered by created_at DESC, id DESC.
	ListApproved(ctx context.Context) ([]*entity.Article, error)
	// ListApprovedForReader returns approved articles whose publisher or journalist
	// the reader subscribes to. Each article appears once.
	ListApprovedForReader(ctx context.Context, readerID int64) ([]*entity.Article, error)
	// ListPending returns the moderation queue (approved = false).
	ListPending(ctx context.Context) ([]*entity.Article, error)
	ListByJournalist(ctx context.Context, journalistID int64) ([]*entity.Article, error)
	// Create inserts a pending article and fills in ID and CreatedAt.
	Create(ctx context.Context, article *entity.Article) error
	// MarkApproved flips approved from false to true.
	// It reports false when the article was already approved or does not exist.
	MarkApproved(ctx context.Context, id int64, at time.Time) (bool, error)
}
