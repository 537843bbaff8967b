package repository

import (
	"context"

	"newsportal/internal/domain/entity"
)

type PublisherRepository interface {
	Get(ctx context.Context, id int64) (*entity.Publisher, error)
	List(ctx context.Context) ([]*entity.Publisher, error)
	Create(ctx context.Context, p *entity.Publisher) error
	AddEditor(ctx context.Context, publisherID, editorID int64) error
	AddJournalist(ctx context.Context, publisherID, journalistID int64) error
}
