package notifier

import (
	"context"

	"newsportal/internal/domain/entity"
)

// NoOp satisfies Mailer and Publisher when a transport is disabled.
type NoOp struct{}

func NewNoOp() *NoOp {
	return &NoOp{}
}

func (n *NoOp) SendApproval(context.Context, []string, *entity.Article) error {
	return nil
}

func (n *NoOp) PublishArticle(context.Context, *entity.Article) error {
	return nil
}

var (
	_ Mailer    = (*NoOp)(nil)
	_ Publisher = (*NoOp)(nil)
)
