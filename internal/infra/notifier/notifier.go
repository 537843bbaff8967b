// Package notifier implements the outbound transports used when an article is
// approved: the SMTP mailer that emails subscribers, the social feed poster and
// the newsroom Slack desk.
//
// Each transport applies its own rate limiting and retries. Circuit breaking and
// failure isolation between transports are handled by the notify use case.
package notifier

import (
	"context"

	"newsportal/internal/domain/entity"
)

// Mailer delivers one approval email addressed to every recipient.
type Mailer interface {
	// SendApproval sends a single message for article with all recipients in Bcc.
	// recipients must not be empty.
	SendApproval(ctx context.Context, recipients []string, article *entity.Article) error
}

// Publisher announces an approved article on an external surface.
type Publisher interface {
	PublishArticle(ctx context.Context, article *entity.Article) error
}
