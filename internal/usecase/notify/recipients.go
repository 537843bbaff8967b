package notify

import (
	"context"
	"fmt"
	"net/mail"
	"sort"
	"strings"

	"newsportal/internal/domain/entity"
	"newsportal/internal/observability/logging"
	"newsportal/internal/repository"
)

// Recipients returns the sorted, de-duplicated emails of everyone subscribed to
// the article's publisher or to its journalist. Addresses are compared
// case-insensitively; blank or malformed addresses are skipped.
func Recipients(ctx context.Context, subs repository.SubscriptionRepository, article *entity.Article) ([]string, error) {
	emails, err := subs.SubscriberEmails(ctx, article.PublisherID, article.JournalistID)
	if err != nil {
		return nil, fmt.Errorf("Recipients: %w", err)
	}

	seen := make(map[string]struct{}, len(emails))
	out := make([]string, 0, len(emails))
	for _, raw := range emails {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		addr, err := mail.ParseAddress(raw)
		if err != nil {
			logging.FromContext(ctx).Warn("skipping malformed subscriber email",
				"article_id", article.ID, "error", err)
			continue
		}
		key := strings.ToLower(addr.Address)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, addr.Address)
	}
	sort.Strings(out)
	return out, nil
}
