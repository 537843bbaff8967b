// Package article implements the authoring and approval workflow and the
// Visibility Resolver that decides which articles a principal may read.
package article

import (
	"fmt"

	"newsportal/internal/domain/entity"
)

var (
	// ErrArticleNotFound indicates that the article does not exist or is not
	// visible to the caller. The two cases are not distinguished.
	ErrArticleNotFound = fmt.Errorf("article %w", entity.ErrNotFound)

	// ErrPublisherNotFound indicates that the referenced publisher does not exist.
	ErrPublisherNotFound = fmt.Errorf("publisher %w", entity.ErrNotFound)
)
