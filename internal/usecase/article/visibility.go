package article

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"newsportal/internal/domain/entity"
	"newsportal/internal/observability/metrics"
	"newsportal/internal/observability/tracing"
	"newsportal/internal/repository"
)

// Resolver computes the articles a principal may read.
//
//   - anonymous, editor, journalist and unknown roles: every approved article
//   - reader: approved articles whose publisher or journalist the reader
//     subscribes to; no subscriptions means no articles
//
// Results are deduplicated by id and ordered newest first (created_at, id).
type Resolver struct {
	Articles repository.ArticleRepository
}

// Dashboard is the journalist's own articles split by approval state.
type Dashboard struct {
	Approved   []*entity.Article
	Pending    []*entity.Article
	HasPending bool
}

func viewerPath(viewer *entity.Principal) string {
	if viewer == nil {
		return "anonymous"
	}
	if viewer.Role.IsValid() {
		return viewer.Role.String()
	}
	return "unknown"
}

// Resolve returns the visible articles of viewer; nil means anonymous.
func (r *Resolver) Resolve(ctx context.Context, viewer *entity.Principal) (out []*entity.Article, err error) {
	path := viewerPath(viewer)
	ctx, span := tracing.StartSpan(ctx, "article.resolve_visible", attribute.String("viewer.path", path))
	defer func() { tracing.EndSpan(span, err) }()

	var articles []*entity.Article
	if viewer.IsReader() {
		articles, err = r.Articles.ListApprovedForReader(ctx, viewer.ID)
	} else {
		articles, err = r.Articles.ListApproved(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve visible articles: %w", err)
	}

	out = dedupe(articles)
	span.SetAttributes(attribute.Int("articles.count", len(out)))
	metrics.RecordVisibility(path, len(out))
	return out, nil
}

// Get returns article id when it is part of viewer's visible set.
func (r *Resolver) Get(ctx context.Context, viewer *entity.Principal, id int64) (*entity.Article, error) {
	if err := entity.ValidateID("id", id); err != nil {
		return nil, err
	}
	a, err := r.Articles.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	if a == nil || !a.Approved {
		return nil, ErrArticleNotFound
	}
	if !viewer.IsReader() {
		return a, nil
	}

	// 読者は購読範囲内の記事のみ
	visible, err := r.Resolve(ctx, viewer)
	if err != nil {
		return nil, err
	}
	for _, v := range visible {
		if v.ID == id {
			return a, nil
		}
	}
	return nil, ErrArticleNotFound
}

// ModerationQueue returns every pending article, oldest first. Editors only.
func (r *Resolver) ModerationQueue(ctx context.Context, viewer *entity.Principal) ([]*entity.Article, error) {
	if viewer == nil {
		return nil, &entity.AuthorizationError{Action: "view the moderation queue"}
	}
	if !viewer.IsEditor() {
		return nil, &entity.AuthorizationError{Role: viewer.Role, Action: "view the moderation queue"}
	}
	return r.PendingArticles(ctx)
}

// PendingArticles lists every pending article without an authorization check.
// It backs the administrative CLI.
func (r *Resolver) PendingArticles(ctx context.Context) ([]*entity.Article, error) {
	out, err := r.Articles.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending articles: %w", err)
	}
	return out, nil
}

// JournalistDashboard returns the caller's own articles regardless of state.
func (r *Resolver) JournalistDashboard(ctx context.Context, viewer *entity.Principal) (*Dashboard, error) {
	if viewer == nil {
		return nil, &entity.AuthorizationError{Action: "view the journalist dashboard"}
	}
	if !viewer.IsJournalist() {
		return nil, &entity.AuthorizationError{Role: viewer.Role, Action: "view the journalist dashboard"}
	}
	own, err := r.Articles.ListByJournalist(ctx, viewer.ID)
	if err != nil {
		return nil, fmt.Errorf("list own articles: %w", err)
	}

	d := &Dashboard{Approved: []*entity.Article{}, Pending: []*entity.Article{}}
	for _, a := range dedupe(own) {
		if a.Approved {
			d.Approved = append(d.Approved, a)
		} else {
			d.Pending = append(d.Pending, a)
		}
	}
	d.HasPending = len(d.Pending) > 0
	return d, nil
}

func dedupe(in []*entity.Article) []*entity.Article {
	seen := make(map[int64]struct{}, len(in))
	out := make([]*entity.Article, 0, len(in))
	for _, a := range in {
		if _, ok := seen[a.ID]; ok {
			continue
		}
		seen[a.ID] = struct{}{}
		out = append(out, a)
	}
	return out
}
