package article

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"newsportal/internal/domain/entity"
	"newsportal/internal/observability/logging"
	"newsportal/internal/observability/metrics"
	"newsportal/internal/observability/tracing"
	"newsportal/internal/repository"
)

// ApprovalHook receives committed approval events. It is called after the
// approval transaction commits and its error never reaches the approver.
type ApprovalHook interface {
	ApprovalCommitted(ctx context.Context, ev entity.ApprovalEvent) error
}

// SubmitInput is the authoring form of a new article.
type SubmitInput struct {
	Title       string
	Body        string
	PublisherID int64
}

// ApproveResult reports the outcome of Approve. Transitioned is false when
// the article was already approved and nothing changed.
type ApproveResult struct {
	Article      *entity.Article
	Transitioned bool
}

// Service runs the Pending to Approved workflow.
type Service struct {
	Tx         repository.Transactor
	Articles   repository.ArticleRepository
	Publishers repository.PublisherRepository
	Hook       ApprovalHook
	Now        func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Submit creates a pending article authored by actor, who must be a journalist.
func (s *Service) Submit(ctx context.Context, actor *entity.Principal, in SubmitInput) (a *entity.Article, err error) {
	ctx, span := tracing.StartSpan(ctx, "article.submit", attribute.Int64("publisher.id", in.PublisherID))
	defer func() { tracing.EndSpan(span, err) }()

	if actor == nil {
		return nil, &entity.AuthorizationError{Action: "submit articles"}
	}
	if !actor.Role.Can(entity.PermAddArticle) {
		return nil, &entity.AuthorizationError{Role: actor.Role, Action: "submit articles"}
	}
	if err := entity.ValidateArticleContent(in.Title, in.Body); err != nil {
		return nil, err
	}
	if err := entity.ValidateID("publisher_id", in.PublisherID); err != nil {
		return nil, err
	}

	pub, err := s.Publishers.Get(ctx, in.PublisherID)
	if err != nil {
		return nil, fmt.Errorf("get publisher: %w", err)
	}
	if pub == nil {
		return nil, ErrPublisherNotFound
	}

	a = &entity.Article{
		Title:        in.Title,
		Body:         in.Body,
		PublisherID:  in.PublisherID,
		JournalistID: actor.ID,
	}
	if err := s.Articles.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}

	metrics.RecordArticleSubmitted()
	logging.FromContext(ctx).Info("article submitted",
		slog.Int64("article_id", a.ID),
		slog.Int64("journalist_id", actor.ID),
		slog.Int64("publisher_id", in.PublisherID))
	return a, nil
}

// Approve moves a pending article to approved. Approving an approved
// article succeeds without side effects. On a real transition the
// portfolio entry and the outbox row are written in the same transaction
// and the hook runs after commit.
func (s *Service) Approve(ctx context.Context, actor *entity.Principal, id int64) (res *ApproveResult, err error) {
	ctx, span := tracing.StartSpan(ctx, "article.approve", attribute.Int64("article.id", id))
	defer func() { tracing.EndSpan(span, err) }()

	if actor == nil {
		return nil, &entity.AuthorizationError{Action: "approve articles"}
	}
	if !actor.IsEditor() {
		return nil, &entity.AuthorizationError{Role: actor.Role, Action: "approve articles"}
	}
	if err := entity.ValidateID("id", id); err != nil {
		return nil, err
	}

	// PostgreSQL の timestamptz はマイクロ秒精度
	at := s.now().UTC().Truncate(time.Microsecond)
	res = &ApproveResult{}

	err = s.Tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		a, err := repos.Articles.Get(ctx, id)
		if err != nil {
			return fmt.Errorf("get article: %w", err)
		}
		if a == nil {
			return ErrArticleNotFound
		}
		res.Article = a
		if a.Approved {
			return nil
		}

		ok, err := repos.Articles.MarkApproved(ctx, id, at)
		if err != nil {
			return fmt.Errorf("mark approved: %w", err)
		}
		if !ok {
			// 並行する承認が先にコミットした
			fresh, err := repos.Articles.Get(ctx, id)
			if err != nil {
				return fmt.Errorf("get article: %w", err)
			}
			res.Article = fresh
			return nil
		}
		if err := repos.Principals.AddToPortfolio(ctx, a.JournalistID, a.ID); err != nil {
			return fmt.Errorf("add to portfolio: %w", err)
		}
		if err := repos.Outbox.Enqueue(ctx, entity.ApprovalEvent{ArticleID: a.ID, ApprovedAt: at}); err != nil {
			return fmt.Errorf("enqueue approval event: %w", err)
		}

		a.Approved = true
		a.ApprovedAt = &at
		res.Transitioned = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordApproval(res.Transitioned)
	span.SetAttributes(attribute.Bool("article.transitioned", res.Transitioned))
	logger := logging.FromContext(ctx)
	if !res.Transitioned {
		logger.Info("article already approved", slog.Int64("article_id", id))
		return res, nil
	}
	logger.Info("article approved",
		slog.Int64("article_id", id),
		slog.Int64("editor_id", actor.ID))

	if s.Hook != nil {
		ev := entity.ApprovalEvent{ArticleID: id, ApprovedAt: at}
		if hookErr := s.Hook.ApprovalCommitted(ctx, ev); hookErr != nil {
			// アウトボックスのスイーパーが再送する
			logger.Warn("approval hook failed",
				slog.Int64("article_id", id),
				slog.String("event_key", ev.Key()),
				slog.Any("error", hookErr))
		}
	}
	return res, nil
}
