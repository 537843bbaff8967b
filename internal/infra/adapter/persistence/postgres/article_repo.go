package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"newsportal/internal/domain/entity"
	"newsportal/internal/repository"
)

type ArticleRepo struct {
	db DBTX
}

func NewArticleRepo(db DBTX) repository.ArticleRepository {
	return &ArticleRepo{db: db}
}

const articleColumns = `a.id, a.title, a.body, a.publisher_id, a.journalist_id, a.approved, a.approved_at, a.created_at`

func scanArticle(s rowScanner) (*entity.Article, error) {
	var (
		a          entity.Article
		approvedAt sql.NullTime
	)
	if err := s.Scan(&a.ID, &a.Title, &a.Body, &a.PublisherID, &a.JournalistID,
		&a.Approved, &approvedAt, &a.CreatedAt); err != nil {
		return nil, err
	}
	if approvedAt.Valid {
		t := approvedAt.Time
		a.ApprovedAt = &t
	}
	return &a, nil
}

func (repo *ArticleRepo) Get(ctx context.Context, id int64) (*entity.Article, error) {
	const query = `SELECT ` + articleColumns + ` FROM articles a WHERE a.id = $1 LIMIT 1`
	a, err := scanArticle(repo.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return a, nil
}

func (repo *ArticleRepo) ListApproved(ctx context.Context) ([]*entity.Article, error) {
	const query = `
SELECT ` + articleColumns + `
FROM articles a
WHERE a.approved = TRUE
ORDER BY a.created_at DESC, a.id DESC`
	return repo.list(ctx, "ListApproved", query)
}

func (repo *ArticleRepo) ListApprovedForReader(ctx context.Context, readerID int64) ([]*entity.Article, error) {
	// IN-subqueries keep each article at most once even when it is reachable
	// through both a publisher and a journalist subscription.
	const query = `
SELECT ` + articleColumns + `
FROM articles a
WHERE a.approved = TRUE
  AND (
        a.publisher_id IN (
            SELECT publisher_id FROM reader_publisher_subscriptions WHERE reader_id = $1)
     OR a.journalist_id IN (
            SELECT journalist_id FROM reader_journalist_subscriptions WHERE reader_id = $1)
  )
ORDER BY a.created_at DESC, a.id DESC`
	return repo.list(ctx, "ListApprovedForReader", query, readerID)
}

func (repo *ArticleRepo) ListPending(ctx context.Context) ([]*entity.Article, error) {
	const query = `
SELECT ` + articleColumns + `
FROM articles a
WHERE a.approved = FALSE
ORDER BY a.created_at ASC, a.id ASC`
	return repo.list(ctx, "ListPending", query)
}

func (repo *ArticleRepo) ListByJournalist(ctx context.Context, journalistID int64) ([]*entity.Article, error) {
	const query = `
SELECT ` + articleColumns + `
FROM articles a
WHERE a.journalist_id = $1
ORDER BY a.created_at DESC, a.id DESC`
	return repo.list(ctx, "ListByJournalist", query, journalistID)
}

func (repo *ArticleRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.Article, error) {
	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	// パフォーマンス最適化: メモリ再割り当てを削減するため事前割り当て
	articles := make([]*entity.Article, 0, 100)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: Scan: %w", op, err)
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

func (repo *ArticleRepo) Create(ctx context.Context, article *entity.Article) error {
	const query = `
INSERT INTO articles (title, body, publisher_id, journalist_id, approved)
VALUES ($1, $2, $3, $4, FALSE)
RETURNING id, created_at`
	err := repo.db.QueryRowContext(ctx, query,
		article.Title, article.Body, article.PublisherID, article.JournalistID,
	).Scan(&article.ID, &article.CreatedAt)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	article.Approved = false
	article.ApprovedAt = nil
	return nil
}

func (repo *ArticleRepo) MarkApproved(ctx context.Context, id int64, at time.Time) (bool, error) {
	// The approved = FALSE guard makes the transition happen at most once
	// even under concurrent approvals of the same article.
	const query = `
UPDATE articles
SET approved = TRUE, approved_at = $2
WHERE id = $1 AND approved = FALSE`
	res, err := repo.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return false, fmt.Errorf("MarkApproved: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("MarkApproved: RowsAffected: %w", err)
	}
	return n == 1, nil
}
