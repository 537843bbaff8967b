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

// maxErrorLength bounds last_error so a verbose transport error cannot bloat the row.
const maxErrorLength = 1000

type OutboxRepo struct {
	db DBTX
}

func NewOutboxRepo(db DBTX) repository.ApprovalOutboxRepository {
	return &OutboxRepo{db: db}
}

func (repo *OutboxRepo) Enqueue(ctx context.Context, ev entity.ApprovalEvent) error {
	const query = `
INSERT INTO approval_outbox (article_id, approved_at)
VALUES ($1, $2)
ON CONFLICT (article_id, approved_at) DO NOTHING`
	if _, err := repo.db.ExecContext(ctx, query, ev.ArticleID, ev.ApprovedAt); err != nil {
		return fmt.Errorf("Enqueue: %w", err)
	}
	return nil
}

func scanOutbox(s rowScanner) (*entity.OutboxEntry, error) {
	var (
		o           entity.OutboxEntry
		deliveredAt sql.NullTime
	)
	if err := s.Scan(&o.Event.ArticleID, &o.Event.ApprovedAt, &o.Attempts,
		&o.LastError, &deliveredAt, &o.CreatedAt); err != nil {
		return nil, err
	}
	if deliveredAt.Valid {
		t := deliveredAt.Time
		o.DeliveredAt = &t
	}
	return &o, nil
}

func (repo *OutboxRepo) Get(ctx context.Context, ev entity.ApprovalEvent) (*entity.OutboxEntry, error) {
	const query = `
SELECT article_id, approved_at, attempts, last_error, delivered_at, created_at
FROM approval_outbox
WHERE article_id = $1 AND approved_at = $2`
	o, err := scanOutbox(repo.db.QueryRowContext(ctx, query, ev.ArticleID, ev.ApprovedAt))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return o, nil
}

func (repo *OutboxRepo) MarkDelivered(ctx context.Context, ev entity.ApprovalEvent, at time.Time) error {
	const query = `
UPDATE approval_outbox
SET delivered_at = $3, attempts = attempts + 1, last_error = ''
WHERE article_id = $1 AND approved_at = $2 AND delivered_at IS NULL`
	if _, err := repo.db.ExecContext(ctx, query, ev.ArticleID, ev.ApprovedAt, at); err != nil {
		return fmt.Errorf("MarkDelivered: %w", err)
	}
	return nil
}

func (repo *OutboxRepo) RecordFailure(ctx context.Context, ev entity.ApprovalEvent, reason string) error {
	if len(reason) > maxErrorLength {
		reason = reason[:maxErrorLength]
	}
	const query = `
UPDATE approval_outbox
SET attempts = attempts + 1, last_error = $3
WHERE article_id = $1 AND approved_at = $2 AND delivered_at IS NULL`
	if _, err := repo.db.ExecContext(ctx, query, ev.ArticleID, ev.ApprovedAt, reason); err != nil {
		return fmt.Errorf("RecordFailure: %w", err)
	}
	return nil
}

func (repo *OutboxRepo) ListUndelivered(ctx context.Context, olderThan time.Time, maxAttempts, limit int) ([]*entity.OutboxEntry, error) {
	const query = `
SELECT article_id, approved_at, attempts, last_error, delivered_at, created_at
FROM approval_outbox
WHERE delivered_at IS NULL AND created_at < $1 AND attempts < $2
ORDER BY created_at ASC
LIMIT $3`
	rows, err := repo.db.QueryContext(ctx, query, olderThan, maxAttempts, limit)
	if err != nil {
		return nil, fmt.Errorf("ListUndelivered: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := make([]*entity.OutboxEntry, 0, limit)
	for rows.Next() {
		o, err := scanOutbox(rows)
		if err != nil {
			return nil, fmt.Errorf("ListUndelivered: Scan: %w", err)
		}
		entries = append(entries, o)
	}
	return entries, rows.Err()
}
