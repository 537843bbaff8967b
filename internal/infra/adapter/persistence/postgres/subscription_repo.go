package postgres

import (
	"context"
	"fmt"

	"newsportal/internal/domain/entity"
	"newsportal/internal/repository"
)

type SubscriptionRepo struct {
	db DBTX
}

func NewSubscriptionRepo(db DBTX) repository.SubscriptionRepository {
	return &SubscriptionRepo{db: db}
}

func (repo *SubscriptionRepo) ListForReader(ctx context.Context, readerID int64) (entity.Subscriptions, error) {
	var subs entity.Subscriptions
	var err error

	subs.PublisherIDs, err = repo.ids(ctx,
		`SELECT publisher_id FROM reader_publisher_subscriptions WHERE reader_id = $1 ORDER BY publisher_id`, readerID)
	if err != nil {
		return entity.Subscriptions{}, fmt.Errorf("ListForReader: publishers: %w", err)
	}
	subs.JournalistIDs, err = repo.ids(ctx,
		`SELECT journalist_id FROM reader_journalist_subscriptions WHERE reader_id = $1 ORDER BY journalist_id`, readerID)
	if err != nil {
		return entity.Subscriptions{}, fmt.Errorf("ListForReader: journalists: %w", err)
	}
	return subs, nil
}

func (repo *SubscriptionRepo) ids(ctx context.Context, query string, readerID int64) ([]int64, error) {
	rows, err := repo.db.QueryContext(ctx, query, readerID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	ids := make([]int64, 0, 8)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("Scan: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (repo *SubscriptionRepo) SubscribePublisher(ctx context.Context, readerID, publisherID int64) error {
	const query = `
INSERT INTO reader_publisher_subscriptions (reader_id, publisher_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING`
	if _, err := repo.db.ExecContext(ctx, query, readerID, publisherID); err != nil {
		return fmt.Errorf("SubscribePublisher: %w", err)
	}
	return nil
}

func (repo *SubscriptionRepo) UnsubscribePublisher(ctx context.Context, readerID, publisherID int64) error {
	const query = `DELETE FROM reader_publisher_subscriptions WHERE reader_id = $1 AND publisher_id = $2`
	if _, err := repo.db.ExecContext(ctx, query, readerID, publisherID); err != nil {
		return fmt.Errorf("UnsubscribePublisher: %w", err)
	}
	return nil
}

func (repo *SubscriptionRepo) SubscribeJournalist(ctx context.Context, readerID, journalistID int64) error {
	const query = `
INSERT INTO reader_journalist_subscriptions (reader_id, journalist_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING`
	if _, err := repo.db.ExecContext(ctx, query, readerID, journalistID); err != nil {
		return fmt.Errorf("SubscribeJournalist: %w", err)
	}
	return nil
}

func (repo *SubscriptionRepo) UnsubscribeJournalist(ctx context.Context, readerID, journalistID int64) error {
	const query = `DELETE FROM reader_journalist_subscriptions WHERE reader_id = $1 AND journalist_id = $2`
	if _, err := repo.db.ExecContext(ctx, query, readerID, journalistID); err != nil {
		return fmt.Errorf("UnsubscribeJournalist: %w", err)
	}
	return nil
}

func (repo *SubscriptionRepo) ClearForReader(ctx context.Context, readerID int64) error {
	if _, err := repo.db.ExecContext(ctx,
		`DELETE FROM reader_publisher_subscriptions WHERE reader_id = $1`, readerID); err != nil {
		return fmt.Errorf("ClearForReader: publishers: %w", err)
	}
	if _, err := repo.db.ExecContext(ctx,
		`DELETE FROM reader_journalist_subscriptions WHERE reader_id = $1`, readerID); err != nil {
		return fmt.Errorf("ClearForReader: journalists: %w", err)
	}
	return nil
}

func (repo *SubscriptionRepo) SubscriberEmails(ctx context.Context, publisherID, journalistID int64) ([]string, error) {
	// UNION removes duplicate addresses across both edge sets.
	const query = `
SELECT p.email
FROM principals p
JOIN reader_publisher_subscriptions s ON s.reader_id = p.id
WHERE s.publisher_id = $1 AND p.email <> ''
UNION
SELECT p.email
FROM principals p
JOIN reader_journalist_subscriptions s ON s.reader_id = p.id
WHERE s.journalist_id = $2 AND p.email <> ''
ORDER BY 1`
	rows, err := repo.db.QueryContext(ctx, query, publisherID, journalistID)
	if err != nil {
		return nil, fmt.Errorf("SubscriberEmails: %w", err)
	}
	defer func() { _ = rows.Close() }()

	emails := make([]string, 0, 32)
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("SubscriberEmails: Scan: %w", err)
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}
