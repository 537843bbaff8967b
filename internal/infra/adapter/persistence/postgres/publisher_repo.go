package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"newsportal/internal/domain/entity"
	"newsportal/internal/repository"
)

type PublisherRepo struct {
	db DBTX
}

func NewPublisherRepo(db DBTX) repository.PublisherRepository {
	return &PublisherRepo{db: db}
}

func (repo *PublisherRepo) Get(ctx context.Context, id int64) (*entity.Publisher, error) {
	const query = `SELECT id, name, created_at FROM publishers WHERE id = $1 LIMIT 1`
	var p entity.Publisher
	err := repo.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Name, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}

	byID := map[int64]*entity.Publisher{p.ID: &p}
	if err := repo.loadMembers(ctx, byID, "WHERE publisher_id = $1", id); err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return &p, nil
}

func (repo *PublisherRepo) List(ctx context.Context) ([]*entity.Publisher, error) {
	const query = `SELECT id, name, created_at FROM publishers ORDER BY name ASC, id ASC`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	publishers := make([]*entity.Publisher, 0, 16)
	byID := make(map[int64]*entity.Publisher)
	for rows.Next() {
		var p entity.Publisher
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("List: Scan: %w", err)
		}
		publishers = append(publishers, &p)
		byID[p.ID] = &p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	if len(publishers) == 0 {
		return publishers, nil
	}

	if err := repo.loadMembers(ctx, byID, ""); err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	return publishers, nil
}

// loadMembers fills EditorIDs and JournalistIDs of the publishers in byID.
func (repo *PublisherRepo) loadMembers(ctx context.Context, byID map[int64]*entity.Publisher, where string, args ...any) error {
	membership := []struct {
		table  string
		column string
		assign func(p *entity.Publisher, id int64)
	}{
		{"publisher_editors", "editor_id", func(p *entity.Publisher, id int64) { p.EditorIDs = append(p.EditorIDs, id) }},
		{"publisher_journalists", "journalist_id", func(p *entity.Publisher, id int64) { p.JournalistIDs = append(p.JournalistIDs, id) }},
	}

	for _, m := range membership {
		query := fmt.Sprintf(`SELECT publisher_id, %s FROM %s %s ORDER BY publisher_id, %s`,
			m.column, m.table, where, m.column)
		if err := repo.scanEdges(ctx, query, args, func(publisherID, memberID int64) {
			if p, ok := byID[publisherID]; ok {
				m.assign(p, memberID)
			}
		}); err != nil {
			return fmt.Errorf("%s: %w", m.table, err)
		}
	}
	return nil
}

func (repo *PublisherRepo) scanEdges(ctx context.Context, query string, args []any, fn func(a, b int64)) error {
	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var a, b int64
		if err := rows.Scan(&a, &b); err != nil {
			return fmt.Errorf("Scan: %w", err)
		}
		fn(a, b)
	}
	return rows.Err()
}

func (repo *PublisherRepo) Create(ctx context.Context, p *entity.Publisher) error {
	const query = `INSERT INTO publishers (name) VALUES ($1) RETURNING id, created_at`
	if err := repo.db.QueryRowContext(ctx, query, p.Name).Scan(&p.ID, &p.CreatedAt); err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *PublisherRepo) AddEditor(ctx context.Context, publisherID, editorID int64) error {
	const query = `
INSERT INTO publisher_editors (publisher_id, editor_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING`
	if _, err := repo.db.ExecContext(ctx, query, publisherID, editorID); err != nil {
		return fmt.Errorf("AddEditor: %w", err)
	}
	return nil
}

func (repo *PublisherRepo) AddJournalist(ctx context.Context, publisherID, journalistID int64) error {
	const query = `
INSERT INTO publisher_journalists (publisher_id, journalist_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING`
	if _, err := repo.db.ExecContext(ctx, query, publisherID, journalistID); err != nil {
		return fmt.Errorf("AddJournalist: %w", err)
	}
	return nil
}
