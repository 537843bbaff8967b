package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"newsportal/internal/domain/entity"
	"newsportal/internal/repository"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

type PrincipalRepo struct {
	db DBTX
}

func NewPrincipalRepo(db DBTX) repository.PrincipalRepository {
	return &PrincipalRepo{db: db}
}

const principalColumns = `id, username, email, password_hash, role, bio, newsletter, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPrincipal(s rowScanner) (*entity.Principal, error) {
	var (
		p          entity.Principal
		role       string
		newsletter sql.NullString
	)
	if err := s.Scan(&p.ID, &p.Username, &p.Email, &p.PasswordHash,
		&role, &p.Bio, &newsletter, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.Role = entity.Role(role)
	if newsletter.Valid {
		v := newsletter.String
		p.Newsletter = &v
	}
	return &p, nil
}

func (repo *PrincipalRepo) Get(ctx context.Context, id int64) (*entity.Principal, error) {
	const query = `SELECT ` + principalColumns + ` FROM principals WHERE id = $1 LIMIT 1`
	p, err := scanPrincipal(repo.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return p, nil
}

func (repo *PrincipalRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Principal, error) {
	const query = `SELECT ` + principalColumns + ` FROM principals WHERE id = $1 FOR UPDATE`
	p, err := scanPrincipal(repo.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetForUpdate: %w", err)
	}
	return p, nil
}

func (repo *PrincipalRepo) GetByUsername(ctx context.Context, username string) (*entity.Principal, error) {
	const query = `SELECT ` + principalColumns + ` FROM principals WHERE username = $1 LIMIT 1`
	p, err := scanPrincipal(repo.db.QueryRowContext(ctx, query, username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetByUsername: %w", err)
	}
	return p, nil
}

func (repo *PrincipalRepo) List(ctx context.Context) ([]*entity.Principal, error) {
	const query = `SELECT ` + principalColumns + ` FROM principals ORDER BY id ASC`
	return repo.list(ctx, "List", query)
}

func (repo *PrincipalRepo) ListByRole(ctx context.Context, role entity.Role) ([]*entity.Principal, error) {
	const query = `SELECT ` + principalColumns + ` FROM principals WHERE role = $1 ORDER BY id ASC`
	return repo.list(ctx, "ListByRole", query, string(role))
}

func (repo *PrincipalRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.Principal, error) {
	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	principals := make([]*entity.Principal, 0, 32)
	for rows.Next() {
		p, err := scanPrincipal(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: Scan: %w", op, err)
		}
		principals = append(principals, p)
	}
	return principals, rows.Err()
}

func (repo *PrincipalRepo) Create(ctx context.Context, p *entity.Principal) error {
	const query = `
INSERT INTO principals (username, email, password_hash, role, bio, newsletter)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, created_at`
	err := repo.db.QueryRowContext(ctx, query,
		p.Username, p.Email, p.PasswordHash, string(p.Role), p.Bio, nullString(p.Newsletter),
	).Scan(&p.ID, &p.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("Create: username %q: %w", p.Username, entity.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *PrincipalRepo) Update(ctx context.Context, p *entity.Principal) error {
	const query = `
UPDATE principals
SET username = $1, email = $2, role = $3, bio = $4, newsletter = $5
WHERE id = $6`
	res, err := repo.db.ExecContext(ctx, query,
		p.Username, p.Email, string(p.Role), p.Bio, nullString(p.Newsletter), p.ID)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Update: RowsAffected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("Update: %w", entity.ErrNotFound)
	}
	return nil
}

func (repo *PrincipalRepo) AddToPortfolio(ctx context.Context, journalistID, articleID int64) error {
	const query = `
INSERT INTO journalist_published_articles (journalist_id, article_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING`
	if _, err := repo.db.ExecContext(ctx, query, journalistID, articleID); err != nil {
		return fmt.Errorf("AddToPortfolio: %w", err)
	}
	return nil
}

func (repo *PrincipalRepo) ClearPortfolio(ctx context.Context, principalID int64) error {
	const query = `DELETE FROM journalist_published_articles WHERE journalist_id = $1`
	if _, err := repo.db.ExecContext(ctx, query, principalID); err != nil {
		return fmt.Errorf("ClearPortfolio: %w", err)
	}
	return nil
}

func (repo *PrincipalRepo) PortfolioSize(ctx context.Context, principalID int64) (int, error) {
	const query = `SELECT COUNT(*) FROM journalist_published_articles WHERE journalist_id = $1`
	var n int
	if err := repo.db.QueryRowContext(ctx, query, principalID).Scan(&n); err != nil {
		return 0, fmt.Errorf("PortfolioSize: %w", err)
	}
	return n, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
