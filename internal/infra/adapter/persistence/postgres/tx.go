package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"newsportal/internal/repository"
)

// DBTX is the subset of *sql.DB and *sql.Tx the repositories need.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// NewRepositories binds every repository to the same connection or transaction.
func NewRepositories(db DBTX) repository.Repositories {
	return repository.Repositories{
		Principals:    NewPrincipalRepo(db),
		Publishers:    NewPublisherRepo(db),
		Subscriptions: NewSubscriptionRepo(db),
		Articles:      NewArticleRepo(db),
		Outbox:        NewOutboxRepo(db),
	}
}

// Transactor runs units of work in a read-committed sql.Tx.
type Transactor struct {
	db *sql.DB
}

func NewTransactor(db *sql.DB) repository.Transactor {
	return &Transactor{db: db}
}

func (t *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) (err error) {
	tx, err := t.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("WithinTx: begin: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, NewRepositories(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("WithinTx: commit: %w", err)
	}
	return nil
}
