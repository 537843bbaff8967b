package circuitbreaker

import (
	"context"
	"database/sql"
	"time"
)

// DBCircuitBreaker guards a connection pool. It satisfies the repositories'
// DBTX interface, so read paths can be built on it directly.
// QueryRowContext is passed through since *sql.Row defers its error to Scan.
type DBCircuitBreaker struct {
	cb *CircuitBreaker
	db *sql.DB
}

func DBConfig() Config {
	return Config{
		Name:             "database",
		MaxRequests:      3,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 1.0,
		MinRequests:      5,
	}
}

func NewDBCircuitBreaker(db *sql.DB) *DBCircuitBreaker {
	return NewDBCircuitBreakerWithConfig(db, DBConfig())
}

func NewDBCircuitBreakerWithConfig(db *sql.DB, cfg Config) *DBCircuitBreaker {
	return &DBCircuitBreaker{cb: New(cfg), db: db}
}

func (d *DBCircuitBreaker) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	res, err := d.cb.Execute(func() (interface{}, error) {
		return d.db.QueryContext(ctx, query, args...)
	})
	if err != nil {
		return nil, err
	}
	return res.(*sql.Rows), nil
}

func (d *DBCircuitBreaker) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := d.cb.Execute(func() (interface{}, error) {
		return d.db.ExecContext(ctx, query, args...)
	})
	if err != nil {
		return nil, err
	}
	return res.(sql.Result), nil
}

func (d *DBCircuitBreaker) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return d.db.QueryRowContext(ctx, query, args...)
}

func (d *DBCircuitBreaker) IsOpen() bool {
	return d.cb.IsOpen()
}
