package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PoolConfig sizes the database/sql pool in front of PostgreSQL.
type PoolConfig struct {
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
	PingTimeout     time.Duration `yaml:"ping_timeout"`
}

func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxOpenConns:    25,
		MaxIdleConns:    10,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 30 * time.Minute,
		PingTimeout:     5 * time.Second,
	}
}

// withDefaults replaces every non-positive field with its default.
// MaxIdleConns never exceeds MaxOpenConns.
func (p PoolConfig) withDefaults() PoolConfig {
	d := DefaultPoolConfig()
	if p.MaxOpenConns <= 0 {
		p.MaxOpenConns = d.MaxOpenConns
	}
	if p.MaxIdleConns <= 0 {
		p.MaxIdleConns = d.MaxIdleConns
	}
	if p.MaxIdleConns > p.MaxOpenConns {
		p.MaxIdleConns = p.MaxOpenConns
	}
	if p.ConnMaxLifetime <= 0 {
		p.ConnMaxLifetime = d.ConnMaxLifetime
	}
	if p.ConnMaxIdleTime <= 0 {
		p.ConnMaxIdleTime = d.ConnMaxIdleTime
	}
	if p.PingTimeout <= 0 {
		p.PingTimeout = d.PingTimeout
	}
	return p
}

func (p PoolConfig) apply(db *sql.DB) {
	db.SetMaxOpenConns(p.MaxOpenConns)
	db.SetMaxIdleConns(p.MaxIdleConns)
	db.SetConnMaxLifetime(p.ConnMaxLifetime)
	db.SetConnMaxIdleTime(p.ConnMaxIdleTime)
}

// Open connects to PostgreSQL through the pgx stdlib driver and pings it
// before returning the pool.
func Open(dsn string, pool PoolConfig) (*sql.DB, error) {
	if dsn == "" {
		return nil, errors.New("database url not set")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pool = pool.withDefaults()
	pool.apply(db)

	ctx, cancel := context.WithTimeout(context.Background(), pool.PingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Info("database pool ready",
		slog.Int("max_open_conns", pool.MaxOpenConns),
		slog.Int("max_idle_conns", pool.MaxIdleConns),
		slog.Duration("conn_max_lifetime", pool.ConnMaxLifetime))
	return db, nil
}
