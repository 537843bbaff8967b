package db

import (
	"database/sql"
	"fmt"
)

// schema lists table definitions in dependency order.
var schema = []struct {
	table string
	ddl   string
}{
	{"principals", `
CREATE TABLE IF NOT EXISTS principals (
    id            BIGSERIAL PRIMARY KEY,
    username      VARCHAR(150) NOT NULL UNIQUE,
    email         TEXT NOT NULL DEFAULT '',
    password_hash TEXT NOT NULL,
    role          VARCHAR(20) NOT NULL CHECK (role IN ('reader', 'editor', 'journalist')),
    bio           TEXT NOT NULL DEFAULT '',
    newsletter    TEXT,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    CONSTRAINT chk_reader_no_newsletter CHECK (role <> 'reader' OR newsletter IS NULL)
)`},
	{"publishers", `
CREATE TABLE IF NOT EXISTS publishers (
    id         BIGSERIAL PRIMARY KEY,
    name       VARCHAR(200) NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`},
	{"publisher_editors", `
CREATE TABLE IF NOT EXISTS publisher_editors (
    publisher_id BIGINT NOT NULL REFERENCES publishers(id) ON DELETE CASCADE,
    editor_id    BIGINT NOT NULL REFERENCES principals(id) ON DELETE CASCADE,
    PRIMARY KEY (publisher_id, editor_id)
)`},
	{"publisher_journalists", `
CREATE TABLE IF NOT EXISTS publisher_journalists (
    publisher_id  BIGINT NOT NULL REFERENCES publishers(id) ON DELETE CASCADE,
    journalist_id BIGINT NOT NULL REFERENCES principals(id) ON DELETE CASCADE,
    PRIMARY KEY (publisher_id, journalist_id)
)`},
	{"reader_publisher_subscriptions", `
CREATE TABLE IF NOT EXISTS reader_publisher_subscriptions (
    reader_id    BIGINT NOT NULL REFERENCES principals(id) ON DELETE CASCADE,
    publisher_id BIGINT NOT NULL REFERENCES publishers(id) ON DELETE CASCADE,
    PRIMARY KEY (reader_id, publisher_id)
)`},
	{"reader_journalist_subscriptions", `
CREATE TABLE IF NOT EXISTS reader_journalist_subscriptions (
    reader_id     BIGINT NOT NULL REFERENCES principals(id) ON DELETE CASCADE,
    journalist_id BIGINT NOT NULL REFERENCES principals(id) ON DELETE CASCADE,
    PRIMARY KEY (reader_id, journalist_id)
)`},
	{"articles", `
CREATE TABLE IF NOT EXISTS articles (
    id            BIGSERIAL PRIMARY KEY,
    title         VARCHAR(200) NOT NULL,
    body          TEXT NOT NULL,
    publisher_id  BIGINT NOT NULL REFERENCES publishers(id) ON DELETE CASCADE,
    journalist_id BIGINT NOT NULL REFERENCES principals(id) ON DELETE CASCADE,
    approved      BOOLEAN NOT NULL DEFAULT FALSE,
    approved_at   TIMESTAMPTZ,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`},
	{"journalist_published_articles", `
CREATE TABLE IF NOT EXISTS journalist_published_articles (
    journalist_id BIGINT NOT NULL REFERENCES principals(id) ON DELETE CASCADE,
    article_id    BIGINT NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
    PRIMARY KEY (journalist_id, article_id)
)`},
	{"approval_outbox", `
CREATE TABLE IF NOT EXISTS approval_outbox (
    article_id   BIGINT NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
    approved_at  TIMESTAMPTZ NOT NULL,
    attempts     INTEGER NOT NULL DEFAULT 0,
    last_error   TEXT NOT NULL DEFAULT '',
    delivered_at TIMESTAMPTZ,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (article_id, approved_at)
)`},
}

var indexes = []string{
	// 一般公開リスト (approved = TRUE, ORDER BY created_at DESC)
	`CREATE INDEX IF NOT EXISTS idx_articles_approved_created_at ON articles(approved, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_articles_publisher_id ON articles(publisher_id)`,
	`CREATE INDEX IF NOT EXISTS idx_articles_journalist_id ON articles(journalist_id)`,
	// 承認通知の受信者計算用
	`CREATE INDEX IF NOT EXISTS idx_rps_publisher_id ON reader_publisher_subscriptions(publisher_id)`,
	`CREATE INDEX IF NOT EXISTS idx_rjs_journalist_id ON reader_journalist_subscriptions(journalist_id)`,
	`CREATE INDEX IF NOT EXISTS idx_principals_role ON principals(role)`,
	`CREATE INDEX IF NOT EXISTS idx_approval_outbox_pending ON approval_outbox(created_at) WHERE delivered_at IS NULL`,
}

// MigrateUp creates every table and index. It is safe to run repeatedly.
func MigrateUp(db *sql.DB) error {
	for _, s := range schema {
		if _, err := db.Exec(s.ddl); err != nil {
			return fmt.Errorf("create %s: %w", s.table, err)
		}
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

// MigrateDown drops every table in reverse dependency order.
func MigrateDown(db *sql.DB) error {
	for i := len(schema) - 1; i >= 0; i-- {
		if _, err := db.Exec(`DROP TABLE IF EXISTS ` + schema[i].table + ` CASCADE`); err != nil {
			return fmt.Errorf("drop %s: %w", schema[i].table, err)
		}
	}
	return nil
}
