// Package kvstore is the SQLite database behind settings and workspaces.
package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/starford/echonotes/internal/apperr"
	"github.com/starford/echonotes/internal/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS settings (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS workspaces (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT NOT NULL,
	emoji_logo  TEXT NOT NULL,
	banner      TEXT NOT NULL DEFAULT '',
	created_at  DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_workspaces_created ON workspaces(created_at);
`

// DB wraps a sql.DB with settings and workspace operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("kvstore: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("kvstore: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("kvstore: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks the connection. Used by the readiness probe.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Get returns the value stored under key.
func (db *DB) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := db.conn.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kvstore: get %s: %w", key, err)
	}
	return v, true, nil
}

// Set inserts or replaces the value under key.
func (db *DB) Set(ctx context.Context, key, value string) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value      = excluded.value,
			updated_at = excluded.updated_at
	`, key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("kvstore: set %s: %w", key, err)
	}
	return nil
}

// InsertWorkspace stores a new workspace.
func (db *DB) InsertWorkspace(ctx context.Context, w models.Workspace) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO workspaces (id, name, description, emoji_logo, banner, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, w.ID, w.Name, w.Description, w.EmojiLogo, w.Banner, w.CreatedAt.UTC())
	var sqErr sqlite3.Error
	if errors.As(err, &sqErr) && sqErr.Code == sqlite3.ErrConstraint {
		return fmt.Errorf("kvstore: workspace %s: %w", w.ID, apperr.ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("kvstore: insert workspace: %w", err)
	}
	return nil
}

// ListWorkspaces returns workspaces oldest first.
func (db *DB) ListWorkspaces(ctx context.Context) ([]models.Workspace, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, name, description, emoji_logo, banner, created_at
		FROM workspaces ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("kvstore: list workspaces: %w", err)
	}
	defer rows.Close()

	var out []models.Workspace
	for rows.Next() {
		var w models.Workspace
		if err := rows.Scan(&w.ID, &w.Name, &w.Description, &w.EmojiLogo, &w.Banner, &w.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}
