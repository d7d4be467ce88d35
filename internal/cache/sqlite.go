package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

var _ Cache = (*SQLiteCache)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS cache_entries (
	hash       TEXT NOT NULL,
	field      TEXT NOT NULL,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (hash, field)
)`

type entry struct {
	Field string `db:"field"`
	Value string `db:"value"`
}

// SQLiteCache keeps hash entries in a single sqlite table.
type SQLiteCache struct {
	db *sqlx.DB
}

// NewSQLite opens (or creates) the cache database at path. ":memory:" is accepted.
func NewSQLite(path string) (*SQLiteCache, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("create cache dir: %w", err)
			}
		}
	}

	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	// one connection, otherwise every ":memory:" connection gets its own database
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create cache schema: %w", err)
	}

	return &SQLiteCache{db: db}, nil
}

func (c *SQLiteCache) HSet(ctx context.Context, hash, field, value string) error {
	query := `
		INSERT INTO cache_entries (hash, field, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (hash, field) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := c.db.ExecContext(ctx, query, hash, field, value, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("hset %s/%s: %w", hash, field, err)
	}
	return nil
}

func (c *SQLiteCache) HGet(ctx context.Context, hash, field string) (string, bool, error) {
	var value string
	err := c.db.GetContext(ctx, &value, `SELECT value FROM cache_entries WHERE hash = ? AND field = ?`, hash, field)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("hget %s/%s: %w", hash, field, err)
	}
	return value, true, nil
}

func (c *SQLiteCache) HGetAll(ctx context.Context, hash string) (map[string]string, error) {
	var entries []entry
	if err := c.db.SelectContext(ctx, &entries, `SELECT field, value FROM cache_entries WHERE hash = ?`, hash); err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", hash, err)
	}

	out := make(map[string]string, len(entries))
	for _, e := range entries {
		out[e.Field] = e.Value
	}
	return out, nil
}

func (c *SQLiteCache) HDel(ctx context.Context, hash, field string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE hash = ? AND field = ?`, hash, field); err != nil {
		return fmt.Errorf("hdel %s/%s: %w", hash, field, err)
	}
	return nil
}

func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
