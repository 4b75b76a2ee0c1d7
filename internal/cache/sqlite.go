package cache

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const table = "translation_cache"

// SQLite is a Cache backed by a SQLite database file
type SQLite struct {
	db     *sql.DB
	sq     sq.StatementBuilderType
	logger *slog.Logger
}

var _ Cache = (*SQLite)(nil)

// Option configures a SQLite cache
type Option func(*SQLite)

// WithLogger sets the logger used for migrations and maintenance
func WithLogger(logger *slog.Logger) Option {
	return func(c *SQLite) {
		c.logger = logger
	}
}

// Open opens the database at dbPath, creating it and applying migrations.
// Use ":memory:" for a private in-memory cache.
func Open(dbPath string, opts ...Option) (*SQLite, error) {
	c := &SQLite{sq: sq.StatementBuilder, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}

	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
			return nil, fmt.Errorf("make cache dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if dbPath == ":memory:" {
		// every pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA busy_timeout = 5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("pragma %q: %w", p, err)
		}
	}
	if err := migrate(db, c.logger); err != nil {
		_ = db.Close()
		return nil, err
	}
	c.db = db
	return c, nil
}

func migrate(db *sql.DB, logger *slog.Logger) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
        name TEXT PRIMARY KEY,
        applied_at TEXT NOT NULL
    )`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, name := range files {
		var n int
		err := db.QueryRow(`SELECT 1 FROM schema_migrations WHERE name = ?`, name).Scan(&n)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		b, err := migrationsFS.ReadFile(path.Join("migrations", name))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := db.Exec(string(b)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		if _, err := db.Exec(`INSERT INTO schema_migrations(name, applied_at) VALUES (?, ?)`,
			name, time.Now().UTC().Format(time.RFC3339)); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
		logger.Debug("applied cache migration", "name", name)
	}
	return nil
}

// Get returns the item stored under key, or nil when missing or expired
func (c *SQLite) Get(ctx context.Context, key string, now time.Time) (*Item, error) {
	q := c.sq.Select("key", "value", "created_at", "expires_at").
		From(table).
		Where(sq.Eq{"key": key}).
		Where(sq.Gt{"expires_at": now.UnixMilli()}).
		Limit(1)
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	var (
		item             Item
		value            string
		created, expires int64
	)
	err = c.db.QueryRowContext(ctx, sqlStr, args...).Scan(&item.Key, &value, &created, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	item.Value = []byte(value)
	item.CreatedAt = time.UnixMilli(created)
	item.ExpiresAt = time.UnixMilli(expires)
	return &item, nil
}

// Put inserts or replaces item
func (c *SQLite) Put(ctx context.Context, item Item) error {
	q := c.sq.Insert(table).
		Columns("key", "value", "created_at", "expires_at").
		Values(item.Key, string(item.Value), item.CreatedAt.UnixMilli(), item.ExpiresAt.UnixMilli()).
		Suffix("ON CONFLICT(key) DO UPDATE SET value=excluded.value, created_at=excluded.created_at, expires_at=excluded.expires_at")
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return err
	}
	if _, err := c.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	return nil
}

// Purge deletes expired items and returns how many were removed
func (c *SQLite) Purge(ctx context.Context, now time.Time) (int64, error) {
	sqlStr, args, err := c.sq.Delete(table).Where(sq.LtOrEq{"expires_at": now.UnixMilli()}).ToSql()
	if err != nil {
		return 0, err
	}
	res, err := c.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, fmt.Errorf("cache purge: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	c.logger.Debug("purged expired translations", "count", n)
	return n, nil
}

// Clear deletes every item
func (c *SQLite) Clear(ctx context.Context) error {
	sqlStr, args, err := c.sq.Delete(table).ToSql()
	if err != nil {
		return err
	}
	if _, err := c.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("cache clear: %w", err)
	}
	return nil
}

// Len counts stored items, expired ones included
func (c *SQLite) Len(ctx context.Context) (int64, error) {
	sqlStr, args, err := c.sq.Select("COUNT(*)").From(table).ToSql()
	if err != nil {
		return 0, err
	}
	var n int64
	if err := c.db.QueryRowContext(ctx, sqlStr, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("cache count: %w", err)
	}
	return n, nil
}

// Close closes the database
func (c *SQLite) Close() error {
	return c.db.Close()
}
