package out

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"toolhub/internal/modules/cache/domain"
	cacheout "toolhub/internal/modules/cache/port/out"
	apperrors "toolhub/internal/platform/errors"

	_ "modernc.org/sqlite"
)

// Fixed-width so that lexicographic comparison in SQL matches
// chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type SQLiteMetadataStore struct {
	db *sql.DB
}

func NewSQLiteMetadataStore(dbPath string) (cacheout.MetadataStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	store := &SQLiteMetadataStore{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteMetadataStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS cache_entries (
  key TEXT PRIMARY KEY,
  local_path TEXT NOT NULL,
  sha256 TEXT NOT NULL,
  byte_size INTEGER NOT NULL,
  cached_at TEXT NOT NULL,
  expires_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cache_entries_expires_at ON cache_entries(expires_at);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create cache_entries table: %w", err)
	}
	return nil
}

func (s *SQLiteMetadataStore) Upsert(ctx context.Context, entry domain.Entry) error {
	const stmt = `
INSERT INTO cache_entries (key, local_path, sha256, byte_size, cached_at, expires_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(key) DO UPDATE SET
  local_path=excluded.local_path,
  sha256=excluded.sha256,
  byte_size=excluded.byte_size,
  cached_at=excluded.cached_at,
  expires_at=excluded.expires_at;
`
	_, err := s.db.ExecContext(ctx, stmt,
		entry.Key,
		entry.LocalPath,
		entry.SHA256,
		entry.ByteSize,
		entry.CachedAt.UTC().Format(timeLayout),
		entry.ExpiresAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("upsert cache entry: %w", err)
	}
	return nil
}

func (s *SQLiteMetadataStore) Get(ctx context.Context, key string) (domain.Entry, error) {
	const query = `
SELECT key, local_path, sha256, byte_size, cached_at, expires_at
FROM cache_entries WHERE key = ?;
`
	row := s.db.QueryRowContext(ctx, query, key)
	entry, err := scanEntry(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Entry{}, apperrors.ErrNotFound
	}
	if err != nil {
		return domain.Entry{}, fmt.Errorf("load cache entry: %w", err)
	}
	return entry, nil
}

func (s *SQLiteMetadataStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete cache entry: %w", err)
	}
	return nil
}

func (s *SQLiteMetadataStore) ListExpired(ctx context.Context, before time.Time) ([]domain.Entry, error) {
	const query = `
SELECT key, local_path, sha256, byte_size, cached_at, expires_at
FROM cache_entries WHERE expires_at < ?;
`
	rows, err := s.db.QueryContext(ctx, query, before.UTC().Format(timeLayout))
	if err != nil {
		return nil, fmt.Errorf("query expired entries: %w", err)
	}
	defer rows.Close()

	var out []domain.Entry
	for rows.Next() {
		entry, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan expired entry: %w", err)
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expired entries: %w", err)
	}
	return out, nil
}

func (s *SQLiteMetadataStore) DeleteAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM cache_entries`); err != nil {
		return fmt.Errorf("delete all cache entries: %w", err)
	}
	return nil
}

func scanEntry(scan func(dest ...any) error) (domain.Entry, error) {
	var entry domain.Entry
	var cachedAt, expiresAt string
	if err := scan(&entry.Key, &entry.LocalPath, &entry.SHA256, &entry.ByteSize, &cachedAt, &expiresAt); err != nil {
		return domain.Entry{}, err
	}
	var err error
	if entry.CachedAt, err = time.Parse(timeLayout, cachedAt); err != nil {
		return domain.Entry{}, fmt.Errorf("parse cached_at: %w", err)
	}
	if entry.ExpiresAt, err = time.Parse(timeLayout, expiresAt); err != nil {
		return domain.Entry{}, fmt.Errorf("parse expires_at: %w", err)
	}
	return entry, nil
}
