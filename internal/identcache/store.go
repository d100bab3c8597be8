// Package identcache persists resolved disc identities in SQLite, keyed by
// file path.
//
// The cache is the integration point the resolver consults before re-deriving
// identity from scratch. Entries are written after successful resolution and
// forgotten when an operator rejects them. Stale reads are acceptable; the
// resolver treats every cache failure as a miss.
package identcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"discern/internal/config"
	"discern/internal/identity"
)

// schemaVersion is the current schema version. Bump when the schema changes;
// mismatched databases are rejected rather than migrated in place.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the
// expected version.
var ErrSchemaMismatch = errors.New("identity cache schema version mismatch")

const schemaSQL = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS identities (
	path        TEXT PRIMARY KEY,
	title       TEXT NOT NULL DEFAULT '',
	region      TEXT NOT NULL DEFAULT '',
	serial      TEXT NOT NULL DEFAULT '',
	version     TEXT NOT NULL DEFAULT '',
	disc_number INTEGER NOT NULL DEFAULT 0,
	disc_count  INTEGER NOT NULL DEFAULT 0,
	updated_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_identities_serial ON identities(serial);
`

// Store manages identity persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the cache database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.CacheDir, "identity.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	var version int
	err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := s.db.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	case version != schemaVersion:
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to rebuild)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

// Get returns the cached identity for a path. A miss is (zero, false, nil).
func (s *Store) Get(ctx context.Context, path string) (identity.CachedIdentity, bool, error) {
	var cached identity.CachedIdentity
	err := s.db.QueryRowContext(ctx,
		`SELECT title, region, serial, version, disc_number, disc_count
		 FROM identities WHERE path = ?`, path).
		Scan(&cached.Title, &cached.Region, &cached.Serial, &cached.Version,
			&cached.DiscNumber, &cached.DiscCount)
	if errors.Is(err, sql.ErrNoRows) {
		return identity.CachedIdentity{}, false, nil
	}
	if err != nil {
		return identity.CachedIdentity{}, false, fmt.Errorf("query identity: %w", err)
	}
	return cached, true, nil
}

// Put stores the identity fields of a resolved record, replacing any previous
// entry for the same path.
func (s *Store) Put(ctx context.Context, record identity.Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO identities (path, title, region, serial, version, disc_number, disc_count, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET
			title = excluded.title,
			region = excluded.region,
			serial = excluded.serial,
			version = excluded.version,
			disc_number = excluded.disc_number,
			disc_count = excluded.disc_count,
			updated_at = excluded.updated_at`,
		record.Path, record.Title, record.Region, record.Serial, record.Version,
		record.DiscNumber, record.DiscCount, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("store identity: %w", err)
	}
	return nil
}

// Forget removes the cached identity for a path. Removing an absent path is
// not an error.
func (s *Store) Forget(ctx context.Context, path string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM identities WHERE path = ?", path); err != nil {
		return fmt.Errorf("forget identity: %w", err)
	}
	return nil
}
