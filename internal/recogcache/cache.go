// Package recogcache memoizes per-screenshot recognition results in a local
// SQLite database, keyed by filename and modification time, so re-running a
// folder never repeats a recognition call for an unchanged screenshot.
package recogcache

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped when the table shape changes.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was created by a different cache
// revision.
var ErrSchemaMismatch = errors.New("recognition cache schema mismatch")

// Entry is one cached screenshot recognition.
type Entry struct {
	Filename  string
	ModTime   int64
	HandID    string
	TableType string
	Positions map[string]string
}

// Store provides access to the cache database.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the cache database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure cache directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
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
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin schema tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()
		if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
		return tx.Commit()
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to rebuild)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

// Get returns the cached entry for the filename at the given modification
// time. The boolean reports a hit; a stale entry for a changed file is a
// miss.
func (s *Store) Get(ctx context.Context, filename string, modTime int64) (Entry, bool, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT hand_id, table_type, positions FROM recognitions WHERE filename = ? AND mod_time = ?",
		filename, modTime,
	)
	entry := Entry{Filename: filename, ModTime: modTime}
	var positionsJSON string
	if err := row.Scan(&entry.HandID, &entry.TableType, &positionsJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, false, nil
		}
		return Entry{}, false, fmt.Errorf("query cache: %w", err)
	}
	if err := json.Unmarshal([]byte(positionsJSON), &entry.Positions); err != nil {
		return Entry{}, false, fmt.Errorf("decode cached positions: %w", err)
	}
	return entry, true, nil
}

// Put stores or replaces the entry for its filename and modification time.
func (s *Store) Put(ctx context.Context, entry Entry) error {
	positionsJSON, err := json.Marshal(entry.Positions)
	if err != nil {
		return fmt.Errorf("encode positions: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO recognitions (filename, mod_time, hand_id, table_type, positions, created_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		entry.Filename, entry.ModTime, entry.HandID, entry.TableType, string(positionsJSON),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("store cache entry: %w", err)
	}
	return nil
}

// Prune removes entries whose filename no longer appears in the keep set.
func (s *Store) Prune(ctx context.Context, keep map[string]struct{}) (int64, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT filename FROM recognitions")
	if err != nil {
		return 0, fmt.Errorf("list cache filenames: %w", err)
	}
	defer rows.Close()

	var stale []string
	for rows.Next() {
		var filename string
		if err := rows.Scan(&filename); err != nil {
			return 0, fmt.Errorf("scan cache filename: %w", err)
		}
		if _, ok := keep[filename]; !ok {
			stale = append(stale, filename)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate cache filenames: %w", err)
	}

	var removed int64
	for _, filename := range stale {
		res, err := s.db.ExecContext(ctx, "DELETE FROM recognitions WHERE filename = ?", filename)
		if err != nil {
			return removed, fmt.Errorf("prune cache entry %s: %w", filename, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			removed += n
		}
	}
	return removed, nil
}
