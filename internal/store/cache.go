// Package store persists computed block hashes in SQLite so repeated requests for
// unchanged files skip decoding entirely.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultFileName is the database file created under the user config directory.
const DefaultFileName = "image-blockhash-cache.db"

// Key identifies one cached hash. A file that changes size or modification time
// no longer matches its old entries.
type Key struct {
	Path    string
	Size    int64
	ModTime time.Time
	Bits    int
	Method  string
}

// Entry is a cached hash together with the image facts reported alongside it.
type Entry struct {
	Hash   string
	Width  int
	Height int
	Format string
}

// Cache is a SQLite-backed hash cache. It is safe for concurrent use.
type Cache struct {
	db *sql.DB
}

// DefaultPath returns the cache location under os.UserConfigDir, falling back to
// the working directory.
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = "."
	}
	return filepath.Join(configDir, DefaultFileName)
}

// Open opens (creating if needed) the cache database at path.
func Open(path string) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite serialises writers; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	queries := []string{
		`PRAGMA journal_mode=WAL`,
		`CREATE TABLE IF NOT EXISTS hash_cache (
			path TEXT NOT NULL,
			size INTEGER NOT NULL,
			mod_time TEXT NOT NULL,
			bits INTEGER NOT NULL,
			method TEXT NOT NULL,
			hash TEXT NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			format TEXT NOT NULL,
			PRIMARY KEY (path, bits, method)
		)`,
	}
	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialise cache schema: %w", err)
		}
	}

	return &Cache{db: db}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the cached entry for key. The second result is false on a miss,
// including when the stored size or modification time differ.
func (c *Cache) Get(key Key) (Entry, bool, error) {
	var (
		e       Entry
		size    int64
		modTime string
	)
	err := c.db.QueryRow(
		`SELECT size, mod_time, hash, width, height, format FROM hash_cache
		 WHERE path = ? AND bits = ? AND method = ?`,
		key.Path, key.Bits, key.Method,
	).Scan(&size, &modTime, &e.Hash, &e.Width, &e.Height, &e.Format)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("failed to query hash cache: %w", err)
	}
	if size != key.Size || modTime != formatTime(key.ModTime) {
		return Entry{}, false, nil
	}
	return e, true, nil
}

// Put stores e under key, replacing any previous entry for the same path, bit
// count and method.
func (c *Cache) Put(key Key, e Entry) error {
	_, err := c.db.Exec(
		`INSERT OR REPLACE INTO hash_cache
		 (path, size, mod_time, bits, method, hash, width, height, format)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		key.Path, key.Size, formatTime(key.ModTime), key.Bits, key.Method,
		e.Hash, e.Width, e.Height, e.Format,
	)
	if err != nil {
		return fmt.Errorf("failed to store hash: %w", err)
	}
	return nil
}

// Delete removes every cached entry for path.
func (c *Cache) Delete(path string) error {
	if _, err := c.db.Exec(`DELETE FROM hash_cache WHERE path = ?`, path); err != nil {
		return fmt.Errorf("failed to delete cached hashes: %w", err)
	}
	return nil
}

// Count returns the number of cached entries.
func (c *Cache) Count() (int, error) {
	var n int
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM hash_cache`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count cached hashes: %w", err)
	}
	return n, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
