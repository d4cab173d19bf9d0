package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"tagit/internal/ports"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

const (
	schemaVersion = "1"
	busyTimeoutMS = 5000
)

// Registered database/sql driver names
const (
	DriverPure = "sqlite"  // modernc.org/sqlite, no cgo
	DriverCGO  = "sqlite3" // github.com/mattn/go-sqlite3
)

// Storage implements ports.TagStorage on a SQLite database.
// Each tag is one row; position keeps the insertion order of the set.
type Storage struct {
	db     *sql.DB
	dbPath string
}

// Ensure Storage implements TagStorage and TagMover
var (
	_ ports.TagStorage = (*Storage)(nil)
	_ ports.TagMover   = (*Storage)(nil)
)

// Open opens (creating if needed) the database at path with the pure Go
// driver and applies the schema
func Open(ctx context.Context, path string) (*Storage, error) {
	return OpenDriver(ctx, DriverPure, path)
}

// OpenDriver is Open with an explicit driver name
func OpenDriver(ctx context.Context, driver, path string) (*Storage, error) {
	switch driver {
	case "":
		driver = DriverPure
	case DriverPure, DriverCGO:
	default:
		return nil, fmt.Errorf("unknown sqlite driver %q", driver)
	}

	path, err := expandHome(path)
	if err != nil {
		return nil, err
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open(driver, dsn(driver, path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Storage{db: db, dbPath: path}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}
	return s, nil
}

// dsn puts the connection pragmas in the DSN so every pooled connection
// applies them on connect. Writes take the lock at BEGIN (_txlock=immediate)
// and wait up to busyTimeoutMS for it instead of failing with SQLITE_BUSY.
func dsn(driver, path string) string {
	if driver == DriverCGO {
		return fmt.Sprintf("%s?_busy_timeout=%d&_journal_mode=WAL&_synchronous=NORMAL&_txlock=immediate",
			path, busyTimeoutMS)
	}
	return fmt.Sprintf("%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_txlock=immediate",
		path, busyTimeoutMS)
}

// NewStorageWithDB wraps an already open database. The schema is assumed to exist.
func NewStorageWithDB(db *sql.DB) *Storage {
	return &Storage{db: db}
}

// Path returns the database file, empty when built with NewStorageWithDB
func (s *Storage) Path() string {
	return s.dbPath
}

func (s *Storage) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS tags (
			identity TEXT NOT NULL,
			position INTEGER NOT NULL,
			tag TEXT NOT NULL,
			PRIMARY KEY (identity, position)
		);
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_tags_tag ON tags(tag);
	`)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)`, schemaVersion)
	return err
}

// Read returns the tags stored for key in insertion order
func (s *Storage) Read(ctx context.Context, key string) ([]string, bool, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tag FROM tags WHERE identity = ? ORDER BY position`, key)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, false, err
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return tags, len(tags) > 0, nil
}

// Write replaces the rows of key in one transaction
func (s *Storage) Write(ctx context.Context, key string, tags []string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return replaceTags(ctx, tx, key, tags)
	})
}

// Delete removes every row of key
func (s *Storage) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE identity = ?`, key)
	return err
}

// Keys returns every identity with at least one row, ascending
func (s *Storage) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT identity FROM tags ORDER BY identity`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// Close closes the database connection
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DatabasePath returns the database file used for a workspace root
func DatabasePath(root string) string {
	// XDG data directory
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}

	return filepath.Join(dataHome, "tagit", hashRoot(root)+".db")
}

// hashRoot returns a short hash of the workspace root
func hashRoot(root string) string {
	h := sha256.Sum256([]byte(root))
	return hex.EncodeToString(h[:8]) // First 8 bytes = 16 hex chars
}

func expandHome(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}
