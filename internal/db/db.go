package db

import (
	"database/sql"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// Connection pragmas, in the _pragma=name(value) form the modernc driver
// applies to every new connection.
const (
	filePragmas   = "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	memoryPragmas = "?_pragma=foreign_keys(1)"
)

// DB wraps a sql.DB with pageutil-specific helpers.
type DB struct {
	*sql.DB
	path string
}

// Open creates or opens a SQLite database at the given path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "creating database directory")
	}

	sqlDB, err := sql.Open("sqlite", path+filePragmas)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, errors.Wrap(err, "pinging database")
	}

	d := &DB{DB: sqlDB, path: path}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, errors.Wrap(err, "running migrations")
	}

	return d, nil
}

// OpenMemory creates an in-memory SQLite database (useful for testing).
// Every pooled connection would get its own empty database, so the pool
// is pinned to one connection.
func OpenMemory() (*DB, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:"+memoryPragmas)
	if err != nil {
		return nil, errors.Wrap(err, "opening in-memory database")
	}
	sqlDB.SetMaxOpenConns(1)

	d := &DB{DB: sqlDB, path: ":memory:"}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, errors.Wrap(err, "running migrations")
	}

	return d, nil
}

// Path returns the file the database was opened from.
func (d *DB) Path() string { return d.path }

// migrate runs all schema migrations.
func (d *DB) migrate() error {
	_, err := d.Exec(schema)
	return err
}

// schema contains the full database schema. New tables are added here.
const schema = `
CREATE TABLE IF NOT EXISTS lang_strings (
    lang TEXT NOT NULL,
    component TEXT NOT NULL,
    identifier TEXT NOT NULL,
    value TEXT NOT NULL,
    updated_at DATETIME NOT NULL DEFAULT (datetime('now')),
    PRIMARY KEY(lang, component, identifier)
);

CREATE INDEX IF NOT EXISTS idx_lang_strings_component ON lang_strings(lang, component);

CREATE TABLE IF NOT EXISTS pending_events (
    id TEXT PRIMARY KEY,
    timestamp DATETIME NOT NULL DEFAULT (datetime('now')),
    op_id TEXT NOT NULL,
    kind TEXT NOT NULL CHECK(kind IN ('begin','end')),
    count INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_pending_events_timestamp ON pending_events(timestamp);
CREATE INDEX IF NOT EXISTS idx_pending_events_op ON pending_events(op_id);
`
