package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB with concierge-specific helpers.
type DB struct {
	*sql.DB
	path string
}

// Open creates or opens a SQLite database at the given path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	d := &DB{DB: sqlDB, path: path}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

// OpenMemory creates an in-memory SQLite database (useful for testing).
func OpenMemory() (*DB, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}

	d := &DB{DB: sqlDB, path: ":memory:"}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

// Path returns the filesystem path of the database.
func (d *DB) Path() string { return d.path }

// migrate runs all schema migrations.
func (d *DB) migrate() error {
	_, err := d.Exec(schema)
	return err
}

// schema contains the full database schema. New tables are added here.
const schema = `
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    pending TEXT NOT NULL DEFAULT 'none' CHECK(pending IN ('none','awaiting_property','awaiting_support_confirmation')),
    last_intent TEXT NOT NULL DEFAULT '',
    last_property TEXT NOT NULL DEFAULT '',
    last_message TEXT NOT NULL DEFAULT '',
    last_amenity TEXT NOT NULL DEFAULT '',
    last_language TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL DEFAULT (datetime('now')),
    updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS knowledge (
    property TEXT NOT NULL,
    language TEXT NOT NULL,
    category TEXT NOT NULL CHECK(category IN ('general','daily','amenity','menu')),
    name TEXT NOT NULL DEFAULT '',
    content TEXT NOT NULL,
    day TEXT NOT NULL DEFAULT '',
    updated_at DATETIME NOT NULL DEFAULT (datetime('now')),
    UNIQUE(property, language, category, name, day)
);

CREATE INDEX IF NOT EXISTS idx_knowledge_lookup ON knowledge(property, language);

CREATE TABLE IF NOT EXISTS question_log (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL DEFAULT '',
    message TEXT NOT NULL,
    property TEXT NOT NULL DEFAULT '',
    language TEXT NOT NULL DEFAULT '',
    is_question INTEGER NOT NULL DEFAULT 0,
    category TEXT NOT NULL DEFAULT '',
    facility TEXT NOT NULL DEFAULT '',
    answered INTEGER NOT NULL DEFAULT 0,
    answer_language TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_question_log_session ON question_log(session_id);
CREATE INDEX IF NOT EXISTS idx_question_log_created ON question_log(created_at);
`
