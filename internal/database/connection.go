package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Supported driver names
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Connect opens the database for driver and makes sure the schema exists
func Connect(driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case DriverSQLite:
		// Create data directory if it doesn't exist
		if dir := filepath.Dir(dsn); !strings.HasPrefix(dsn, ":memory:") && !strings.HasPrefix(dsn, "file:") && dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == DriverSQLite {
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if err := InitializeSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// InitializeSchema creates necessary tables if they don't exist
func InitializeSchema(db *sqlx.DB) error {
	schema := sqliteSchema
	if db.DriverName() == DriverPostgres {
		schema = postgresSchema
	}
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS categories (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS items (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	prompt TEXT NOT NULL,
	translation TEXT NOT NULL DEFAULT '',
	category_id INTEGER REFERENCES categories(id) ON DELETE SET NULL,
	active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_items_category ON items(category_id, active);
CREATE TABLE IF NOT EXISTS learners (
	id TEXT PRIMARY KEY,
	chat_id INTEGER NOT NULL DEFAULT 0,
	notification_enabled BOOLEAN NOT NULL DEFAULT TRUE,
	notification_hour INTEGER NOT NULL DEFAULT 9
);
CREATE TABLE IF NOT EXISTS learner_cards (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	learner_id TEXT NOT NULL,
	item_id INTEGER NOT NULL REFERENCES items(id) ON DELETE CASCADE,
	stage TEXT NOT NULL DEFAULT 'new',
	last_check_date DATE,
	UNIQUE(learner_id, item_id)
);
CREATE TABLE IF NOT EXISTS used_items (
	session_key TEXT NOT NULL,
	item_id INTEGER NOT NULL,
	expires_at TIMESTAMP NOT NULL,
	PRIMARY KEY (session_key, item_id)
)`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS categories (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	created_at TIMESTAMPTZ DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS items (
	id BIGSERIAL PRIMARY KEY,
	prompt TEXT NOT NULL,
	translation TEXT NOT NULL DEFAULT '',
	category_id BIGINT REFERENCES categories(id) ON DELETE SET NULL,
	active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ DEFAULT NOW(),
	updated_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_items_category ON items(category_id, active);
CREATE TABLE IF NOT EXISTS learners (
	id TEXT PRIMARY KEY,
	chat_id BIGINT NOT NULL DEFAULT 0,
	notification_enabled BOOLEAN NOT NULL DEFAULT TRUE,
	notification_hour INTEGER NOT NULL DEFAULT 9
);
CREATE TABLE IF NOT EXISTS learner_cards (
	id BIGSERIAL PRIMARY KEY,
	learner_id TEXT NOT NULL,
	item_id BIGINT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
	stage TEXT NOT NULL DEFAULT 'new',
	last_check_date DATE,
	UNIQUE(learner_id, item_id)
);
CREATE TABLE IF NOT EXISTS used_items (
	session_key TEXT NOT NULL,
	item_id BIGINT NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (session_key, item_id)
)`
