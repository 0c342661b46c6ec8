package database

import (
	"database/sql"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"lexicon/internal/config"
)

// SQLiteDialect implements Dialect for SQLite
type SQLiteDialect struct{}

// NewSQLiteDialect creates a new SQLite dialect
func NewSQLiteDialect() *SQLiteDialect {
	return &SQLiteDialect{}
}

func (d *SQLiteDialect) DriverName() string {
	return "sqlite3"
}

// DSN enables foreign keys per connection so cascades hold on every pooled
// connection, not only the one that ran the pragma.
func (d *SQLiteDialect) DSN(cfg config.DatabaseConfig) string {
	sep := "?"
	if strings.Contains(cfg.Path, "?") {
		sep = "&"
	}
	return cfg.Path + sep + "_foreign_keys=on&_busy_timeout=5000"
}

func (d *SQLiteDialect) RewriteQuery(query string) string {
	// SQLite uses ? placeholders, no rewrite needed
	return query
}

func (d *SQLiteDialect) ConfigureConnection(db *sql.DB, cfg config.DatabaseConfig) error {
	applyPool(db, cfg)

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return err
	}

	// Enable foreign key constraints
	if _, err := db.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		return err
	}

	return nil
}

func (d *SQLiteDialect) SchemaSubdir() string {
	return "sqlite"
}

func (d *SQLiteDialect) CreateMigrationsTableQuery() string {
	return `
		CREATE TABLE IF NOT EXISTS migrations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			filename TEXT UNIQUE NOT NULL,
			executed_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`
}

// MaxPlaceholders uses the pre-3.32 SQLite default so older builds work too.
func (d *SQLiteDialect) MaxPlaceholders() int {
	return 999
}

func (d *SQLiteDialect) UpsertSearchStat() string {
	return "INSERT INTO search_stats (word_id, search_count) VALUES (?, 1) " +
		"ON CONFLICT (word_id) DO UPDATE SET search_count = search_stats.search_count + 1, last_searched = CURRENT_TIMESTAMP"
}

func (d *SQLiteDialect) RandomOrder() string {
	return "RANDOM()"
}

func (d *SQLiteDialect) TodayCondition(column string) string {
	return "date(" + column + ") = date('now')"
}
