package database

import (
	"database/sql"

	_ "github.com/lib/pq"

	"lexicon/internal/config"
)

// PostgresDialect implements Dialect for PostgreSQL
type PostgresDialect struct{}

// NewPostgresDialect creates a new PostgreSQL dialect
func NewPostgresDialect() *PostgresDialect {
	return &PostgresDialect{}
}

func (d *PostgresDialect) DriverName() string {
	return "postgres"
}

func (d *PostgresDialect) DSN(cfg config.DatabaseConfig) string {
	return cfg.URL
}

func (d *PostgresDialect) RewriteQuery(query string) string {
	// PostgreSQL uses $1, $2, etc. instead of ?
	return rewritePlaceholdersToNumbered(query)
}

func (d *PostgresDialect) ConfigureConnection(db *sql.DB, cfg config.DatabaseConfig) error {
	applyPool(db, cfg)

	// PostgreSQL has foreign keys enabled by default, no pragma needed
	return nil
}

func (d *PostgresDialect) SchemaSubdir() string {
	return "postgres"
}

func (d *PostgresDialect) CreateMigrationsTableQuery() string {
	return `
		CREATE TABLE IF NOT EXISTS migrations (
			id BIGSERIAL PRIMARY KEY,
			filename TEXT UNIQUE NOT NULL,
			executed_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		)
	`
}

func (d *PostgresDialect) MaxPlaceholders() int {
	return 65535
}

func (d *PostgresDialect) UpsertSearchStat() string {
	return "INSERT INTO search_stats (word_id, search_count) VALUES (?, 1) " +
		"ON CONFLICT (word_id) DO UPDATE SET search_count = search_stats.search_count + 1, last_searched = CURRENT_TIMESTAMP"
}

func (d *PostgresDialect) RandomOrder() string {
	return "RANDOM()"
}

func (d *PostgresDialect) TodayCondition(column string) string {
	return column + "::date = CURRENT_DATE"
}
