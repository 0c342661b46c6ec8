package database

import (
	"database/sql"
	"regexp"
	"strconv"

	"lexicon/internal/config"
)

// Dialect defines the interface for database-specific operations
type Dialect interface {
	// DriverName returns the driver name for sql.Open
	DriverName() string

	// DSN returns the data source name for the connection
	DSN(cfg config.DatabaseConfig) string

	// RewriteQuery converts placeholder syntax if needed (e.g., ? to $1 for postgres)
	RewriteQuery(query string) string

	// ConfigureConnection applies pool limits and any database-specific session settings
	ConfigureConnection(db *sql.DB, cfg config.DatabaseConfig) error

	// SchemaSubdir returns the embedded schema directory for this dialect
	SchemaSubdir() string

	// CreateMigrationsTableQuery returns the SQL to create the migrations tracking table
	CreateMigrationsTableQuery() string

	// MaxPlaceholders is the bind parameter limit for a single statement
	MaxPlaceholders() int

	// UpsertSearchStat increments search_stats for one word_id, creating the row if needed
	UpsertSearchStat() string

	// RandomOrder returns the ORDER BY expression for a random row
	RandomOrder() string

	// TodayCondition returns a predicate matching rows whose column falls on the current date
	TodayCondition(column string) string
}

// databaseCreator is implemented by dialects that can create the target
// database before the pool is opened against it.
type databaseCreator interface {
	CreateDatabase(cfg config.DatabaseConfig) error
}

// placeholderRegexp matches ? placeholders not inside quotes
var placeholderRegexp = regexp.MustCompile(`\?`)

// rewritePlaceholdersToNumbered converts ? placeholders to $1, $2, etc.
func rewritePlaceholdersToNumbered(query string) string {
	counter := 0
	return placeholderRegexp.ReplaceAllStringFunc(query, func(match string) string {
		counter++
		return "$" + strconv.Itoa(counter)
	})
}

func applyPool(db *sql.DB, cfg config.DatabaseConfig) {
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}
}
