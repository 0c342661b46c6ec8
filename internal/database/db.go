package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"lexicon/internal/apperrors"
	"lexicon/internal/config"
)

// DB wraps the database connection with dialect support
type DB struct {
	*sql.DB
	Dialect Dialect
}

// DialectFor resolves the configured database type
func DialectFor(dbType string) (Dialect, error) {
	switch strings.ToLower(dbType) {
	case "postgres", "postgresql":
		return NewPostgresDialect(), nil
	case "mysql", "":
		return NewMySQLDialect(), nil
	case "sqlite", "sqlite3":
		return NewSQLiteDialect(), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}
}

// Initialize opens a SQLite database at dbPath with default pool settings
func Initialize(dbPath string) (*DB, error) {
	return Connect(context.Background(), config.DatabaseConfig{Type: "sqlite", Path: dbPath})
}

// Connect opens and verifies the configured store. Every failure is
// reported as apperrors.ErrConnection.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	dialect, err := DialectFor(cfg.Type)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrConnection, err, "resolve dialect")
	}

	if creator, ok := dialect.(databaseCreator); ok {
		if err := creator.CreateDatabase(cfg); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrConnection, err, "create database %s", cfg.Name)
		}
	}

	db, err := sql.Open(dialect.DriverName(), dialect.DSN(cfg))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrConnection, err, "open database")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, apperrors.Wrap(apperrors.ErrConnection, err, "ping database")
	}

	// Apply dialect-specific configuration
	if err := dialect.ConfigureConnection(db, cfg); err != nil {
		db.Close()
		return nil, apperrors.Wrap(apperrors.ErrConnection, err, "configure connection")
	}

	return &DB{DB: db, Dialect: dialect}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

// QueryContext executes a query with automatic placeholder rewriting
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.DB.QueryContext(ctx, db.Dialect.RewriteQuery(query), args...)
}

// QueryRowContext executes a query that returns a single row with automatic placeholder rewriting
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.DB.QueryRowContext(ctx, db.Dialect.RewriteQuery(query), args...)
}

// ExecContext executes a query that doesn't return rows with automatic placeholder rewriting
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.DB.ExecContext(ctx, db.Dialect.RewriteQuery(query), args...)
}
