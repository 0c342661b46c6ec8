package database

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"lexicon/internal/config"
)

// MySQLDialect implements Dialect for MySQL
type MySQLDialect struct{}

// NewMySQLDialect creates a new MySQL dialect
func NewMySQLDialect() *MySQLDialect {
	return &MySQLDialect{}
}

func (d *MySQLDialect) DriverName() string {
	return "mysql"
}

func (d *MySQLDialect) DSN(cfg config.DatabaseConfig) string {
	return cfg.MySQLDSN(true)
}

func (d *MySQLDialect) RewriteQuery(query string) string {
	// MySQL uses ? placeholders like SQLite, no rewrite needed
	return query
}

func (d *MySQLDialect) ConfigureConnection(db *sql.DB, cfg config.DatabaseConfig) error {
	applyPool(db, cfg)

	// Ensure foreign key checks are enabled
	if _, err := db.Exec("SET FOREIGN_KEY_CHECKS = 1"); err != nil {
		return err
	}

	return nil
}

// CreateDatabase connects at server level and creates the configured
// database when it does not exist yet.
func (d *MySQLDialect) CreateDatabase(cfg config.DatabaseConfig) error {
	if cfg.URL != "" {
		parsed, err := mysql.ParseDSN(cfg.URL)
		if err != nil {
			return fmt.Errorf("failed to parse mysql url: %w", err)
		}
		if parsed.DBName == "" {
			return nil
		}
		cfg.Name = parsed.DBName
		parsed.DBName = ""
		cfg.URL = parsed.FormatDSN()
	}
	if cfg.Name == "" {
		return nil
	}

	server, err := sql.Open(d.DriverName(), cfg.MySQLDSN(false))
	if err != nil {
		return err
	}
	defer server.Close()

	name := strings.ReplaceAll(cfg.Name, "`", "``")
	_, err = server.Exec("CREATE DATABASE IF NOT EXISTS `" + name + "` CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci")
	return err
}

func (d *MySQLDialect) SchemaSubdir() string {
	return "mysql"
}

func (d *MySQLDialect) CreateMigrationsTableQuery() string {
	return `
		CREATE TABLE IF NOT EXISTS migrations (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			filename VARCHAR(255) UNIQUE NOT NULL,
			executed_at DATETIME(6) DEFAULT CURRENT_TIMESTAMP(6)
		)
	`
}

func (d *MySQLDialect) MaxPlaceholders() int {
	return 65535
}

func (d *MySQLDialect) UpsertSearchStat() string {
	return "INSERT INTO search_stats (word_id, search_count) VALUES (?, 1) " +
		"ON DUPLICATE KEY UPDATE search_count = search_count + 1, last_searched = CURRENT_TIMESTAMP"
}

func (d *MySQLDialect) RandomOrder() string {
	return "RAND()"
}

func (d *MySQLDialect) TodayCondition(column string) string {
	return "DATE(" + column + ") = CURDATE()"
}
