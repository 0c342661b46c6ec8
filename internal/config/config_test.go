package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_PATH", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Type)
	assert.Equal(t, "english_dictionary", cfg.Database.Name)
	assert.Equal(t, 3306, cfg.Database.Port)
	assert.Equal(t, 1000, cfg.Import.BatchSize)
	assert.False(t, cfg.Import.AssumeYes)
	assert.True(t, cfg.Lookup.RecordSearches)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
}

func TestLoadYAMLWithEnvOverride(t *testing.T) {
	path := writeYAML(t, `
server:
  port: "9000"
database:
  type: sqlite
  path: /tmp/words.db
import:
  batch_size: 250
log:
  level: debug
  format: json
`)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("IMPORT_BATCH_SIZE", "50")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "/tmp/words.db", cfg.Database.Path)
	assert.Equal(t, 50, cfg.Import.BatchSize)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadExplicitMissingFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := Load()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Database:  DatabaseConfig{Type: "mysql"},
			Import:    ImportConfig{BatchSize: 1000},
			RateLimit: RateLimitConfig{Requests: 10, Window: time.Minute},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "postgres alias", mutate: func(c *Config) { c.Database.Type = "PostgreSQL" }},
		{name: "unknown type", mutate: func(c *Config) { c.Database.Type = "oracle" }, wantErr: true},
		{name: "zero batch", mutate: func(c *Config) { c.Import.BatchSize = 0 }, wantErr: true},
		{name: "zero window", mutate: func(c *Config) { c.RateLimit.Window = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMySQLDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db.local", Port: 3307, User: "dict", Password: "s3cret", Name: "english_dictionary"}

	parsed, err := mysql.ParseDSN(d.MySQLDSN(true))
	require.NoError(t, err)
	assert.Equal(t, "dict", parsed.User)
	assert.Equal(t, "s3cret", parsed.Passwd)
	assert.Equal(t, "db.local:3307", parsed.Addr)
	assert.Equal(t, "english_dictionary", parsed.DBName)
	assert.True(t, parsed.ParseTime)

	parsed, err = mysql.ParseDSN(d.MySQLDSN(false))
	require.NoError(t, err)
	assert.Empty(t, parsed.DBName)

	d.URL = "user:pw@tcp(other:3306)/words"
	dsn := d.MySQLDSN(true)
	assert.Contains(t, dsn, "charset=utf8mb4")
	parsed, err = mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "user", parsed.User)
	assert.Equal(t, "other:3306", parsed.Addr)
	assert.Equal(t, "words", parsed.DBName)
	assert.True(t, parsed.ParseTime, "timestamps must scan into time.Time")

	parsed, err = mysql.ParseDSN(d.MySQLDSN(false))
	require.NoError(t, err)
	assert.Empty(t, parsed.DBName)
	assert.True(t, parsed.ParseTime)

	d.URL = "user:pw@tcp(other:3306)/words?charset=latin1&parseTime=false"
	dsn = d.MySQLDSN(true)
	assert.Contains(t, dsn, "charset=latin1")
	assert.NotContains(t, dsn, "utf8mb4")
	parsed, err = mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.True(t, parsed.ParseTime)

	d.URL = "not a dsn"
	assert.Equal(t, "not a dsn", d.MySQLDSN(true))
}
