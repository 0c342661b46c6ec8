package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Import    ImportConfig    `yaml:"import"`
	Lookup    LookupConfig    `yaml:"lookup"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Log       LogConfig       `yaml:"log"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string        `yaml:"port"             env:"PORT"                    env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig selects the store. Type is one of mysql, postgres or sqlite.
// URL wins over the discrete MySQL fields when both are set.
type DatabaseConfig struct {
	Type     string `yaml:"type"     env:"DATABASE_TYPE" env-default:"mysql"`
	URL      string `yaml:"url"      env:"DATABASE_URL"`
	Path     string `yaml:"path"     env:"DB_PATH"       env-default:"./lexicon.db"`
	Host     string `yaml:"host"     env:"DB_HOST"       env-default:"localhost"`
	Port     int    `yaml:"port"     env:"DB_PORT"       env-default:"3306"`
	User     string `yaml:"user"     env:"DB_USER"       env-default:"root"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	Name     string `yaml:"name"     env:"DB_NAME"       env-default:"english_dictionary"`

	MaxOpenConns    int           `yaml:"max_open_conns"     env:"DB_MAX_OPEN_CONNS"     env-default:"25"`
	MaxIdleConns    int           `yaml:"max_idle_conns"     env:"DB_MAX_IDLE_CONNS"     env-default:"5"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"  env:"DB_CONN_MAX_LIFETIME"  env-default:"5m"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" env:"DB_CONN_MAX_IDLE_TIME" env-default:"1m"`
}

// ImportConfig holds defaults for the dataset importer
type ImportConfig struct {
	File      string `yaml:"file"       env:"IMPORT_FILE"       env-default:"dictionary.csv"`
	BatchSize int    `yaml:"batch_size" env:"IMPORT_BATCH_SIZE" env-default:"1000"`
	AssumeYes bool   `yaml:"assume_yes" env:"IMPORT_ASSUME_YES" env-default:"false"`
}

// LookupConfig controls side effects of the lookup path
type LookupConfig struct {
	RecordSearches bool `yaml:"record_searches" env:"LOOKUP_RECORD_SEARCHES" env-default:"true"`
}

// RedisConfig holds the optional lookup cache settings
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"   env:"REDIS_ENABLED"   env-default:"false"`
	Addr     string        `yaml:"addr"      env:"REDIS_ADDR"      env-default:"localhost:6379"`
	Password string        `yaml:"password"  env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db"        env:"REDIS_DB"        env-default:"0"`
	PoolSize int           `yaml:"pool_size" env:"REDIS_POOL_SIZE" env-default:"10"`
	CacheTTL time.Duration `yaml:"cache_ttl" env:"REDIS_CACHE_TTL" env-default:"10m"`
}

// KafkaConfig holds the optional lookup event stream settings
type KafkaConfig struct {
	Enabled bool     `yaml:"enabled" env:"KAFKA_ENABLED" env-default:"false"`
	Brokers []string `yaml:"brokers" env:"KAFKA_BROKERS" env-default:"localhost:9092" env-separator:","`
	Topic   string   `yaml:"topic"   env:"KAFKA_TOPIC"   env-default:"lookup-events"`
}

// MetricsConfig toggles the Prometheus scrape endpoint
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" env:"METRICS_ENABLED" env-default:"true"`
	Path    string `yaml:"path"    env:"METRICS_PATH"    env-default:"/metrics"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}

// RateLimitConfig bounds API requests per client address. TrustedProxies
// lists addresses or CIDRs allowed to forward the client address in
// X-Forwarded-For or X-Real-IP.
type RateLimitConfig struct {
	Requests       int           `yaml:"requests"        env:"RATE_LIMIT_REQUESTS"        env-default:"120"`
	Window         time.Duration `yaml:"window"          env:"RATE_LIMIT_WINDOW"          env-default:"1m"`
	TrustedProxies []string      `yaml:"trusted_proxies" env:"RATE_LIMIT_TRUSTED_PROXIES" env-separator:","`
}

// Load reads configuration from a YAML file and environment variables.
// Priority: ENV > YAML > defaults. The file path comes from CONFIG_PATH
// (fallback "./config.yaml"); a missing default file is not an error.
func Load() (*Config, error) {
	var cfg Config

	path := os.Getenv("CONFIG_PATH")
	explicitPath := path != ""
	if !explicitPath {
		path = "./config.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicitPath {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return &cfg, nil
}

// Validate checks values that cleanenv cannot express as tags
func (c *Config) Validate() error {
	switch strings.ToLower(c.Database.Type) {
	case "mysql", "postgres", "postgresql", "sqlite", "sqlite3":
	default:
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}
	if c.Import.BatchSize <= 0 {
		return fmt.Errorf("import.batch_size must be > 0 (got %d)", c.Import.BatchSize)
	}
	if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate_limit requires positive requests and window")
	}
	return nil
}

// MySQLDSN returns the connection string for the MySQL driver. With no
// database name the DSN targets the server so the database can be created.
// A URL is kept as given apart from parseTime and charset, which the
// repositories depend on; an unparseable URL is returned untouched so the
// connect error names the real problem.
func (d DatabaseConfig) MySQLDSN(withDatabase bool) string {
	if d.URL != "" {
		mc, err := mysql.ParseDSN(d.URL)
		if err != nil {
			return d.URL
		}
		mc.ParseTime = true
		if !strings.Contains(d.URL, "charset=") {
			if err := mc.Apply(mysql.Charset("utf8mb4", "")); err != nil {
				return d.URL
			}
		}
		if !withDatabase {
			mc.DBName = ""
		}
		return mc.FormatDSN()
	}

	mc := mysql.NewConfig()
	mc.User = d.User
	mc.Passwd = d.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
	mc.ParseTime = true
	mc.MultiStatements = true
	mc.Params = map[string]string{"charset": "utf8mb4"}
	if withDatabase {
		mc.DBName = d.Name
	}
	return mc.FormatDSN()
}
