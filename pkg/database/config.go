// -----------------------------------------------------------------------------
// Configuration
// -----------------------------------------------------------------------------
// Environment-driven configuration for connections and the query cache.
// A .env file is loaded when present; real environment variables win over
// file entries. Every knob has a development-friendly default so a bare
// environment still yields a usable local setup.
//
// Variables:
//   DB_DRIVER            mysql | mariadb | sqlite | sqlite3 | postgres | pgx
//   DB_DSN               driver-specific data source name
//   DB_MAX_OPEN_CONNS    connection pool cap
//   DB_MAX_IDLE_CONNS    idle connections kept
//   DB_CONN_MAX_LIFETIME connection recycle age, seconds
//   DB_TABLE_PREFIX      physical table-name prefix
//   DB_SLOW_QUERY_MS     slow-query log threshold, milliseconds
//   CACHE_DRIVER         memory | redis | none
//   CACHE_PREFIX         cache key prefix
//   CACHE_TTL            default cache TTL, seconds
//   REDIS_HOST / REDIS_PORT / REDIS_PASSWORD / REDIS_DB
// -----------------------------------------------------------------------------

package database

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/goragodwiriya/nowjs-crm-sub005/pkg/database/dialect"
)

// Config holds connection and cache settings.
type Config struct {
	Driver string
	DSN    string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	TablePrefix        string
	SlowQueryThreshold time.Duration

	Cache struct {
		Driver string
		Prefix string
		TTL    time.Duration
	}

	Redis struct {
		Host     string
		Port     int
		Password string
		DB       int
	}
}

// LoadConfig reads the configuration from the environment, loading a .env
// file first when one exists.
func LoadConfig() *Config {
	// Missing .env is fine; real environments configure through the
	// process environment.
	_ = godotenv.Load()

	getEnv := func(key, fallback string) string {
		if value, ok := os.LookupEnv(key); ok && value != "" {
			return value
		}
		return fallback
	}

	getEnvAsInt := func(key string, fallback int) int {
		if value, ok := os.LookupEnv(key); ok && value != "" {
			if parsed, err := strconv.Atoi(value); err == nil {
				return parsed
			}
		}
		return fallback
	}

	getEnvAsSeconds := func(key string, fallback time.Duration) time.Duration {
		if value, ok := os.LookupEnv(key); ok && value != "" {
			if parsed, err := strconv.Atoi(value); err == nil {
				return time.Duration(parsed) * time.Second
			}
		}
		return fallback
	}

	cfg := &Config{
		Driver:             getEnv("DB_DRIVER", "mysql"),
		DSN:                getEnv("DB_DSN", "root:password@tcp(127.0.0.1:3306)/app?parseTime=true"),
		MaxOpenConns:       getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:       getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
		ConnMaxLifetime:    getEnvAsSeconds("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		TablePrefix:        getEnv("DB_TABLE_PREFIX", ""),
		SlowQueryThreshold: time.Duration(getEnvAsInt("DB_SLOW_QUERY_MS", 200)) * time.Millisecond,
	}

	cfg.Cache.Driver = getEnv("CACHE_DRIVER", "memory")
	cfg.Cache.Prefix = getEnv("CACHE_PREFIX", "qb:")
	cfg.Cache.TTL = getEnvAsSeconds("CACHE_TTL", 60*time.Second)

	cfg.Redis.Host = getEnv("REDIS_HOST", "127.0.0.1")
	cfg.Redis.Port = getEnvAsInt("REDIS_PORT", 6379)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", 0)

	return cfg
}

// Validate checks the configuration for values that would only fail later
// and less clearly.
func (c *Config) Validate() error {
	if c.Driver == "" {
		return fmt.Errorf("config: DB_DRIVER is required")
	}
	if _, err := dialect.ForDriver(c.Driver); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.DSN == "" {
		return fmt.Errorf("config: DB_DSN is required")
	}
	if c.MaxOpenConns <= 0 {
		return fmt.Errorf("config: DB_MAX_OPEN_CONNS must be positive")
	}
	if c.MaxIdleConns < 0 {
		return fmt.Errorf("config: DB_MAX_IDLE_CONNS must not be negative")
	}
	switch c.Cache.Driver {
	case "", "none", "memory", "redis":
	default:
		return fmt.Errorf("config: unknown CACHE_DRIVER %q", c.Cache.Driver)
	}
	return nil
}

// RedisAddr returns the host:port address for the Redis cache driver.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
