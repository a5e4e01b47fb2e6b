// -----------------------------------------------------------------------------
// Configuration Tests
// -----------------------------------------------------------------------------

package database

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goragodwiriya/nowjs-crm-sub005/pkg/database/dialect"
)

// clearConfigEnv blanks every configuration variable so ambient values and
// .env files cannot leak into assertions. Empty counts as unset.
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DB_DRIVER", "DB_DSN",
		"DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS", "DB_CONN_MAX_LIFETIME",
		"DB_TABLE_PREFIX", "DB_SLOW_QUERY_MS",
		"CACHE_DRIVER", "CACHE_PREFIX", "CACHE_TTL",
		"REDIS_HOST", "REDIS_PORT", "REDIS_PASSWORD", "REDIS_DB",
	} {
		t.Setenv(key, "")
	}
}

// TestLoadConfig_Defaults tests the development defaults on a bare
// environment.
func TestLoadConfig_Defaults(t *testing.T) {
	clearConfigEnv(t)

	cfg := LoadConfig()

	if cfg.Driver != "mysql" {
		t.Errorf("Expected driver mysql, got %q", cfg.Driver)
	}
	if cfg.DSN != "root:password@tcp(127.0.0.1:3306)/app?parseTime=true" {
		t.Errorf("Unexpected default DSN: %q", cfg.DSN)
	}
	if cfg.MaxOpenConns != 25 || cfg.MaxIdleConns != 25 {
		t.Errorf("Unexpected pool defaults: %d/%d", cfg.MaxOpenConns, cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime != 5*time.Minute {
		t.Errorf("Expected 5m lifetime, got %v", cfg.ConnMaxLifetime)
	}
	if cfg.TablePrefix != "" {
		t.Errorf("Expected no table prefix, got %q", cfg.TablePrefix)
	}
	if cfg.SlowQueryThreshold != 200*time.Millisecond {
		t.Errorf("Expected 200ms slow threshold, got %v", cfg.SlowQueryThreshold)
	}
	if cfg.Cache.Driver != "memory" || cfg.Cache.Prefix != "qb:" || cfg.Cache.TTL != 60*time.Second {
		t.Errorf("Unexpected cache defaults: %+v", cfg.Cache)
	}
	if cfg.RedisAddr() != "127.0.0.1:6379" {
		t.Errorf("Unexpected Redis default address: %s", cfg.RedisAddr())
	}
	if cfg.Redis.Password != "" || cfg.Redis.DB != 0 {
		t.Errorf("Unexpected Redis defaults: %+v", cfg.Redis)
	}
}

// TestLoadConfig_Environment tests that set variables win over defaults.
func TestLoadConfig_Environment(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_DSN", "postgres://app:secret@db:5432/app")
	t.Setenv("DB_MAX_OPEN_CONNS", "10")
	t.Setenv("DB_CONN_MAX_LIFETIME", "120")
	t.Setenv("DB_TABLE_PREFIX", "crm_")
	t.Setenv("DB_SLOW_QUERY_MS", "50")
	t.Setenv("CACHE_DRIVER", "redis")
	t.Setenv("CACHE_TTL", "300")
	t.Setenv("REDIS_HOST", "10.0.0.5")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("REDIS_DB", "2")

	cfg := LoadConfig()

	if cfg.Driver != "postgres" || cfg.DSN != "postgres://app:secret@db:5432/app" {
		t.Errorf("Connection settings not read: %q %q", cfg.Driver, cfg.DSN)
	}
	if cfg.MaxOpenConns != 10 {
		t.Errorf("Expected 10 open conns, got %d", cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime != 2*time.Minute {
		t.Errorf("Expected seconds-based lifetime, got %v", cfg.ConnMaxLifetime)
	}
	if cfg.TablePrefix != "crm_" {
		t.Errorf("Expected table prefix, got %q", cfg.TablePrefix)
	}
	if cfg.SlowQueryThreshold != 50*time.Millisecond {
		t.Errorf("Expected 50ms slow threshold, got %v", cfg.SlowQueryThreshold)
	}
	if cfg.Cache.Driver != "redis" || cfg.Cache.TTL != 5*time.Minute {
		t.Errorf("Cache settings not read: %+v", cfg.Cache)
	}
	if cfg.RedisAddr() != "10.0.0.5:6380" || cfg.Redis.DB != 2 {
		t.Errorf("Redis settings not read: %s db=%d", cfg.RedisAddr(), cfg.Redis.DB)
	}
}

// TestLoadConfig_MalformedNumber tests that unparsable numbers fall back.
func TestLoadConfig_MalformedNumber(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("DB_MAX_OPEN_CONNS", "lots")

	if cfg := LoadConfig(); cfg.MaxOpenConns != 25 {
		t.Errorf("Expected the fallback for a malformed number, got %d", cfg.MaxOpenConns)
	}
}

// TestConfig_Validate tests the misconfiguration reports.
func TestConfig_Validate(t *testing.T) {
	clearConfigEnv(t)

	valid := LoadConfig()
	if err := valid.Validate(); err != nil {
		t.Fatalf("Default configuration should validate: %v", err)
	}

	tests := []struct {
		name     string
		mutate   func(*Config)
		expected string
	}{
		{"missing driver", func(c *Config) { c.Driver = "" }, "DB_DRIVER is required"},
		{"missing dsn", func(c *Config) { c.DSN = "" }, "DB_DSN is required"},
		{"zero open conns", func(c *Config) { c.MaxOpenConns = 0 }, "DB_MAX_OPEN_CONNS must be positive"},
		{"negative idle conns", func(c *Config) { c.MaxIdleConns = -1 }, "DB_MAX_IDLE_CONNS must not be negative"},
		{"unknown cache driver", func(c *Config) { c.Cache.Driver = "memcached" }, `unknown CACHE_DRIVER "memcached"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := LoadConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.expected) {
				t.Errorf("Expected %q in error, got %v", tt.expected, err)
			}
		})
	}

	cfg := LoadConfig()
	cfg.Driver = "oracle"
	if err := cfg.Validate(); !errors.Is(err, dialect.ErrUnknownDriver) {
		t.Errorf("Expected ErrUnknownDriver for an unsupported driver, got %v", err)
	}

	for _, driver := range []string{"", "none", "memory", "redis"} {
		cfg := LoadConfig()
		cfg.Cache.Driver = driver
		if err := cfg.Validate(); err != nil {
			t.Errorf("Cache driver %q should validate, got %v", driver, err)
		}
	}
}
