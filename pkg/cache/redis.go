// -----------------------------------------------------------------------------
// Redis Connection Bootstrap
// -----------------------------------------------------------------------------
// Builds and verifies the Redis client behind the redis cache driver.
//
// Connection pooling, retry and timeout tuning live here; the cache driver
// itself only sees a ready *redis.Client.
// -----------------------------------------------------------------------------

package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/goragodwiriya/nowjs-crm-sub005/pkg/database"
)

// RedisOptions tunes the client pool behind the redis cache driver.
type RedisOptions struct {
	Host         string        // Redis server address
	Port         int           // Redis port
	Password     string        // Redis password (optional)
	DB           int           // database number (0-15)
	PoolSize     int           // connection pool size
	MinIdleConns int           // minimum idle connections
	MaxRetries   int           // maximum command retries
	DialTimeout  time.Duration // connect timeout
	ReadTimeout  time.Duration // read timeout
	WriteTimeout time.Duration // write timeout
}

// DefaultRedisOptions returns the default pool tuning.
//
// Recommended starting points for production:
//   - PoolSize: 2-4x the CPU core count
//   - MinIdleConns: ~25% of PoolSize
//   - Timeouts: adjust to observed network latency
func DefaultRedisOptions() *RedisOptions {
	return &RedisOptions{
		Host:         "127.0.0.1",
		Port:         6379,
		Password:     "",
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// redisOptionsFromConfig merges the loaded configuration into the defaults.
func redisOptionsFromConfig(cfg *database.Config) *RedisOptions {
	opts := DefaultRedisOptions()
	if cfg == nil {
		return opts
	}

	if cfg.Redis.Host != "" {
		opts.Host = cfg.Redis.Host
	}
	if cfg.Redis.Port > 0 {
		opts.Port = cfg.Redis.Port
	}
	opts.Password = cfg.Redis.Password
	opts.DB = cfg.Redis.DB

	return opts
}

// ConnectRedis dials the Redis server named by cfg.Redis.
//
// Parameters:
//   - cfg: loaded configuration (host, port, password, db)
//   - logger: log instance (nil = log.Default())
//
// Returns:
//   - *redis.Client: connected client, caller owns Close
//   - error: connection or ping failure
//
// Example:
//
//	client, err := cache.ConnectRedis(cfg, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
// Security note: the Redis password should come from the environment, and
// production deployments should enable TLS via redis.Options.TLSConfig.
func ConnectRedis(cfg *database.Config, logger *log.Logger) (*redis.Client, error) {
	return ConnectRedisWith(redisOptionsFromConfig(cfg), logger)
}

// ConnectRedisWith dials Redis with explicit pool options.
//
// The connection is verified with a ping before it is returned, so a
// misconfigured address fails fast instead of on the first cache read.
func ConnectRedisWith(opts *RedisOptions, logger *log.Logger) (*redis.Client, error) {
	if opts == nil {
		opts = DefaultRedisOptions()
	}
	if logger == nil {
		logger = log.Default()
	}

	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", opts.Host, opts.Port),
		Password:     opts.Password,
		DB:           opts.DB,
		PoolSize:     opts.PoolSize,
		MinIdleConns: opts.MinIdleConns,
		MaxRetries:   opts.MaxRetries,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Printf("❌ Redis connection failed: %v", err)
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	logger.Printf("✅ Redis connection established: %s:%d (DB: %d)", opts.Host, opts.Port, opts.DB)

	return client, nil
}
