// -----------------------------------------------------------------------------
// Redis Cache Driver
// -----------------------------------------------------------------------------
// Redis-backed query result cache.
//
// Recommended driver for production: results are shared across processes and
// survive restarts. Payloads are JSON-encoded database.CachedResult values,
// so anything read back out of a cached row arrives as JSON types (numbers
// become float64); the struct scanner converts those on assignment.
//
// Features:
//   - JSON serialization
//   - TTL support
//   - Key prefix (namespace per application)
//   - Connection pooling via go-redis
// -----------------------------------------------------------------------------

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/goragodwiriya/nowjs-crm-sub005/pkg/database"
)

// Per-operation deadlines. Reads stay short so a slow Redis degrades to a
// cache miss quickly; writes and scans get a little more room.
const (
	redisReadTimeout  = 3 * time.Second
	redisWriteTimeout = 5 * time.Second
)

// RedisCache is a Redis-backed database.QueryCache.
type RedisCache struct {
	client *redis.Client
	logger *log.Logger
	prefix string // key namespace, e.g. "qb:"
}

// NewRedisCache creates a Redis cache over an existing client.
//
// Parameters:
//   - client: connected Redis client (see ConnectRedis)
//   - logger: log instance (nil = log.Default())
//   - prefix: key prefix, e.g. "qb:" (empty = no prefix)
//
// Returns:
//   - *RedisCache: ready cache
//
// Example:
//
//	qc := cache.NewRedisCache(client, nil, "qb:")
//	conn.SetQueryCache(qc)
//	// stored keys look like "qb:query:9f86d081884c7d65"
func NewRedisCache(client *redis.Client, logger *log.Logger, prefix string) *RedisCache {
	if logger == nil {
		logger = log.Default()
	}
	return &RedisCache{
		client: client,
		logger: logger,
		prefix: prefix,
	}
}

// prefixKey applies the configured namespace.
func (r *RedisCache) prefixKey(key string) string {
	if r.prefix == "" {
		return key
	}
	return r.prefix + key
}

// Get reads a cached result.
//
// A missing key is a miss: (nil, nil). Transport and decode failures are
// logged and returned; the query façade degrades them to a miss.
func (r *RedisCache) Get(key string) (*database.CachedResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisReadTimeout)
	defer cancel()

	prefixedKey := r.prefixKey(key)
	val, err := r.client.Get(ctx, prefixedKey).Result()

	if err == redis.Nil {
		return nil, nil
	}

	if err != nil {
		r.logger.Printf("❌ Redis Get failed [%s]: %v", prefixedKey, err)
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var result database.CachedResult
	if err := json.Unmarshal([]byte(val), &result); err != nil {
		r.logger.Printf("❌ JSON decode failed [%s]: %v", prefixedKey, err)
		return nil, fmt.Errorf("json decode failed: %w", err)
	}

	return &result, nil
}

// Set stores a result under key with the given TTL.
//
// ttl <= 0 stores without expiry. Use with care: keys without a TTL live
// until deleted or evicted by Redis policy.
func (r *RedisCache) Set(key string, result *database.CachedResult, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisWriteTimeout)
	defer cancel()

	data, err := json.Marshal(result)
	if err != nil {
		r.logger.Printf("❌ JSON encode failed [%s]: %v", key, err)
		return fmt.Errorf("json encode failed: %w", err)
	}

	if ttl < 0 {
		ttl = 0
	}

	prefixedKey := r.prefixKey(key)
	if err := r.client.Set(ctx, prefixedKey, data, ttl).Err(); err != nil {
		r.logger.Printf("❌ Redis Set failed [%s]: %v", prefixedKey, err)
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

// Delete removes a key. Missing keys are ignored by Redis.
func (r *RedisCache) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisWriteTimeout)
	defer cancel()

	prefixedKey := r.prefixKey(key)
	if err := r.client.Del(ctx, prefixedKey).Err(); err != nil {
		r.logger.Printf("❌ Redis Delete failed [%s]: %v", prefixedKey, err)
		return fmt.Errorf("redis delete failed: %w", err)
	}

	return nil
}

// Has reports whether key exists.
func (r *RedisCache) Has(key string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisReadTimeout)
	defer cancel()

	prefixedKey := r.prefixKey(key)
	count, err := r.client.Exists(ctx, prefixedKey).Result()
	if err != nil {
		r.logger.Printf("❌ Redis Exists failed [%s]: %v", prefixedKey, err)
		return false, fmt.Errorf("redis exists failed: %w", err)
	}

	return count > 0, nil
}

// Flush clears the cache namespace.
//
// WARNING: with a prefix only that namespace is scanned and deleted. Without
// a prefix the WHOLE Redis database is flushed.
func (r *RedisCache) Flush() error {
	ctx, cancel := context.WithTimeout(context.Background(), redisWriteTimeout)
	defer cancel()

	if r.prefix != "" {
		pattern := r.prefix + "*"
		iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()

		keys := []string{}
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}

		if err := iter.Err(); err != nil {
			r.logger.Printf("❌ Redis Scan failed: %v", err)
			return fmt.Errorf("redis scan failed: %w", err)
		}

		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				r.logger.Printf("❌ Redis Flush failed: %v", err)
				return fmt.Errorf("redis flush failed: %w", err)
			}
		}

		r.logger.Printf("⚠️  Redis cache flushed [prefix: %s, keys: %d]", r.prefix, len(keys))
		return nil
	}

	if err := r.client.FlushDB(ctx).Err(); err != nil {
		r.logger.Printf("❌ Redis FlushDB failed: %v", err)
		return fmt.Errorf("redis flushdb failed: %w", err)
	}

	r.logger.Println("⚠️  Redis database flushed entirely (FlushDB)")
	return nil
}

// Stats returns connection pool and server counters for monitoring.
func (r *RedisCache) Stats() map[string]any {
	ctx, cancel := context.WithTimeout(context.Background(), redisReadTimeout)
	defer cancel()

	pool := r.client.PoolStats()
	stats := map[string]any{
		"driver":      "redis",
		"prefix":      r.prefix,
		"pool_hits":   pool.Hits,
		"pool_misses": pool.Misses,
		"pool_total":  pool.TotalConns,
		"pool_idle":   pool.IdleConns,
	}

	info, err := r.client.Info(ctx, "stats").Result()
	if err != nil {
		r.logger.Printf("❌ Redis Info failed: %v", err)
		stats["error"] = err.Error()
		return stats
	}

	stats["info"] = info
	return stats
}
