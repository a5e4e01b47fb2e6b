// -----------------------------------------------------------------------------
// Query Result Cache Drivers
// -----------------------------------------------------------------------------
// Cache drivers for rendered query results.
//
// Every driver implements the database.QueryCache contract: Get returns
// (nil, nil) on a miss, and Set stores a *database.CachedResult under a key
// produced by database.CacheKey. The query façade consults the cache before
// hitting the driver and treats every cache failure as a miss, so drivers
// here only need to report errors, never to mask them.
//
// Drivers:
//   - MemoryCache: in-process LRU with TTL, for single-server and test use
//   - RedisCache:  shared cache over redis/go-redis, JSON payloads
// -----------------------------------------------------------------------------

package cache

import (
	"fmt"
	"log"

	"github.com/goragodwiriya/nowjs-crm-sub005/pkg/database"
)

// Stats is implemented by drivers that expose runtime counters.
//
// Monitoring and debugging hook, optional per driver.
//
// Example:
//
//	if s, ok := qc.(cache.Stats); ok {
//		log.Printf("cache stats: %+v", s.Stats())
//	}
type Stats interface {
	Stats() map[string]any
}

// New builds the query cache selected by cfg.Cache.Driver.
//
// Recognized drivers:
//   - "" or "none": caching disabled, returns (nil, nil)
//   - "memory":     in-process LRU cache
//   - "redis":      shared Redis cache (connects and pings the server)
//
// Parameters:
//   - cfg: loaded configuration (cache driver, prefix, redis settings)
//   - logger: log instance for the driver (nil = log.Default())
//
// Returns:
//   - database.QueryCache: ready cache, or nil when disabled
//   - error: unknown driver or redis connection failure
//
// Example:
//
//	qc, err := cache.New(cfg, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	conn.SetQueryCache(qc)
func New(cfg *database.Config, logger *log.Logger) (database.QueryCache, error) {
	if logger == nil {
		logger = log.Default()
	}

	switch cfg.Cache.Driver {
	case "", "none":
		return nil, nil

	case "memory":
		return NewMemoryCache(DefaultMaxEntries, logger), nil

	case "redis":
		client, err := ConnectRedis(cfg, logger)
		if err != nil {
			return nil, err
		}
		return NewRedisCache(client, logger, cfg.Cache.Prefix), nil

	default:
		return nil, fmt.Errorf("cache: unknown driver %q", cfg.Cache.Driver)
	}
}
