// -----------------------------------------------------------------------------
// Memory Cache Driver
// -----------------------------------------------------------------------------
// In-process query result cache (non-persistent).
//
// Ideal for single-server deployments, development and tests. Entries are
// kept in an LRU list bounded by maxEntries, so the cache cannot grow without
// limit even when callers forget a TTL. Expired entries are dropped lazily on
// access; the LRU bound keeps stale entries from piling up, so no background
// sweeper is needed.
//
// Results are stored by reference. Callers must treat rows fetched from a
// cached result set as read-only.
//
// Limitations:
//   - Non-persistent (lost on restart)
//   - Single-server only (not distributed)
// -----------------------------------------------------------------------------

package cache

import (
	"container/list"
	"log"
	"sync"
	"time"

	"github.com/goragodwiriya/nowjs-crm-sub005/pkg/database"
)

// DefaultMaxEntries bounds the memory cache when no explicit size is given.
const DefaultMaxEntries = 1024

// memoryEntry is the stored unit: one cached result plus its expiry.
type memoryEntry struct {
	key       string
	result    *database.CachedResult
	expiresAt time.Time // zero value = no expiry
}

// expired reports whether the entry's TTL has passed.
func (e *memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryCache is an in-process LRU cache for query results.
//
// Thread-safe. Reads promote the entry to most-recently-used, so a single
// mutex guards both the map and the list.
type MemoryCache struct {
	mu         sync.Mutex
	maxEntries int
	ll         *list.List
	items      map[string]*list.Element
	logger     *log.Logger
	hits       uint64
	misses     uint64
}

// NewMemoryCache creates a bounded in-process cache.
//
// Parameters:
//   - maxEntries: LRU capacity (<= 0 uses DefaultMaxEntries)
//   - logger: log instance (nil = log.Default())
//
// Returns:
//   - *MemoryCache: ready cache
//
// Example:
//
//	qc := cache.NewMemoryCache(512, nil)
//	conn.SetQueryCache(qc)
func NewMemoryCache(maxEntries int, logger *log.Logger) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if logger == nil {
		logger = log.Default()
	}

	mc := &MemoryCache{
		maxEntries: maxEntries,
		ll:         list.New(),
		items:      make(map[string]*list.Element),
		logger:     logger,
	}

	logger.Printf("✅ Memory cache ready [max entries: %d]", maxEntries)

	return mc
}

// Get reads a cached result.
//
// A missing or expired key is a miss: (nil, nil). Hits move the entry to the
// front of the LRU list.
func (m *MemoryCache) Get(key string) (*database.CachedResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	elem, ok := m.items[key]
	if !ok {
		m.misses++
		return nil, nil
	}

	entry := elem.Value.(*memoryEntry)
	if entry.expired(time.Now()) {
		m.removeElement(elem)
		m.misses++
		return nil, nil
	}

	m.ll.MoveToFront(elem)
	m.hits++
	return entry.result, nil
}

// Set stores a result under key.
//
// ttl <= 0 stores without expiry; the LRU bound still applies. When the
// cache is full the least-recently-used entry is evicted.
func (m *MemoryCache) Set(key string, result *database.CachedResult, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	if elem, ok := m.items[key]; ok {
		entry := elem.Value.(*memoryEntry)
		entry.result = result
		entry.expiresAt = expiresAt
		m.ll.MoveToFront(elem)
		return nil
	}

	elem := m.ll.PushFront(&memoryEntry{
		key:       key,
		result:    result,
		expiresAt: expiresAt,
	})
	m.items[key] = elem

	for m.ll.Len() > m.maxEntries {
		m.removeOldest()
	}

	return nil
}

// Delete removes a key. Missing keys are ignored.
func (m *MemoryCache) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if elem, ok := m.items[key]; ok {
		m.removeElement(elem)
	}
	return nil
}

// Has reports whether key holds a live (non-expired) entry.
//
// Does not promote the entry and does not touch the hit/miss counters.
func (m *MemoryCache) Has(key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	elem, ok := m.items[key]
	if !ok {
		return false, nil
	}
	return !elem.Value.(*memoryEntry).expired(time.Now()), nil
}

// Flush drops every entry.
func (m *MemoryCache) Flush() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ll.Init()
	m.items = make(map[string]*list.Element)
	m.logger.Println("⚠️  Memory cache flushed")

	return nil
}

// Len returns the number of stored entries, expired ones included.
func (m *MemoryCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.ll.Len()
}

// Stats returns runtime counters for monitoring.
func (m *MemoryCache) Stats() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()

	return map[string]any{
		"driver":      "memory",
		"max_entries": m.maxEntries,
		"entries":     m.ll.Len(),
		"hits":        m.hits,
		"misses":      m.misses,
	}
}

// removeOldest evicts the least-recently-used entry.
func (m *MemoryCache) removeOldest() {
	if elem := m.ll.Back(); elem != nil {
		m.removeElement(elem)
	}
}

// removeElement unlinks an element from both the list and the map.
func (m *MemoryCache) removeElement(elem *list.Element) {
	m.ll.Remove(elem)
	delete(m.items, elem.Value.(*memoryEntry).key)
}
