// -----------------------------------------------------------------------------
// Query Result Cache Contract
// -----------------------------------------------------------------------------
// The cache contract the façade consults for SELECT statements, and the key
// derivation shared by every driver. Keys hash the rendered SQL together
// with the resolved bindings, so two statements differing only in a bound
// value never share an entry.
//
// Concrete drivers live in pkg/cache; this file only defines the boundary.
// -----------------------------------------------------------------------------

package database

import (
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
)

// CachedResult is the serializable payload stored by query cache drivers.
// Column order is kept alongside the rows because Go maps do not preserve
// it.
type CachedResult struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// QueryCache stores SELECT results keyed by statement identity. Get
// returns (nil, nil) on a clean miss; errors are treated as misses by the
// façade and logged.
type QueryCache interface {
	Get(key string) (*CachedResult, error)
	Set(key string, result *CachedResult, ttl time.Duration) error
}

// CacheKey derives the cache key for a rendered statement with its
// resolved bindings. Named bindings are folded in sorted order so map
// iteration cannot produce two keys for the same statement.
func CacheKey(sqlText string, named map[string]any, args []any) string {
	h := xxhash.New()
	_, _ = h.WriteString(sqlText)
	_, _ = h.Write([]byte{0})
	for _, name := range sortedKeys(named) {
		_, _ = fmt.Fprintf(h, "%s=%v;", name, named[name])
	}
	for _, arg := range args {
		_, _ = fmt.Fprintf(h, "%v;", arg)
	}
	return "query:" + strconv.FormatUint(h.Sum64(), 16)
}
