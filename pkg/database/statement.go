// -----------------------------------------------------------------------------
// Execution Façade
// -----------------------------------------------------------------------------
// Terminal operations: resolve the final bindings, consult the query cache,
// log, hand the statement to the driver and wrap the result. The façade
// never changes the SQL or the bindings; caching and logging are
// side-observations.
//
// Cache and logger failures are best-effort by contract: a cache read error
// is logged and treated as a miss, a cache write error is logged and
// dropped, and the query runs either way. Driver errors pass through
// unchanged so database-level diagnostics are not lost.
// -----------------------------------------------------------------------------

package database

import (
	"strings"
	"time"
)

// Bindings renders the statement if needed and resolves its final binding
// map, with optional runtime overrides applied the way Execute would.
func (qb *QueryBuilder) Bindings(params ...map[string]any) (map[string]any, error) {
	sqlText, err := qb.ToSQL()
	if err != nil {
		return nil, err
	}
	return qb.finalizeBindings(sqlText, mergeParams(params)), nil
}

// Args renders the statement if needed and resolves the ordered positional
// argument list, filling pending ? slots from runtime.
func (qb *QueryBuilder) Args(runtime ...any) ([]any, error) {
	if _, err := qb.ToSQL(); err != nil {
		return nil, err
	}
	return qb.finalizeArgs(runtime)
}

// Execute runs the statement through the connection's driver. Optional
// parameter maps override caller-managed placeholder values for this call
// only; names are accepted with or without the leading colon.
func (qb *QueryBuilder) Execute(params ...map[string]any) (*ResultSet, error) {
	return qb.run(mergeParams(params), nil)
}

// ExecuteArgs runs a positional-mode statement, filling pending ? slots
// from the given arguments in order.
func (qb *QueryBuilder) ExecuteArgs(args ...any) (*ResultSet, error) {
	return qb.run(nil, args)
}

// First executes with a forced LIMIT 1 and returns the first row. ErrNoRows
// reports an empty result.
func (qb *QueryBuilder) First(params ...map[string]any) (Row, error) {
	if qb.kind == StatementSelect {
		qb.Limit(1)
	}
	rs, err := qb.Execute(params...)
	if err != nil {
		return nil, err
	}
	row := rs.Fetch()
	if row == nil {
		return nil, ErrNoRows
	}
	return row, nil
}

// FetchAll executes and materializes every row. The query is issued once;
// the rows come from the result set's own iteration.
func (qb *QueryBuilder) FetchAll(params ...map[string]any) ([]Row, error) {
	rs, err := qb.Execute(params...)
	if err != nil {
		return nil, err
	}
	return rs.FetchAll(), nil
}

// Count executes a COUNT(*) variant of this select and returns the number
// of matching rows. Ordering and windowing are stripped; the where-tree,
// joins and grouping stay.
func (qb *QueryBuilder) Count(params ...map[string]any) (int64, error) {
	counter := qb.Clone()
	counter.markDirty()
	counter.columns = []any{As(CountAll(), "aggregate")}
	counter.orders = nil
	counter.limit = nil
	counter.offset = nil

	rs, err := counter.Execute(params...)
	if err != nil {
		return 0, err
	}
	row := rs.Fetch()
	if row == nil {
		return 0, nil
	}
	return toInt64(row["aggregate"])
}

// Explain prepends EXPLAIN to the rendered SELECT so the next execution
// returns the database's query plan instead of rows.
func (qb *QueryBuilder) Explain() *QueryBuilder {
	qb.markDirty()
	qb.explained = true
	return qb
}

// Debug renders the statement with binding values substituted as quoted
// literals, for logs and error reports. The returned text is for reading,
// never for execution.
func (qb *QueryBuilder) Debug() (string, error) {
	sqlText, err := qb.ToSQL()
	if err != nil {
		return "", err
	}
	d, err := qb.dialectRef()
	if err != nil {
		return "", err
	}

	if qb.usePositional || qb.isBatch() {
		return substitutePositional(sqlText, qb.debugArgs(), d.QuoteValue), nil
	}

	bindings := qb.finalizeBindings(sqlText, nil)
	return placeholderToken.ReplaceAllStringFunc(sqlText, func(token string) string {
		if value, ok := bindings[token[1:]]; ok {
			return d.QuoteValue(value)
		}
		return token
	}), nil
}

// debugArgs walks the positional lists in skeleton order, keeping pending
// markers so unfilled ? slots stay visible in debug output.
func (qb *QueryBuilder) debugArgs() []any {
	var args []any
	for _, kind := range qb.positionalOrder() {
		args = append(args, qb.positional[kind]...)
	}
	return args
}

// substitutePositional replaces ? markers outside quoted runs with quoted
// literals, in order. Pending slots and surplus markers stay as ?.
func substitutePositional(sqlText string, args []any, quote func(any) string) string {
	var sb strings.Builder
	sb.Grow(len(sqlText))
	next := 0
	var inQuote byte
	for i := 0; i < len(sqlText); i++ {
		c := sqlText[i]
		switch {
		case inQuote != 0:
			sb.WriteByte(c)
			if c == inQuote {
				inQuote = 0
			}
		case c == '\'' || c == '"' || c == '`':
			inQuote = c
			sb.WriteByte(c)
		case c == '?':
			if next < len(args) {
				if _, pending := args[next].(pendingParam); pending {
					sb.WriteByte('?')
				} else {
					sb.WriteString(quote(args[next]))
				}
				next++
			} else {
				sb.WriteByte('?')
			}
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// -----------------------------------------------------------------------------
// Cache controls
// -----------------------------------------------------------------------------

// CacheOn serves this select from the connection's query cache when
// possible and writes fresh results back automatically.
func (qb *QueryBuilder) CacheOn(ttl time.Duration) *QueryBuilder {
	qb.useCache = true
	qb.autoSave = true
	qb.cacheTTL = ttl
	return qb
}

// CacheManual serves this select from the cache when possible but leaves
// writing to an explicit SaveCache call.
func (qb *QueryBuilder) CacheManual(ttl time.Duration) *QueryBuilder {
	qb.useCache = true
	qb.autoSave = false
	qb.cacheTTL = ttl
	return qb
}

// SaveCache writes an executed result to the query cache under this
// statement's key. Unlike the automatic path this reports cache errors, so
// callers that manage the cache deliberately can react to them.
func (qb *QueryBuilder) SaveCache(rs *ResultSet) error {
	if qb.conn == nil {
		return ErrNoConnection
	}
	cache := qb.conn.QueryCache()
	if cache == nil {
		return ErrNoCache
	}
	key, err := qb.cacheKey()
	if err != nil {
		return err
	}
	return cache.Set(key, &CachedResult{Columns: rs.Columns(), Rows: rs.rows}, qb.cacheTTL)
}

// cacheKey derives the cache key from the rendered statement and its
// resolved bindings.
func (qb *QueryBuilder) cacheKey() (string, error) {
	sqlText, err := qb.ToSQL()
	if err != nil {
		return "", err
	}
	if qb.usePositional || qb.isBatch() {
		args, err := qb.finalizeArgs(nil)
		if err != nil {
			return "", err
		}
		return CacheKey(sqlText, nil, args), nil
	}
	return CacheKey(sqlText, qb.finalizeBindings(sqlText, nil), nil), nil
}

// -----------------------------------------------------------------------------
// Execution core
// -----------------------------------------------------------------------------

// run is the shared execution path behind Execute and ExecuteArgs.
func (qb *QueryBuilder) run(overrides map[string]any, runtime []any) (*ResultSet, error) {
	sqlText, err := qb.ToSQL()
	if err != nil {
		return nil, err
	}
	if qb.conn == nil {
		return nil, ErrNoConnection
	}
	driver := qb.conn.Driver()
	if driver == nil {
		return nil, ErrNoDriver
	}

	var params Params
	var logged any
	if qb.usePositional || qb.isBatch() {
		args, err := qb.finalizeArgs(runtime)
		if err != nil {
			return nil, err
		}
		params.Positional = args
		logged = args
	} else {
		params.Named = qb.finalizeBindings(sqlText, overrides)
		logged = params.Named
	}

	logger := qb.conn.Logger()
	cache := qb.conn.QueryCache()

	var key string
	if qb.kind == StatementSelect && qb.useCache && cache != nil {
		key = CacheKey(sqlText, params.Named, params.Positional)
		cached, err := cache.Get(key)
		if err != nil {
			// Treated as a miss: the cache must never break the query.
			if logger != nil {
				logger.Error("query cache read failed", map[string]any{
					"key":   key,
					"error": err.Error(),
				})
			}
		} else if cached != nil {
			if logger != nil {
				logger.Debug("query cache hit", map[string]any{"key": key})
			}
			return NewCachedResultSet(cached.Columns, cached.Rows), nil
		}
	}

	var start time.Time
	if logger != nil {
		start = logger.LogQuery(sqlText, logged)
	}

	stmt, err := driver.Prepare(sqlText)
	if err != nil {
		return nil, err
	}

	var rs *ResultSet
	if qb.kind == StatementSelect {
		rs, err = stmt.Query(params)
	} else {
		rs, err = stmt.Exec(params)
	}
	if err != nil {
		// Driver errors pass through unchanged.
		return nil, err
	}

	if key != "" && qb.autoSave {
		if err := cache.Set(key, &CachedResult{Columns: rs.Columns(), Rows: rs.rows}, qb.cacheTTL); err != nil && logger != nil {
			logger.Error("query cache write failed", map[string]any{
				"key":   key,
				"error": err.Error(),
			})
		}
	}

	if logger != nil {
		count := rs.RowCount()
		if qb.kind != StatementSelect {
			count = int(rs.RowsAffected())
		}
		logger.LogQueryResult(sqlText, logged, start, count)
	}
	return rs, nil
}

// mergeParams folds the variadic parameter maps left to right.
func mergeParams(params []map[string]any) map[string]any {
	if len(params) == 0 {
		return nil
	}
	merged := make(map[string]any)
	for _, m := range params {
		for name, value := range m {
			merged[name] = value
		}
	}
	return merged
}
