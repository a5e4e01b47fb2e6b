// -----------------------------------------------------------------------------
// Fluent Query Builder
// -----------------------------------------------------------------------------
// The QueryBuilder accumulates statement structure through chainable calls
// and renders SQL only when asked. Conditions, orderings and values stay
// structured until render time, values travel as placeholders, and
// identifiers are validated by the dialect, so the builder is safe to feed
// from request input everywhere a value belongs.
//
// Structural mistakes do not break the chain: the first error is recorded on
// the builder and surfaces when ToSQL or Execute is called. A successful
// render is memoized and reused until the next mutating call.
//
// One builder is not safe for concurrent use. Builders are cheap; give each
// goroutine its own.
//
// Example:
//
//	sql, err := conn.Table("orders").
//	    Where("status", "=", "paid").
//	    OrderBy("created_at", "desc").
//	    Limit(10).
//	    ToSQL()
//	// SELECT * FROM `orders` WHERE (`status` = :qb_p0)
//	//   ORDER BY `created_at` DESC LIMIT 10
// -----------------------------------------------------------------------------

package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/goragodwiriya/nowjs-crm-sub005/pkg/database/dialect"
)

// QueryBuilder accumulates one SQL statement.
type QueryBuilder struct {
	conn    *Connection
	dialect dialect.Dialect

	kind  StatementKind
	table string
	alias string

	// fromSQL overrides table/alias with a pre-rendered FROM target, used
	// for derived tables built by FromSub.
	fromSQL  string
	fromArgs []any

	distinct bool
	columns  []any

	wheres  []WhereClause
	havings []WhereClause
	groups  []string
	orders  []OrderClause

	joins    []dialect.JoinSpec
	joinArgs []any

	limit  *int
	offset *int

	// assignments carries UPDATE SET pairs in call order. INSERT rows live
	// in insertColumns/insertRows; a lone Set before Insert is accepted and
	// rendered as a single row.
	assignments   []Assignment
	insertColumns []string
	insertRows    [][]any
	ignoreDupes   bool

	named      map[string]any
	embedded   map[string]any
	positional map[bindingKind][]any

	usePositional bool
	paramCounter  int
	prefix        string

	lastQuery string

	useCache  bool
	autoSave  bool
	cacheTTL  time.Duration
	explained bool

	err error
}

// NewBuilder creates an empty SELECT builder bound to a connection. The
// connection may be nil for SQL-only rendering as long as a default
// connection provides the dialect.
func NewBuilder(conn *Connection) *QueryBuilder {
	return &QueryBuilder{
		conn:       conn,
		kind:       StatementSelect,
		named:      make(map[string]any),
		embedded:   make(map[string]any),
		positional: make(map[bindingKind][]any),
		prefix:     DefaultPlaceholderPrefix,
	}
}

// dialectRef resolves the rendering dialect: the builder's own, then the
// connection's, then the default connection's.
func (qb *QueryBuilder) dialectRef() (dialect.Dialect, error) {
	if qb.dialect != nil {
		return qb.dialect, nil
	}
	if qb.conn != nil {
		if d := qb.conn.Dialect(); d != nil {
			qb.dialect = d
			return d, nil
		}
	}
	d, err := resolveDialect(nil)
	if err != nil {
		return nil, err
	}
	qb.dialect = d
	return d, nil
}

// markDirty drops the memoized SQL after a mutating call.
func (qb *QueryBuilder) markDirty() {
	qb.lastQuery = ""
}

// fail records a structural error. Only the first error is kept; later
// calls on a failed builder are no-ops and the error surfaces at render
// time.
func (qb *QueryBuilder) fail(clause, detail string) {
	if qb.err == nil {
		qb.err = &ClauseError{Clause: clause, Detail: detail}
	}
}

// failErr records an already-built error, keeping the first one.
func (qb *QueryBuilder) failErr(err error) {
	if qb.err == nil && err != nil {
		qb.err = err
	}
}

// Err returns the recorded structural error, nil when the chain is sound.
func (qb *QueryBuilder) Err() error {
	return qb.err
}

// Connection returns the connection the builder executes against.
func (qb *QueryBuilder) Connection() *Connection {
	return qb.conn
}

// -----------------------------------------------------------------------------
// Statement target & select list
// -----------------------------------------------------------------------------

// From sets the target table, with an optional alias.
//
// Example:
//
//	qb.From("users")
//	qb.From("users", "u")
func (qb *QueryBuilder) From(table string, alias ...string) *QueryBuilder {
	qb.markDirty()
	qb.table = table
	qb.fromSQL = ""
	qb.fromArgs = nil
	if len(alias) > 0 {
		qb.alias = alias[0]
	}
	return qb
}

// FromSub selects from a derived table. The sub-builder is rendered
// immediately and its bindings are absorbed, so it can be mutated or reused
// afterwards without affecting this builder.
//
// Example:
//
//	paid := conn.Table("orders").Select("user_id").Where("status", "=", "paid")
//	qb.FromSub(paid, "paid_orders")
func (qb *QueryBuilder) FromSub(sub *QueryBuilder, alias string) *QueryBuilder {
	qb.markDirty()
	d, err := qb.dialectRef()
	if err != nil {
		qb.failErr(err)
		return qb
	}
	subSQL, err := sub.ToSQL()
	if err != nil {
		qb.failErr(err)
		return qb
	}
	aliasSQL, err := d.Wrap(alias)
	if err != nil {
		qb.failErr(fmt.Errorf("from clause: %w", err))
		return qb
	}
	frag, args, err := qb.absorbSub(sub, "("+subSQL+")")
	if err != nil {
		qb.failErr(err)
		return qb
	}
	qb.table = ""
	qb.alias = ""
	qb.fromSQL = frag + " AS " + aliasSQL
	qb.fromArgs = args
	return qb
}

// Select replaces the select list. Accepts column name strings (including
// "table.column", "col AS alias" and aggregate expressions), Expression
// values and *QueryBuilder subqueries.
//
// Example:
//
//	qb.Select("id", "name")
//	qb.Select("id", database.As(database.Fn("COUNT", "*"), "total"))
func (qb *QueryBuilder) Select(columns ...any) *QueryBuilder {
	qb.markDirty()
	qb.columns = columns
	return qb
}

// Distinct marks the statement as SELECT DISTINCT.
func (qb *QueryBuilder) Distinct() *QueryBuilder {
	qb.markDirty()
	qb.distinct = true
	return qb
}

// GroupBy appends GROUP BY columns.
func (qb *QueryBuilder) GroupBy(columns ...string) *QueryBuilder {
	qb.markDirty()
	qb.groups = append(qb.groups, columns...)
	return qb
}

// OrderBy appends an ORDER BY entry. The direction is normalized against
// the ASC/DESC whitelist; anything else fails the builder. An empty
// direction means ASC.
func (qb *QueryBuilder) OrderBy(column string, direction string) *QueryBuilder {
	qb.markDirty()
	dir := OrderDirection(strings.ToUpper(strings.TrimSpace(direction)))
	if dir == "" {
		dir = OrderAsc
	}
	if dir != OrderAsc && dir != OrderDesc {
		qb.fail("order by", fmt.Sprintf("invalid direction %q", direction))
		return qb
	}
	qb.orders = append(qb.orders, OrderClause{Column: column, Direction: dir})
	return qb
}

// Limit caps the number of rows. Negative values fail the builder.
func (qb *QueryBuilder) Limit(n int) *QueryBuilder {
	qb.markDirty()
	if n < 0 {
		qb.fail("limit", "negative row count")
		return qb
	}
	qb.limit = &n
	return qb
}

// Offset skips rows before the window starts. Negative values fail the
// builder.
func (qb *QueryBuilder) Offset(n int) *QueryBuilder {
	qb.markDirty()
	if n < 0 {
		qb.fail("offset", "negative offset")
		return qb
	}
	qb.offset = &n
	return qb
}

// -----------------------------------------------------------------------------
// Placeholder configuration
// -----------------------------------------------------------------------------

// UsePositional switches the builder to positional ? placeholders. Values
// are collected into ordered lists per clause family instead of the named
// binding map. Named and positional builders cannot absorb each other.
func (qb *QueryBuilder) UsePositional() *QueryBuilder {
	qb.markDirty()
	qb.usePositional = true
	return qb
}

// PlaceholderPrefix overrides the auto-allocation prefix. Useful when raw
// fragments carry their own :names and the default prefix would read
// confusingly next to them in logs.
func (qb *QueryBuilder) PlaceholderPrefix(prefix string) *QueryBuilder {
	qb.markDirty()
	if !validPrefix.MatchString(prefix) {
		qb.fail("placeholder prefix", fmt.Sprintf("invalid prefix %q", prefix))
		return qb
	}
	qb.prefix = prefix
	return qb
}

// WithParam sets the value of a caller-managed placeholder. The name may be
// given with or without the leading colon. Execution-time parameter maps
// override values set here.
//
// Example:
//
//	qb.Where("status", "=", ":st").WithParam("st", "paid")
func (qb *QueryBuilder) WithParam(name string, value any) *QueryBuilder {
	qb.named[strings.TrimPrefix(name, ":")] = value
	return qb
}

// -----------------------------------------------------------------------------
// Rendering
// -----------------------------------------------------------------------------

// ToSQL renders the statement. The result is memoized; repeated calls
// return the same text until a mutating call invalidates it. A recorded
// structural error is returned instead of SQL, and nothing is memoized on
// failure.
func (qb *QueryBuilder) ToSQL() (string, error) {
	if qb.err != nil {
		return "", qb.err
	}
	if qb.lastQuery != "" {
		return qb.lastQuery, nil
	}

	// Positional lists are rebuilt on every render so a re-render cannot
	// duplicate values.
	qb.positional = make(map[bindingKind][]any)

	var sqlText string
	var err error
	switch qb.kind {
	case StatementInsert:
		sqlText, err = qb.compileInsert()
	case StatementUpdate:
		sqlText, err = qb.compileUpdate()
	case StatementDelete:
		sqlText, err = qb.compileDelete()
	default:
		sqlText, err = qb.compileSelect()
	}
	if err != nil {
		return "", err
	}
	qb.lastQuery = sqlText
	return sqlText, nil
}

// renderFromTarget renders the FROM target: the derived-table fragment when
// set, otherwise the wrapped table name.
func (qb *QueryBuilder) renderFromTarget(d dialect.Dialect) (string, error) {
	if qb.fromSQL != "" {
		if qb.usePositional {
			qb.replayPositional(bindFrom, qb.fromArgs)
		}
		return qb.fromSQL, nil
	}
	if qb.table == "" {
		return "", ErrNoTable
	}
	tableSQL, err := d.WrapTable(qb.table, qb.alias)
	if err != nil {
		return "", fmt.Errorf("from clause: %w", err)
	}
	return tableSQL, nil
}

// renderColumnExpr renders a column position. Plain names are wrapped by
// the dialect. Strings containing parentheses are treated as SQL
// expressions and pass through after a check for statement separators and
// comment markers, mirroring how the select list accepts aggregates.
func (qb *QueryBuilder) renderColumnExpr(d dialect.Dialect, column string) (string, error) {
	if strings.ContainsAny(column, "()") {
		if strings.Contains(column, ";") || strings.Contains(column, "--") {
			return "", fmt.Errorf("suspicious content in column expression %q", column)
		}
		return column, nil
	}
	return d.Wrap(column)
}

// -----------------------------------------------------------------------------
// Copies & transitions
// -----------------------------------------------------------------------------

// Clone returns an independent deep copy. Mutating either builder never
// affects the other.
func (qb *QueryBuilder) Clone() *QueryBuilder {
	nb := &QueryBuilder{
		conn:          qb.conn,
		dialect:       qb.dialect,
		kind:          qb.kind,
		table:         qb.table,
		alias:         qb.alias,
		fromSQL:       qb.fromSQL,
		fromArgs:      append([]any(nil), qb.fromArgs...),
		distinct:      qb.distinct,
		columns:       append([]any(nil), qb.columns...),
		wheres:        append([]WhereClause(nil), qb.wheres...),
		havings:       append([]WhereClause(nil), qb.havings...),
		groups:        append([]string(nil), qb.groups...),
		orders:        append([]OrderClause(nil), qb.orders...),
		joins:         append([]dialect.JoinSpec(nil), qb.joins...),
		joinArgs:      append([]any(nil), qb.joinArgs...),
		assignments:   append([]Assignment(nil), qb.assignments...),
		insertColumns: append([]string(nil), qb.insertColumns...),
		insertRows:    cloneRows(qb.insertRows),
		ignoreDupes:   qb.ignoreDupes,
		named:         cloneBindings(qb.named),
		embedded:      cloneBindings(qb.embedded),
		positional:    clonePositional(qb.positional),
		usePositional: qb.usePositional,
		paramCounter:  qb.paramCounter,
		prefix:        qb.prefix,
		lastQuery:     qb.lastQuery,
		useCache:      qb.useCache,
		autoSave:      qb.autoSave,
		cacheTTL:      qb.cacheTTL,
		explained:     qb.explained,
		err:           qb.err,
	}
	if qb.limit != nil {
		v := *qb.limit
		nb.limit = &v
	}
	if qb.offset != nil {
		v := *qb.offset
		nb.offset = &v
	}
	return nb
}

// transition starts a builder of another statement kind from this one.
// Conditions, joins, ordering, grouping, limits, values and the whole
// binding state carry over; the select list does not, and the new builder
// gets its own target table.
func (qb *QueryBuilder) transition(kind StatementKind, table string) *QueryBuilder {
	nb := &QueryBuilder{
		conn:          qb.conn,
		dialect:       qb.dialect,
		kind:          kind,
		table:         table,
		wheres:        append([]WhereClause(nil), qb.wheres...),
		havings:       append([]WhereClause(nil), qb.havings...),
		groups:        append([]string(nil), qb.groups...),
		orders:        append([]OrderClause(nil), qb.orders...),
		joins:         append([]dialect.JoinSpec(nil), qb.joins...),
		joinArgs:      append([]any(nil), qb.joinArgs...),
		assignments:   append([]Assignment(nil), qb.assignments...),
		insertColumns: append([]string(nil), qb.insertColumns...),
		insertRows:    cloneRows(qb.insertRows),
		named:         cloneBindings(qb.named),
		embedded:      cloneBindings(qb.embedded),
		positional:    make(map[bindingKind][]any),
		usePositional: qb.usePositional,
		paramCounter:  qb.paramCounter,
		prefix:        qb.prefix,
		err:           qb.err,
	}
	if qb.limit != nil {
		v := *qb.limit
		nb.limit = &v
	}
	if qb.offset != nil {
		v := *qb.offset
		nb.offset = &v
	}
	return nb
}

// sibling creates an empty builder sharing this builder's connection,
// dialect and placeholder configuration, used for nested condition groups.
func (qb *QueryBuilder) sibling() *QueryBuilder {
	nb := NewBuilder(qb.conn)
	nb.dialect = qb.dialect
	nb.prefix = qb.prefix
	nb.usePositional = qb.usePositional
	return nb
}

func cloneBindings(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func clonePositional(src map[bindingKind][]any) map[bindingKind][]any {
	dst := make(map[bindingKind][]any, len(src))
	for k, v := range src {
		dst[k] = append([]any(nil), v...)
	}
	return dst
}

func cloneRows(src [][]any) [][]any {
	if src == nil {
		return nil
	}
	dst := make([][]any, len(src))
	for i, row := range src {
		dst[i] = append([]any(nil), row...)
	}
	return dst
}
