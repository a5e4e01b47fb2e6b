// Package dialect provides SQL grammar implementations for the supported
// database families. The query builder assembles semantic fragments (column
// lists, join descriptors, order specs, limit/offset) and delegates the
// database-specific rendering (identifier quoting, LIMIT syntax, statement
// skeletons, function spelling) to a Dialect selected from the connection's
// driver name.
package dialect

import (
	"fmt"
	"strings"
)

// ----------------------------------------------------------------------------
// Dialect Interface
// ----------------------------------------------------------------------------

// Dialect renders dialect-specific SQL text from already-assembled fragments.
// One implementation exists per supported database family; ForDriver selects
// the implementation from a driver name.
//
// All inputs to the clause methods are pre-rendered: identifiers have been
// wrapped, where trees flattened, expressions resolved. A Dialect only
// formats, it never inspects builder state.
type Dialect interface {
	// DriverName returns the canonical driver identity (e.g. "mysql").
	DriverName() string

	// Supports reports whether this dialect serves the given driver name.
	// Matching is case-insensitive and covers driver aliases
	// (e.g. "mariadb" for MySQL, "sqlite3" for SQLite).
	Supports(driverName string) bool

	// Wrap quotes a column or table identifier, handling dotted
	// "table.column" paths part by part. The wildcard "*" passes through
	// unquoted. Identifiers with unsafe characters return an error.
	Wrap(identifier string) (string, error)

	// WrapTable quotes a table name and attaches an optional alias.
	WrapTable(table string, alias string) (string, error)

	// QuoteValue renders a Go value as an inline SQL literal. Used only
	// for join conditions and debug output, never for user input on the
	// parameterized paths.
	QuoteValue(value any) string

	// Placeholder returns the positional parameter marker for the given
	// 1-based index ("?" for MySQL/SQLite, "$1", "$2", ... for PostgreSQL).
	Placeholder(index int) string

	// SelectClause renders "SELECT [DISTINCT] col, col, ...".
	SelectClause(distinct bool, columns []string) string

	// FromClause renders "FROM <tableSQL>".
	FromClause(tableSQL string) string

	// JoinClause renders the full join sequence from pre-rendered specs.
	JoinClause(joins []JoinSpec) string

	// GroupByClause renders "GROUP BY col, col, ..." from wrapped columns.
	GroupByClause(groups []string) string

	// OrderByClause renders "ORDER BY col DIR, col DIR, ...".
	OrderByClause(orders []OrderSpec) string

	// LimitClause renders the dialect's row-limiting syntax. Either part
	// may be nil; both nil renders the empty string.
	LimitClause(limit, offset *int) string

	// InsertStatement renders the INSERT skeleton. Each tuple is a
	// pre-rendered "(v, v, ...)" group; ignore selects the dialect's
	// duplicate-tolerant form.
	InsertStatement(tableSQL string, columns []string, tuples []string, ignore bool) string

	// UpdateStatement renders the UPDATE skeleton. whereSQL, orderSQL and
	// limitSQL may be empty; dialects that do not support ORDER BY or
	// LIMIT on UPDATE silently drop those parts.
	UpdateStatement(tableSQL string, assignments []string, whereSQL, orderSQL, limitSQL string) string

	// DeleteStatement renders the DELETE skeleton with the same clause
	// rules as UpdateStatement.
	DeleteStatement(tableSQL string, whereSQL, orderSQL, limitSQL string) string

	// FuncExpr renders a named SQL function call from pre-rendered
	// arguments, translating portable function names (NOW, RAND, IFNULL,
	// GROUP_CONCAT, YEAR, MONTH, DAY, CONCAT) into the dialect's spelling.
	// Unknown names render as NAME(arg, arg, ...).
	FuncExpr(name string, args []string) string
}

// ----------------------------------------------------------------------------
// Fragment Types
// ----------------------------------------------------------------------------

// JoinSpec carries one fully-rendered join. The table and condition text are
// produced at join-construction time by the builder; the dialect only glues
// them to the join keyword.
type JoinSpec struct {
	Type         string // "INNER", "LEFT", "RIGHT", "CROSS"
	TableSQL     string
	ConditionSQL string // empty for CROSS joins
}

// OrderSpec carries one ORDER BY entry with an already-wrapped column.
type OrderSpec struct {
	ColumnSQL string
	Direction string // "ASC" or "DESC"
}

// ----------------------------------------------------------------------------
// Operator Whitelist
// ----------------------------------------------------------------------------

// allowedOperators is the closed set of comparison operators accepted in
// WHERE and HAVING conditions. Everything else is rejected before it can
// reach SQL text.
var allowedOperators = map[string]bool{
	"=":           true,
	"!=":          true,
	"<>":          true,
	"<":           true,
	">":           true,
	"<=":          true,
	">=":          true,
	"LIKE":        true,
	"NOT LIKE":    true,
	"IN":          true,
	"NOT IN":      true,
	"BETWEEN":     true,
	"NOT BETWEEN": true,
	"IS":          true,
	"IS NOT":      true,
}

// NormalizeOperator validates an operator against the whitelist and returns
// its canonical upper-case form. An empty operator normalizes to "=".
//
// Returns:
//   - string: Normalized operator
//   - error: ErrInvalidOperator if the operator is not whitelisted
func NormalizeOperator(operator string) (string, error) {
	op := strings.ToUpper(strings.TrimSpace(operator))
	if op == "" {
		return "=", nil
	}
	if !allowedOperators[op] {
		return "", fmt.Errorf("%w: %q", ErrInvalidOperator, operator)
	}
	return op, nil
}

// ----------------------------------------------------------------------------
// Registry
// ----------------------------------------------------------------------------

// registry holds the known dialects in registration order. Concrete dialects
// register themselves from their init functions; external packages may add
// their own via Register.
var registry []Dialect

// Register adds a dialect to the lookup set used by ForDriver.
func Register(d Dialect) {
	registry = append(registry, d)
}

// ForDriver selects the dialect serving the given driver name.
//
// Parameters:
//   - driverName: Driver identity from the connection config
//     (e.g. "mysql", "mariadb", "sqlite3", "postgres")
//
// Returns:
//   - Dialect: The matching dialect
//   - error: ErrUnknownDriver when no registered dialect supports the name
//
// Example:
//
//	d, err := dialect.ForDriver("mariadb")
//	// d is the MySQL dialect
func ForDriver(driverName string) (Dialect, error) {
	for _, d := range registry {
		if d.Supports(driverName) {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driverName)
}

// ----------------------------------------------------------------------------
// Sentinel Errors
// ----------------------------------------------------------------------------

// Shared failure cases for all dialect implementations. Defined here so the
// builder package can match them without depending on a concrete dialect.
var (
	ErrUnknownDriver     = &DialectError{Message: "no dialect registered for driver"}
	ErrInvalidIdentifier = &DialectError{Message: "invalid SQL identifier"}
	ErrInvalidOperator   = &DialectError{Message: "operator not in whitelist"}
)

// DialectError represents a grammar-level failure.
type DialectError struct {
	Message string
}

// Error returns the message prefixed with the package identity.
func (e *DialectError) Error() string {
	return "dialect: " + e.Message
}
