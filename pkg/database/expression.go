// -----------------------------------------------------------------------------
// SQL Expressions
// -----------------------------------------------------------------------------
// Expression value-objects for raw fragments, function calls and column
// references. Expressions render themselves against a dialect, so one program
// value can produce NOW() on MySQL and datetime('now') on SQLite.
//
// Rendering needs a dialect. Inside a builder the builder's dialect is
// passed down. Standalone expressions fall back to the default connection's
// dialect and fail with ErrNoDialect when none is configured.
// -----------------------------------------------------------------------------

package database

import (
	"github.com/goragodwiriya/nowjs-crm-sub005/pkg/database/dialect"
)

// Expression is implemented by values that render themselves to SQL text.
// The builder embeds the rendered fragment verbatim, so expressions are the
// escape hatch for SQL that plain column/value arguments cannot express.
type Expression interface {
	SQL(d dialect.Dialect) (string, error)
}

// Binder is implemented by expressions that carry their own bindings. When
// such an expression is embedded, the builder absorbs the bindings under
// fresh placeholder names so they can never collide with its own.
type Binder interface {
	Bindings() map[string]any
}

// resolveDialect returns d when given, otherwise the default connection's
// dialect.
func resolveDialect(d dialect.Dialect) (dialect.Dialect, error) {
	if d != nil {
		return d, nil
	}
	if conn := DefaultConnection(); conn != nil {
		if cd := conn.Dialect(); cd != nil {
			return cd, nil
		}
	}
	return nil, ErrNoDialect
}

// -----------------------------------------------------------------------------
// Raw fragments
// -----------------------------------------------------------------------------

// RawExpr is a SQL fragment used verbatim, optionally with named bindings.
type RawExpr struct {
	sql      string
	bindings map[string]any
}

// Raw builds a raw SQL expression. The fragment is embedded without any
// validation, so it must never contain user input. Values belong in the
// optional bindings map and are referenced as :name inside the fragment.
//
// Example:
//
//	qb.Select(database.Raw("price * :rate", map[string]any{"rate": 1.07}))
func Raw(sql string, bindings ...map[string]any) *RawExpr {
	e := &RawExpr{sql: sql}
	if len(bindings) > 0 {
		e.bindings = bindings[0]
	}
	return e
}

// SQL implements Expression.
func (e *RawExpr) SQL(dialect.Dialect) (string, error) {
	return e.sql, nil
}

// Bindings implements Binder.
func (e *RawExpr) Bindings() map[string]any {
	return e.bindings
}

// String returns the fragment. Raw fragments render the same on every
// dialect.
func (e *RawExpr) String() string {
	return e.sql
}

// -----------------------------------------------------------------------------
// Column references
// -----------------------------------------------------------------------------

// ColumnRef renders a quoted column reference. Using a ColumnRef as a
// comparison value turns the condition into a column-to-column comparison
// instead of a bound value.
//
// Example:
//
//	qb.Where("updated_at", ">", database.Col("created_at"))
//	→ `updated_at` > `created_at`
type ColumnRef struct {
	name string
}

// Col builds a column reference, dot notation included.
func Col(name string) *ColumnRef {
	return &ColumnRef{name: name}
}

// SQL implements Expression. The name goes through the dialect's identifier
// validation, so a malicious name fails the render.
func (c *ColumnRef) SQL(d dialect.Dialect) (string, error) {
	d, err := resolveDialect(d)
	if err != nil {
		return "", err
	}
	return d.Wrap(c.name)
}

// -----------------------------------------------------------------------------
// Function calls
// -----------------------------------------------------------------------------

// FuncCall renders a SQL function call through the dialect's function
// vocabulary, so portable names like NOW or CONCAT come out in the target
// dialect's spelling.
type FuncCall struct {
	name string
	args []any
}

// Fn builds a function call expression.
//
// Argument handling:
//   - string arguments are treated as column names and quoted
//   - Expression arguments are rendered recursively
//   - anything else becomes a quoted literal
//
// A literal string argument therefore needs Raw: Fn("COALESCE", "nick",
// Raw("'anonymous'")).
//
// Example:
//
//	database.Fn("CONCAT", "first_name", database.Raw("' '"), "last_name")
func Fn(name string, args ...any) *FuncCall {
	return &FuncCall{name: name, args: args}
}

// SQL implements Expression.
func (f *FuncCall) SQL(d dialect.Dialect) (string, error) {
	d, err := resolveDialect(d)
	if err != nil {
		return "", err
	}
	rendered := make([]string, len(f.args))
	for i, arg := range f.args {
		switch a := arg.(type) {
		case Expression:
			s, err := a.SQL(d)
			if err != nil {
				return "", err
			}
			rendered[i] = s
		case string:
			s, err := d.Wrap(a)
			if err != nil {
				return "", err
			}
			rendered[i] = s
		default:
			rendered[i] = d.QuoteValue(a)
		}
	}
	return d.FuncExpr(f.name, rendered), nil
}

// literal wraps a Go value so it renders as a quoted SQL literal even where
// a plain string would be read as a column name.
type literal struct {
	value any
}

func (l literal) SQL(d dialect.Dialect) (string, error) {
	d, err := resolveDialect(d)
	if err != nil {
		return "", err
	}
	return d.QuoteValue(l.value), nil
}

// Val wraps a Go value as a quoted SQL literal expression. Useful where a
// plain string argument would be read as a column name, for example string
// constants in join conditions or function arguments.
//
// Example:
//
//	qb.Join("profiles", "profiles.kind", "=", database.Val("primary"))
func Val(value any) Expression {
	return literal{value: value}
}

// -----------------------------------------------------------------------------
// Alias pairs
// -----------------------------------------------------------------------------

// AliasExpr pairs a renderable with a result alias for a select list. Expr
// may be an Expression or a *QueryBuilder subquery.
type AliasExpr struct {
	Expr  any
	Alias string
}

// As attaches a result alias to an expression or subquery.
//
// Example:
//
//	qb.Select("id", database.As(database.Fn("COUNT", "*"), "total"))
func As(expr any, alias string) *AliasExpr {
	return &AliasExpr{Expr: expr, Alias: alias}
}

// -----------------------------------------------------------------------------
// Common function shortcuts
// -----------------------------------------------------------------------------

// Now renders the dialect's current-timestamp function.
func Now() *FuncCall {
	return Fn("NOW")
}

// Rand renders the dialect's random-number function.
func Rand() *FuncCall {
	return Fn("RAND")
}

// Year extracts the year of a date column.
func Year(column string) *FuncCall {
	return Fn("YEAR", column)
}

// Month extracts the month of a date column.
func Month(column string) *FuncCall {
	return Fn("MONTH", column)
}

// Day extracts the day of month of a date column.
func Day(column string) *FuncCall {
	return Fn("DAY", column)
}

// Concat concatenates columns and expressions. Literal separators need Raw:
// Concat("city", Raw("', '"), "country").
func Concat(args ...any) *FuncCall {
	return Fn("CONCAT", args...)
}

// IfNull falls back to a literal when the column is NULL.
func IfNull(column string, fallback any) *FuncCall {
	return Fn("IFNULL", column, fallback)
}

// GroupConcat aggregates a column into a separator-joined string.
func GroupConcat(column, separator string) *FuncCall {
	return Fn("GROUP_CONCAT", column, literal{value: separator})
}

// CountAll is the COUNT(*) aggregate.
func CountAll() *RawExpr {
	return Raw("COUNT(*)")
}
