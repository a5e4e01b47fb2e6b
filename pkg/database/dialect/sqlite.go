package dialect

import (
	"fmt"
	"strings"
)

// ----------------------------------------------------------------------------
// SQLite Dialect
// ----------------------------------------------------------------------------
// Double-quote identifier quoting, "LIMIT n OFFSET m" row limiting and
// INSERT OR IGNORE as the duplicate-tolerant insert form. Date parts are
// extracted with strftime since SQLite has no YEAR/MONTH/DAY functions.
// ----------------------------------------------------------------------------

// SQLite renders SQL for SQLite databases.
type SQLite struct {
	base
}

// NewSQLite creates the SQLite dialect.
func NewSQLite() *SQLite {
	return &SQLite{base{quote: '"'}}
}

func init() {
	Register(NewSQLite())
}

// DriverName returns "sqlite".
func (s *SQLite) DriverName() string {
	return "sqlite"
}

// Supports reports true for SQLite driver names and aliases.
func (s *SQLite) Supports(driverName string) bool {
	switch strings.ToLower(strings.TrimSpace(driverName)) {
	case "sqlite", "sqlite3":
		return true
	}
	return false
}

// Wrap quotes an identifier with double quotes.
func (s *SQLite) Wrap(identifier string) (string, error) {
	return s.wrap(identifier)
}

// WrapTable quotes a table name and attaches an optional alias.
func (s *SQLite) WrapTable(table string, alias string) (string, error) {
	return s.wrapTable(table, alias)
}

// QuoteValue renders an inline literal with doubled single quotes.
func (s *SQLite) QuoteValue(value any) string {
	return s.quoteValue(value)
}

// Placeholder returns "?" for every index.
func (s *SQLite) Placeholder(index int) string {
	return "?"
}

// SelectClause renders "SELECT [DISTINCT] col, col, ...".
func (s *SQLite) SelectClause(distinct bool, columns []string) string {
	return s.selectClause(distinct, columns)
}

// FromClause renders "FROM <tableSQL>".
func (s *SQLite) FromClause(tableSQL string) string {
	return s.fromClause(tableSQL)
}

// JoinClause renders the join sequence.
func (s *SQLite) JoinClause(joins []JoinSpec) string {
	return s.joinClause(joins)
}

// GroupByClause renders "GROUP BY col, col, ...".
func (s *SQLite) GroupByClause(groups []string) string {
	return s.groupByClause(groups)
}

// OrderByClause renders "ORDER BY col DIR, col DIR, ...".
func (s *SQLite) OrderByClause(orders []OrderSpec) string {
	return s.orderByClause(orders)
}

// LimitClause renders "LIMIT n OFFSET m". An offset without a limit uses
// LIMIT -1, which SQLite defines as unlimited.
func (s *SQLite) LimitClause(limit, offset *int) string {
	switch {
	case limit == nil && offset == nil:
		return ""
	case offset == nil:
		return fmt.Sprintf("LIMIT %d", *limit)
	case limit == nil:
		return fmt.Sprintf("LIMIT -1 OFFSET %d", *offset)
	default:
		return fmt.Sprintf("LIMIT %d OFFSET %d", *limit, *offset)
	}
}

// InsertStatement renders "INSERT [OR IGNORE] INTO t (cols) VALUES tuples".
func (s *SQLite) InsertStatement(tableSQL string, columns []string, tuples []string, ignore bool) string {
	verb := "INSERT INTO"
	if ignore {
		verb = "INSERT OR IGNORE INTO"
	}
	return fmt.Sprintf("%s %s (%s) VALUES %s",
		verb,
		tableSQL,
		strings.Join(columns, ", "),
		strings.Join(tuples, ", "),
	)
}

// UpdateStatement renders the UPDATE skeleton. Standard SQLite builds do not
// support ORDER BY or LIMIT on UPDATE, so both clauses are dropped.
func (s *SQLite) UpdateStatement(tableSQL string, assignments []string, whereSQL, orderSQL, limitSQL string) string {
	return s.updateStatement(tableSQL, assignments, whereSQL, "", "")
}

// DeleteStatement renders the DELETE skeleton, dropping ORDER BY and LIMIT
// for the same reason as UpdateStatement.
func (s *SQLite) DeleteStatement(tableSQL string, whereSQL, orderSQL, limitSQL string) string {
	return s.deleteStatement(tableSQL, whereSQL, "", "")
}

// FuncExpr translates portable function names into SQLite spellings.
func (s *SQLite) FuncExpr(name string, args []string) string {
	fn := strings.ToUpper(strings.TrimSpace(name))
	switch fn {
	case "NOW":
		return "datetime('now')"
	case "RAND":
		return "RANDOM()"
	case "CONCAT":
		return "(" + strings.Join(args, " || ") + ")"
	case "YEAR":
		if len(args) == 1 {
			return fmt.Sprintf("CAST(strftime('%%Y', %s) AS INTEGER)", args[0])
		}
	case "MONTH":
		if len(args) == 1 {
			return fmt.Sprintf("CAST(strftime('%%m', %s) AS INTEGER)", args[0])
		}
	case "DAY":
		if len(args) == 1 {
			return fmt.Sprintf("CAST(strftime('%%d', %s) AS INTEGER)", args[0])
		}
	}
	return s.funcExpr(fn, args)
}
