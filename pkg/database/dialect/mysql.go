package dialect

import (
	"fmt"
	"strings"
)

// ----------------------------------------------------------------------------
// MySQL Dialect
// ----------------------------------------------------------------------------
// Backtick identifier quoting, "LIMIT offset, count" row limiting and
// INSERT IGNORE as the duplicate-tolerant insert form. Also serves MariaDB.
// ----------------------------------------------------------------------------

// MySQL renders SQL for the MySQL/MariaDB family.
type MySQL struct {
	base
}

// NewMySQL creates the MySQL dialect.
func NewMySQL() *MySQL {
	return &MySQL{base{quote: '`'}}
}

func init() {
	Register(NewMySQL())
}

// DriverName returns "mysql".
func (m *MySQL) DriverName() string {
	return "mysql"
}

// Supports reports true for MySQL driver names and aliases.
func (m *MySQL) Supports(driverName string) bool {
	switch strings.ToLower(strings.TrimSpace(driverName)) {
	case "mysql", "mariadb":
		return true
	}
	return false
}

// Wrap quotes an identifier with backticks.
//
// Example:
//
//	m.Wrap("users.id") → "`users`.`id`"
func (m *MySQL) Wrap(identifier string) (string, error) {
	return m.wrap(identifier)
}

// WrapTable quotes a table name and attaches an optional alias.
func (m *MySQL) WrapTable(table string, alias string) (string, error) {
	return m.wrapTable(table, alias)
}

// QuoteValue renders an inline literal. MySQL treats backslash as an escape
// character inside string literals, so it is doubled before the quote
// doubling.
func (m *MySQL) QuoteValue(value any) string {
	switch v := value.(type) {
	case string:
		escaped := strings.ReplaceAll(v, `\`, `\\`)
		return m.quoteString(escaped)
	case []byte:
		return m.QuoteValue(string(v))
	default:
		return m.quoteValue(value)
	}
}

// Placeholder returns "?" for every index.
func (m *MySQL) Placeholder(index int) string {
	return "?"
}

// SelectClause renders "SELECT [DISTINCT] col, col, ...".
func (m *MySQL) SelectClause(distinct bool, columns []string) string {
	return m.selectClause(distinct, columns)
}

// FromClause renders "FROM <tableSQL>".
func (m *MySQL) FromClause(tableSQL string) string {
	return m.fromClause(tableSQL)
}

// JoinClause renders the join sequence.
func (m *MySQL) JoinClause(joins []JoinSpec) string {
	return m.joinClause(joins)
}

// GroupByClause renders "GROUP BY col, col, ...".
func (m *MySQL) GroupByClause(groups []string) string {
	return m.groupByClause(groups)
}

// OrderByClause renders "ORDER BY col DIR, col DIR, ...".
func (m *MySQL) OrderByClause(orders []OrderSpec) string {
	return m.orderByClause(orders)
}

// LimitClause renders MySQL's comma form.
//
// Example:
//
//	limit=10, offset=nil → "LIMIT 10"
//	limit=10, offset=20  → "LIMIT 20, 10"
//
// An offset without a limit uses the documented MySQL idiom of a very large
// row count, since the comma form cannot express "all remaining rows".
func (m *MySQL) LimitClause(limit, offset *int) string {
	switch {
	case limit == nil && offset == nil:
		return ""
	case offset == nil:
		return fmt.Sprintf("LIMIT %d", *limit)
	case limit == nil:
		return fmt.Sprintf("LIMIT %d, 18446744073709551615", *offset)
	default:
		return fmt.Sprintf("LIMIT %d, %d", *offset, *limit)
	}
}

// InsertStatement renders "INSERT [IGNORE] INTO t (cols) VALUES tuples".
func (m *MySQL) InsertStatement(tableSQL string, columns []string, tuples []string, ignore bool) string {
	verb := "INSERT INTO"
	if ignore {
		verb = "INSERT IGNORE INTO"
	}
	return fmt.Sprintf("%s %s (%s) VALUES %s",
		verb,
		tableSQL,
		strings.Join(columns, ", "),
		strings.Join(tuples, ", "),
	)
}

// UpdateStatement renders the UPDATE skeleton. MySQL honors ORDER BY and
// LIMIT on single-table updates, so both clauses are kept.
func (m *MySQL) UpdateStatement(tableSQL string, assignments []string, whereSQL, orderSQL, limitSQL string) string {
	return m.updateStatement(tableSQL, assignments, whereSQL, orderSQL, limitSQL)
}

// DeleteStatement renders the DELETE skeleton, keeping ORDER BY and LIMIT.
func (m *MySQL) DeleteStatement(tableSQL string, whereSQL, orderSQL, limitSQL string) string {
	return m.deleteStatement(tableSQL, whereSQL, orderSQL, limitSQL)
}

// FuncExpr renders a function call. Every portable name is native MySQL;
// only GROUP_CONCAT needs its SEPARATOR form when a separator is given.
func (m *MySQL) FuncExpr(name string, args []string) string {
	fn := strings.ToUpper(strings.TrimSpace(name))
	if fn == "GROUP_CONCAT" && len(args) == 2 {
		return fmt.Sprintf("GROUP_CONCAT(%s SEPARATOR %s)", args[0], args[1])
	}
	return m.funcExpr(fn, args)
}
