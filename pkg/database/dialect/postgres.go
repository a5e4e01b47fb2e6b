package dialect

import (
	"fmt"
	"strings"
)

// ----------------------------------------------------------------------------
// PostgreSQL Dialect
// ----------------------------------------------------------------------------
// Double-quote identifier quoting, "$1"-style positional placeholders,
// "LIMIT n OFFSET m" row limiting and ON CONFLICT DO NOTHING as the
// duplicate-tolerant insert form.
// ----------------------------------------------------------------------------

// Postgres renders SQL for PostgreSQL databases.
type Postgres struct {
	base
}

// NewPostgres creates the PostgreSQL dialect.
func NewPostgres() *Postgres {
	return &Postgres{base{quote: '"'}}
}

func init() {
	Register(NewPostgres())
}

// DriverName returns "postgres".
func (p *Postgres) DriverName() string {
	return "postgres"
}

// Supports reports true for PostgreSQL driver names and aliases.
func (p *Postgres) Supports(driverName string) bool {
	switch strings.ToLower(strings.TrimSpace(driverName)) {
	case "postgres", "postgresql", "pgsql", "pgx":
		return true
	}
	return false
}

// Wrap quotes an identifier with double quotes.
func (p *Postgres) Wrap(identifier string) (string, error) {
	return p.wrap(identifier)
}

// WrapTable quotes a table name and attaches an optional alias.
func (p *Postgres) WrapTable(table string, alias string) (string, error) {
	return p.wrapTable(table, alias)
}

// QuoteValue renders an inline literal. Booleans use the native TRUE/FALSE
// keywords instead of the numeric form.
func (p *Postgres) QuoteValue(value any) string {
	if v, ok := value.(bool); ok {
		if v {
			return "TRUE"
		}
		return "FALSE"
	}
	return p.quoteValue(value)
}

// Placeholder returns "$n" for the given 1-based index.
func (p *Postgres) Placeholder(index int) string {
	return fmt.Sprintf("$%d", index)
}

// SelectClause renders "SELECT [DISTINCT] col, col, ...".
func (p *Postgres) SelectClause(distinct bool, columns []string) string {
	return p.selectClause(distinct, columns)
}

// FromClause renders "FROM <tableSQL>".
func (p *Postgres) FromClause(tableSQL string) string {
	return p.fromClause(tableSQL)
}

// JoinClause renders the join sequence.
func (p *Postgres) JoinClause(joins []JoinSpec) string {
	return p.joinClause(joins)
}

// GroupByClause renders "GROUP BY col, col, ...".
func (p *Postgres) GroupByClause(groups []string) string {
	return p.groupByClause(groups)
}

// OrderByClause renders "ORDER BY col DIR, col DIR, ...".
func (p *Postgres) OrderByClause(orders []OrderSpec) string {
	return p.orderByClause(orders)
}

// LimitClause renders "LIMIT n OFFSET m"; either part may stand alone.
func (p *Postgres) LimitClause(limit, offset *int) string {
	switch {
	case limit == nil && offset == nil:
		return ""
	case offset == nil:
		return fmt.Sprintf("LIMIT %d", *limit)
	case limit == nil:
		return fmt.Sprintf("OFFSET %d", *offset)
	default:
		return fmt.Sprintf("LIMIT %d OFFSET %d", *limit, *offset)
	}
}

// InsertStatement renders the INSERT skeleton, appending
// ON CONFLICT DO NOTHING for the ignore form.
func (p *Postgres) InsertStatement(tableSQL string, columns []string, tuples []string, ignore bool) string {
	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		tableSQL,
		strings.Join(columns, ", "),
		strings.Join(tuples, ", "),
	)
	if ignore {
		sql += " ON CONFLICT DO NOTHING"
	}
	return sql
}

// UpdateStatement renders the UPDATE skeleton. PostgreSQL does not support
// ORDER BY or LIMIT on UPDATE, so both clauses are dropped.
func (p *Postgres) UpdateStatement(tableSQL string, assignments []string, whereSQL, orderSQL, limitSQL string) string {
	return p.updateStatement(tableSQL, assignments, whereSQL, "", "")
}

// DeleteStatement renders the DELETE skeleton, dropping ORDER BY and LIMIT
// for the same reason as UpdateStatement.
func (p *Postgres) DeleteStatement(tableSQL string, whereSQL, orderSQL, limitSQL string) string {
	return p.deleteStatement(tableSQL, whereSQL, "", "")
}

// FuncExpr translates portable function names into PostgreSQL spellings.
func (p *Postgres) FuncExpr(name string, args []string) string {
	fn := strings.ToUpper(strings.TrimSpace(name))
	switch fn {
	case "RAND":
		return "RANDOM()"
	case "IFNULL":
		return p.funcExpr("COALESCE", args)
	case "GROUP_CONCAT":
		if len(args) == 2 {
			return fmt.Sprintf("STRING_AGG(%s, %s)", args[0], args[1])
		}
		if len(args) == 1 {
			return fmt.Sprintf("STRING_AGG(%s, ',')", args[0])
		}
	case "YEAR":
		if len(args) == 1 {
			return fmt.Sprintf("EXTRACT(YEAR FROM %s)", args[0])
		}
	case "MONTH":
		if len(args) == 1 {
			return fmt.Sprintf("EXTRACT(MONTH FROM %s)", args[0])
		}
	case "DAY":
		if len(args) == 1 {
			return fmt.Sprintf("EXTRACT(DAY FROM %s)", args[0])
		}
	}
	return p.funcExpr(fn, args)
}
