// -----------------------------------------------------------------------------
// Statement Driver
// -----------------------------------------------------------------------------
// The boundary where rendered SQL leaves the builder. Driver and Stmt are
// the narrow contracts the façade executes through; SQLDriver adapts them
// to database/sql.
//
// The builder emits :name placeholders, which database/sql does not speak,
// so SQLDriver rewrites them to the driver's positional markers right
// before execution. The scanner walks the text byte-wise and skips quoted
// runs ('...', "...", `...`) and Postgres ::type casts, so a colon inside a
// string literal is never mistaken for a placeholder. For ?-style drivers a
// name appearing twice appends its value twice; for $n-style drivers the
// ordinal is reused.
// -----------------------------------------------------------------------------

package database

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/goragodwiriya/nowjs-crm-sub005/pkg/database/dialect"
)

// Params carries the resolved bindings of one execution. Exactly one of the
// two fields is set: Named for :name statements, Positional for ? ones.
type Params struct {
	Named      map[string]any
	Positional []any
}

// Driver prepares statements for execution. Implementations wrap a real
// database handle; tests substitute fakes.
type Driver interface {
	Prepare(query string) (Stmt, error)
}

// Stmt executes one prepared statement. Query is for row-returning
// statements, Exec for mutations.
type Stmt interface {
	Query(params Params) (*ResultSet, error)
	Exec(params Params) (*ResultSet, error)
}

// SQLDriver adapts a database/sql handle to the Driver contract.
type SQLDriver struct {
	db      *sql.DB
	dialect dialect.Dialect
}

// NewSQLDriver wraps a database/sql handle. The dialect decides the
// positional marker style the rewrite targets.
func NewSQLDriver(db *sql.DB, d dialect.Dialect) *SQLDriver {
	return &SQLDriver{db: db, dialect: d}
}

// Prepare implements Driver. Preparation is deferred to execution time so
// the rewrite happens once per call with the bindings in hand.
func (d *SQLDriver) Prepare(query string) (Stmt, error) {
	return &sqlStmt{driver: d, query: query}, nil
}

type sqlStmt struct {
	driver *SQLDriver
	query  string
}

// Query implements Stmt for row-returning statements. Rows are materialized
// immediately and the database cursor is released before returning.
func (s *sqlStmt) Query(params Params) (*ResultSet, error) {
	query, args, err := s.rewrite(params)
	if err != nil {
		return nil, err
	}
	rows, err := s.driver.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return resultSetFromRows(rows)
}

// Exec implements Stmt for mutations.
func (s *sqlStmt) Exec(params Params) (*ResultSet, error) {
	query, args, err := s.rewrite(params)
	if err != nil {
		return nil, err
	}
	res, err := s.driver.db.Exec(query, args...)
	if err != nil {
		return nil, err
	}
	affected, _ := res.RowsAffected()
	lastID, _ := res.LastInsertId()
	return NewExecResult(affected, lastID), nil
}

// rewrite converts the statement to the form database/sql expects.
// Positional statements pass through untouched.
func (s *sqlStmt) rewrite(params Params) (string, []any, error) {
	if params.Named == nil {
		return s.query, params.Positional, nil
	}
	return rewriteNamed(s.query, params.Named, s.driver.dialect)
}

// rewriteNamed replaces :name placeholders with the dialect's positional
// markers and collects the argument list in marker order.
func rewriteNamed(query string, named map[string]any, d dialect.Dialect) (string, []any, error) {
	var sb strings.Builder
	sb.Grow(len(query))
	args := make([]any, 0, len(named))
	dollar := d != nil && d.Placeholder(1) != "?"
	ordinals := make(map[string]int)

	for i := 0; i < len(query); i++ {
		c := query[i]
		switch c {
		case '\'', '"', '`':
			i = copyQuoted(&sb, query, i)

		case ':':
			if i+1 < len(query) && query[i+1] == ':' {
				// Postgres cast, not a placeholder.
				sb.WriteString("::")
				i++
				continue
			}
			j := i + 1
			for j < len(query) && isNameByte(query[j]) {
				j++
			}
			if j == i+1 {
				sb.WriteByte(c)
				continue
			}
			name := query[i+1 : j]
			value, ok := named[name]
			if !ok {
				return "", nil, fmt.Errorf("%w: %q", ErrMissingParam, name)
			}
			if dollar {
				ordinal, seen := ordinals[name]
				if !seen {
					args = append(args, value)
					ordinal = len(args)
					ordinals[name] = ordinal
				}
				sb.WriteString(d.Placeholder(ordinal))
			} else {
				args = append(args, value)
				sb.WriteByte('?')
			}
			i = j - 1

		default:
			sb.WriteByte(c)
		}
	}
	return sb.String(), args, nil
}

// copyQuoted copies a quoted run starting at position i verbatim, honoring
// doubled-quote escapes, and returns the index of the closing quote.
func copyQuoted(sb *strings.Builder, query string, i int) int {
	quote := query[i]
	sb.WriteByte(quote)
	for i++; i < len(query); i++ {
		sb.WriteByte(query[i])
		if query[i] == quote {
			if i+1 < len(query) && query[i+1] == quote {
				i++
				sb.WriteByte(query[i])
				continue
			}
			return i
		}
	}
	return i - 1
}

func isNameByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}
