// -----------------------------------------------------------------------------
// SELECT Statement Assembly
// -----------------------------------------------------------------------------
// Compiles the accumulated builder state into a SELECT statement. The
// skeleton order is fixed: select list, FROM, joins, WHERE, GROUP BY,
// HAVING, ORDER BY, LIMIT/OFFSET, with an optional EXPLAIN prefix. Clause
// text comes from the dialect; this file only decides what goes where.
//
// Column positions are polymorphic: plain names, "col AS alias" strings,
// aggregate expressions, Expression values, alias pairs and whole
// sub-builders are all accepted. Subqueries are parenthesized and their
// bindings absorbed into this builder.
// -----------------------------------------------------------------------------

package database

import (
	"fmt"
	"strings"

	"github.com/goragodwiriya/nowjs-crm-sub005/pkg/database/dialect"
)

// compileSelect renders the SELECT skeleton.
func (qb *QueryBuilder) compileSelect() (string, error) {
	d, err := qb.dialectRef()
	if err != nil {
		return "", err
	}

	columns, err := qb.renderSelectColumns(d)
	if err != nil {
		return "", err
	}
	tableSQL, err := qb.renderFromTarget(d)
	if err != nil {
		return "", err
	}

	sqlText := d.SelectClause(qb.distinct, columns) + " " + d.FromClause(tableSQL)

	if len(qb.joins) > 0 {
		if qb.usePositional {
			qb.replayPositional(bindJoin, qb.joinArgs)
		}
		sqlText += " " + d.JoinClause(qb.joins)
	}

	whereSQL, err := qb.flattenWheres(qb.wheres, bindWhere)
	if err != nil {
		return "", err
	}
	if whereSQL != "" {
		sqlText += " WHERE " + whereSQL
	}

	if len(qb.groups) > 0 {
		wrapped := make([]string, len(qb.groups))
		for i, column := range qb.groups {
			wrapped[i], err = qb.renderColumnExpr(d, column)
			if err != nil {
				return "", fmt.Errorf("group by clause: %w", err)
			}
		}
		sqlText += " " + d.GroupByClause(wrapped)
	}

	havingSQL, err := qb.flattenWheres(qb.havings, bindHaving)
	if err != nil {
		return "", err
	}
	if havingSQL != "" {
		sqlText += " HAVING " + havingSQL
	}

	if len(qb.orders) > 0 {
		specs := make([]dialect.OrderSpec, len(qb.orders))
		for i, order := range qb.orders {
			columnSQL, err := qb.renderColumnExpr(d, order.Column)
			if err != nil {
				return "", fmt.Errorf("order by clause: %w", err)
			}
			specs[i] = dialect.OrderSpec{ColumnSQL: columnSQL, Direction: string(order.Direction)}
		}
		sqlText += " " + d.OrderByClause(specs)
	}

	if limitSQL := d.LimitClause(qb.limit, qb.offset); limitSQL != "" {
		sqlText += " " + limitSQL
	}

	if qb.explained {
		sqlText = "EXPLAIN " + sqlText
	}
	return sqlText, nil
}

// renderSelectColumns renders the select list. An empty list means * and is
// left to the dialect.
func (qb *QueryBuilder) renderSelectColumns(d dialect.Dialect) ([]string, error) {
	if len(qb.columns) == 0 {
		return nil, nil
	}
	out := make([]string, len(qb.columns))
	for i, column := range qb.columns {
		s, err := qb.renderSelectColumn(d, column)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// renderSelectColumn renders one column position.
func (qb *QueryBuilder) renderSelectColumn(d dialect.Dialect, column any) (string, error) {
	switch c := column.(type) {
	case string:
		if idx := indexOfAs(c); idx >= 0 && !strings.ContainsAny(c, "()") {
			left := strings.TrimSpace(c[:idx])
			alias := strings.TrimSpace(c[idx+4:])
			leftSQL, err := qb.renderColumnExpr(d, left)
			if err != nil {
				return "", fmt.Errorf("select clause: %w", err)
			}
			aliasSQL, err := d.Wrap(alias)
			if err != nil {
				return "", fmt.Errorf("select clause: %w", err)
			}
			return leftSQL + " AS " + aliasSQL, nil
		}
		s, err := qb.renderColumnExpr(d, c)
		if err != nil {
			return "", fmt.Errorf("select clause: %w", err)
		}
		return s, nil

	case *AliasExpr:
		inner, err := qb.renderAliasInner(d, c.Expr)
		if err != nil {
			return "", err
		}
		aliasSQL, err := d.Wrap(c.Alias)
		if err != nil {
			return "", fmt.Errorf("select clause: %w", err)
		}
		return inner + " AS " + aliasSQL, nil

	case *QueryBuilder:
		return qb.renderColumnSubquery(c)

	case Expression:
		return qb.renderColumnExpression(d, c)

	default:
		return "", &ClauseError{Clause: "select", Detail: fmt.Sprintf("unsupported column type %T", column)}
	}
}

// renderAliasInner renders the expression side of an alias pair.
func (qb *QueryBuilder) renderAliasInner(d dialect.Dialect, expr any) (string, error) {
	switch e := expr.(type) {
	case *QueryBuilder:
		return qb.renderColumnSubquery(e)
	case Expression:
		return qb.renderColumnExpression(d, e)
	case string:
		s, err := qb.renderColumnExpr(d, e)
		if err != nil {
			return "", fmt.Errorf("select clause: %w", err)
		}
		return s, nil
	default:
		return "", &ClauseError{Clause: "select", Detail: fmt.Sprintf("unsupported alias target %T", expr)}
	}
}

// renderColumnSubquery renders a sub-builder in a column position and
// absorbs its bindings.
func (qb *QueryBuilder) renderColumnSubquery(sub *QueryBuilder) (string, error) {
	subSQL, err := sub.ToSQL()
	if err != nil {
		return "", err
	}
	frag, args, err := qb.absorbSub(sub, "("+subSQL+")")
	if err != nil {
		return "", err
	}
	if qb.usePositional {
		qb.replayPositional(bindSelect, args)
	}
	return frag, nil
}

// renderColumnExpression renders an Expression in a column position,
// absorbing its bindings when it carries any.
func (qb *QueryBuilder) renderColumnExpression(d dialect.Dialect, expr Expression) (string, error) {
	frag, err := expr.SQL(d)
	if err != nil {
		return "", err
	}
	if b, ok := expr.(Binder); ok {
		if bindings := b.Bindings(); len(bindings) > 0 {
			if qb.usePositional {
				return "", ErrMixedPlaceholders
			}
			frag = qb.absorbFragment(frag, bindings)
		}
	}
	return frag, nil
}

// indexOfAs finds a case-insensitive " as " separator in a column string,
// -1 when absent.
func indexOfAs(s string) int {
	return strings.Index(strings.ToLower(s), " as ")
}
