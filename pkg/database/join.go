// -----------------------------------------------------------------------------
// JOIN Operations
// -----------------------------------------------------------------------------
// Join construction for the builder. Joins differ from WHERE conditions in
// one deliberate way: the table text and the ON condition are rendered to
// final SQL when the join is added, and condition values are inlined as
// quoted literals instead of placeholders. Join conditions compare columns
// to columns or to code-level constants, never to external input, so they
// stay outside the binding machinery.
//
// Derived-table joins (JoinSub) are the exception for the table side: the
// sub-builder's bindings are absorbed like any other subquery.
// -----------------------------------------------------------------------------

package database

import (
	"fmt"
	"strings"

	"github.com/goragodwiriya/nowjs-crm-sub005/pkg/database/dialect"
)

// Join appends an INNER JOIN with one column comparison.
//
// The second operand is a column name when given as a string. Any other
// value is inlined as a quoted literal; use database.Val to force a string
// literal.
//
// Example:
//
//	qb.From("users").Join("posts", "users.id", "=", "posts.user_id")
//	// → INNER JOIN `posts` ON `users`.`id` = `posts`.`user_id`
func (qb *QueryBuilder) Join(table string, first string, operator string, second any) *QueryBuilder {
	return qb.JoinOn(InnerJoin, table, Cond{Column: first, Operator: operator, Value: second})
}

// LeftJoin appends a LEFT JOIN with one column comparison.
func (qb *QueryBuilder) LeftJoin(table string, first string, operator string, second any) *QueryBuilder {
	return qb.JoinOn(LeftJoin, table, Cond{Column: first, Operator: operator, Value: second})
}

// RightJoin appends a RIGHT JOIN with one column comparison.
func (qb *QueryBuilder) RightJoin(table string, first string, operator string, second any) *QueryBuilder {
	return qb.JoinOn(RightJoin, table, Cond{Column: first, Operator: operator, Value: second})
}

// CrossJoin appends a CROSS JOIN without a condition.
func (qb *QueryBuilder) CrossJoin(table string) *QueryBuilder {
	return qb.JoinOn(CrossJoin, table)
}

// JoinOn appends a join of any type with any number of ON comparisons,
// joined by AND. The table accepts "name", "name alias" and "name AS
// alias" forms.
//
// Example:
//
//	qb.JoinOn(database.LeftJoin, "profiles p",
//	    database.Cond{Column: "p.user_id", Operator: "=", Value: "users.id"},
//	    database.Cond{Column: "p.kind", Operator: "=", Value: database.Val("primary")},
//	)
func (qb *QueryBuilder) JoinOn(joinType JoinType, table string, conds ...Cond) *QueryBuilder {
	qb.markDirty()
	d, err := qb.dialectRef()
	if err != nil {
		qb.failErr(err)
		return qb
	}
	tableSQL, err := renderJoinTable(d, table)
	if err != nil {
		qb.failErr(fmt.Errorf("join clause: %w", err))
		return qb
	}
	condSQL, err := qb.renderJoinCondition(d, conds)
	if err != nil {
		qb.failErr(err)
		return qb
	}
	qb.joins = append(qb.joins, dialect.JoinSpec{
		Type:         string(joinType),
		TableSQL:     tableSQL,
		ConditionSQL: condSQL,
	})
	return qb
}

// JoinSub appends an INNER JOIN against a derived table. The sub-builder
// is rendered immediately and its bindings are absorbed.
//
// Example:
//
//	totals := conn.Table("orders").
//	    Select("user_id", database.As(database.Fn("SUM", "total"), "spent")).
//	    GroupBy("user_id")
//	qb.From("users").JoinSub(totals, "t", "t.user_id", "=", "users.id")
func (qb *QueryBuilder) JoinSub(sub *QueryBuilder, alias string, first string, operator string, second any) *QueryBuilder {
	return qb.joinSub(InnerJoin, sub, alias, first, operator, second)
}

// LeftJoinSub appends a LEFT JOIN against a derived table.
func (qb *QueryBuilder) LeftJoinSub(sub *QueryBuilder, alias string, first string, operator string, second any) *QueryBuilder {
	return qb.joinSub(LeftJoin, sub, alias, first, operator, second)
}

func (qb *QueryBuilder) joinSub(joinType JoinType, sub *QueryBuilder, alias string, first string, operator string, second any) *QueryBuilder {
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
		qb.failErr(fmt.Errorf("join clause: %w", err))
		return qb
	}
	frag, args, err := qb.absorbSub(sub, "("+subSQL+")")
	if err != nil {
		qb.failErr(err)
		return qb
	}
	condSQL, err := qb.renderJoinCondition(d, []Cond{{Column: first, Operator: operator, Value: second}})
	if err != nil {
		qb.failErr(err)
		return qb
	}
	qb.joins = append(qb.joins, dialect.JoinSpec{
		Type:         string(joinType),
		TableSQL:     frag + " AS " + aliasSQL,
		ConditionSQL: condSQL,
	})
	qb.joinArgs = append(qb.joinArgs, args...)
	return qb
}

// renderJoinTable renders the join target, accepting an optional alias
// after a space or an AS keyword.
func renderJoinTable(d dialect.Dialect, table string) (string, error) {
	parts := strings.Fields(table)
	switch {
	case len(parts) == 3 && strings.EqualFold(parts[1], "AS"):
		return d.WrapTable(parts[0], parts[2])
	case len(parts) == 2:
		return d.WrapTable(parts[0], parts[1])
	default:
		return d.WrapTable(table, "")
	}
}

// renderJoinCondition renders ON comparisons to final SQL. String operands
// are column references; Expression operands render themselves; everything
// else is inlined as a quoted literal. Expressions carrying bindings are
// rejected because join conditions never receive placeholders.
func (qb *QueryBuilder) renderJoinCondition(d dialect.Dialect, conds []Cond) (string, error) {
	parts := make([]string, 0, len(conds))
	for _, c := range conds {
		first, err := qb.renderColumnExpr(d, c.Column)
		if err != nil {
			return "", fmt.Errorf("join clause: %w", err)
		}
		op, err := dialect.NormalizeOperator(c.Operator)
		if err != nil {
			return "", fmt.Errorf("join clause: %w", err)
		}

		var second string
		switch v := c.Value.(type) {
		case string:
			second, err = qb.renderColumnExpr(d, v)
			if err != nil {
				return "", fmt.Errorf("join clause: %w", err)
			}
		case Expression:
			if b, ok := v.(Binder); ok && len(b.Bindings()) > 0 {
				return "", &ClauseError{Clause: "join", Detail: "join conditions cannot carry bindings"}
			}
			second, err = v.SQL(d)
			if err != nil {
				return "", err
			}
		default:
			second = d.QuoteValue(v)
		}
		parts = append(parts, first+" "+op+" "+second)
	}
	return strings.Join(parts, " AND "), nil
}
