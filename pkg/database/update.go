// -----------------------------------------------------------------------------
// UPDATE Statement Assembly
// -----------------------------------------------------------------------------
// UPDATE builders are created by a statement-kind transition, usually from
// a select-builder whose where-tree selected the rows to touch. SET pairs
// keep their call order. Expression values render inline with no
// placeholder, so counters and timestamps can be written as SQL:
//
//	conn.Table("posts").
//	    Where("id", "=", 7).
//	    Update("posts").
//	    SetValue("views", database.Raw("views + 1")).
//	    Execute()
//
// ORDER BY and LIMIT are passed to the dialect, which drops them when the
// target database cannot order or cap an UPDATE. LIMIT here is row-capping
// only; the offset never applies to mutations.
// -----------------------------------------------------------------------------

package database

import (
	"fmt"

	"github.com/goragodwiriya/nowjs-crm-sub005/pkg/database/dialect"
)

// Update transitions to an UPDATE builder targeting the given table. The
// where-tree, ordering and limits carry over from this builder.
func (qb *QueryBuilder) Update(table string) *QueryBuilder {
	return qb.transition(StatementUpdate, table)
}

// Set appends column = value pairs from a map, in lexical column order so
// the rendered SQL is deterministic.
func (qb *QueryBuilder) Set(values map[string]any) *QueryBuilder {
	qb.markDirty()
	for _, column := range sortedKeys(values) {
		qb.assignments = append(qb.assignments, Assignment{Column: column, Value: values[column]})
	}
	return qb
}

// SetValue appends a single column = value pair.
func (qb *QueryBuilder) SetValue(column string, value any) *QueryBuilder {
	qb.markDirty()
	qb.assignments = append(qb.assignments, Assignment{Column: column, Value: value})
	return qb
}

// compileUpdate renders the UPDATE skeleton.
func (qb *QueryBuilder) compileUpdate() (string, error) {
	d, err := qb.dialectRef()
	if err != nil {
		return "", err
	}
	if qb.table == "" {
		return "", ErrNoTable
	}
	if len(qb.assignments) == 0 {
		return "", ErrNoValues
	}
	tableSQL, err := d.WrapTable(qb.table, "")
	if err != nil {
		return "", fmt.Errorf("update table: %w", err)
	}

	assignments := make([]string, len(qb.assignments))
	for i, a := range qb.assignments {
		columnSQL, err := d.Wrap(a.Column)
		if err != nil {
			return "", fmt.Errorf("update column: %w", err)
		}
		valueSQL, err := qb.renderAssignValue(d, a.Value)
		if err != nil {
			return "", err
		}
		assignments[i] = columnSQL + " = " + valueSQL
	}

	whereSQL, err := qb.flattenWheres(qb.wheres, bindWhere)
	if err != nil {
		return "", err
	}
	orderSQL, err := qb.renderOrderFragment(d)
	if err != nil {
		return "", err
	}
	limitSQL := d.LimitClause(qb.limit, nil)

	return d.UpdateStatement(tableSQL, assignments, whereSQL, orderSQL, limitSQL), nil
}

// renderAssignValue renders one SET or single-row VALUES position. Plain
// values bind placeholders; expressions and subqueries render inline.
func (qb *QueryBuilder) renderAssignValue(d dialect.Dialect, value any) (string, error) {
	switch v := value.(type) {
	case Expression:
		frag, err := v.SQL(d)
		if err != nil {
			return "", err
		}
		if b, ok := v.(Binder); ok {
			if bindings := b.Bindings(); len(bindings) > 0 {
				if qb.usePositional {
					return "", ErrMixedPlaceholders
				}
				frag = qb.absorbFragment(frag, bindings)
			}
		}
		return frag, nil

	case *QueryBuilder:
		subSQL, err := v.ToSQL()
		if err != nil {
			return "", err
		}
		frag, args, err := qb.absorbSub(v, "("+subSQL+")")
		if err != nil {
			return "", err
		}
		if qb.usePositional {
			qb.replayPositional(bindSet, args)
		}
		return frag, nil

	default:
		if qb.usePositional {
			qb.pushPositional(bindSet, value)
			return "?", nil
		}
		return ":" + qb.allocate(value), nil
	}
}

// renderOrderFragment renders the ORDER BY clause for mutation statements,
// empty when no ordering was requested.
func (qb *QueryBuilder) renderOrderFragment(d dialect.Dialect) (string, error) {
	if len(qb.orders) == 0 {
		return "", nil
	}
	specs := make([]dialect.OrderSpec, len(qb.orders))
	for i, order := range qb.orders {
		columnSQL, err := qb.renderColumnExpr(d, order.Column)
		if err != nil {
			return "", fmt.Errorf("order by clause: %w", err)
		}
		specs[i] = dialect.OrderSpec{ColumnSQL: columnSQL, Direction: string(order.Direction)}
	}
	return d.OrderByClause(specs), nil
}
