// -----------------------------------------------------------------------------
// DELETE Statement Assembly
// -----------------------------------------------------------------------------
// The thinnest statement kind: a table, the carried-over where-tree and the
// optional ORDER BY / LIMIT cap. Dialects that cannot order or cap a DELETE
// drop those clauses.
// -----------------------------------------------------------------------------

package database

import "fmt"

// Delete transitions to a DELETE builder targeting the given table. The
// where-tree, ordering and limits carry over from this builder.
//
// Example:
//
//	res, err := conn.Table("sessions").
//	    Where("expires_at", "<", time.Now()).
//	    Delete("sessions").
//	    Execute()
func (qb *QueryBuilder) Delete(table string) *QueryBuilder {
	return qb.transition(StatementDelete, table)
}

// compileDelete renders the DELETE skeleton.
func (qb *QueryBuilder) compileDelete() (string, error) {
	d, err := qb.dialectRef()
	if err != nil {
		return "", err
	}
	if qb.table == "" {
		return "", ErrNoTable
	}
	tableSQL, err := d.WrapTable(qb.table, "")
	if err != nil {
		return "", fmt.Errorf("delete table: %w", err)
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

	return d.DeleteStatement(tableSQL, whereSQL, orderSQL, limitSQL), nil
}
