// -----------------------------------------------------------------------------
// INSERT Statement Assembly
// -----------------------------------------------------------------------------
// INSERT builders are created by a statement-kind transition and fed rows
// through Values. Columns come from the first row's keys in lexical order;
// every later row must provide exactly the same column set.
//
// A single row binds named placeholders like any other statement. A batch
// (more than one row) switches the value transport to the positional list
// in row-major order, which keeps wide batches cheap and the rendered text
// compact.
// -----------------------------------------------------------------------------

package database

import (
	"fmt"
	"strings"
)

// Insert transitions to an INSERT builder targeting the given table.
//
// Example:
//
//	res, err := conn.Builder().
//	    Insert("users").
//	    Values(map[string]any{"name": "Ada", "email": "ada@example.com"}).
//	    Execute()
func (qb *QueryBuilder) Insert(table string) *QueryBuilder {
	return qb.transition(StatementInsert, table)
}

// InsertIgnore transitions to an INSERT builder that skips conflicting
// rows. The exact spelling (INSERT IGNORE, INSERT OR IGNORE, ON CONFLICT
// DO NOTHING) is the dialect's business.
func (qb *QueryBuilder) InsertIgnore(table string) *QueryBuilder {
	nb := qb.transition(StatementInsert, table)
	nb.ignoreDupes = true
	return nb
}

// Values appends one row. The first call fixes the column set; later rows
// must match it or the builder fails with ErrInconsistentBatch.
func (qb *QueryBuilder) Values(row map[string]any) *QueryBuilder {
	qb.markDirty()
	if len(row) == 0 {
		qb.fail("insert", "empty row")
		return qb
	}
	columns := sortedKeys(row)
	if qb.insertColumns == nil {
		qb.insertColumns = columns
	} else if !equalColumns(qb.insertColumns, columns) {
		qb.failErr(fmt.Errorf("%w: have (%s), got (%s)",
			ErrInconsistentBatch,
			strings.Join(qb.insertColumns, ", "),
			strings.Join(columns, ", ")))
		return qb
	}
	values := make([]any, len(columns))
	for i, column := range columns {
		values[i] = row[column]
	}
	qb.insertRows = append(qb.insertRows, values)
	return qb
}

// compileInsert renders the INSERT skeleton.
func (qb *QueryBuilder) compileInsert() (string, error) {
	d, err := qb.dialectRef()
	if err != nil {
		return "", err
	}
	if qb.table == "" {
		return "", ErrNoTable
	}
	tableSQL, err := d.WrapTable(qb.table, "")
	if err != nil {
		return "", fmt.Errorf("insert table: %w", err)
	}

	columns := qb.insertColumns
	rows := qb.insertRows
	if len(rows) == 0 && len(qb.assignments) > 0 {
		// A Set-style value map carried over from a transition renders as
		// one row.
		columns = make([]string, len(qb.assignments))
		row := make([]any, len(qb.assignments))
		for i, a := range qb.assignments {
			columns[i] = a.Column
			row[i] = a.Value
		}
		rows = [][]any{row}
	}
	if len(rows) == 0 {
		return "", ErrNoValues
	}

	wrapped := make([]string, len(columns))
	for i, column := range columns {
		wrapped[i], err = d.Wrap(column)
		if err != nil {
			return "", fmt.Errorf("insert column: %w", err)
		}
	}

	tuples := make([]string, len(rows))
	if len(rows) > 1 || qb.usePositional {
		for ri, row := range rows {
			toks := make([]string, len(row))
			for i, value := range row {
				qb.pushPositional(bindSet, value)
				toks[i] = "?"
			}
			tuples[ri] = "(" + strings.Join(toks, ", ") + ")"
		}
	} else {
		row := rows[0]
		toks := make([]string, len(row))
		for i, value := range row {
			tok, err := qb.renderAssignValue(d, value)
			if err != nil {
				return "", err
			}
			toks[i] = tok
		}
		tuples[0] = "(" + strings.Join(toks, ", ") + ")"
	}

	return d.InsertStatement(tableSQL, wrapped, tuples, qb.ignoreDupes), nil
}

// isBatch reports whether the statement transports its values through the
// positional list even in named mode.
func (qb *QueryBuilder) isBatch() bool {
	return qb.kind == StatementInsert && (len(qb.insertRows) > 1 || qb.usePositional)
}

func equalColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
