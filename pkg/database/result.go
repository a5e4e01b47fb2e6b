// -----------------------------------------------------------------------------
// Result Sets
// -----------------------------------------------------------------------------
// The result wrapper returned by every execution. Rows are materialized to
// maps up front: the database cursor is drained and released inside the
// driver, so a ResultSet holds no connection resources, survives JSON
// round-trips through the query cache, and can be iterated at leisure.
//
// []byte column values are normalized to string during materialization.
// MySQL returns text columns as []byte, which would otherwise serialize as
// base64 in cached results and compare oddly in application code.
// -----------------------------------------------------------------------------

package database

import "database/sql"

// Row is one result row keyed by column name.
type Row map[string]any

// ResultSet is a fully materialized query result with a fetch cursor.
type ResultSet struct {
	columns []string
	rows    []Row
	pos     int

	rowsAffected int64
	lastInsertID int64
	fromCache    bool
}

// NewResultSet wraps materialized rows.
func NewResultSet(columns []string, rows []Row) *ResultSet {
	return &ResultSet{columns: columns, rows: rows}
}

// NewCachedResultSet wraps rows served from the query cache.
func NewCachedResultSet(columns []string, rows []Row) *ResultSet {
	return &ResultSet{columns: columns, rows: rows, fromCache: true}
}

// NewExecResult wraps a mutation outcome. It has no rows.
func NewExecResult(rowsAffected, lastInsertID int64) *ResultSet {
	return &ResultSet{rowsAffected: rowsAffected, lastInsertID: lastInsertID}
}

// Fetch returns the next row, nil when the set is exhausted.
func (rs *ResultSet) Fetch() Row {
	if rs.pos >= len(rs.rows) {
		return nil
	}
	row := rs.rows[rs.pos]
	rs.pos++
	return row
}

// FetchAll returns every remaining row and exhausts the cursor.
func (rs *ResultSet) FetchAll() []Row {
	rows := rs.rows[rs.pos:]
	rs.pos = len(rs.rows)
	return rows
}

// FetchAllValues returns every remaining row as value slices in column
// order.
func (rs *ResultSet) FetchAllValues() [][]any {
	rows := rs.FetchAll()
	out := make([][]any, len(rows))
	for i, row := range rows {
		values := make([]any, len(rs.columns))
		for j, column := range rs.columns {
			values[j] = row[column]
		}
		out[i] = values
	}
	return out
}

// RowCount returns the total number of rows in the set.
func (rs *ResultSet) RowCount() int {
	return len(rs.rows)
}

// Count is an alias of RowCount.
func (rs *ResultSet) Count() int {
	return rs.RowCount()
}

// ColumnCount returns the number of columns.
func (rs *ResultSet) ColumnCount() int {
	return len(rs.columns)
}

// Columns returns the column names in select order.
func (rs *ResultSet) Columns() []string {
	return rs.columns
}

// Close exhausts the cursor. Rows are materialized, so there is nothing
// else to release; Close exists to honor the result-set contract.
func (rs *ResultSet) Close() error {
	rs.pos = len(rs.rows)
	return nil
}

// RowsAffected returns the number of rows a mutation touched.
func (rs *ResultSet) RowsAffected() int64 {
	return rs.rowsAffected
}

// LastInsertID returns the auto-increment id of the last inserted row,
// when the driver reports one.
func (rs *ResultSet) LastInsertID() int64 {
	return rs.lastInsertID
}

// FromCache reports whether this result was served from the query cache.
func (rs *ResultSet) FromCache() bool {
	return rs.fromCache
}

// resultSetFromRows drains a database/sql cursor into a ResultSet.
func resultSetFromRows(rows *sql.Rows) (*ResultSet, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := make([]Row, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}
		row := make(Row, len(columns))
		for i, column := range columns {
			row[column] = normalizeValue(values[i])
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return NewResultSet(columns, out), nil
}

// normalizeValue converts driver []byte values to string.
func normalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
