// -----------------------------------------------------------------------------
// Query Builder Errors
// -----------------------------------------------------------------------------
// Sentinel errors and the ClauseError type used across the builder.
//
// Structural mistakes (bad identifier, empty insert, inconsistent batch) are
// recorded on the builder when the fluent call happens and surface at render
// time, so chains never need intermediate error checks. Driver errors pass
// through Execute unchanged and are not wrapped here.
// -----------------------------------------------------------------------------

package database

import (
	"errors"
	"fmt"
)

var (
	// ErrNoTable is returned when a statement is rendered without a target
	// table.
	ErrNoTable = errors.New("database: no target table set")

	// ErrNoValues is returned when an INSERT or UPDATE is rendered without
	// any values.
	ErrNoValues = errors.New("database: no values provided")

	// ErrNoConnection is returned when Execute is called on a builder that
	// has no connection.
	ErrNoConnection = errors.New("database: no connection")

	// ErrNoDriver is returned when the builder's connection cannot execute
	// statements.
	ErrNoDriver = errors.New("database: connection has no driver")

	// ErrNoDialect is returned when SQL must be rendered but no dialect is
	// reachable through the builder, the expression or the default
	// connection.
	ErrNoDialect = errors.New("database: no dialect available")

	// ErrNoCache is returned when a cache operation is requested on a
	// connection without a query cache.
	ErrNoCache = errors.New("database: no query cache configured")

	// ErrNoRows is returned by First when the statement matched nothing.
	ErrNoRows = errors.New("database: no rows in result set")

	// ErrMissingParam is returned when a named placeholder has no value at
	// execution time.
	ErrMissingParam = errors.New("database: missing value for placeholder")

	// ErrInconsistentBatch is returned when rows of a batch INSERT do not
	// share the same column set.
	ErrInconsistentBatch = errors.New("database: batch insert rows have inconsistent columns")

	// ErrMixedPlaceholders is returned when a named-mode builder absorbs a
	// positional-mode sub-builder or the other way around.
	ErrMixedPlaceholders = errors.New("database: cannot mix named and positional placeholders")

	// ErrArgumentCount is returned when the runtime arguments passed to
	// ExecuteArgs do not match the pending ? markers of the statement.
	ErrArgumentCount = errors.New("database: positional argument count mismatch")
)

// ClauseError reports a structural mistake in one clause of a statement. It
// records which clause rejected the input and why, for example a suspicious
// column expression or an ORDER BY direction outside the whitelist.
type ClauseError struct {
	Clause string
	Detail string
}

// Error implements the error interface.
func (e *ClauseError) Error() string {
	return fmt.Sprintf("database: invalid %s clause: %s", e.Clause, e.Detail)
}
