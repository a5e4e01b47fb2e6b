// -----------------------------------------------------------------------------
// Query Builder Types
// -----------------------------------------------------------------------------
// Shared type definitions for the query builder: statement kinds, the tagged
// where-clause union, ordering types and update assignments.
//
// WhereClause is a tagged union. The Type field decides which of the other
// fields are meaningful, so conditions keep their structure instead of being
// rendered to strings as they are added. Flattening to SQL happens in one
// place at render time, which keeps placeholder allocation deterministic.
// -----------------------------------------------------------------------------

package database

// StatementKind identifies which statement skeleton a builder renders.
type StatementKind int

const (
	StatementSelect StatementKind = iota
	StatementInsert
	StatementUpdate
	StatementDelete
)

// String returns the SQL verb for the statement kind.
func (k StatementKind) String() string {
	switch k {
	case StatementInsert:
		return "INSERT"
	case StatementUpdate:
		return "UPDATE"
	case StatementDelete:
		return "DELETE"
	default:
		return "SELECT"
	}
}

// WhereType tags the variant stored in a WhereClause.
type WhereType int

const (
	// WhereTypeBasic is a column/operator/value comparison.
	WhereTypeBasic WhereType = iota

	// WhereTypeRaw is a raw SQL fragment used verbatim.
	WhereTypeRaw

	// WhereTypeNested is a pre-rendered, already parenthesized group whose
	// bindings were absorbed when the group was built.
	WhereTypeNested
)

// WhereBoolean is the connector that joins a condition to the conditions
// before it.
type WhereBoolean int

const (
	WhereBooleanAnd WhereBoolean = iota
	WhereBooleanOr
)

// String returns the SQL keyword for the connector.
func (b WhereBoolean) String() string {
	if b == WhereBooleanOr {
		return "OR"
	}
	return "AND"
}

// WhereClause is one node of a condition list. Type selects the variant:
//
//   - WhereTypeBasic uses Column, Operator and one of Value, Values or Param.
//   - WhereTypeRaw and WhereTypeNested use Raw.
//
// The Boolean connector of the first node in a list is ignored.
//
// Security note: basic values are never interpolated into SQL text. They are
// allocated as named placeholders (or appended to the positional lists) and
// travel to the driver as prepared statement parameters.
type WhereClause struct {
	Type     WhereType
	Boolean  WhereBoolean
	Column   string
	Operator string

	// Value holds a single comparison value: a scalar, an Expression or a
	// *QueryBuilder subquery. nil means an IS NULL comparison.
	Value any

	// Values holds the value list for IN and BETWEEN comparisons.
	Values []any

	// Raw holds the fragment for raw and nested variants.
	Raw string

	// Param names a caller-managed placeholder (without the colon). The
	// builder renders the placeholder but never allocates a value for it.
	Param string

	// names memoizes the placeholder names minted for this node so a
	// re-render emits the same SQL text.
	names []string

	// valueSQL memoizes the rendered fragment of an Expression or subquery
	// value after its bindings were absorbed.
	valueSQL string

	// posValues replays absorbed sub-builder values into the positional
	// binding lists on each render.
	posValues []any
}

// OrderDirection restricts ORDER BY directions to the two valid keywords, so
// caller input can never reach the SQL text as a direction.
type OrderDirection string

const (
	OrderAsc  OrderDirection = "ASC"
	OrderDesc OrderDirection = "DESC"
)

// OrderClause is one ORDER BY entry.
//
// Example:
//
//	OrderClause{Column: "created_at", Direction: OrderDesc}
//	→ SQL: ORDER BY `created_at` DESC
type OrderClause struct {
	Column    string
	Direction OrderDirection
}

// JoinType names the supported join flavors.
type JoinType string

const (
	InnerJoin JoinType = "INNER"
	LeftJoin  JoinType = "LEFT"
	RightJoin JoinType = "RIGHT"
	CrossJoin JoinType = "CROSS"
)

// Assignment is one column = value pair of an UPDATE statement. Pairs keep
// their call order when the SET list is rendered.
type Assignment struct {
	Column string
	Value  any
}

// Cond describes one condition for the WhereAll and WhereAny group helpers.
// An empty Operator means equality.
type Cond struct {
	Column   string
	Operator string
	Value    any
}
