// -----------------------------------------------------------------------------
// WHERE & HAVING Conditions
// -----------------------------------------------------------------------------
// The condition surface of the builder: basic comparisons, IN/BETWEEN/NULL
// variants, raw fragments, nested groups and the map/list group helpers,
// plus the flatten step that folds the stored condition list into SQL.
//
// Flattening folds left: every condition is parenthesized, and each
// connector wraps everything before it with the next condition. Three
// conditions a OR b AND c therefore render as (((a) OR (b)) AND (c)), which
// makes precedence explicit and independent of the target dialect.
//
// SECURITY NOTE:
// Values never reach the SQL text. Basic conditions allocate placeholders
// and the values travel to the driver as prepared statement parameters.
// Only WhereRaw embeds caller text verbatim and must never see user input.
// -----------------------------------------------------------------------------

package database

import (
	"fmt"
	"strings"

	"github.com/goragodwiriya/nowjs-crm-sub005/pkg/database/dialect"
)

// Where appends an AND condition.
//
// Value handling:
//   - a plain scalar is bound as a placeholder
//   - nil renders IS NULL (with =, IS) or IS NOT NULL (with !=, <>, IS NOT)
//   - a []any renders an IN list (or BETWEEN with those operators)
//   - a string of the exact form ":name" references a caller-managed
//     placeholder; a string containing whitespace after the colon is a
//     plain literal
//   - an Expression or *QueryBuilder is rendered and embedded
//
// Example:
//
//	qb.Where("status", "=", "paid")
//	qb.Where("total", ">=", 100)
//	qb.Where("deleted_at", "=", nil)          // → `deleted_at` IS NULL
//	qb.Where("status", "=", ":st")            // caller-managed placeholder
func (qb *QueryBuilder) Where(column string, operator string, value any) *QueryBuilder {
	return qb.addBasic(&qb.wheres, WhereBooleanAnd, "where", column, operator, value)
}

// OrWhere appends an OR condition.
func (qb *QueryBuilder) OrWhere(column string, operator string, value any) *QueryBuilder {
	return qb.addBasic(&qb.wheres, WhereBooleanOr, "where", column, operator, value)
}

// WhereEq appends an AND equality condition.
func (qb *QueryBuilder) WhereEq(column string, value any) *QueryBuilder {
	return qb.Where(column, "=", value)
}

// OrWhereEq appends an OR equality condition.
func (qb *QueryBuilder) OrWhereEq(column string, value any) *QueryBuilder {
	return qb.OrWhere(column, "=", value)
}

// WhereIn appends an AND membership condition. An empty list renders the
// always-false condition 1 = 0, so composed queries degrade gracefully
// instead of producing invalid SQL.
//
// Example:
//
//	qb.WhereIn("status", []any{"paid", "shipped"})
//	// → (`status` IN (:qb_p0, :qb_p1))
func (qb *QueryBuilder) WhereIn(column string, values []any) *QueryBuilder {
	return qb.Where(column, "IN", values)
}

// WhereNotIn appends an AND exclusion condition. An empty list renders the
// always-true condition 1 = 1.
func (qb *QueryBuilder) WhereNotIn(column string, values []any) *QueryBuilder {
	return qb.Where(column, "NOT IN", values)
}

// WhereBetween appends an AND range condition.
func (qb *QueryBuilder) WhereBetween(column string, min, max any) *QueryBuilder {
	return qb.Where(column, "BETWEEN", []any{min, max})
}

// WhereNotBetween appends an AND out-of-range condition.
func (qb *QueryBuilder) WhereNotBetween(column string, min, max any) *QueryBuilder {
	return qb.Where(column, "NOT BETWEEN", []any{min, max})
}

// WhereNull appends an AND IS NULL condition.
func (qb *QueryBuilder) WhereNull(column string) *QueryBuilder {
	return qb.Where(column, "IS", nil)
}

// WhereNotNull appends an AND IS NOT NULL condition.
func (qb *QueryBuilder) WhereNotNull(column string) *QueryBuilder {
	return qb.Where(column, "IS NOT", nil)
}

// WhereDate compares the date part of a datetime column. The function
// spelling comes from the dialect; the comparison value is bound as usual.
//
// Example:
//
//	qb.WhereDate("created_at", "2026-08-01")
//	// → (DATE(`created_at`) = :qb_p0)
func (qb *QueryBuilder) WhereDate(column string, value any) *QueryBuilder {
	return qb.whereFuncColumn("DATE", column, value)
}

// WhereYear compares the year of a date column.
func (qb *QueryBuilder) WhereYear(column string, value any) *QueryBuilder {
	return qb.whereFuncColumn("YEAR", column, value)
}

// WhereMonth compares the month of a date column.
func (qb *QueryBuilder) WhereMonth(column string, value any) *QueryBuilder {
	return qb.whereFuncColumn("MONTH", column, value)
}

// WhereDay compares the day of month of a date column.
func (qb *QueryBuilder) WhereDay(column string, value any) *QueryBuilder {
	return qb.whereFuncColumn("DAY", column, value)
}

// whereFuncColumn appends an equality condition on a dialect-rendered
// function of a column. The function expression is rendered when the
// condition is added, so the dialect must already be resolvable.
func (qb *QueryBuilder) whereFuncColumn(fn, column string, value any) *QueryBuilder {
	qb.markDirty()
	d, err := qb.dialectRef()
	if err != nil {
		qb.failErr(err)
		return qb
	}
	expr, err := Fn(fn, column).SQL(d)
	if err != nil {
		qb.failErr(fmt.Errorf("where clause: %w", err))
		return qb
	}
	return qb.addBasic(&qb.wheres, WhereBooleanAnd, "where", expr, "=", value)
}

// WhereRaw appends a raw AND condition used verbatim. Values referenced as
// :name inside the fragment come from the optional bindings map.
//
// The fragment skips all identifier validation. Never build it from user
// input.
//
// Example:
//
//	qb.WhereRaw("price * qty > :minTotal", map[string]any{"minTotal": 500})
func (qb *QueryBuilder) WhereRaw(sql string, bindings ...map[string]any) *QueryBuilder {
	return qb.addRaw(&qb.wheres, WhereBooleanAnd, sql, bindings)
}

// OrWhereRaw appends a raw OR condition.
func (qb *QueryBuilder) OrWhereRaw(sql string, bindings ...map[string]any) *QueryBuilder {
	return qb.addRaw(&qb.wheres, WhereBooleanOr, sql, bindings)
}

// WhereNested appends a parenthesized AND group built by the closure. The
// closure receives a fresh builder; its conditions are rendered and their
// bindings absorbed when WhereNested returns, so placeholder numbering
// stays deterministic regardless of when the outer statement is rendered.
//
// Example:
//
//	qb.WhereNested(func(g *database.QueryBuilder) {
//	    g.Where("total", ">", 100).OrWhere("vip", "=", true)
//	}).Where("status", "=", "paid")
//	// → WHERE (((`total` > :qb_p0) OR (`vip` = :qb_p1)) AND (`status` = :qb_p2))
func (qb *QueryBuilder) WhereNested(fn func(*QueryBuilder)) *QueryBuilder {
	return qb.addNestedGroup(WhereBooleanAnd, fn)
}

// OrWhereNested appends a parenthesized OR group built by the closure.
func (qb *QueryBuilder) OrWhereNested(fn func(*QueryBuilder)) *QueryBuilder {
	return qb.addNestedGroup(WhereBooleanOr, fn)
}

// WhereMap appends one AND group of equality conditions, one per map entry.
// Entries are applied in lexical key order so the rendered SQL is
// deterministic.
//
// Example:
//
//	qb.WhereMap(map[string]any{"status": "paid", "user_id": 7})
//	// → ((`status` = :qb_p0) AND (`user_id` = :qb_p1))
func (qb *QueryBuilder) WhereMap(conditions map[string]any) *QueryBuilder {
	if len(conditions) == 0 {
		return qb
	}
	return qb.WhereNested(func(g *QueryBuilder) {
		for _, column := range sortedKeys(conditions) {
			g.WhereEq(column, conditions[column])
		}
	})
}

// WhereAll appends one AND group in which every condition must hold.
func (qb *QueryBuilder) WhereAll(conds ...Cond) *QueryBuilder {
	if len(conds) == 0 {
		return qb
	}
	return qb.WhereNested(func(g *QueryBuilder) {
		for _, c := range conds {
			g.Where(c.Column, c.Operator, c.Value)
		}
	})
}

// WhereAny appends one AND group in which at least one condition must hold.
//
// Example:
//
//	qb.WhereAny(
//	    database.Cond{Column: "email", Value: q},
//	    database.Cond{Column: "name", Operator: "LIKE", Value: q + "%"},
//	)
func (qb *QueryBuilder) WhereAny(conds ...Cond) *QueryBuilder {
	if len(conds) == 0 {
		return qb
	}
	return qb.WhereNested(func(g *QueryBuilder) {
		for _, c := range conds {
			g.OrWhere(c.Column, c.Operator, c.Value)
		}
	})
}

// Having appends an AND condition on grouped rows. Aggregate expressions
// are accepted in the column position.
//
// Example:
//
//	qb.GroupBy("user_id").Having("COUNT(*)", ">", 5)
func (qb *QueryBuilder) Having(column string, operator string, value any) *QueryBuilder {
	return qb.addBasic(&qb.havings, WhereBooleanAnd, "having", column, operator, value)
}

// OrHaving appends an OR condition on grouped rows.
func (qb *QueryBuilder) OrHaving(column string, operator string, value any) *QueryBuilder {
	return qb.addBasic(&qb.havings, WhereBooleanOr, "having", column, operator, value)
}

// HavingRaw appends a raw AND condition on grouped rows.
func (qb *QueryBuilder) HavingRaw(sql string, bindings ...map[string]any) *QueryBuilder {
	return qb.addRaw(&qb.havings, WhereBooleanAnd, sql, bindings)
}

// -----------------------------------------------------------------------------
// Node construction
// -----------------------------------------------------------------------------

// addBasic builds a basic condition node, classifying the value shape once
// at insertion time.
func (qb *QueryBuilder) addBasic(target *[]WhereClause, boolean WhereBoolean, clause, column, operator string, value any) *QueryBuilder {
	qb.markDirty()
	node := WhereClause{
		Type:     WhereTypeBasic,
		Boolean:  boolean,
		Column:   column,
		Operator: operator,
	}

	switch v := value.(type) {
	case []any:
		if len(v) == 0 {
			raw, err := emptyListCondition(operator)
			if err != nil {
				qb.fail(clause, err.Error())
				return qb
			}
			*target = append(*target, WhereClause{Type: WhereTypeRaw, Boolean: boolean, Raw: raw})
			return qb
		}
		node.Values = v
	case string:
		if callerPlaceholder.MatchString(v) {
			node.Param = v[1:]
		} else {
			node.Value = v
		}
	default:
		node.Value = value
	}

	*target = append(*target, node)
	return qb
}

// emptyListCondition maps an empty IN-family list to a constant condition:
// membership in nothing is always false, exclusion from nothing is always
// true.
func emptyListCondition(operator string) (string, error) {
	switch strings.ToUpper(strings.TrimSpace(operator)) {
	case "", "=", "IN":
		return "1 = 0", nil
	case "!=", "<>", "NOT IN":
		return "1 = 1", nil
	default:
		return "", fmt.Errorf("operator %q requires a non-empty value list", operator)
	}
}

// addRaw builds a raw condition node. Caller bindings from the optional map
// go straight into the builder's own binding set under their given names.
func (qb *QueryBuilder) addRaw(target *[]WhereClause, boolean WhereBoolean, sql string, bindings []map[string]any) *QueryBuilder {
	qb.markDirty()
	for _, m := range bindings {
		for name, value := range m {
			qb.named[strings.TrimPrefix(name, ":")] = value
		}
	}
	*target = append(*target, WhereClause{Type: WhereTypeRaw, Boolean: boolean, Raw: sql})
	return qb
}

// addNestedGroup runs the closure against a sibling builder, flattens the
// collected conditions and absorbs the group. An empty group is a no-op.
func (qb *QueryBuilder) addNestedGroup(boolean WhereBoolean, fn func(*QueryBuilder)) *QueryBuilder {
	qb.markDirty()
	if fn == nil {
		return qb
	}
	sub := qb.sibling()
	fn(sub)
	if sub.err != nil {
		qb.failErr(sub.err)
		return qb
	}
	if len(sub.wheres) == 0 {
		return qb
	}
	frag, err := sub.flattenWheres(sub.wheres, bindWhere)
	if err != nil {
		qb.failErr(err)
		return qb
	}
	if frag == "" {
		return qb
	}
	absorbed, args, err := qb.absorbSub(sub, frag)
	if err != nil {
		qb.failErr(err)
		return qb
	}
	qb.wheres = append(qb.wheres, WhereClause{
		Type:      WhereTypeNested,
		Boolean:   boolean,
		Raw:       absorbed,
		posValues: args,
	})
	return qb
}

// -----------------------------------------------------------------------------
// Flattening
// -----------------------------------------------------------------------------

// flattenWheres folds a condition list into one SQL fragment. Basic and raw
// conditions are parenthesized individually; nested groups arrive already
// parenthesized by their own fold. Each connector wraps the fragment built
// so far together with the next condition.
func (qb *QueryBuilder) flattenWheres(nodes []WhereClause, kind bindingKind) (string, error) {
	if len(nodes) == 0 {
		return "", nil
	}
	d, err := qb.dialectRef()
	if err != nil {
		return "", err
	}

	out := ""
	for i := range nodes {
		node := &nodes[i]
		frag, err := qb.renderWhereNode(d, node, kind)
		if err != nil {
			return "", err
		}
		if frag == "" {
			continue
		}
		if node.Type != WhereTypeNested {
			frag = "(" + frag + ")"
		}
		if out == "" {
			out = frag
		} else {
			out = "(" + out + " " + node.Boolean.String() + " " + frag + ")"
		}
	}
	return out, nil
}

// renderWhereNode renders one condition node to a bare fragment without
// outer parentheses.
func (qb *QueryBuilder) renderWhereNode(d dialect.Dialect, node *WhereClause, kind bindingKind) (string, error) {
	label := "where"
	if kind == bindHaving {
		label = "having"
	}

	switch node.Type {
	case WhereTypeRaw:
		return node.Raw, nil
	case WhereTypeNested:
		if qb.usePositional {
			qb.replayPositional(kind, node.posValues)
		}
		return node.Raw, nil
	}

	colSQL, err := qb.renderColumnExpr(d, node.Column)
	if err != nil {
		return "", fmt.Errorf("%s clause: %w", label, err)
	}
	op, err := dialect.NormalizeOperator(node.Operator)
	if err != nil {
		return "", fmt.Errorf("%s clause: %w", label, err)
	}

	// Caller-managed placeholder: render, never allocate.
	if node.Param != "" {
		return colSQL + " " + op + " :" + node.Param, nil
	}

	// Value lists: IN family and BETWEEN.
	if node.Values != nil {
		switch op {
		case "BETWEEN", "NOT BETWEEN":
			if len(node.Values) != 2 {
				return "", fmt.Errorf("%s clause: %s needs exactly two values, got %d", label, op, len(node.Values))
			}
			toks := qb.nodeTokens(node, kind, node.Values)
			return colSQL + " " + op + " " + toks[0] + " AND " + toks[1], nil
		case "=", "IN":
			toks := qb.nodeTokens(node, kind, node.Values)
			return colSQL + " IN (" + strings.Join(toks, ", ") + ")", nil
		case "!=", "<>", "NOT IN":
			toks := qb.nodeTokens(node, kind, node.Values)
			return colSQL + " NOT IN (" + strings.Join(toks, ", ") + ")", nil
		default:
			return "", fmt.Errorf("%s clause: operator %q cannot take a value list", label, node.Operator)
		}
	}

	switch v := node.Value.(type) {
	case nil:
		switch op {
		case "=", "IS":
			return colSQL + " IS NULL", nil
		case "!=", "<>", "IS NOT":
			return colSQL + " IS NOT NULL", nil
		default:
			return "", fmt.Errorf("%s clause: operator %q cannot compare against NULL", label, node.Operator)
		}

	case *QueryBuilder:
		if node.valueSQL == "" {
			subSQL, err := v.ToSQL()
			if err != nil {
				return "", err
			}
			frag, args, err := qb.absorbSub(v, "("+subSQL+")")
			if err != nil {
				return "", err
			}
			node.valueSQL = frag
			node.posValues = args
		}
		if qb.usePositional {
			qb.replayPositional(kind, node.posValues)
		}
		return colSQL + " " + op + " " + node.valueSQL, nil

	case Expression:
		if node.valueSQL == "" {
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
			node.valueSQL = frag
		}
		return colSQL + " " + op + " " + node.valueSQL, nil

	default:
		toks := qb.nodeTokens(node, kind, []any{node.Value})
		return colSQL + " " + op + " " + toks[0], nil
	}
}

// nodeTokens returns the placeholder tokens for a node's values. In named
// mode the minted names are memoized on the node, so re-renders emit the
// same text. In positional mode the values are pushed onto the clause
// family's list, which was reset when the render started; a literal "?"
// value becomes a pending slot filled by ExecuteArgs.
func (qb *QueryBuilder) nodeTokens(node *WhereClause, kind bindingKind, values []any) []string {
	toks := make([]string, len(values))
	if qb.usePositional {
		for i, v := range values {
			if s, ok := v.(string); ok && s == "?" {
				qb.pushPositional(kind, pendingParam{})
			} else {
				qb.pushPositional(kind, v)
			}
			toks[i] = "?"
		}
		return toks
	}
	if node.names == nil {
		node.names = make([]string, len(values))
		for i, v := range values {
			node.names[i] = qb.allocate(v)
		}
	}
	for i, name := range node.names {
		toks[i] = ":" + name
	}
	return toks
}
