package dialect

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ----------------------------------------------------------------------------
// Base Dialect (shared rendering)
// ----------------------------------------------------------------------------
// The supported families agree on most clause shapes; they differ in the
// quote character, the LIMIT syntax, the duplicate-tolerant INSERT form and
// a handful of function spellings. Concrete dialects embed base and override
// only what their database spells differently.
// ----------------------------------------------------------------------------

// identifierPart validates one dot-separated segment of an identifier.
// Only letters, digits and underscore are accepted; everything else is
// rejected before it can reach SQL text.
var identifierPart = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

type base struct {
	quote byte
}

// wrap quotes an identifier, handling dotted "table.column" paths part by
// part. "*" passes through, and a trailing "*" part ("orders.*") is kept
// unquoted.
func (b base) wrap(identifier string) (string, error) {
	if identifier == "*" {
		return identifier, nil
	}
	if strings.TrimSpace(identifier) == "" {
		return "", fmt.Errorf("%w: empty identifier", ErrInvalidIdentifier)
	}

	parts := strings.Split(identifier, ".")
	wrapped := make([]string, len(parts))
	for i, part := range parts {
		if part == "*" && i == len(parts)-1 {
			wrapped[i] = part
			continue
		}
		if !identifierPart.MatchString(part) {
			return "", fmt.Errorf("%w: %q (contains unsafe characters)", ErrInvalidIdentifier, identifier)
		}
		wrapped[i] = string(b.quote) + part + string(b.quote)
	}
	return strings.Join(wrapped, "."), nil
}

func (b base) wrapTable(table string, alias string) (string, error) {
	wrappedTable, err := b.wrap(table)
	if err != nil {
		return "", fmt.Errorf("table wrap error: %w", err)
	}
	if alias == "" {
		return wrappedTable, nil
	}

	wrappedAlias, err := b.wrap(alias)
	if err != nil {
		return "", fmt.Errorf("table alias wrap error: %w", err)
	}
	return wrappedTable + " AS " + wrappedAlias, nil
}

func (b base) selectClause(distinct bool, columns []string) string {
	cols := "*"
	if len(columns) > 0 {
		cols = strings.Join(columns, ", ")
	}
	if distinct {
		return "SELECT DISTINCT " + cols
	}
	return "SELECT " + cols
}

func (b base) fromClause(tableSQL string) string {
	return "FROM " + tableSQL
}

func (b base) joinClause(joins []JoinSpec) string {
	parts := make([]string, 0, len(joins))
	for _, j := range joins {
		if j.ConditionSQL == "" {
			parts = append(parts, fmt.Sprintf("%s JOIN %s", j.Type, j.TableSQL))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s JOIN %s ON %s", j.Type, j.TableSQL, j.ConditionSQL))
	}
	return strings.Join(parts, " ")
}

func (b base) groupByClause(groups []string) string {
	if len(groups) == 0 {
		return ""
	}
	return "GROUP BY " + strings.Join(groups, ", ")
}

func (b base) orderByClause(orders []OrderSpec) string {
	if len(orders) == 0 {
		return ""
	}
	parts := make([]string, len(orders))
	for i, o := range orders {
		parts[i] = o.ColumnSQL + " " + o.Direction
	}
	return "ORDER BY " + strings.Join(parts, ", ")
}

func (b base) updateStatement(tableSQL string, assignments []string, whereSQL, orderSQL, limitSQL string) string {
	sql := fmt.Sprintf("UPDATE %s SET %s", tableSQL, strings.Join(assignments, ", "))
	if whereSQL != "" {
		sql += " WHERE " + whereSQL
	}
	if orderSQL != "" {
		sql += " " + orderSQL
	}
	if limitSQL != "" {
		sql += " " + limitSQL
	}
	return sql
}

func (b base) deleteStatement(tableSQL string, whereSQL, orderSQL, limitSQL string) string {
	sql := "DELETE FROM " + tableSQL
	if whereSQL != "" {
		sql += " WHERE " + whereSQL
	}
	if orderSQL != "" {
		sql += " " + orderSQL
	}
	if limitSQL != "" {
		sql += " " + limitSQL
	}
	return sql
}

// quoteString doubles embedded single quotes. Dialect-specific escaping
// (MySQL backslashes) is layered on top by the concrete QuoteValue.
func (b base) quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func (b base) quoteValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "NULL"
	case bool:
		if v {
			return "1"
		}
		return "0"
	case time.Time:
		return "'" + v.Format("2006-01-02 15:04:05") + "'"
	case string:
		return b.quoteString(v)
	case []byte:
		return b.quoteString(string(v))
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (b base) funcExpr(name string, args []string) string {
	return fmt.Sprintf("%s(%s)", strings.ToUpper(strings.TrimSpace(name)), strings.Join(args, ", "))
}
