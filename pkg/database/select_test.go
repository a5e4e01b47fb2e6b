// -----------------------------------------------------------------------------
// SELECT Compilation Tests
// -----------------------------------------------------------------------------
// The select-list forms (alias strings, expressions, subqueries), group
// clauses and the assembled statement skeleton.
// -----------------------------------------------------------------------------

package database

import (
	"errors"
	"testing"
)

// TestSelectColumn_AliasString tests "col AS alias" strings, including the
// lowercase keyword.
func TestSelectColumn_AliasString(t *testing.T) {
	qb := testConn().Table("users").Select("name AS display_name")

	sql, err := qb.ToSQL()
	if err != nil {
		t.Fatalf("Failed to compile SQL: %v", err)
	}
	expected := "SELECT `name` AS `display_name` FROM `users`"
	if sql != expected {
		t.Errorf("Expected:\n%s\nGot:\n%s", expected, sql)
	}

	lower := testConn().Table("users").Select("name as n")
	sql, err = lower.ToSQL()
	if err != nil {
		t.Fatalf("Failed to compile SQL: %v", err)
	}
	expected = "SELECT `name` AS `n` FROM `users`"
	if sql != expected {
		t.Errorf("Expected:\n%s\nGot:\n%s", expected, sql)
	}
}

// TestSelectColumn_AliasExpr tests aliased expression columns.
func TestSelectColumn_AliasExpr(t *testing.T) {
	qb := testConn().Table("orders").
		Select(As(Fn("COUNT", "*"), "total"))

	sql, err := qb.ToSQL()
	if err != nil {
		t.Fatalf("Failed to compile SQL: %v", err)
	}
	expected := "SELECT COUNT(*) AS `total` FROM `orders`"
	if sql != expected {
		t.Errorf("Expected:\n%s\nGot:\n%s", expected, sql)
	}
}

// TestSelectColumn_Subquery tests a correlated subquery column.
func TestSelectColumn_Subquery(t *testing.T) {
	sub := testConn().Table("orders").
		Select(Raw("COUNT(*)")).
		Where("user_id", "=", Col("users.id"))
	qb := testConn().Table("users").Select(sub, "name")

	sql, err := qb.ToSQL()
	if err != nil {
		t.Fatalf("Failed to compile SQL: %v", err)
	}
	expected := "SELECT (SELECT COUNT(*) FROM `orders` WHERE (`user_id` = `users`.`id`)), `name` FROM `users`"
	if sql != expected {
		t.Errorf("Expected:\n%s\nGot:\n%s", expected, sql)
	}
}

// TestSelectColumn_RawWithBindings tests that a raw select expression's
// bindings are absorbed under fresh names.
func TestSelectColumn_RawWithBindings(t *testing.T) {
	qb := testConn().Table("products").
		Select(Raw("price * :rate", map[string]any{"rate": 1.1}), "id")

	sql, err := qb.ToSQL()
	if err != nil {
		t.Fatalf("Failed to compile SQL: %v", err)
	}
	expected := "SELECT price * :qb_p0, `id` FROM `products`"
	if sql != expected {
		t.Errorf("Expected:\n%s\nGot:\n%s", expected, sql)
	}

	bindings, err := qb.Bindings()
	if err != nil {
		t.Fatalf("Failed to resolve bindings: %v", err)
	}
	if bindings["qb_p0"] != 1.1 {
		t.Errorf("Expected absorbed rate, got %v", bindings)
	}
}

// TestSelect_UnsupportedType tests the column-type guard.
func TestSelect_UnsupportedType(t *testing.T) {
	qb := testConn().Table("users").Select(42)

	_, err := qb.ToSQL()
	var ce *ClauseError
	if !errors.As(err, &ce) {
		t.Fatalf("Expected ClauseError, got %v", err)
	}
	if ce.Clause != "select" {
		t.Errorf("Expected select clause error, got %q", ce.Clause)
	}
}

// TestSelect_ParenExpressionPassthrough tests that parenthesized column
// strings render verbatim. The column position is developer API, not user
// input; only separators and comment markers are screened.
func TestSelect_ParenExpressionPassthrough(t *testing.T) {
	qb := testConn().Table("users").Select("id, (SELECT password FROM admin)")

	sql, err := qb.ToSQL()
	if err != nil {
		t.Fatalf("Failed to compile SQL: %v", err)
	}
	expected := "SELECT id, (SELECT password FROM admin) FROM `users`"
	if sql != expected {
		t.Errorf("Expected:\n%s\nGot:\n%s", expected, sql)
	}
}

// TestGroupBy_Appends tests GROUP BY accumulation across calls.
func TestGroupBy_Appends(t *testing.T) {
	qb := testConn().Table("orders").
		Select("user_id").
		GroupBy("user_id").
		GroupBy("status")

	sql, err := qb.ToSQL()
	if err != nil {
		t.Fatalf("Failed to compile SQL: %v", err)
	}
	expected := "SELECT `user_id` FROM `orders` GROUP BY `user_id`, `status`"
	if sql != expected {
		t.Errorf("Expected:\n%s\nGot:\n%s", expected, sql)
	}
}

// TestFullSelectSkeleton tests every clause in its skeleton position. The
// WHERE value allocates before the HAVING value.
func TestFullSelectSkeleton(t *testing.T) {
	qb := testConn().Table("orders").
		Select("orders.id", "users.name").
		Join("users", "users.id", "=", "orders.user_id").
		Where("status", "=", "paid").
		GroupBy("orders.id").
		Having("COUNT(*)", ">", 5).
		OrderBy("orders.id", "ASC").
		Limit(5).
		Offset(10)

	sql, err := qb.ToSQL()
	if err != nil {
		t.Fatalf("Failed to compile SQL: %v", err)
	}

	expected := "SELECT `orders`.`id`, `users`.`name` FROM `orders` " +
		"INNER JOIN `users` ON `users`.`id` = `orders`.`user_id` " +
		"WHERE (`status` = :qb_p0) " +
		"GROUP BY `orders`.`id` " +
		"HAVING (COUNT(*) > :qb_p1) " +
		"ORDER BY `orders`.`id` ASC " +
		"LIMIT 10, 5"
	if sql != expected {
		t.Errorf("Expected:\n%s\nGot:\n%s", expected, sql)
	}

	bindings, err := qb.Bindings()
	if err != nil {
		t.Fatalf("Failed to resolve bindings: %v", err)
	}
	if bindings["qb_p0"] != "paid" || bindings["qb_p1"] != 5 {
		t.Errorf("Bindings mismatch: got %v", bindings)
	}
}

// BenchmarkFullSelectSkeleton benchmarks rendering with every clause set.
func BenchmarkFullSelectSkeleton(b *testing.B) {
	conn := testConn()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		qb := conn.Table("orders").
			Select("orders.id", "users.name").
			Join("users", "users.id", "=", "orders.user_id").
			Where("status", "=", "paid").
			GroupBy("orders.id").
			Having("COUNT(*)", ">", 5).
			OrderBy("orders.id", "ASC").
			Limit(5).
			Offset(10)
		if _, err := qb.ToSQL(); err != nil {
			b.Fatal(err)
		}
	}
}
