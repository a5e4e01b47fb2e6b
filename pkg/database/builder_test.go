// -----------------------------------------------------------------------------
// Query Builder Core Tests
// -----------------------------------------------------------------------------
// Covers the fluent chain, rendering, memoization, cloning and statement
// transitions. SQL is asserted as exact text against the MySQL dialect;
// dialect-specific windowing is checked across all three dialects.
// -----------------------------------------------------------------------------

package database

import (
	"errors"
	"strings"
	"testing"

	"github.com/goragodwiriya/nowjs-crm-sub005/pkg/database/dialect"
)

// testConn returns a connection that renders MySQL SQL without opening a
// database.
func testConn() *Connection {
	return NewConnection(dialect.NewMySQL())
}

// testConnPostgres returns a render-only PostgreSQL connection.
func testConnPostgres() *Connection {
	return NewConnection(dialect.NewPostgres())
}

// testConnSQLite returns a render-only SQLite connection.
func testConnSQLite() *Connection {
	return NewConnection(dialect.NewSQLite())
}

// TestToSQL_RoundTrip tests the canonical select chain.
func TestToSQL_RoundTrip(t *testing.T) {
	qb := testConn().Table("orders").
		Where("status", "=", "paid").
		OrderBy("created_at", "DESC").
		Limit(10)

	sql, err := qb.ToSQL()
	if err != nil {
		t.Fatalf("Failed to compile SQL: %v", err)
	}

	expected := "SELECT * FROM `orders` WHERE (`status` = :qb_p0) ORDER BY `created_at` DESC LIMIT 10"
	if sql != expected {
		t.Errorf("Expected:\n%s\nGot:\n%s", expected, sql)
	}

	bindings, err := qb.Bindings()
	if err != nil {
		t.Fatalf("Failed to resolve bindings: %v", err)
	}
	if len(bindings) != 1 || bindings["qb_p0"] != "paid" {
		t.Errorf("Bindings mismatch: got %v", bindings)
	}
}

// TestToSQL_Memoized tests that repeated renders return the same text and
// that a mutation re-renders with the earlier placeholder names intact.
func TestToSQL_Memoized(t *testing.T) {
	qb := testConn().Table("orders").Where("status", "=", "paid")

	first, err := qb.ToSQL()
	if err != nil {
		t.Fatalf("Failed to compile SQL: %v", err)
	}
	second, err := qb.ToSQL()
	if err != nil {
		t.Fatalf("Failed to compile SQL: %v", err)
	}
	if first != second {
		t.Errorf("Repeated renders differ:\n%s\n%s", first, second)
	}

	// A new condition re-renders; names minted earlier stay stable and the
	// counter continues.
	qb.Where("total", ">", 100)
	third, err := qb.ToSQL()
	if err != nil {
		t.Fatalf("Failed to compile SQL: %v", err)
	}
	expected := "SELECT * FROM `orders` WHERE ((`status` = :qb_p0) AND (`total` > :qb_p1))"
	if third != expected {
		t.Errorf("Expected:\n%s\nGot:\n%s", expected, third)
	}
}

// TestSelect_ReplacesList tests that Select replaces rather than appends.
func TestSelect_ReplacesList(t *testing.T) {
	qb := testConn().Table("users").Select("id").Select("name", "email")

	sql, err := qb.ToSQL()
	if err != nil {
		t.Fatalf("Failed to compile SQL: %v", err)
	}

	expected := "SELECT `name`, `email` FROM `users`"
	if sql != expected {
		t.Errorf("Expected:\n%s\nGot:\n%s", expected, sql)
	}
}

// TestSelect_DottedAndStar tests qualified columns and wildcards.
func TestSelect_DottedAndStar(t *testing.T) {
	qb := testConn().Table("users").Select("users.id", "users.*")

	sql, err := qb.ToSQL()
	if err != nil {
		t.Fatalf("Failed to compile SQL: %v", err)
	}

	expected := "SELECT `users`.`id`, `users`.* FROM `users`"
	if sql != expected {
		t.Errorf("Expected:\n%s\nGot:\n%s", expected, sql)
	}
}

// TestDistinct tests SELECT DISTINCT rendering.
func TestDistinct(t *testing.T) {
	qb := testConn().Table("users").Select("country").Distinct()

	sql, err := qb.ToSQL()
	if err != nil {
		t.Fatalf("Failed to compile SQL: %v", err)
	}

	expected := "SELECT DISTINCT `country` FROM `users`"
	if sql != expected {
		t.Errorf("Expected:\n%s\nGot:\n%s", expected, sql)
	}
}

// TestOrderBy_DirectionNormalization tests direction case folding and the
// empty-direction default.
func TestOrderBy_DirectionNormalization(t *testing.T) {
	cases := []struct {
		direction string
		expected  string
	}{
		{"desc", "ORDER BY `id` DESC"},
		{"Asc", "ORDER BY `id` ASC"},
		{"  DESC  ", "ORDER BY `id` DESC"},
		{"", "ORDER BY `id` ASC"},
	}

	for _, tc := range cases {
		t.Run(tc.direction, func(t *testing.T) {
			qb := testConn().Table("users").OrderBy("id", tc.direction)
			sql, err := qb.ToSQL()
			if err != nil {
				t.Fatalf("Failed to compile SQL: %v", err)
			}
			if !strings.Contains(sql, tc.expected) {
				t.Errorf("Expected %q in:\n%s", tc.expected, sql)
			}
		})
	}
}

// TestOrderBy_InvalidDirection tests that directions outside the whitelist
// fail the builder immediately.
func TestOrderBy_InvalidDirection(t *testing.T) {
	qb := testConn().Table("users").OrderBy("id", "SIDEWAYS")

	if qb.Err() == nil {
		t.Fatal("Expected recorded error for invalid direction")
	}

	_, err := qb.ToSQL()
	var ce *ClauseError
	if !errors.As(err, &ce) {
		t.Fatalf("Expected ClauseError, got %v", err)
	}
	if ce.Clause != "order by" {
		t.Errorf("Expected order by clause error, got %q", ce.Clause)
	}
}

// TestLimitOffset_Dialects tests the windowing clause across dialects.
func TestLimitOffset_Dialects(t *testing.T) {
	t.Run("mysql limit and offset", func(t *testing.T) {
		sql, err := testConn().Table("t").Limit(5).Offset(10).ToSQL()
		if err != nil {
			t.Fatalf("Failed to compile SQL: %v", err)
		}
		if !strings.HasSuffix(sql, "LIMIT 10, 5") {
			t.Errorf("Expected MySQL comma form, got: %s", sql)
		}
	})

	t.Run("mysql offset only", func(t *testing.T) {
		sql, err := testConn().Table("t").Offset(10).ToSQL()
		if err != nil {
			t.Fatalf("Failed to compile SQL: %v", err)
		}
		if !strings.HasSuffix(sql, "LIMIT 10, 18446744073709551615") {
			t.Errorf("Expected MySQL huge-count idiom, got: %s", sql)
		}
	})

	t.Run("postgres limit and offset", func(t *testing.T) {
		sql, err := testConnPostgres().Table("t").Limit(5).Offset(10).ToSQL()
		if err != nil {
			t.Fatalf("Failed to compile SQL: %v", err)
		}
		if !strings.HasSuffix(sql, "LIMIT 5 OFFSET 10") {
			t.Errorf("Expected LIMIT/OFFSET form, got: %s", sql)
		}
	})

	t.Run("postgres offset only", func(t *testing.T) {
		sql, err := testConnPostgres().Table("t").Offset(10).ToSQL()
		if err != nil {
			t.Fatalf("Failed to compile SQL: %v", err)
		}
		if !strings.HasSuffix(sql, "OFFSET 10") {
			t.Errorf("Expected bare OFFSET, got: %s", sql)
		}
	})

	t.Run("sqlite offset only", func(t *testing.T) {
		sql, err := testConnSQLite().Table("t").Offset(10).ToSQL()
		if err != nil {
			t.Fatalf("Failed to compile SQL: %v", err)
		}
		if !strings.HasSuffix(sql, "LIMIT -1 OFFSET 10") {
			t.Errorf("Expected SQLite -1 idiom, got: %s", sql)
		}
	})
}

// TestLimitOffset_NegativeFails tests the negative-window guards.
func TestLimitOffset_NegativeFails(t *testing.T) {
	if _, err := testConn().Table("t").Limit(-1).ToSQL(); err == nil {
		t.Error("Expected error for negative limit")
	}
	if _, err := testConn().Table("t").Offset(-1).ToSQL(); err == nil {
		t.Error("Expected error for negative offset")
	}
}

// TestFrom_Alias tests table aliasing.
func TestFrom_Alias(t *testing.T) {
	qb := testConn().Builder().From("users", "u").Select("u.id")

	sql, err := qb.ToSQL()
	if err != nil {
		t.Fatalf("Failed to compile SQL: %v", err)
	}

	expected := "SELECT `u`.`id` FROM `users` AS `u`"
	if sql != expected {
		t.Errorf("Expected:\n%s\nGot:\n%s", expected, sql)
	}
}

// TestFromSub tests selecting from a derived table. The sub-builder is
// rendered and absorbed at the call, so reusing it later cannot disturb the
// outer statement.
func TestFromSub(t *testing.T) {
	paid := testConn().Table("orders").Select("user_id").Where("status", "=", "paid")
	qb := testConn().Builder().FromSub(paid, "paid_orders")

	sql, err := qb.ToSQL()
	if err != nil {
		t.Fatalf("Failed to compile SQL: %v", err)
	}

	expected := "SELECT * FROM (SELECT `user_id` FROM `orders` WHERE (`status` = :qb_p0)) AS `paid_orders`"
	if sql != expected {
		t.Errorf("Expected:\n%s\nGot:\n%s", expected, sql)
	}

	bindings, err := qb.Bindings()
	if err != nil {
		t.Fatalf("Failed to resolve bindings: %v", err)
	}
	if bindings["qb_p0"] != "paid" {
		t.Errorf("Expected absorbed binding, got %v", bindings)
	}

	// Mutating the sub-builder afterwards leaves the outer SQL untouched.
	paid.Where("total", ">", 100)
	again, err := qb.ToSQL()
	if err != nil {
		t.Fatalf("Failed to compile SQL: %v", err)
	}
	if again != expected {
		t.Errorf("Outer statement changed after sub-builder mutation:\n%s", again)
	}
}

// TestClone_Independence tests that clones never share mutations.
func TestClone_Independence(t *testing.T) {
	original := testConn().Table("users").Where("active", "=", true)
	clone := original.Clone().Where("role", "=", "admin")

	origSQL, err := original.ToSQL()
	if err != nil {
		t.Fatalf("Failed to compile SQL: %v", err)
	}
	cloneSQL, err := clone.ToSQL()
	if err != nil {
		t.Fatalf("Failed to compile SQL: %v", err)
	}

	if strings.Contains(origSQL, "role") {
		t.Errorf("Clone mutation leaked into original: %s", origSQL)
	}
	if !strings.Contains(cloneSQL, "`role`") {
		t.Errorf("Clone lost its own condition: %s", cloneSQL)
	}
}

// TestTransition_KeepsRenderedNumbering tests that a statement transition
// after a render keeps the minted names, while a transition before any
// render numbers the SET values first.
func TestTransition_KeepsRenderedNumbering(t *testing.T) {
	// Rendered first: the where value holds qb_p0, the SET value continues
	// at qb_p1.
	sel := testConn().Table("users").Where("id", "=", 7)
	if _, err := sel.ToSQL(); err != nil {
		t.Fatalf("Failed to compile SQL: %v", err)
	}

	upd := sel.Update("users").SetValue("name", "Ada")
	sql, err := upd.ToSQL()
	if err != nil {
		t.Fatalf("Failed to compile SQL: %v", err)
	}
	expected := "UPDATE `users` SET `name` = :qb_p1 WHERE (`id` = :qb_p0)"
	if sql != expected {
		t.Errorf("Expected:\n%s\nGot:\n%s", expected, sql)
	}

	// Never rendered: the UPDATE skeleton allocates SET values before the
	// where-tree.
	fresh := testConn().Table("users").Where("id", "=", 7).
		Update("users").SetValue("name", "Ada")
	sql, err = fresh.ToSQL()
	if err != nil {
		t.Fatalf("Failed to compile SQL: %v", err)
	}
	expected = "UPDATE `users` SET `name` = :qb_p0 WHERE (`id` = :qb_p1)"
	if sql != expected {
		t.Errorf("Expected:\n%s\nGot:\n%s", expected, sql)
	}
}

// TestPlaceholderPrefix tests custom allocation prefixes.
func TestPlaceholderPrefix(t *testing.T) {
	qb := testConn().Table("users").PlaceholderPrefix("p").Where("id", "=", 1)

	sql, err := qb.ToSQL()
	if err != nil {
		t.Fatalf("Failed to compile SQL: %v", err)
	}
	expected := "SELECT * FROM `users` WHERE (`id` = :p0)"
	if sql != expected {
		t.Errorf("Expected:\n%s\nGot:\n%s", expected, sql)
	}

	for _, bad := range []string{"", "1x", "p-p", "p p"} {
		t.Run("invalid "+bad, func(t *testing.T) {
			qb := testConn().Table("users").PlaceholderPrefix(bad)
			if qb.Err() == nil {
				t.Errorf("Expected error for prefix %q", bad)
			}
		})
	}
}

// TestErr_FirstErrorWins tests that the first structural error is the one
// that surfaces, and that later calls cannot displace it.
func TestErr_FirstErrorWins(t *testing.T) {
	qb := testConn().Table("users").Limit(-1).OrderBy("id", "SIDEWAYS")

	_, err := qb.ToSQL()
	if err == nil {
		t.Fatal("Expected error, got none")
	}
	var ce *ClauseError
	if !errors.As(err, &ce) {
		t.Fatalf("Expected ClauseError, got %v", err)
	}
	if ce.Clause != "limit" {
		t.Errorf("Expected the first error (limit), got %q", ce.Clause)
	}
}

// TestToSQL_NoDialect tests rendering with no dialect reachable.
func TestToSQL_NoDialect(t *testing.T) {
	prev := DefaultConnection()
	SetDefaultConnection(nil)
	defer SetDefaultConnection(prev)

	qb := NewBuilder(nil).From("users")
	if _, err := qb.ToSQL(); !errors.Is(err, ErrNoDialect) {
		t.Errorf("Expected ErrNoDialect, got %v", err)
	}
}

// TestExplain_Prefix tests the EXPLAIN prefix.
func TestExplain_Prefix(t *testing.T) {
	qb := testConn().Table("users").Where("id", "=", 1).Explain()

	sql, err := qb.ToSQL()
	if err != nil {
		t.Fatalf("Failed to compile SQL: %v", err)
	}
	if !strings.HasPrefix(sql, "EXPLAIN SELECT") {
		t.Errorf("Expected EXPLAIN prefix, got: %s", sql)
	}
}

// BenchmarkToSQL_Select benchmarks a representative select chain.
func BenchmarkToSQL_Select(b *testing.B) {
	conn := testConn()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		qb := conn.Table("orders").
			Select("id", "user_id", "total").
			Where("status", "=", "paid").
			OrderBy("created_at", "DESC").
			Limit(20)
		if _, err := qb.ToSQL(); err != nil {
			b.Fatal(err)
		}
	}
}
