// -----------------------------------------------------------------------------
// INSERT Tests
// -----------------------------------------------------------------------------
// Single-row named inserts, batch positional transport, the column
// consistency guard and the dialect-specific duplicate-tolerant verbs.
// -----------------------------------------------------------------------------

package database

import (
	"errors"
	"strings"
	"testing"
)

// TestInsert_SingleRow tests a single named-mode row with lexically ordered
// columns.
func TestInsert_SingleRow(t *testing.T) {
	qb := testConn().Builder().
		Insert("users").
		Values(map[string]any{"name": "Ada", "email": "ada@example.com"})

	sql, err := qb.ToSQL()
	if err != nil {
		t.Fatalf("Failed to compile SQL: %v", err)
	}
	expected := "INSERT INTO `users` (`email`, `name`) VALUES (:qb_p0, :qb_p1)"
	if sql != expected {
		t.Errorf("Expected:\n%s\nGot:\n%s", expected, sql)
	}

	bindings, err := qb.Bindings()
	if err != nil {
		t.Fatalf("Failed to resolve bindings: %v", err)
	}
	if bindings["qb_p0"] != "ada@example.com" || bindings["qb_p1"] != "Ada" {
		t.Errorf("Bindings mismatch: got %v", bindings)
	}
}

// TestInsert_Batch tests that multi-row inserts switch to positional
// transport with row-major arguments.
func TestInsert_Batch(t *testing.T) {
	qb := testConn().Builder().
		Insert("users").
		Values(map[string]any{"name": "Ada", "email": "ada@example.com"}).
		Values(map[string]any{"name": "Bob", "email": "bob@example.com"})

	sql, err := qb.ToSQL()
	if err != nil {
		t.Fatalf("Failed to compile SQL: %v", err)
	}
	expected := "INSERT INTO `users` (`email`, `name`) VALUES (?, ?), (?, ?)"
	if sql != expected {
		t.Errorf("Expected:\n%s\nGot:\n%s", expected, sql)
	}

	args, err := qb.Args()
	if err != nil {
		t.Fatalf("Failed to resolve args: %v", err)
	}
	want := []any{"ada@example.com", "Ada", "bob@example.com", "Bob"}
	if len(args) != len(want) {
		t.Fatalf("Expected %d args, got %d", len(want), len(args))
	}
	for i := range want {
		if args[i] != want[i] {
			t.Errorf("Arg %d: expected %v, got %v", i, want[i], args[i])
		}
	}
}

// TestInsert_InconsistentBatch tests the column-set guard across rows.
func TestInsert_InconsistentBatch(t *testing.T) {
	qb := testConn().Builder().
		Insert("users").
		Values(map[string]any{"name": "Ada", "email": "ada@example.com"}).
		Values(map[string]any{"username": "bob", "email": "bob@example.com"})

	_, err := qb.ToSQL()
	if !errors.Is(err, ErrInconsistentBatch) {
		t.Fatalf("Expected ErrInconsistentBatch, got %v", err)
	}
	if !strings.Contains(err.Error(), "have (email, name), got (email, username)") {
		t.Errorf("Error should name both column sets, got: %v", err)
	}
}

// TestInsert_EmptyRow tests that an empty row fails the builder at the call.
func TestInsert_EmptyRow(t *testing.T) {
	qb := testConn().Builder().Insert("users").Values(map[string]any{})

	if qb.Err() == nil {
		t.Fatal("Expected recorded error for empty row")
	}
	var ce *ClauseError
	if !errors.As(qb.Err(), &ce) || ce.Clause != "insert" {
		t.Errorf("Expected insert clause error, got %v", qb.Err())
	}
}

// TestInsert_NoValues tests rendering an INSERT with no rows at all.
func TestInsert_NoValues(t *testing.T) {
	qb := testConn().Builder().Insert("users")

	if _, err := qb.ToSQL(); !errors.Is(err, ErrNoValues) {
		t.Errorf("Expected ErrNoValues, got %v", err)
	}
}

// TestInsertIgnore_Dialects tests the duplicate-tolerant insert verb per
// dialect.
func TestInsertIgnore_Dialects(t *testing.T) {
	row := map[string]any{"email": "ada@example.com"}

	t.Run("mysql", func(t *testing.T) {
		sql, err := testConn().Builder().InsertIgnore("users").Values(row).ToSQL()
		if err != nil {
			t.Fatalf("Failed to compile SQL: %v", err)
		}
		expected := "INSERT IGNORE INTO `users` (`email`) VALUES (:qb_p0)"
		if sql != expected {
			t.Errorf("Expected:\n%s\nGot:\n%s", expected, sql)
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		sql, err := testConnSQLite().Builder().InsertIgnore("users").Values(row).ToSQL()
		if err != nil {
			t.Fatalf("Failed to compile SQL: %v", err)
		}
		expected := `INSERT OR IGNORE INTO "users" ("email") VALUES (:qb_p0)`
		if sql != expected {
			t.Errorf("Expected:\n%s\nGot:\n%s", expected, sql)
		}
	})

	t.Run("postgres", func(t *testing.T) {
		sql, err := testConnPostgres().Builder().InsertIgnore("users").Values(row).ToSQL()
		if err != nil {
			t.Fatalf("Failed to compile SQL: %v", err)
		}
		expected := `INSERT INTO "users" ("email") VALUES (:qb_p0) ON CONFLICT DO NOTHING`
		if sql != expected {
			t.Errorf("Expected:\n%s\nGot:\n%s", expected, sql)
		}
	})
}

// TestInsert_ExpressionValue tests expression values rendering inline in a
// single-row insert.
func TestInsert_ExpressionValue(t *testing.T) {
	qb := testConn().Builder().
		Insert("users").
		Values(map[string]any{"created_at": Now(), "name": "Ada"})

	sql, err := qb.ToSQL()
	if err != nil {
		t.Fatalf("Failed to compile SQL: %v", err)
	}
	expected := "INSERT INTO `users` (`created_at`, `name`) VALUES (NOW(), :qb_p0)"
	if sql != expected {
		t.Errorf("Expected:\n%s\nGot:\n%s", expected, sql)
	}

	bindings, err := qb.Bindings()
	if err != nil {
		t.Fatalf("Failed to resolve bindings: %v", err)
	}
	if len(bindings) != 1 || bindings["qb_p0"] != "Ada" {
		t.Errorf("Bindings mismatch: got %v", bindings)
	}
}

// TestInsert_SetFallback tests that SET pairs carried into an INSERT render
// as one row in call order.
func TestInsert_SetFallback(t *testing.T) {
	qb := testConn().Builder().
		Insert("users").
		SetValue("name", "Ada").
		SetValue("email", "ada@example.com")

	sql, err := qb.ToSQL()
	if err != nil {
		t.Fatalf("Failed to compile SQL: %v", err)
	}
	expected := "INSERT INTO `users` (`name`, `email`) VALUES (:qb_p0, :qb_p1)"
	if sql != expected {
		t.Errorf("Expected:\n%s\nGot:\n%s", expected, sql)
	}
}

// TestInsert_PositionalSingleRow tests that positional mode switches even a
// single row to ? transport.
func TestInsert_PositionalSingleRow(t *testing.T) {
	qb := testConn().Builder().
		UsePositional().
		Insert("users").
		Values(map[string]any{"email": "ada@example.com", "name": "Ada"})

	sql, err := qb.ToSQL()
	if err != nil {
		t.Fatalf("Failed to compile SQL: %v", err)
	}
	expected := "INSERT INTO `users` (`email`, `name`) VALUES (?, ?)"
	if sql != expected {
		t.Errorf("Expected:\n%s\nGot:\n%s", expected, sql)
	}

	args, err := qb.Args()
	if err != nil {
		t.Fatalf("Failed to resolve args: %v", err)
	}
	if len(args) != 2 || args[0] != "ada@example.com" || args[1] != "Ada" {
		t.Errorf("Args mismatch: got %v", args)
	}
}

// BenchmarkInsertBatch benchmarks a wide batch insert.
func BenchmarkInsertBatch(b *testing.B) {
	conn := testConn()
	rows := make([]map[string]any, 100)
	for i := range rows {
		rows[i] = map[string]any{"email": "user@example.com", "name": "User"}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		qb := conn.Builder().Insert("users")
		for _, row := range rows {
			qb.Values(row)
		}
		if _, err := qb.ToSQL(); err != nil {
			b.Fatal(err)
		}
	}
}
