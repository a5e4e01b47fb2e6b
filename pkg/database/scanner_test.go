// -----------------------------------------------------------------------------
// Struct Scanner Tests
// -----------------------------------------------------------------------------

package database

import (
	"errors"
	"strings"
	"testing"
	"time"
)

type scanUser struct {
	ID       int64  `db:"id"`
	Email    string `db:"email"`
	Nickname string
	Secret   string `db:"-"`
}

type ScanTimestamps struct {
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type scanEvent struct {
	ScanTimestamps
	ID    int64  `db:"id"`
	Title string `db:"title"`
}

// TestScanStruct_TagResolution tests db tags, the lowercased fallback and
// the "-" skip marker.
func TestScanStruct_TagResolution(t *testing.T) {
	rs := NewResultSet([]string{"id", "email", "nickname", "secret"}, []Row{
		{"id": int64(1), "email": "ada@example.com", "nickname": "ada", "secret": "hunter2"},
	})

	var u scanUser
	if err := rs.ScanStruct(&u); err != nil {
		t.Fatalf("ScanStruct failed: %v", err)
	}
	if u.ID != 1 || u.Email != "ada@example.com" {
		t.Errorf("Tagged fields not filled: %+v", u)
	}
	if u.Nickname != "ada" {
		t.Errorf("Untagged field should map to its lowercased name, got %q", u.Nickname)
	}
	if u.Secret != "" {
		t.Errorf("db:\"-\" field must stay untouched, got %q", u.Secret)
	}
}

// TestScanStruct_UnknownColumnIgnored tests that extra columns do not
// error.
func TestScanStruct_UnknownColumnIgnored(t *testing.T) {
	rs := NewResultSet([]string{"id", "shard_hint"}, []Row{
		{"id": int64(2), "shard_hint": "eu-1"},
	})

	var u scanUser
	if err := rs.ScanStruct(&u); err != nil {
		t.Fatalf("ScanStruct failed: %v", err)
	}
	if u.ID != 2 {
		t.Errorf("Expected id 2, got %d", u.ID)
	}
}

// TestScanStruct_Embedded tests dotted field paths into embedded structs.
func TestScanStruct_Embedded(t *testing.T) {
	rs := NewResultSet([]string{"id", "title", "created_at", "updated_at"}, []Row{
		{
			"id":         int64(5),
			"title":      "Launch",
			"created_at": "2026-08-01 10:30:00",
			"updated_at": "2026-08-02T09:00:00Z",
		},
	})

	var e scanEvent
	if err := rs.ScanStruct(&e); err != nil {
		t.Fatalf("ScanStruct failed: %v", err)
	}
	if e.ID != 5 || e.Title != "Launch" {
		t.Errorf("Own fields not filled: %+v", e)
	}
	if e.CreatedAt.Hour() != 10 || e.CreatedAt.Day() != 1 {
		t.Errorf("Embedded datetime not parsed: %v", e.CreatedAt)
	}
	if e.UpdatedAt.Day() != 2 {
		t.Errorf("Embedded RFC3339 value not parsed: %v", e.UpdatedAt)
	}
}

// TestScanStruct_CacheRevival tests the conversions rows need after a JSON
// round trip through the query cache.
func TestScanStruct_CacheRevival(t *testing.T) {
	type order struct {
		ID       int64     `db:"id"`
		Total    float64   `db:"total"`
		Quantity int       `db:"quantity"`
		Paid     bool      `db:"paid"`
		PlacedAt time.Time `db:"placed_at"`
		Code     string    `db:"code"`
	}

	rs := NewResultSet(
		[]string{"id", "total", "quantity", "paid", "placed_at", "code"},
		[]Row{{
			"id":        float64(3),
			"total":     float64(9.5),
			"quantity":  "42",
			"paid":      "true",
			"placed_at": "2026-08-25",
			"code":      int64(65),
		}},
	)

	var o order
	if err := rs.ScanStruct(&o); err != nil {
		t.Fatalf("ScanStruct failed: %v", err)
	}
	if o.ID != 3 {
		t.Errorf("float64 id should convert, got %d", o.ID)
	}
	if o.Total != 9.5 {
		t.Errorf("Expected total 9.5, got %v", o.Total)
	}
	if o.Quantity != 42 {
		t.Errorf("Numeric string should parse, got %d", o.Quantity)
	}
	if !o.Paid {
		t.Error("Boolean string should parse")
	}
	if o.PlacedAt.Year() != 2026 || o.PlacedAt.Month() != time.August {
		t.Errorf("Date-only value not parsed: %v", o.PlacedAt)
	}
	if o.Code != "65" {
		t.Errorf("Numeric value should format into a string field, got %q", o.Code)
	}
}

// TestScanStruct_NullValue tests that nil zeroes the field.
func TestScanStruct_NullValue(t *testing.T) {
	rs := NewResultSet([]string{"id", "email"}, []Row{
		{"id": int64(1), "email": nil},
	})

	u := scanUser{Email: "stale@example.com"}
	if err := rs.ScanStruct(&u); err != nil {
		t.Fatalf("ScanStruct failed: %v", err)
	}
	if u.Email != "" {
		t.Errorf("NULL should zero the field, got %q", u.Email)
	}
}

// TestScanStruct_Errors tests destination validation, exhaustion and
// unconvertible values.
func TestScanStruct_Errors(t *testing.T) {
	rs := NewResultSet([]string{"id"}, []Row{{"id": int64(1)}})

	var u scanUser
	if err := rs.ScanStruct(u); err == nil || !strings.Contains(err.Error(), "must be a struct pointer") {
		t.Errorf("Expected a struct pointer error, got %v", err)
	}

	if err := rs.ScanStruct(&u); err != nil {
		t.Fatalf("ScanStruct failed: %v", err)
	}
	if err := rs.ScanStruct(&u); !errors.Is(err, ErrNoRows) {
		t.Errorf("Expected ErrNoRows on an exhausted set, got %v", err)
	}

	bad := NewResultSet([]string{"id"}, []Row{{"id": map[string]any{"nested": true}}})
	err := bad.ScanStruct(&u)
	if err == nil || !strings.Contains(err.Error(), `column "id"`) {
		t.Errorf("Expected a column-scoped conversion error, got %v", err)
	}
}

// TestScanSlice tests scanning the remainder into a struct slice.
func TestScanSlice(t *testing.T) {
	rs := NewResultSet([]string{"id", "email"}, []Row{
		{"id": int64(1), "email": "a@example.com"},
		{"id": int64(2), "email": "b@example.com"},
		{"id": int64(3), "email": "c@example.com"},
	})

	var first scanUser
	if err := rs.ScanStruct(&first); err != nil {
		t.Fatalf("ScanStruct failed: %v", err)
	}

	var rest []scanUser
	if err := rs.ScanSlice(&rest); err != nil {
		t.Fatalf("ScanSlice failed: %v", err)
	}
	if len(rest) != 2 || rest[0].ID != 2 || rest[1].ID != 3 {
		t.Errorf("Expected the remaining two rows, got %+v", rest)
	}

	var wrong []int
	if err := rs.ScanSlice(&wrong); err == nil || !strings.Contains(err.Error(), "slice of structs") {
		t.Errorf("Expected a slice-of-structs error, got %v", err)
	}
	if err := rs.ScanSlice(rest); err == nil || !strings.Contains(err.Error(), "slice pointer") {
		t.Errorf("Expected a slice pointer error, got %v", err)
	}
}

// TestToInt64 tests count reading across driver and cache representations.
func TestToInt64(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected int64
	}{
		{"int64", int64(42), 42},
		{"int", 42, 42},
		{"int32", int32(42), 42},
		{"uint64", uint64(42), 42},
		{"float64 from json", float64(42), 42},
		{"numeric string", "42", 42},
		{"byte slice", []byte("42"), 42},
		{"null", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := toInt64(tt.value)
			if err != nil {
				t.Fatalf("toInt64 failed: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, got)
			}
		})
	}

	if _, err := toInt64(struct{}{}); err == nil {
		t.Error("Expected an error for an unsupported type")
	}
}
