// -----------------------------------------------------------------------------
// Reflection-Based Struct Scanner
// -----------------------------------------------------------------------------
// Maps materialized rows onto structs. Column names resolve through `db`
// tags (falling back to the lowercased field name), `db:"-"` skips a field,
// and embedded structs are walked recursively with dotted paths.
//
// Field maps are built once per struct type and cached behind a RWMutex
// with double-checked locking. The cache only ever holds one small map per
// scanned type, so entries live for the life of the process.
//
// Rows that passed through the JSON query cache come back with float64
// numbers and string timestamps; assignValue converts those back to the
// field's kind where the conversion is lossless.
// -----------------------------------------------------------------------------

package database

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"
)

type fieldMap map[string]string

var (
	fieldMapMu    sync.RWMutex
	fieldMapCache = make(map[reflect.Type]fieldMap)
)

// structFieldMap analyzes a struct type and returns its column→field
// mapping, cached per type.
func structFieldMap(structType reflect.Type) fieldMap {
	fieldMapMu.RLock()
	if mapping, ok := fieldMapCache[structType]; ok {
		fieldMapMu.RUnlock()
		return mapping
	}
	fieldMapMu.RUnlock()

	fieldMapMu.Lock()
	defer fieldMapMu.Unlock()

	// Double-check: another goroutine may have built it meanwhile.
	if mapping, ok := fieldMapCache[structType]; ok {
		return mapping
	}

	mapping := buildFieldMap(structType)
	fieldMapCache[structType] = mapping
	return mapping
}

func buildFieldMap(structType reflect.Type) fieldMap {
	mapping := make(fieldMap)
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)

		if field.Anonymous {
			if field.Type.Kind() == reflect.Struct {
				for column, name := range buildFieldMap(field.Type) {
					mapping[column] = field.Name + "." + name
				}
			}
			continue
		}

		tag := field.Tag.Get("db")
		if tag == "-" {
			continue
		}
		if tag == "" {
			tag = strings.ToLower(field.Name)
		}
		mapping[tag] = field.Name
	}
	return mapping
}

// ScanStruct scans the next row into a struct pointer. Columns without a
// matching field are ignored; an exhausted set returns ErrNoRows.
//
// Example:
//
//	type User struct {
//	    ID    int64  `db:"id"`
//	    Email string `db:"email"`
//	}
//	var u User
//	err := rs.ScanStruct(&u)
func (rs *ResultSet) ScanStruct(dest any) error {
	destValue := reflect.ValueOf(dest)
	if destValue.Kind() != reflect.Ptr || destValue.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("scanner: dest must be a struct pointer, got %T", dest)
	}

	row := rs.Fetch()
	if row == nil {
		return ErrNoRows
	}
	return assignRow(row, destValue.Elem())
}

// ScanSlice scans every remaining row into a slice of structs.
//
// Example:
//
//	var users []User
//	err := rs.ScanSlice(&users)
func (rs *ResultSet) ScanSlice(dest any) error {
	sliceValue := reflect.ValueOf(dest)
	if sliceValue.Kind() != reflect.Ptr || sliceValue.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("scanner: dest must be a slice pointer, got %T", dest)
	}
	sliceElem := sliceValue.Elem()
	structType := sliceElem.Type().Elem()
	if structType.Kind() != reflect.Struct {
		return fmt.Errorf("scanner: dest must be a slice of structs, got %s", sliceElem.Type())
	}

	for {
		row := rs.Fetch()
		if row == nil {
			return nil
		}
		item := reflect.New(structType)
		if err := assignRow(row, item.Elem()); err != nil {
			return err
		}
		sliceElem.Set(reflect.Append(sliceElem, item.Elem()))
	}
}

// assignRow copies row values onto the fields of a struct value.
func assignRow(row Row, destElem reflect.Value) error {
	mapping := structFieldMap(destElem.Type())
	for column, value := range row {
		name, ok := mapping[column]
		if !ok {
			continue
		}
		field := destElem.FieldByName(name)
		if !field.IsValid() {
			field = findEmbeddedField(destElem, name)
		}
		if !field.IsValid() || !field.CanSet() {
			return fmt.Errorf("scanner: field %q not found or not settable", name)
		}
		if err := assignValue(field, value); err != nil {
			return fmt.Errorf("scanner: column %q: %w", column, err)
		}
	}
	return nil
}

// findEmbeddedField resolves dotted paths like "Base.ID" into embedded
// structs.
func findEmbeddedField(v reflect.Value, name string) reflect.Value {
	current := v
	for _, part := range strings.Split(name, ".") {
		if current.Kind() == reflect.Ptr {
			current = current.Elem()
		}
		if current.Kind() != reflect.Struct {
			return reflect.Value{}
		}
		current = current.FieldByName(part)
	}
	return current
}

// assignValue sets one field from a row value, converting where the
// dynamic type does not match the field exactly.
func assignValue(field reflect.Value, value any) error {
	if value == nil {
		field.Set(reflect.Zero(field.Type()))
		return nil
	}

	v := reflect.ValueOf(value)
	if v.Type().AssignableTo(field.Type()) {
		field.Set(v)
		return nil
	}
	if v.Type().ConvertibleTo(field.Type()) {
		switch field.Kind() {
		case reflect.String:
			// Numeric-to-string conversions through reflect produce
			// garbage runes; format instead.
			field.SetString(fmt.Sprintf("%v", value))
			return nil
		default:
			field.Set(v.Convert(field.Type()))
			return nil
		}
	}

	switch fv := value.(type) {
	case []byte:
		if field.Kind() == reflect.String {
			field.SetString(string(fv))
			return nil
		}
	case string:
		if field.Type() == reflect.TypeOf(time.Time{}) {
			for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
				if t, err := time.Parse(layout, fv); err == nil {
					field.Set(reflect.ValueOf(t))
					return nil
				}
			}
		}
		switch field.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if n, err := strconv.ParseInt(fv, 10, 64); err == nil {
				field.SetInt(n)
				return nil
			}
		case reflect.Float32, reflect.Float64:
			if f, err := strconv.ParseFloat(fv, 64); err == nil {
				field.SetFloat(f)
				return nil
			}
		case reflect.Bool:
			if b, err := strconv.ParseBool(fv); err == nil {
				field.SetBool(b)
				return nil
			}
		}
	}

	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// toInt64 reads a count-like value from a row regardless of how the driver
// or the cache represented it.
func toInt64(value any) (int64, error) {
	switch v := value.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case uint64:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	case []byte:
		return strconv.ParseInt(string(v), 10, 64)
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("database: cannot read %T as a row count", value)
	}
}
