package postgres

import (
	"reflect"
	"sync"

	"github.com/Masterminds/squirrel"
)

// Builder returns a squirrel builder with PostgreSQL placeholders.
func Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// ExtractDBColumns lists the "db" tags of T, flattening embedded structs.
// Repositories call it once at construction time.
func ExtractDBColumns[T any]() []string {
	var zero T
	meta := metadataFor(reflect.TypeOf(zero))
	cols := make([]string, len(meta))
	for i, f := range meta {
		cols[i] = f.column
	}
	return cols
}

// StructToMap converts a struct to a column map using "db" tags.
// Used with squirrel's SetMap for inserts.
func StructToMap(v any) map[string]any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	meta := metadataFor(rv.Type())
	res := make(map[string]any, len(meta))
	for _, f := range meta {
		res[f.column] = rv.FieldByIndex(f.index).Interface()
	}
	return res
}

type column struct {
	column string
	index  []int
}

var columnCache sync.Map // map[reflect.Type][]column

func metadataFor(t reflect.Type) []column {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if cached, ok := columnCache.Load(t); ok {
		return cached.([]column)
	}
	cols := collectColumns(t, nil)
	columnCache.Store(t, cols)
	return cols
}

func collectColumns(t reflect.Type, prefix []int) []column {
	if t.Kind() != reflect.Struct {
		return nil
	}
	var cols []column
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		index := append(append([]int(nil), prefix...), i)

		if field.Anonymous {
			cols = append(cols, collectColumns(field.Type, index)...)
			continue
		}

		tag := field.Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		cols = append(cols, column{column: tag, index: index})
	}
	return cols
}
