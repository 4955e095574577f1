package querybuilder

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// InsertModel builds a single-row insert from the db-tagged fields of model.
func InsertModel(table string, model any) (string, []any, error) {
	return InsertModels(table, []any{model})
}

// InsertModels builds one multi-row insert. Every model must expose the
// same columns as the first.
func InsertModels[T any](table string, models []T) (string, []any, error) {
	if strings.TrimSpace(table) == "" {
		return "", nil, errors.New("insert: no table")
	}
	if len(models) == 0 {
		return "", nil, errors.New("insert: no rows")
	}

	var (
		s       stmt
		columns []string
	)
	for i, m := range models {
		cols, vals, err := taggedFields(m)
		if err != nil {
			return "", nil, fmt.Errorf("insert row %d: %w", i, err)
		}
		if i == 0 {
			columns = cols
			s.write("INSERT INTO ", table, " (", strings.Join(cols, ", "), ") VALUES ")
		} else {
			if !slices.Equal(columns, cols) {
				return "", nil, fmt.Errorf("insert row %d: columns differ from first row", i)
			}
			s.write(", ")
		}
		s.write("(")
		for j, v := range vals {
			if j > 0 {
				s.write(", ")
			}
			s.bind(v)
		}
		s.write(")")
	}
	return s.done()
}

// taggedFields reads exported struct fields carrying a db tag.
func taggedFields(model any) ([]string, []any, error) {
	v := reflect.ValueOf(model)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, nil, errors.New("nil model")
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("model must be a struct, got %s", v.Kind())
	}

	t := v.Type()
	var (
		cols []string
		vals []any
	)
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("db"), ",")
		name = strings.TrimSpace(name)
		if name == "" || name == "-" {
			continue
		}
		cols = append(cols, name)
		vals = append(vals, v.Field(i).Interface())
	}
	if len(cols) == 0 {
		return nil, nil, errors.New("model has no db columns")
	}
	return cols, vals, nil
}
