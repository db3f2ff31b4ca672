package livedocx

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
)

// AssignValue stages a scalar for a single template field. Last write wins
func (c *Client) AssignValue(key string, value any) {
	c.fieldValues[key] = scalarString(value)
}

// AssignBlock stages the rows of a template block. Ex.:
//
//	c.AssignBlock("names", []map[string]any{
//		{"first": "John"},
//		{"first": "Sam"},
//	})
func (c *Client) AssignBlock(key string, rows []map[string]any) {
	staged := make([]map[string]string, len(rows))
	for i, row := range rows {
		staged[i] = make(map[string]string, len(row))
		for col, v := range row {
			staged[i][col] = scalarString(v)
		}
	}
	c.blockValues[key] = staged
}

// Assign stages every entry of data: row lists go to AssignBlock, everything else to AssignValue.
// data must be a string-keyed map, as produced by JSON/YAML decoding.
// Any other sequence is a type error. Nothing is staged when an entry fails
func (c *Client) Assign(data any) error {
	var entries map[string]any
	switch d := data.(type) {
	case map[string]any:
		entries = d
	case map[string]string:
		for k, v := range d {
			c.AssignValue(k, v)
		}
		return nil
	default:
		return newError(ErrType, "assign expects a map[string]any, got %T", data)
	}
	blocks := make(map[string][]map[string]any)
	for key, value := range entries {
		rows, isBlock, err := blockRows(key, value)
		if err != nil {
			return err
		}
		if isBlock {
			blocks[key] = rows
		}
	}
	for key, value := range entries {
		if rows, ok := blocks[key]; ok {
			c.AssignBlock(key, rows)
		} else {
			c.AssignValue(key, value)
		}
	}
	return nil
}

// blockRows reports whether value is a sequence and converts its rows.
// Every row must be a string-keyed map
func blockRows(key string, value any) ([]map[string]any, bool, error) {
	switch v := value.(type) {
	case nil, string, []byte:
		return nil, false, nil
	case []map[string]any:
		return v, true, nil
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false, nil
	}
	rows := make([]map[string]any, rv.Len())
	for i := range rv.Len() {
		row, ok := rowMap(rv.Index(i))
		if !ok {
			return nil, false, newError(ErrType, "block %q: row %d must be a string-keyed map, got %s", key, i, typeName(rv.Index(i)))
		}
		rows[i] = row
	}
	return rows, true, nil
}

func rowMap(v reflect.Value) (map[string]any, bool) {
	if v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	if !v.IsValid() || v.Kind() != reflect.Map || v.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	if m, ok := v.Interface().(map[string]any); ok {
		return m, true
	}
	row := make(map[string]any, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		row[iter.Key().String()] = iter.Value().Interface()
	}
	return row, true
}

func typeName(v reflect.Value) string {
	if v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	if !v.IsValid() {
		return "nil"
	}
	return v.Type().String()
}

func scalarString(v any) string {
	if v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	}
	return fmt.Sprint(v)
}

// FieldValues returns a copy of the staged field values
func (c *Client) FieldValues() map[string]string {
	return maps.Clone(c.fieldValues)
}

// BlockValues returns a copy of the staged block values
func (c *Client) BlockValues() map[string][]map[string]string {
	out := make(map[string][]map[string]string, len(c.blockValues))
	for k, rows := range c.blockValues {
		copied := make([]map[string]string, len(rows))
		for i, row := range rows {
			copied[i] = maps.Clone(row)
		}
		out[k] = copied
	}
	return out
}

// fieldValuesTable encodes fields as [names, values]. Names are sorted
func fieldValuesTable(fields map[string]string) [][]string {
	names := slices.Sorted(maps.Keys(fields))
	values := make([]string, len(names))
	for i, name := range names {
		values[i] = fields[name]
	}
	return [][]string{names, values}
}

// blockValuesTable encodes rows as [columns, row1, row2, ...].
// Columns are the first row's keys, sorted; every row is read in that order
func blockValuesTable(rows []map[string]string) [][]string {
	if len(rows) == 0 {
		return [][]string{{}}
	}
	columns := slices.Sorted(maps.Keys(rows[0]))
	table := make([][]string, 0, len(rows)+1)
	table = append(table, columns)
	for _, row := range rows {
		values := make([]string, len(columns))
		for i, col := range columns {
			values[i] = row[col]
		}
		table = append(table, values)
	}
	return table
}
