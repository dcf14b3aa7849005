package dataset

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Series is a single named column. Cell values are one of float64, bool,
// string, time.Time, or nil for a missing cell.
type Series struct {
	Name   string
	Values []interface{}
}

// NewSeries creates a series from a name and raw cell values.
func NewSeries(name string, values []interface{}) *Series {
	return &Series{Name: name, Values: values}
}

// Len returns the number of cells in the series.
func (s *Series) Len() int {
	return len(s.Values)
}

// Value returns the cell at index i.
func (s *Series) Value(i int) interface{} {
	return s.Values[i]
}

// IsNull reports whether the cell at index i is missing.
func (s *Series) IsNull(i int) bool {
	return s.Values[i] == nil
}

// NullCount returns the number of missing cells.
func (s *Series) NullCount() int {
	count := 0
	for _, v := range s.Values {
		if v == nil {
			count++
		}
	}
	return count
}

// UniqueCount returns the number of distinct non-null values.
func (s *Series) UniqueCount() int {
	seen := make(map[string]struct{})
	for _, v := range s.Values {
		if v == nil {
			continue
		}
		seen[cellKey(v)] = struct{}{}
	}
	return len(seen)
}

// NonNull returns all non-null cell values in order.
func (s *Series) NonNull() []interface{} {
	out := make([]interface{}, 0, len(s.Values))
	for _, v := range s.Values {
		if v != nil {
			out = append(out, v)
		}
	}
	return out
}

// Copy returns a deep copy of the series.
func (s *Series) Copy() *Series {
	values := make([]interface{}, len(s.Values))
	copy(values, s.Values)
	return &Series{Name: s.Name, Values: values}
}

// cellKey renders a cell value into a canonical string key used for
// uniqueness and grouping. Distinct types never collide because the key
// embeds a type tag.
func cellKey(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "<nil>"
	case float64:
		return fmt.Sprintf("f:%v", val)
	case bool:
		return fmt.Sprintf("b:%v", val)
	case string:
		return "s:" + val
	case time.Time:
		return "t:" + val.Format(time.RFC3339Nano)
	default:
		return fmt.Sprintf("x:%v", val)
	}
}

// CellString renders a cell value for display and prompt context.
func CellString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case float64:
		return fmt.Sprintf("%v", val)
	case time.Time:
		return val.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprintf("%v", val)
	}
}

// Table is an in-memory ordered set of named columns with uniform row count.
type Table struct {
	names []string
	cols  map[string]*Series
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{cols: make(map[string]*Series)}
}

// FromColumns builds a table from columns, preserving their order.
// All columns must have the same length.
func FromColumns(columns []*Series) (*Table, error) {
	t := NewTable()
	for _, col := range columns {
		if err := t.AddColumn(col); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// NumRows returns the row count.
func (t *Table) NumRows() int {
	if len(t.names) == 0 {
		return 0
	}
	return t.cols[t.names[0]].Len()
}

// NumCols returns the column count.
func (t *Table) NumCols() int {
	return len(t.names)
}

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.names))
	copy(names, t.names)
	return names
}

// Column returns the named column, or false if it does not exist.
func (t *Table) Column(name string) (*Series, bool) {
	s, ok := t.cols[name]
	return s, ok
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.cols[name]
	return ok
}

// AddColumn appends a column; a column with an existing name is replaced in
// place, keeping its position.
func (t *Table) AddColumn(s *Series) error {
	if s.Name == "" {
		return fmt.Errorf("column name must not be empty")
	}
	if len(t.names) > 0 {
		if _, exists := t.cols[s.Name]; !exists && s.Len() != t.NumRows() {
			return fmt.Errorf("column %q has %d rows, table has %d", s.Name, s.Len(), t.NumRows())
		}
	}
	if _, exists := t.cols[s.Name]; !exists {
		t.names = append(t.names, s.Name)
	}
	t.cols[s.Name] = s
	return nil
}

// DropColumn removes the named column.
func (t *Table) DropColumn(name string) error {
	if _, ok := t.cols[name]; !ok {
		return fmt.Errorf("column %q not found", name)
	}
	delete(t.cols, name)
	for i, n := range t.names {
		if n == name {
			t.names = append(t.names[:i], t.names[i+1:]...)
			break
		}
	}
	return nil
}

// Copy returns a deep copy of the table.
func (t *Table) Copy() *Table {
	out := NewTable()
	for _, name := range t.names {
		out.AddColumn(t.cols[name].Copy())
	}
	return out
}

// SelectRows returns a new table containing the given row indices in order.
func (t *Table) SelectRows(indices []int) *Table {
	out := NewTable()
	for _, name := range t.names {
		src := t.cols[name]
		values := make([]interface{}, len(indices))
		for i, idx := range indices {
			values[i] = src.Values[idx]
		}
		out.AddColumn(&Series{Name: name, Values: values})
	}
	return out
}

// Head returns the first n rows as a new table.
func (t *Table) Head(n int) *Table {
	if n > t.NumRows() {
		n = t.NumRows()
	}
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	return t.SelectRows(indices)
}

// Row returns row i as a name-to-value map.
func (t *Table) Row(i int) map[string]interface{} {
	row := make(map[string]interface{}, len(t.names))
	for _, name := range t.names {
		row[name] = t.cols[name].Values[i]
	}
	return row
}

// Records returns up to limit rows as ordered row maps. A limit <= 0 means
// all rows.
func (t *Table) Records(limit int) []map[string]interface{} {
	n := t.NumRows()
	if limit > 0 && limit < n {
		n = limit
	}
	records := make([]map[string]interface{}, n)
	for i := 0; i < n; i++ {
		records[i] = t.Row(i)
	}
	return records
}

// Filter returns a new table with the rows for which pred returns true.
func (t *Table) Filter(pred func(row map[string]interface{}) bool) *Table {
	var indices []int
	for i := 0; i < t.NumRows(); i++ {
		if pred(t.Row(i)) {
			indices = append(indices, i)
		}
	}
	return t.SelectRows(indices)
}

// AddComputed appends a column computed per-row from the existing columns.
func (t *Table) AddComputed(name string, f func(row map[string]interface{}) interface{}) error {
	values := make([]interface{}, t.NumRows())
	for i := range values {
		values[i] = f(t.Row(i))
	}
	return t.AddColumn(&Series{Name: name, Values: values})
}

// DropDuplicates returns a new table with duplicate rows removed, keeping the
// first occurrence.
func (t *Table) DropDuplicates() *Table {
	seen := make(map[string]struct{})
	var indices []int
	for i := 0; i < t.NumRows(); i++ {
		key := ""
		for _, name := range t.names {
			key += cellKey(t.cols[name].Values[i]) + "\x1f"
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		indices = append(indices, i)
	}
	return t.SelectRows(indices)
}

// DropNullRows returns a new table without rows that have a missing cell in
// any of the given columns (all columns when none are given).
func (t *Table) DropNullRows(columns ...string) *Table {
	if len(columns) == 0 {
		columns = t.names
	}
	var indices []int
	for i := 0; i < t.NumRows(); i++ {
		keep := true
		for _, name := range columns {
			if col, ok := t.cols[name]; ok && col.Values[i] == nil {
				keep = false
				break
			}
		}
		if keep {
			indices = append(indices, i)
		}
	}
	return t.SelectRows(indices)
}

// FillNulls replaces missing cells in the named column with value.
func (t *Table) FillNulls(name string, value interface{}) error {
	col, ok := t.cols[name]
	if !ok {
		return fmt.Errorf("column %q not found", name)
	}
	for i, v := range col.Values {
		if v == nil {
			col.Values[i] = value
		}
	}
	return nil
}

// RenameColumn renames a column, keeping its position.
func (t *Table) RenameColumn(oldName, newName string) error {
	col, ok := t.cols[oldName]
	if !ok {
		return fmt.Errorf("column %q not found", oldName)
	}
	if _, exists := t.cols[newName]; exists {
		return fmt.Errorf("column %q already exists", newName)
	}
	delete(t.cols, oldName)
	col.Name = newName
	t.cols[newName] = col
	for i, n := range t.names {
		if n == oldName {
			t.names[i] = newName
			break
		}
	}
	return nil
}

// Fingerprint returns a content hash of the table (column order, names, and
// every cell). Two tables with identical content have identical fingerprints.
func (t *Table) Fingerprint() string {
	h := sha256.New()
	for _, name := range t.names {
		h.Write([]byte(name))
		h.Write([]byte{0})
		for _, v := range t.cols[name].Values {
			h.Write([]byte(cellKey(v)))
			h.Write([]byte{0x1f})
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
