package engine

import (
	"encoding/json"
	"fmt"
)

// ============================================================================
// TABLE — immutable rows × typed columns
// ============================================================================
// Derived tables share row storage with their parent: a filter keeps the
// parent's row slices, a projection builds new ones. Rows are never written
// after a table is constructed, so sharing is safe across sessions.
// ============================================================================

// Table is an ordered, immutable set of rows over typed columns.
type Table struct {
	cols  []Column
	index map[string]int
	rows  [][]Value
}

// New builds a table. Every row must have one value per column; values are
// converted to the column's kind.
func New(cols []Column, rows [][]Value) (*Table, error) {
	t := empty(cols)
	if len(t.index) != len(cols) {
		return nil, fmt.Errorf("duplicate column name in %v", columnNames(cols))
	}
	t.rows = make([][]Value, 0, len(rows))
	for i, r := range rows {
		if len(r) != len(cols) {
			return nil, fmt.Errorf("row %d has %d values, want %d", i, len(r), len(cols))
		}
		row := make([]Value, len(r))
		for j, v := range r {
			row[j] = coerce(v, cols[j].Kind)
		}
		t.rows = append(t.rows, row)
	}
	return t, nil
}

// MustNew is New for static data known to be well formed.
func MustNew(cols []Column, rows [][]Value) *Table {
	t, err := New(cols, rows)
	if err != nil {
		panic(err)
	}
	return t
}

// FromColumns builds a table from column-oriented data, the shape of a
// static dict of lists. All columns must have the same length.
func FromColumns(cols []Column, data map[string][]Value) (*Table, error) {
	n := -1
	for _, c := range cols {
		vals, ok := data[c.Name]
		if !ok {
			return nil, fmt.Errorf("missing data for column %q", c.Name)
		}
		if n >= 0 && len(vals) != n {
			return nil, fmt.Errorf("column %q has %d values, want %d", c.Name, len(vals), n)
		}
		n = len(vals)
	}
	if n < 0 {
		n = 0
	}
	rows := make([][]Value, n)
	for i := range rows {
		row := make([]Value, len(cols))
		for j, c := range cols {
			row[j] = data[c.Name][i]
		}
		rows[i] = row
	}
	return New(cols, rows)
}

func empty(cols []Column) *Table {
	t := &Table{
		cols:  append([]Column(nil), cols...),
		index: make(map[string]int, len(cols)),
	}
	for i, c := range cols {
		t.index[c.Name] = i
	}
	return t
}

// derive builds a table with the parent's columns over a subset of its rows.
func (t *Table) derive(rows [][]Value) *Table {
	return &Table{cols: t.cols, index: t.index, rows: rows}
}

func coerce(v Value, k Kind) Value {
	if v.Kind() == k {
		return v
	}
	if v.IsMissing() {
		return Missing(k)
	}
	return v.As(k)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool { return t.Len() == 0 }

// Columns returns a copy of the column list.
func (t *Table) Columns() []Column {
	return append([]Column(nil), t.cols...)
}

// Names returns the column names in order.
func (t *Table) Names() []string { return columnNames(t.cols) }

// Shape returns (rows, columns).
func (t *Table) Shape() (int, int) { return len(t.rows), len(t.cols) }

// Column looks up a column by name.
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, false
	}
	return t.cols[i], true
}

// Has reports whether the table has the named column.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Value returns the cell at row i, column name. Out of range rows and
// unknown columns read as missing.
func (t *Table) Value(i int, name string) Value {
	j, ok := t.index[name]
	if !ok || i < 0 || i >= len(t.rows) {
		return Missing(KindString)
	}
	return t.rows[i][j]
}

// Row returns a read accessor for row i.
func (t *Table) Row(i int) Row { return Row{t: t, i: i} }

// Values returns a copy of row i.
func (t *Table) Values(i int) []Value {
	return append([]Value(nil), t.rows[i]...)
}

// ColumnValues returns every cell of a column in row order.
func (t *Table) ColumnValues(name string) []Value {
	j, ok := t.index[name]
	if !ok {
		return nil
	}
	out := make([]Value, len(t.rows))
	for i, r := range t.rows {
		out[i] = r[j]
	}
	return out
}

// Records returns rows as column→value maps (records orientation).
func (t *Table) Records() []map[string]Value {
	out := make([]map[string]Value, len(t.rows))
	for i, r := range t.rows {
		rec := make(map[string]Value, len(t.cols))
		for j, c := range t.cols {
			rec[c.Name] = r[j]
		}
		out[i] = rec
	}
	return out
}

// MarshalJSON writes {"columns": [...], "rows": [[...]]}.
func (t *Table) MarshalJSON() ([]byte, error) {
	rows := t.rows
	if rows == nil {
		rows = [][]Value{}
	}
	return json.Marshal(struct {
		Columns []Column  `json:"columns"`
		Rows    [][]Value `json:"rows"`
	}{t.cols, rows})
}

// Row is a read-only view of one table row.
type Row struct {
	t *Table
	i int
}

// Get returns the named cell.
func (r Row) Get(name string) Value { return r.t.Value(r.i, name) }

// Index returns the row's position in its table.
func (r Row) Index() int { return r.i }

func columnNames(cols []Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}
