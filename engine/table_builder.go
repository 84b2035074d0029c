package engine

import (
	"fmt"
)

// ============================================================================
// TABLE BUILDER — Produces TableData from a derived Table
// ============================================================================
// Cells are formatted for display: integers plain, floats with two decimals,
// missing cells empty. Numeric columns align right.
// ============================================================================

// TableData defines how to render a table.
type TableData struct {
	Title   string        `json:"title"`
	Columns []TableColumn `json:"columns"`
	Rows    [][]string    `json:"rows"`
	Summary *Summary      `json:"summary,omitempty"`
}

// TableColumn defines a rendered table column.
type TableColumn struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`  // "text", "number"
	Align string `json:"align"` // "left", "right"
}

// Summary provides totals for a table.
type Summary struct {
	Label  string            `json:"label"`
	Values map[string]string `json:"values"`
}

// TableOption adjusts BuildTable output.
type TableOption func(*tableOptions)

type tableOptions struct {
	index   bool
	totals  []string
	maxRows int
}

// WithRowIndex prepends a 1-based position column.
func WithRowIndex() TableOption {
	return func(o *tableOptions) { o.index = true }
}

// WithTotals adds a summary row totalling the named numeric columns.
func WithTotals(columns ...string) TableOption {
	return func(o *tableOptions) { o.totals = columns }
}

// WithRowLimit renders at most n rows.
func WithRowLimit(n int) TableOption {
	return func(o *tableOptions) { o.maxRows = n }
}

// BuildTable produces a TableData from a table.
func BuildTable(title string, t *Table, opts ...TableOption) *TableData {
	var o tableOptions
	for _, opt := range opts {
		opt(&o)
	}

	data := &TableData{
		Title:   title,
		Columns: []TableColumn{},
		Rows:    [][]string{},
	}
	if t == nil {
		return data
	}

	if o.index {
		data.Columns = append(data.Columns, TableColumn{Key: "#", Label: "#", Type: "number", Align: "right"})
	}
	for _, c := range t.cols {
		col := TableColumn{Key: c.Name, Label: c.Name, Type: "text", Align: "left"}
		if c.Kind.Numeric() {
			col.Type = "number"
			col.Align = "right"
		}
		data.Columns = append(data.Columns, col)
	}

	n := t.Len()
	if o.maxRows > 0 && n > o.maxRows {
		n = o.maxRows
	}
	for i := 0; i < n; i++ {
		row := make([]string, 0, len(data.Columns))
		if o.index {
			row = append(row, fmt.Sprintf("%d", i+1))
		}
		for _, v := range t.rows[i] {
			row = append(row, FormatCell(v))
		}
		data.Rows = append(data.Rows, row)
	}

	if len(o.totals) > 0 {
		data.Summary = &Summary{
			Label:  fmt.Sprintf("Total (%d rows)", t.Len()),
			Values: make(map[string]string, len(o.totals)),
		}
		for _, c := range o.totals {
			data.Summary.Values[c] = FormatAmount(Sum(t, c), "")
		}
	}
	return data
}

// FormatCell renders one cell for a table.
func FormatCell(v Value) string {
	if v.IsMissing() {
		return ""
	}
	if v.Kind() == KindFloat {
		x, _ := v.Number()
		return fmt.Sprintf("%.2f", x)
	}
	return v.Text()
}
