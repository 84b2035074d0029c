package engine

import (
	"fmt"
	"math"
	"sort"
)

// ============================================================================
// RESHAPE — Pivot, Melt, Derive
// ============================================================================

// Pivot spreads values into an index × columns grid, summing duplicates
// and filling empty cells with 0. Index rows and pivot columns are sorted
// ascending; rows with a missing index or column key are skipped.
func Pivot(t *Table, index, columns, values string) (*Table, error) {
	for _, c := range []string{index, columns, values} {
		if !t.Has(c) {
			return nil, fmt.Errorf("pivot: unknown column %q", c)
		}
	}
	if col, _ := t.Column(values); !col.Kind.Numeric() {
		return nil, fmt.Errorf("pivot: values column %q is %s, want numeric", values, col.Kind)
	}

	rowKeys := Unique(t, index)
	colKeys := Unique(t, columns)
	rowPos := make(map[string]int, len(rowKeys))
	for i, v := range rowKeys {
		rowPos[v.key()] = i
	}
	colPos := make(map[string]int, len(colKeys))
	for i, v := range colKeys {
		colPos[v.key()] = i
	}

	grid := make([][]float64, len(rowKeys))
	for i := range grid {
		grid[i] = make([]float64, len(colKeys))
	}
	for i := 0; i < t.Len(); i++ {
		rk, ck := t.Value(i, index), t.Value(i, columns)
		if rk.IsMissing() || ck.IsMissing() {
			continue
		}
		x, _ := t.Value(i, values).Number()
		grid[rowPos[rk.key()]][colPos[ck.key()]] += x
	}

	idxCol, _ := t.Column(index)
	cols := make([]Column, 0, len(colKeys)+1)
	cols = append(cols, idxCol)
	for _, ck := range colKeys {
		cols = append(cols, Column{Name: ck.Text(), Kind: KindFloat})
	}
	out := empty(cols)
	out.rows = make([][]Value, len(rowKeys))
	for i, rk := range rowKeys {
		row := make([]Value, 0, len(cols))
		row = append(row, rk)
		for _, x := range grid[i] {
			row = append(row, Float(x))
		}
		out.rows[i] = row
	}
	return out, nil
}

// Melt unpivots valueColumns into (id, varName, valueName) rows, one per
// source row and value column, in row-major order.
func Melt(t *Table, id string, valueColumns []string, varName, valueName string) (*Table, error) {
	idCol, ok := t.Column(id)
	if !ok {
		return nil, fmt.Errorf("melt: unknown id column %q", id)
	}
	for _, c := range valueColumns {
		if !t.Has(c) {
			return nil, fmt.Errorf("melt: unknown value column %q", c)
		}
	}
	out := empty([]Column{
		idCol,
		{Name: varName, Kind: KindCategorical},
		{Name: valueName, Kind: KindFloat},
	})
	for i := 0; i < t.Len(); i++ {
		for _, c := range valueColumns {
			out.rows = append(out.rows, []Value{
				t.Value(i, id),
				Categorical(c),
				coerce(t.Value(i, c), KindFloat),
			})
		}
	}
	return out, nil
}

// Derive appends a computed column. fn is called once per row; its result
// is converted to col.Kind. Replacing an existing column is an error.
func Derive(t *Table, col Column, fn func(Row) Value) (*Table, error) {
	if t.Has(col.Name) {
		return nil, fmt.Errorf("derive: column %q already exists", col.Name)
	}
	cols := append(t.Columns(), col)
	out := empty(cols)
	out.rows = make([][]Value, len(t.rows))
	for i, r := range t.rows {
		row := make([]Value, 0, len(cols))
		row = append(row, r...)
		row = append(row, coerce(fn(Row{t: t, i: i}), col.Kind))
		out.rows[i] = row
	}
	return out, nil
}

// WithIndex prepends a 1-based position column.
func WithIndex(t *Table, name string) *Table {
	out, err := Derive(t, Column{Name: name, Kind: KindInteger}, func(r Row) Value {
		return Int(int64(r.Index() + 1))
	})
	if err != nil {
		return t
	}
	names := append([]string{name}, t.Names()...)
	return Select(out, names...)
}

// ============================================================================
// DESCRIBE
// ============================================================================

// Stats summarizes one numeric column.
type Stats struct {
	Count float64 `json:"count"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Min   float64 `json:"min"`
	Q1    float64 `json:"25%"`
	Q2    float64 `json:"50%"`
	Q3    float64 `json:"75%"`
	Max   float64 `json:"max"`
}

// Describe computes count, mean, sample standard deviation, min, quartiles
// (linear interpolation) and max for every numeric column. Missing cells
// are skipped; a column with no values is omitted.
func Describe(t *Table) map[string]Stats {
	out := make(map[string]Stats)
	for _, c := range t.cols {
		if !c.Kind.Numeric() {
			continue
		}
		var xs []float64
		for _, v := range t.ColumnValues(c.Name) {
			if x, ok := v.Number(); ok {
				xs = append(xs, x)
			}
		}
		if len(xs) == 0 {
			continue
		}
		out[c.Name] = describe(xs)
	}
	return out
}

func describe(xs []float64) Stats {
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	n := float64(len(sorted))

	var sum float64
	for _, x := range sorted {
		sum += x
	}
	mean := sum / n

	var std float64
	if len(sorted) > 1 {
		var ss float64
		for _, x := range sorted {
			ss += (x - mean) * (x - mean)
		}
		std = math.Sqrt(ss / (n - 1))
	}

	return Stats{
		Count: n,
		Mean:  mean,
		Std:   std,
		Min:   sorted[0],
		Q1:    quantile(sorted, 0.25),
		Q2:    quantile(sorted, 0.5),
		Q3:    quantile(sorted, 0.75),
		Max:   sorted[len(sorted)-1],
	}
}

// quantile interpolates linearly between closest ranks of a sorted slice.
func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(pos)
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
