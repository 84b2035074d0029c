package engine

import (
	"fmt"
	"sort"
	"strings"
)

// ============================================================================
// FILTERS — Declarative row predicates
// ============================================================================
// A Filter is a tree: leaves compare one column against a value or set,
// inner nodes combine children with and/or/not. Evaluation is single pass,
// short-circuits, and keeps the parent's row slices (no data copy).
//
// Comparisons against a missing cell are false, so Not(GreaterThan(c, x))
// keeps rows whose c is missing.
// ============================================================================

// Op is a filter operation.
type Op string

const (
	OpAll Op = "all"
	OpEq  Op = "eq"
	OpNe  Op = "ne"
	OpIn  Op = "in"
	OpGt  Op = "gt"
	OpGte Op = "gte"
	OpLt  Op = "lt"
	OpLte Op = "lte"
	OpAnd Op = "and"
	OpOr  Op = "or"
	OpNot Op = "not"
)

// Filter is a predicate over table rows. Build it with the constructors
// below; the exported fields exist for JSON transport.
type Filter struct {
	Op       Op       `json:"op"`
	Column   string   `json:"column,omitempty"`
	Value    Value    `json:"value,omitempty"`
	Values   []Value  `json:"values,omitempty"`
	Children []Filter `json:"children,omitempty"`
}

// All matches every row.
func All() Filter { return Filter{Op: OpAll} }

// Equals matches rows whose column equals v.
func Equals(column string, v any) Filter {
	return Filter{Op: OpEq, Column: column, Value: V(v)}
}

// NotEquals matches rows whose column is present and differs from v.
func NotEquals(column string, v any) Filter {
	return Filter{Op: OpNe, Column: column, Value: V(v)}
}

// InSet matches rows whose column equals any of vs. An empty set matches
// nothing.
func InSet(column string, vs ...any) Filter {
	vals := make([]Value, len(vs))
	for i, v := range vs {
		vals[i] = V(v)
	}
	return Filter{Op: OpIn, Column: column, Values: vals}
}

// InStrings is InSet for a string slice.
func InStrings(column string, vs []string) Filter {
	vals := make([]Value, len(vs))
	for i, v := range vs {
		vals[i] = String(v)
	}
	return Filter{Op: OpIn, Column: column, Values: vals}
}

// GreaterThan matches rows whose numeric column is > x.
func GreaterThan(column string, x float64) Filter {
	return Filter{Op: OpGt, Column: column, Value: Float(x)}
}

// AtLeast matches rows whose numeric column is >= x.
func AtLeast(column string, x float64) Filter {
	return Filter{Op: OpGte, Column: column, Value: Float(x)}
}

// LessThan matches rows whose numeric column is < x.
func LessThan(column string, x float64) Filter {
	return Filter{Op: OpLt, Column: column, Value: Float(x)}
}

// AtMost matches rows whose numeric column is <= x.
func AtMost(column string, x float64) Filter {
	return Filter{Op: OpLte, Column: column, Value: Float(x)}
}

// And matches rows matching every child.
func And(fs ...Filter) Filter { return Filter{Op: OpAnd, Children: fs} }

// Or matches rows matching any child.
func Or(fs ...Filter) Filter { return Filter{Op: OpOr, Children: fs} }

// Not negates a filter.
func Not(f Filter) Filter { return Filter{Op: OpNot, Children: []Filter{f}} }

// Match evaluates the filter against one row.
func (f Filter) Match(r Row) bool {
	switch f.Op {
	case OpAll, "":
		return true
	case OpEq:
		return r.Get(f.Column).Equal(f.Value)
	case OpNe:
		v := r.Get(f.Column)
		return !v.IsMissing() && !v.Equal(f.Value)
	case OpIn:
		v := r.Get(f.Column)
		for _, want := range f.Values {
			if v.Equal(want) {
				return true
			}
		}
		return false
	case OpGt, OpGte, OpLt, OpLte:
		c, ok := r.Get(f.Column).Compare(f.Value)
		if !ok {
			return false
		}
		switch f.Op {
		case OpGt:
			return c > 0
		case OpGte:
			return c >= 0
		case OpLt:
			return c < 0
		default:
			return c <= 0
		}
	case OpAnd:
		for _, c := range f.Children {
			if !c.Match(r) {
				return false
			}
		}
		return true
	case OpOr:
		for _, c := range f.Children {
			if c.Match(r) {
				return true
			}
		}
		return false
	case OpNot:
		if len(f.Children) != 1 {
			return false
		}
		return !f.Children[0].Match(r)
	}
	return false
}

// Validate checks the filter's structure: known ops, columns on leaves,
// exactly one child under not.
func (f Filter) Validate() error {
	switch f.Op {
	case OpAll, "":
		return nil
	case OpEq, OpNe, OpIn, OpGt, OpGte, OpLt, OpLte:
		if f.Column == "" {
			return fmt.Errorf("filter %s: column is required", f.Op)
		}
		return nil
	case OpAnd, OpOr:
		for i, c := range f.Children {
			if err := c.Validate(); err != nil {
				return fmt.Errorf("filter %s[%d]: %w", f.Op, i, err)
			}
		}
		return nil
	case OpNot:
		if len(f.Children) != 1 {
			return fmt.Errorf("filter not: want 1 child, got %d", len(f.Children))
		}
		return f.Children[0].Validate()
	}
	return fmt.Errorf("unknown filter op %q", f.Op)
}

// String renders the filter as a compact expression, used in logs and titles.
func (f Filter) String() string {
	switch f.Op {
	case OpAll, "":
		return "all"
	case OpEq:
		return fmt.Sprintf("%s == %s", f.Column, quote(f.Value))
	case OpNe:
		return fmt.Sprintf("%s != %s", f.Column, quote(f.Value))
	case OpIn:
		parts := make([]string, len(f.Values))
		for i, v := range f.Values {
			parts[i] = quote(v)
		}
		return fmt.Sprintf("%s in [%s]", f.Column, strings.Join(parts, ", "))
	case OpGt:
		return fmt.Sprintf("%s > %s", f.Column, f.Value.Text())
	case OpGte:
		return fmt.Sprintf("%s >= %s", f.Column, f.Value.Text())
	case OpLt:
		return fmt.Sprintf("%s < %s", f.Column, f.Value.Text())
	case OpLte:
		return fmt.Sprintf("%s <= %s", f.Column, f.Value.Text())
	case OpAnd, OpOr:
		parts := make([]string, len(f.Children))
		for i, c := range f.Children {
			parts[i] = c.String()
		}
		return "(" + strings.Join(parts, " "+string(f.Op)+" ") + ")"
	case OpNot:
		if len(f.Children) == 1 {
			return "not " + f.Children[0].String()
		}
	}
	return string(f.Op)
}

func quote(v Value) string {
	if _, ok := v.Str(); ok {
		return fmt.Sprintf("%q", v.Text())
	}
	return v.Text()
}

// ============================================================================
// APPLY / MASK
// ============================================================================

// Apply returns the rows of t matching f, in their original order, with all
// columns. It never fails: no matches yields an empty table.
func Apply(t *Table, f Filter) *Table {
	if f.Op == OpAll || f.Op == "" {
		return t.derive(t.rows)
	}
	rows := make([][]Value, 0, len(t.rows))
	for i, r := range t.rows {
		if f.Match(Row{t: t, i: i}) {
			rows = append(rows, r)
		}
	}
	return t.derive(rows)
}

// Mask returns a table of the same length where every row matching f has
// all of its cells replaced by missing values.
func Mask(t *Table, f Filter) *Table {
	rows := make([][]Value, len(t.rows))
	for i, r := range t.rows {
		if !f.Match(Row{t: t, i: i}) {
			rows[i] = r
			continue
		}
		blank := make([]Value, len(t.cols))
		for j, c := range t.cols {
			blank[j] = Missing(c.Kind)
		}
		rows[i] = blank
	}
	return t.derive(rows)
}

// ============================================================================
// ROW SELECTION & ORDERING
// ============================================================================

// Head returns the first n rows.
func Head(t *Table, n int) *Table {
	if n < 0 {
		n = 0
	}
	if n > len(t.rows) {
		n = len(t.rows)
	}
	return t.derive(t.rows[:n:n])
}

// Tail returns the last n rows.
func Tail(t *Table, n int) *Table {
	if n < 0 {
		n = 0
	}
	if n > len(t.rows) {
		n = len(t.rows)
	}
	return t.derive(t.rows[len(t.rows)-n:])
}

// SortBy returns t ordered by a column with a stable sort. Missing cells
// sort last in both directions. Unknown columns leave the order unchanged.
func SortBy(t *Table, column string, desc bool) *Table {
	j, ok := t.index[column]
	rows := append([][]Value(nil), t.rows...)
	if !ok {
		return t.derive(rows)
	}
	sort.SliceStable(rows, func(a, b int) bool {
		return valueLess(rows[a][j], rows[b][j], desc)
	})
	return t.derive(rows)
}

// valueLess orders present values before missing ones.
func valueLess(a, b Value, desc bool) bool {
	if a.IsMissing() || b.IsMissing() {
		return !a.IsMissing() && b.IsMissing()
	}
	c, ok := a.Compare(b)
	if !ok {
		return false
	}
	if desc {
		return c > 0
	}
	return c < 0
}

// Select projects t onto the named columns, in the given order. Unknown
// names are skipped.
func Select(t *Table, names ...string) *Table {
	var cols []Column
	var idx []int
	for _, n := range names {
		if j, ok := t.index[n]; ok {
			cols = append(cols, t.cols[j])
			idx = append(idx, j)
		}
	}
	out := empty(cols)
	out.rows = make([][]Value, len(t.rows))
	for i, r := range t.rows {
		row := make([]Value, len(idx))
		for k, j := range idx {
			row[k] = r[j]
		}
		out.rows[i] = row
	}
	return out
}

// Unique returns the distinct present values of a column in ascending order.
func Unique(t *Table, column string) []Value {
	seen := make(map[string]bool)
	var out []Value
	for _, v := range t.ColumnValues(column) {
		if v.IsMissing() || seen[v.key()] {
			continue
		}
		seen[v.key()] = true
		out = append(out, v)
	}
	sort.SliceStable(out, func(a, b int) bool { return valueLess(out[a], out[b], false) })
	return out
}

// UniqueStrings is Unique rendered as text.
func UniqueStrings(t *Table, column string) []string {
	vals := Unique(t, column)
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = v.Text()
	}
	return out
}
