package engine

import (
	"fmt"
	"math"
	"strings"
)

// ============================================================================
// AGGREGATORS — Grouping, Reduction, Top-N
// ============================================================================
// Pipeline: group (first-encountered order) → reduce → optional top-N.
// Rows whose group key is missing are dropped before grouping, so a
// missing year never becomes a group. A fill label such as "Unknown" is a
// regular value and groups like any other.
// ============================================================================

// Reducer names a reduction over a group.
type Reducer string

const (
	ReduceSum   Reducer = "sum"
	ReduceMean  Reducer = "mean"
	ReduceCount Reducer = "count"
	ReduceMin   Reducer = "min"
	ReduceMax   Reducer = "max"
)

// AggregationSpec describes a group-reduce-truncate step.
type AggregationSpec struct {
	GroupBy []string `json:"groupBy"`
	Target  string   `json:"target,omitempty"` // numeric column; ignored by count
	Reducer Reducer  `json:"reducer"`
	TopN    int      `json:"topN,omitempty"` // 0 = all groups
	As      string   `json:"as,omitempty"`   // result column name override
}

// ResultColumn is the name of the reduced column in the output.
func (s AggregationSpec) ResultColumn() string {
	switch {
	case s.As != "":
		return s.As
	case s.Reducer == ReduceCount || s.Target == "":
		return "count"
	}
	return s.Target
}

// group is an intermediate aggregation bucket.
type group struct {
	key  []Value
	rows []int
}

// Aggregate groups t by spec.GroupBy and reduces spec.Target. The output
// has one row per distinct key plus the reduced column. Errors are limited
// to unknown columns, a non-numeric target, or an unknown reducer.
func Aggregate(t *Table, spec AggregationSpec) (*Table, error) {
	if len(spec.GroupBy) == 0 {
		return nil, fmt.Errorf("aggregate: at least one group-by column is required")
	}
	keyIdx := make([]int, len(spec.GroupBy))
	cols := make([]Column, 0, len(spec.GroupBy)+1)
	for i, name := range spec.GroupBy {
		j, ok := t.index[name]
		if !ok {
			return nil, fmt.Errorf("aggregate: unknown group-by column %q", name)
		}
		keyIdx[i] = j
		cols = append(cols, t.cols[j])
	}

	target := -1
	switch spec.Reducer {
	case ReduceCount:
	case ReduceSum, ReduceMean, ReduceMin, ReduceMax:
		j, ok := t.index[spec.Target]
		if !ok {
			return nil, fmt.Errorf("aggregate: unknown target column %q", spec.Target)
		}
		if !t.cols[j].Kind.Numeric() {
			return nil, fmt.Errorf("aggregate: target column %q is %s, want numeric", spec.Target, t.cols[j].Kind)
		}
		target = j
	default:
		return nil, fmt.Errorf("aggregate: unknown reducer %q", spec.Reducer)
	}

	resultKind := KindFloat
	if spec.Reducer == ReduceCount {
		resultKind = KindInteger
	}
	cols = append(cols, Column{Name: spec.ResultColumn(), Kind: resultKind})

	groups := groupRows(t, keyIdx)

	out := empty(cols)
	out.rows = make([][]Value, 0, len(groups))
	for _, g := range groups {
		row := make([]Value, 0, len(cols))
		row = append(row, g.key...)
		row = append(row, reduce(t, g.rows, target, spec.Reducer))
		out.rows = append(out.rows, row)
	}

	if spec.TopN > 0 {
		out = TopN(out, spec.ResultColumn(), spec.TopN)
	}
	return out, nil
}

// groupRows buckets row indices by key in first-encountered order.
func groupRows(t *Table, keyIdx []int) []*group {
	byKey := make(map[string]*group)
	var order []*group
	var sb strings.Builder
rows:
	for i, r := range t.rows {
		sb.Reset()
		for _, j := range keyIdx {
			if r[j].IsMissing() {
				continue rows
			}
			sb.WriteString(r[j].key())
			sb.WriteByte(0)
		}
		k := sb.String()
		g, ok := byKey[k]
		if !ok {
			key := make([]Value, len(keyIdx))
			for n, j := range keyIdx {
				key[n] = r[j]
			}
			g = &group{key: key}
			byKey[k] = g
			order = append(order, g)
		}
		g.rows = append(g.rows, i)
	}
	return order
}

// reduce applies a reducer to one group. sum and mean skip missing cells;
// mean divides by the number of cells it summed, which after loader
// normalization is the group's row count.
func reduce(t *Table, rows []int, target int, r Reducer) Value {
	if r == ReduceCount {
		return Int(int64(len(rows)))
	}
	var sum float64
	n := 0
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, i := range rows {
		x, ok := t.rows[i][target].Number()
		if !ok {
			continue
		}
		sum += x
		n++
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	switch r {
	case ReduceSum:
		return Float(sum)
	case ReduceMean:
		if n == 0 {
			return Missing(KindFloat)
		}
		return Float(sum / float64(n))
	case ReduceMin:
		if n == 0 {
			return Missing(KindFloat)
		}
		return Float(lo)
	case ReduceMax:
		if n == 0 {
			return Missing(KindFloat)
		}
		return Float(hi)
	}
	return Missing(KindFloat)
}

// TopN keeps the n rows with the largest value in column, sorted
// descending. Ties keep their original order.
func TopN(t *Table, column string, n int) *Table {
	sorted := SortBy(t, column, true)
	return Head(sorted, n)
}

// ValueCounts counts rows per distinct value of column, sorted by count
// descending (ties in first-encountered order). Missing values are skipped.
func ValueCounts(t *Table, column string) *Table {
	out, err := Aggregate(t, AggregationSpec{GroupBy: []string{column}, Reducer: ReduceCount})
	if err != nil {
		return empty([]Column{{Name: column}, {Name: "count", Kind: KindInteger}})
	}
	return SortBy(out, "count", true)
}

// ============================================================================
// WHOLE-TABLE REDUCTIONS
// ============================================================================

// Sum adds up a numeric column, skipping missing cells.
func Sum(t *Table, column string) float64 {
	var total float64
	for _, v := range t.ColumnValues(column) {
		if x, ok := v.Number(); ok {
			total += x
		}
	}
	return total
}

// Mean averages a numeric column, skipping missing cells. ok is false when
// there is nothing to average.
func Mean(t *Table, column string) (float64, bool) {
	var total float64
	n := 0
	for _, v := range t.ColumnValues(column) {
		if x, ok := v.Number(); ok {
			total += x
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return total / float64(n), true
}

// MinMax returns the smallest and largest present value of a numeric column.
func MinMax(t *Table, column string) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range t.ColumnValues(column) {
		if x, present := v.Number(); present {
			lo = math.Min(lo, x)
			hi = math.Max(hi, x)
			ok = true
		}
	}
	if !ok {
		return 0, 0, false
	}
	return lo, hi, true
}

// SumColumns totals several numeric columns into a two-column table:
// one row per source column (labelColumn) with its sum (valueColumn).
func SumColumns(t *Table, columns []string, labelColumn, valueColumn string) *Table {
	out := empty([]Column{
		{Name: labelColumn, Kind: KindCategorical},
		{Name: valueColumn, Kind: KindFloat},
	})
	for _, c := range columns {
		if !t.Has(c) {
			continue
		}
		out.rows = append(out.rows, []Value{Categorical(c), Float(Sum(t, c))})
	}
	return out
}

// ============================================================================
// FORMATTING UTILITIES
// ============================================================================

// FormatAmount formats a number with comma separators and two decimals,
// followed by an optional unit.
func FormatAmount(amount float64, unit string) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}
	cents := int64(math.Round(amount * 100))
	s := fmt.Sprintf("%s.%02d", FormatInt(int(cents/100)), cents%100)
	if negative {
		s = "-" + s
	}
	if unit != "" {
		s += " " + unit
	}
	return s
}

// FormatInt formats an integer with comma separators.
func FormatInt(n int) string {
	if n < 0 {
		return "-" + FormatInt(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s,%03d", FormatInt(n/1000), n%1000)
}

// RoundTo2 rounds to 2 decimal places.
func RoundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
