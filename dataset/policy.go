package dataset

import (
	"fmt"
	"math"
	"strconv"

	"github.com/cesde-ntp/tablero/engine"
)

// DefaultLabel fills missing cells of label columns.
const DefaultLabel = "Unknown"

// Policy declares how a raw table becomes a typed one. Columns named in no
// list become categorical.
type Policy struct {
	Rename    map[string]string
	Text      []string // free-text columns kept as strings
	Integer   []string
	Float     []string
	FillZero  []string
	FillLabel []string
	Label     string // defaults to DefaultLabel
}

// Normalize applies p to t: rename, coerce numbers (unparseable cells
// become missing), fill zeros, fill labels. Column names in the other lists
// refer to the renamed columns. The input table is not modified.
func Normalize(t *engine.Table, p Policy) (*engine.Table, error) {
	label := p.Label
	if label == "" {
		label = DefaultLabel
	}
	kinds := make(map[string]engine.Kind)
	for _, c := range p.Text {
		kinds[c] = engine.KindString
	}
	for _, c := range p.Integer {
		kinds[c] = engine.KindInteger
	}
	for _, c := range p.Float {
		kinds[c] = engine.KindFloat
	}
	zero := toSet(p.FillZero)
	fill := toSet(p.FillLabel)

	src := t.Columns()
	cols := make([]engine.Column, len(src))
	for i, c := range src {
		name := c.Name
		if to, ok := p.Rename[name]; ok {
			name = to
		}
		kind, ok := kinds[name]
		if !ok {
			kind = engine.KindCategorical
		}
		cols[i] = engine.Column{Name: name, Kind: kind}
	}

	rows := make([][]engine.Value, t.Len())
	for i := range rows {
		raw := t.Values(i)
		row := make([]engine.Value, len(cols))
		for j, c := range cols {
			v := convert(raw[j], c.Kind)
			if v.IsMissing() {
				switch {
				case zero[c.Name] && c.Kind.Numeric():
					v = engine.Float(0).As(c.Kind)
				case fill[c.Name] && !c.Kind.Numeric():
					v = engine.String(label).As(c.Kind)
				}
			}
			row[j] = v
		}
		rows[i] = row
	}

	out, err := engine.New(cols, rows)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	return out, nil
}

// missingTokens are cell texts read as missing in every column, the same
// set pandas' read_csv treats as NA by default.
var missingTokens = map[string]bool{
	"#N/A": true, "#N/A N/A": true, "#NA": true, "-1.#IND": true, "-1.#QNAN": true,
	"-NaN": true, "-nan": true, "1.#IND": true, "1.#QNAN": true, "<NA>": true,
	"N/A": true, "NA": true, "NULL": true, "NaN": true, "None": true,
	"n/a": true, "nan": true, "null": true,
}

// convert parses a raw cell into kind. Missing tokens, text that does not
// parse as a number, and non-finite numbers all yield a missing cell.
func convert(v engine.Value, kind engine.Kind) engine.Value {
	if v.IsMissing() {
		return engine.Missing(kind)
	}
	if s, ok := v.Str(); ok && missingTokens[s] {
		return engine.Missing(kind)
	}
	if !kind.Numeric() {
		return engine.String(v.Text()).As(kind)
	}
	if x, ok := v.Number(); ok {
		if !finite(x) {
			return engine.Missing(kind)
		}
		return v.As(kind)
	}
	s, _ := v.Str()
	x, err := strconv.ParseFloat(s, 64)
	if err != nil || !finite(x) {
		return engine.Missing(kind)
	}
	return engine.Float(x).As(kind)
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}
