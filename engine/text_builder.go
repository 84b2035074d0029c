package engine

import (
	"fmt"
)

// ============================================================================
// TEXT BUILDER — Single-value answers (metrics)
// ============================================================================

// TextData is structured data for a single-value answer.
type TextData struct {
	Label    string  `json:"label"`
	Value    string  `json:"value"`
	RawValue float64 `json:"rawValue"`
	Unit     string  `json:"unit,omitempty"`
	Count    int     `json:"count"`
}

// BuildSumText totals a numeric column of t as a metric.
func BuildSumText(label string, t *Table, column, unit string) *TextData {
	total := Sum(t, column)
	return &TextData{
		Label:    label,
		Value:    FormatAmount(total, unit),
		RawValue: total,
		Unit:     unit,
		Count:    t.Len(),
	}
}

// BuildCountText reports the row count of t as a metric.
func BuildCountText(label string, t *Table) *TextData {
	return &TextData{
		Label:    label,
		Value:    FormatInt(t.Len()),
		RawValue: float64(t.Len()),
		Count:    t.Len(),
	}
}

// BuildRangeText reports the min and max of a numeric column, rendered as
// integers: "Mínimo: 1980, Máximo: 2020".
func BuildRangeText(label string, t *Table, column string) *TextData {
	lo, hi, ok := MinMax(t, column)
	if !ok {
		return &TextData{Label: label, Value: "Sin datos"}
	}
	return &TextData{
		Label:    label,
		Value:    fmt.Sprintf("Año mínimo: %d, Año máximo: %d", int(lo), int(hi)),
		RawValue: hi - lo,
		Count:    t.Len(),
	}
}
