package schema

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cesde-ntp/tablero/dataset"
	"github.com/cesde-ntp/tablero/engine"
)

// ============================================================================
// AUTO-DISCOVERY — Heuristic column classification
// ============================================================================
// Classification pipeline per column:
//   1. Declared kind, or detected type for raw text columns
//   2. Type + cardinality → role (dimension, measure, skip)
//   3. Pattern matching → temporal columns (years, months, quarters)
//   4. Hierarchy detection between dimensions
// ============================================================================

// DiscoverOptions controls discovery behavior.
type DiscoverOptions struct {
	SampleSize     int      // Max rows to inspect (0 = all). Default: 5000
	RecoverColumns []string // Force-include columns that were auto-skipped
	Name           string   // Profile name
}

// DefaultDiscoverOptions returns the defaults.
func DefaultDiscoverOptions() DiscoverOptions {
	return DiscoverOptions{
		SampleSize: 5000,
	}
}

// Discover profiles t.
func Discover(t *engine.Table, opts ...DiscoverOptions) *Profile {
	opt := DefaultDiscoverOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}

	sample := t
	if opt.SampleSize > 0 && t.Len() > opt.SampleSize {
		sample = engine.Head(t, opt.SampleSize)
	}

	recoverSet := make(map[string]bool)
	for _, c := range opt.RecoverColumns {
		recoverSet[strings.ToLower(c)] = true
	}

	p := &Profile{Name: opt.Name, Rows: t.Len()}
	if p.Name == "" {
		p.Name = "dataset"
	}

	var analyses []columnAnalysis
	for _, c := range sample.Columns() {
		col := analyzeColumn(c, sample)
		if col.role == RoleSkipped && recoverSet[strings.ToLower(c.Name)] {
			col.role = RoleDimension
			col.skipReason = ""
		}
		if col.role == RoleSkipped {
			p.SkippedColumns = append(p.SkippedColumns, SkippedColumn{
				Column:      c.Name,
				Reason:      col.skipReason,
				Recoverable: col.recoverable,
			})
		}
		analyses = append(analyses, col)
	}

	detectHierarchies(analyses, sample)

	for _, col := range analyses {
		p.Columns = append(p.Columns, col.profile())
	}
	return p
}

// InferPolicy builds a loader policy for a raw, all-text table: columns
// whose values are mostly numeric become integer or float, free text with
// one value per row stays text, everything else is categorical. Missing
// numbers are left missing.
func InferPolicy(raw *engine.Table) dataset.Policy {
	var p dataset.Policy
	for _, c := range raw.Columns() {
		values := presentText(raw.ColumnValues(c.Name))
		switch detectType(values) {
		case typeNumeric:
			if hasDecimals(values) {
				p.Float = append(p.Float, c.Name)
			} else {
				p.Integer = append(p.Integer, c.Name)
			}
		default:
			if len(values) > 10 && uniqueCount(values) == len(values) {
				p.Text = append(p.Text, c.Name)
			}
		}
	}
	return p
}

// ============================================================================
// COLUMN ANALYSIS
// ============================================================================

type columnType int

const (
	typeString columnType = iota
	typeNumeric
	typeDate
	typeBool
)

type columnAnalysis struct {
	column      engine.Column
	values      []engine.Value
	colType     columnType
	role        Role
	skipReason  string
	recoverable bool

	// Stats
	uniqueCount int
	totalCount  int
	nullCount   int
	sampleVals  []string

	isTemporal      bool
	temporalFormat  string
	hasDecimals     bool
	cardinalityHint string
	parent          string
}

// analyzeColumn inspects all values in a column and classifies it.
func analyzeColumn(c engine.Column, t *engine.Table) columnAnalysis {
	col := columnAnalysis{
		column:     c,
		values:     t.ColumnValues(c.Name),
		totalCount: t.Len(),
	}

	var text []string
	uniqueSet := make(map[string]bool)
	for _, v := range col.values {
		s := v.Text()
		if v.IsMissing() || isNullText(s) {
			col.nullCount++
			continue
		}
		text = append(text, s)
		uniqueSet[s] = true
	}
	col.uniqueCount = len(uniqueSet)

	if len(text) == 0 {
		col.role = RoleSkipped
		col.skipReason = "all values are empty"
		return col
	}

	col.sampleVals = collectSamples(uniqueSet, 10)

	switch {
	case c.Kind.Numeric():
		col.colType = typeNumeric
		col.hasDecimals = c.Kind == engine.KindFloat && hasDecimals(text)
	case c.Kind == engine.KindString:
		// raw text: detect what it holds
		col.colType = detectType(text)
		col.hasDecimals = col.colType == typeNumeric && hasDecimals(text)
	default:
		col.colType = typeString
	}

	if col.colType != typeDate {
		col.isTemporal, col.temporalFormat = detectTemporalPattern(col.sampleVals)
		if col.isTemporal && isYearName(c.Name) {
			col.temporalFormat = "yyyy"
		}
	} else {
		col.isTemporal = true
	}

	col.classifyRole()

	switch {
	case col.uniqueCount <= 10:
		col.cardinalityHint = "low"
	case col.uniqueCount <= 100:
		col.cardinalityHint = "medium"
	default:
		col.cardinalityHint = "high"
	}
	return col
}

// classifyRole determines dimension vs measure vs skip.
func (col *columnAnalysis) classifyRole() {
	totalRows := col.totalCount
	switch col.colType {

	case typeNumeric:
		if col.uniqueCount == totalRows && totalRows > 10 && !col.hasDecimals {
			// Every value unique → likely an ID or a rank
			col.role = RoleSkipped
			col.skipReason = "unique per row, likely an ID column"
			return
		}
		if col.isTemporal {
			col.role = RoleDimension
			return
		}
		if col.hasDecimals {
			col.role = RoleMeasure
			return
		}
		// Few unique values at a low ratio → coded dimension
		uniqueRatio := float64(col.uniqueCount) / float64(totalRows)
		if col.uniqueCount < 20 && uniqueRatio < 0.3 {
			col.role = RoleDimension
			return
		}
		col.role = RoleMeasure

	case typeDate, typeBool:
		col.role = RoleDimension

	case typeString:
		if col.uniqueCount == totalRows && totalRows > 10 {
			col.role = RoleSkipped
			col.skipReason = "unique per row, likely an identifier"
			return
		}
		if col.uniqueCount > totalRows/2 && col.uniqueCount > 50 {
			col.role = RoleSkipped
			col.skipReason = fmt.Sprintf("high cardinality (%d distinct values), not useful for grouping", col.uniqueCount)
			col.recoverable = true
			return
		}
		col.role = RoleDimension
	}
}

func (col columnAnalysis) profile() ColumnProfile {
	return ColumnProfile{
		Name:            col.column.Name,
		DisplayName:     engine.LabelForColumn(col.column.Name),
		Kind:            col.column.Kind,
		Role:            col.role,
		Unique:          col.uniqueCount,
		Missing:         col.nullCount,
		SampleValues:    col.sampleVals,
		CardinalityHint: col.cardinalityHint,
		IsTemporal:      col.isTemporal,
		TemporalFormat:  col.temporalFormat,
		Parent:          col.parent,
	}
}

// ============================================================================
// TYPE DETECTION
// ============================================================================

// detectType inspects values to determine column type.
// Requires 80%+ of non-null values to match for numeric/date/bool.
func detectType(values []string) columnType {
	if len(values) == 0 {
		return typeString
	}

	numCount := 0
	dateCount := 0
	boolCount := 0
	for _, v := range values {
		if isNumeric(v) {
			numCount++
		}
		if isDate(v) {
			dateCount++
		}
		if isBool(v) {
			boolCount++
		}
	}

	threshold := max(int(float64(len(values))*0.8), 1)

	if boolCount >= threshold && !allDigits(values) {
		return typeBool
	}
	if numCount >= threshold {
		return typeNumeric
	}
	if dateCount >= threshold {
		return typeDate
	}
	return typeString
}

func isNumeric(s string) bool {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "-")
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func allDigits(values []string) bool {
	for _, v := range values {
		if _, err := strconv.Atoi(v); err != nil {
			return false
		}
	}
	return true
}

var dateFormats = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"02/01/2006",
	"Jan-2006",
	"January 2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

func isDate(s string) bool {
	s = strings.TrimSpace(s)
	for _, layout := range dateFormats {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

func isBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "false" || s == "yes" || s == "no" || s == "si" || s == "sí"
}

func isNullText(s string) bool {
	switch s {
	case "", "null", "NULL", "N/A", "n/a", "NaN", "nan":
		return true
	}
	return false
}

func hasDecimals(values []string) bool {
	for _, v := range values {
		if strings.Contains(v, ".") {
			return true
		}
	}
	return false
}

func isYearName(name string) bool {
	n := strings.ToLower(name)
	return n == "year" || n == "año" || n == "anio"
}

// ============================================================================
// SPECIAL PATTERN DETECTION
// ============================================================================

var monthPatterns = []struct {
	re     *regexp.Regexp
	format string
}{
	{regexp.MustCompile(`^[A-Z][a-z]{2}-\d{4}$`), "MMM-yyyy"}, // Jan-2026
	{regexp.MustCompile(`^\d{4}-\d{2}$`), "yyyy-MM"},          // 2026-01
	{regexp.MustCompile(`^Q[1-4]-\d{4}$`), "QN-yyyy"},         // Q1-2026
	{regexp.MustCompile(`^Q[1-4]\s+\d{4}$`), "QN yyyy"},       // Q1 2026
	{regexp.MustCompile(`^(19|20)\d{2}$`), "yyyy"},            // 2026
	{regexp.MustCompile(`^[A-Z][a-z]+ \d{4}$`), "MMMM yyyy"},  // January 2026
}

// detectTemporalPattern checks if values match known year/month/quarter
// patterns.
func detectTemporalPattern(samples []string) (bool, string) {
	if len(samples) == 0 {
		return false, ""
	}
	for _, pattern := range monthPatterns {
		matches := 0
		for _, s := range samples {
			if pattern.re.MatchString(strings.TrimSpace(s)) {
				matches++
			}
		}
		if float64(matches)/float64(len(samples)) >= 0.8 {
			return true, pattern.format
		}
	}
	return false, ""
}

// ============================================================================
// HIERARCHY DETECTION
// ============================================================================

// detectHierarchies finds parent/child relationships between dimensions.
// If every value of dimension B maps to exactly one value of dimension A,
// and A has fewer unique values, then A is parent of B. When several
// parents qualify, the closest (highest cardinality) wins.
func detectHierarchies(cols []columnAnalysis, t *engine.Table) {
	for i := range cols {
		child := &cols[i]
		if child.role != RoleDimension {
			continue
		}
		bestParent := ""
		bestParentUniques := 0

		for j := range cols {
			parent := cols[j]
			if i == j || parent.role != RoleDimension {
				continue
			}
			if parent.uniqueCount >= child.uniqueCount {
				continue
			}

			childToParent := make(map[string]string)
			isHierarchy := true
			for r := 0; r < t.Len(); r++ {
				cv, pv := child.values[r], parent.values[r]
				if cv.IsMissing() || pv.IsMissing() {
					continue
				}
				c, p := cv.Text(), pv.Text()
				if existing, ok := childToParent[c]; ok {
					if existing != p {
						isHierarchy = false
						break
					}
				} else {
					childToParent[c] = p
				}
			}

			if isHierarchy && len(childToParent) > 1 && parent.uniqueCount > bestParentUniques {
				bestParent = parent.column.Name
				bestParentUniques = parent.uniqueCount
			}
		}
		child.parent = bestParent
	}
}

// ============================================================================
// STRING UTILITIES
// ============================================================================

// collectSamples picks up to maxSamples values, sorted for deterministic
// output.
func collectSamples(uniqueSet map[string]bool, maxSamples int) []string {
	samples := make([]string, 0, len(uniqueSet))
	for v := range uniqueSet {
		samples = append(samples, v)
	}
	sort.Strings(samples)
	if len(samples) > maxSamples {
		samples = samples[:maxSamples]
	}
	return samples
}

func presentText(vals []engine.Value) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if s := v.Text(); !v.IsMissing() && !isNullText(s) {
			out = append(out, s)
		}
	}
	return out
}

func uniqueCount(values []string) int {
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		seen[v] = true
	}
	return len(seen)
}
