package engine

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ============================================================================
// CHART BUILDER — Produces ChartConfig from a ChartSpec + derived Table
// ============================================================================
// The rendering surface owns layout; the builder only binds table columns
// to axes, series and colors.
// ============================================================================

// Default color palette for chart series.
var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// Chart types understood by the rendering surface.
const (
	ChartBar      = "bar"
	ChartHBar     = "hbar"
	ChartLine     = "line"
	ChartPie      = "pie"
	ChartScatter  = "scatter"
	ChartHeatmap  = "heatmap"
	ChartSunburst = "sunburst"
)

// ChartSpec binds table columns to a chart.
type ChartSpec struct {
	Type    string   `json:"type"`
	Title   string   `json:"title"`
	X       string   `json:"x,omitempty"`
	Y       string   `json:"y,omitempty"`
	Color   string   `json:"color,omitempty"`   // column whose values split series
	Path    []string `json:"path,omitempty"`    // sunburst hierarchy, outer first
	XLabel  string   `json:"xLabel,omitempty"`  // axis label override
	YLabel  string   `json:"yLabel,omitempty"`  // axis label override
	Grouped bool     `json:"grouped,omitempty"` // bars side by side instead of stacked
	Markers bool     `json:"markers,omitempty"` // line points visible
}

// ChartConfig defines how to render a chart.
type ChartConfig struct {
	ChartType  string        `json:"chartType"`
	Title      string        `json:"title"`
	XAxis      string        `json:"xAxis,omitempty"`
	YAxis      string        `json:"yAxis,omitempty"`
	Series     []ChartSeries `json:"series,omitempty"`
	Heatmap    *Heatmap      `json:"heatmap,omitempty"`
	Colors     []string      `json:"colors,omitempty"`
	ShowLegend bool          `json:"showLegend"`
	ShowGrid   bool          `json:"showGrid"`
	Grouped    bool          `json:"grouped,omitempty"`
	Markers    bool          `json:"markers,omitempty"`
}

// ChartSeries represents a data series in a chart.
type ChartSeries struct {
	Name  string       `json:"name"`
	Data  []ChartPoint `json:"data"`
	Color string       `json:"color,omitempty"`
}

// ChartPoint represents a single data point. X is set for scatter plots,
// Parent for sunburst nodes.
type ChartPoint struct {
	Label  string   `json:"label"`
	Value  float64  `json:"value"`
	X      *float64 `json:"x,omitempty"`
	Parent string   `json:"parent,omitempty"`
}

// Heatmap is a dense grid; Z[i][j] belongs to row Y[i] and column X[j].
type Heatmap struct {
	X []string    `json:"x"`
	Y []string    `json:"y"`
	Z [][]float64 `json:"z"`
}

// BuildChart produces a ChartConfig from a spec and a derived table. It
// returns nil when the table has nothing to draw.
func BuildChart(spec ChartSpec, t *Table) *ChartConfig {
	if t == nil || t.Empty() {
		return nil
	}

	chartType := spec.Type
	if chartType == "" {
		chartType = ChartBar
	}

	config := &ChartConfig{
		ChartType:  chartType,
		Title:      spec.Title,
		ShowLegend: true,
		ShowGrid:   chartType != ChartPie && chartType != ChartSunburst,
		Grouped:    spec.Grouped,
		Markers:    spec.Markers,
		XAxis:      firstNonEmpty(spec.XLabel, LabelForColumn(spec.X)),
		YAxis:      firstNonEmpty(spec.YLabel, LabelForColumn(spec.Y)),
	}

	switch chartType {
	case ChartHeatmap:
		config.Heatmap = buildHeatmap(t)
		config.ShowLegend = false
		return config
	case ChartSunburst:
		config.Series = buildSunburst(t, spec.Path, spec.Y)
	case ChartScatter:
		config.Series = buildScatter(t, spec)
	default:
		if spec.Color != "" && spec.Color != spec.X && t.Has(spec.Color) {
			config.Series = buildMultiSeries(t, spec)
		} else {
			config.Series = buildSingleSeries(t, spec)
		}
	}

	if len(config.Series) == 1 && spec.Color == spec.X && spec.Color != "" {
		// one color per bar
		config.Colors = assignColors(len(config.Series[0].Data))
	} else {
		config.Colors = assignColors(len(config.Series))
	}
	return config
}

// ============================================================================
// SERIES BUILDERS
// ============================================================================

func buildSingleSeries(t *Table, spec ChartSpec) []ChartSeries {
	name := spec.Title
	if name == "" {
		name = LabelForColumn(spec.Y)
	}

	points := make([]ChartPoint, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		y, _ := t.Value(i, spec.Y).Number()
		points = append(points, ChartPoint{
			Label: t.Value(i, spec.X).Text(),
			Value: RoundTo2(y),
		})
	}

	return []ChartSeries{{
		Name: name,
		Data: points,
	}}
}

// buildMultiSeries splits rows into one series per distinct Color value,
// in first-encountered order.
func buildMultiSeries(t *Table, spec ChartSpec) []ChartSeries {
	var order []string
	byName := make(map[string]*ChartSeries)
	for i := 0; i < t.Len(); i++ {
		name := t.Value(i, spec.Color).Text()
		s, ok := byName[name]
		if !ok {
			s = &ChartSeries{Name: name}
			byName[name] = s
			order = append(order, name)
		}
		y, _ := t.Value(i, spec.Y).Number()
		s.Data = append(s.Data, ChartPoint{
			Label: t.Value(i, spec.X).Text(),
			Value: RoundTo2(y),
		})
	}

	series := make([]ChartSeries, 0, len(order))
	for i, name := range order {
		s := *byName[name]
		s.Color = defaultColors[i%len(defaultColors)]
		series = append(series, s)
	}
	return series
}

func buildScatter(t *Table, spec ChartSpec) []ChartSeries {
	colorCol := spec.Color
	var order []string
	byName := make(map[string]*ChartSeries)
	for i := 0; i < t.Len(); i++ {
		x, okX := t.Value(i, spec.X).Number()
		y, okY := t.Value(i, spec.Y).Number()
		if !okX || !okY {
			continue
		}
		name := LabelForColumn(spec.Y)
		if colorCol != "" {
			name = t.Value(i, colorCol).Text()
		}
		s, ok := byName[name]
		if !ok {
			s = &ChartSeries{Name: name}
			byName[name] = s
			order = append(order, name)
		}
		xv := x
		s.Data = append(s.Data, ChartPoint{Label: name, X: &xv, Value: y})
	}
	series := make([]ChartSeries, 0, len(order))
	for i, name := range order {
		s := *byName[name]
		s.Color = defaultColors[i%len(defaultColors)]
		series = append(series, s)
	}
	return series
}

// buildSunburst sums value over the first two path levels. Inner nodes have
// no parent; outer nodes name their inner node as parent.
func buildSunburst(t *Table, path []string, value string) []ChartSeries {
	if len(path) == 0 {
		return nil
	}
	inner, err := Aggregate(t, AggregationSpec{GroupBy: path[:1], Target: value, Reducer: ReduceSum})
	if err != nil {
		return nil
	}
	var points []ChartPoint
	for i := 0; i < inner.Len(); i++ {
		v, _ := inner.Value(i, value).Number()
		points = append(points, ChartPoint{Label: inner.Value(i, path[0]).Text(), Value: RoundTo2(v)})
	}
	if len(path) > 1 {
		outer, err := Aggregate(t, AggregationSpec{GroupBy: path[:2], Target: value, Reducer: ReduceSum})
		if err == nil {
			for i := 0; i < outer.Len(); i++ {
				v, _ := outer.Value(i, value).Number()
				points = append(points, ChartPoint{
					Label:  outer.Value(i, path[1]).Text(),
					Parent: outer.Value(i, path[0]).Text(),
					Value:  RoundTo2(v),
				})
			}
		}
	}
	return []ChartSeries{{Name: LabelForColumn(value), Data: points}}
}

// buildHeatmap reads a pivoted table: first column holds row labels, the
// remaining columns are grid columns.
func buildHeatmap(t *Table) *Heatmap {
	cols := t.Columns()
	h := &Heatmap{}
	for _, c := range cols[1:] {
		h.X = append(h.X, c.Name)
	}
	for i := 0; i < t.Len(); i++ {
		h.Y = append(h.Y, t.Value(i, cols[0].Name).Text())
		row := make([]float64, 0, len(cols)-1)
		for _, c := range cols[1:] {
			x, _ := t.Value(i, c.Name).Number()
			row = append(row, RoundTo2(x))
		}
		h.Z = append(h.Z, row)
	}
	return h
}

func assignColors(count int) []string {
	colors := make([]string, count)
	for i := 0; i < count; i++ {
		colors[i] = defaultColors[i%len(defaultColors)]
	}
	return colors
}

// ============================================================================
// LABELS
// ============================================================================

// LabelForColumn turns a column name into an axis label:
// "Ventas_GLOBALES" → "Ventas Globales".
func LabelForColumn(name string) string {
	if name == "" {
		return ""
	}
	// Casers keep state; one per call.
	return cases.Title(language.Spanish).String(strings.ReplaceAll(name, "_", " "))
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
