package dashboard

import (
	"github.com/cesde-ntp/tablero/engine"
)

// ============================================================================
// RENDER INSTRUCTIONS — What a surface draws for one page
// ============================================================================
// A Render is a list of sections plus the controls the user can act on.
// Sections carry data that is already shaped (TableData, ChartConfig,
// TextData); surfaces only lay them out.
// ============================================================================

// Kind is the drawable type of a section.
type Kind string

const (
	KindTable    Kind = "table"
	KindBar      Kind = engine.ChartBar
	KindHBar     Kind = engine.ChartHBar
	KindLine     Kind = engine.ChartLine
	KindPie      Kind = engine.ChartPie
	KindHeatmap  Kind = engine.ChartHeatmap
	KindScatter  Kind = engine.ChartScatter
	KindSunburst Kind = engine.ChartSunburst
	KindMetric   Kind = "metric"
	KindText     Kind = "text"
	KindList     Kind = "list"
	KindNotice   Kind = "notice"
)

// IsChart reports whether sections of this kind carry a ChartConfig.
func (k Kind) IsChart() bool {
	switch k {
	case KindBar, KindHBar, KindLine, KindPie, KindHeatmap, KindScatter, KindSunburst:
		return true
	}
	return false
}

// Level grades a notice.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Render is the full output for one page.
type Render struct {
	Page     string    `json:"page"`
	Title    string    `json:"title"`
	Controls []Control `json:"controls,omitempty"`
	Sections []Section `json:"sections"`
}

// Section is one drawable block.
type Section struct {
	Kind   Kind                `json:"kind"`
	Title  string              `json:"title,omitempty"`
	Tab    string              `json:"tab,omitempty"`
	Gate   string              `json:"gate,omitempty"` // toggle that revealed it
	Level  Level               `json:"level,omitempty"`
	Text   string              `json:"text,omitempty"`
	Items  []string            `json:"items,omitempty"`
	Image  string              `json:"image,omitempty"`
	Table  *engine.TableData   `json:"table,omitempty"`
	Chart  *engine.ChartConfig `json:"chart,omitempty"`
	Metric *engine.TextData    `json:"metric,omitempty"`
}

// ControlKind is the widget type of a control.
type ControlKind string

const (
	ControlToggle      ControlKind = "toggle"
	ControlSelect      ControlKind = "select"
	ControlMultiSelect ControlKind = "multiselect"
	ControlInput       ControlKind = "input"
	ControlButton      ControlKind = "button"
)

// Control is one input the user can act on. Its Key is what an Action
// names.
type Control struct {
	Kind     ControlKind `json:"kind"`
	Key      string      `json:"key"`
	Label    string      `json:"label"`
	Tab      string      `json:"tab,omitempty"`
	Options  []string    `json:"options,omitempty"`
	Selected []string    `json:"selected,omitempty"`
	On       bool        `json:"on,omitempty"`
}

// ============================================================================
// SECTION CONSTRUCTORS
// ============================================================================

// TableSection renders t as a table.
func TableSection(title string, t *engine.Table, opts ...engine.TableOption) Section {
	return Section{Kind: KindTable, Title: title, Table: engine.BuildTable(title, t, opts...)}
}

// ChartSection binds spec to t. An empty table yields a chart section with
// no config, which surfaces draw as an empty view.
func ChartSection(spec engine.ChartSpec, t *engine.Table) Section {
	kind := Kind(spec.Type)
	if kind == "" {
		kind = KindBar
	}
	return Section{Kind: kind, Title: spec.Title, Chart: engine.BuildChart(spec, t)}
}

// MetricSection shows a single value.
func MetricSection(m *engine.TextData) Section {
	return Section{Kind: KindMetric, Title: m.Label, Metric: m}
}

// TextSection shows a paragraph.
func TextSection(title, text string) Section {
	return Section{Kind: KindText, Title: title, Text: text}
}

// ListSection shows a bullet list.
func ListSection(title string, items []string) Section {
	return Section{Kind: KindList, Title: title, Items: items}
}

// Notice shows a message at a level.
func Notice(level Level, text string) Section {
	return Section{Kind: KindNotice, Level: level, Text: text}
}

func inTab(tab string, sections ...Section) []Section {
	for i := range sections {
		sections[i].Tab = tab
	}
	return sections
}
