package render

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/fatih/color"

	"github.com/cesde-ntp/tablero/dashboard"
	"github.com/cesde-ntp/tablero/engine"
)

// Shared color printers.
var (
	colorRed    = color.New(color.FgRed)
	colorYellow = color.New(color.FgYellow)
	colorGreen  = color.New(color.FgGreen)
	colorCyan   = color.New(color.FgCyan)
	colorBold   = color.New(color.Bold)
)

// barWidth is the longest bar drawn for a chart value.
const barWidth = 40

// SetColor turns ANSI color on or off for every printer.
func SetColor(on bool) {
	color.NoColor = !on
}

// Page writes a full render: title, controls, then sections grouped by tab.
func Page(w io.Writer, r *dashboard.Render) error {
	p := &printer{w: w}
	p.printf("%s\n\n", colorBold.Sprint(strings.ToUpper(r.Title)))
	if len(r.Controls) > 0 {
		p.controls(r.Controls)
	}
	tab := ""
	for _, s := range r.Sections {
		if s.Tab != tab && s.Tab != "" {
			tab = s.Tab
			p.printf("%s\n\n", colorCyan.Sprintf("== %s ==", tab))
		}
		p.section(s)
	}
	return p.err
}

// TableData writes one table.
func TableData(w io.Writer, d *engine.TableData) error {
	cols := make([]Column, len(d.Columns))
	for i, c := range d.Columns {
		cols[i] = Column{Header: c.Label}
		if c.Align == "right" {
			cols[i].Align = AlignRight
		}
	}
	t := NewTable(cols...)
	for _, row := range d.Rows {
		t.AddRow(row...)
	}
	if err := t.Render(w); err != nil {
		return err
	}
	if d.Summary != nil {
		var parts []string
		for _, c := range d.Columns {
			if v, ok := d.Summary.Values[c.Key]; ok {
				parts = append(parts, fmt.Sprintf("%s=%s", c.Label, v))
			}
		}
		if _, err := fmt.Fprintf(w, "  %s: %s\n", d.Summary.Label, strings.Join(parts, ", ")); err != nil {
			return fmt.Errorf("render table: %w", err)
		}
	}
	return nil
}

// printer keeps the first write error and skips later writes.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) controls(cs []dashboard.Control) {
	for _, c := range cs {
		switch c.Kind {
		case dashboard.ControlToggle:
			state := "off"
			if c.On {
				state = colorGreen.Sprint("on")
			}
			p.printf("  [%s] %s (%s)\n", state, c.Label, c.Key)
		case dashboard.ControlButton:
			p.printf("  <%s> (%s)\n", c.Label, c.Key)
		default:
			p.printf("  %s %s = %s\n", c.Label, colorCyan.Sprintf("(%s)", c.Key), strings.Join(c.Selected, ", "))
		}
	}
	p.printf("\n")
}

func (p *printer) section(s dashboard.Section) {
	if s.Title != "" && s.Kind != dashboard.KindMetric {
		p.printf("%s\n", colorBold.Sprint(s.Title))
	}
	switch {
	case s.Kind == dashboard.KindNotice:
		p.notice(s)
	case s.Kind == dashboard.KindTable:
		if p.err == nil && s.Table != nil {
			p.err = TableData(p.w, s.Table)
		}
	case s.Kind == dashboard.KindMetric:
		if s.Metric != nil {
			p.printf("%s: %s\n", s.Metric.Label, colorBold.Sprint(s.Metric.Value))
		}
	case s.Kind == dashboard.KindList:
		for _, it := range s.Items {
			p.printf("  - %s\n", it)
		}
	case s.Kind == dashboard.KindText:
		p.printf("%s\n", s.Text)
		if s.Image != "" {
			p.printf("  %s\n", s.Image)
		}
	case s.Kind.IsChart():
		p.chart(s.Chart)
	}
	p.printf("\n")
}

func (p *printer) notice(s dashboard.Section) {
	switch s.Level {
	case dashboard.LevelError:
		p.printf("%s %s\n", colorRed.Sprint("error:"), s.Text)
	case dashboard.LevelWarning:
		p.printf("%s %s\n", colorYellow.Sprint("aviso:"), s.Text)
	case dashboard.LevelSuccess:
		p.printf("%s %s\n", colorGreen.Sprint("ok:"), s.Text)
	default:
		p.printf("%s\n", s.Text)
	}
}

// chart draws series as labelled horizontal bars; heatmaps print as a grid.
func (p *printer) chart(c *engine.ChartConfig) {
	if c == nil {
		p.printf("  (sin datos)\n")
		return
	}
	if c.Heatmap != nil {
		p.heatmap(c.Heatmap)
		return
	}

	hi := 0.0
	labelWidth := 0
	for _, s := range c.Series {
		for _, pt := range s.Data {
			hi = math.Max(hi, math.Abs(pt.Value))
			labelWidth = max(labelWidth, len([]rune(pointLabel(pt))))
		}
	}
	for _, s := range c.Series {
		if len(c.Series) > 1 {
			p.printf("  %s\n", colorCyan.Sprint(s.Name))
		}
		for _, pt := range s.Data {
			n := 0
			if hi > 0 {
				n = int(math.Round(math.Abs(pt.Value) / hi * barWidth))
			}
			p.printf("  %s %s %s\n", pad(pointLabel(pt), labelWidth, AlignLeft),
				strings.Repeat("█", n), engine.FormatAmount(pt.Value, ""))
		}
	}
}

func pointLabel(pt engine.ChartPoint) string {
	switch {
	case pt.X != nil:
		return fmt.Sprintf("(%s)", engine.FormatAmount(*pt.X, ""))
	case pt.Parent != "":
		return pt.Parent + " / " + pt.Label
	}
	return pt.Label
}

func (p *printer) heatmap(h *engine.Heatmap) {
	cols := []Column{{Header: ""}}
	for _, x := range h.X {
		cols = append(cols, Column{Header: x, Align: AlignRight})
	}
	t := NewTable(cols...)
	for i, y := range h.Y {
		row := []string{y}
		for _, z := range h.Z[i] {
			row = append(row, engine.FormatAmount(z, ""))
		}
		t.AddRow(row...)
	}
	if p.err == nil {
		p.err = t.Render(p.w)
	}
}
