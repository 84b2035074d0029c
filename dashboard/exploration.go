package dashboard

import (
	"context"
	"fmt"

	"github.com/cesde-ntp/tablero/dataset"
	"github.com/cesde-ntp/tablero/engine"
	"github.com/cesde-ntp/tablero/schema"
	"github.com/cesde-ntp/tablero/session"
)

// ============================================================================
// EXPLORATION PAGE — dataset overview plus toggled filter views
// ============================================================================

// Toggle and selection keys on the exploration page.
const (
	TogglePlatformFilter = "platform_filter"
	SelectPlatform       = "plataforma"
)

// filterView is one toggled view of the sales table.
type filterView struct {
	Key    string
	Label  string
	Filter engine.Filter
	Mask   bool // blank matching rows instead of keeping them
}

var filterViews = []filterView{
	{Key: "mostrar_global_20m", Label: "Juegos con ventas globales > 20M",
		Filter: engine.GreaterThan(dataset.ColSalesAll, 20)},
	{Key: "mostrar_nintendo_wii", Label: "Juegos de Nintendo en Wii",
		Filter: engine.And(engine.Equals(dataset.ColEditor, "Nintendo"), engine.Equals(dataset.ColPlatform, "Wii"))},
	{Key: "mostrar_nintendo_sony", Label: "Juegos publicados por Nintendo o Sony",
		Filter: engine.Or(engine.Equals(dataset.ColEditor, "Nintendo"), engine.Equals(dataset.ColEditor, "Sony Computer Entertainment"))},
	{Key: "mostrar_accion_x360", Label: "Juegos de acción en Xbox 360",
		Filter: engine.And(engine.Equals(dataset.ColGenre, "Action"), engine.Equals(dataset.ColPlatform, "X360"))},
	{Key: "mostrar_modernas", Label: "Juegos en plataformas modernas (PS4, XOne, PC)",
		Filter: engine.InSet(dataset.ColPlatform, "PS4", "XOne", "PC")},
	{Key: "mostrar_jp_1m", Label: "Juegos con >1M ventas en Japón",
		Filter: engine.GreaterThan(dataset.ColSalesJP, 1)},
	{Key: "mostrar_global_5m_ocultar", Label: "Ocultar juegos con <5M en ventas globales",
		Filter: engine.LessThan(dataset.ColSalesAll, 5), Mask: true},
	{Key: "mostrar_anio_2010", Label: "Juegos lanzados desde 2010",
		Filter: engine.AtLeast(dataset.ColYear, 2010)},
	{Key: "mostrar_no_deportes_carreras", Label: "Juegos que NO son de deportes ni carreras",
		Filter: engine.Not(engine.InSet(dataset.ColGenre, "Sports", "Racing"))},
	{Key: "mostrar_nintendo_na_2m", Label: "Juegos de Nintendo con >2M ventas en Norteamerica (NA)",
		Filter: engine.And(engine.Equals(dataset.ColEditor, "Nintendo"), engine.GreaterThan(dataset.ColSalesNA, 2))},
}

// ExplorationToggles lists every toggle key the page accepts.
func ExplorationToggles() []string {
	keys := []string{TogglePlatformFilter}
	for _, v := range filterViews {
		keys = append(keys, v.Key)
	}
	return keys
}

// ExplorationPage is the sales dataset overview.
type ExplorationPage struct {
	sales   SalesSource
	maxRows int
}

// NewExploration builds the page. Filter views render at most maxRows rows;
// zero renders all.
func NewExploration(sales SalesSource, maxRows int) *ExplorationPage {
	return &ExplorationPage{sales: sales, maxRows: maxRows}
}

func (p *ExplorationPage) Name() string  { return "exploracion" }
func (p *ExplorationPage) Title() string { return "Proyecto integrador" }

func (p *ExplorationPage) Render(_ context.Context, st *session.State) *Render {
	t, err := p.sales()
	if err != nil {
		return dataFailure(p.Name(), p.Title(), err)
	}
	r := &Render{Page: p.Name(), Title: p.Title()}
	r.Sections = append(r.Sections, p.overview(t)...)
	r.Controls, r.Sections = p.filters(t, st, r.Sections)
	return r
}

func (p *ExplorationPage) overview(t *engine.Table) []Section {
	rows, cols := t.Shape()
	profile := schema.Discover(t, schema.DiscoverOptions{Name: "vgsales"})

	topSellers := engine.TopN(engine.Select(t, dataset.ColName, dataset.ColSalesAll), dataset.ColSalesAll, 3)
	years := engine.Tail(engine.SortBy(engine.ValueCounts(t, dataset.ColYear), dataset.ColYear, false), 10)

	var out []Section
	out = append(out,
		TableSection("Vista previa del dataset", engine.Head(t, 20)),
		TextSection("Dimensiones del dataset (filas, columnas)", fmt.Sprintf("(%d, %d)", rows, cols)),
		ListSection("Nombres de las columnas", t.Names()),
		TableSection("Tipos de datos por columna", profile.Table()),
		TableSection("Primeros registros", engine.Head(t, 5)),
		TableSection("Últimos registros", engine.Tail(t, 5)),
		MetricSection(engine.BuildCountText("Cantidad total de juegos registrados", t)),
		TableSection("Juegos más vendidos globalmente", topSellers),
		ListSection("Consolas (plataformas) disponibles sin repetir", engine.UniqueStrings(t, dataset.ColPlatform)),
		TableSection("Cantidad de juegos por plataforma", engine.ValueCounts(t, dataset.ColPlatform)),
		ListSection("Géneros disponibles sin repetir", engine.UniqueStrings(t, dataset.ColGenre)),
		TableSection("Cantidad de juegos por género", engine.ValueCounts(t, dataset.ColGenre)),
		TableSection("Editoriales (publishers) más comunes", engine.Head(engine.ValueCounts(t, dataset.ColEditor), 10)),
		TableSection("Años con más lanzamientos", years),
	)
	yr := engine.BuildRangeText("Año mínimo y máximo de lanzamiento", t, dataset.ColYear)
	out = append(out, TextSection(yr.Label, yr.Value))

	for _, by := range []struct{ title, col string }{
		{"Ventas globales promedio por género", dataset.ColGenre},
		{"Ventas globales promedio por plataforma", dataset.ColPlatform},
	} {
		mean, err := engine.Aggregate(t, engine.AggregationSpec{
			GroupBy: []string{by.col}, Target: dataset.ColSalesAll, Reducer: engine.ReduceMean,
		})
		if err != nil {
			out = append(out, Notice(LevelError, err.Error()))
			continue
		}
		out = append(out, TableSection(by.title, engine.SortBy(mean, dataset.ColSalesAll, true)))
	}
	return out
}

func (p *ExplorationPage) filters(t *engine.Table, st *session.State, sections []Section) ([]Control, []Section) {
	var controls []Control
	opts := []engine.TableOption{}
	if p.maxRows > 0 {
		opts = append(opts, engine.WithRowLimit(p.maxRows))
	}

	platformOn := st.Toggles.Peek(TogglePlatformFilter)
	controls = append(controls, Control{Kind: ControlToggle, Key: TogglePlatformFilter, Label: "Filtrar por plataforma", On: platformOn})
	if platformOn {
		platforms := engine.UniqueStrings(t, dataset.ColPlatform)
		selected := p.platform(st, platforms)
		controls = append(controls, Control{
			Kind: ControlSelect, Key: SelectPlatform, Label: "Filtrar por plataforma",
			Options: platforms, Selected: []string{selected},
		})
		filtered := engine.Apply(t, engine.Equals(dataset.ColPlatform, selected))
		s := TableSection("Juegos para la plataforma: "+selected, filtered, opts...)
		s.Gate = TogglePlatformFilter
		sections = append(sections, s)
	}

	for _, v := range filterViews {
		on := st.Toggles.Peek(v.Key)
		controls = append(controls, Control{Kind: ControlToggle, Key: v.Key, Label: v.Label, On: on})
		if !on {
			continue
		}
		var view *engine.Table
		if v.Mask {
			view = engine.Mask(t, v.Filter)
		} else {
			view = engine.Apply(t, v.Filter)
		}
		s := TableSection(v.Label, view, opts...)
		s.Gate = v.Key
		sections = append(sections, s)
	}
	return controls, sections
}

func (p *ExplorationPage) platform(st *session.State, platforms []string) string {
	def := ""
	if len(platforms) > 0 {
		def = platforms[0]
	}
	sel := st.First(SelectPlatform, def)
	if !contains(platforms, sel) {
		return def
	}
	return sel
}

func (p *ExplorationPage) Act(ctx context.Context, st *session.State, a Action) (*Render, error) {
	switch a.Type {
	case ActionToggle:
		if !contains(ExplorationToggles(), a.Key) {
			return nil, invalid("unknown toggle %q", a.Key)
		}
		st.Toggles.Toggle(a.Key)
	case ActionSelect:
		if a.Key != SelectPlatform || len(a.Values) != 1 {
			return nil, invalid("select wants key %q and one value", SelectPlatform)
		}
		t, err := p.sales()
		if err != nil {
			return dataFailure(p.Name(), p.Title(), err), nil
		}
		if !contains(engine.UniqueStrings(t, dataset.ColPlatform), a.Values[0]) {
			return nil, invalid("unknown platform %q", a.Values[0])
		}
		st.Select(SelectPlatform, a.Values[0])
	default:
		return nil, invalid("page %s has no action %q", p.Name(), a.Type)
	}
	return p.Render(ctx, st), nil
}
