package dashboard

import (
	"context"
	"fmt"
	"strings"

	"github.com/cesde-ntp/tablero/dataset"
	"github.com/cesde-ntp/tablero/engine"
	"github.com/cesde-ntp/tablero/session"
)

// ============================================================================
// CHARTS PAGE — six tabs of chart instructions over the sales table
// ============================================================================

// Tabs, in display order.
const (
	TabOverview  = "Vista General"
	TabRegional  = "Análisis Regional"
	TabYearly    = "Tendencias Anuales"
	TabGenre     = "Exploración por Género"
	TabPublisher = "Análisis de Editores"
	TabCompare   = "Comparaciones Avanzadas"
)

// Selection keys on the charts page.
const (
	SelectRegionalGenre = "genero_regional"
	SelectYearlyGenre   = "genero_anual"
	SelectDetailGenre   = "genero_detalle"
	SelectPublishers    = "editores"
	SelectPlatforms     = "plataformas"
	SelectRegion1       = "region1"
	SelectRegion2       = "region2"
)

// DefaultPlatforms are compared until the user picks others.
var DefaultPlatforms = []string{"PS2", "X360", "Wii"}

// ChartsPage renders the "Gráficos" tabs.
type ChartsPage struct {
	sales SalesSource
}

// NewCharts builds the page.
func NewCharts(sales SalesSource) *ChartsPage {
	return &ChartsPage{sales: sales}
}

func (p *ChartsPage) Name() string  { return "graficos" }
func (p *ChartsPage) Title() string { return "Gráficos" }

// chartOptions holds the choices offered by each selection control.
type chartOptions struct {
	genres       []string // row order
	sortedGenres []string
	publishers   []string // top 20 by global sales
	platforms    []string
}

func newChartOptions(t *engine.Table) chartOptions {
	o := chartOptions{
		genres:       firstSeen(t, dataset.ColGenre),
		sortedGenres: engine.UniqueStrings(t, dataset.ColGenre),
		platforms:    engine.UniqueStrings(t, dataset.ColPlatform),
	}
	if top, err := engine.Aggregate(t, engine.AggregationSpec{
		GroupBy: []string{dataset.ColEditor}, Target: dataset.ColSalesAll, Reducer: engine.ReduceSum, TopN: 20,
	}); err == nil {
		o.publishers = columnText(top, dataset.ColEditor)
	}
	return o
}

// choices returns the options and default selection for a key.
func (o chartOptions) choices(key string) (opts, def []string, multi bool) {
	first := func(xs []string) []string {
		if len(xs) == 0 {
			return nil
		}
		return xs[:1]
	}
	switch key {
	case SelectRegionalGenre, SelectYearlyGenre:
		return o.genres, first(o.genres), false
	case SelectDetailGenre:
		return o.sortedGenres, first(o.sortedGenres), false
	case SelectPublishers:
		return o.publishers, o.publishers[:min(5, len(o.publishers))], true
	case SelectPlatforms:
		var def []string
		for _, p := range DefaultPlatforms {
			if contains(o.platforms, p) {
				def = append(def, p)
			}
		}
		return o.platforms, def, true
	case SelectRegion1, SelectRegion2:
		return dataset.RegionalSales, dataset.RegionalSales[:1], false
	}
	return nil, nil, false
}

// selected reads a selection, falling back to the default.
func (o chartOptions) selected(st *session.State, key string) []string {
	_, def, _ := o.choices(key)
	if v, ok := st.Selection(key); ok {
		return v
	}
	return def
}

func (o chartOptions) one(st *session.State, key string) string {
	v := o.selected(st, key)
	if len(v) == 0 {
		return ""
	}
	return v[0]
}

func (p *ChartsPage) Render(_ context.Context, st *session.State) *Render {
	t, err := p.sales()
	if err != nil {
		return dataFailure(p.Name(), p.Title(), err)
	}
	o := newChartOptions(t)
	r := &Render{Page: p.Name(), Title: p.Title()}
	r.Sections = append(r.Sections, TableSection("Vista previa del dataset", engine.Head(t, 20)))

	for _, tab := range []struct {
		name  string
		build func(*engine.Table, chartOptions, *session.State) []Section
	}{
		{TabOverview, overviewTab},
		{TabRegional, regionalTab},
		{TabYearly, yearlyTab},
		{TabGenre, genreTab},
		{TabPublisher, publisherTab},
		{TabCompare, compareTab},
	} {
		r.Sections = append(r.Sections, inTab(tab.name, tab.build(t, o, st)...)...)
	}

	for _, c := range []struct{ key, label, tab string }{
		{SelectRegionalGenre, "Selecciona un Género:", TabRegional},
		{SelectYearlyGenre, "Selecciona un Género:", TabYearly},
		{SelectDetailGenre, "Selecciona un Género para analizar:", TabGenre},
		{SelectPublishers, "Selecciona Editores para comparar:", TabPublisher},
		{SelectPlatforms, "Selecciona Plataformas:", TabCompare},
		{SelectRegion1, "Selecciona Región 1:", TabCompare},
		{SelectRegion2, "Selecciona Región 2:", TabCompare},
	} {
		opts, _, multi := o.choices(c.key)
		kind := ControlSelect
		if multi {
			kind = ControlMultiSelect
		}
		r.Controls = append(r.Controls, Control{
			Kind: kind, Key: c.key, Label: c.label, Tab: c.tab,
			Options: opts, Selected: o.selected(st, c.key),
		})
	}
	return r
}

// sumBy totals column per group, optionally keeping the top n.
func sumBy(t *engine.Table, group, column string, topN int) *engine.Table {
	out, err := engine.Aggregate(t, engine.AggregationSpec{
		GroupBy: []string{group}, Target: column, Reducer: engine.ReduceSum, TopN: topN,
	})
	if err != nil {
		return engine.Head(t, 0)
	}
	return out
}

func overviewTab(t *engine.Table, _ chartOptions, _ *session.State) []Section {
	return []Section{
		ChartSection(engine.ChartSpec{
			Type: engine.ChartBar, Title: "Ventas Globales Totales por Género",
			X: dataset.ColGenre, Y: dataset.ColSalesAll, Color: dataset.ColGenre,
		}, sumBy(t, dataset.ColGenre, dataset.ColSalesAll, 0)),
		ChartSection(engine.ChartSpec{
			Type: engine.ChartBar, Title: "Top 10 Plataformas por Ventas Globales",
			X: dataset.ColPlatform, Y: dataset.ColSalesAll, Color: dataset.ColPlatform,
		}, sumBy(t, dataset.ColPlatform, dataset.ColSalesAll, 10)),
		ChartSection(engine.ChartSpec{
			Type: engine.ChartBar, Title: "Top 10 Juegos Más Vendidos (Global)",
			X: dataset.ColName, Y: dataset.ColSalesAll, Color: dataset.ColPlatform,
		}, engine.TopN(t, dataset.ColSalesAll, 10)),
		ChartSection(engine.ChartSpec{
			Type: engine.ChartSunburst, Title: "Distribución de Ventas por Género y Plataforma",
			Path: []string{dataset.ColGenre, dataset.ColPlatform}, Y: dataset.ColSalesAll,
		}, t),
	}
}

func regionalTab(t *engine.Table, o chartOptions, st *session.State) []Section {
	genre := o.one(st, SelectRegionalGenre)
	byGenre := engine.Apply(t, engine.Equals(dataset.ColGenre, genre))
	return []Section{
		ChartSection(engine.ChartSpec{
			Type: engine.ChartPie, Title: "Proporción de Ventas Globales por Región",
			X: "Región", Y: "Ventas",
		}, engine.SumColumns(t, dataset.RegionalSales, "Región", "Ventas")),
		ChartSection(engine.ChartSpec{
			Type: engine.ChartBar, Title: "Ventas por Género en Norteamérica",
			X: dataset.ColGenre, Y: dataset.ColSalesNA,
		}, sumBy(t, dataset.ColGenre, dataset.ColSalesNA, 0)),
		ChartSection(engine.ChartSpec{
			Type: engine.ChartBar, Title: "Ventas por Género en Japón",
			X: dataset.ColGenre, Y: dataset.ColSalesJP,
		}, sumBy(t, dataset.ColGenre, dataset.ColSalesJP, 0)),
		ChartSection(engine.ChartSpec{
			Type: engine.ChartBar, Title: "Ventas por Región para el Género: " + genre,
			X: "Región", Y: "Ventas",
		}, engine.SumColumns(byGenre, dataset.RegionalSales, "Región", "Ventas")),
	}
}

func yearlyTab(t *engine.Table, o chartOptions, st *session.State) []Section {
	genre := o.one(st, SelectYearlyGenre)
	yearly := engine.SortBy(sumBy(t, dataset.ColYear, dataset.ColSalesAll, 0), dataset.ColYear, false)
	releases, _ := engine.Aggregate(t, engine.AggregationSpec{
		GroupBy: []string{dataset.ColYear}, Reducer: engine.ReduceCount, As: "Cantidad",
	})
	genreYearly := engine.SortBy(
		sumBy(engine.Apply(t, engine.Equals(dataset.ColGenre, genre)), dataset.ColYear, dataset.ColSalesAll, 0),
		dataset.ColYear, false)

	sections := []Section{
		ChartSection(engine.ChartSpec{
			Type: engine.ChartLine, Title: "Tendencia de Ventas Globales a lo Largo del Tiempo",
			X: dataset.ColYear, Y: dataset.ColSalesAll, Markers: true,
		}, yearly),
		ChartSection(engine.ChartSpec{
			Type: engine.ChartBar, Title: "Número de Juegos Lanzados por Año",
			X: dataset.ColYear, Y: "Cantidad",
		}, engine.SortBy(releases, dataset.ColYear, false)),
		ChartSection(engine.ChartSpec{
			Type: engine.ChartLine, Title: fmt.Sprintf("Tendencia de Ventas Globales para %s por Año", genre),
			X: dataset.ColYear, Y: dataset.ColSalesAll, Markers: true,
		}, genreYearly),
	}

	topPlatforms := columnText(engine.Head(engine.ValueCounts(t, dataset.ColPlatform), 10), dataset.ColPlatform)
	grid, err := engine.Pivot(engine.Apply(t, engine.InStrings(dataset.ColPlatform, topPlatforms)),
		dataset.ColPlatform, dataset.ColYear, dataset.ColSalesAll)
	if err != nil {
		return append(sections, Notice(LevelError, err.Error()))
	}
	return append(sections, ChartSection(engine.ChartSpec{
		Type: engine.ChartHeatmap, Title: "Heatmap de Ventas por Plataforma y Año",
		X: dataset.ColYear, Y: dataset.ColPlatform,
	}, grid))
}

func genreTab(t *engine.Table, o chartOptions, st *session.State) []Section {
	genre := o.one(st, SelectDetailGenre)
	filtered := engine.Apply(t, engine.Equals(dataset.ColGenre, genre))

	sections := []Section{
		MetricSection(engine.BuildSumText("Ventas Globales Totales para "+genre, filtered, dataset.ColSalesAll, "millones $")),
		ChartSection(engine.ChartSpec{
			Type:   engine.ChartHBar,
			Title:  fmt.Sprintf("Ventas Globales por Plataforma para el Género: %s (Top 10 Plataformas)", genre),
			X:      dataset.ColPlatform,
			Y:      dataset.ColSalesAll,
			Color:  dataset.ColPlatform,
			YLabel: "Ventas Globales (millones)",
		}, sumBy(filtered, dataset.ColPlatform, dataset.ColSalesAll, 10)),
	}
	if filtered.Empty() {
		return append(sections, Notice(LevelWarning, "No hay datos de juegos disponibles para el género: "+genre+"."))
	}

	top := engine.Select(engine.TopN(filtered, dataset.ColSalesAll, 10),
		dataset.ColName, dataset.ColPlatform, dataset.ColYear, dataset.ColSalesAll)
	return append(sections,
		TableSection("Top 10 Juegos del Género: "+genre, top),
		ChartSection(engine.ChartSpec{
			Type:   engine.ChartHBar,
			Title:  "Top 10 Juegos Más Vendidos en el Género: " + genre,
			X:      dataset.ColName,
			Y:      dataset.ColSalesAll,
			Color:  dataset.ColPlatform,
			XLabel: "Nombre del Juego",
			YLabel: "Ventas Globales (millones)",
		}, top),
	)
}

func publisherTab(t *engine.Table, o chartOptions, st *session.State) []Section {
	picked := engine.Apply(t, engine.InStrings(dataset.ColEditor, o.selected(st, SelectPublishers)))
	return []Section{
		ChartSection(engine.ChartSpec{
			Type: engine.ChartBar, Title: "Top 10 Editores Globales",
			X: dataset.ColEditor, Y: dataset.ColSalesAll, Color: dataset.ColEditor,
		}, sumBy(t, dataset.ColEditor, dataset.ColSalesAll, 10)),
		ChartSection(engine.ChartSpec{
			Type: engine.ChartBar, Title: "Ventas Globales de Editores Seleccionados",
			X: dataset.ColEditor, Y: dataset.ColSalesAll,
		}, sumBy(picked, dataset.ColEditor, dataset.ColSalesAll, 0)),
	}
}

func compareTab(t *engine.Table, o chartOptions, st *session.State) []Section {
	var sections []Section

	picked := engine.Apply(t, engine.InStrings(dataset.ColPlatform, o.selected(st, SelectPlatforms)))
	long, err := engine.Melt(picked, dataset.ColPlatform, dataset.RegionalSales, "Región", "Ventas")
	if err == nil {
		var byRegion *engine.Table
		byRegion, err = engine.Aggregate(long, engine.AggregationSpec{
			GroupBy: []string{dataset.ColPlatform, "Región"}, Target: "Ventas", Reducer: engine.ReduceSum,
		})
		if err == nil {
			sections = append(sections, ChartSection(engine.ChartSpec{
				Type: engine.ChartBar, Title: "Ventas por Región y Plataforma Seleccionada",
				X: dataset.ColPlatform, Y: "Ventas", Color: "Región", Grouped: true,
			}, byRegion))
		}
	}
	if err != nil {
		sections = append(sections, Notice(LevelError, err.Error()))
	}

	r1, r2 := o.one(st, SelectRegion1), o.one(st, SelectRegion2)
	short1, short2 := strings.TrimPrefix(r1, "Ventas_"), strings.TrimPrefix(r2, "Ventas_")
	return append(sections, ChartSection(engine.ChartSpec{
		Type:   engine.ChartScatter,
		Title:  fmt.Sprintf("Comparativa de Ventas: %s vs %s", short1, short2),
		X:      r1,
		Y:      r2,
		Color:  dataset.ColGenre,
		XLabel: "Ventas " + short1,
		YLabel: "Ventas " + short2,
	}, t))
}

func (p *ChartsPage) Act(ctx context.Context, st *session.State, a Action) (*Render, error) {
	if a.Type != ActionSelect {
		return nil, invalid("page %s has no action %q", p.Name(), a.Type)
	}
	t, err := p.sales()
	if err != nil {
		return dataFailure(p.Name(), p.Title(), err), nil
	}
	opts, _, multi := newChartOptions(t).choices(a.Key)
	switch {
	case opts == nil:
		return nil, invalid("unknown selection %q", a.Key)
	case !multi && len(a.Values) != 1:
		return nil, invalid("selection %q takes exactly one value", a.Key)
	case !subset(opts, a.Values):
		return nil, invalid("selection %q: value not offered", a.Key)
	}
	st.Select(a.Key, a.Values...)
	return p.Render(ctx, st), nil
}
