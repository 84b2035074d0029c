package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cesde-ntp/tablero/copywriter"
	"github.com/cesde-ntp/tablero/dataset"
	"github.com/cesde-ntp/tablero/engine"
	"github.com/cesde-ntp/tablero/faults"
	"github.com/cesde-ntp/tablero/logging"
	"github.com/cesde-ntp/tablero/session"
	"github.com/cesde-ntp/tablero/weather"
)

const salesCSV = `Rank,Name,Platform,Year,Genre,Publisher,NA_Sales,EU_Sales,JP_Sales,Other_Sales,Global_Sales
1,Wii Sports,Wii,2006,Sports,Nintendo,41.49,29.02,3.77,8.46,82.74
2,Super Mario Bros.,NES,1985,Platform,Nintendo,29.08,3.58,6.81,0.77,40.24
3,Mario Kart Wii,Wii,2008,Racing,Nintendo,15.85,12.88,3.79,3.31,35.82
17,Grand Theft Auto V,PS3,2013,Action,Take-Two Interactive,7.01,9.27,0.97,4.14,21.4
24,Grand Theft Auto V,X360,2013,Action,Take-Two Interactive,9.63,5.31,0.06,1.38,16.38
29,Gran Turismo 3: A-Spec,PS2,2001,Racing,Sony Computer Entertainment,6.85,5.09,1.87,1.16,14.98
179,Madden NFL 2004,PS2,N/A,Sports,Electronic Arts,4.26,0.26,0.01,0.71,5.23
220,FIFA 16,PS4,2015,Sports,Electronic Arts,1.11,3.27,0.06,0.96,5.4
471,wwe Smackdown vs. Raw 2006,PS2,,Fighting,,1.57,1.02,0,0.41,3
`

func salesTable(t *testing.T) *engine.Table {
	t.Helper()
	raw, err := dataset.LoadReader(strings.NewReader(salesCSV))
	require.NoError(t, err)
	tbl, err := dataset.Normalize(raw, dataset.VGSalesPolicy())
	require.NoError(t, err)
	return tbl
}

func gated(r *Render) map[string]Section {
	out := make(map[string]Section)
	for _, s := range r.Sections {
		if s.Gate != "" {
			out[s.Gate] = s
		}
	}
	return out
}

func section(t *testing.T, r *Render, title string) Section {
	t.Helper()
	for _, s := range r.Sections {
		if s.Title == title {
			return s
		}
	}
	require.Failf(t, "section not found", "%q", title)
	return Section{}
}

func control(t *testing.T, r *Render, key string) Control {
	t.Helper()
	for _, c := range r.Controls {
		if c.Key == key {
			return c
		}
	}
	require.Failf(t, "control not found", "%q", key)
	return Control{}
}

var ctx = context.Background()

// ============================================================================
// DASHBOARD
// ============================================================================

func TestDashboard_Routing(t *testing.T) {
	d := New(logging.Discard(), NewStandings(), NewExploration(StaticSales(salesTable(t)), 0))
	assert.Equal(t, []PageInfo{
		{Name: "posiciones", Title: "Tabla de posiciones"},
		{Name: "exploracion", Title: "Proyecto integrador"},
	}, d.Pages())

	_, err := d.Render(ctx, "nope", session.NewState())
	assert.ErrorIs(t, err, ErrUnknownPage)
	_, err = d.Act(ctx, "nope", session.NewState(), Action{Type: ActionToggle})
	assert.ErrorIs(t, err, ErrUnknownPage)

	_, err = d.Act(ctx, "posiciones", session.NewState(), Action{Type: ActionToggle, Key: "x"})
	assert.ErrorIs(t, err, ErrInvalidAction)
}

func TestStandings(t *testing.T) {
	r := NewStandings().Render(ctx, session.NewState())
	require.Len(t, r.Sections, 1)
	tbl := r.Sections[0].Table
	require.NotNil(t, tbl)
	assert.Len(t, tbl.Rows, 5)
	assert.Equal(t, "Posición", tbl.Columns[0].Key)
	assert.Equal(t, []string{"1", "FC Barcelona", "10", "0", "0", "30"}, tbl.Rows[0])
}

func TestDataFailureRendersNoticeOnly(t *testing.T) {
	broken := func() (*engine.Table, error) {
		return nil, fmt.Errorf("open vgsales.csv: %w", faults.ErrDataUnavailable)
	}
	for _, p := range []Page{NewExploration(broken, 0), NewCharts(broken)} {
		r := p.Render(ctx, session.NewState())
		require.Len(t, r.Sections, 1, p.Name())
		assert.Equal(t, KindNotice, r.Sections[0].Kind)
		assert.Equal(t, LevelError, r.Sections[0].Level)
		assert.Empty(t, r.Controls)
	}
}

func TestLoadOnceSharesResult(t *testing.T) {
	src := LoadOnce("/no/such/vgsales.csv")
	_, err1 := src()
	_, err2 := src()
	assert.ErrorIs(t, err1, faults.ErrDataUnavailable)
	assert.True(t, err1 == err2, "the error is computed once")
}

// ============================================================================
// EXPLORATION
// ============================================================================

func TestExploration_Overview(t *testing.T) {
	r := NewExploration(StaticSales(salesTable(t)), 0).Render(ctx, session.NewState())

	assert.Equal(t, "(9, 11)", section(t, r, "Dimensiones del dataset (filas, columnas)").Text)
	assert.Equal(t, "9", section(t, r, "Cantidad total de juegos registrados").Metric.Value)
	assert.Equal(t, "Año mínimo: 1985, Año máximo: 2015", section(t, r, "Año mínimo y máximo de lanzamiento").Text)
	assert.Equal(t, []string{"NES", "PS2", "PS3", "PS4", "Wii", "X360"},
		section(t, r, "Consolas (plataformas) disponibles sin repetir").Items)

	top := section(t, r, "Juegos más vendidos globalmente").Table
	require.Len(t, top.Rows, 3)
	assert.Equal(t, "Wii Sports", top.Rows[0][0])

	// the missing publisher was filled and counts as a regular group
	editors := section(t, r, "Editoriales (publishers) más comunes").Table
	var labels []string
	for _, row := range editors.Rows {
		labels = append(labels, row[0])
	}
	assert.Contains(t, labels, dataset.DefaultLabel)

	// two rows have no year and form no group
	years := section(t, r, "Años con más lanzamientos").Table
	total := 0
	for _, row := range years.Rows {
		n := 0
		_, err := fmt.Sscan(row[1], &n)
		require.NoError(t, err)
		total += n
	}
	assert.Equal(t, 7, total)

	assert.Empty(t, gated(r), "no view is shown before any toggle")
	assert.Len(t, r.Controls, 11)
}

func TestExploration_TogglesAreIndependent(t *testing.T) {
	p := NewExploration(StaticSales(salesTable(t)), 0)
	st := session.NewState()

	r, err := p.Act(ctx, st, Action{Type: ActionToggle, Key: "mostrar_global_20m"})
	require.NoError(t, err)
	views := gated(r)
	require.Len(t, views, 1)
	assert.Len(t, views["mostrar_global_20m"].Table.Rows, 4)
	assert.True(t, control(t, r, "mostrar_global_20m").On)
	assert.False(t, control(t, r, "mostrar_nintendo_wii").On)

	r, err = p.Act(ctx, st, Action{Type: ActionToggle, Key: "mostrar_nintendo_wii"})
	require.NoError(t, err)
	views = gated(r)
	require.Len(t, views, 2)
	assert.Len(t, views["mostrar_nintendo_wii"].Table.Rows, 2)

	r, err = p.Act(ctx, st, Action{Type: ActionToggle, Key: "mostrar_global_20m"})
	require.NoError(t, err)
	views = gated(r)
	assert.Len(t, views, 1)
	assert.Contains(t, views, "mostrar_nintendo_wii")

	_, err = p.Act(ctx, st, Action{Type: ActionToggle, Key: "mostrar_todo"})
	assert.ErrorIs(t, err, ErrInvalidAction)
}

func TestExploration_FilterViews(t *testing.T) {
	p := NewExploration(StaticSales(salesTable(t)), 0)
	st := session.NewState()
	for _, k := range ExplorationToggles()[1:] {
		st.Toggles.Toggle(k)
	}
	views := gated(p.Render(ctx, st))
	require.Len(t, views, 10)

	count := func(key string) int { return len(views[key].Table.Rows) }
	assert.Equal(t, 4, count("mostrar_nintendo_sony"), "three Nintendo rows, one Sony row")
	assert.Equal(t, 1, count("mostrar_accion_x360"))
	assert.Equal(t, 1, count("mostrar_modernas"))
	assert.Equal(t, 4, count("mostrar_jp_1m"))
	assert.Equal(t, 9, count("mostrar_global_5m_ocultar"), "masking keeps every row")
	assert.Equal(t, 3, count("mostrar_anio_2010"))
	assert.Equal(t, 4, count("mostrar_no_deportes_carreras"))
	assert.Equal(t, 3, count("mostrar_nintendo_na_2m"))

	masked := views["mostrar_global_5m_ocultar"].Table
	assert.Equal(t, "", masked.Rows[8][0], "the 3M row is blanked")
	assert.Equal(t, "Wii Sports", masked.Rows[0][1])
}

func TestExploration_PlatformFilter(t *testing.T) {
	p := NewExploration(StaticSales(salesTable(t)), 2)
	st := session.NewState()

	r, err := p.Act(ctx, st, Action{Type: ActionToggle, Key: TogglePlatformFilter})
	require.NoError(t, err)
	sel := control(t, r, SelectPlatform)
	assert.Equal(t, []string{"NES"}, sel.Selected)
	assert.Len(t, gated(r)[TogglePlatformFilter].Table.Rows, 1)

	r, err = p.Act(ctx, st, Action{Type: ActionSelect, Key: SelectPlatform, Values: []string{"PS2"}})
	require.NoError(t, err)
	view := gated(r)[TogglePlatformFilter]
	assert.Equal(t, "Juegos para la plataforma: PS2", view.Title)
	assert.Len(t, view.Table.Rows, 2, "row limit applies")

	_, err = p.Act(ctx, st, Action{Type: ActionSelect, Key: SelectPlatform, Values: []string{"Dreamcast"}})
	assert.ErrorIs(t, err, ErrInvalidAction)
	assert.Equal(t, "PS2", st.First(SelectPlatform, ""), "a rejected action leaves state alone")
}

// ============================================================================
// CHARTS
// ============================================================================

func TestCharts_Defaults(t *testing.T) {
	r := NewCharts(StaticSales(salesTable(t))).Render(ctx, session.NewState())

	tabs := make(map[string]int)
	for _, s := range r.Sections {
		tabs[s.Tab]++
	}
	assert.Equal(t, 4, tabs[TabOverview])
	assert.Equal(t, 4, tabs[TabRegional])
	assert.Equal(t, 4, tabs[TabYearly])
	assert.Equal(t, 4, tabs[TabGenre])
	assert.Equal(t, 2, tabs[TabPublisher])
	assert.Equal(t, 2, tabs[TabCompare])

	assert.Equal(t, []string{"Sports"}, control(t, r, SelectRegionalGenre).Selected, "first genre in row order")
	assert.Equal(t, []string{"Action"}, control(t, r, SelectDetailGenre).Selected, "first genre alphabetically")
	assert.Equal(t, []string{"PS2", "X360", "Wii"}, control(t, r, SelectPlatforms).Selected)
	assert.Len(t, control(t, r, SelectPublishers).Selected, 5)
	assert.Equal(t, []string{dataset.ColSalesNA}, control(t, r, SelectRegion2).Selected)

	pie := section(t, r, "Proporción de Ventas Globales por Región")
	assert.Equal(t, KindPie, pie.Kind)
	require.NotNil(t, pie.Chart)
	assert.Len(t, pie.Chart.Series[0].Data, 4)

	heat := section(t, r, "Heatmap de Ventas por Plataforma y Año")
	require.NotNil(t, heat.Chart.Heatmap)
	assert.Len(t, heat.Chart.Heatmap.Y, 6)

	grouped := section(t, r, "Ventas por Región y Plataforma Seleccionada")
	assert.True(t, grouped.Chart.Grouped)
	assert.Len(t, grouped.Chart.Series, 4, "one series per region")
}

func TestCharts_Select(t *testing.T) {
	p := NewCharts(StaticSales(salesTable(t)))
	st := session.NewState()

	r, err := p.Act(ctx, st, Action{Type: ActionSelect, Key: SelectDetailGenre, Values: []string{"Racing"}})
	require.NoError(t, err)
	m := section(t, r, "Ventas Globales Totales para Racing")
	assert.Equal(t, "50.80 millones $", m.Metric.Value)

	r, err = p.Act(ctx, st, Action{Type: ActionSelect, Key: SelectRegion2, Values: []string{dataset.ColSalesJP}})
	require.NoError(t, err)
	scatter := section(t, r, "Comparativa de Ventas: NA vs JP")
	assert.Equal(t, "Ventas JP", scatter.Chart.YAxis)

	_, err = p.Act(ctx, st, Action{Type: ActionSelect, Key: SelectPlatforms, Values: []string{"PS2", "Saturn"}})
	assert.ErrorIs(t, err, ErrInvalidAction)
	_, err = p.Act(ctx, st, Action{Type: ActionSelect, Key: SelectDetailGenre, Values: []string{"Racing", "Sports"}})
	assert.ErrorIs(t, err, ErrInvalidAction)
	_, err = p.Act(ctx, st, Action{Type: ActionToggle, Key: SelectDetailGenre})
	assert.ErrorIs(t, err, ErrInvalidAction)

	r, err = p.Act(ctx, st, Action{Type: ActionSelect, Key: SelectPlatforms, Values: []string{}})
	require.NoError(t, err)
	grouped := section(t, r, "Ventas por Región y Plataforma Seleccionada")
	assert.Nil(t, grouped.Chart, "an empty selection draws an empty view")
}

// ============================================================================
// WEATHER
// ============================================================================

type fakeWeather struct {
	mu          sync.Mutex
	reports     map[string]*weather.Report
	err         error
	calls       int
	invalidated int
}

func (f *fakeWeather) Get(_ context.Context, city string) (*weather.Report, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, false, f.err
	}
	return f.reports[city], false, nil
}

func (f *fakeWeather) Invalidate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated++
}

func TestWeather_MissingKey(t *testing.T) {
	src := &fakeWeather{}
	r := NewWeather(src, false, logging.Discard()).Render(ctx, session.NewState())
	require.Len(t, r.Sections, 1)
	assert.Equal(t, LevelWarning, r.Sections[0].Level)
	assert.Zero(t, src.calls)
}

func TestWeather_Render(t *testing.T) {
	src := &fakeWeather{reports: map[string]*weather.Report{
		"Bogotá": {City: "Bogotá", Temperature: 14.26, Humidity: 82, Description: "Nubes dispersas", Icon: "03d", Lat: 4.61, Lon: -74.08},
	}}
	p := NewWeather(src, true, logging.Discard())
	p.now = func() time.Time { return time.Date(2026, 3, 1, 9, 30, 5, 0, time.UTC) }
	st := session.NewState()

	r, err := p.Act(ctx, st, Action{Type: ActionSelect, Key: SelectCity, Values: []string{"Bogotá"}})
	require.NoError(t, err)
	assert.Equal(t, "14.3 °C", section(t, r, "Temperatura").Metric.Value)
	assert.Equal(t, "82%", section(t, r, "Humedad").Metric.Value)
	cond := section(t, r, "Condición")
	assert.Equal(t, "Nubes dispersas", cond.Text)
	assert.Equal(t, "http://openweathermap.org/img/wn/03d@2x.png", cond.Image)
	assert.Equal(t, "09:30:05", section(t, r, "Última actualización").Text)
	loc := section(t, r, "Ubicación de Bogotá")
	assert.Equal(t, 4.61, loc.Chart.Series[0].Data[0].Value)

	_, err = p.Act(ctx, st, Action{Type: ActionRefresh})
	require.NoError(t, err)
	assert.Equal(t, 1, src.invalidated)

	_, err = p.Act(ctx, st, Action{Type: ActionSelect, Key: SelectCity, Values: []string{"Atlantis"}})
	assert.ErrorIs(t, err, ErrInvalidAction)
}

func TestWeather_RemoteFailureKeepsSelection(t *testing.T) {
	src := &fakeWeather{err: fmt.Errorf("openweathermap: %w", faults.ErrRemoteUnavailable)}
	p := NewWeather(src, true, logging.Discard())
	st := session.NewState()

	r, err := p.Act(ctx, st, Action{Type: ActionSelect, Key: SelectCity, Values: []string{"Tokio"}})
	require.NoError(t, err)
	require.Len(t, r.Sections, 1)
	assert.Equal(t, LevelError, r.Sections[0].Level)
	assert.Contains(t, r.Sections[0].Text, "Tokio")
	assert.Equal(t, "Tokio", st.First(SelectCity, ""))
	assert.Equal(t, []string{"Tokio"}, control(t, r, SelectCity).Selected)
}

// ============================================================================
// MARKETING
// ============================================================================

func isCopies(r copywriter.Request) bool { return strings.Contains(r.Prompt, "copywriter publicitario") }

func TestMarketing_Generate(t *testing.T) {
	mock := copywriter.NewMockProvider(copywriter.MockResponse{Content: "La mejor cafetera."}).
		Route(isCopies, copywriter.MockResponse{Content: "1. Café en 30 segundos\n2. Tu mañana, mejor"})
	p := NewMarketing(copywriter.NewGenerator(mock, copywriter.WithGeneratorModel("gemini-pro")))
	st := session.NewState()

	r, err := p.Act(ctx, st, Action{Type: ActionGenerate, Fields: map[string]string{
		FieldCopies: "2", FieldLength: "medium", FieldTone: copywriter.Tones[1],
	}})
	require.NoError(t, err)
	assert.Equal(t, "La mejor cafetera.", section(t, r, "Descripción del Producto para E-commerce").Text)
	copies := section(t, r, "Copys para Anuncios (Tono: Emocional, Longitud: Medianos (1-2 párrafos))")
	assert.Equal(t, []string{"Copy 1: Café en 30 segundos", "Copy 2: Tu mañana, mejor"}, copies.Items)

	assert.Equal(t, []string{"2"}, control(t, p.Render(ctx, st), FieldCopies).Selected, "inputs persist")
	for _, c := range mock.Calls() {
		if isCopies(c) {
			assert.Equal(t, 200, c.MaxTokens)
		}
	}
}

func TestMarketing_IncompleteBrief(t *testing.T) {
	mock := copywriter.NewMockProvider()
	p := NewMarketing(copywriter.NewGenerator(mock, copywriter.WithGeneratorModel("gemini-pro")))

	r, err := p.Act(ctx, session.NewState(), Action{Type: ActionGenerate, Fields: map[string]string{FieldAudience: "  "}})
	require.NoError(t, err)
	last := r.Sections[len(r.Sections)-1]
	assert.Equal(t, LevelWarning, last.Level)
	assert.Empty(t, mock.Calls())
}

func TestMarketing_PartialFailureAndUnparsed(t *testing.T) {
	mock := copywriter.NewMockProvider(copywriter.MockResponse{Err: errors.New("blocked")}).
		Route(isCopies, copywriter.MockResponse{Content: "Sin lista numerada"})
	p := NewMarketing(copywriter.NewGenerator(mock, copywriter.WithGeneratorModel("gemini-pro")))

	r, err := p.Act(ctx, session.NewState(), Action{Type: ActionGenerate})
	require.NoError(t, err)
	assert.Equal(t, copywriter.Placeholder, section(t, r, "Descripción del Producto para E-commerce").Text)
	assert.Equal(t, "Sin lista numerada", section(t, r, "Salida bruta del modelo (para depuración)").Text)
}

func TestMarketing_MissingCredential(t *testing.T) {
	gen := copywriter.NewGenerator(copywriter.NewGemini(copywriter.GeminiConfig{}))
	r, err := NewMarketing(gen).Act(ctx, session.NewState(), Action{Type: ActionGenerate})
	require.NoError(t, err)
	last := r.Sections[len(r.Sections)-1]
	assert.Equal(t, LevelWarning, last.Level)

	r, err = NewMarketing(nil).Act(ctx, session.NewState(), Action{Type: ActionGenerate})
	require.NoError(t, err)
	assert.Equal(t, LevelWarning, r.Sections[len(r.Sections)-1].Level)
}

func TestMarketing_RejectedGenerateKeepsInputs(t *testing.T) {
	p := NewMarketing(nil)
	st := session.NewState()
	_, err := p.Act(ctx, st, Action{Type: ActionSelect, Key: FieldProduct, Values: []string{"Cafetera"}})
	require.NoError(t, err)

	_, err = p.Act(ctx, st, Action{Type: ActionGenerate, Fields: map[string]string{
		FieldProduct:  "Tostadora",
		FieldBrand:    "Marca Nueva",
		FieldAudience: "Estudiantes",
		FieldCopies:   "9",
	}})
	require.ErrorIs(t, err, ErrInvalidAction)

	assert.Equal(t, "Cafetera", st.First(FieldProduct, ""))
	_, ok := st.Selection(FieldBrand)
	assert.False(t, ok)
	_, ok = st.Selection(FieldAudience)
	assert.False(t, ok)
}

func TestMarketing_InvalidFields(t *testing.T) {
	p := NewMarketing(nil)
	for _, a := range []Action{
		{Type: ActionSelect, Key: FieldCopies, Values: []string{"9"}},
		{Type: ActionSelect, Key: FieldTone, Values: []string{"Sarcástico"}},
		{Type: ActionSelect, Key: "color", Values: []string{"rojo"}},
		{Type: ActionGenerate, Fields: map[string]string{FieldLength: "eterno"}},
		{Type: ActionRefresh},
	} {
		_, err := p.Act(ctx, session.NewState(), a)
		assert.ErrorIs(t, err, ErrInvalidAction, "%+v", a)
	}
}
