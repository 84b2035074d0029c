package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cesde-ntp/tablero/engine"
	"github.com/cesde-ntp/tablero/faults"
	"github.com/cesde-ntp/tablero/session"
	"github.com/cesde-ntp/tablero/weather"
)

// SelectCity is the weather page's selection key.
const SelectCity = "ciudad"

// WeatherSource serves cached weather reports.
type WeatherSource interface {
	Get(ctx context.Context, city string) (*weather.Report, bool, error)
	Invalidate()
}

// WeatherPage shows the current weather for a chosen city.
type WeatherPage struct {
	src    WeatherSource
	hasKey bool
	now    func() time.Time
	logger *slog.Logger
}

// NewWeather builds the page. Without a key the page renders a warning
// and never calls src.
func NewWeather(src WeatherSource, hasKey bool, logger *slog.Logger) *WeatherPage {
	if logger == nil {
		logger = slog.Default()
	}
	return &WeatherPage{src: src, hasKey: hasKey, now: time.Now, logger: logger}
}

func (p *WeatherPage) Name() string  { return "clima" }
func (p *WeatherPage) Title() string { return "Clima en tiempo real" }

func (p *WeatherPage) Render(ctx context.Context, st *session.State) *Render {
	city := st.First(SelectCity, weather.DefaultCity)
	r := &Render{
		Page:  p.Name(),
		Title: p.Title(),
		Controls: []Control{
			{Kind: ControlSelect, Key: SelectCity, Label: "Selecciona una ciudad", Options: weather.Cities, Selected: []string{city}},
			{Kind: ControlButton, Key: ActionRefresh, Label: "Actualizar"},
		},
	}
	if !p.hasKey {
		r.Sections = []Section{Notice(LevelWarning,
			"Falta la clave de OpenWeatherMap. Configura OPENWEATHER_API_KEY o .tablero/secrets.toml.")}
		return r
	}

	report, hit, err := p.src.Get(ctx, city)
	if err != nil {
		p.logger.Warn("weather lookup failed", "city", city, "error", err)
		msg := fmt.Sprintf("No se pudo obtener el clima para %s.", city)
		if errors.Is(err, faults.ErrMissingCredential) {
			msg = "La clave de OpenWeatherMap no es válida o falta."
		}
		r.Sections = []Section{Notice(LevelError, msg)}
		return r
	}
	p.logger.Debug("weather served", "city", city, "cached", hit)
	r.Sections = weatherSections(report, p.now())
	return r
}

func weatherSections(w *weather.Report, shown time.Time) []Section {
	metrics := engine.MustNew(
		[]engine.Column{{Name: "Métrica", Kind: engine.KindCategorical}, {Name: "Valor", Kind: engine.KindFloat}},
		[][]engine.Value{
			{engine.Categorical("Temperatura (°C)"), engine.Float(w.Temperature)},
			{engine.Categorical("Humedad (%)"), engine.Float(w.Humidity)},
		},
	)
	location := engine.MustNew(
		[]engine.Column{
			{Name: "Ciudad", Kind: engine.KindCategorical},
			{Name: "Longitud", Kind: engine.KindFloat},
			{Name: "Latitud", Kind: engine.KindFloat},
		},
		[][]engine.Value{{engine.Categorical(w.City), engine.Float(w.Lon), engine.Float(w.Lat)}},
	)

	condition := TextSection("Condición", w.Description)
	condition.Image = w.IconURL()

	return []Section{
		MetricSection(&engine.TextData{
			Label: "Temperatura", Value: fmt.Sprintf("%.1f °C", w.Temperature),
			RawValue: w.Temperature, Unit: "°C", Count: 1,
		}),
		MetricSection(&engine.TextData{
			Label: "Humedad", Value: fmt.Sprintf("%.0f%%", w.Humidity),
			RawValue: w.Humidity, Unit: "%", Count: 1,
		}),
		condition,
		ChartSection(engine.ChartSpec{
			Type: engine.ChartScatter, Title: "Ubicación de " + w.City,
			X: "Longitud", Y: "Latitud", Color: "Ciudad",
		}, location),
		ChartSection(engine.ChartSpec{
			Type: engine.ChartBar, Title: "Temperatura y Humedad en " + w.City,
			X: "Métrica", Y: "Valor", Color: "Métrica",
		}, metrics),
		TextSection("Última actualización", shown.Format("15:04:05")),
	}
}

func (p *WeatherPage) Act(ctx context.Context, st *session.State, a Action) (*Render, error) {
	switch a.Type {
	case ActionSelect:
		if a.Key != SelectCity || len(a.Values) != 1 {
			return nil, invalid("select wants key %q and one value", SelectCity)
		}
		if !weather.KnownCity(a.Values[0]) {
			return nil, invalid("unknown city %q", a.Values[0])
		}
		st.Select(SelectCity, a.Values[0])
	case ActionRefresh:
		if p.src != nil {
			p.src.Invalidate()
		}
	default:
		return nil, invalid("page %s has no action %q", p.Name(), a.Type)
	}
	return p.Render(ctx, st), nil
}
