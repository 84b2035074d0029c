package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cesde-ntp/tablero/dashboard"
	"github.com/cesde-ntp/tablero/faults"
	"github.com/cesde-ntp/tablero/weather"
)

var weatherCity string

// weatherCmd prints the current weather for one city.
var weatherCmd = &cobra.Command{
	Use:   "weather",
	Short: "Print the current weather for a city",
	Long: `Look up the current weather on OpenWeatherMap. The key comes from
OPENWEATHER_API_KEY or .tablero/secrets.toml.

Cities:
  ` + strings.Join(weather.Cities, "\n  "),
	Args: cobra.NoArgs,
	RunE: runWeather,
}

func init() {
	weatherCmd.Flags().StringVar(&weatherCity, "city", weather.DefaultCity, "city to look up")
}

func runWeather(cmd *cobra.Command, _ []string) error {
	if !weather.KnownCity(weatherCity) {
		return exitError(ExitInvalidArgs, "tablero: unknown city %q", weatherCity)
	}
	if app.secrets.OpenWeatherAPIKey == "" {
		return classify(fmt.Errorf("OPENWEATHER_API_KEY not set: %w", faults.ErrMissingCredential))
	}

	cache := newWeatherCache()
	if _, _, err := cache.Get(cmd.Context(), weatherCity); err != nil {
		return classify(err)
	}
	d := dashboard.New(app.logger, dashboard.NewWeather(cache, true, app.logger))
	return runPage(cmd, d, "clima", dashboard.Action{
		Type: dashboard.ActionSelect, Key: dashboard.SelectCity, Values: []string{weatherCity},
	})
}
