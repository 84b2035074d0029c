package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cesde-ntp/tablero/config"
	"github.com/cesde-ntp/tablero/copywriter"
	"github.com/cesde-ntp/tablero/dashboard"
	"github.com/cesde-ntp/tablero/engine"
	"github.com/cesde-ntp/tablero/faults"
	"github.com/cesde-ntp/tablero/logging"
	"github.com/cesde-ntp/tablero/render"
	"github.com/cesde-ntp/tablero/session"
	"github.com/cesde-ntp/tablero/weather"
)

// ============================================================================
// WIRING — config, secrets and logger shared by every subcommand
// ============================================================================
// Precedence: defaults < tablero.yaml < TABLERO_* environment < flags.
// ============================================================================

// app holds what PersistentPreRunE resolved for the running command.
var app struct {
	cfg     *config.Config
	secrets config.Secrets
	logger  *slog.Logger
	sales   dashboard.SalesSource
}

func setupApp(cmd *cobra.Command) error {
	cfg, err := config.Load(configDir)
	if err != nil {
		return exitError(ExitInvalidArgs, "tablero: %v", err)
	}
	if cmd.Flags().Changed("data") {
		cfg.DataPath = dataPath
	}
	if cmd.Flags().Changed("log-format") {
		cfg.LogFormat = logFormat
	}
	if err := config.Validate(cfg); err != nil {
		return exitError(ExitInvalidArgs, "tablero: invalid config: %v", err)
	}
	secrets, err := config.LoadSecrets(configDir)
	if err != nil {
		return exitError(ExitInvalidArgs, "tablero: %v", err)
	}

	app.cfg = cfg
	app.secrets = secrets
	app.logger = logging.Setup(verbose, quiet, cfg.LogFormat, noColor)
	app.sales = dashboard.LoadOnce(cfg.DataPath)
	if noColor {
		render.SetColor(false)
	}
	app.logger.Debug("config loaded", "dir", configDir, "data", cfg.DataPath, "secrets", secrets.Redacted())
	return nil
}

// loadSales returns the sales table or a data-unavailable exit error.
func loadSales() (*engine.Table, error) {
	t, err := app.sales()
	if err != nil {
		return nil, exitError(ExitDataUnavailable, "tablero: %v", err)
	}
	app.logger.Debug("dataset loaded", "rows", t.Len())
	return t, nil
}

// newWeatherCache builds the OpenWeather client behind its TTL cache.
func newWeatherCache() *weather.Cache {
	w := app.cfg.Weather
	client := weather.NewClient(weather.Config{
		APIKey:            app.secrets.OpenWeatherAPIKey,
		BaseURL:           w.BaseURL,
		Timeout:           w.Timeout,
		RequestsPerSecond: w.RequestsPerSecond,
		Burst:             1,
	}, weather.WithLogger(app.logger))
	return weather.NewCache(client, w.CacheTTL)
}

// newGenerator builds the configured copywriting provider. It fails with
// faults.ErrMissingCredential when the provider's key is not set.
func newGenerator() (*copywriter.Generator, error) {
	c := app.cfg.Copywriter
	var p copywriter.Provider
	switch c.Provider {
	case config.ProviderAnthropic:
		opts := []copywriter.AnthropicOption{copywriter.WithAPIKey(app.secrets.AnthropicAPIKey)}
		if c.Model != "" {
			opts = append(opts, copywriter.WithModel(c.Model))
		}
		if c.Endpoint != "" {
			opts = append(opts, copywriter.WithBaseURL(c.Endpoint))
		}
		ap, err := copywriter.NewAnthropicProvider(opts...)
		if err != nil {
			return nil, err
		}
		p = ap
	default:
		if app.secrets.GoogleAPIKey == "" {
			return nil, fmt.Errorf("gemini: GOOGLE_API_KEY not set: %w", faults.ErrMissingCredential)
		}
		p = copywriter.NewGemini(copywriter.GeminiConfig{
			APIKey:   app.secrets.GoogleAPIKey,
			Model:    c.Model,
			Endpoint: c.Endpoint,
			Timeout:  c.Timeout,
		})
	}

	opts := []copywriter.GeneratorOption{copywriter.WithGeneratorLogger(app.logger)}
	if c.Model != "" {
		opts = append(opts, copywriter.WithGeneratorModel(c.Model))
	}
	return copywriter.NewGenerator(p, opts...), nil
}

// newDashboard registers every page in menu order.
func newDashboard() *dashboard.Dashboard {
	var writer dashboard.Copywriter
	if gen, err := newGenerator(); err != nil {
		app.logger.Warn("copywriter disabled", "error", err)
	} else {
		writer = gen
	}
	return dashboard.New(app.logger,
		dashboard.NewExploration(app.sales, 20),
		dashboard.NewCharts(app.sales),
		dashboard.NewStandings(),
		dashboard.NewWeather(newWeatherCache(), app.secrets.OpenWeatherAPIKey != "", app.logger),
		dashboard.NewMarketing(writer),
	)
}

// runPage applies actions to a fresh session state and prints the final
// render.
func runPage(cmd *cobra.Command, d *dashboard.Dashboard, page string, actions ...dashboard.Action) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	st := session.NewState()
	var (
		r   *dashboard.Render
		err error
	)
	for _, a := range actions {
		if r, err = d.Act(ctx, page, st, a); err != nil {
			return exitError(ExitInvalidArgs, "tablero: %v", err)
		}
	}
	if r == nil {
		if r, err = d.Render(ctx, page, st); err != nil {
			return exitError(ExitInvalidArgs, "tablero: %v", err)
		}
	}
	return render.Page(cmd.OutOrStdout(), r)
}
