// Package config loads tablero settings from tablero.yaml, the environment
// and a TOML secrets file.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the settings file looked up in the working directory.
const FileName = "tablero.yaml"

// Config is the full settings tree. The zero value is valid; Defaults fills
// the blanks.
type Config struct {
	DataPath   string           `yaml:"data_path,omitempty"`
	LogFormat  string           `yaml:"log_format,omitempty"`
	Server     ServerConfig     `yaml:"server,omitempty"`
	Weather    WeatherConfig    `yaml:"weather,omitempty"`
	Copywriter CopywriterConfig `yaml:"copywriter,omitempty"`
}

// ServerConfig covers the HTTP surface.
type ServerConfig struct {
	Addr              string        `yaml:"addr,omitempty"`
	CORSOrigins       []string      `yaml:"cors_origins,omitempty"`
	RequestsPerSecond float64       `yaml:"requests_per_second,omitempty"`
	Burst             int           `yaml:"burst,omitempty"`
	SessionTTL        time.Duration `yaml:"session_ttl,omitempty"`
}

// WeatherConfig covers the OpenWeather client and its cache.
type WeatherConfig struct {
	BaseURL           string        `yaml:"base_url,omitempty"`
	Timeout           time.Duration `yaml:"timeout,omitempty"`
	CacheTTL          time.Duration `yaml:"cache_ttl,omitempty"`
	RequestsPerSecond float64       `yaml:"requests_per_second,omitempty"`
}

// CopywriterConfig selects the language-model provider.
type CopywriterConfig struct {
	Provider string        `yaml:"provider,omitempty"` // gemini or anthropic
	Model    string        `yaml:"model,omitempty"`    // empty = auto-select
	Endpoint string        `yaml:"endpoint,omitempty"`
	Timeout  time.Duration `yaml:"timeout,omitempty"`
}

// Providers accepted by CopywriterConfig.Provider.
const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

// Defaults returns the built-in settings.
func Defaults() Config {
	return Config{
		DataPath:  "vgsales.csv",
		LogFormat: "text",
		Server: ServerConfig{
			Addr:              ":8080",
			CORSOrigins:       []string{"*"},
			RequestsPerSecond: 10,
			Burst:             20,
			SessionTTL:        30 * time.Minute,
		},
		Weather: WeatherConfig{
			BaseURL:           "https://api.openweathermap.org/data/2.5",
			Timeout:           10 * time.Second,
			CacheTTL:          60 * time.Second,
			RequestsPerSecond: 1,
		},
		Copywriter: CopywriterConfig{
			Provider: ProviderGemini,
			Timeout:  60 * time.Second,
		},
	}
}

// Load reads dir/tablero.yaml over the defaults and applies TABLERO_*
// environment overrides. A missing file is not an error.
func Load(dir string) (*Config, error) {
	cfg := Defaults()
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path) //nolint:gosec // user-provided directory
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Write marshals the config to YAML.
func Write(w io.Writer, cfg *Config) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close() //nolint:errcheck // best-effort close
	enc.SetIndent(2)
	return enc.Encode(cfg)
}

// applyEnv overrides fields from TABLERO_* variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
		return nil
	}

	str("TABLERO_DATA", &c.DataPath)
	str("TABLERO_LOG_FORMAT", &c.LogFormat)
	str("TABLERO_ADDR", &c.Server.Addr)
	str("TABLERO_WEATHER_BASE_URL", &c.Weather.BaseURL)
	str("TABLERO_COPY_PROVIDER", &c.Copywriter.Provider)
	str("TABLERO_COPY_MODEL", &c.Copywriter.Model)
	str("TABLERO_COPY_ENDPOINT", &c.Copywriter.Endpoint)

	if v, ok := lookup("TABLERO_CORS_ORIGINS"); ok && v != "" {
		c.Server.CORSOrigins = splitList(v)
	}
	if v, ok := lookup("TABLERO_RPS"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("TABLERO_RPS: %w", err)
		}
		c.Server.RequestsPerSecond = f
	}
	return errors.Join(
		dur("TABLERO_SESSION_TTL", &c.Server.SessionTTL),
		dur("TABLERO_CACHE_TTL", &c.Weather.CacheTTL),
	)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks all fields and returns every problem at once.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.DataPath == "" {
		errs = append(errs, "data_path: must not be empty")
	}
	switch cfg.LogFormat {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("log_format: invalid value %q (must be text or json)", cfg.LogFormat))
	}
	if cfg.Server.RequestsPerSecond < 0 {
		errs = append(errs, fmt.Sprintf("server.requests_per_second: must be non-negative, got %g", cfg.Server.RequestsPerSecond))
	}
	if cfg.Server.Burst < 0 {
		errs = append(errs, fmt.Sprintf("server.burst: must be non-negative, got %d", cfg.Server.Burst))
	}
	if cfg.Server.SessionTTL < 0 {
		errs = append(errs, fmt.Sprintf("server.session_ttl: must be non-negative, got %s", cfg.Server.SessionTTL))
	}
	if cfg.Weather.CacheTTL < 0 {
		errs = append(errs, fmt.Sprintf("weather.cache_ttl: must be non-negative, got %s", cfg.Weather.CacheTTL))
	}
	if cfg.Weather.RequestsPerSecond < 0 {
		errs = append(errs, fmt.Sprintf("weather.requests_per_second: must be non-negative, got %g", cfg.Weather.RequestsPerSecond))
	}
	switch cfg.Copywriter.Provider {
	case "", ProviderGemini, ProviderAnthropic:
	default:
		errs = append(errs, fmt.Sprintf("copywriter.provider: invalid value %q (must be gemini or anthropic)", cfg.Copywriter.Provider))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
