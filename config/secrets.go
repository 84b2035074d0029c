package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// SecretsFile is the secrets path relative to the working directory.
var SecretsFile = filepath.Join(".tablero", "secrets.toml")

// Secrets holds API keys. They are read from SecretsFile and the
// environment, never from tablero.yaml.
type Secrets struct {
	GoogleAPIKey      string `toml:"google_api_key"`
	OpenWeatherAPIKey string `toml:"openweather_api_key"`
	AnthropicAPIKey   string `toml:"anthropic_api_key"`
}

// LoadSecrets reads dir/.tablero/secrets.toml when present; environment
// variables GOOGLE_API_KEY, OPENWEATHER_API_KEY and ANTHROPIC_API_KEY win
// over the file.
func LoadSecrets(dir string) (Secrets, error) {
	var s Secrets
	path := filepath.Join(dir, SecretsFile)
	data, err := os.ReadFile(path) //nolint:gosec // user-provided directory
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return Secrets{}, fmt.Errorf("read %s: %w", path, err)
	default:
		if _, err := toml.Decode(string(data), &s); err != nil {
			return Secrets{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	for env, dst := range map[string]*string{
		"GOOGLE_API_KEY":      &s.GoogleAPIKey,
		"OPENWEATHER_API_KEY": &s.OpenWeatherAPIKey,
		"ANTHROPIC_API_KEY":   &s.AnthropicAPIKey,
	} {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}
	return s, nil
}

// Redacted returns a copy safe to print: set keys become "***".
func (s Secrets) Redacted() Secrets {
	mask := func(v string) string {
		if v == "" {
			return ""
		}
		return "***"
	}
	return Secrets{
		GoogleAPIKey:      mask(s.GoogleAPIKey),
		OpenWeatherAPIKey: mask(s.OpenWeatherAPIKey),
		AnthropicAPIKey:   mask(s.AnthropicAPIKey),
	}
}
