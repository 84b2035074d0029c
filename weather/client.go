// Package weather looks up current conditions on OpenWeatherMap and keeps
// recent answers in a short-lived per-city cache.
package weather

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tidwall/gjson"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/time/rate"

	"github.com/cesde-ntp/tablero/faults"
)

// ============================================================================
// OPENWEATHERMAP CLIENT — One GET per lookup, no retries
// ============================================================================
// GET {base}/weather?q={city}&appid={key}&units=metric&lang=es
//
// Transport errors, non-2xx statuses and payloads missing the fields below
// all map to faults.ErrRemoteUnavailable. The caller decides what to show;
// the client never retries.
// ============================================================================

// DefaultBaseURL is the OpenWeatherMap 2.5 API root.
const DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

// Config holds the client settings.
type Config struct {
	APIKey            string
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64 // outbound pacing; 0 disables it
	Burst             int
}

// Report is the subset of the current-weather payload the dashboard shows.
type Report struct {
	City        string    `json:"city"`
	Temperature float64   `json:"temperature"` // °C
	Humidity    float64   `json:"humidity"`    // %
	Description string    `json:"description"` // capitalized
	Icon        string    `json:"icon"`
	Lat         float64   `json:"lat"`
	Lon         float64   `json:"lon"`
	FetchedAt   time.Time `json:"fetchedAt"`
}

// IconURL is the 2x icon image for the report's condition.
func (r Report) IconURL() string {
	return fmt.Sprintf("http://openweathermap.org/img/wn/%s@2x.png", r.Icon)
}

// Client calls the current-weather endpoint.
type Client struct {
	cfg     Config
	client  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.client = h }
}

// WithLogger sets the client logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client. Zero config fields take defaults.
func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	c := &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: slog.Default(),
		now:    time.Now,
	}
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HasKey reports whether an API key is configured.
func (c *Client) HasKey() bool { return c.cfg.APIKey != "" }

// Current fetches the current weather for city.
func (c *Client) Current(ctx context.Context, city string) (*Report, error) {
	if !c.HasKey() {
		return nil, fmt.Errorf("openweathermap: %w", faults.ErrMissingCredential)
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("weather %s: %w", city, errors.Join(faults.ErrRemoteUnavailable, err))
		}
	}

	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", c.cfg.APIKey)
	q.Set("units", "metric")
	q.Set("lang", "es")
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/weather?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("weather %s: build request: %w", city, err)
	}

	start := c.now()
	resp, err := c.client.Do(req)
	if err != nil {
		// the URL carries the key; report the city only
		return nil, fmt.Errorf("weather %s: request failed: %w", city, faults.ErrRemoteUnavailable)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("weather %s: read response: %w", city, errors.Join(faults.ErrRemoteUnavailable, err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := gjson.GetBytes(body, "message").String()
		return nil, fmt.Errorf("weather %s: status %d %s: %w", city, resp.StatusCode, msg, faults.ErrRemoteUnavailable)
	}

	report, err := parseReport(city, body)
	if err != nil {
		return nil, fmt.Errorf("weather %s: %w", city, err)
	}
	report.FetchedAt = c.now()
	c.logger.Debug("weather fetched", "city", city, "elapsed", report.FetchedAt.Sub(start))
	return report, nil
}

// requiredPaths must all be present in a usable payload.
var requiredPaths = []string{
	"main.temp",
	"main.humidity",
	"weather.0.description",
	"weather.0.icon",
	"coord.lat",
	"coord.lon",
}

func parseReport(city string, body []byte) (*Report, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid JSON payload: %w", faults.ErrRemoteUnavailable)
	}
	res := gjson.GetManyBytes(body, requiredPaths...)
	for i, r := range res {
		if !r.Exists() {
			return nil, fmt.Errorf("payload lacks %s: %w", requiredPaths[i], faults.ErrRemoteUnavailable)
		}
	}
	return &Report{
		City:        city,
		Temperature: res[0].Float(),
		Humidity:    res[1].Float(),
		Description: Capitalize(res[2].String()),
		Icon:        res[3].String(),
		Lat:         res[4].Float(),
		Lon:         res[5].Float(),
	}, nil
}

// Capitalize upper-cases the first letter and lower-cases the rest:
// "nubes dispersas" → "Nubes dispersas".
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	_, size := utf8.DecodeRuneInString(s)
	upper := cases.Upper(language.Spanish)
	lower := cases.Lower(language.Spanish)
	return upper.String(s[:size]) + lower.String(s[size:])
}
