package engine

import "log/slog"

// ============================================================================
// ENGINE OPTIONS — Functional options for Execute()
// ============================================================================

// Option configures engine behavior via functional options pattern.
type Option func(*config)

type config struct {
	Logger        *slog.Logger
	DefaultTarget string // numeric column used when an aggregation names none
	MaxRows       int    // cap on returned rows when the query sets no limit
}

// WithLogger routes execution logs to l instead of slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.Logger = l
	}
}

// WithDefaultTarget sets the numeric column to reduce when an aggregation
// spec leaves Target empty.
func WithDefaultTarget(column string) Option {
	return func(c *config) {
		c.DefaultTarget = column
	}
}

// WithMaxRows caps the result size when the query has no explicit limit.
func WithMaxRows(n int) Option {
	return func(c *config) {
		c.MaxRows = n
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return cfg
}
