package copywriter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Placeholder replaces a part whose generation failed.
const Placeholder = "No se pudo generar el contenido."

// Result holds both generated parts. A failed part carries Placeholder as
// its text and the cause in its Err field.
type Result struct {
	Model          string   `json:"model"`
	Description    string   `json:"description"`
	DescriptionErr error    `json:"-"`
	Copies         []string `json:"copies"`
	RawCopies      string   `json:"rawCopies"`
	CopiesErr      error    `json:"-"`
}

// Err joins the per-part failures, or returns nil when both parts succeeded.
func (r *Result) Err() error {
	return errors.Join(r.DescriptionErr, r.CopiesErr)
}

// Parsed reports whether any numbered copy was extracted.
func (r *Result) Parsed() bool { return len(r.Copies) > 0 }

// Generator turns a Brief into marketing copy.
type Generator struct {
	provider Provider
	logger   *slog.Logger

	mu    sync.Mutex
	model string
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithGeneratorModel fixes the model and skips model listing.
func WithGeneratorModel(model string) GeneratorOption {
	return func(g *Generator) { g.model = model }
}

// WithGeneratorLogger sets the logger.
func WithGeneratorLogger(l *slog.Logger) GeneratorOption {
	return func(g *Generator) { g.logger = l }
}

// NewGenerator creates a generator over provider.
func NewGenerator(p Provider, opts ...GeneratorOption) *Generator {
	g := &Generator{provider: p, logger: slog.Default()}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Model returns the model in use, resolving it on first call when the
// provider can list models. Providers that cannot list keep their own
// default and Model returns "".
func (g *Generator) Model(ctx context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.model != "" {
		return g.model, nil
	}
	lister, ok := g.provider.(ModelLister)
	if !ok {
		return "", nil
	}
	m, err := ResolveModel(ctx, lister)
	if err != nil {
		return "", err
	}
	g.model = m
	g.logger.Info("model selected", "model", m)
	return m, nil
}

// Generate validates the brief and produces the description and copies
// concurrently. Only an invalid brief or a failed model resolution returns
// an error; per-part failures are reported inside the Result.
func (g *Generator) Generate(ctx context.Context, b Brief) (*Result, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	model, err := g.Model(ctx)
	if err != nil {
		return nil, fmt.Errorf("select model: %w", err)
	}

	res := &Result{Model: model}
	var eg errgroup.Group
	eg.Go(func() error {
		resp, err := g.provider.Complete(ctx, Request{
			Prompt:      DescriptionPrompt(b),
			Model:       model,
			MaxTokens:   DescriptionMaxTokens,
			Temperature: Temperature(DescriptionTemperature),
		})
		if err != nil {
			res.Description, res.DescriptionErr = Placeholder, fmt.Errorf("description: %w", err)
			return res.DescriptionErr
		}
		res.Description = resp.Content
		return nil
	})
	eg.Go(func() error {
		resp, err := g.provider.Complete(ctx, Request{
			Prompt:      CopiesPrompt(b),
			Model:       model,
			MaxTokens:   b.Length.MaxTokens(),
			Temperature: Temperature(CopiesTemperature),
		})
		if err != nil {
			res.RawCopies, res.CopiesErr = Placeholder, fmt.Errorf("copies: %w", err)
			return res.CopiesErr
		}
		res.RawCopies = resp.Content
		res.Copies = ExtractNumbered(resp.Content, b.Copies)
		return nil
	})
	// Each part already recorded its own failure; Wait only joins them.
	if err := eg.Wait(); err != nil {
		g.logger.Warn("marketing generation incomplete", "error", res.Err())
	}
	return res, nil
}
