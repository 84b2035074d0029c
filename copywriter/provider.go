// Package copywriter generates marketing copy (a product description and a
// set of ad copies) from a product brief through a language-model provider.
package copywriter

import "context"

// ============================================================================
// PROVIDER — AI boundary
// ============================================================================
// The provider is the only component that calls an external model. It gets
// a prompt plus generation settings and returns text.
// ============================================================================

// Provider abstracts a language-model API behind one synchronous call.
type Provider interface {
	// Complete sends a prompt and returns the generated text. It must
	// respect context cancellation.
	Complete(ctx context.Context, req Request) (*Response, error)
}

// ModelLister is implemented by providers that can enumerate their models.
type ModelLister interface {
	ListModels(ctx context.Context) ([]ModelInfo, error)
}

// Request describes one completion.
type Request struct {
	Prompt string

	// Model overrides the provider default when set.
	Model string

	// MaxTokens limits the output. Zero uses the provider default.
	MaxTokens int

	// Temperature controls randomness. Nil uses the provider default.
	Temperature *float64
}

// Response holds the result of a completion.
type Response struct {
	Content string
	Model   string
	Usage   Usage
}

// Usage reports token counts for one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// ModelInfo describes one model offered by a provider.
type ModelInfo struct {
	Name             string   `json:"name"`
	SupportedMethods []string `json:"supportedGenerationMethods"`
}

// Supports reports whether the model lists method among its generation
// methods.
func (m ModelInfo) Supports(method string) bool {
	for _, s := range m.SupportedMethods {
		if s == method {
			return true
		}
	}
	return false
}

// Temperature is a helper for building a Request.
func Temperature(t float64) *float64 { return &t }
