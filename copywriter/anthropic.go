package copywriter

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/cesde-ntp/tablero/faults"
)

const (
	// defaultAnthropicModel is used when no override is provided.
	defaultAnthropicModel = "claude-sonnet-4-5-20250929"

	// defaultAnthropicMaxTokens caps output when a request sets none.
	defaultAnthropicMaxTokens = 1024
)

// AnthropicProvider implements Provider with the Anthropic Messages API.
// The SDK's automatic retries are off unless WithMaxRetries says otherwise,
// so a failed generation surfaces at once like the Gemini path.
type AnthropicProvider struct {
	client     anthropic.Client
	model      string
	maxRetries int
}

var _ Provider = (*AnthropicProvider)(nil)

// AnthropicOption configures an AnthropicProvider.
type AnthropicOption func(*anthropicConfig)

type anthropicConfig struct {
	apiKey     string
	model      string
	baseURL    string
	maxRetries int
}

// WithAPIKey sets the API key. Without it the provider reads
// ANTHROPIC_API_KEY from the environment.
func WithAPIKey(key string) AnthropicOption {
	return func(c *anthropicConfig) { c.apiKey = key }
}

// WithModel overrides the default model.
func WithModel(model string) AnthropicOption {
	return func(c *anthropicConfig) { c.model = model }
}

// WithBaseURL points the client at another API root, for tests.
func WithBaseURL(u string) AnthropicOption {
	return func(c *anthropicConfig) { c.baseURL = u }
}

// WithMaxRetries sets the SDK retry count for transient errors.
func WithMaxRetries(n int) AnthropicOption {
	return func(c *anthropicConfig) { c.maxRetries = n }
}

// NewAnthropicProvider creates a provider. It fails with
// faults.ErrMissingCredential when no key is available.
func NewAnthropicProvider(opts ...AnthropicOption) (*AnthropicProvider, error) {
	cfg := anthropicConfig{model: defaultAnthropicModel}
	for _, o := range opts {
		o(&cfg)
	}

	apiKey := cfg.apiKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic: ANTHROPIC_API_KEY not set: %w", faults.ErrMissingCredential)
	}

	clientOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(cfg.maxRetries),
	}
	if cfg.baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.baseURL))
	}

	return &AnthropicProvider{
		client:     anthropic.NewClient(clientOpts...),
		model:      cfg.model,
		maxRetries: cfg.maxRetries,
	}, nil
}

// Complete sends one user message.
func (p *AnthropicProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	model := p.model
	if req.Model != "" {
		model = req.Model
	}
	maxTokens := int64(defaultAnthropicMaxTokens)
	if req.MaxTokens > 0 {
		maxTokens = int64(req.MaxTokens)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.Temperature != nil {
		// the Messages API caps temperature at 1
		params.Temperature = anthropic.Float(min(*req.Temperature, 1))
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic: completion failed: %w", errors.Join(faults.ErrRemoteUnavailable, err))
	}

	var content string
	for _, block := range msg.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			content += variant.Text
		}
	}
	return &Response{
		Content: content,
		Model:   string(msg.Model),
		Usage: Usage{
			InputTokens:  int(msg.Usage.InputTokens),
			OutputTokens: int(msg.Usage.OutputTokens),
		},
	}, nil
}

// Model returns the default model.
func (p *AnthropicProvider) Model() string { return p.model }

// MaxRetries returns the configured retry count.
func (p *AnthropicProvider) MaxRetries() int { return p.maxRetries }
