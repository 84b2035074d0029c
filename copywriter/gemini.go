package copywriter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cesde-ntp/tablero/faults"
)

// ============================================================================
// GEMINI PROVIDER — generateContent and model listing over net/http
// ============================================================================

// DefaultGeminiEndpoint is the v1beta models root.
const DefaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models"

// GeminiConfig holds Gemini settings.
type GeminiConfig struct {
	APIKey   string // Google AI Studio key
	Model    string // empty = chosen with SelectModel on first use
	Endpoint string // empty = DefaultGeminiEndpoint
	Timeout  time.Duration
}

// GeminiProvider implements Provider and ModelLister for Google Gemini.
type GeminiProvider struct {
	config GeminiConfig
	client *http.Client
	logger *slog.Logger
}

var (
	_ Provider    = (*GeminiProvider)(nil)
	_ ModelLister = (*GeminiProvider)(nil)
)

// NewGemini creates a Gemini provider. A missing key is reported by the
// first call, not here, so pages can render a warning instead.
func NewGemini(cfg GeminiConfig) *GeminiProvider {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultGeminiEndpoint
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &GeminiProvider{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: slog.Default(),
	}
}

// Model returns the configured default model, possibly empty.
func (g *GeminiProvider) Model() string { return g.config.Model }

// geminiRequest is the generateContent request body.
type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	CandidateCount  int      `json:"candidateCount"`
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
	Temperature     *float64 `json:"temperature,omitempty"`
}

// geminiResponse is the generateContent response body.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
	ModelVersion string `json:"modelVersion"`
	Error        *geminiError `json:"error"`
}

type geminiError struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// Complete calls generateContent with one candidate.
func (g *GeminiProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	model := g.config.Model
	if req.Model != "" {
		model = req.Model
	}
	if model == "" {
		return nil, errors.New("gemini: no model selected")
	}
	model = strings.TrimPrefix(model, "models/")

	body := geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{{Text: req.Prompt}},
		}},
		GenerationConfig: &geminiGenerationConfig{
			CandidateCount:  1,
			MaxOutputTokens: req.MaxTokens,
			Temperature:     req.Temperature,
		},
	}
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("gemini: marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s:generateContent", strings.TrimRight(g.config.Endpoint, "/"), url.PathEscape(model))
	raw, err := g.do(ctx, http.MethodPost, endpoint, jsonBody)
	if err != nil {
		return nil, err
	}

	var resp geminiResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("gemini: parse response: %w", errors.Join(faults.ErrRemoteUnavailable, err))
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("gemini error %d: %s: %w", resp.Error.Code, resp.Error.Message, faults.ErrRemoteUnavailable)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini returned no candidates: %w", faults.ErrRemoteUnavailable)
	}

	var text strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	served := resp.ModelVersion
	if served == "" {
		served = model
	}
	return &Response{
		Content: text.String(),
		Model:   served,
		Usage: Usage{
			InputTokens:  resp.UsageMetadata.PromptTokenCount,
			OutputTokens: resp.UsageMetadata.CandidatesTokenCount,
		},
	}, nil
}

// geminiModelList is one page of the models listing.
type geminiModelList struct {
	Models        []ModelInfo `json:"models"`
	NextPageToken string      `json:"nextPageToken"`
}

// ListModels returns every model visible to the key, following pagination.
func (g *GeminiProvider) ListModels(ctx context.Context) ([]ModelInfo, error) {
	var all []ModelInfo
	token := ""
	for {
		q := url.Values{}
		q.Set("pageSize", "100")
		if token != "" {
			q.Set("pageToken", token)
		}
		raw, err := g.do(ctx, http.MethodGet, strings.TrimRight(g.config.Endpoint, "/")+"?"+q.Encode(), nil)
		if err != nil {
			return nil, err
		}
		var page geminiModelList
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, fmt.Errorf("gemini: parse model list: %w", errors.Join(faults.ErrRemoteUnavailable, err))
		}
		all = append(all, page.Models...)
		if page.NextPageToken == "" {
			return all, nil
		}
		token = page.NextPageToken
	}
}

// do sends one request with the key in a header and returns the body of a
// 200 response.
func (g *GeminiProvider) do(ctx context.Context, method, endpoint string, body []byte) ([]byte, error) {
	if g.config.APIKey == "" {
		return nil, fmt.Errorf("gemini: %w", faults.ErrMissingCredential)
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("gemini: build request: %w", err)
	}
	req.Header.Set("x-goog-api-key", g.config.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini: HTTP request failed: %w", errors.Join(faults.ErrRemoteUnavailable, err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gemini: read response: %w", errors.Join(faults.ErrRemoteUnavailable, err))
	}
	if resp.StatusCode != http.StatusOK {
		g.logger.Debug("gemini call failed", "status", resp.StatusCode, "body", truncate(string(raw), 200))
		return nil, fmt.Errorf("gemini API returned %d: %s: %w", resp.StatusCode, truncate(string(raw), 200), faults.ErrRemoteUnavailable)
	}
	return raw, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
