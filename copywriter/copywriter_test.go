package copywriter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cesde-ntp/tablero/faults"
)

func TestExtractNumbered(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		want  []string
	}{
		{"plain list", "1. Uno\n2. Dos\n3. Tres", 0, []string{"Uno", "Dos", "Tres"}},
		{"drops prose", "Aquí tienes:\n1. Uno\n\n  2.   Dos  \nGracias", 0, []string{"Uno", "Dos"}},
		{"truncates", "1. a\n2. b\n3. c", 2, []string{"a", "b"}},
		{"multi digit", "10. diez", 0, []string{"diez"}},
		{"no list", "- viñeta\n* otra", 0, nil},
		{"needs dot", "1) uno", 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractNumbered(tt.text, tt.limit))
		})
	}
}

func TestSelectModel(t *testing.T) {
	gen := []string{GenerateMethod}

	t.Run("preferred wins over order", func(t *testing.T) {
		m, err := SelectModel([]ModelInfo{
			{Name: "models/gemini-2.0-flash", SupportedMethods: gen},
			{Name: "models/gemini-1.5-pro", SupportedMethods: gen},
			{Name: "models/gemini-1.5-flash", SupportedMethods: gen},
		})
		require.NoError(t, err)
		assert.Equal(t, "models/gemini-1.5-flash", m)
	})

	t.Run("falls back to first usable", func(t *testing.T) {
		m, err := SelectModel([]ModelInfo{
			{Name: "models/embedding-001", SupportedMethods: []string{"embedContent", GenerateMethod}},
			{Name: "models/gemini-pro-vision", SupportedMethods: gen},
			{Name: "models/aqa", SupportedMethods: []string{"generateAnswer"}},
			{Name: "models/gemini-2.0-flash", SupportedMethods: gen},
		})
		require.NoError(t, err)
		assert.Equal(t, "models/gemini-2.0-flash", m)
	})

	t.Run("nothing usable", func(t *testing.T) {
		_, err := SelectModel([]ModelInfo{{Name: "models/text-embedding-004", SupportedMethods: gen}})
		assert.ErrorIs(t, err, ErrNoModels)
	})
}

func TestBriefValidate(t *testing.T) {
	b := DefaultBrief()
	require.NoError(t, b.Validate())
	assert.Equal(t, "Informativo", b.ToneName())

	blank := Brief{Product: "Cafetera", Brand: "  "}
	err := blank.Validate()
	require.ErrorIs(t, err, ErrIncompleteBrief)
	assert.Contains(t, err.Error(), "brand")
	assert.Contains(t, err.Error(), "audience")

	defaults := DefaultBrief()
	defaults.Copies, defaults.Tone, defaults.Length = 0, "", ""
	require.NoError(t, defaults.Validate())
	assert.Equal(t, DefaultCopies, defaults.Copies)
	assert.Equal(t, Tones[0], defaults.Tone)
	assert.Equal(t, LengthShort, defaults.Length)

	tooMany := DefaultBrief()
	tooMany.Copies = 6
	assert.Error(t, tooMany.Validate())
}

func TestLengths(t *testing.T) {
	assert.Equal(t, 100, LengthShort.MaxTokens())
	assert.Equal(t, 200, LengthMedium.MaxTokens())
	assert.Equal(t, 350, LengthLong.MaxTokens())

	l, err := ParseLength("long")
	require.NoError(t, err)
	assert.Equal(t, LengthLong, l)
	l, err = ParseLength(string(LengthMedium))
	require.NoError(t, err)
	assert.Equal(t, LengthMedium, l)
	_, err = ParseLength("enorme")
	assert.Error(t, err)
}

func TestPrompts(t *testing.T) {
	b := DefaultBrief()
	b.Copies = 4
	b.Length = LengthMedium

	d := DescriptionPrompt(b)
	assert.Contains(t, d, "Producto: 'Cafetera'")
	assert.Contains(t, d, "Marca/Modelo: 'AromaMax Pro'")
	assert.Contains(t, d, "Tono de Marketing: "+Tones[0])

	c := CopiesPrompt(b)
	assert.Contains(t, c, "crear 4 copys distintos")
	assert.Contains(t, c, "**Medianos (1-2 párrafos)**")
	assert.Contains(t, c, "Formato: Lista numerada de copys.")
}

func isCopiesPrompt(r Request) bool { return strings.Contains(r.Prompt, "copywriter publicitario") }

func TestGenerate(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: "Una cafetera excelente."}).
		Route(isCopiesPrompt, MockResponse{Content: "Opciones:\n1. Café ya\n2. Café rico\n3. Café listo\n4. Sobra"}).
		WithModels([]ModelInfo{{Name: "models/gemini-1.5-pro", SupportedMethods: []string{GenerateMethod}}}, nil)

	g := NewGenerator(mock)
	res, err := g.Generate(context.Background(), DefaultBrief())
	require.NoError(t, err)

	assert.Equal(t, "models/gemini-1.5-pro", res.Model)
	assert.Equal(t, "Una cafetera excelente.", res.Description)
	assert.Equal(t, []string{"Café ya", "Café rico", "Café listo"}, res.Copies)
	assert.True(t, res.Parsed())

	calls := mock.Calls()
	require.Len(t, calls, 2)
	for _, c := range calls {
		require.NotNil(t, c.Temperature)
		assert.Equal(t, "models/gemini-1.5-pro", c.Model)
		if isCopiesPrompt(c) {
			assert.Equal(t, 0.9, *c.Temperature)
			assert.Equal(t, 100, c.MaxTokens)
		} else {
			assert.Equal(t, 0.7, *c.Temperature)
			assert.Equal(t, 400, c.MaxTokens)
		}
	}
}

func TestGeneratePartialFailure(t *testing.T) {
	boom := errors.New("quota exceeded")
	mock := NewMockProvider(MockResponse{Content: "Descripción lista."}).
		Route(isCopiesPrompt, MockResponse{Err: boom})

	res, err := NewGenerator(mock, WithGeneratorModel("gemini-pro")).Generate(context.Background(), DefaultBrief())
	require.NoError(t, err)
	assert.Equal(t, "Descripción lista.", res.Description)
	assert.NoError(t, res.DescriptionErr)
	assert.Equal(t, Placeholder, res.RawCopies)
	assert.ErrorIs(t, res.CopiesErr, boom)
	assert.False(t, res.Parsed())
	assert.ErrorIs(t, res.Err(), boom)
	assert.ErrorContains(t, res.Err(), "copies: quota exceeded")
}

func TestGenerateBothPartsFailJoined(t *testing.T) {
	descErr := errors.New("description down")
	copyErr := errors.New("copies down")
	mock := NewMockProvider(MockResponse{Err: descErr}).
		Route(isCopiesPrompt, MockResponse{Err: copyErr})

	res, err := NewGenerator(mock, WithGeneratorModel("gemini-pro")).Generate(context.Background(), DefaultBrief())
	require.NoError(t, err)
	assert.Equal(t, Placeholder, res.Description)
	assert.Equal(t, Placeholder, res.RawCopies)
	assert.ErrorIs(t, res.Err(), descErr)
	assert.ErrorIs(t, res.Err(), copyErr)
}

func TestGenerateIncompleteBriefSkipsModel(t *testing.T) {
	mock := NewMockProvider()
	_, err := NewGenerator(mock).Generate(context.Background(), Brief{Product: "Cafetera"})
	assert.ErrorIs(t, err, ErrIncompleteBrief)
	assert.Empty(t, mock.Calls())
}

func TestGenerateNoModels(t *testing.T) {
	mock := NewMockProvider().WithModels(nil, nil)
	_, err := NewGenerator(mock).Generate(context.Background(), DefaultBrief())
	assert.ErrorIs(t, err, ErrNoModels)
	assert.Empty(t, mock.Calls())
}

func TestGenerateUnparsedCopies(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: "sin numeración"})
	res, err := NewGenerator(mock, WithGeneratorModel("gemini-pro")).Generate(context.Background(), DefaultBrief())
	require.NoError(t, err)
	assert.False(t, res.Parsed())
	assert.Equal(t, "sin numeración", res.RawCopies)
}

// ============================================================================
// GEMINI
// ============================================================================

func TestGeminiComplete(t *testing.T) {
	var got geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-1.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		assert.Empty(t, r.URL.Query().Get("key"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		_, _ = io.WriteString(w, `{
			"candidates":[{"content":{"parts":[{"text":"1. Hola"},{"text":"\n2. Adiós"}]}}],
			"usageMetadata":{"promptTokenCount":12,"candidatesTokenCount":7},
			"modelVersion":"gemini-1.5-flash-002"}`)
	}))
	defer srv.Close()

	g := NewGemini(GeminiConfig{APIKey: "test-key", Endpoint: srv.URL + "/models"})
	resp, err := g.Complete(context.Background(), Request{
		Prompt:      "hola",
		Model:       "models/gemini-1.5-flash",
		MaxTokens:   100,
		Temperature: Temperature(0.9),
	})
	require.NoError(t, err)
	assert.Equal(t, "1. Hola\n2. Adiós", resp.Content)
	assert.Equal(t, "gemini-1.5-flash-002", resp.Model)
	assert.Equal(t, Usage{InputTokens: 12, OutputTokens: 7}, resp.Usage)

	require.NotNil(t, got.GenerationConfig)
	assert.Equal(t, 1, got.GenerationConfig.CandidateCount)
	assert.Equal(t, 100, got.GenerationConfig.MaxOutputTokens)
	assert.Equal(t, 0.9, *got.GenerationConfig.Temperature)
	assert.Equal(t, "hola", got.Contents[0].Parts[0].Text)
}

func TestGeminiFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"error":{"code":500,"message":"boom"}}`},
		{"forbidden", http.StatusForbidden, `{"error":{"code":403,"message":"bad key"}}`},
		{"bad json", http.StatusOK, `{not json`},
		{"no candidates", http.StatusOK, `{"candidates":[]}`},
		{"error body", http.StatusOK, `{"error":{"code":400,"message":"blocked"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			g := NewGemini(GeminiConfig{APIKey: "k", Model: "gemini-pro", Endpoint: srv.URL})
			_, err := g.Complete(context.Background(), Request{Prompt: "x"})
			assert.ErrorIs(t, err, faults.ErrRemoteUnavailable)
		})
	}
}

func TestGeminiMissingKey(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	defer srv.Close()

	g := NewGemini(GeminiConfig{Model: "gemini-pro", Endpoint: srv.URL})
	_, err := g.Complete(context.Background(), Request{Prompt: "x"})
	assert.ErrorIs(t, err, faults.ErrMissingCredential)
	_, err = g.ListModels(context.Background())
	assert.ErrorIs(t, err, faults.ErrMissingCredential)
	assert.False(t, called)
}

func TestGeminiListModelsPaginates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		if r.URL.Query().Get("pageToken") == "" {
			_, _ = io.WriteString(w, `{"models":[{"name":"models/embedding-001","supportedGenerationMethods":["embedContent"]}],"nextPageToken":"p2"}`)
			return
		}
		_, _ = io.WriteString(w, `{"models":[{"name":"models/gemini-pro","supportedGenerationMethods":["generateContent","countTokens"]}]}`)
	}))
	defer srv.Close()

	g := NewGemini(GeminiConfig{APIKey: "k", Endpoint: srv.URL + "/models"})
	models, err := g.ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 2)

	m, err := ResolveModel(context.Background(), g)
	require.NoError(t, err)
	assert.Equal(t, "models/gemini-pro", m)
}

// ============================================================================
// ANTHROPIC
// ============================================================================

func TestAnthropicMissingKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	_, err := NewAnthropicProvider()
	assert.ErrorIs(t, err, faults.ErrMissingCredential)
}

func TestAnthropicComplete(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id":"msg_1","type":"message","role":"assistant","model":"claude-test",
			"content":[{"type":"text","text":"1. Copy"}],
			"stop_reason":"end_turn","stop_sequence":null,
			"usage":{"input_tokens":5,"output_tokens":3}}`)
	}))
	defer srv.Close()

	p, err := NewAnthropicProvider(WithAPIKey("k"), WithBaseURL(srv.URL), WithModel("claude-test"))
	require.NoError(t, err)
	assert.Equal(t, 0, p.MaxRetries())

	resp, err := p.Complete(context.Background(), Request{Prompt: "hola", MaxTokens: 200, Temperature: Temperature(0.9)})
	require.NoError(t, err)
	assert.Equal(t, "1. Copy", resp.Content)
	assert.Equal(t, "claude-test", resp.Model)
	assert.Equal(t, Usage{InputTokens: 5, OutputTokens: 3}, resp.Usage)
	assert.EqualValues(t, 200, body["max_tokens"])
	assert.InDelta(t, 0.9, body["temperature"], 1e-9)
}

func TestAnthropicServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"type":"error","error":{"type":"api_error","message":"boom"}}`)
	}))
	defer srv.Close()

	p, err := NewAnthropicProvider(WithAPIKey("k"), WithBaseURL(srv.URL))
	require.NoError(t, err)
	_, err = p.Complete(context.Background(), Request{Prompt: "x"})
	assert.ErrorIs(t, err, faults.ErrRemoteUnavailable)
}
