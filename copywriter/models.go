package copywriter

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNoModels means the provider offers no model usable for text generation.
var ErrNoModels = errors.New("no text generation model available")

// PreferredModels are tried in order before falling back to the first usable
// model. Both bare and "models/"-prefixed names are accepted.
var PreferredModels = []string{
	"gemini-1.5-flash",
	"gemini-1.5-pro",
	"gemini-pro",
	"models/gemini-1.5-flash",
	"models/gemini-1.5-pro",
	"models/gemini-pro",
}

// GenerateMethod is the generation method a usable model must support.
const GenerateMethod = "generateContent"

// Usable reports whether a model can generate text: it supports
// generateContent and is neither an embedding nor a vision model.
func Usable(m ModelInfo) bool {
	name := strings.ToLower(m.Name)
	return m.Supports(GenerateMethod) &&
		!strings.Contains(name, "embedding") &&
		!strings.Contains(name, "vision")
}

// SelectModel picks the first preferred model among the usable ones, or the
// first usable model when none is preferred.
func SelectModel(models []ModelInfo) (string, error) {
	available := make(map[string]bool)
	var first string
	for _, m := range models {
		if !Usable(m) {
			continue
		}
		available[m.Name] = true
		if first == "" {
			first = m.Name
		}
	}
	if first == "" {
		return "", ErrNoModels
	}
	for _, p := range PreferredModels {
		if available[p] {
			return p, nil
		}
	}
	return first, nil
}

// ResolveModel lists the provider's models and selects one.
func ResolveModel(ctx context.Context, l ModelLister) (string, error) {
	models, err := l.ListModels(ctx)
	if err != nil {
		return "", fmt.Errorf("list models: %w", err)
	}
	return SelectModel(models)
}
