package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevel(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, Level(false, false))
	assert.Equal(t, slog.LevelDebug, Level(true, false))
	assert.Equal(t, slog.LevelWarn, Level(false, true))
	assert.Equal(t, slog.LevelWarn, Level(true, true), "quiet takes precedence")
}

func TestSetup_InstallsDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := Setup(false, true, FormatText, true)
	ctx := context.Background()
	assert.Same(t, logger, slog.Default())
	assert.False(t, slog.Default().Handler().Enabled(ctx, slog.LevelInfo))
	assert.True(t, slog.Default().Handler().Enabled(ctx, slog.LevelWarn))
}

func TestNewHandler_JSON(t *testing.T) {
	var buf bytes.Buffer
	slog.New(NewHandler(&buf, slog.LevelInfo, FormatJSON, true)).Info("dataset loaded", "rows", 16598)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "dataset loaded", rec["msg"])
	assert.EqualValues(t, 16598, rec["rows"])
}

func TestNewHandler_TextNoColor(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, slog.LevelInfo, FormatText, true))
	logger.Debug("hidden")
	logger.Info("cache hit", "city", "Medellín")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "cache hit")
	assert.Contains(t, out, "city=Medellín")
	assert.NotContains(t, out, "\x1b[", "no ANSI escapes when color is off")
}
