package log

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel(" WARN "))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("loud"))
}

func TestSetup_DefaultLevel(t *testing.T) {
	Setup("")

	ctx := context.Background()
	handler := slog.Default().Handler()
	assert.True(t, handler.Enabled(ctx, slog.LevelInfo), "INFO should be enabled by default")
	assert.False(t, handler.Enabled(ctx, slog.LevelDebug), "DEBUG should not be enabled by default")
}

func TestSetupWriter_WritesKeyValues(t *testing.T) {
	var buf bytes.Buffer
	SetupWriter(&buf, "debug")

	slog.Debug("report rendered", "filename", "air.csv")

	out := buf.String()
	assert.Contains(t, out, "level=DEBUG")
	assert.Contains(t, out, `msg="report rendered"`)
	assert.Contains(t, out, "filename=air.csv")
}
