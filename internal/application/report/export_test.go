package report

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/datascope/internal/application"
	"github.com/bryanwahyu/datascope/internal/domain/analytics"
)

func TestService_Export(t *testing.T) {
	at := time.Date(2026, 3, 4, 5, 6, 8, 0, time.UTC)
	svc := NewService(oneSource{name: "air.csv", p: payload(t)}, application.FixedClock(at))

	var buf bytes.Buffer
	require.NoError(t, svc.Export(context.Background(), "air.csv", &buf))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	assert.Equal(t, ExportEntry, zr.File[0].Name)
	assert.True(t, zr.File[0].Modified.Equal(at))

	rc, err := zr.File[0].Open()
	require.NoError(t, err)
	defer rc.Close()
	raw, err := io.ReadAll(rc)
	require.NoError(t, err)

	got, err := analytics.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, payload(t).Columns, got.Columns)
	assert.Equal(t, payload(t).Stats, got.Stats)
}

func TestService_Export_NotFound(t *testing.T) {
	svc := NewService(oneSource{name: "air.csv"}, nil)

	var buf bytes.Buffer
	err := svc.Export(context.Background(), "nope.csv", &buf)

	assert.ErrorIs(t, err, analytics.ErrNotFound)
	assert.Zero(t, buf.Len())
}

func TestExportName(t *testing.T) {
	assert.Equal(t, "air_analytics.zip", ExportName("air.csv"))
	assert.Equal(t, "air.json_analytics.zip", ExportName("air.json"))
}
