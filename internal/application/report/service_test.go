package report

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/datascope/internal/application"
	"github.com/bryanwahyu/datascope/internal/domain/analytics"
	"github.com/bryanwahyu/datascope/internal/domain/charts"
)

type oneSource struct {
	name string
	p    *analytics.Payload
}

func (s oneSource) Load(_ context.Context, filename string) (*analytics.Payload, error) {
	if filename != s.name {
		return nil, fmt.Errorf("%s: %w", filename, analytics.ErrNotFound)
	}
	return s.p, nil
}

type brokenTarget struct{ failOn string }

func (b brokenTarget) Bind(target string, _ charts.Config) error {
	if target == b.failOn {
		return errors.New("no such canvas")
	}
	return nil
}

func payload(t *testing.T) *analytics.Payload {
	t.Helper()
	p, err := analytics.Decode([]byte(`{
		"stats": {"b": {"min": 0, "mean": 1, "max": 2}, "a": {"min": 3, "mean": 4, "max": 5}},
		"missing": {"a": 1, "b": 0},
		"variance": {"a": 2.5, "b": 0.5},
		"outliers": {"a": 0, "b": 1},
		"correlation": {"b": {"b": 1, "a": 0.3}, "a": {"b": 0.3, "a": 1}}
	}`))
	require.NoError(t, err)
	return p
}

func TestService_Render(t *testing.T) {
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	svc := NewService(oneSource{name: "s.csv", p: payload(t)}, application.FixedClock(now))
	rec := &charts.Recorder{}

	rep, err := svc.Render(context.Background(), "s.csv", rec)

	require.NoError(t, err)
	assert.Equal(t, "s.csv", rep.Filename)
	assert.Equal(t, []string{"b", "a"}, rep.Columns)
	assert.Equal(t, now, rep.GeneratedAt)
	require.Len(t, rec.Widgets, 6)
	for i, w := range rec.Widgets {
		assert.Equal(t, charts.Targets[i], w.Target)
	}
	heat, ok := rec.Get(charts.TargetHeatmap)
	require.True(t, ok)
	assert.Equal(t, charts.Point{X: 0, Y: 1, V: 0.3}, heat.Data.Datasets[0].Points[1])
}

func TestService_Render_NotFound(t *testing.T) {
	svc := NewService(oneSource{name: "s.csv", p: payload(t)}, nil)

	_, err := svc.Render(context.Background(), "other.csv", &charts.Recorder{})

	assert.ErrorIs(t, err, analytics.ErrNotFound)
}

func TestBind_StopsAtFirstError(t *testing.T) {
	_, err := Bind(payload(t), brokenTarget{failOn: charts.TargetMissing})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "missingChart")
}
