package report

import (
	"context"
	"fmt"
	"time"

	"github.com/bryanwahyu/datascope/internal/application"
	"github.com/bryanwahyu/datascope/internal/domain/analytics"
	"github.com/bryanwahyu/datascope/internal/domain/charts"
)

// Service renders the chart widgets of a report.
type Service struct {
	Source analytics.Source
	Clock  application.Clock
}

func NewService(src analytics.Source, clock application.Clock) *Service {
	if clock == nil {
		clock = application.SystemClock{}
	}
	return &Service{Source: src, Clock: clock}
}

// Report is one rendered report: the payload it was built from and the
// widgets bound to the target.
type Report struct {
	Filename    string             `json:"filename"`
	Columns     []string           `json:"columns"`
	Widgets     []charts.Widget    `json:"widgets"`
	Payload     *analytics.Payload `json:"-"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// Render loads the payload for filename, builds the six widgets and binds each
// to target.
func (s *Service) Render(ctx context.Context, filename string, target charts.RenderTarget) (*Report, error) {
	p, err := s.Source.Load(ctx, filename)
	if err != nil {
		return nil, fmt.Errorf("load payload %s: %w", filename, err)
	}
	widgets, err := Bind(p, target)
	if err != nil {
		return nil, err
	}
	return &Report{
		Filename:    filename,
		Columns:     p.Columns,
		Widgets:     widgets,
		Payload:     p,
		GeneratedAt: s.Clock.Now(),
	}, nil
}

// Bind builds the widgets for p and binds them to target in order. It stops
// at the first bind error.
func Bind(p *analytics.Payload, target charts.RenderTarget) ([]charts.Widget, error) {
	widgets := charts.BuildAll(p)
	for _, w := range widgets {
		if err := target.Bind(w.Target, w.Config); err != nil {
			return nil, fmt.Errorf("bind %s: %w", w.Target, err)
		}
	}
	return widgets, nil
}
