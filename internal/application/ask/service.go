package ask

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bryanwahyu/datascope/internal/domain/ai"
	"github.com/bryanwahyu/datascope/internal/domain/analytics"
	domain "github.com/bryanwahyu/datascope/internal/domain/ask"
)

// ErrEmptyQuery is returned when the posted query is blank.
var ErrEmptyQuery = errors.New("query is required")

// Service answers questions about one dataset's pre-computed analytics.
// Primary is optional; Fallback answers whenever Primary is absent or fails.
type Service struct {
	Source   analytics.Source
	Primary  domain.Answerer
	Fallback domain.Answerer
	// OnFallback, if set, is called with the primary's error before the
	// fallback answers.
	OnFallback func(err error)
}

func NewService(src analytics.Source, primary, fallback domain.Answerer) *Service {
	return &Service{Source: src, Primary: primary, Fallback: fallback}
}

// Ask loads the payload for filename and answers query against it.
func (s *Service) Ask(ctx context.Context, filename, query string) (domain.Response, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.Response{}, ErrEmptyQuery
	}

	p, err := s.Source.Load(ctx, filename)
	if err != nil {
		return domain.Response{}, fmt.Errorf("load payload %s: %w", filename, err)
	}

	if s.Primary != nil {
		resp, err := s.Primary.Answer(ctx, query, p)
		if err == nil {
			return resp, nil
		}
		if errors.Is(err, ai.ErrQuotaExceeded) {
			slog.Warn("ai quota exceeded, using keyword answerer", "file", filename)
		} else {
			slog.Warn("ai answer failed, using keyword answerer", "file", filename, "error", err)
		}
		if s.OnFallback != nil {
			s.OnFallback(err)
		}
	}
	if s.Fallback == nil {
		return domain.Response{}, errors.New("no answerer configured")
	}
	return s.Fallback.Answer(ctx, query, p)
}
