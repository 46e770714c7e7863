package ask

import (
	"context"

	"github.com/bryanwahyu/datascope/internal/domain/analytics"
)

// Input is the text field a question is read from.
type Input interface {
	Value() string
}

// ResultSink is the container an ask result is written into. The HTML it
// receives is already escaped.
type ResultSink interface {
	SetHTML(html string)
}

// Answerer port (question answering over a pre-computed payload)
type Answerer interface {
	Answer(ctx context.Context, question string, p *analytics.Payload) (Response, error)
}

// StaticInput is an Input with a fixed value.
type StaticInput string

func (s StaticInput) Value() string { return string(s) }
