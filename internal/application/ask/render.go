package ask

import (
	"bytes"
	"html/template"

	domain "github.com/bryanwahyu/datascope/internal/domain/ask"
)

var answerCard = template.Must(template.New("answer").Parse(
	`<div class="card"><h4>📢 Answer</h4><p>{{.}}</p></div>`))

// RenderAnswer places the answer text into the answer card. The text is
// HTML-escaped.
func RenderAnswer(answer string) string {
	var buf bytes.Buffer
	if err := answerCard.Execute(&buf, answer); err != nil {
		return domain.MsgFailure
	}
	return buf.String()
}

// RenderServiceError prefixes a service-reported error with the warning marker.
func RenderServiceError(msg string) string {
	return template.HTMLEscapeString(domain.WarningMarker + msg)
}
