package httpserver

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"slices"

	"github.com/bryanwahyu/datascope/internal/domain/ask"
	"github.com/bryanwahyu/datascope/internal/domain/charts"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// ErrUnknownTarget means a chart was bound to a canvas the page does not have.
var ErrUnknownTarget = errors.New("unknown render target")

// Page is the report page's RenderTarget. Bound configs are serialized into
// the page script, one per canvas.
type Page struct {
	widgets []charts.Widget
}

func (p *Page) Bind(target string, cfg charts.Config) error {
	if !slices.Contains(charts.Targets, target) {
		return fmt.Errorf("%w: %q", ErrUnknownTarget, target)
	}
	for _, w := range p.widgets {
		if w.Target == target {
			return fmt.Errorf("target %q bound twice", target)
		}
	}
	p.widgets = append(p.widgets, charts.Widget{Target: target, Config: cfg})
	return nil
}

type pageData struct {
	Filename   string
	Targets    []string
	Widgets    []charts.Widget
	AskPath    string
	EmptyQuery string
	Failure    string
	Warning    string
	Field      string
}

// Render writes the report page for filename.
func (p *Page) Render(w io.Writer, filename string) error {
	route := ask.Route{Filename: filename}
	return pageTemplates.ExecuteTemplate(w, "report.html", pageData{
		Filename:   filename,
		Targets:    charts.Targets,
		Widgets:    p.widgets,
		AskPath:    route.AskPath(),
		EmptyQuery: ask.MsgEmptyQuery,
		Failure:    ask.MsgFailure,
		Warning:    ask.WarningMarker,
		Field:      ask.FieldQuery,
	})
}

// RenderIndex writes the list of available reports.
func RenderIndex(w io.Writer, filenames []string) error {
	type link struct{ Name, Path string }
	links := make([]link, 0, len(filenames))
	for _, f := range filenames {
		links = append(links, link{Name: f, Path: ask.Route{Filename: f}.ReportPath()})
	}
	return pageTemplates.ExecuteTemplate(w, "index.html", links)
}
