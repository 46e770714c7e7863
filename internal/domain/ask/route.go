package ask

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const (
	reportSegment = "/report/"
	askSegment    = "/ask/"
)

// ErrNotReportPath means a page path has no /report/{filename} route.
var ErrNotReportPath = errors.New("path is not a report route")

// LegacyAskPath replaces the first "/report/" with "/ask/". A path without
// that segment comes back unchanged, so a caller cannot tell the derivation
// failed.
func LegacyAskPath(pagePath string) string {
	return strings.Replace(pagePath, reportSegment, askSegment, 1)
}

// Route is a parsed report route: an optional mount prefix and the file name.
type Route struct {
	Prefix   string
	Filename string
}

// ParseReportPath parses "<prefix>/report/<filename>". The file name must be a
// single non-empty path segment.
func ParseReportPath(pagePath string) (Route, error) {
	i := strings.Index(pagePath, reportSegment)
	if i < 0 {
		return Route{}, fmt.Errorf("%w: %q", ErrNotReportPath, pagePath)
	}
	name := strings.TrimSuffix(pagePath[i+len(reportSegment):], "/")
	if name == "" || strings.Contains(name, "/") {
		return Route{}, fmt.Errorf("%w: %q has no file segment", ErrNotReportPath, pagePath)
	}
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	return Route{Prefix: pagePath[:i], Filename: name}, nil
}

// ReportPath renders the page route.
func (r Route) ReportPath() string {
	return r.Prefix + reportSegment + url.PathEscape(r.Filename)
}

// AskPath renders the ask endpoint for the same file.
func (r Route) AskPath() string {
	return r.Prefix + askSegment + url.PathEscape(r.Filename)
}
