package main

import (
	"html"
	"regexp"
	"strings"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// terminalSink keeps the last HTML written to it.
type terminalSink struct {
	html string
}

func (s *terminalSink) SetHTML(h string) { s.html = h }

// plainText drops the answer card markup and unescapes entities.
func plainText(h string) string {
	h = strings.ReplaceAll(h, "</h4>", "</h4>\n")
	return strings.TrimSpace(html.UnescapeString(tagPattern.ReplaceAllString(h, "")))
}
