package prompt

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/bryanwahyu/datascope/internal/domain/analytics"
	"github.com/bryanwahyu/datascope/internal/domain/ask"
)

const fallbackAnswer = "I understood the question, but this analysis is not supported yet.\n" +
	"Try: highest value in Ozone, average Wind, correlation, trend of Temp"

// KeywordAnswerer answers by matching keywords in the question and looking
// the value up in the payload. It computes nothing.
type KeywordAnswerer struct{}

func (KeywordAnswerer) Answer(_ context.Context, question string, p *analytics.Payload) (ask.Response, error) {
	return AnswerFromPayload(question, p), nil
}

// AnswerFromPayload checks the rules in order; the first match wins.
func AnswerFromPayload(question string, p *analytics.Payload) ask.Response {
	q := strings.ToLower(strings.TrimSpace(question))

	if len(p.Columns) == 0 {
		return answer("No numeric columns found in the dataset.")
	}

	col := mentionedColumn(q, p.Columns)
	available := strings.Join(p.Columns, ", ")

	has := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(q, w) {
				return true
			}
		}
		return false
	}

	switch {
	case has("highest", "maximum", "max"):
		if col == "" {
			return answer("Please specify a column. Available numeric columns: " + available)
		}
		return answer(fmt.Sprintf("The highest value in '%s' is %s.", col, num(p.Stats[col].Max)))

	case has("lowest", "minimum", "min"):
		if col == "" {
			return answer("Please specify a column. Available numeric columns: " + available)
		}
		return answer(fmt.Sprintf("The lowest value in '%s' is %s.", col, num(p.Stats[col].Min)))

	case has("mean", "average"):
		if col == "" {
			return answer("Please specify a column for average. Available numeric columns: " + available)
		}
		return answer(fmt.Sprintf("The average value of '%s' is %s.", col, num(round2(p.Stats[col].Mean))))

	case has("missing", "null"):
		if col != "" {
			return answer(fmt.Sprintf("Column '%s' has %d missing values.", col, p.Missing[col]))
		}
		var parts []string
		for _, c := range missingOrder(p) {
			if n := p.Missing[c]; n > 0 {
				parts = append(parts, fmt.Sprintf("%s: %d", c, n))
			}
		}
		if len(parts) == 0 {
			return answer("No missing values found in the dataset.")
		}
		return answer(strings.Join(parts, ", "))

	case has("correlation"):
		return ask.Response{
			Answer: "Correlation matrix between numeric columns:",
			Table:  correlationTable(p.Correlation),
		}

	case has("trend"):
		if col == "" {
			return answer("Please specify a column to analyze trend. Available numeric columns: " + available)
		}
		return answer(fmt.Sprintf("Trend of '%s' needs the row data, which this report does not include.", col))
	}

	return answer(fallbackAnswer)
}

func answer(s string) ask.Response { return ask.Response{Answer: s} }

func mentionedColumn(q string, cols []string) string {
	for _, c := range cols {
		if strings.Contains(q, strings.ToLower(c)) {
			return c
		}
	}
	return ""
}

// missingOrder follows the key order of the missing mapping. Payloads built
// without that order fall back to the numeric columns, then the rest by name.
func missingOrder(p *analytics.Payload) []string {
	seen := make(map[string]bool, len(p.Missing))
	out := make([]string, 0, len(p.Missing))
	add := func(c string) {
		if _, ok := p.Missing[c]; ok && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	for _, c := range p.MissingOrder {
		add(c)
	}
	for _, c := range p.Columns {
		add(c)
	}
	var rest []string
	for c := range p.Missing {
		if !seen[c] {
			rest = append(rest, c)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

func correlationTable(m analytics.Matrix) []map[string]any {
	rows := make([]map[string]any, 0, len(m.Labels))
	for _, x := range m.Labels {
		row := map[string]any{"index": x}
		for _, y := range m.Labels {
			row[y] = round2(m.At(x, y))
		}
		rows = append(rows, row)
	}
	return rows
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
