package httpserver

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/datascope/internal/application"
	appask "github.com/bryanwahyu/datascope/internal/application/ask"
	appreport "github.com/bryanwahyu/datascope/internal/application/report"
	"github.com/bryanwahyu/datascope/internal/domain/analytics"
	"github.com/bryanwahyu/datascope/internal/domain/ask"
	"github.com/bryanwahyu/datascope/internal/domain/charts"
	"github.com/bryanwahyu/datascope/internal/infra/ai/prompt"
	"github.com/bryanwahyu/datascope/internal/infra/storage"
	"github.com/bryanwahyu/datascope/internal/middleware"
)

const airPayload = `{
  "stats": {"temp": {"min": 1, "mean": 2.5, "max": 9}, "<b>hum</b>": {"min": 0, "mean": 1, "max": 2}},
  "missing": {"temp": 0, "<b>hum</b>": 3},
  "variance": {"temp": 1.5, "<b>hum</b>": 0.5},
  "outliers": {"temp": 1, "<b>hum</b>": 0},
  "correlation": {"temp": {"temp": 1, "<b>hum</b>": 0.5}, "<b>hum</b>": {"temp": 0.5, "<b>hum</b>": 1}}
}`

type sinkFunc func(string)

func (f sinkFunc) SetHTML(html string) { f(html) }

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "air.csv.json"), []byte(airPayload), 0o644))

	src := storage.NewDir(root)
	reports := appreport.NewService(src, application.FixedClock(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)))
	asks := appask.NewService(src, nil, prompt.KeywordAnswerer{})
	if opts.Lister == nil {
		opts.Lister = src
	}
	if opts.Checkers == nil {
		opts.Checkers = map[string]middleware.HealthChecker{"source": src}
	}

	srv := httptest.NewServer(NewRouter(reports, asks, opts))
	t.Cleanup(srv.Close)
	return srv
}

func postQuery(t *testing.T, srv *httptest.Server, path, query string) (*http.Response, ask.Response) {
	t.Helper()
	res, err := http.PostForm(srv.URL+path, url.Values{ask.FieldQuery: {query}})
	require.NoError(t, err)
	defer res.Body.Close()
	var body ask.Response
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	return res, body
}

func TestReportPage(t *testing.T) {
	srv := newTestServer(t, Options{})

	res, err := http.Get(srv.URL + "/report/air.csv")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.Header.Get("Content-Type"), "text/html")

	raw, err := readAll(res)
	require.NoError(t, err)
	for _, id := range charts.Targets {
		assert.Contains(t, raw, `<canvas id="`+id+`">`)
	}
	assert.Contains(t, raw, "Mean Distribution")
	assert.Contains(t, raw, `id="nlQuery"`)
	assert.Contains(t, raw, `id="nlResult"`)
	assert.NotContains(t, raw, "<b>hum</b>")
}

func TestReportCharts(t *testing.T) {
	srv := newTestServer(t, Options{})

	res, err := http.Get(srv.URL + "/report/air.csv/charts")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var body struct {
		Filename    string          `json:"filename"`
		Columns     []string        `json:"columns"`
		Widgets     []charts.Widget `json:"widgets"`
		GeneratedAt time.Time       `json:"generated_at"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, "air.csv", body.Filename)
	assert.Equal(t, []string{"temp", "<b>hum</b>"}, body.Columns)
	require.Len(t, body.Widgets, len(charts.Targets))
	for i, w := range body.Widgets {
		assert.Equal(t, charts.Targets[i], w.Target)
	}
	assert.Equal(t, 2026, body.GeneratedAt.Year())
}

func TestReport_Errors(t *testing.T) {
	srv := newTestServer(t, Options{})

	for path, status := range map[string]int{
		"/report/nope.csv":        http.StatusNotFound,
		"/report/nope.csv/charts": http.StatusNotFound,
		"/report/..hidden":        http.StatusBadRequest,
	} {
		res, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		var body ask.Response
		require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
		res.Body.Close()
		assert.Equal(t, status, res.StatusCode, path)
		assert.NotEmpty(t, body.Error, path)
	}
}

func TestReportExport(t *testing.T) {
	srv := newTestServer(t, Options{})

	res, err := http.Get(srv.URL + "/report/air.csv/export")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "application/zip", res.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename=air_analytics.zip`, res.Header.Get("Content-Disposition"))

	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	assert.Equal(t, "analytics/analytics.json", zr.File[0].Name)

	rc, err := zr.File[0].Open()
	require.NoError(t, err)
	defer rc.Close()
	doc, err := io.ReadAll(rc)
	require.NoError(t, err)
	p, err := analytics.Decode(doc)
	require.NoError(t, err)
	assert.Equal(t, []string{"temp", "<b>hum</b>"}, p.Columns)
	assert.Equal(t, 3, p.Missing["<b>hum</b>"])

	missing, err := http.Get(srv.URL + "/report/nope.csv/export")
	require.NoError(t, err)
	missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestReport_FilenameDecodedOnce(t *testing.T) {
	srv := newTestServer(t, Options{})

	for path, status := range map[string]int{
		// decodes to the literal name "air%2Ecsv", not "air.csv"
		"/report/air%252Ecsv/charts": http.StatusBadRequest,
		// an escaped slash must not become a path separator
		"/report/sales%2F1.csv/charts": http.StatusBadRequest,
		"/report/air%2Ecsv/charts":     http.StatusOK,
	} {
		res, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		res.Body.Close()
		assert.Equal(t, status, res.StatusCode, path)
	}
}

func TestAsk(t *testing.T) {
	srv := newTestServer(t, Options{})

	res, body := postQuery(t, srv, "/ask/air.csv", "what is the max temp?")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "The highest value in 'temp' is 9.", body.Answer)

	res, body = postQuery(t, srv, "/ask/air.csv", "   ")
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "query is required", body.Error)

	res, body = postQuery(t, srv, "/ask/nope.csv", "max temp")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, "dataset not found", body.Error)

	res, body = postQuery(t, srv, "/ask/air.csv", strings.Repeat("x", middleware.MaxQueryLength+1))
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Contains(t, body.Error, "query too long")
}

func TestAsk_RateLimited(t *testing.T) {
	limiter := middleware.NewRateLimiter(1, 1)
	defer limiter.Stop()
	srv := newTestServer(t, Options{AskLimiter: limiter})

	res, _ := postQuery(t, srv, "/ask/air.csv", "max temp")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	res, body := postQuery(t, srv, "/ask/air.csv", "max temp")
	assert.Equal(t, http.StatusTooManyRequests, res.StatusCode)
	assert.NotEmpty(t, body.Error)

	// the report page is not limited
	page, err := http.Get(srv.URL + "/report/air.csv")
	require.NoError(t, err)
	page.Body.Close()
	assert.Equal(t, http.StatusOK, page.StatusCode)
}

func TestAsker_AgainstRouter(t *testing.T) {
	srv := newTestServer(t, Options{})

	var shown string
	asker := appask.NewAsker(srv.URL, "/report/air.csv", ask.StaticInput("max of <b>hum</b>"), sinkFunc(func(h string) { shown = h }))

	out, err := asker.AskData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ask.StateSuccess, out.State)
	assert.True(t, out.Applied)
	assert.Equal(t, "The highest value in '<b>hum</b>' is 2.", out.Response.Answer)
	assert.Contains(t, shown, "&lt;b&gt;hum&lt;/b&gt;")
	assert.NotContains(t, shown, "<b>")
}

func TestIndexAndHealth(t *testing.T) {
	srv := newTestServer(t, Options{})

	res, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	raw, err := readAll(res)
	require.NoError(t, err)
	assert.Contains(t, raw, `href="/report/air.csv"`)

	for _, path := range []string{"/health", "/readyz", "/healthz", "/metrics"} {
		res, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		res.Body.Close()
		assert.Equal(t, http.StatusOK, res.StatusCode, path)
	}
}

func TestPage_Bind(t *testing.T) {
	p := &Page{}
	require.NoError(t, p.Bind(charts.TargetBar, charts.Config{Type: charts.TypeBar}))
	assert.Error(t, p.Bind(charts.TargetBar, charts.Config{}))
	assert.ErrorIs(t, p.Bind("pieChart", charts.Config{}), ErrUnknownTarget)
}

func readAll(res *http.Response) (string, error) {
	defer res.Body.Close()
	var b bytes.Buffer
	_, err := b.ReadFrom(res.Body)
	return b.String(), err
}
