package ask

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"

	domain "github.com/bryanwahyu/datascope/internal/domain/ask"
)

// maxResponseBytes caps how much of an ask reply is read.
const maxResponseBytes = 1 << 20

// Doer is the part of *http.Client the asker needs.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Asker sends the question typed into Input to the ask endpoint of the report
// page at PagePath and writes the result into Sink.
//
// Each call to AskData takes a sequence number. A result is written only if
// no newer call has been issued since, so a slow reply never overwrites a
// fresher one.
type Asker struct {
	BaseURL  string
	PagePath string
	Input    domain.Input
	Sink     domain.ResultSink
	Client   Doer

	seq atomic.Uint64
	mu  sync.Mutex
}

// NewAsker wires an asker with http.DefaultClient.
func NewAsker(baseURL, pagePath string, in domain.Input, sink domain.ResultSink) *Asker {
	return &Asker{
		BaseURL:  baseURL,
		PagePath: pagePath,
		Input:    in,
		Sink:     sink,
		Client:   http.DefaultClient,
	}
}

// AskData runs one invocation. The returned error carries the detail of a
// failure; the sink only ever sees the generic message.
func (a *Asker) AskData(ctx context.Context) (domain.Outcome, error) {
	seq := a.seq.Add(1)
	query := a.Input.Value()

	if strings.TrimSpace(query) == "" {
		return a.finish(seq, domain.StateEarlyReturn, domain.Response{}, domain.MsgEmptyQuery), nil
	}

	route, err := domain.ParseReportPath(a.PagePath)
	if err != nil {
		return a.fail(seq, err)
	}

	resp, err := a.send(ctx, route.AskPath(), query)
	if err != nil {
		return a.fail(seq, err)
	}
	if resp.Failed() {
		return a.finish(seq, domain.StateSuccess, resp, RenderServiceError(resp.Error)), nil
	}
	return a.finish(seq, domain.StateSuccess, resp, RenderAnswer(resp.Answer)), nil
}

// Latest returns the sequence number of the most recently issued invocation.
func (a *Asker) Latest() uint64 { return a.seq.Load() }

func (a *Asker) send(ctx context.Context, askPath, query string) (domain.Response, error) {
	endpoint := strings.TrimRight(a.BaseURL, "/") + askPath
	body := encodeQueryField(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(body))
	if err != nil {
		return domain.Response{}, fmt.Errorf("build ask request: %w", err)
	}
	req.Header.Set("Content-Type", domain.FormContentType)
	req.Header.Set("Accept", "application/json")

	client := a.Client
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return domain.Response{}, fmt.Errorf("ask request: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return domain.Response{}, fmt.Errorf("read ask response: %w", err)
	}
	return decodeResponse(res.StatusCode, raw)
}

// encodeQueryField percent-encodes the query with spaces as %20 rather than
// the form-encoding "+". Both decode to the same value.
func encodeQueryField(query string) string {
	return domain.FieldQuery + "=" + strings.ReplaceAll(url.QueryEscape(query), "+", "%20")
}

// decodeResponse accepts {"error": ...} on any status, and {"answer": ...}
// only on 2xx. Everything else is an opaque failure.
func decodeResponse(status int, raw []byte) (domain.Response, error) {
	var body struct {
		Answer *string          `json:"answer"`
		Error  *string          `json:"error"`
		Table  []map[string]any `json:"table"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return domain.Response{}, fmt.Errorf("decode ask response (status %d): %w", status, err)
	}
	if body.Error != nil && *body.Error != "" {
		return domain.Response{Error: *body.Error}, nil
	}
	if status < 200 || status > 299 {
		return domain.Response{}, fmt.Errorf("ask endpoint returned status %d", status)
	}
	if body.Answer == nil {
		return domain.Response{}, errors.New("ask response has neither answer nor error")
	}
	return domain.Response{Answer: *body.Answer, Table: body.Table}, nil
}

func (a *Asker) fail(seq uint64, err error) (domain.Outcome, error) {
	slog.Debug("ask failed", "seq", seq, "error", err)
	return a.finish(seq, domain.StateFailure, domain.Response{}, domain.MsgFailure), err
}

func (a *Asker) finish(seq uint64, state domain.State, resp domain.Response, html string) domain.Outcome {
	out := domain.Outcome{Seq: seq, State: state, Response: resp, HTML: html}

	a.mu.Lock()
	defer a.mu.Unlock()
	if seq != a.seq.Load() {
		slog.Debug("dropping stale ask result", "seq", seq, "latest", a.seq.Load())
		return out
	}
	a.Sink.SetHTML(html)
	out.Applied = true
	return out
}
