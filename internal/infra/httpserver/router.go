package httpserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appask "github.com/bryanwahyu/datascope/internal/application/ask"
	appreport "github.com/bryanwahyu/datascope/internal/application/report"
	domai "github.com/bryanwahyu/datascope/internal/domain/ai"
	"github.com/bryanwahyu/datascope/internal/domain/analytics"
	"github.com/bryanwahyu/datascope/internal/domain/ask"
	"github.com/bryanwahyu/datascope/internal/domain/charts"
	"github.com/bryanwahyu/datascope/internal/infra/storage"
	"github.com/bryanwahyu/datascope/internal/middleware"
)

// errInvalidInput marks request validation failures.
var errInvalidInput = errors.New("invalid input")

// maxFormBytes caps an ask request body.
const maxFormBytes = 16 << 10

// Options are the optional parts of the HTTP surface.
type Options struct {
	AllowedOrigins []string
	// AskLimiter limits POST /ask per client IP; nil disables limiting.
	AskLimiter *middleware.RateLimiter
	// Checkers back /health and /readyz.
	Checkers map[string]middleware.HealthChecker
	// Lister backs the report index; nil serves an empty index.
	Lister analytics.Lister
}

type Router struct {
	reports *appreport.Service
	asks    *appask.Service
	lister  analytics.Lister
}

func NewRouter(reports *appreport.Service, asks *appask.Service, opts Options) http.Handler {
	r := &Router{reports: reports, asks: asks, lister: opts.Lister}
	mux := chi.NewRouter()

	mux.Use(middleware.RequestID)
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	if len(opts.AllowedOrigins) > 0 {
		mux.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", middleware.RequestIDHeader},
			ExposedHeaders: []string{middleware.RequestIDHeader},
			MaxAge:         300,
		}))
	}

	mux.Get("/health", middleware.HealthHandler(opts.Checkers))
	mux.Get("/readyz", middleware.HealthHandler(opts.Checkers))
	mux.Get("/healthz", middleware.LivenessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Get("/", r.wrap(r.handleIndex))
	mux.Get("/report/{filename}", r.wrap(r.handleReport))
	mux.Get("/report/{filename}/charts", r.wrap(r.handleCharts))
	mux.Get("/report/{filename}/export", r.wrap(r.handleExport))

	mux.Group(func(rt chi.Router) {
		if opts.AskLimiter != nil {
			rt.Use(middleware.RateLimit(opts.AskLimiter))
		}
		rt.Post("/ask/{filename}", r.wrap(r.handleAsk))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// wrap maps handler errors to a status and an {"error": ...} body, the shape
// the ask client displays.
func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		status, msg := statusFor(err)
		if status >= 500 {
			slog.Error("request failed",
				"request_id", middleware.GetRequestID(req.Context()),
				"path", req.URL.Path,
				"error", err,
			)
		}
		writeJSON(w, status, ask.Response{Error: msg})
	}
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, analytics.ErrNotFound):
		return http.StatusNotFound, "dataset not found"
	case errors.Is(err, errInvalidInput), errors.Is(err, storage.ErrInvalidName):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, appask.ErrEmptyQuery):
		return http.StatusBadRequest, "query is required"
	case errors.Is(err, domai.ErrQuotaExceeded):
		return http.StatusTooManyRequests, "ai quota exceeded"
	case errors.Is(err, analytics.ErrMalformed):
		return http.StatusInternalServerError, "analytics payload is unreadable"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func invalid(err error) error {
	return fmt.Errorf("%w: %v", errInvalidInput, err)
}

func filenameParam(req *http.Request) (string, error) {
	name := chi.URLParam(req, "filename")
	// chi routes on RawPath when it is set, leaving the param escaped
	if req.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(name)
		if err != nil {
			return "", invalid(err)
		}
		name = unescaped
	}
	if err := middleware.ValidateFilename(name); err != nil {
		return "", invalid(err)
	}
	return name, nil
}

// GET /?limit=20
func (r *Router) handleIndex(w http.ResponseWriter, req *http.Request) error {
	var names []string
	if r.lister != nil {
		limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
		var err error
		names, err = r.lister.Filenames(req.Context(), middleware.ValidateLimit(limit))
		if err != nil {
			return err
		}
	}
	var buf bytes.Buffer
	if err := RenderIndex(&buf, names); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err := buf.WriteTo(w)
	return err
}

// GET /report/{filename}
func (r *Router) handleReport(w http.ResponseWriter, req *http.Request) error {
	filename, err := filenameParam(req)
	if err != nil {
		return err
	}

	page := &Page{}
	if _, err := r.reports.Render(req.Context(), filename, page); err != nil {
		return err
	}
	middleware.IncrementReports()

	// render fully before writing so a template error still maps to a status
	var buf bytes.Buffer
	if err := page.Render(&buf, filename); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err = buf.WriteTo(w)
	return err
}

// GET /report/{filename}/charts
func (r *Router) handleCharts(w http.ResponseWriter, req *http.Request) error {
	filename, err := filenameParam(req)
	if err != nil {
		return err
	}

	rep, err := r.reports.Render(req.Context(), filename, &charts.Recorder{})
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, rep)
	return nil
}

// GET /report/{filename}/export
func (r *Router) handleExport(w http.ResponseWriter, req *http.Request) error {
	filename, err := filenameParam(req)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := r.reports.Export(req.Context(), filename, &buf); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": appreport.ExportName(filename),
	}))
	_, err = buf.WriteTo(w)
	return err
}

// POST /ask/{filename}
// Body: query=<question> (form-encoded)
func (r *Router) handleAsk(w http.ResponseWriter, req *http.Request) error {
	middleware.IncrementAsks()
	filename, err := filenameParam(req)
	if err != nil {
		middleware.IncrementAsksFailed()
		return err
	}

	req.Body = http.MaxBytesReader(w, req.Body, maxFormBytes)
	if err := req.ParseForm(); err != nil {
		middleware.IncrementAsksFailed()
		return invalid(err)
	}
	query := middleware.SanitizeString(req.PostForm.Get(ask.FieldQuery))
	if err := middleware.ValidateQuery(query); err != nil {
		middleware.IncrementAsksFailed()
		return invalid(err)
	}

	start := time.Now()
	resp, err := r.asks.Ask(req.Context(), filename, query)
	if err != nil {
		middleware.IncrementAsksFailed()
		return err
	}
	if resp.Failed() {
		middleware.IncrementAsksFailed()
	}
	slog.Info("question answered",
		"request_id", middleware.GetRequestID(req.Context()),
		"file", filename,
		"failed", resp.Failed(),
		"duration", time.Since(start),
	)

	writeJSON(w, http.StatusOK, resp)
	return nil
}
