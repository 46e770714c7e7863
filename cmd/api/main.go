package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bryanwahyu/datascope/internal/application"
	appask "github.com/bryanwahyu/datascope/internal/application/ask"
	appreport "github.com/bryanwahyu/datascope/internal/application/report"
	"github.com/bryanwahyu/datascope/internal/config"
	"github.com/bryanwahyu/datascope/internal/domain/ask"
	"github.com/bryanwahyu/datascope/internal/infra/ai/openai"
	"github.com/bryanwahyu/datascope/internal/infra/ai/prompt"
	"github.com/bryanwahyu/datascope/internal/infra/httpserver"
	"github.com/bryanwahyu/datascope/internal/log"
	"github.com/bryanwahyu/datascope/internal/middleware"
)

func main() {
	if err := run(); err != nil {
		slog.Error("datascope stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("config load error: %w", err)
	}
	log.Setup(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, err := openSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer src.Close()
	slog.Info("payload source ready", "kind", cfg.Source.Kind)

	// model answerer is optional; keyword lookup always backs it
	var primary ask.Answerer
	if cfg.AI.APIKey != "" {
		client := openai.NewClient(cfg.AI.APIKey, cfg.AI.Model)
		if cfg.AI.BaseURL != "" {
			client = openai.NewClientWithBaseURL(cfg.AI.APIKey, cfg.AI.Model, cfg.AI.BaseURL)
		}
		primary = prompt.NewModelAnswerer(client)
		slog.Info("ai answerer enabled", "model", client.Model)
	}

	reports := appreport.NewService(src, application.SystemClock{})
	asks := appask.NewService(src, primary, prompt.KeywordAnswerer{})
	asks.OnFallback = func(error) { middleware.IncrementAsksFallback() }

	limiter := middleware.NewRateLimiter(cfg.Server.AskBurst, cfg.Server.AskRate)
	defer limiter.Stop()

	handler := httpserver.NewRouter(reports, asks, httpserver.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AskLimiter:     limiter,
		Checkers:       map[string]middleware.HealthChecker{"source": src},
		Lister:         src,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // model answers can be slow
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
