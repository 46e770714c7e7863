package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bryanwahyu/datascope/internal/config"
	"github.com/bryanwahyu/datascope/internal/domain/analytics"
	mysqlp "github.com/bryanwahyu/datascope/internal/infra/db/mysql"
	"github.com/bryanwahyu/datascope/internal/infra/db/postgres"
	"github.com/bryanwahyu/datascope/internal/infra/storage"
	"github.com/bryanwahyu/datascope/internal/middleware"
)

// source is a payload source that can also list its payloads and report
// its health.
type source interface {
	analytics.Source
	analytics.Lister
	middleware.HealthChecker
	Close() error
}

type nopCloser struct {
	analytics.Source
	analytics.Lister
	middleware.HealthChecker
}

func (nopCloser) Close() error { return nil }

type dbSource struct {
	analytics.Source
	analytics.Lister
	*middleware.DatabaseHealthChecker
	db *sql.DB
}

func (d dbSource) Close() error { return d.db.Close() }

func openSource(ctx context.Context, cfg *config.Config) (source, error) {
	switch cfg.Source.Kind {
	case config.SourceDir:
		d := storage.NewDir(cfg.Source.Dir)
		return nopCloser{d, d, d}, nil

	case config.SourceMinio:
		m, err := storage.NewMinio(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.Prefix,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			return nil, fmt.Errorf("minio init error: %w", err)
		}
		return nopCloser{m, m, m}, nil

	case config.SourceMySQL:
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, fmt.Errorf("mysql connect error: %w", err)
		}
		repo := mysqlp.NewPayloadRepository(db)
		return dbSource{repo, repo, &middleware.DatabaseHealthChecker{DB: db}, db}, nil

	case config.SourcePostgres:
		db, err := postgres.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, fmt.Errorf("postgres connect error: %w", err)
		}
		repo := postgres.NewPayloadRepository(db)
		return dbSource{repo, repo, &middleware.DatabaseHealthChecker{DB: db}, db}, nil
	}
	return nil, fmt.Errorf("unknown source kind %q", cfg.Source.Kind)
}
