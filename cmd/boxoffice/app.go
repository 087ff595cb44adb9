package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vbonduro/boxoffice/internal/blobstore/local"
	"github.com/vbonduro/boxoffice/internal/config"
	"github.com/vbonduro/boxoffice/internal/db"
	"github.com/vbonduro/boxoffice/internal/docstore"
	"github.com/vbonduro/boxoffice/internal/docstore/postgres"
	"github.com/vbonduro/boxoffice/internal/docstore/sqlite"
	"github.com/vbonduro/boxoffice/internal/service"
	"github.com/vbonduro/boxoffice/internal/store"
	"github.com/vbonduro/boxoffice/internal/submission"
)

// app holds the backends shared by every subcommand.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	docs    docstore.DocumentStore
	blobs   *local.LocalBlobStore
	movies  *store.MovieStore
	closers []func()
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	docs, closeDocs, err := newDocumentStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.docs = docs
	a.closers = append(a.closers, closeDocs)

	blobs, err := local.NewLocalBlobStore(cfg.BlobPath, cfg.PublicBaseURL)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to initialize blob store: %w", err)
	}
	a.blobs = blobs
	a.movies = store.NewMovieStore(docs)
	return a, nil
}

func newDocumentStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (docstore.DocumentStore, func(), error) {
	switch cfg.DocBackend {
	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, nil, fmt.Errorf("POSTGRES_DSN is required when DOC_BACKEND=postgres")
		}
		logger.Info("using postgres document store")
		pg, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return pg, pg.Close, nil
	case "sqlite", "":
		logger.Info("using sqlite document store", "path", cfg.DBPath)
		database, err := db.Open(cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		return sqlite.New(database), func() {
			if err := database.Close(); err != nil {
				logger.Error("failed to close database", "error", err)
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown DOC_BACKEND %q", cfg.DocBackend)
	}
}

// pipeline builds a submission pipeline over the app's backends.
// requireAsset overrides REQUIRE_IMAGE for callers that never carry one.
func (a *app) pipeline(requireAsset bool) *submission.Pipeline {
	return submission.New(a.docs, a.blobs, submission.Config{
		RequireAsset: requireAsset,
		AssetPrefix:  a.cfg.AssetPrefix,
		StepTimeout:  a.cfg.StepTimeout,
	}, a.logger)
}

func (a *app) service(p *submission.Pipeline) *service.MovieService {
	return service.NewMovieService(p, a.movies, a.blobs, a.cfg.AssetPrefix, a.logger)
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
