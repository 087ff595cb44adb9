package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path"

	"github.com/vbonduro/boxoffice/internal/blobstore"
	"github.com/vbonduro/boxoffice/internal/domain"
	"github.com/vbonduro/boxoffice/internal/submission"
)

// movieRepository is the subset of store.MovieStore that MovieService requires.
type movieRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Movie, error)
	List(ctx context.Context) ([]*domain.Movie, error)
	Search(ctx context.Context, query string) ([]*domain.Movie, error)
	Delete(ctx context.Context, id string) error
}

// submitter is the subset of submission.Pipeline that MovieService requires.
type submitter interface {
	Submit(ctx context.Context, req domain.SubmissionRequest) (*domain.Movie, error)
	SubmitAsync(ctx context.Context, req domain.SubmissionRequest, done func(submission.Outcome))
	Attach(ctx context.Context, movieID string, asset *domain.Asset) (*domain.Movie, error)
	Validator() submission.Validator
}

type MovieService struct {
	pipeline    submitter
	movieStore  movieRepository
	blobs       blobstore.BlobStore
	assetPrefix string
	logger      *slog.Logger
}

func NewMovieService(
	pipeline submitter,
	movieStore movieRepository,
	blobs blobstore.BlobStore,
	assetPrefix string,
	logger *slog.Logger,
) *MovieService {
	if assetPrefix == "" {
		assetPrefix = submission.DefaultAssetPrefix
	}
	return &MovieService{
		pipeline:    pipeline,
		movieStore:  movieStore,
		blobs:       blobs,
		assetPrefix: assetPrefix,
		logger:      logger,
	}
}

// AddMovie submits a new listing and waits for the pipeline to finish.
func (s *MovieService) AddMovie(ctx context.Context, req domain.SubmissionRequest) (*domain.Movie, error) {
	return s.pipeline.Submit(ctx, req)
}

// AddMovieAsync submits a new listing without waiting; onDone receives the result.
func (s *MovieService) AddMovieAsync(ctx context.Context, req domain.SubmissionRequest, onDone func(submission.Outcome)) {
	s.pipeline.SubmitAsync(ctx, req, onDone)
}

// Validate checks req the way AddMovie would, without touching any backend.
func (s *MovieService) Validate(req domain.SubmissionRequest) submission.Violations {
	return s.pipeline.Validator().Validate(req)
}

// AttachPoster links a poster to a movie whose earlier upload did not complete.
func (s *MovieService) AttachPoster(ctx context.Context, movieID string, asset *domain.Asset) (*domain.Movie, error) {
	return s.pipeline.Attach(ctx, movieID, asset)
}

func (s *MovieService) GetMovie(ctx context.Context, id string) (*domain.Movie, error) {
	return s.movieStore.GetByID(ctx, id)
}

func (s *MovieService) ListMovies(ctx context.Context) ([]*domain.Movie, error) {
	return s.movieStore.List(ctx)
}

func (s *MovieService) SearchMovies(ctx context.Context, query string) ([]*domain.Movie, error) {
	if query == "" {
		return s.movieStore.List(ctx)
	}
	return s.movieStore.Search(ctx, query)
}

// DeleteMovie removes the record and then, best effort, its poster blob.
func (s *MovieService) DeleteMovie(ctx context.Context, id string) error {
	movie, err := s.movieStore.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get movie: %w", err)
	}
	if movie == nil {
		return fmt.Errorf("movie not found")
	}

	if err := s.movieStore.Delete(ctx, id); err != nil {
		return err
	}

	if key, ok := s.posterKey(movie); ok {
		if err := s.blobs.Delete(ctx, key); err != nil && !errors.Is(err, blobstore.ErrNotFound) {
			s.logger.Error("failed to delete poster", "movie_id", id, "path", key, "error", err)
		}
	}
	return nil
}

// posterKey recovers the blob path of a poster uploaded by this service from
// the record's URL. Posters hosted elsewhere are left alone.
func (s *MovieService) posterKey(m *domain.Movie) (string, bool) {
	if m.AssetURL == "" {
		return "", false
	}
	u, err := url.Parse(m.AssetURL)
	if err != nil {
		return "", false
	}
	base := path.Base(u.Path)
	if base != m.ID+path.Ext(base) {
		return "", false
	}
	return path.Join(s.assetPrefix, base), true
}
