package store

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/vbonduro/boxoffice/internal/docstore"
	"github.com/vbonduro/boxoffice/internal/domain"
)

// MovieStore reads and removes movie records kept in a document store.
// Records are created and linked to their posters by the submission pipeline.
type MovieStore struct {
	docs docstore.DocumentStore
}

func NewMovieStore(docs docstore.DocumentStore) *MovieStore {
	return &MovieStore{docs: docs}
}

func (s *MovieStore) GetByID(ctx context.Context, id string) (*domain.Movie, error) {
	doc, err := s.docs.Get(ctx, domain.MoviesCollection, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get movie: %w", err)
	}
	if doc == nil {
		return nil, nil
	}
	return domain.MovieFromFields(doc.ID, doc.Fields)
}

// List returns every movie ordered by name, case-insensitively.
func (s *MovieStore) List(ctx context.Context) ([]*domain.Movie, error) {
	docs, err := s.docs.List(ctx, domain.MoviesCollection)
	if err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}

	movies := make([]*domain.Movie, 0, len(docs))
	for _, doc := range docs {
		m, err := domain.MovieFromFields(doc.ID, doc.Fields)
		if err != nil {
			return nil, fmt.Errorf("failed to decode movie: %w", err)
		}
		movies = append(movies, m)
	}

	slices.SortStableFunc(movies, func(a, b *domain.Movie) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return movies, nil
}

// Search returns movies whose name contains query, ignoring case.
func (s *MovieStore) Search(ctx context.Context, query string) ([]*domain.Movie, error) {
	movies, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	matches := movies[:0]
	for _, m := range movies {
		if strings.Contains(strings.ToLower(m.Name), needle) {
			matches = append(matches, m)
		}
	}
	return matches, nil
}

func (s *MovieStore) Delete(ctx context.Context, id string) error {
	if err := s.docs.Delete(ctx, domain.MoviesCollection, id); err != nil {
		return fmt.Errorf("failed to delete movie: %w", err)
	}
	return nil
}
