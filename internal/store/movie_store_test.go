package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/boxoffice/internal/db"
	"github.com/vbonduro/boxoffice/internal/docstore"
	"github.com/vbonduro/boxoffice/internal/docstore/sqlite"
	"github.com/vbonduro/boxoffice/internal/domain"
)

func openTestDocs(t *testing.T) docstore.DocumentStore {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return sqlite.New(d)
}

func putMovie(t *testing.T, docs docstore.DocumentStore, m *domain.Movie) {
	t.Helper()
	require.NoError(t, docs.CreateOrUpdate(context.Background(), domain.MoviesCollection, m.ID, m.Fields()))
}

func TestMovieStoreGetByID(t *testing.T) {
	docs := openTestDocs(t)
	movies := NewMovieStore(docs)
	ctx := context.Background()

	putMovie(t, docs, &domain.Movie{ID: "m1", Name: "Snitch", Description: "Undercover.", Price: 11.99})

	m, err := movies.GetByID(ctx, "m1")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, &domain.Movie{ID: "m1", Name: "Snitch", Description: "Undercover.", Price: 11.99}, m)
}

func TestMovieStoreGetByID_NotFound(t *testing.T) {
	movies := NewMovieStore(openTestDocs(t))

	m, err := movies.GetByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestMovieStoreGetByID_ReadsLegacyDocument(t *testing.T) {
	docs := openTestDocs(t)
	movies := NewMovieStore(docs)

	// Documents written by the mobile client carry exactly these keys.
	require.NoError(t, docs.CreateOrUpdate(context.Background(), domain.MoviesCollection, "legacy", map[string]any{
		"name":        "Damsel",
		"description": "A young woman is framed.",
		"price":       13.99,
		"imageUrl":    "https://firebasestorage.example/hotels/legacy.jpg",
	}))

	m, err := movies.GetByID(context.Background(), "legacy")
	require.NoError(t, err)
	assert.Equal(t, "https://firebasestorage.example/hotels/legacy.jpg", m.AssetURL)
	assert.Equal(t, 13.99, m.Price)
}

func TestMovieStoreListSortedByName(t *testing.T) {
	docs := openTestDocs(t)
	movies := NewMovieStore(docs)

	putMovie(t, docs, &domain.Movie{ID: "1", Name: "snitch"})
	putMovie(t, docs, &domain.Movie{ID: "2", Name: "Blue Beetle"})
	putMovie(t, docs, &domain.Movie{ID: "3", Name: "Damsel"})

	list, err := movies.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Blue Beetle", list[0].Name)
	assert.Equal(t, "Damsel", list[1].Name)
	assert.Equal(t, "snitch", list[2].Name)
}

func TestMovieStoreSearch(t *testing.T) {
	docs := openTestDocs(t)
	movies := NewMovieStore(docs)

	putMovie(t, docs, &domain.Movie{ID: "1", Name: "John Wick: Chapter 4"})
	putMovie(t, docs, &domain.Movie{ID: "2", Name: "Blue Beetle"})

	results, err := movies.Search(context.Background(), "wick")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "1", results[0].ID)

	results, err = movies.Search(context.Background(), "batman")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMovieStoreDelete(t *testing.T) {
	docs := openTestDocs(t)
	movies := NewMovieStore(docs)
	ctx := context.Background()

	putMovie(t, docs, &domain.Movie{ID: "1", Name: "Atlas"})
	require.NoError(t, movies.Delete(ctx, "1"))

	m, err := movies.GetByID(ctx, "1")
	require.NoError(t, err)
	assert.Nil(t, m)

	assert.ErrorIs(t, movies.Delete(ctx, "1"), docstore.ErrNotFound)
}
