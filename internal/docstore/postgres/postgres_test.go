package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/boxoffice/internal/docstore"
)

// openTestStore connects to the database named by POSTGRES_TEST_DSN and skips
// the test when it is unset. Each test writes to its own collection.
func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}

	s, err := Connect(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(s.Close)

	collection := "test_" + uuid.NewString()
	t.Cleanup(func() {
		_, _ = s.pool.Exec(context.Background(), `DELETE FROM documents WHERE collection = $1`, collection)
	})
	return s, collection
}

func TestStoreCreateOrUpdateMerges(t *testing.T) {
	s, collection := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateOrUpdate(ctx, collection, "m1", map[string]any{
		"name":     "Blue Beetle",
		"price":    12.49,
		"imageUrl": "",
	}))
	require.NoError(t, s.CreateOrUpdate(ctx, collection, "m1", map[string]any{
		"imageUrl": "http://assets/posters/m1.jpg",
	}))

	doc, err := s.Get(ctx, collection, "m1")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "Blue Beetle", doc.Fields["name"])
	assert.Equal(t, 12.49, doc.Fields["price"])
	assert.Equal(t, "http://assets/posters/m1.jpg", doc.Fields["imageUrl"])
}

func TestStoreUpdateAndDelete_NotFound(t *testing.T) {
	s, collection := openTestStore(t)
	ctx := context.Background()

	assert.ErrorIs(t, s.Update(ctx, collection, "missing", map[string]any{"a": 1}), docstore.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, collection, "missing"), docstore.ErrNotFound)

	doc, err := s.Get(ctx, collection, "missing")
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestStoreList(t *testing.T) {
	s, collection := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateOrUpdate(ctx, collection, "a", map[string]any{"name": "A"}))
	require.NoError(t, s.CreateOrUpdate(ctx, collection, "b", map[string]any{"name": "B"}))

	docs, err := s.List(ctx, collection)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestStoreUpdateIfEqual(t *testing.T) {
	s, collection := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateOrUpdate(ctx, collection, "m1", map[string]any{"name": "Damsel", "imageUrl": ""}))

	require.NoError(t, s.UpdateIfEqual(ctx, collection, "m1", "imageUrl", "", map[string]any{"imageUrl": "a.jpg"}))
	err := s.UpdateIfEqual(ctx, collection, "m1", "imageUrl", "", map[string]any{"imageUrl": "b.png"})
	assert.ErrorIs(t, err, docstore.ErrConflict)

	doc, err := s.Get(ctx, collection, "m1")
	require.NoError(t, err)
	assert.Equal(t, "a.jpg", doc.Fields["imageUrl"])

	err = s.UpdateIfEqual(ctx, collection, "missing", "imageUrl", "", map[string]any{"imageUrl": "x"})
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}
