package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/vbonduro/boxoffice/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestLoadResolvesImagePaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
movies:
  - name: Snitch
    description: A father goes undercover.
    price: 11.99
    image: posters/snitch.png
  - name: Atlas
    description: A data analyst.
    price: "9"
    image: /abs/atlas.jpg
`), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	require.Len(t, c.Movies, 2)

	assert.Equal(t, "11.99", c.Movies[0].Price)
	assert.Equal(t, filepath.Join(dir, "posters/snitch.png"), c.Movies[0].Image)
	assert.Equal(t, "/abs/atlas.jpg", c.Movies[1].Image)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("movies: [\n"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestWriteThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "default.yaml")
	require.NoError(t, Default().Write(path))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Movies, c.Movies)
}

func TestEntryRequestReadsImage(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "poster.png")
	require.NoError(t, os.WriteFile(img, []byte("png bytes"), 0644))

	req, err := Entry{Name: "Damsel", Description: "d", Price: "13.99", Image: img}.Request()
	require.NoError(t, err)
	require.NotNil(t, req.Asset)
	assert.Equal(t, []byte("png bytes"), req.Asset.Data)
	assert.Equal(t, "image/png", req.Asset.MimeType)
	assert.Equal(t, "13.99", req.PriceText)

	_, err = Entry{Name: "Missing", Image: filepath.Join(dir, "nope.jpg")}.Request()
	assert.Error(t, err)
}

func TestMissing(t *testing.T) {
	existing := []*domain.Movie{{Name: "snitch"}, {Name: "Damsel "}}
	out := Missing(Default().Movies, existing)

	names := make([]string, 0, len(out))
	for _, e := range out {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"Blue Beetle", "John Wick: Chapter 4"}, names)
}

// countingSubmitter records peak concurrency and fails for one name.
type countingSubmitter struct {
	mu       sync.Mutex
	inFlight int32
	peak     int32
	failName string
	seen     []string
}

func (c *countingSubmitter) Submit(_ context.Context, req domain.SubmissionRequest) (*domain.Movie, error) {
	n := atomic.AddInt32(&c.inFlight, 1)
	defer atomic.AddInt32(&c.inFlight, -1)
	for {
		p := atomic.LoadInt32(&c.peak)
		if n <= p || atomic.CompareAndSwapInt32(&c.peak, p, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)

	c.mu.Lock()
	c.seen = append(c.seen, req.Name)
	c.mu.Unlock()

	if req.Name == c.failName {
		return nil, errors.New("backend down")
	}
	return &domain.Movie{ID: "id-" + req.Name, Name: req.Name}, nil
}

func TestSeedBoundedAndIndependent(t *testing.T) {
	sub := &countingSubmitter{failName: "Damsel"}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	results, err := Seed(context.Background(), sub, Default().Movies, 2, logger)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Damsel: backend down")
	require.Len(t, results, 4)
	assert.Len(t, sub.seen, 4, "a failure must not stop the other entries")
	assert.LessOrEqual(t, atomic.LoadInt32(&sub.peak), int32(2))

	for _, r := range results {
		if r.Entry.Name == "Damsel" {
			assert.Error(t, r.Err)
			continue
		}
		require.NoError(t, r.Err)
		assert.Equal(t, "id-"+r.Entry.Name, r.Movie.ID)
	}
}

func TestSeedNothing(t *testing.T) {
	results, err := Seed(context.Background(), &countingSubmitter{}, nil, 4, slog.Default())
	assert.NoError(t, err)
	assert.Empty(t, results)
}
