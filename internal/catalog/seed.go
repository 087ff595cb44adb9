package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/vbonduro/boxoffice/internal/domain"
)

// Submitter is satisfied by *submission.Pipeline.
type Submitter interface {
	Submit(ctx context.Context, req domain.SubmissionRequest) (*domain.Movie, error)
}

// Result is the outcome of seeding one entry. Movie may be set even when Err
// is, if the record was written before a later step failed.
type Result struct {
	Entry Entry
	Movie *domain.Movie
	Err   error
}

// Seed submits every entry, at most concurrency at a time. Entries are
// independent: one failing does not stop the others. The returned error joins
// all per-entry failures; results are in entry order.
func Seed(ctx context.Context, sub Submitter, entries []Entry, concurrency int, logger *slog.Logger) ([]Result, error) {
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]Result, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, entry := range entries {
		g.Go(func() error {
			results[i] = seedOne(gctx, sub, entry)
			if results[i].Err != nil {
				logger.Error("seed entry failed", "name", entry.Name, "error", results[i].Err)
			} else {
				logger.Info("seed entry added", "name", entry.Name, "movie_id", results[i].Movie.ID)
			}
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Entry.Name, r.Err))
		}
	}
	return results, errors.Join(errs...)
}

func seedOne(ctx context.Context, sub Submitter, entry Entry) Result {
	req, err := entry.Request()
	if err != nil {
		return Result{Entry: entry, Err: err}
	}
	movie, err := sub.Submit(ctx, req)
	return Result{Entry: entry, Movie: movie, Err: err}
}
