package submission

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/vbonduro/boxoffice/internal/blobstore"
	"github.com/vbonduro/boxoffice/internal/docstore"
	"github.com/vbonduro/boxoffice/internal/domain"
)

const (
	DefaultAssetPrefix = "posters"
	DefaultStepTimeout = 30 * time.Second
)

// Config tunes a Pipeline. Zero values select the defaults.
type Config struct {
	// RequireAsset rejects submissions without an image, as the mobile form did.
	RequireAsset bool
	AssetPrefix  string
	// StepTimeout bounds each call to the document or blob store.
	StepTimeout time.Duration
	// NewID generates record ids; uuid.NewString when nil.
	NewID func() string
	// OnState, if set, is called on every state change of every submission.
	OnState func(movieID string, state State)
}

// Pipeline validates a movie submission, writes the record, uploads its
// poster and links the poster URL back into the record. It holds no
// per-submission state, so one Pipeline serves concurrent submissions.
type Pipeline struct {
	docs      docstore.DocumentStore
	blobs     blobstore.BlobStore
	validator Validator
	prefix    string
	timeout   time.Duration
	newID     func() string
	onState   func(string, State)
	logger    *slog.Logger
}

func New(docs docstore.DocumentStore, blobs blobstore.BlobStore, cfg Config, logger *slog.Logger) *Pipeline {
	p := &Pipeline{
		docs:      docs,
		blobs:     blobs,
		validator: Validator{RequireAsset: cfg.RequireAsset},
		prefix:    cfg.AssetPrefix,
		timeout:   cfg.StepTimeout,
		newID:     cfg.NewID,
		onState:   cfg.OnState,
		logger:    logger,
	}
	if p.prefix == "" {
		p.prefix = DefaultAssetPrefix
	}
	if p.timeout <= 0 {
		p.timeout = DefaultStepTimeout
	}
	if p.newID == nil {
		p.newID = uuid.NewString
	}
	return p
}

// Validator returns the form validator the pipeline applies.
func (p *Pipeline) Validator() Validator {
	return p.validator
}

// attempt is the working state of one pipeline run.
type attempt struct {
	movie     domain.Movie
	asset     *domain.Asset
	assetPath string
	assetURL  string
}

func hasNoAsset(a *attempt) bool    { return a.asset == nil }
func hasNoAssetURL(a *attempt) bool { return a.assetURL == "" }

// Submit runs one submission to completion. On success it returns the final
// record. On failure it returns a *Error; the record is returned alongside it
// whenever it was already written, with an empty AssetURL.
func (p *Pipeline) Submit(ctx context.Context, req domain.SubmissionRequest) (*domain.Movie, error) {
	a := &attempt{asset: req.Asset}
	enter := p.announcer(a)

	enter(StateValidating)
	if violations := p.validator.Validate(req); len(violations) > 0 {
		enter(StateFailed)
		p.logger.Info("submission rejected", "violations", violations.String())
		return nil, &Error{Kind: KindValidation, State: StateValidating, Violations: violations}
	}
	if a.asset != nil && len(a.asset.Data) == 0 {
		a.asset = nil
	}

	price, _ := ParsePrice(req.PriceText)
	a.movie = domain.Movie{
		Name:        req.Name,
		Description: req.Description,
		Price:       price,
	}

	p.logger.Info("submission started", "name", req.Name, "has_asset", a.asset != nil)
	return p.finish(ctx, a, enter, []step[attempt]{
		{state: StateWriting, kind: KindPersistence, run: p.writeEntity},
		{state: StateUploading, kind: KindUpload, skip: hasNoAsset, run: p.uploadAsset},
		{state: StateUploading, kind: KindURLResolution, skip: hasNoAsset, run: p.resolveAssetURL},
		{state: StateReconciling, kind: KindReconciliation, skip: hasNoAssetURL, run: p.reconcile},
	})
}

// Outcome is what SubmitAsync hands to its completion callback.
type Outcome struct {
	Movie *domain.Movie
	Err   error
}

// SubmitAsync runs Submit on its own goroutine and calls done exactly once
// with the result. done may be nil.
func (p *Pipeline) SubmitAsync(ctx context.Context, req domain.SubmissionRequest, done func(Outcome)) {
	go func() {
		movie, err := p.Submit(ctx, req)
		if done != nil {
			done(Outcome{Movie: movie, Err: err})
		}
	}()
}

// Attach uploads asset for an existing record whose asset URL is still empty
// and links it, running only the upload and reconcile steps. It is the manual
// retry path after an upload, resolution or reconciliation failure.
func (p *Pipeline) Attach(ctx context.Context, movieID string, asset *domain.Asset) (*domain.Movie, error) {
	a := &attempt{asset: asset}
	a.movie.ID = movieID
	enter := p.announcer(a)

	if asset == nil || len(asset.Data) == 0 {
		enter(StateFailed)
		return nil, &Error{Kind: KindValidation, State: StateValidating, MovieID: movieID,
			Violations: Violations{FieldImage: msgRequired}}
	}

	movie, err := p.loadEntity(ctx, movieID)
	if err != nil {
		enter(StateFailed)
		return nil, &Error{Kind: KindPersistence, State: StateUploading, MovieID: movieID, Err: err}
	}
	if movie.AssetURL != "" {
		enter(StateFailed)
		return movie, &Error{Kind: KindValidation, State: StateValidating, MovieID: movieID,
			Violations: Violations{FieldImage: msgAttached}}
	}
	a.movie = *movie

	p.logger.Info("attach started", "movie_id", movieID)
	return p.finish(ctx, a, enter, []step[attempt]{
		{state: StateUploading, kind: KindUpload, run: p.uploadAsset},
		{state: StateUploading, kind: KindURLResolution, run: p.resolveAssetURL},
		{state: StateReconciling, kind: KindReconciliation, run: p.reconcile},
	})
}

func (p *Pipeline) finish(ctx context.Context, a *attempt, enter func(State), steps []step[attempt]) (*domain.Movie, error) {
	state, kind, err := runChain(ctx, a, steps, enter)

	var movie *domain.Movie
	if a.movie.ID != "" {
		m := a.movie
		movie = &m
	}

	if err != nil {
		enter(StateFailed)
		var violations Violations
		if errors.Is(err, docstore.ErrConflict) {
			kind = KindValidation
			violations = Violations{FieldImage: msgAttached}
		}
		p.logger.Error("submission failed",
			"movie_id", a.movie.ID,
			"state", state.String(),
			"kind", kind.String(),
			"error", err,
		)
		return movie, &Error{Kind: kind, State: state, MovieID: a.movie.ID, Violations: violations, Err: err}
	}

	p.logger.Info("submission complete", "movie_id", a.movie.ID, "asset_url", a.movie.AssetURL)
	return movie, nil
}

// announcer reports each state once, in order, to the log and to OnState.
func (p *Pipeline) announcer(a *attempt) func(State) {
	last := State(-1)
	return func(s State) {
		if s == last {
			return
		}
		last = s
		p.logger.Debug("submission state", "movie_id", a.movie.ID, "state", s.String())
		if p.onState != nil {
			p.onState(a.movie.ID, s)
		}
	}
}

func (p *Pipeline) stepContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, p.timeout)
}

func (p *Pipeline) writeEntity(ctx context.Context, a *attempt) error {
	ctx, cancel := p.stepContext(ctx)
	defer cancel()

	m := a.movie
	m.ID = p.newID()
	m.AssetURL = ""
	if err := p.docs.CreateOrUpdate(ctx, domain.MoviesCollection, m.ID, m.Fields()); err != nil {
		return err
	}
	a.movie = m
	p.logger.Debug("movie record written", "movie_id", m.ID)
	return nil
}

func (p *Pipeline) uploadAsset(ctx context.Context, a *attempt) error {
	ctx, cancel := p.stepContext(ctx)
	defer cancel()

	objectPath := blobstore.ObjectPath(p.prefix, a.movie.ID, a.asset.MimeType)
	if err := p.blobs.Upload(ctx, objectPath, a.asset.MimeType, bytes.NewReader(a.asset.Data)); err != nil {
		return err
	}
	a.assetPath = objectPath
	p.logger.Debug("asset uploaded", "movie_id", a.movie.ID, "path", objectPath, "bytes", len(a.asset.Data))
	return nil
}

func (p *Pipeline) resolveAssetURL(ctx context.Context, a *attempt) error {
	ctx, cancel := p.stepContext(ctx)
	defer cancel()

	u, err := p.blobs.ResolveURL(ctx, a.assetPath)
	if err != nil {
		return err
	}
	if u == "" {
		return fmt.Errorf("blob store returned an empty url for %s", a.assetPath)
	}
	a.assetURL = u
	return nil
}

func (p *Pipeline) reconcile(ctx context.Context, a *attempt) error {
	ctx, cancel := p.stepContext(ctx)
	defer cancel()

	err := p.docs.UpdateIfEqual(ctx, domain.MoviesCollection, a.movie.ID, domain.FieldAssetURL, "", map[string]any{
		domain.FieldAssetURL: a.assetURL,
	})
	if errors.Is(err, docstore.ErrConflict) {
		p.discardLostAsset(ctx, a)
		return err
	}
	if err != nil {
		return err
	}
	a.movie.AssetURL = a.assetURL
	return nil
}

// discardLostAsset runs after another attach linked its poster first. The
// attempt adopts the stored record and deletes its own blob unless the winner
// links the same path.
func (p *Pipeline) discardLostAsset(ctx context.Context, a *attempt) {
	current, err := p.loadEntity(ctx, a.movie.ID)
	if err != nil {
		p.logger.Error("failed to reload movie after conflict", "movie_id", a.movie.ID, "error", err)
		return
	}
	a.movie = *current
	if current.AssetURL == a.assetURL {
		return
	}
	if err := p.blobs.Delete(ctx, a.assetPath); err != nil && !errors.Is(err, blobstore.ErrNotFound) {
		p.logger.Error("failed to delete unlinked asset", "movie_id", a.movie.ID, "path", a.assetPath, "error", err)
		return
	}
	p.logger.Warn("asset already attached, upload discarded", "movie_id", a.movie.ID, "path", a.assetPath)
}

func (p *Pipeline) loadEntity(ctx context.Context, movieID string) (*domain.Movie, error) {
	ctx, cancel := p.stepContext(ctx)
	defer cancel()

	doc, err := p.docs.Get(ctx, domain.MoviesCollection, movieID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("movie %s: %w", movieID, docstore.ErrNotFound)
	}
	return domain.MovieFromFields(doc.ID, doc.Fields)
}

// IsRecoverable reports whether err left a record behind that Attach can complete.
func IsRecoverable(err error) bool {
	var se *Error
	if !errors.As(err, &se) || se.MovieID == "" {
		return false
	}
	switch se.Kind {
	case KindUpload, KindURLResolution, KindReconciliation:
		return true
	default:
		return false
	}
}
