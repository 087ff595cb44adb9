package docstore

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by updates and Delete when the document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrConflict is returned by UpdateIfEqual when the guarded field no longer
	// holds the expected value.
	ErrConflict = errors.New("document field changed")
)

// Document is one stored record: an id within a collection and its flat fields.
type Document struct {
	ID     string
	Fields map[string]any
}

// DocumentStore is a collection-oriented store of flat JSON-like documents.
//
// CreateOrUpdate merges fields into the document, creating it when absent;
// fields not named in the call keep their stored values. Update does the same
// but fails with ErrNotFound instead of creating. UpdateIfEqual merges only
// while the text field named by field equals want, a missing field reading as
// "", and fails with ErrConflict otherwise; the check and the write are one
// atomic statement. Get returns (nil, nil) when the document does not exist.
type DocumentStore interface {
	CreateOrUpdate(ctx context.Context, collection, id string, fields map[string]any) error
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	UpdateIfEqual(ctx context.Context, collection, id, field, want string, fields map[string]any) error
	Get(ctx context.Context, collection, id string) (*Document, error)
	List(ctx context.Context, collection string) ([]*Document, error)
	Delete(ctx context.Context, collection, id string) error
}
