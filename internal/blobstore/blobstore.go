package blobstore

import (
	"context"
	"errors"
	"io"
	"path"
	"path/filepath"
	"strings"
)

var ErrNotFound = errors.New("blob not found")

// BlobStore holds binary assets addressed by slash-separated paths.
// ResolveURL returns the public retrieval URL of a previously uploaded path.
type BlobStore interface {
	Upload(ctx context.Context, path, mimeType string, r io.Reader) error
	ResolveURL(ctx context.Context, path string) (string, error)
	Get(ctx context.Context, path string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, path string) error
}

// ObjectPath returns the id-addressed location of an entity's asset,
// e.g. "posters/<id>.jpg".
func ObjectPath(prefix, id, mimeType string) string {
	return path.Join(prefix, id+MimeTypeToExt(mimeType))
}

func MimeTypeToExt(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

func ExtToMimeType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
