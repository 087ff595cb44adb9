package web

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/vbonduro/boxoffice/internal/domain"
)

const maxPosterSize = 50 * 1024 * 1024 // 50 MB

var (
	errUnsupportedImage = errors.New("unsupported image format")
	errImageTooLarge    = errors.New("image too large")
)

// allowedImageTypes is the set of MIME types accepted for uploaded posters.
// net/http.DetectContentType handles JPEG, PNG, and GIF via magic-byte
// sniffing. WebP is detected separately because the WHATWG sniff spec (and
// therefore the stdlib) does not include a WebP signature.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// isWebP reports whether data is a WebP image (RIFF container with "WEBP" at
// offset 8).
func isWebP(data []byte) bool {
	return len(data) >= 12 &&
		string(data[0:4]) == "RIFF" &&
		string(data[8:12]) == "WEBP"
}

// allowedImageMIME returns the detected MIME type and true if the data is an
// accepted image format, or ("", false) otherwise.
func allowedImageMIME(data []byte) (string, bool) {
	if isWebP(data) {
		return "image/webp", true
	}
	mime := http.DetectContentType(data)
	if allowedImageTypes[mime] {
		return mime, true
	}
	return "", false
}

// readImage returns the "image" file of an already parsed multipart form,
// or nil when the form has none.
func readImage(r *http.Request, logger *slog.Logger) (*domain.Asset, error) {
	file, hdr, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read image field: %w", err)
	}
	defer closeWithLog(file, "upload file", logger)

	if hdr.Size > maxPosterSize {
		return nil, errImageTooLarge
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	mimeType, ok := allowedImageMIME(data)
	if !ok {
		return nil, errUnsupportedImage
	}
	return &domain.Asset{Data: data, MimeType: mimeType}, nil
}

// closeWithLog closes c and logs any error, using label to identify the resource.
func closeWithLog(c io.Closer, label string, logger *slog.Logger) {
	if err := c.Close(); err != nil {
		logger.Error("failed to close resource", "label", label, "error", err)
	}
}
