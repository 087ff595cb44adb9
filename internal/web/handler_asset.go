package web

import (
	"errors"
	"io"
	"net/http"

	"github.com/vbonduro/boxoffice/internal/blobstore"
)

func (s *Server) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("path")

	reader, mimeType, err := s.blobs.Get(r.Context(), key)
	if err != nil {
		if !errors.Is(err, blobstore.ErrNotFound) {
			s.logger.Warn("get asset failed", "path", key, "error", err)
		}
		http.NotFound(w, r)
		return
	}
	defer closeWithLog(reader, "asset reader", s.logger)

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := io.Copy(w, reader); err != nil {
		s.logger.Error("write asset failed", "path", key, "error", err)
	}
}
