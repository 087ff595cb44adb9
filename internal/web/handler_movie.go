package web

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/vbonduro/boxoffice/internal/docstore"
	"github.com/vbonduro/boxoffice/internal/domain"
	"github.com/vbonduro/boxoffice/internal/submission"
)

type violationsBody struct {
	Violations submission.Violations `json:"violations"`
}

type acceptedBody struct {
	Status string `json:"status"`
}

func (s *Server) handleListMovies(w http.ResponseWriter, r *http.Request) {
	movies, err := s.service.SearchMovies(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to list movies")
		s.logger.Error("list movies failed", "error", err)
		return
	}
	if movies == nil {
		movies = []*domain.Movie{}
	}
	s.writeJSON(w, http.StatusOK, movies)
}

func (s *Server) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	movie, err := s.service.GetMovie(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to get movie")
		s.logger.Error("get movie failed", "movie_id", id, "error", err)
		return
	}
	if movie == nil {
		s.writeError(w, http.StatusNotFound, "movie not found")
		return
	}
	s.writeJSON(w, http.StatusOK, movie)
}

func (s *Server) handleAddMovie(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}

	asset, err := readImage(r, s.logger)
	if err != nil {
		s.writeImageError(w, err)
		return
	}

	req := domain.SubmissionRequest{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		PriceText:   r.FormValue("price"),
		Asset:       asset,
	}

	if prefersAsync(r) {
		s.addMovieAsync(w, r, req)
		return
	}

	movie, err := s.service.AddMovie(r.Context(), req)
	if err != nil {
		s.writeSubmissionError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, movie)
}

// addMovieAsync answers 202 once the form is valid and leaves the backend
// steps running after the response. The submission outlives the request, so
// a client disconnect does not cancel it; per-step timeouts still apply.
func (s *Server) addMovieAsync(w http.ResponseWriter, r *http.Request, req domain.SubmissionRequest) {
	if violations := s.service.Validate(req); len(violations) > 0 {
		s.writeJSON(w, http.StatusUnprocessableEntity, violationsBody{Violations: violations})
		return
	}

	s.inflight.Add(1)
	s.service.AddMovieAsync(context.WithoutCancel(r.Context()), req, func(o submission.Outcome) {
		defer s.inflight.Done()
		if o.Err == nil {
			s.logger.Info("background submission complete", "movie_id", o.Movie.ID)
		}
	})
	s.writeJSON(w, http.StatusAccepted, acceptedBody{Status: "accepted"})
}

// prefersAsync reports whether the client sent Prefer: respond-async (RFC 7240).
func prefersAsync(r *http.Request) bool {
	for _, v := range r.Header.Values("Prefer") {
		for _, pref := range strings.Split(v, ",") {
			if strings.EqualFold(strings.TrimSpace(pref), "respond-async") {
				return true
			}
		}
	}
	return false
}

func (s *Server) handleAttachImage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.parseForm(w, r) {
		return
	}

	asset, err := readImage(r, s.logger)
	if err != nil {
		s.writeImageError(w, err)
		return
	}

	movie, err := s.service.AttachPoster(r.Context(), id, asset)
	if err != nil {
		s.writeSubmissionError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, movie)
}

func (s *Server) handleDeleteMovie(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	movie, err := s.service.GetMovie(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to get movie")
		s.logger.Error("get movie failed", "movie_id", id, "error", err)
		return
	}
	if movie == nil {
		s.writeError(w, http.StatusNotFound, "movie not found")
		return
	}

	if err := s.service.DeleteMovie(r.Context(), id); err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to delete movie")
		s.logger.Error("delete movie failed", "movie_id", id, "error", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parseForm reads a multipart body of at most one poster plus form fields,
// writing the error response itself when it fails.
func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxPosterSize+1<<20)
	err := r.ParseMultipartForm(maxPosterSize)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		s.writeError(w, http.StatusRequestEntityTooLarge, errImageTooLarge.Error())
	} else {
		s.writeError(w, http.StatusBadRequest, "failed to parse form")
	}
	return false
}

func (s *Server) writeImageError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errUnsupportedImage):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, errImageTooLarge):
		s.writeError(w, http.StatusRequestEntityTooLarge, err.Error())
	default:
		s.writeError(w, http.StatusBadRequest, "failed to read image")
		s.logger.Error("read upload failed", "error", err)
	}
}

// writeSubmissionError maps a pipeline failure to a response. Validation
// problems are the client's to fix; everything else is a backend failure,
// reported with the record id when one was created so the client can retry
// the image upload on its own.
func (s *Server) writeSubmissionError(w http.ResponseWriter, err error) {
	var se *submission.Error
	if !errors.As(err, &se) {
		s.writeError(w, http.StatusInternalServerError, "submission failed")
		s.logger.Error("submission failed", "error", err)
		return
	}

	switch {
	case se.Kind == submission.KindValidation:
		s.writeJSON(w, http.StatusUnprocessableEntity, violationsBody{Violations: se.Violations})
	case errors.Is(err, docstore.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "movie not found")
	default:
		s.writeJSON(w, http.StatusBadGateway, errorBody{
			Error: se.Kind.String() + " failed",
			Kind:  se.Kind.String(),
			ID:    se.MovieID,
		})
	}
}
