package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/rs/cors"

	"github.com/vbonduro/boxoffice/internal/blobstore"
	"github.com/vbonduro/boxoffice/internal/service"
)

// AssetsPath is where uploaded posters are served; PUBLIC_BASE_URL should end in it.
const AssetsPath = "/assets/"

type Server struct {
	service *service.MovieService
	blobs   blobstore.BlobStore
	mux     *http.ServeMux
	handler http.Handler
	logger  *slog.Logger

	// inflight counts submissions accepted with Prefer: respond-async.
	inflight sync.WaitGroup
}

func NewServer(svc *service.MovieService, blobs blobstore.BlobStore, allowedOrigins []string, logger *slog.Logger) *Server {
	s := &Server{
		service: svc,
		blobs:   blobs,
		mux:     http.NewServeMux(),
		logger:  logger,
	}
	s.registerRoutes()

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	s.handler = requestLogger(logger, c.Handler(securityHeaders(s.mux)))
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/movies", http.StatusSeeOther)
	})
	s.mux.HandleFunc("GET /movies", s.handleListMovies)
	s.mux.HandleFunc("POST /movies", s.handleAddMovie)
	s.mux.HandleFunc("GET /movies/{id}", s.handleGetMovie)
	s.mux.HandleFunc("DELETE /movies/{id}", s.handleDeleteMovie)
	s.mux.HandleFunc("POST /movies/{id}/image", s.handleAttachImage)
	s.mux.HandleFunc("GET "+AssetsPath+"{path...}", s.handleGetAsset)
}

// securityHeaders sets the browser hardening headers on every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'none'; img-src 'self'")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// HTTPServer returns an *http.Server for addr with the timeouts the API expects.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}

// Wait blocks until every background submission has finished. Call it after
// the http.Server has shut down.
func (s *Server) Wait() {
	s.inflight.Wait()
}

// writeJSON encodes v with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("write json failed", "error", err)
	}
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	ID    string `json:"id,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorBody{Error: msg})
}
