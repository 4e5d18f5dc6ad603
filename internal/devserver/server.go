// Package devserver is a local stand-in for the remote travel journal API,
// so the client can be developed and exercised without the production
// backend. It persists to a SQLite file and a photo directory on disk, and
// implements the same REST surface the client consumes: JWT-authenticated
// trip/experience CRUD, multipart photo upload, and photo retrieval.
//
// It is a development tool: single-node, no migrations, no rate limiting.
package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/pkordes/travel-journal/internal/domain"
	"github.com/pkordes/travel-journal/internal/middleware"
	"github.com/pkordes/travel-journal/spec"
)

// Request body limits. Photo uploads get a larger budget than JSON routes.
const (
	maxJSONBody  = 1 << 20
	maxPhotoBody = 20 << 20
)

// Server holds the dev server's dependencies. Construct with NewServer and
// mount Handler on an http.Server.
type Server struct {
	store    *Store
	jwt      *jwtManager
	photoDir string
	log      *slog.Logger
}

// NewServer constructs a Server. photoDir must exist and be writable; token
// lifetime is generous because this server only ever runs locally.
func NewServer(store *Store, jwtSecret, photoDir string, log *slog.Logger) *Server {
	return &Server{
		store:    store,
		jwt:      newJWTManager(jwtSecret, 30*24*time.Hour),
		photoDir: photoDir,
		log:      log,
	}
}

// Handler returns the routed HTTP handler with logging and panic recovery
// applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.NewSlogLogger(s.log))
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/openapi.yaml", s.handleOpenAPI)
	r.Get("/photos/{name}", s.handleServePhoto)

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewMaxBodySizeHandler(maxJSONBody))
		r.Post("/api/auth/register", s.handleRegister)
		r.Post("/api/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/api/trip/user", s.handleListTrips)
			r.Get("/api/trip/{id}", s.handleGetTrip)
			r.Post("/api/trip", s.handleCreateTrip)
			r.Put("/api/trip", s.handleUpdateTrip)
			r.Delete("/api/trip/{id}", s.handleDeleteTrip)

			r.Get("/api/experience/{id}", s.handleGetExperience)
			r.Post("/api/experience", s.handleCreateExperience)
			r.Put("/api/experience", s.handleUpdateExperience)
			r.Delete("/api/experience/{id}", s.handleDeleteExperience)

			r.Delete("/api/photo", s.handleDeletePhoto)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewMaxBodySizeHandler(maxPhotoBody))
		r.Use(s.requireAuth)
		r.Post("/api/photo", s.handleUploadPhoto)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.Write(spec.OpenAPI)
}

// ---- response helpers ------------------------------------------------------

// errorBody is the error envelope every non-2xx JSON response uses.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, message string) {
	s.writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

// serverError logs the cause and answers 500 without leaking internals.
func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.ErrorContext(r.Context(), "internal error", "path", r.URL.Path, "error", err)
	s.writeError(w, http.StatusInternalServerError, "internal", "internal server error")
}

// respondStoreError maps store errors onto the API's status codes.
// Validation messages keep their field-specific text, with the sentinel
// prefix stripped so the client shows "title is required" rather than
// "validation error: title is required".
func (s *Server) respondStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "not_found", "not found")
	case errors.Is(err, domain.ErrValidation):
		msg := strings.TrimPrefix(err.Error(), domain.ErrValidation.Error()+": ")
		s.writeError(w, http.StatusUnprocessableEntity, "validation_error", msg)
	default:
		s.serverError(w, r, err)
	}
}

// userID returns the authenticated user placed in the context by requireAuth.
func userID(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(ctxKeyUserID).(uuid.UUID)
	return id
}

func contextWithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxKeyUserID, id)
}

// parseIDParam reads a uuid path parameter, answering 404 on garbage since a
// malformed id can never name an existing resource.
func (s *Server) parseIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, "not_found", "not found")
		return uuid.Nil, false
	}
	return id, true
}
