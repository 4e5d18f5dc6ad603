package devserver

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"

	"github.com/pkordes/travel-journal/internal/domain"
)

// handleListTrips answers GET /api/trip/user with the caller's trip
// summaries.
func (s *Server) handleListTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := s.store.TripsByUser(r.Context(), userID(r.Context()))
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, trips)
}

// handleGetTrip answers GET /api/trip/{id} with the full trip, experiences
// and photos included.
func (s *Server) handleGetTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseIDParam(w, r)
	if !ok {
		return
	}
	trip, err := s.store.TripByID(r.Context(), userID(r.Context()), id)
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, trip)
}

// handleCreateTrip answers POST /api/trip. The draft is validated with the
// same invariants the client enforces, so a misbehaving client is still
// rejected.
func (s *Server) handleCreateTrip(w http.ResponseWriter, r *http.Request) {
	var draft domain.TripDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		s.writeError(w, http.StatusBadRequest, "validation_error", "request body is required")
		return
	}
	if err := draft.Validate(); err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	trip, err := s.store.CreateTrip(r.Context(), userID(r.Context()), draft)
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, trip)
}

// handleUpdateTrip answers PUT /api/trip; the body carries the trip id.
func (s *Server) handleUpdateTrip(w http.ResponseWriter, r *http.Request) {
	var draft domain.TripDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		s.writeError(w, http.StatusBadRequest, "validation_error", "request body is required")
		return
	}
	if err := draft.Validate(); err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	trip, err := s.store.UpdateTrip(r.Context(), userID(r.Context()), draft)
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, trip)
}

// handleDeleteTrip answers DELETE /api/trip/{id} with 204. The store
// cascades to experiences and photos; the photo files go with them.
func (s *Server) handleDeleteTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseIDParam(w, r)
	if !ok {
		return
	}
	images, err := s.store.DeleteTrip(r.Context(), userID(r.Context()), id)
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	s.removePhotoFiles(images)
	w.WriteHeader(http.StatusNoContent)
}

// handleGetExperience answers GET /api/experience/{id}.
func (s *Server) handleGetExperience(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseIDParam(w, r)
	if !ok {
		return
	}
	exp, err := s.store.ExperienceByID(r.Context(), userID(r.Context()), id)
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, exp)
}

// handleCreateExperience answers POST /api/experience. The experience date
// is validated against the parent trip's span server-side too.
func (s *Server) handleCreateExperience(w http.ResponseWriter, r *http.Request) {
	var draft domain.ExperienceDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		s.writeError(w, http.StatusBadRequest, "validation_error", "request body is required")
		return
	}

	from, to, err := s.store.TripSpan(r.Context(), userID(r.Context()), draft.TripID)
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	if err := draft.Validate(from, to); err != nil {
		s.respondStoreError(w, r, err)
		return
	}

	exp, err := s.store.CreateExperience(r.Context(), userID(r.Context()), draft)
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, exp)
}

// handleUpdateExperience answers PUT /api/experience; the body carries the
// experience id. The parent trip does not change on update.
func (s *Server) handleUpdateExperience(w http.ResponseWriter, r *http.Request) {
	var draft domain.ExperienceDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		s.writeError(w, http.StatusBadRequest, "validation_error", "request body is required")
		return
	}

	current, err := s.store.ExperienceByID(r.Context(), userID(r.Context()), draft.ID)
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	from, to, err := s.store.TripSpan(r.Context(), userID(r.Context()), current.TripID)
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	if err := draft.Validate(from, to); err != nil {
		s.respondStoreError(w, r, err)
		return
	}

	exp, err := s.store.UpdateExperience(r.Context(), userID(r.Context()), draft)
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, exp)
}

// handleDeleteExperience answers DELETE /api/experience/{id} with 204.
func (s *Server) handleDeleteExperience(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseIDParam(w, r)
	if !ok {
		return
	}
	images, err := s.store.DeleteExperience(r.Context(), userID(r.Context()), id)
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	s.removePhotoFiles(images)
	w.WriteHeader(http.StatusNoContent)
}

// removePhotoFiles best-effort deletes the files behind removed photo rows.
// A missing file is not worth failing the request over on a dev box.
func (s *Server) removePhotoFiles(images []string) {
	for _, name := range images {
		path := filepath.Join(s.photoDir, filepath.Base(name))
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.log.Warn("remove photo file", "path", path, "error", err)
		}
	}
}
