package devserver

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/travel-journal/internal/domain"
)

// handleUploadPhoto answers POST /api/photo. The multipart form carries
// exactly one of tripId or experienceId plus a "file" part. The file lands
// in the photo directory under a generated name; that name is the opaque
// imageUrl the client later resolves against /photos/.
func (s *Server) handleUploadPhoto(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxPhotoBody); err != nil {
		s.writeError(w, http.StatusBadRequest, "validation_error", "malformed multipart form")
		return
	}

	owner, err := ownerFromForm(r)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, "validation_error", "a file part is required")
		return
	}
	defer file.Close()

	name := uuid.New().String() + safeExt(header.Filename)
	path := filepath.Join(s.photoDir, name)
	dst, err := os.Create(path)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		os.Remove(path)
		s.serverError(w, r, err)
		return
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		s.serverError(w, r, err)
		return
	}

	photo, err := s.store.InsertPhoto(r.Context(), userID(r.Context()), owner, name)
	if err != nil {
		os.Remove(path)
		s.respondStoreError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, photo)
}

// handleDeletePhoto answers DELETE /api/photo?id={id} with 204 and removes
// the file behind the photo.
func (s *Server) handleDeletePhoto(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.URL.Query().Get("id"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, "not_found", "not found")
		return
	}
	image, err := s.store.DeletePhoto(r.Context(), userID(r.Context()), id)
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	s.removePhotoFiles([]string{image})
	w.WriteHeader(http.StatusNoContent)
}

// handleServePhoto answers GET /photos/{name} with the raw image bytes.
// The name is reduced to its base so a crafted path cannot escape the photo
// directory.
func (s *Server) handleServePhoto(w http.ResponseWriter, r *http.Request) {
	name := filepath.Base(chi.URLParam(r, "name"))
	if name == "." || name == string(filepath.Separator) {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, filepath.Join(s.photoDir, name))
}

// ownerFromForm extracts the single owning entity from the upload form.
func ownerFromForm(r *http.Request) (domain.PhotoOwner, error) {
	tripID := r.FormValue("tripId")
	expID := r.FormValue("experienceId")
	switch {
	case tripID != "" && expID != "":
		return domain.PhotoOwner{}, fmt.Errorf("exactly one of tripId or experienceId is required")
	case tripID != "":
		id, err := uuid.Parse(tripID)
		if err != nil {
			return domain.PhotoOwner{}, fmt.Errorf("invalid tripId")
		}
		return domain.PhotoOwner{Kind: domain.OwnerTrip, ID: id}, nil
	case expID != "":
		id, err := uuid.Parse(expID)
		if err != nil {
			return domain.PhotoOwner{}, fmt.Errorf("invalid experienceId")
		}
		return domain.PhotoOwner{Kind: domain.OwnerExperience, ID: id}, nil
	}
	return domain.PhotoOwner{}, fmt.Errorf("exactly one of tripId or experienceId is required")
}

// safeExt keeps a short, lowercase extension from the uploaded filename and
// drops anything suspicious.
func safeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".heic":
		return ext
	}
	return ".jpg"
}
