package http

import (
	"log/slog"
	"net/http"

	"eventshare/internal/domain"
)

// maxUploadBytes caps photo uploads at 10 MB.
const maxUploadBytes = 10 << 20

type PhotoController struct {
	Service domain.PhotoService
	Logger  *slog.Logger
}

func NewPhotoController(svc domain.PhotoService, logger *slog.Logger) *PhotoController {
	return &PhotoController{Service: svc, Logger: logger}
}

// Upload godoc
// @Summary Upload a photo to an event
// @Description Contributors and admins only; viewers cannot upload. Multipart field name: photo.
// @Tags photos
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param photo formData file true "Photo file (max 10 MB)"
// @Success 201 {object} APIResponse "data contains the photo"
// @Failure 403 {object} APIResponse "error.code: forbidden (viewer)"
// @Router /events/{eventID}/photos [post]
func (c *PhotoController) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid multipart form or file too large")
		return
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, "photo file is required")
		return
	}
	defer file.Close()

	photo, err := c.Service.Upload(r.Context(), r.PathValue("eventID"), userID,
		file, header.Header.Get("Content-Type"), header.Filename)
	if err != nil {
		WriteServiceError(w, c.Logger, err)
		return
	}
	WriteJSONSuccess(w, http.StatusCreated, photo)
}

// ListByEvent godoc
// @Summary List an event's photos
// @Description Member-only, newest first.
// @Tags photos
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} APIResponse "data contains the photos"
// @Router /events/{eventID}/photos [get]
func (c *PhotoController) ListByEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(w, r)
	if !ok {
		return
	}
	photos, err := c.Service.ListByEvent(r.Context(), r.PathValue("eventID"), userID)
	if err != nil {
		WriteServiceError(w, c.Logger, err)
		return
	}
	WriteJSONSuccess(w, http.StatusOK, photos)
}

// CountByEvent godoc
// @Summary Count an event's photos
// @Tags photos
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} APIResponse "data contains {count}"
// @Router /events/{eventID}/photos/count [get]
func (c *PhotoController) CountByEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(w, r)
	if !ok {
		return
	}
	count, err := c.Service.CountByEvent(r.Context(), r.PathValue("eventID"), userID)
	if err != nil {
		WriteServiceError(w, c.Logger, err)
		return
	}
	WriteJSONSuccess(w, http.StatusOK, map[string]int{"count": count})
}

// Get godoc
// @Summary Get one photo
// @Description Member-only for the photo's event.
// @Tags photos
// @Produce json
// @Security BearerAuth
// @Param photoID path string true "Photo ID"
// @Success 200 {object} APIResponse "data contains the photo"
// @Failure 404 {object} APIResponse "error.code: not_found"
// @Router /photos/{photoID} [get]
func (c *PhotoController) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(w, r)
	if !ok {
		return
	}
	photo, err := c.Service.GetByID(r.Context(), r.PathValue("photoID"), userID)
	if err != nil {
		WriteServiceError(w, c.Logger, err)
		return
	}
	WriteJSONSuccess(w, http.StatusOK, photo)
}

// Gallery godoc
// @Summary All photos across the caller's events
// @Tags photos
// @Produce json
// @Security BearerAuth
// @Success 200 {object} APIResponse "data contains the photos, newest first"
// @Router /photos/gallery [get]
func (c *PhotoController) Gallery(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(w, r)
	if !ok {
		return
	}
	photos, err := c.Service.Gallery(r.Context(), userID)
	if err != nil {
		WriteServiceError(w, c.Logger, err)
		return
	}
	WriteJSONSuccess(w, http.StatusOK, photos)
}

// Mine godoc
// @Summary The caller's own uploads
// @Tags photos
// @Produce json
// @Security BearerAuth
// @Success 200 {object} APIResponse "data contains the photos, newest first"
// @Router /photos/mine [get]
func (c *PhotoController) Mine(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(w, r)
	if !ok {
		return
	}
	photos, err := c.Service.ListMine(r.Context(), userID)
	if err != nil {
		WriteServiceError(w, c.Logger, err)
		return
	}
	WriteJSONSuccess(w, http.StatusOK, photos)
}

// Delete godoc
// @Summary Delete a photo
// @Description Uploader or event admin only. The blob is deleted first; a blob failure aborts the operation.
// @Tags photos
// @Produce json
// @Security BearerAuth
// @Param photoID path string true "Photo ID"
// @Success 204 "photo deleted"
// @Failure 403 {object} APIResponse "error.code: forbidden"
// @Router /photos/{photoID} [delete]
func (c *PhotoController) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(w, r)
	if !ok {
		return
	}
	if err := c.Service.Delete(r.Context(), r.PathValue("photoID"), userID); err != nil {
		WriteServiceError(w, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
