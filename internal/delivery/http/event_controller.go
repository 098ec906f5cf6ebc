package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"eventshare/internal/delivery/http/middleware"
	"eventshare/internal/domain"
)

// CreateEventRequest is the request body for POST /events.
type CreateEventRequest struct {
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Date        time.Time `json:"date"`
}

// Validate implements Validator.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Title) == "" {
		errs = append(errs, "title is required")
	} else if len(c.Title) > 200 {
		errs = append(errs, "title must be at most 200 characters")
	}
	if c.Date.IsZero() {
		errs = append(errs, "date is required")
	}
	return errs
}

// UpdateEventRequest is the request body for PATCH /events/{eventID}.
// Omitted fields are left unchanged.
type UpdateEventRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Date        *time.Time `json:"date"`
}

// Validate implements Validator.
func (u UpdateEventRequest) Validate() []string {
	var errs []string
	if u.Title != nil {
		if strings.TrimSpace(*u.Title) == "" {
			errs = append(errs, "title cannot be empty")
		} else if len(*u.Title) > 200 {
			errs = append(errs, "title must be at most 200 characters")
		}
	}
	return errs
}

// JoinEventRequest is the request body for POST /events/join.
type JoinEventRequest struct {
	InvitationToken string `json:"invitation_token"`
}

// Validate implements Validator.
func (j JoinEventRequest) Validate() []string {
	if strings.TrimSpace(j.InvitationToken) == "" {
		return []string{"invitation_token is required"}
	}
	return nil
}

// UpdateParticipantRequest is the request body for PATCH /events/{eventID}/participants/{userID}.
type UpdateParticipantRequest struct {
	AccessLevel int `json:"access_level"`
}

// Validate implements Validator.
func (u UpdateParticipantRequest) Validate() []string {
	if u.AccessLevel < 0 || u.AccessLevel > 2 {
		return []string{"access_level must be 0 (admin), 1 (contributor), or 2 (viewer)"}
	}
	return nil
}

type EventController struct {
	Service domain.EventService
	Logger  *slog.Logger
}

func NewEventController(svc domain.EventService, logger *slog.Logger) *EventController {
	return &EventController{Service: svc, Logger: logger}
}

// requesterID pulls the authenticated user from the context; every event
// route sits behind RequireAuth.
func requesterID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		WriteJSONError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "not authenticated")
		return "", false
	}
	return userID, true
}

// Create godoc
// @Summary Create an event
// @Description Creates the event and the creator's admin membership atomically. The event date must not be in the past.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateEventRequest true "Event data"
// @Success 201 {object} APIResponse "data contains the event, including its invitation token"
// @Failure 400 {object} APIResponse "error.code: bad_request (e.g. date in the past)"
// @Router /events [post]
func (c *EventController) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(w, r)
	if !ok {
		return
	}
	var req CreateEventRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Service.Create(r.Context(), userID, req.Title, req.Description, req.Date)
	if err != nil {
		WriteServiceError(w, c.Logger, err)
		return
	}
	WriteJSONSuccess(w, http.StatusCreated, event)
}

// List godoc
// @Summary List the caller's events
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} APIResponse "data contains events with the caller's access level"
// @Router /events [get]
func (c *EventController) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(w, r)
	if !ok {
		return
	}
	events, err := c.Service.ListMine(r.Context(), userID)
	if err != nil {
		WriteServiceError(w, c.Logger, err)
		return
	}
	WriteJSONSuccess(w, http.StatusOK, events)
}

// Get godoc
// @Summary Get one event
// @Description Member-only. Non-members get 404 whether or not the event exists.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} APIResponse "data contains the event with the caller's access level"
// @Failure 404 {object} APIResponse "error.code: not_found"
// @Router /events/{eventID} [get]
func (c *EventController) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(w, r)
	if !ok {
		return
	}
	event, err := c.Service.GetByID(r.Context(), r.PathValue("eventID"), userID)
	if err != nil {
		WriteServiceError(w, c.Logger, err)
		return
	}
	WriteJSONSuccess(w, http.StatusOK, event)
}

// Update godoc
// @Summary Update an event
// @Description Admin-only. A changed date is re-validated against the clock.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param body body UpdateEventRequest true "Fields to update"
// @Success 200 {object} APIResponse "data contains the updated event"
// @Failure 403 {object} APIResponse "error.code: forbidden"
// @Router /events/{eventID} [patch]
func (c *EventController) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(w, r)
	if !ok {
		return
	}
	var req UpdateEventRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Service.Update(r.Context(), r.PathValue("eventID"), userID, domain.EventPatch{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
	})
	if err != nil {
		WriteServiceError(w, c.Logger, err)
		return
	}
	WriteJSONSuccess(w, http.StatusOK, event)
}

// Delete godoc
// @Summary Delete an event
// @Description Creator-only; a promoted admin may not delete. Removes photos, memberships, and the event atomically; photo blobs are deleted best-effort.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 204 "event deleted"
// @Failure 403 {object} APIResponse "error.code: forbidden"
// @Router /events/{eventID} [delete]
func (c *EventController) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(w, r)
	if !ok {
		return
	}
	if err := c.Service.Delete(r.Context(), r.PathValue("eventID"), userID); err != nil {
		WriteServiceError(w, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Join godoc
// @Summary Join an event by invitation token
// @Description Idempotent: an existing member gets their current membership back; a new member joins as contributor.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body JoinEventRequest true "Invitation token"
// @Success 200 {object} APIResponse "data contains the event with the caller's access level"
// @Failure 404 {object} APIResponse "error.code: not_found (unknown token)"
// @Router /events/join [post]
func (c *EventController) Join(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(w, r)
	if !ok {
		return
	}
	var req JoinEventRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Service.JoinByInvitation(r.Context(), strings.TrimSpace(req.InvitationToken), userID)
	if err != nil {
		WriteServiceError(w, c.Logger, err)
		return
	}
	WriteJSONSuccess(w, http.StatusOK, event)
}

// Leave godoc
// @Summary Leave an event
// @Description The creator cannot leave; they must delete the event instead.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 204 "left the event"
// @Failure 403 {object} APIResponse "error.code: forbidden (creator cannot leave)"
// @Router /events/{eventID}/leave [post]
func (c *EventController) Leave(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(w, r)
	if !ok {
		return
	}
	if err := c.Service.Leave(r.Context(), r.PathValue("eventID"), userID); err != nil {
		WriteServiceError(w, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Participants godoc
// @Summary List event participants
// @Description Member-only. Admins first, then by join order within a level.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} APIResponse "data contains the participants"
// @Router /events/{eventID}/participants [get]
func (c *EventController) Participants(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(w, r)
	if !ok {
		return
	}
	participants, err := c.Service.ListParticipants(r.Context(), r.PathValue("eventID"), userID)
	if err != nil {
		WriteServiceError(w, c.Logger, err)
		return
	}
	WriteJSONSuccess(w, http.StatusOK, participants)
}

// UpdateParticipant godoc
// @Summary Change a participant's access level
// @Description Admin-only. The creator's level is immutable.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param userID path string true "Target user ID"
// @Param body body UpdateParticipantRequest true "New access level"
// @Success 204 "access level updated"
// @Failure 403 {object} APIResponse "error.code: forbidden"
// @Router /events/{eventID}/participants/{userID} [patch]
func (c *EventController) UpdateParticipant(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(w, r)
	if !ok {
		return
	}
	var req UpdateParticipantRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}
	err := c.Service.SetAccessLevel(r.Context(), r.PathValue("eventID"), r.PathValue("userID"),
		domain.AccessLevel(req.AccessLevel), userID)
	if err != nil {
		WriteServiceError(w, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveParticipant godoc
// @Summary Remove a participant
// @Description Admin-only. The creator cannot be removed.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param userID path string true "Target user ID"
// @Success 204 "participant removed"
// @Failure 403 {object} APIResponse "error.code: forbidden"
// @Router /events/{eventID}/participants/{userID} [delete]
func (c *EventController) RemoveParticipant(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(w, r)
	if !ok {
		return
	}
	err := c.Service.RemoveParticipant(r.Context(), r.PathValue("eventID"), r.PathValue("userID"), userID)
	if err != nil {
		WriteServiceError(w, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RegenerateInvitation godoc
// @Summary Regenerate the invitation token
// @Description Admin-only. Old links stop working for new joiners; existing memberships are untouched.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} APIResponse "data contains the event with the new invitation token"
// @Failure 403 {object} APIResponse "error.code: forbidden"
// @Router /events/{eventID}/invitation [post]
func (c *EventController) RegenerateInvitation(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(w, r)
	if !ok {
		return
	}
	event, err := c.Service.RegenerateInvitation(r.Context(), r.PathValue("eventID"), userID)
	if err != nil {
		WriteServiceError(w, c.Logger, err)
		return
	}
	WriteJSONSuccess(w, http.StatusOK, event)
}
