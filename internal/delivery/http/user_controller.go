package http

import (
	"log/slog"
	"net/http"
	"strings"

	"eventshare/internal/delivery/http/middleware"
	"eventshare/internal/domain"
)

// UpdateProfileRequest is the request body for PATCH /me.
// Omitted fields are left unchanged.
type UpdateProfileRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// Validate implements Validator.
func (u UpdateProfileRequest) Validate() []string {
	var errs []string
	if u.Email != nil && !emailRegexp.MatchString(strings.TrimSpace(strings.ToLower(*u.Email))) {
		errs = append(errs, "invalid email format")
	}
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		errs = append(errs, "name cannot be empty")
	}
	return errs
}

// ChangePasswordRequest is the request body for PUT /me/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Validate implements Validator.
func (c ChangePasswordRequest) Validate() []string {
	var errs []string
	if c.CurrentPassword == "" {
		errs = append(errs, "current_password is required")
	}
	if c.NewPassword == "" {
		errs = append(errs, "new_password is required")
	} else if len(c.NewPassword) < 8 {
		errs = append(errs, "new_password must be at least 8 characters")
	}
	return errs
}

type UserController struct {
	Service domain.UserService
	Logger  *slog.Logger
}

func NewUserController(svc domain.UserService, logger *slog.Logger) *UserController {
	return &UserController{Service: svc, Logger: logger}
}

// Me godoc
// @Summary Get the current user
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {object} APIResponse "data contains the user"
// @Failure 401 {object} APIResponse "error.code: unauthorized"
// @Router /me [get]
func (c *UserController) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		WriteJSONError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "not authenticated")
		return
	}
	user, err := c.Service.GetByID(r.Context(), claims.UserID)
	if err != nil {
		WriteServiceError(w, c.Logger, err)
		return
	}
	WriteJSONSuccess(w, http.StatusOK, user)
}

// UpdateProfile godoc
// @Summary Update the current user's profile
// @Tags user
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body UpdateProfileRequest true "Fields to update"
// @Success 200 {object} APIResponse "data contains the updated user"
// @Failure 409 {object} APIResponse "error.code: conflict (email already in use)"
// @Router /me [patch]
func (c *UserController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		WriteJSONError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "not authenticated")
		return
	}
	var req UpdateProfileRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}
	user, err := c.Service.UpdateProfile(r.Context(), claims.UserID, req.Name, req.Email)
	if err != nil {
		WriteServiceError(w, c.Logger, err)
		return
	}
	WriteJSONSuccess(w, http.StatusOK, user)
}

// ChangePassword godoc
// @Summary Change the current user's password
// @Tags user
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ChangePasswordRequest true "Current and new password"
// @Success 204 "password changed"
// @Failure 401 {object} APIResponse "error.code: unauthorized (wrong current password)"
// @Router /me/password [put]
func (c *UserController) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		WriteJSONError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "not authenticated")
		return
	}
	var req ChangePasswordRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}
	if err := c.Service.ChangePassword(r.Context(), claims.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		WriteServiceError(w, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteAccount godoc
// @Summary Delete the current user's account
// @Description Deletes the account with everything it owns: events the user created (including their photos and memberships), the user's uploads elsewhere, and the credential record.
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 204 "account deleted"
// @Failure 401 {object} APIResponse "error.code: unauthorized"
// @Router /me [delete]
func (c *UserController) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		WriteJSONError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "not authenticated")
		return
	}
	if err := c.Service.DeleteAccount(r.Context(), claims.UserID); err != nil {
		WriteServiceError(w, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
