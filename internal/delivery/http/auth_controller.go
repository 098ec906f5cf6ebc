package http

import (
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"eventshare/internal/delivery/http/middleware"
	"eventshare/internal/domain"
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// SignUpRequest is the request body for POST /auth/signup
type SignUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate implements Validator.
func (s SignUpRequest) Validate() []string {
	var errs []string
	email := strings.TrimSpace(strings.ToLower(s.Email))
	if email == "" {
		errs = append(errs, "email is required")
	} else if !emailRegexp.MatchString(email) {
		errs = append(errs, "invalid email format")
	}
	if s.Password == "" {
		errs = append(errs, "password is required")
	} else if len(s.Password) < 8 {
		errs = append(errs, "password must be at least 8 characters")
	}
	if strings.TrimSpace(s.Name) == "" {
		errs = append(errs, "name is required")
	}
	return errs
}

// SignInRequest is the request body for POST /auth/signin
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate implements Validator.
func (s SignInRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(s.Email) == "" {
		errs = append(errs, "email is required")
	}
	if s.Password == "" {
		errs = append(errs, "password is required")
	}
	return errs
}

// RefreshRequest is the request body for POST /auth/refresh
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Validate implements Validator.
func (r RefreshRequest) Validate() []string {
	if strings.TrimSpace(r.RefreshToken) == "" {
		return []string{"refresh_token is required"}
	}
	return nil
}

// AuthResponse is the response body for signup and signin.
type AuthResponse struct {
	User         *domain.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
}

type AuthController struct {
	Service domain.AuthService
	Logger  *slog.Logger
}

func NewAuthController(svc domain.AuthService, logger *slog.Logger) *AuthController {
	return &AuthController{Service: svc, Logger: logger}
}

// SignUp godoc
// @Summary Sign up a new user
// @Description Create a new user with name, email, and password. Returns the user and an access/refresh token pair.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body SignUpRequest true "Sign-up data"
// @Success 201 {object} APIResponse "data contains the user and token pair"
// @Failure 400 {object} APIResponse "error.code: bad_request"
// @Failure 409 {object} APIResponse "error.code: conflict (email already registered)"
// @Router /auth/signup [post]
func (c *AuthController) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}
	result, err := c.Service.SignUp(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		WriteServiceError(w, c.Logger, err)
		return
	}
	WriteJSONSuccess(w, http.StatusCreated, AuthResponse{
		User:         result.User,
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		TokenType:    "Bearer",
	})
}

// SignIn godoc
// @Summary Sign in
// @Description Authenticate with email and password. Replaces any outstanding refresh token.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body SignInRequest true "Credentials"
// @Success 200 {object} APIResponse "data contains the user and token pair"
// @Failure 401 {object} APIResponse "error.code: unauthorized"
// @Router /auth/signin [post]
func (c *AuthController) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}
	result, err := c.Service.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		WriteServiceError(w, c.Logger, err)
		return
	}
	WriteJSONSuccess(w, http.StatusOK, AuthResponse{
		User:         result.User,
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		TokenType:    "Bearer",
	})
}

// Refresh godoc
// @Summary Rotate a refresh token
// @Description Exchange a valid, still-current refresh token for a new token pair. A token that was rotated out or revoked is rejected.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body RefreshRequest true "Refresh token"
// @Success 200 {object} APIResponse "data contains the new token pair"
// @Failure 401 {object} APIResponse "error.code: unauthorized"
// @Router /auth/refresh [post]
func (c *AuthController) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}
	pair, err := c.Service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		WriteServiceError(w, c.Logger, err)
		return
	}
	WriteJSONSuccess(w, http.StatusOK, pair)
}

// Logout godoc
// @Summary Log out
// @Description Revoke the caller's outstanding refresh token.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 204 "refresh token revoked"
// @Failure 401 {object} APIResponse "error.code: unauthorized"
// @Router /auth/logout [post]
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		WriteJSONError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "not authenticated")
		return
	}
	if err := c.Service.Logout(r.Context(), userID); err != nil {
		WriteServiceError(w, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
