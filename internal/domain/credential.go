package domain

import (
	"context"
	"errors"
)

// Token verification and rotation errors. The HTTP boundary reports all of
// them as a generic "invalid or expired token" so a caller cannot tell which
// check failed.
var (
	ErrTokenInvalid      = errors.New("token invalid")
	ErrTokenExpired      = errors.New("token expired")
	ErrRefreshTokenStale = errors.New("refresh token stale")
)

// Credential is the authentication record paired 1:1 with a User.
// RefreshToken is nil when the user is logged out or the token has been
// rotated out; at most one refresh token is outstanding per user.
type Credential struct {
	UserID       string
	PasswordHash string
	RefreshToken *string
}

// TokenClaims are the identity claims embedded in both access and refresh
// tokens. They are passed explicitly per request; no ambient identity state
// is held between calls.
type TokenClaims struct {
	UserID string
	Email  string
	Name   string
}

// TokenPair is an access/refresh token pair issued on signup, signin, and
// rotation.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// TokenManager signs and verifies access and refresh tokens. The two token
// kinds are signed with independent secrets.
type TokenManager interface {
	IssuePair(claims TokenClaims) (*TokenPair, error)
	VerifyAccess(token string) (*TokenClaims, error)
	VerifyRefresh(token string) (*TokenClaims, error)
}

// CredentialRepository defines the interface for credential storage.
type CredentialRepository interface {
	GetByUserID(ctx context.Context, userID string) (*Credential, error)
	// SetRefreshToken overwrites the stored refresh token; nil clears it.
	SetRefreshToken(ctx context.Context, userID string, refreshToken *string) error
	UpdatePasswordHash(ctx context.Context, userID, passwordHash string) error
}

// AuthResult is returned by signup and signin.
type AuthResult struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthService defines signup, signin, refresh-token rotation, and logout.
type AuthService interface {
	SignUp(ctx context.Context, name, email, password string) (*AuthResult, error)
	SignIn(ctx context.Context, email, password string) (*AuthResult, error)
	// Refresh rotates the presented refresh token: it must match the stored
	// one exactly, otherwise the call fails with ErrRefreshTokenStale.
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, userID string) error
}
