package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"eventshare/internal/domain"
)

const minPasswordLen = 8

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type authService struct {
	userRepo       domain.UserRepository
	credentialRepo domain.CredentialRepository
	tokens         domain.TokenManager
	hasher         domain.PasswordHasher
}

// NewAuthService creates an AuthService with the given repositories, token
// manager, and password hasher.
func NewAuthService(userRepo domain.UserRepository, credentialRepo domain.CredentialRepository, tokens domain.TokenManager, hasher domain.PasswordHasher) domain.AuthService {
	return &authService{
		userRepo:       userRepo,
		credentialRepo: credentialRepo,
		tokens:         tokens,
		hasher:         hasher,
	}
}

// SignUp creates the user, its credential, and the initial refresh token in
// one transaction. The user ID is generated up front so that tokens can be
// signed before anything is written; a failed write leaves no user behind.
func (s *authService) SignUp(ctx context.Context, name, email, password string) (*domain.AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !emailRegexp.MatchString(email) {
		return nil, fmt.Errorf("%w: invalid email format", domain.ErrInvalidInput)
	}
	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLen)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := domain.NewUser(uuid.NewString(), email, strings.TrimSpace(name), now, now)

	pair, err := s.tokens.IssuePair(domain.TokenClaims{UserID: user.ID, Email: user.Email, Name: user.Name})
	if err != nil {
		return nil, fmt.Errorf("failed to sign tokens: %w", err)
	}

	if err := s.userRepo.CreateWithCredential(ctx, user, hash, pair.RefreshToken); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &domain.AuthResult{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// SignIn verifies the password and issues a fresh token pair, replacing any
// previously outstanding refresh token.
func (s *authService) SignIn(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	cred, err := s.credentialRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}

	if err := s.hasher.Compare(cred.PasswordHash, password); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	pair, err := s.tokens.IssuePair(domain.TokenClaims{UserID: user.ID, Email: user.Email, Name: user.Name})
	if err != nil {
		return nil, fmt.Errorf("failed to sign tokens: %w", err)
	}
	if err := s.credentialRepo.SetRefreshToken(ctx, user.ID, &pair.RefreshToken); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &domain.AuthResult{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// Refresh rotates a refresh token. Beyond signature and expiry, the
// presented token must exactly equal the stored one: a token that was
// rotated out or revoked is detected as stale even while its own signature
// and expiry are still valid.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	cred, err := s.credentialRepo.GetByUserID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrRefreshTokenStale
		}
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}
	if cred.RefreshToken == nil || *cred.RefreshToken != refreshToken {
		return nil, domain.ErrRefreshTokenStale
	}

	// Claims are re-read from the user row so a profile update between
	// rotations is reflected in the new tokens.
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrRefreshTokenStale
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	pair, err := s.tokens.IssuePair(domain.TokenClaims{UserID: user.ID, Email: user.Email, Name: user.Name})
	if err != nil {
		return nil, fmt.Errorf("failed to sign tokens: %w", err)
	}
	if err := s.credentialRepo.SetRefreshToken(ctx, user.ID, &pair.RefreshToken); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return pair, nil
}

// Logout clears the stored refresh token. Until the next signin, every
// rotation attempt for this user fails as stale.
func (s *authService) Logout(ctx context.Context, userID string) error {
	if err := s.credentialRepo.SetRefreshToken(ctx, userID, nil); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}
	return nil
}
