package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"eventshare/internal/domain"
)

type userService struct {
	userRepo       domain.UserRepository
	credentialRepo domain.CredentialRepository
	eventRepo      domain.EventRepository
	photoRepo      domain.PhotoRepository
	blobs          domain.BlobStore
	hasher         domain.PasswordHasher
	logger         *slog.Logger
}

// NewUserService creates a UserService. The event and photo repositories are
// needed for the account-deletion cascade.
func NewUserService(userRepo domain.UserRepository,
	credentialRepo domain.CredentialRepository,
	eventRepo domain.EventRepository,
	photoRepo domain.PhotoRepository,
	blobs domain.BlobStore,
	hasher domain.PasswordHasher,
	logger *slog.Logger,
) domain.UserService {
	return &userService{
		userRepo:       userRepo,
		credentialRepo: credentialRepo,
		eventRepo:      eventRepo,
		photoRepo:      photoRepo,
		blobs:          blobs,
		hasher:         hasher,
		logger:         logger,
	}
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, name, email *string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if name != nil {
		user.Name = strings.TrimSpace(*name)
	}
	if email != nil {
		e := strings.TrimSpace(strings.ToLower(*email))
		if !emailRegexp.MatchString(e) {
			return nil, fmt.Errorf("%w: invalid email format", domain.ErrInvalidInput)
		}
		user.Email = e
	}
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) || errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// ChangePassword verifies the current password before hashing and storing
// the new one.
func (s *userService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLen)
	}

	cred, err := s.credentialRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("failed to get credential: %w", err)
	}
	if err := s.hasher.Compare(cred.PasswordHash, currentPassword); err != nil {
		return domain.ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.credentialRepo.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// DeleteAccount removes the user and everything they own. Events the user
// created go through the full event cascade first (the creator membership
// invariant means those events cannot outlive their creator); then the
// user's uploads in other events, memberships, credential, and the user row
// are removed in one transaction. Blob deletion is best-effort throughout.
func (s *userService) DeleteAccount(ctx context.Context, userID string) error {
	events, err := s.eventRepo.ListByMember(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list events: %w", err)
	}
	for _, e := range events {
		if e.CreatorID != userID {
			continue
		}
		err := s.eventRepo.DeleteCascade(ctx, e.ID, func(url string) {
			if err := s.blobs.Delete(ctx, url); err != nil {
				s.logger.Warn("failed to delete blob during account deletion",
					"event_id", e.ID, "url", url, "error", err)
			}
		})
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("failed to delete owned event %s: %w", e.ID, err)
		}
	}

	photos, err := s.photoRepo.ListByUploader(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list photos: %w", err)
	}
	for _, p := range photos {
		if err := s.blobs.Delete(ctx, p.BlobURL); err != nil {
			s.logger.Warn("failed to delete blob during account deletion",
				"photo_id", p.ID, "url", p.BlobURL, "error", err)
		}
	}

	if err := s.userRepo.DeleteCascade(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
