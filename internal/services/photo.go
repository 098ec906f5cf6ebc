package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"eventshare/internal/domain"
)

type photoService struct {
	photoRepo      domain.PhotoRepository
	membershipRepo domain.MembershipRepository
	blobs          domain.BlobStore
	logger         *slog.Logger
	contextTimeout time.Duration
}

func NewPhotoService(photoRepo domain.PhotoRepository,
	membershipRepo domain.MembershipRepository,
	blobs domain.BlobStore,
	logger *slog.Logger,
	timeout time.Duration,
) domain.PhotoService {
	return &photoService{
		photoRepo:      photoRepo,
		membershipRepo: membershipRepo,
		blobs:          blobs,
		logger:         logger,
		contextTimeout: timeout,
	}
}

// Upload stores the bytes in the blob store and records the photo. Viewers
// (level 2) may not upload.
func (s *photoService) Upload(ctx context.Context, eventID, userID string, body io.Reader, contentType, filename string) (*domain.Photo, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	level, err := s.memberLevel(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	if level > domain.AccessContributor {
		return nil, domain.ErrForbidden
	}

	url, err := s.blobs.Put(ctx, body, contentType, filename)
	if err != nil {
		return nil, fmt.Errorf("upload blob: %w", err)
	}

	photo := &domain.Photo{
		EventID:    eventID,
		UploaderID: userID,
		BlobURL:    url,
		CreatedAt:  time.Now(),
	}
	if err := s.photoRepo.Create(ctx, photo); err != nil {
		// The row never existed, so try not to leave the blob orphaned.
		if delErr := s.blobs.Delete(ctx, url); delErr != nil {
			s.logger.Warn("failed to clean up blob after create failure",
				"url", url, "error", delErr)
		}
		return nil, fmt.Errorf("create photo: %w", err)
	}
	return photo, nil
}

func (s *photoService) GetByID(ctx context.Context, photoID, userID string) (*domain.Photo, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	photo, err := s.photoRepo.GetByID(ctx, photoID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get photo: %w", err)
	}
	if _, err := s.memberLevel(ctx, photo.EventID, userID); err != nil {
		return nil, err
	}
	return photo, nil
}

func (s *photoService) ListByEvent(ctx context.Context, eventID, userID string) ([]*domain.Photo, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.memberLevel(ctx, eventID, userID); err != nil {
		return nil, err
	}
	photos, err := s.photoRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}
	return photos, nil
}

func (s *photoService) CountByEvent(ctx context.Context, eventID, userID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.memberLevel(ctx, eventID, userID); err != nil {
		return 0, err
	}
	count, err := s.photoRepo.CountByEventID(ctx, eventID)
	if err != nil {
		return 0, fmt.Errorf("count photos: %w", err)
	}
	return count, nil
}

func (s *photoService) ListMine(ctx context.Context, userID string) ([]*domain.Photo, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	photos, err := s.photoRepo.ListByUploader(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list own photos: %w", err)
	}
	return photos, nil
}

func (s *photoService) Gallery(ctx context.Context, userID string) ([]*domain.Photo, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	photos, err := s.photoRepo.ListByMemberEvents(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list gallery: %w", err)
	}
	return photos, nil
}

// Delete requires the caller to be the uploader or an event admin. Unlike
// the bulk event cascade, the blob is deleted first and a failure surfaces
// to the caller: there is no larger transaction to protect here.
func (s *photoService) Delete(ctx context.Context, photoID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	photo, err := s.photoRepo.GetByID(ctx, photoID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get photo: %w", err)
	}

	level, err := s.memberLevel(ctx, photo.EventID, userID)
	if err != nil {
		return err
	}
	if photo.UploaderID != userID && level != domain.AccessAdmin {
		return domain.ErrForbidden
	}

	if err := s.blobs.Delete(ctx, photo.BlobURL); err != nil {
		return fmt.Errorf("delete blob: %w", err)
	}
	if err := s.photoRepo.Delete(ctx, photoID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete photo: %w", err)
	}
	return nil
}

// memberLevel returns the caller's level or ErrNotFound; non-members never
// learn whether the event exists.
func (s *photoService) memberLevel(ctx context.Context, eventID, userID string) (domain.AccessLevel, error) {
	level, err := s.membershipRepo.GetLevel(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("get access level: %w", err)
	}
	return level, nil
}
