package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"eventshare/internal/domain"
)

// invitationTokenBytes yields a 32-hex-character token.
const invitationTokenBytes = 16

// createRetries bounds retrying on an invitation token collision.
const createRetries = 3

type eventService struct {
	eventRepo      domain.EventRepository
	membershipRepo domain.MembershipRepository
	blobs          domain.BlobStore
	logger         *slog.Logger
	contextTimeout time.Duration
}

func NewEventService(eventRepo domain.EventRepository,
	membershipRepo domain.MembershipRepository,
	blobs domain.BlobStore,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		membershipRepo: membershipRepo,
		blobs:          blobs,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func generateInvitationToken() (string, error) {
	b := make([]byte, invitationTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Create validates the date, then inserts the event and the creator's admin
// membership atomically. An invitation token collision regenerates the token
// and retries.
func (s *eventService) Create(ctx context.Context, creatorID, title string, description *string, date time.Time) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if date.Before(time.Now()) {
		return nil, domain.ErrInvalidDate
	}

	now := time.Now()
	event := &domain.Event{
		Title:       title,
		Description: description,
		Date:        date,
		CreatorID:   creatorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	for attempt := 0; attempt < createRetries; attempt++ {
		token, err := generateInvitationToken()
		if err != nil {
			return nil, fmt.Errorf("generate invitation token: %w", err)
		}
		event.InvitationToken = token

		err = s.eventRepo.CreateWithOwner(ctx, event)
		if err == nil {
			return event, nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("create event: %w", err)
		}
	}
	return nil, fmt.Errorf("create event: %w", domain.ErrConflict)
}

func (s *eventService) GetByID(ctx context.Context, eventID, callerID string) (*domain.EventWithAccess, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	level, err := s.membershipRepo.GetLevel(ctx, eventID, callerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get access level: %w", err)
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &domain.EventWithAccess{Event: event, AccessLevel: level}, nil
}

func (s *eventService) ListMine(ctx context.Context, userID string) ([]*domain.EventWithAccess, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.eventRepo.ListByMember(ctx, userID)
}

// Update is admin-only. A patched date is re-validated against the clock.
func (s *eventService) Update(ctx context.Context, eventID, requesterID string, patch domain.EventPatch) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.requireAdmin(ctx, eventID, requesterID); err != nil {
		return nil, err
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, fmt.Errorf("%w: title cannot be empty", domain.ErrInvalidInput)
	}
	if patch.Date != nil && patch.Date.Before(time.Now()) {
		return nil, domain.ErrInvalidDate
	}

	updated, err := s.eventRepo.Update(ctx, eventID, patch)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return updated, nil
}

// Delete is stricter than admin: only the original creator may delete, a
// later-promoted admin may not. The cascade removes photos, memberships,
// and the event row in one transaction; blob deletion is best-effort and a
// failed blob delete is logged, never fatal.
func (s *eventService) Delete(ctx context.Context, eventID, requesterID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if event.CreatorID != requesterID {
		return domain.ErrForbidden
	}

	err = s.eventRepo.DeleteCascade(ctx, eventID, func(url string) {
		if err := s.blobs.Delete(ctx, url); err != nil {
			s.logger.Warn("failed to delete blob during event deletion",
				"event_id", eventID, "url", url, "error", err)
		}
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

// JoinByInvitation looks the event up by token and grants contributor
// access. Joining twice is a no-op success: the existing membership is
// returned unchanged, so an admin who re-follows the link keeps their level.
func (s *eventService) JoinByInvitation(ctx context.Context, token, userID string) (*domain.EventWithAccess, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByInvitationToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidInvitation
		}
		return nil, fmt.Errorf("get event by invitation: %w", err)
	}

	level, err := s.membershipRepo.GetLevel(ctx, event.ID, userID)
	if err == nil {
		return &domain.EventWithAccess{Event: event, AccessLevel: level}, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get access level: %w", err)
	}

	m, err := s.membershipRepo.Grant(ctx, event.ID, userID, domain.AccessContributor)
	if err != nil {
		return nil, fmt.Errorf("grant membership: %w", err)
	}
	return &domain.EventWithAccess{Event: event, AccessLevel: m.AccessLevel}, nil
}

func (s *eventService) Leave(ctx context.Context, eventID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if event.CreatorID == userID {
		return domain.ErrCreatorCannotLeave
	}
	if err := s.membershipRepo.Remove(ctx, eventID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("remove membership: %w", err)
	}
	return nil
}

func (s *eventService) ListParticipants(ctx context.Context, eventID, callerID string) ([]*domain.Participant, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.membershipRepo.GetLevel(ctx, eventID, callerID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get access level: %w", err)
	}
	participants, err := s.membershipRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	if participants == nil {
		participants = []*domain.Participant{}
	}
	return participants, nil
}

// SetAccessLevel is admin-only, and the creator's level is immutable.
func (s *eventService) SetAccessLevel(ctx context.Context, eventID, targetUserID string, level domain.AccessLevel, requesterID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !level.Valid() {
		return fmt.Errorf("%w: access level must be 0, 1, or 2", domain.ErrInvalidInput)
	}
	if err := s.requireAdmin(ctx, eventID, requesterID); err != nil {
		return err
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if event.CreatorID == targetUserID {
		return domain.ErrCreatorImmutable
	}

	if err := s.membershipRepo.SetLevel(ctx, eventID, targetUserID, level); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("set access level: %w", err)
	}
	return nil
}

// RemoveParticipant is admin-only, with the same creator protection as
// SetAccessLevel.
func (s *eventService) RemoveParticipant(ctx context.Context, eventID, targetUserID, requesterID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.requireAdmin(ctx, eventID, requesterID); err != nil {
		return err
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if event.CreatorID == targetUserID {
		return domain.ErrCreatorImmutable
	}

	if err := s.membershipRepo.Remove(ctx, eventID, targetUserID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("remove participant: %w", err)
	}
	return nil
}

// RegenerateInvitation replaces the invitation token, invalidating the old
// link for future joiners without touching existing memberships.
func (s *eventService) RegenerateInvitation(ctx context.Context, eventID, requesterID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.requireAdmin(ctx, eventID, requesterID); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < createRetries; attempt++ {
		token, err := generateInvitationToken()
		if err != nil {
			return nil, fmt.Errorf("generate invitation token: %w", err)
		}
		err = s.eventRepo.SetInvitationToken(ctx, eventID, token)
		if err == nil {
			event, err := s.eventRepo.GetByID(ctx, eventID)
			if err != nil {
				return nil, fmt.Errorf("get event: %w", err)
			}
			return event, nil
		}
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		if !errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("set invitation token: %w", err)
		}
	}
	return nil, fmt.Errorf("regenerate invitation: %w", domain.ErrConflict)
}

// requireAdmin distinguishes "no membership" (ErrNotFound, so existence is
// not leaked) from "member but not admin" (ErrForbidden).
func (s *eventService) requireAdmin(ctx context.Context, eventID, requesterID string) error {
	level, err := s.membershipRepo.GetLevel(ctx, eventID, requesterID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get access level: %w", err)
	}
	if level != domain.AccessAdmin {
		return domain.ErrForbidden
	}
	return nil
}
