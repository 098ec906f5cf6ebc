package domain

import (
	"context"
	"errors"
	"time"
)

// Event lifecycle errors.
var (
	ErrInvalidDate       = errors.New("event date cannot be in the past")
	ErrInvalidInvitation = errors.New("invalid invitation token")
)

// Event represents a shared photo event. InvitationToken is a random
// 32-hex-character string identifying the event for join-by-link; rotating
// it invalidates old links without touching existing memberships.
// swagger:model Event
type Event struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     *string   `json:"description,omitempty"`
	Date            time.Time `json:"date"`
	CreatorID       string    `json:"creator_id"`
	InvitationToken string    `json:"invitation_token,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// EventWithAccess bundles an event with the caller's access level for it.
// swagger:model EventWithAccess
type EventWithAccess struct {
	*Event
	AccessLevel AccessLevel `json:"access_level"`
}

// EventPatch carries the updatable event fields; nil means "leave unchanged".
type EventPatch struct {
	Title       *string
	Description *string
	Date        *time.Time
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	// CreateWithOwner inserts the event row and the creator's admin
	// membership in one transaction; either both rows exist or neither does.
	// A unique violation on the invitation token surfaces as ErrConflict.
	CreateWithOwner(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	GetByInvitationToken(ctx context.Context, token string) (*Event, error)
	// ListByMember returns the events the user belongs to at any level,
	// newest event date first, with the user's access level attached.
	ListByMember(ctx context.Context, userID string) ([]*EventWithAccess, error)
	Update(ctx context.Context, eventID string, patch EventPatch) (*Event, error)
	SetInvitationToken(ctx context.Context, eventID, token string) error
	// DeleteCascade removes the event's photos, memberships, and the event
	// row in one transaction, in that order. Before each photo row is
	// deleted, deleteBlob is invoked with its blob URL; blob failures are
	// the callback's problem and never abort the transaction.
	DeleteCascade(ctx context.Context, eventID string, deleteBlob func(url string)) error
}

// EventService orchestrates the event lifecycle and membership mutations.
type EventService interface {
	Create(ctx context.Context, creatorID, title string, description *string, date time.Time) (*Event, error)
	GetByID(ctx context.Context, eventID, callerID string) (*EventWithAccess, error)
	ListMine(ctx context.Context, userID string) ([]*EventWithAccess, error)
	Update(ctx context.Context, eventID, requesterID string, patch EventPatch) (*Event, error)
	// Delete is creator-only: a later-promoted admin may not delete.
	Delete(ctx context.Context, eventID, requesterID string) error
	// JoinByInvitation is idempotent: an existing member gets their current
	// state back, a new member joins as contributor.
	JoinByInvitation(ctx context.Context, token, userID string) (*EventWithAccess, error)
	Leave(ctx context.Context, eventID, userID string) error
	ListParticipants(ctx context.Context, eventID, callerID string) ([]*Participant, error)
	SetAccessLevel(ctx context.Context, eventID, targetUserID string, level AccessLevel, requesterID string) error
	RemoveParticipant(ctx context.Context, eventID, targetUserID, requesterID string) error
	RegenerateInvitation(ctx context.Context, eventID, requesterID string) (*Event, error)
}
