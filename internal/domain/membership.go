package domain

import (
	"context"
	"errors"
	"time"
)

// Membership mutation errors.
var (
	// ErrCreatorImmutable: the event creator's membership can be neither
	// altered nor removed while the event exists.
	ErrCreatorImmutable = errors.New("cannot change the event creator's access")

	// ErrCreatorCannotLeave: the creator must delete the event, not leave it.
	ErrCreatorCannotLeave = errors.New("event creator cannot leave the event")
)

// AccessLevel ranks a member's privilege on one event. Lower is more
// privileged.
type AccessLevel int

const (
	AccessAdmin       AccessLevel = 0
	AccessContributor AccessLevel = 1
	AccessViewer      AccessLevel = 2
)

// Valid reports whether l is one of the three defined levels.
func (l AccessLevel) Valid() bool {
	return l >= AccessAdmin && l <= AccessViewer
}

func (l AccessLevel) String() string {
	switch l {
	case AccessAdmin:
		return "admin"
	case AccessContributor:
		return "contributor"
	case AccessViewer:
		return "viewer"
	}
	return "unknown"
}

// Membership is one user's access to one event. Unique on (UserID, EventID).
// swagger:model Membership
type Membership struct {
	UserID      string      `json:"user_id"`
	EventID     string      `json:"event_id"`
	AccessLevel AccessLevel `json:"access_level"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Participant is a membership joined with the member's profile, as returned
// by participant listings.
// swagger:model Participant
type Participant struct {
	UserID      string      `json:"user_id"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	AccessLevel AccessLevel `json:"access_level"`
	JoinedAt    time.Time   `json:"joined_at"`
}

// MembershipRepository is the single source of truth for "who can do what to
// event E".
type MembershipRepository interface {
	// GetLevel returns the user's access level for the event, or ErrNotFound
	// if the user has no membership.
	GetLevel(ctx context.Context, eventID, userID string) (AccessLevel, error)
	// Grant inserts a membership row. It is idempotent: if a row already
	// exists it is returned unchanged, never overwritten.
	Grant(ctx context.Context, eventID, userID string, level AccessLevel) (*Membership, error)
	SetLevel(ctx context.Context, eventID, userID string, level AccessLevel) error
	Remove(ctx context.Context, eventID, userID string) error
	// ListByEventID returns participants ordered by access level ascending
	// (admins first), stable by join order within a level.
	ListByEventID(ctx context.Context, eventID string) ([]*Participant, error)
}
