package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for user and credential operations.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateEmail     = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// User represents a registered user
// swagger:model User
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser returns a new User with the given fields. ID is set by the service
// before create so that tokens can be signed inside the signup transaction.
func NewUser(id, email, name string, createdAt, updatedAt time.Time) *User {
	return &User{
		ID:        id,
		Email:     email,
		Name:      name,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// PasswordHasher handles password hashing and verification.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	Hash(password string) (hash string, err error)
	Compare(hash, password string) error
}

// UserRepository defines the interface for user storage.
// CreateWithCredential inserts the user row and its credential row in one
// transaction; either both exist afterwards or neither does.
type UserRepository interface {
	CreateWithCredential(ctx context.Context, user *User, passwordHash, refreshToken string) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Update(ctx context.Context, user *User) error
	// DeleteCascade removes the user's remaining photos, memberships,
	// credential, and the user row itself in one transaction. Events the
	// user created must already be deleted by the caller.
	DeleteCascade(ctx context.Context, userID string) error
}

// UserService defines the business logic for user profile management.
type UserService interface {
	GetByID(ctx context.Context, id string) (*User, error)
	UpdateProfile(ctx context.Context, userID string, name, email *string) (*User, error)
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
	DeleteAccount(ctx context.Context, userID string) error
}
