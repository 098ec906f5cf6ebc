package domain

import "errors"

// Sentinel errors shared across services. Repositories map driver-level
// failures (sql.ErrNoRows, pq unique violations) onto these so that
// services and controllers never inspect driver errors directly.
var (
	// ErrNotFound covers both "entity does not exist" and "caller has no
	// membership": the two are deliberately indistinguishable so that
	// private events cannot be enumerated.
	ErrNotFound = errors.New("not found")

	// ErrForbidden means the caller is a member but their access level is
	// insufficient for the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict is a uniqueness violation (invitation token collision,
	// duplicate membership row).
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput is a request shape/range failure detected in a service.
	ErrInvalidInput = errors.New("invalid input")
)
