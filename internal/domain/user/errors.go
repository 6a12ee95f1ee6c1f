// internal/domain/user/errors.go
package user

import (
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrUserNotFound is returned when no active user matches the identifier.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidUserID is returned when a storage identifier is not a valid UUID.
	ErrInvalidUserID = errors.New("invalid user ID")

	// ErrDuplicateUserID is returned when another active user has the same business key.
	ErrDuplicateUserID = errors.New("user with this User ID already exists")

	// ErrDuplicateEmail is returned when another active user has the same email.
	ErrDuplicateEmail = errors.New("user with this email already exists")
)

// ParseID parses a storage identifier
func ParseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrInvalidUserID
	}
	return id, nil
}
