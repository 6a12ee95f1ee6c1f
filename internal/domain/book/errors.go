// internal/domain/book/errors.go
package book

import (
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrBookNotFound is returned when no active book matches the identifier.
	ErrBookNotFound = errors.New("book not found")

	// ErrInvalidBookID is returned when the identifier is not a valid UUID.
	ErrInvalidBookID = errors.New("invalid book ID")

	// ErrDuplicateISBN is returned when another active book already has the ISBN.
	ErrDuplicateISBN = errors.New("book with this ISBN already exists")
)

// ParseID parses a book identifier, mapping failures to ErrInvalidBookID
func ParseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrInvalidBookID
	}
	return id, nil
}
