// internal/domain/wishlist/errors.go
package wishlist

import "errors"

var (
	// ErrWishlistItemNotFound is returned when the (user, book) pair is not wishlisted.
	ErrWishlistItemNotFound = errors.New("book not found in wishlist")

	// ErrAlreadyInWishlist is returned when the (user, book) pair already exists.
	ErrAlreadyInWishlist = errors.New("book is already in wishlist")

	// ErrMissingCheckParams is returned when a check omits userId or bookId.
	ErrMissingCheckParams = errors.New("userId and bookId are required")
)
