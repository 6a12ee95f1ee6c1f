// internal/domain/notification/store.go
package notification

import (
	"context"

	"github.com/google/uuid"
	"github.com/your-org/library-backend/internal/domain/book"
	"github.com/your-org/library-backend/internal/domain/user"
	"github.com/your-org/library-backend/internal/domain/wishlist"
)

// Store is the read surface the pipeline needs. Lookups for records that are
// absent or soft-deleted return the owning package's not-found error.
type Store interface {
	FindActiveBook(ctx context.Context, id uuid.UUID) (*book.Book, error)
	ListWishlistByBook(ctx context.Context, bookID uuid.UUID) ([]wishlist.WishlistItem, error)
	FindActiveUserByUserID(ctx context.Context, userID string) (*user.User, error)
}

type serviceStore struct {
	books    *book.Service
	users    *user.Service
	wishlist *wishlist.Service
}

// NewStore adapts the domain services to Store
func NewStore(books *book.Service, users *user.Service, wishlistService *wishlist.Service) Store {
	return &serviceStore{
		books:    books,
		users:    users,
		wishlist: wishlistService,
	}
}

func (s *serviceStore) FindActiveBook(ctx context.Context, id uuid.UUID) (*book.Book, error) {
	return s.books.GetActiveBook(ctx, id)
}

func (s *serviceStore) ListWishlistByBook(ctx context.Context, bookID uuid.UUID) ([]wishlist.WishlistItem, error) {
	return s.wishlist.ListByBook(ctx, bookID)
}

func (s *serviceStore) FindActiveUserByUserID(ctx context.Context, userID string) (*user.User, error) {
	return s.users.GetActiveUserByUserID(ctx, userID)
}
