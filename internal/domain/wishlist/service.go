// internal/domain/wishlist/service.go
package wishlist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/your-org/library-backend/internal/domain/book"
	"github.com/your-org/library-backend/internal/domain/user"
	"github.com/your-org/library-backend/internal/pkg/pagination"
	"gorm.io/gorm"
)

// Service handles wishlist business logic
type Service struct {
	db    *gorm.DB
	books *book.Service
	users *user.Service
}

// NewService creates a new wishlist service
func NewService(db *gorm.DB, books *book.Service, users *user.Service) *Service {
	return &Service{
		db:    db,
		books: books,
		users: users,
	}
}

// AddToWishlistRequest represents add to wishlist request
type AddToWishlistRequest struct {
	UserID string `json:"userId" binding:"required,notblank"`
	BookID string `json:"bookId" binding:"required,notblank"`
}

// WishlistListRequest represents the admin listing query
type WishlistListRequest struct {
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
	UserID string `form:"userId"`
	BookID string `form:"bookId"`
}

// BookSummary is the denormalized book view attached to wishlist items
type BookSummary struct {
	ID                 uuid.UUID               `json:"id"`
	Title              string                  `json:"title"`
	Author             string                  `json:"author"`
	ISBN               string                  `json:"isbn"`
	PublishedYear      int                     `json:"publishedYear"`
	AvailabilityStatus book.AvailabilityStatus `json:"availabilityStatus"`
}

// WishlistItemResponse represents a wishlist item with book details
type WishlistItemResponse struct {
	ID        uuid.UUID    `json:"id"`
	UserID    string       `json:"userId"`
	BookID    uuid.UUID    `json:"bookId"`
	Book      *BookSummary `json:"book"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// UserWishlistResponse represents one user's wishlist
type UserWishlistResponse struct {
	UserID   string                 `json:"userId"`
	Wishlist []WishlistItemResponse `json:"wishlist"`
}

// CheckResponse reports whether a pair is wishlisted
type CheckResponse struct {
	IsInWishlist bool          `json:"isInWishlist"`
	Wishlist     *WishlistItem `json:"wishlist"`
}

// Pagination represents pagination information for wishlist listings
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// WishlistListResponse represents a page of wishlist items
type WishlistListResponse struct {
	Wishlists  []WishlistItemResponse `json:"wishlists"`
	Pagination Pagination             `json:"pagination"`
}

// AddToWishlist adds a book to a user's wishlist. Both must be active.
func (s *Service) AddToWishlist(ctx context.Context, req *AddToWishlistRequest) (*WishlistItem, error) {
	usr, err := s.users.GetActiveUserByUserID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	bk, err := s.books.GetBook(ctx, strings.TrimSpace(req.BookID))
	if err != nil {
		return nil, err
	}

	inWishlist, err := s.IsInWishlist(ctx, usr.UserID, bk.ID)
	if err != nil {
		return nil, err
	}
	if inWishlist {
		return nil, ErrAlreadyInWishlist
	}

	item := &WishlistItem{
		UserID: usr.UserID,
		BookID: bk.ID,
	}

	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyInWishlist
		}
		return nil, fmt.Errorf("failed to add item to wishlist: %w", err)
	}

	return item, nil
}

// GetUserWishlist returns the user's wishlist, newest first
func (s *Service) GetUserWishlist(ctx context.Context, userID string) (*UserWishlistResponse, error) {
	usr, err := s.users.GetActiveUserByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var items []WishlistItem
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", usr.UserID).
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve wishlist items: %w", err)
	}

	responses, err := s.withBookDetails(ctx, items)
	if err != nil {
		return nil, err
	}

	return &UserWishlistResponse{
		UserID:   usr.UserID,
		Wishlist: responses,
	}, nil
}

// RemoveFromWishlist removes a (user, book) pair
func (s *Service) RemoveFromWishlist(ctx context.Context, userID, rawBookID string) error {
	bookID, err := book.ParseID(rawBookID)
	if err != nil {
		return err
	}

	result := s.db.WithContext(ctx).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Delete(&WishlistItem{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove item from wishlist: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrWishlistItemNotFound
	}

	return nil
}

// CheckWishlist reports whether the pair is wishlisted
func (s *Service) CheckWishlist(ctx context.Context, userID, rawBookID string) (*CheckResponse, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(rawBookID) == "" {
		return nil, ErrMissingCheckParams
	}

	bookID, err := book.ParseID(rawBookID)
	if err != nil {
		return nil, err
	}

	var item WishlistItem
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		First(&item)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return &CheckResponse{IsInWishlist: false}, nil
		}
		return nil, fmt.Errorf("failed to check wishlist status: %w", result.Error)
	}

	return &CheckResponse{IsInWishlist: true, Wishlist: &item}, nil
}

// IsInWishlist checks if a book is in the user's wishlist
func (s *Service) IsInWishlist(ctx context.Context, userID string, bookID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&WishlistItem{}).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Count(&count).Error
	return count > 0, err
}

// GetWishlists lists all wishlist items with optional filters
func (s *Service) GetWishlists(ctx context.Context, req *WishlistListRequest) (*WishlistListResponse, error) {
	page, limit := pagination.Normalize(req.Page, req.Limit)
	query := s.db.WithContext(ctx).Model(&WishlistItem{})

	if userID := strings.TrimSpace(req.UserID); userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if rawBookID := strings.TrimSpace(req.BookID); rawBookID != "" {
		bookID, err := book.ParseID(rawBookID)
		if err != nil {
			return nil, err
		}
		query = query.Where("book_id = ?", bookID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count wishlist items: %w", err)
	}

	var items []WishlistItem
	if err := query.Order("created_at DESC").
		Offset(pagination.Offset(page, limit)).
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve wishlist items: %w", err)
	}

	responses, err := s.withBookDetails(ctx, items)
	if err != nil {
		return nil, err
	}

	return &WishlistListResponse{
		Wishlists: responses,
		Pagination: Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: pagination.TotalPages(total, limit),
		},
	}, nil
}

// ListByBook returns every wishlist entry for a book
func (s *Service) ListByBook(ctx context.Context, bookID uuid.UUID) ([]WishlistItem, error) {
	var items []WishlistItem
	if err := s.db.WithContext(ctx).
		Where("book_id = ?", bookID).
		Order("created_at ASC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list wishlist items for book: %w", err)
	}
	return items, nil
}

// Private helper methods

// withBookDetails attaches the book summary in one query. Books that are
// gone (soft-deleted) leave Book nil.
func (s *Service) withBookDetails(ctx context.Context, items []WishlistItem) ([]WishlistItemResponse, error) {
	responses := make([]WishlistItemResponse, len(items))
	if len(items) == 0 {
		return responses, nil
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.BookID)
	}

	var books []book.Book
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&books).Error; err != nil {
		return nil, fmt.Errorf("failed to load book details: %w", err)
	}

	byID := make(map[uuid.UUID]*BookSummary, len(books))
	for _, b := range books {
		byID[b.ID] = &BookSummary{
			ID:                 b.ID,
			Title:              b.Title,
			Author:             b.Author,
			ISBN:               b.ISBN,
			PublishedYear:      b.PublishedYear,
			AvailabilityStatus: b.AvailabilityStatus,
		}
	}

	for i, item := range items {
		responses[i] = WishlistItemResponse{
			ID:        item.ID,
			UserID:    item.UserID,
			BookID:    item.BookID,
			Book:      byID[item.BookID],
			CreatedAt: item.CreatedAt,
			UpdatedAt: item.UpdatedAt,
		}
	}

	return responses, nil
}
