// internal/domain/book/service.go
package book

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/library-backend/internal/pkg/pagination"
	"github.com/your-org/library-backend/internal/pkg/search"
	"gorm.io/gorm"
)

// StatusObserver is told about every persisted book update so it can react
// to availability transitions. Implementations must not block.
type StatusObserver interface {
	BookStatusChanged(bookID uuid.UUID, previous, next AvailabilityStatus)
}

// Service handles book business logic
type Service struct {
	db       *gorm.DB
	observer StatusObserver
	logger   logrus.FieldLogger
}

// NewService creates a new book service. observer may be nil.
func NewService(db *gorm.DB, observer StatusObserver, logger logrus.FieldLogger) *Service {
	return &Service{
		db:       db,
		observer: observer,
		logger:   logger,
	}
}

// CreateBookRequest represents book creation data
type CreateBookRequest struct {
	Title              string             `json:"title" binding:"required,notblank"`
	Author             string             `json:"author" binding:"required,notblank"`
	ISBN               string             `json:"isbn" binding:"required,notblank"`
	PublishedYear      int                `json:"publishedYear" binding:"required,min=1000,notfuture"`
	AvailabilityStatus AvailabilityStatus `json:"availabilityStatus" binding:"omitempty,oneof=Available Borrowed"`
}

// UpdateBookRequest represents a partial book update
type UpdateBookRequest struct {
	Title              *string             `json:"title" binding:"omitempty,notblank"`
	Author             *string             `json:"author" binding:"omitempty,notblank"`
	ISBN               *string             `json:"isbn" binding:"omitempty,notblank"`
	PublishedYear      *int                `json:"publishedYear" binding:"omitempty,min=1000,notfuture"`
	AvailabilityStatus *AvailabilityStatus `json:"availabilityStatus" binding:"omitempty,oneof=Available Borrowed"`
}

// IsEmpty reports whether the request carries no field at all
func (r *UpdateBookRequest) IsEmpty() bool {
	return r.Title == nil && r.Author == nil && r.ISBN == nil &&
		r.PublishedYear == nil && r.AvailabilityStatus == nil
}

// BookListRequest represents book list query parameters
type BookListRequest struct {
	Page          int    `form:"page" binding:"omitempty,min=1"`
	Limit         int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Author        string `form:"author"`
	PublishedYear int    `form:"publishedYear" binding:"omitempty,min=1000,notfuture"`
}

// BookSearchRequest represents book search query parameters
type BookSearchRequest struct {
	Query string `form:"query" binding:"required,notblank"`
	Page  int    `form:"page" binding:"omitempty,min=1"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

// BookListResponse represents a page of books
type BookListResponse struct {
	Books      []Book                `json:"books"`
	Query      string                `json:"query,omitempty"`
	Pagination pagination.Pagination `json:"pagination"`
}

// CreateBook creates a new book after checking the ISBN is free
func (s *Service) CreateBook(ctx context.Context, req *CreateBookRequest) (*Book, error) {
	isbn := strings.TrimSpace(req.ISBN)

	taken, err := s.isbnTaken(ctx, isbn, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicateISBN
	}

	status := req.AvailabilityStatus
	if status == "" {
		status = StatusAvailable
	}

	book := &Book{
		Title:              req.Title,
		Author:             req.Author,
		ISBN:               isbn,
		PublishedYear:      req.PublishedYear,
		AvailabilityStatus: status,
	}

	if err := s.db.WithContext(ctx).Create(book).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateISBN
		}
		return nil, fmt.Errorf("failed to create book: %w", err)
	}

	return book, nil
}

// GetBooks retrieves books with filtering and pagination
func (s *Service) GetBooks(ctx context.Context, req *BookListRequest) (*BookListResponse, error) {
	query := s.db.WithContext(ctx).Model(&Book{})

	if author := strings.TrimSpace(req.Author); author != "" {
		query = query.Where("LOWER(author) LIKE ? ESCAPE '\\'", search.Contains(author))
	}

	if req.PublishedYear > 0 {
		query = query.Where("published_year = ?", req.PublishedYear)
	}

	return s.paginate(query, req.Page, req.Limit, "")
}

// SearchBooks matches the query against title or author, case-insensitively
func (s *Service) SearchBooks(ctx context.Context, req *BookSearchRequest) (*BookListResponse, error) {
	term := strings.TrimSpace(req.Query)
	pattern := search.Contains(term)

	query := s.db.WithContext(ctx).Model(&Book{}).
		Where("LOWER(title) LIKE ? ESCAPE '\\' OR LOWER(author) LIKE ? ESCAPE '\\'", pattern, pattern)

	return s.paginate(query, req.Page, req.Limit, term)
}

// GetBook retrieves an active book by its raw identifier
func (s *Service) GetBook(ctx context.Context, rawID string) (*Book, error) {
	id, err := ParseID(rawID)
	if err != nil {
		return nil, err
	}
	return s.GetActiveBook(ctx, id)
}

// GetActiveBook retrieves a book that has not been soft-deleted
func (s *Service) GetActiveBook(ctx context.Context, id uuid.UUID) (*Book, error) {
	var book Book
	result := s.db.WithContext(ctx).Where("id = ?", id).First(&book)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to retrieve book: %w", result.Error)
	}
	return &book, nil
}

// UpdateBook applies a partial update and reports the status transition to
// the observer once the write is persisted.
func (s *Service) UpdateBook(ctx context.Context, rawID string, req *UpdateBookRequest) (*Book, error) {
	book, err := s.GetBook(ctx, rawID)
	if err != nil {
		return nil, err
	}

	if req.ISBN != nil {
		isbn := strings.TrimSpace(*req.ISBN)
		if isbn != book.ISBN {
			taken, err := s.isbnTaken(ctx, isbn, book.ID)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, ErrDuplicateISBN
			}
		}
		book.ISBN = isbn
	}

	// Captured before the update is applied
	previous := book.AvailabilityStatus
	var next AvailabilityStatus

	if req.Title != nil {
		book.Title = *req.Title
	}
	if req.Author != nil {
		book.Author = *req.Author
	}
	if req.PublishedYear != nil {
		book.PublishedYear = *req.PublishedYear
	}
	if req.AvailabilityStatus != nil {
		next = *req.AvailabilityStatus
		book.AvailabilityStatus = next
	}

	// Updates keeps the soft-delete scope, so a row deleted since the read
	// matches nothing instead of being upserted back
	result := s.db.WithContext(ctx).Model(book).
		Select("*").
		Omit("created_at", "deleted_at").
		Updates(book)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateISBN
		}
		return nil, fmt.Errorf("failed to update book: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrBookNotFound
	}

	if s.observer != nil {
		s.observer.BookStatusChanged(book.ID, previous, next)
	}

	return book, nil
}

// DeleteBook soft-deletes a book
func (s *Service) DeleteBook(ctx context.Context, rawID string) error {
	book, err := s.GetBook(ctx, rawID)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(book).Error; err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"book_id": book.ID,
		"title":   book.Title,
	}).Info("Book soft-deleted")

	return nil
}

// Private helper methods

func (s *Service) isbnTaken(ctx context.Context, isbn string, exclude uuid.UUID) (bool, error) {
	var count int64
	query := s.db.WithContext(ctx).Model(&Book{}).Where("isbn = ?", isbn)
	if exclude != uuid.Nil {
		query = query.Where("id <> ?", exclude)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check ISBN: %w", err)
	}
	return count > 0, nil
}

func (s *Service) paginate(query *gorm.DB, page, limit int, term string) (*BookListResponse, error) {
	page, limit = pagination.Normalize(page, limit)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count books: %w", err)
	}

	books := []Book{}
	if err := query.Order("created_at DESC").
		Offset(pagination.Offset(page, limit)).
		Limit(limit).
		Find(&books).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve books: %w", err)
	}

	return &BookListResponse{
		Books:      books,
		Query:      term,
		Pagination: pagination.New(page, limit, total),
	}, nil
}
